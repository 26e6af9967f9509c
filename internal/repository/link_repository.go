package repository

import (
	"fmt"

	"github.com/linkshort/linkshort/internal/models"
	"gorm.io/gorm"
)

// LinkRepository est une interface qui définit les méthodes d'accès aux données.
// Soft-deleted links are invisible to every method here: GORM's DeletedAt
// filtering is applied on all reads, and Delete only marks the row.
type LinkRepository interface {
	Create(link *models.Link) error
	FindByHash(hash string) (*models.Link, error)
	FindByID(id string) (*models.Link, error)
	FindByUserID(userID string) ([]models.Link, error)
	ExistsByHash(hash string) (bool, error)
	Update(link *models.Link) error
	SoftDeleteByHash(hash string) error
	FindAllActive() ([]models.Link, error)
}

// GormLinkRepository est l'implémentation de LinkRepository utilisant GORM.
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository crée et retourne une nouvelle instance de GormLinkRepository.
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// Create insère un nouveau lien dans la base de données.
// The unique index on hash is the final backstop against a race between the
// uniqueness check and the insert.
func (r *GormLinkRepository) Create(link *models.Link) error {
	if err := r.db.Create(link).Error; err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// FindByHash récupère un lien actif en utilisant son hash.
// Returns gorm.ErrRecordNotFound untouched so callers can map it themselves.
func (r *GormLinkRepository) FindByHash(hash string) (*models.Link, error) {
	var link models.Link
	if err := r.db.Where("hash = ?", hash).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// FindByID récupère un lien actif en utilisant son identifiant.
func (r *GormLinkRepository) FindByID(id string) (*models.Link, error) {
	var link models.Link
	if err := r.db.Where("id = ?", id).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// FindByUserID récupère tous les liens actifs appartenant à un utilisateur,
// ordered by creation date so listings are stable.
func (r *GormLinkRepository) FindByUserID(userID string) ([]models.Link, error) {
	var links []models.Link
	if err := r.db.Where("user_id = ?", userID).Order("created_at").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve links for user %s: %w", userID, err)
	}
	return links, nil
}

// ExistsByHash vérifie si un hash est déjà utilisé par un lien actif.
func (r *GormLinkRepository) ExistsByHash(hash string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Link{}).Where("hash = ?", hash).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check hash %s: %w", hash, err)
	}
	return count > 0, nil
}

// Update persiste les modifications d'un lien existant.
func (r *GormLinkRepository) Update(link *models.Link) error {
	if err := r.db.Save(link).Error; err != nil {
		return fmt.Errorf("failed to update link %s: %w", link.Hash, err)
	}
	return nil
}

// SoftDeleteByHash marque un lien comme supprimé sans détruire la ligne.
func (r *GormLinkRepository) SoftDeleteByHash(hash string) error {
	if err := r.db.Where("hash = ?", hash).Delete(&models.Link{}).Error; err != nil {
		return fmt.Errorf("failed to delete link %s: %w", hash, err)
	}
	return nil
}

// FindAllActive récupère tous les liens actifs de la base de données.
// Used by the URL monitor to check destination health.
func (r *GormLinkRepository) FindAllActive() ([]models.Link, error) {
	var links []models.Link
	if err := r.db.Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve all links: %w", err)
	}
	return links, nil
}
