package repository

import (
	"fmt"

	"github.com/linkshort/linkshort/internal/models"
	"gorm.io/gorm"
)

// UserRepository est une interface qui définit les méthodes d'accès aux données.
type UserRepository interface {
	Create(user *models.User) error
	FindByEmail(email string) (*models.User, error)
	FindByID(id string) (*models.User, error)
	ExistsByEmail(email string) (bool, error)
}

// GormUserRepository est l'implémentation de UserRepository utilisant GORM.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository crée et retourne une nouvelle instance de GormUserRepository.
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create insère un nouvel utilisateur dans la base de données.
func (r *GormUserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail récupère un utilisateur par son adresse email.
// Returns gorm.ErrRecordNotFound untouched so callers can map it themselves.
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID récupère un utilisateur par son identifiant.
func (r *GormUserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmail vérifie si une adresse email est déjà enregistrée.
func (r *GormUserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email %s: %w", email, err)
	}
	return count > 0, nil
}
