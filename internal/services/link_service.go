// Package services contains the business logic layer for the link shortener.
package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"gorm.io/gorm"

	"github.com/linkshort/linkshort/internal/cache"
	customerrors "github.com/linkshort/linkshort/internal/errors"
	"github.com/linkshort/linkshort/internal/models"
	"github.com/linkshort/linkshort/internal/repository"
)

// charset defines the character set used for generating hashes.
// Uses alphanumeric characters (both cases) for a total of 62 possible characters.
// This gives us 62^6 = ~56 billion possible combinations for 6-character hashes.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// HashLength is the fixed length of every generated link hash.
const HashLength = 6

// maxHashRetries caps the collision-retry loop during link creation. With a
// 62^6 keyspace, exhausting it means something is badly wrong with either the
// random source or the database.
const maxHashRetries = 10

// LinkService provides business logic methods for managing shortened links.
// It coordinates the relational link store and the Redis click counter; the
// redirect path only ever touches the counter.
type LinkService struct {
	linkRepo repository.LinkRepository
	clicks   cache.ClickCounter
	baseURL  string
}

// NewLinkService creates and returns a new instance of LinkService.
func NewLinkService(linkRepo repository.LinkRepository, clicks cache.ClickCounter, baseURL string) *LinkService {
	return &LinkService{
		linkRepo: linkRepo,
		clicks:   clicks,
		baseURL:  baseURL,
	}
}

// GenerateHash generates a cryptographically secure random hash of the given length.
func (s *LinkService) GenerateHash(length int) (string, error) {
	hash := make([]byte, length)
	for i := range hash {
		// Use crypto/rand for cryptographically secure random numbers
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		hash[i] = charset[num.Int64()]
	}
	return string(hash), nil
}

// ShortURL derives the public short URL for a hash from the configured base URL.
func (s *LinkService) ShortURL(hash string) string {
	return s.baseURL + "/" + hash
}

// CreateLink creates a new shortened link with collision detection and retry logic.
// The owner is optional: a nil userID creates an anonymous link that nobody
// can later update or delete. expiresAt is optional as well; nil never expires.
func (s *LinkService) CreateLink(originalURL string, expiresAt *time.Time, userID *string) (*models.Link, error) {
	var hash string

	// Retry loop to handle hash collisions
	for i := 0; i < maxHashRetries; i++ {
		candidate, err := s.GenerateHash(HashLength)
		if err != nil {
			return nil, fmt.Errorf("failed to generate hash: %w", err)
		}

		taken, err := s.linkRepo.ExistsByHash(candidate)
		if err != nil {
			return nil, fmt.Errorf("database error checking hash uniqueness: %w", err)
		}
		if !taken {
			hash = candidate
			break
		}

		log.Printf("Hash '%s' already exists, retrying generation (%d/%d)...", candidate, i+1, maxHashRetries)
	}

	if hash == "" {
		return nil, customerrors.ErrHashGenerationFailed
	}

	link := &models.Link{
		OriginalURL: originalURL,
		CurrentURL:  originalURL,
		Hash:        hash,
		UserID:      userID,
		ExpiresAt:   expiresAt,
	}

	// The unique index on hash catches the unlikely race where another create
	// claimed the same hash between the existence check and this insert.
	if err := s.linkRepo.Create(link); err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	return link, nil
}

// AccessLink resolves a hash to its current destination URL and records the
// click in the counter. This is the hot path: it must never write to the
// relational store, only the counter absorbs the traffic.
func (s *LinkService) AccessLink(ctx context.Context, hash string) (string, error) {
	link, err := s.linkRepo.FindByHash(hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", customerrors.ErrLinkNotFound
		}
		return "", err
	}

	if link.IsExpired(time.Now()) {
		return "", customerrors.ErrLinkExpired
	}

	// The increment must land before the redirect is considered done; a
	// counter failure is surfaced rather than silently losing the click.
	if err := s.clicks.Increment(ctx, link.ID); err != nil {
		return "", err
	}

	return link.CurrentURL, nil
}

// UpdateLink changes the destination URL of a link owned by the caller.
// Only the owner may update; anonymous links are never updatable. Concurrent
// updates to the same link are last-write-wins.
func (s *LinkService) UpdateLink(hash, currentURL, callerID string) (*models.Link, error) {
	link, err := s.linkRepo.FindByHash(hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrLinkNotFound
		}
		return nil, err
	}

	if !link.OwnedBy(callerID) {
		return nil, customerrors.ErrNotAllowed
	}

	link.CurrentURL = currentURL
	if err := s.linkRepo.Update(link); err != nil {
		return nil, err
	}

	return link, nil
}

// DeleteLink soft-deletes a link owned by the caller. The row survives with
// its deletion timestamp set, but every lookup behaves as if it were gone.
func (s *LinkService) DeleteLink(hash, callerID string) error {
	link, err := s.linkRepo.FindByHash(hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return customerrors.ErrLinkNotFound
		}
		return err
	}

	if !link.OwnedBy(callerID) {
		return customerrors.ErrNotAllowed
	}

	return s.linkRepo.SoftDeleteByHash(hash)
}

// ListLinksByUser returns every active link owned by the caller.
// Anonymous callers cannot list anything.
func (s *LinkService) ListLinksByUser(callerID string) ([]models.Link, error) {
	if callerID == "" {
		return nil, customerrors.ErrNotAllowed
	}
	return s.linkRepo.FindByUserID(callerID)
}

// GetLinkStats retrieves a link with its flushed click count for a given hash.
// Clicks still pending in the counter are not included; they appear after the
// next flush cycle.
func (s *LinkService) GetLinkStats(hash string) (*models.Link, error) {
	link, err := s.linkRepo.FindByHash(hash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}
