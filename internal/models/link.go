package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Link représente un lien raccourci dans la base de données.
// The hash is the 6-character public identifier; TimesClicked only reflects
// clicks that have already been flushed from the click counter.
type Link struct {
	ID           string         `gorm:"type:uuid;primaryKey" json:"id"`
	OriginalURL  string         `gorm:"type:text;not null" json:"original_url"`
	CurrentURL   string         `gorm:"type:text;not null" json:"current_url"`
	Hash         string         `gorm:"uniqueIndex;size:6;not null" json:"hash"`
	TimesClicked int64          `gorm:"not null;default:0" json:"times_clicked"`
	UserID       *string        `gorm:"type:uuid;index" json:"user_id"`
	ExpiresAt    *time.Time     `json:"expires_at"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (l *Link) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// IsExpired reports whether the link's expiry timestamp is strictly in the
// past. A link with no expiry never expires, and a link expiring exactly at
// 'now' is still considered valid.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// OwnedBy reports whether the given caller may mutate this link. Anonymous
// links (no owner) can never be mutated, not even by anonymous callers.
func (l *Link) OwnedBy(callerID string) bool {
	return callerID != "" && l.UserID != nil && *l.UserID == callerID
}
