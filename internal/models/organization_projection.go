package models

import (
	"time"

	"gorm.io/gorm"
)

// OrganizationProjection is the local half of an organization. Name, slug,
// logo URL, membership and roles live in the Auth Service; this row holds the
// fields its organization schema cannot carry, keyed by the Auth Service id.
//
// Invariant: BetterAuthID references a currently-existing Auth Service
// organization. Deleting the organization removes this row (and its logo
// blob) in the same logical operation.
type OrganizationProjection struct {
	ID           uint64 `gorm:"primarykey" json:"id"`
	BetterAuthID string `gorm:"type:varchar(64);uniqueIndex;not null" json:"better_auth_id"`

	// LogoID is the blob storage key of the organization logo. The Auth
	// Service only stores a URL-typed logo field, so the storage handle is
	// kept here.
	LogoID *string `gorm:"type:varchar(128)" json:"logo_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
