package models

import (
	"time"

	"gorm.io/gorm"
)

// User mirrors the Auth Service user record locally. The Auth Service owns
// identity; this row carries the fields it cannot store for us.
type User struct {
	ID         uint64 `gorm:"primarykey" json:"id"`
	AuthUserID string `gorm:"type:varchar(64);uniqueIndex;not null" json:"auth_user_id"`

	// ActiveOrganizationID holds the Auth Service id of the organization
	// currently selected by this user. If set, it should reference an
	// organization the user is a member of; partial downstream failures can
	// leave it stale until the next set-active call.
	ActiveOrganizationID *string `gorm:"type:varchar(64)" json:"active_organization_id"`

	// ImageID is the blob storage key of the user's avatar.
	ImageID *string `gorm:"type:varchar(128)" json:"image_id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
