package authservice

import "time"

// Organization is the Auth Service's organization object. It is the source of
// truth for name, slug, logo URL, membership and roles.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Logo      string    `json:"logo,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Member roles form a small closed set.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Member is a (user, organization, role) tuple owned by the Auth Service.
type Member struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	OrganizationID string    `json:"organizationId"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Session identifies an authenticated caller.
type Session struct {
	UserID               string     `json:"userId"`
	Email                string     `json:"email,omitempty"`
	ActiveOrganizationID string     `json:"activeOrganizationId,omitempty"`
	ExpiresAt            *time.Time `json:"expiresAt,omitempty"`
}

// Invitation is a pending membership invitation.
type Invitation struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// OrganizationUpdate carries the optional fields of an organization update.
// Nil fields are left untouched; Logo set to an empty string clears the logo.
type OrganizationUpdate struct {
	Name *string `json:"name,omitempty"`
	Slug *string `json:"slug,omitempty"`
	Logo *string `json:"logo,omitempty"`
}

// UserUpdate carries the optional fields of a user update.
type UserUpdate struct {
	Name  *string `json:"name,omitempty"`
	Image *string `json:"image,omitempty"`
}

// SlugStatus is the tri-state result of a slug availability check, so callers
// can tell "taken" apart from "service unavailable".
type SlugStatus int

const (
	SlugUnknown SlugStatus = iota
	SlugFree
	SlugTaken
)

func (s SlugStatus) String() string {
	switch s {
	case SlugFree:
		return "free"
	case SlugTaken:
		return "taken"
	default:
		return "unknown"
	}
}
