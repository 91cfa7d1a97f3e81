package repository

import (
	"github.com/yukimura/org-identity-api/internal/models"
)

// UserRepository defines the interface for local user data access
type UserRepository interface {
	// FindByAuthID finds a user by their Auth Service id
	FindByAuthID(authUserID string) (*models.User, error)

	// EnsureByAuthID finds the user for the given Auth Service id, creating
	// the local row on first sight
	EnsureByAuthID(authUserID string) (*models.User, error)

	// SetActiveOrganization updates the user's active-organization pointer;
	// nil clears it
	SetActiveOrganization(authUserID string, orgID *string) error

	// SetImage updates the user's avatar blob key
	SetImage(authUserID string, imageID *string) error
}

// ProjectionRepository defines the interface for the organization projection
// table, which mirrors Auth Service organizations and holds the fields the
// Auth Service schema cannot store
type ProjectionRepository interface {
	// Create inserts a projection row for a newly created organization
	Create(projection *models.OrganizationProjection) error

	// FindByAuthOrgID finds a projection by Auth Service organization id
	FindByAuthOrgID(betterAuthID string) (*models.OrganizationProjection, error)

	// SetLogo updates the projection's logo blob key; nil clears it
	SetLogo(betterAuthID string, logoID *string) error

	// DeleteByAuthOrgID removes the projection for a deleted organization
	DeleteByAuthOrgID(betterAuthID string) error
}
