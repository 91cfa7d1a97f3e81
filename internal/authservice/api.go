package authservice

import (
	"context"
	"net/http"
)

// API is the Auth Service contract the rest of the system consumes. Session-
// scoped calls take the headers forwarded from the caller's authenticated
// request; the Auth Service resolves the session from them.
type API interface {
	GetSession(ctx context.Context, headers http.Header) (*Session, error)

	CreateOrganization(ctx context.Context, creatorID, name, slug, logoURL string) (*Organization, error)
	CheckOrganizationSlug(ctx context.Context, slug string) (SlugStatus, error)
	UpdateOrganization(ctx context.Context, orgID string, update OrganizationUpdate, headers http.Header) error
	DeleteOrganization(ctx context.Context, orgID string, headers http.Header) error

	GetFullOrganization(ctx context.Context, headers http.Header) (*Organization, error)
	ListOrganizations(ctx context.Context, headers http.Header) ([]Organization, error)
	ListMembers(ctx context.Context, orgID string, headers http.Header) ([]Member, error)
	GetActiveMember(ctx context.Context, headers http.Header) (*Member, error)
	SetActiveOrganization(ctx context.Context, orgID string, headers http.Header) error
	LeaveOrganization(ctx context.Context, orgID string, headers http.Header) error
	UpdateMemberRole(ctx context.Context, orgID, memberID, role string, headers http.Header) error
	ListInvitations(ctx context.Context, headers http.Header) ([]Invitation, error)

	UpdateUser(ctx context.Context, update UserUpdate, headers http.Header) error
	SetPassword(ctx context.Context, newPassword string, headers http.Header) error
}
