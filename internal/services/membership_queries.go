package services

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/yukimura/org-identity-api/internal/authservice"
)

// MembershipQueries answers the read-only membership and role questions by
// delegating to the Auth Service. Read paths degrade gracefully: any
// downstream failure or missing caller identity collapses to an empty/nil
// result instead of propagating, so non-critical UI reads stay available.
type MembershipQueries struct {
	auth authservice.API
}

// NewMembershipQueries creates a new MembershipQueries.
func NewMembershipQueries(auth authservice.API) *MembershipQueries {
	return &MembershipQueries{auth: auth}
}

// ListOrganizations returns the caller's organizations, or an empty slice on
// any failure.
func (q *MembershipQueries) ListOrganizations(ctx context.Context, headers http.Header) []authservice.Organization {
	orgs, err := q.auth.ListOrganizations(ctx, headers)
	if err != nil {
		log.Debug().Err(err).Msg("list organizations degraded to empty")
		return []authservice.Organization{}
	}
	if orgs == nil {
		orgs = []authservice.Organization{}
	}
	return orgs
}

// GetOrganizationRole returns the caller's role in the given organization,
// or in the session-active one when orgID is empty. Returns "" when the
// caller isn't a member or on any failure.
func (q *MembershipQueries) GetOrganizationRole(ctx context.Context, authUserID, orgID string, headers http.Header) string {
	if orgID == "" {
		member, err := q.auth.GetActiveMember(ctx, headers)
		if err != nil || member == nil {
			return ""
		}
		return member.Role
	}

	members, err := q.auth.ListMembers(ctx, orgID, headers)
	if err != nil {
		log.Debug().Err(err).Str("organization_id", orgID).Msg("role lookup degraded to none")
		return ""
	}
	for _, member := range members {
		if member.UserID == authUserID {
			return member.Role
		}
	}
	return ""
}

// GetActiveOrganization returns the full Auth Service organization object for
// the caller's session-active organization, or nil.
func (q *MembershipQueries) GetActiveOrganization(ctx context.Context, headers http.Header) *authservice.Organization {
	org, err := q.auth.GetFullOrganization(ctx, headers)
	if err != nil {
		log.Debug().Err(err).Msg("active organization lookup degraded to none")
		return nil
	}
	return org
}

// ListInvitations returns pending invitations for the session-active
// organization, or an empty slice on any failure.
func (q *MembershipQueries) ListInvitations(ctx context.Context, headers http.Header) []authservice.Invitation {
	invitations, err := q.auth.ListInvitations(ctx, headers)
	if err != nil {
		log.Debug().Err(err).Msg("list invitations degraded to empty")
		return []authservice.Invitation{}
	}
	if invitations == nil {
		invitations = []authservice.Invitation{}
	}
	return invitations
}
