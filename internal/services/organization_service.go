package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/yukimura/org-identity-api/internal/authservice"
	"github.com/yukimura/org-identity-api/internal/constants"
	"github.com/yukimura/org-identity-api/internal/models"
	"github.com/yukimura/org-identity-api/internal/repository"
	"github.com/yukimura/org-identity-api/internal/storage"
	"github.com/yukimura/org-identity-api/internal/utils"
)

var (
	ErrInvalidOrganizationName   = errors.New("organization name cannot be empty")
	ErrInvalidSlug               = errors.New("slug must contain only lowercase letters, numbers, and hyphens")
	ErrSlugTaken                 = errors.New("slug already taken")
	ErrInvalidLogo               = errors.New("invalid logo file or file not found")
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrProjectionNotFound        = errors.New("organization record not found in database")
	ErrNoOrganizations           = errors.New("no organizations found")
	ErrMemberNotFound            = errors.New("member not found")
	ErrSuccessorRequired         = errors.New("you must provide a successor to leave the organization")
	ErrMustKeepOneMembership     = errors.New("cannot leave organization: you must be part of at least two organizations")
	ErrMustKeepOneOrganization   = errors.New("cannot delete organization: at least one organization must remain")
	ErrNoAlternativeOrganization = errors.New("no alternative organization found to set as active")
)

// OrganizationService orchestrates the organization lifecycle across the Auth
// Service (source of truth for name, slug, logo URL, membership) and the
// local projection/user tables.
//
// The "Auth Service mutation, then projection mutation, then user pointer"
// sequences are separate network calls with no shared transaction; a failure
// mid-sequence surfaces the failing step's error and leaves earlier steps
// committed. There is no compensation.
type OrganizationService struct {
	auth        authservice.API
	users       repository.UserRepository
	projections repository.ProjectionRepository
	blobs       storage.BlobStore
	slugs       *SlugAllocator

	createMaxRetries int
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(
	auth authservice.API,
	users repository.UserRepository,
	projections repository.ProjectionRepository,
	blobs storage.BlobStore,
	slugs *SlugAllocator,
	createMaxRetries int,
) *OrganizationService {
	if createMaxRetries < 1 {
		createMaxRetries = constants.DefaultCreateMaxRetries
	}
	return &OrganizationService{
		auth:             auth,
		users:            users,
		projections:      projections,
		blobs:            blobs,
		slugs:            slugs,
		createMaxRetries: createMaxRetries,
	}
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	AuthUserID string
	Name       string
	Slug       string
	LogoID     *string

	// SkipActiveOrganization skips only the session-scoped set-active call.
	// The user record's pointer is updated regardless. Used during signup
	// flows where no session exists yet.
	SkipActiveOrganization bool

	SessionHeaders http.Header
}

// Create creates an organization and performs the related bookkeeping:
// allocates a unique slug, resolves the optional logo blob to a URL, creates
// the organization in the Auth Service with the caller as owner, inserts the
// projection row, updates the caller's active-organization pointer, and
// (unless skipped) marks the organization active for the session.
//
// When an error is returned after the Auth Service create succeeded, the
// returned id is non-empty and the organization exists upstream with local
// state partially applied.
func (s *OrganizationService) Create(ctx context.Context, input CreateOrganizationInput) (string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return "", ErrInvalidOrganizationName
	}

	base := strings.TrimSpace(input.Slug)
	if base == "" {
		base = utils.Slugify(name)
	}
	if !utils.IsValidSlug(base) {
		return "", ErrInvalidSlug
	}

	logoURL := ""
	if input.LogoID != nil {
		url, err := s.blobs.ResolveURL(ctx, *input.LogoID)
		if err != nil {
			if errors.Is(err, storage.ErrBlobNotFound) {
				return "", ErrInvalidLogo
			}
			return "", fmt.Errorf("failed to resolve logo: %w", err)
		}
		logoURL = url
	}

	// Slug allocation is check-then-act against the Auth Service, so a
	// concurrent create can win the candidate between the probe and the
	// create call. A conflict from the create is retried with a fresh
	// allocation, bounded by createMaxRetries.
	operation := func() (*authservice.Organization, error) {
		slug, err := s.slugs.Allocate(ctx, base)
		if err != nil {
			return nil, backoff.Permanent(err)
		}

		org, err := s.auth.CreateOrganization(ctx, input.AuthUserID, name, slug, logoURL)
		if err != nil {
			if authservice.IsConflict(err) {
				log.Warn().Str("slug", slug).Msg("lost slug race on create, retrying allocation")
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return org, nil
	}

	org, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(s.createMaxRetries)),
	)
	if err != nil {
		if errors.Is(err, ErrSlugSpaceExhausted) {
			return "", err
		}
		return "", authservice.Classify(err, "create organization")
	}

	if err := s.projections.Create(&models.OrganizationProjection{
		BetterAuthID: org.ID,
		LogoID:       input.LogoID,
	}); err != nil {
		return org.ID, fmt.Errorf("organization created but projection insert failed: %w", err)
	}

	// The pointer update happens regardless of SkipActiveOrganization.
	if err := s.users.SetActiveOrganization(input.AuthUserID, &org.ID); err != nil {
		return org.ID, fmt.Errorf("organization created but active-organization update failed: %w", err)
	}

	if !input.SkipActiveOrganization {
		if err := s.auth.SetActiveOrganization(ctx, org.ID, input.SessionHeaders); err != nil {
			return org.ID, authservice.Classify(err, "set the organization as active")
		}
	}

	return org.ID, nil
}

// UpdateProfileInput carries the optional profile changes for the caller's
// current organization. LogoID distinguishes three cases: field absent
// (LogoSet false) leaves the logo untouched; LogoSet true with nil LogoID
// removes it; LogoSet true with a key replaces it.
type UpdateProfileInput struct {
	AuthUserID string
	Name       *string
	Slug       *string
	LogoID     *string
	LogoSet    bool

	SessionHeaders http.Header
}

// UpdateProfile updates the name, slug and/or logo of the caller's
// session-active organization. The Auth Service update is only issued when at
// least one field actually changed.
func (s *OrganizationService) UpdateProfile(ctx context.Context, input UpdateProfileInput) error {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return ErrInvalidOrganizationName
	}
	if input.Slug != nil && !utils.IsValidSlug(strings.TrimSpace(*input.Slug)) {
		return ErrInvalidSlug
	}

	org, err := s.auth.GetFullOrganization(ctx, input.SessionHeaders)
	if err != nil {
		return authservice.Classify(err, "update organization")
	}
	if org == nil {
		return ErrOrganizationNotFound
	}

	update := authservice.OrganizationUpdate{}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		update.Name = &trimmed
	}

	if input.Slug != nil {
		slug := strings.TrimSpace(*input.Slug)
		// A direct probe, not auto-increment allocation: on update a taken
		// slug is a terminal error.
		if slug != org.Slug {
			taken, err := s.slugs.IsTaken(ctx, slug)
			if err != nil {
				return err
			}
			if taken {
				return ErrSlugTaken
			}
		}
		update.Slug = &slug
	}

	if input.LogoSet {
		projection, err := s.projections.FindByAuthOrgID(org.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectionNotFound
			}
			return fmt.Errorf("failed to load organization record: %w", err)
		}

		switch {
		case input.LogoID == nil:
			// Remove the logo.
			if projection.LogoID != nil {
				if err := s.blobs.Delete(ctx, *projection.LogoID); err != nil {
					return fmt.Errorf("failed to delete logo: %w", err)
				}
				if err := s.projections.SetLogo(org.ID, nil); err != nil {
					return fmt.Errorf("failed to clear logo reference: %w", err)
				}
			}
			empty := ""
			update.Logo = &empty

		case projection.LogoID != nil && *projection.LogoID == *input.LogoID:
			// Same blob, nothing to do.

		default:
			// Resolve the new blob before touching the old one, so a failed
			// resolution can't leave the organization with no logo at all.
			url, err := s.blobs.ResolveURL(ctx, *input.LogoID)
			if err != nil {
				if errors.Is(err, storage.ErrBlobNotFound) {
					return ErrInvalidLogo
				}
				return fmt.Errorf("failed to resolve logo: %w", err)
			}
			if projection.LogoID != nil {
				if err := s.blobs.Delete(ctx, *projection.LogoID); err != nil {
					return fmt.Errorf("failed to delete previous logo: %w", err)
				}
			}
			if err := s.projections.SetLogo(org.ID, input.LogoID); err != nil {
				return fmt.Errorf("failed to update logo reference: %w", err)
			}
			update.Logo = &url
		}
	}

	if update.Name == nil && update.Slug == nil && update.Logo == nil {
		return nil
	}

	if err := s.auth.UpdateOrganization(ctx, org.ID, update, input.SessionHeaders); err != nil {
		return authservice.Classify(err, "update organization")
	}
	return nil
}

// SetActive selects the caller's active organization. With an explicit org
// id, the session and the user pointer are both updated. Without one, the
// session is re-synced to the user's stored pointer when it is still valid,
// falling back to the first organization in Auth Service listing order.
func (s *OrganizationService) SetActive(ctx context.Context, authUserID, orgID string, headers http.Header) error {
	if orgID != "" {
		if err := s.auth.SetActiveOrganization(ctx, orgID, headers); err != nil {
			return authservice.Classify(err, "set active organization")
		}
		// Only track organizations this system knows about; the projection
		// row is the marker that the org was created through this layer.
		if _, err := s.projections.FindByAuthOrgID(orgID); err == nil {
			if err := s.users.SetActiveOrganization(authUserID, &orgID); err != nil {
				return fmt.Errorf("failed to update active organization: %w", err)
			}
		}
		return nil
	}

	orgs, err := s.auth.ListOrganizations(ctx, headers)
	if err != nil {
		return authservice.Classify(err, "set active organization")
	}
	if len(orgs) == 0 {
		return ErrNoOrganizations
	}

	user, err := s.users.FindByAuthID(authUserID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if user.ActiveOrganizationID != nil {
		for _, org := range orgs {
			if org.ID == *user.ActiveOrganizationID {
				if err := s.auth.SetActiveOrganization(ctx, org.ID, headers); err != nil {
					return authservice.Classify(err, "set active organization")
				}
				return nil
			}
		}
	}

	first := orgs[0]
	if err := s.auth.SetActiveOrganization(ctx, first.ID, headers); err != nil {
		return authservice.Classify(err, "set active organization")
	}
	if err := s.users.SetActiveOrganization(authUserID, &first.ID); err != nil {
		return fmt.Errorf("failed to update active organization: %w", err)
	}
	return nil
}

// LeaveInput carries the parameters for leaving the session-active
// organization.
type LeaveInput struct {
	AuthUserID        string
	SuccessorMemberID string
	SessionHeaders    http.Header
}

// Leave removes the caller from their session-active organization. Owners
// must name a successor, who is promoted before the leave. Afterwards the
// first remaining organization in listing order becomes active, on the
// session and on the user record.
func (s *OrganizationService) Leave(ctx context.Context, input LeaveInput) error {
	orgs, err := s.auth.ListOrganizations(ctx, input.SessionHeaders)
	if err != nil {
		return authservice.Classify(err, "leave organization")
	}
	if len(orgs) < 2 {
		return ErrMustKeepOneMembership
	}

	member, err := s.auth.GetActiveMember(ctx, input.SessionHeaders)
	if err != nil {
		return authservice.Classify(err, "leave organization")
	}
	if member == nil {
		return ErrMemberNotFound
	}

	// Every organization keeps at least one owner: a leaving owner must hand
	// over first.
	if member.Role == authservice.RoleOwner {
		if input.SuccessorMemberID == "" {
			return ErrSuccessorRequired
		}
		err := s.auth.UpdateMemberRole(ctx, member.OrganizationID, input.SuccessorMemberID, authservice.RoleOwner, input.SessionHeaders)
		if err != nil {
			return authservice.Classify(err, "promote the successor")
		}
	}

	nextActive := firstOtherOrganization(orgs, member.OrganizationID)
	if nextActive == nil {
		return ErrNoAlternativeOrganization
	}

	if err := s.auth.LeaveOrganization(ctx, member.OrganizationID, input.SessionHeaders); err != nil {
		return authservice.Classify(err, "leave organization")
	}

	// Both of these must land for session and user record to agree; a
	// failure in between leaves them divergent until the next set-active.
	if err := s.auth.SetActiveOrganization(ctx, nextActive.ID, input.SessionHeaders); err != nil {
		return authservice.Classify(err, "set active organization")
	}
	if err := s.users.SetActiveOrganization(input.AuthUserID, &nextActive.ID); err != nil {
		return fmt.Errorf("failed to update active organization: %w", err)
	}
	return nil
}

// Delete deletes an organization (the session-active one when orgID is
// empty), removes its projection row and logo blob, and re-points the active
// organization to the first remaining one.
func (s *OrganizationService) Delete(ctx context.Context, authUserID, orgID string, headers http.Header) error {
	if orgID == "" {
		org, err := s.auth.GetFullOrganization(ctx, headers)
		if err != nil {
			return authservice.Classify(err, "delete organization")
		}
		if org == nil {
			return ErrOrganizationNotFound
		}
		orgID = org.ID
	}

	orgs, err := s.auth.ListOrganizations(ctx, headers)
	if err != nil {
		return authservice.Classify(err, "delete organization")
	}
	if len(orgs) < 2 {
		return ErrMustKeepOneOrganization
	}

	nextActive := firstOtherOrganization(orgs, orgID)
	if nextActive == nil {
		return ErrNoAlternativeOrganization
	}

	if err := s.auth.DeleteOrganization(ctx, orgID, headers); err != nil {
		return authservice.Classify(err, "delete organization")
	}

	// Remove the projection and its blob in the same logical operation so no
	// orphaned row outlives the Auth Service organization.
	projection, err := s.projections.FindByAuthOrgID(orgID)
	if err == nil {
		if err := s.projections.DeleteByAuthOrgID(orgID); err != nil {
			return fmt.Errorf("failed to delete organization record: %w", err)
		}
		if projection.LogoID != nil {
			if err := s.blobs.Delete(ctx, *projection.LogoID); err != nil {
				return fmt.Errorf("failed to delete organization logo: %w", err)
			}
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to load organization record: %w", err)
	}

	if err := s.auth.SetActiveOrganization(ctx, nextActive.ID, headers); err != nil {
		return authservice.Classify(err, "set active organization")
	}
	if err := s.users.SetActiveOrganization(authUserID, &nextActive.ID); err != nil {
		return fmt.Errorf("failed to update active organization: %w", err)
	}
	return nil
}

// firstOtherOrganization returns the first organization in listing order that
// isn't excludeID. No recency or alphabetical preference.
func firstOtherOrganization(orgs []authservice.Organization, excludeID string) *authservice.Organization {
	for i := range orgs {
		if orgs[i].ID != excludeID {
			return &orgs[i]
		}
	}
	return nil
}
