package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukimura/org-identity-api/internal/authservice"
	"github.com/yukimura/org-identity-api/internal/constants"
)

// ErrSlugSpaceExhausted is returned when no free slug is found within the
// configured number of probes.
var ErrSlugSpaceExhausted = errors.New("no free slug found within the attempt limit")

// SlugAllocator resolves a desired base slug to one that doesn't collide with
// any existing organization, by probing the Auth Service's slug check.
//
// Probing is not atomic with creation: two concurrent creates with the same
// base can both see a candidate as free. The Auth Service's own uniqueness
// constraint is the backstop; OrganizationService retries the allocate+create
// sequence on a conflict.
type SlugAllocator struct {
	auth        authservice.API
	maxAttempts int
}

// NewSlugAllocator creates a SlugAllocator. maxAttempts bounds the probe
// loop; values below 1 fall back to the default.
func NewSlugAllocator(auth authservice.API, maxAttempts int) *SlugAllocator {
	if maxAttempts < 1 {
		maxAttempts = constants.DefaultSlugMaxAttempts
	}
	return &SlugAllocator{
		auth:        auth,
		maxAttempts: maxAttempts,
	}
}

// Allocate returns the base slug if free, otherwise "base-2", "base-3", …
// until a free candidate is found. A slug-check service failure aborts the
// allocation; it is never conflated with "taken".
func (a *SlugAllocator) Allocate(ctx context.Context, base string) (string, error) {
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = fmt.Sprintf("%s-%d", base, attempt+1)
		}

		status, err := a.auth.CheckOrganizationSlug(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("slug availability check failed: %w", err)
		}
		if status == authservice.SlugFree {
			return candidate, nil
		}
	}
	return "", ErrSlugSpaceExhausted
}

// IsTaken probes a single slug. Used on profile updates, where a taken slug
// is a terminal validation error rather than something to auto-resolve.
func (a *SlugAllocator) IsTaken(ctx context.Context, slug string) (bool, error) {
	status, err := a.auth.CheckOrganizationSlug(ctx, slug)
	if err != nil {
		return false, fmt.Errorf("slug availability check failed: %w", err)
	}
	return status == authservice.SlugTaken, nil
}
