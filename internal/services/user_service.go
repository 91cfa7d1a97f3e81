package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/yukimura/org-identity-api/internal/authservice"
	"github.com/yukimura/org-identity-api/internal/constants"
	"github.com/yukimura/org-identity-api/internal/repository"
	"github.com/yukimura/org-identity-api/internal/storage"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidImage     = errors.New("invalid image file or file not found")
	ErrPasswordTooShort = errors.New("password too short")
)

// UserService handles the caller's own profile: avatar blob management and
// the password passthrough.
type UserService struct {
	auth  authservice.API
	users repository.UserRepository
	blobs storage.BlobStore
}

// NewUserService creates a new UserService.
func NewUserService(auth authservice.API, users repository.UserRepository, blobs storage.BlobStore) *UserService {
	return &UserService{
		auth:  auth,
		users: users,
		blobs: blobs,
	}
}

// UpdateAvatar points the user's avatar at a newly uploaded blob: the old
// blob is deleted when different, the new one is resolved to a URL which is
// propagated to the Auth Service, and the local image key is updated.
// Returns the resolved URL.
func (s *UserService) UpdateAvatar(ctx context.Context, authUserID, storageKey string, headers http.Header) (string, error) {
	user, err := s.users.FindByAuthID(authUserID)
	if err != nil {
		return "", ErrUserNotFound
	}

	if user.ImageID != nil && *user.ImageID != storageKey {
		if err := s.blobs.Delete(ctx, *user.ImageID); err != nil {
			return "", fmt.Errorf("failed to delete previous avatar: %w", err)
		}
	}

	imageURL, err := s.blobs.ResolveURL(ctx, storageKey)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return "", ErrInvalidImage
		}
		return "", fmt.Errorf("failed to resolve avatar: %w", err)
	}

	if err := s.auth.UpdateUser(ctx, authservice.UserUpdate{Image: &imageURL}, headers); err != nil {
		return "", authservice.Classify(err, "update avatar")
	}

	if err := s.users.SetImage(authUserID, &storageKey); err != nil {
		return "", fmt.Errorf("failed to update avatar reference: %w", err)
	}

	return imageURL, nil
}

// SetPassword relays a password change to the Auth Service. Credential
// handling itself (hashing, verification) lives there.
func (s *UserService) SetPassword(ctx context.Context, newPassword string, headers http.Header) error {
	if len(newPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if err := s.auth.SetPassword(ctx, newPassword, headers); err != nil {
		return authservice.Classify(err, "set password")
	}
	return nil
}
