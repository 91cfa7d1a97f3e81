package repository

import (
	"errors"
	"fmt"

	"github.com/yukimura/org-identity-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// FindByAuthID finds a user by their Auth Service id
func (r *GormUserRepository) FindByAuthID(authUserID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("auth_user_id = ?", authUserID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureByAuthID finds the local user row for an Auth Service id, creating it
// on first sight. Identity itself is owned by the Auth Service; the local row
// only exists to carry the active-organization pointer and avatar blob key.
func (r *GormUserRepository) EnsureByAuthID(authUserID string) (*models.User, error) {
	user, err := r.FindByAuthID(authUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &models.User{AuthUserID: authUserID}
	if err := r.db.Create(user).Error; err != nil {
		// Lost a race with a concurrent first request for the same user.
		if existing, findErr := r.FindByAuthID(authUserID); findErr == nil {
			return existing, nil
		}
		return nil, fmt.Errorf("failed to create local user record: %w", err)
	}
	return user, nil
}

// SetActiveOrganization updates the user's active-organization pointer
func (r *GormUserRepository) SetActiveOrganization(authUserID string, orgID *string) error {
	return r.db.Model(&models.User{}).
		Where("auth_user_id = ?", authUserID).
		Update("active_organization_id", orgID).Error
}

// SetImage updates the user's avatar blob key
func (r *GormUserRepository) SetImage(authUserID string, imageID *string) error {
	return r.db.Model(&models.User{}).
		Where("auth_user_id = ?", authUserID).
		Update("image_id", imageID).Error
}
