package repository

import (
	"github.com/yukimura/org-identity-api/internal/models"
	"gorm.io/gorm"
)

// GormProjectionRepository is a GORM implementation of ProjectionRepository
type GormProjectionRepository struct {
	db *gorm.DB
}

// NewProjectionRepository creates a new ProjectionRepository
func NewProjectionRepository(db *gorm.DB) ProjectionRepository {
	return &GormProjectionRepository{db: db}
}

// Create inserts a projection row
func (r *GormProjectionRepository) Create(projection *models.OrganizationProjection) error {
	return r.db.Create(projection).Error
}

// FindByAuthOrgID finds a projection by Auth Service organization id
func (r *GormProjectionRepository) FindByAuthOrgID(betterAuthID string) (*models.OrganizationProjection, error) {
	var projection models.OrganizationProjection
	if err := r.db.Where("better_auth_id = ?", betterAuthID).First(&projection).Error; err != nil {
		return nil, err
	}
	return &projection, nil
}

// SetLogo updates the projection's logo blob key
func (r *GormProjectionRepository) SetLogo(betterAuthID string, logoID *string) error {
	return r.db.Model(&models.OrganizationProjection{}).
		Where("better_auth_id = ?", betterAuthID).
		Update("logo_id", logoID).Error
}

// DeleteByAuthOrgID removes the projection for a deleted organization
func (r *GormProjectionRepository) DeleteByAuthOrgID(betterAuthID string) error {
	return r.db.Where("better_auth_id = ?", betterAuthID).
		Delete(&models.OrganizationProjection{}).Error
}
