package dto

import (
	"time"

	"github.com/yukimura/org-identity-api/internal/authservice"
)

// OrganizationDTO is the public shape of an Auth Service organization.
type OrganizationDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Logo      string    `json:"logo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// InvitationDTO is the public shape of a pending invitation.
type InvitationDTO struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// ToOrganizationDTO converts an Auth Service organization to its public shape
func ToOrganizationDTO(org authservice.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:        org.ID,
		Name:      org.Name,
		Slug:      org.Slug,
		Logo:      org.Logo,
		CreatedAt: org.CreatedAt,
	}
}

// ToOrganizationDTOs converts a slice of Auth Service organizations
func ToOrganizationDTOs(orgs []authservice.Organization) []OrganizationDTO {
	dtos := make([]OrganizationDTO, len(orgs))
	for i, org := range orgs {
		dtos[i] = ToOrganizationDTO(org)
	}
	return dtos
}

// ToInvitationDTOs converts a slice of Auth Service invitations
func ToInvitationDTOs(invitations []authservice.Invitation) []InvitationDTO {
	dtos := make([]InvitationDTO, len(invitations))
	for i, inv := range invitations {
		dtos[i] = InvitationDTO{
			ID:             inv.ID,
			OrganizationID: inv.OrganizationID,
			Email:          inv.Email,
			Role:           inv.Role,
			Status:         inv.Status,
			ExpiresAt:      inv.ExpiresAt,
		}
	}
	return dtos
}
