package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukimura/org-identity-api/internal/dto"
	apierrors "github.com/yukimura/org-identity-api/internal/errors"
	"github.com/yukimura/org-identity-api/internal/middleware"
	"github.com/yukimura/org-identity-api/internal/services"
)

// OrganizationHandler coordinates the organization lifecycle and membership
// query endpoints.
type OrganizationHandler struct {
	orgService *services.OrganizationService
	queries    *services.MembershipQueries
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgService *services.OrganizationService, queries *services.MembershipQueries) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
		queries:    queries,
	}
}

// CreateOrganization creates a new organization owned by the caller.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	authUserID, exists := middleware.GetAuthUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateOrgRequest struct {
		Name                   string  `json:"name" binding:"required"`
		Slug                   string  `json:"slug"`
		LogoID                 *string `json:"logo_id"`
		SkipActiveOrganization bool    `json:"skip_active_organization"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	orgID, err := h.orgService.Create(c.Request.Context(), services.CreateOrganizationInput{
		AuthUserID:             authUserID,
		Name:                   req.Name,
		Slug:                   req.Slug,
		LogoID:                 req.LogoID,
		SkipActiveOrganization: req.SkipActiveOrganization,
		SessionHeaders:         middleware.SessionHeaders(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"organization_id": orgID})
}

// ListOrganizations returns all organizations the caller is a member of.
// Degrades to an empty list on downstream failure.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	orgs := h.queries.ListOrganizations(c.Request.Context(), middleware.SessionHeaders(c))
	c.JSON(http.StatusOK, gin.H{
		"organizations": dto.ToOrganizationDTOs(orgs),
	})
}

// UpdateProfile updates the caller's current organization profile. A JSON
// null logo_id removes the logo; an absent field leaves it untouched.
func (h *OrganizationHandler) UpdateProfile(c *gin.Context) {
	authUserID, exists := middleware.GetAuthUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	// logo_id needs present-but-null detection, so the raw map is consulted
	// alongside the bound struct.
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateProfileInput{
		AuthUserID:     authUserID,
		SessionHeaders: middleware.SessionHeaders(c),
	}

	if value, ok := raw["name"]; ok {
		name, isString := value.(string)
		if !isString {
			apierrors.BadRequest(c, "Invalid name")
			return
		}
		input.Name = &name
	}
	if value, ok := raw["slug"]; ok {
		slug, isString := value.(string)
		if !isString {
			apierrors.BadRequest(c, "Invalid slug")
			return
		}
		input.Slug = &slug
	}
	if value, ok := raw["logo_id"]; ok {
		input.LogoSet = true
		if value != nil {
			logoID, isString := value.(string)
			if !isString {
				apierrors.BadRequest(c, "Invalid logo id")
				return
			}
			input.LogoID = &logoID
		}
	}

	if err := h.orgService.UpdateProfile(c.Request.Context(), input); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization profile updated"})
}

// SetActiveOrganization selects the caller's active organization.
func (h *OrganizationHandler) SetActiveOrganization(c *gin.Context) {
	authUserID, exists := middleware.GetAuthUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type SetActiveRequest struct {
		OrganizationID string `json:"organization_id"`
	}

	var req SetActiveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	err := h.orgService.SetActive(c.Request.Context(), authUserID, req.OrganizationID, middleware.SessionHeaders(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Active organization updated"})
}

// LeaveOrganization removes the caller from their current organization.
func (h *OrganizationHandler) LeaveOrganization(c *gin.Context) {
	authUserID, exists := middleware.GetAuthUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type LeaveRequest struct {
		SuccessorMemberID string `json:"successor_member_id"`
	}

	var req LeaveRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	err := h.orgService.Leave(c.Request.Context(), services.LeaveInput{
		AuthUserID:        authUserID,
		SuccessorMemberID: req.SuccessorMemberID,
		SessionHeaders:    middleware.SessionHeaders(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left organization"})
}

// DeleteOrganization deletes an organization (the active one by default).
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	authUserID, exists := middleware.GetAuthUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type DeleteRequest struct {
		OrganizationID string `json:"organization_id"`
	}

	var req DeleteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apierrors.BadRequest(c, "Invalid request body")
			return
		}
	}

	err := h.orgService.Delete(c.Request.Context(), authUserID, req.OrganizationID, middleware.SessionHeaders(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Organization deleted successfully"})
}

// GetOrganizationRole returns the caller's role in the given organization,
// or in the active one when no id is supplied. Returns null when unknown.
func (h *OrganizationHandler) GetOrganizationRole(c *gin.Context) {
	authUserID, exists := middleware.GetAuthUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	orgID := c.Query("organization_id")
	role := h.queries.GetOrganizationRole(c.Request.Context(), authUserID, orgID, middleware.SessionHeaders(c))
	if role == "" {
		c.JSON(http.StatusOK, gin.H{"role": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}

// GetActiveOrganization returns the caller's session-active organization, or
// null when none is active.
func (h *OrganizationHandler) GetActiveOrganization(c *gin.Context) {
	org := h.queries.GetActiveOrganization(c.Request.Context(), middleware.SessionHeaders(c))
	if org == nil {
		c.JSON(http.StatusOK, gin.H{"organization": nil})
		return
	}
	orgDTO := dto.ToOrganizationDTO(*org)
	c.JSON(http.StatusOK, gin.H{"organization": orgDTO})
}

// ListInvitations returns pending invitations for the active organization.
func (h *OrganizationHandler) ListInvitations(c *gin.Context) {
	invitations := h.queries.ListInvitations(c.Request.Context(), middleware.SessionHeaders(c))
	c.JSON(http.StatusOK, gin.H{
		"invitations": dto.ToInvitationDTOs(invitations),
	})
}
