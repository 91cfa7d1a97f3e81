package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukimura/org-identity-api/internal/errors"
	"github.com/yukimura/org-identity-api/internal/middleware"
	"github.com/yukimura/org-identity-api/internal/services"
)

// UserHandler coordinates the caller's own profile endpoints.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UpdateAvatar points the caller's avatar at an uploaded blob.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	authUserID, exists := middleware.GetAuthUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type UpdateAvatarRequest struct {
		StorageKey string `json:"storage_key" binding:"required"`
	}

	var req UpdateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	imageURL, err := h.userService.UpdateAvatar(c.Request.Context(), authUserID, req.StorageKey, middleware.SessionHeaders(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": imageURL})
}

// SetPassword relays a password change to the Auth Service.
func (h *UserHandler) SetPassword(c *gin.Context) {
	type SetPasswordRequest struct {
		Password string `json:"password" binding:"required"`
	}

	var req SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.userService.SetPassword(c.Request.Context(), req.Password, middleware.SessionHeaders(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
