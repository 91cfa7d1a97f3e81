package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apierrors "github.com/yukimura/org-identity-api/internal/errors"
	"github.com/yukimura/org-identity-api/internal/storage"
)

// StorageHandler hands out presigned upload targets for logos and avatars.
type StorageHandler struct {
	blobs storage.BlobStore
}

// NewStorageHandler creates a new StorageHandler.
func NewStorageHandler(blobs storage.BlobStore) *StorageHandler {
	return &StorageHandler{blobs: blobs}
}

// CreateUploadURL returns a presigned URL the client can PUT a media blob to,
// together with the generated blob key to reference it by.
func (h *StorageHandler) CreateUploadURL(c *gin.Context) {
	target, err := h.blobs.NewUploadTarget(c.Request.Context(), "media")
	if err != nil {
		log.Error().Err(err).Msg("failed to create upload target")
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, target)
}
