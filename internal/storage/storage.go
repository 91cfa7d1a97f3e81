// Package storage provides blob storage for organization logos and user
// avatars. The Auth Service only stores URL-typed image fields, so blobs and
// their keys are managed here and resolved to URLs before being handed over.
package storage

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned when a blob key doesn't resolve to a stored
// object.
var ErrBlobNotFound = errors.New("blob not found")

// UploadTarget is a presigned destination a client can upload a blob to.
type UploadTarget struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

// BlobStore manages uploaded media blobs.
type BlobStore interface {
	// NewUploadTarget generates a fresh object key under the given prefix and
	// a presigned URL the client can PUT the blob to.
	NewUploadTarget(ctx context.Context, prefix string) (*UploadTarget, error)

	// ResolveURL returns a retrievable URL for a stored blob. Returns
	// ErrBlobNotFound when no such object exists.
	ResolveURL(ctx context.Context, key string) (string, error)

	// Delete removes a stored blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, key string) error
}
