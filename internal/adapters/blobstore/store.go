// Package blobstore holds exported artifacts for a bounded time so that a
// browser or share target can fetch them by key.
package blobstore

import (
	"context"
	"time"
)

// BlobInfo describes a stored blob
type BlobInfo struct {
	Key         string            `json:"key"`
	Size        int64             `json:"size"`
	ContentType string            `json:"content_type"`
	CreatedAt   time.Time         `json:"created_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PutOptions provides options for storing blobs
type PutOptions struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Overwrite   bool              `json:"overwrite,omitempty"`
}

// Store is the transient artifact store used by exports
type Store interface {
	// Put saves data under key
	Put(ctx context.Context, key string, data []byte, opts *PutOptions) error

	// Get returns the blob stored under key
	Get(ctx context.Context, key string) ([]byte, error)

	// Stat returns information about a blob without reading it
	Stat(ctx context.Context, key string) (*BlobInfo, error)

	// Delete removes a blob. Deleting a missing key reports ErrBlobNotFound.
	Delete(ctx context.Context, key string) error

	// Exists checks whether key is present
	Exists(ctx context.Context, key string) (bool, error)

	// List returns the blobs whose key starts with prefix
	List(ctx context.Context, prefix string) ([]BlobInfo, error)

	// URL returns the transient address of a blob
	URL(key string) (string, error)

	// Close releases resources held by the store
	Close() error
}

// Config represents configuration for a store
type Config struct {
	Type      string `json:"type" mapstructure:"type"`
	BasePath  string `json:"base_path" mapstructure:"base_path"`
	PublicURL string `json:"public_url" mapstructure:"public_url"`
}
