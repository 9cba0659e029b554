package blobstore

import (
	"fmt"
	"strings"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	StoreTypeLocal  StoreType = "local"
	StoreTypeMemory StoreType = "memory"
)

// DefaultBasePath is used for local stores configured without a path
const DefaultBasePath = "./data/exports"

// Factory creates Store instances based on configuration
type Factory struct {
	retryConfig *RetryConfig
}

// NewFactory creates a store factory. A nil retry config disables retries.
func NewFactory(retryConfig *RetryConfig) *Factory {
	return &Factory{retryConfig: retryConfig}
}

// Create creates a Store from configuration
func (f *Factory) Create(config *Config) (Store, error) {
	if config == nil {
		return nil, fmt.Errorf("blobstore config is required")
	}

	var (
		store Store
		err   error
	)

	switch StoreType(strings.ToLower(strings.TrimSpace(config.Type))) {
	case StoreTypeLocal, "":
		basePath := config.BasePath
		if basePath == "" {
			basePath = DefaultBasePath
		}
		store, err = NewLocalStore(basePath, config.PublicURL)
	case StoreTypeMemory:
		store = NewMemoryStore(config.PublicURL)
	default:
		return nil, fmt.Errorf("unsupported blobstore type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create %s blobstore: %w", config.Type, err)
	}

	if f.retryConfig != nil {
		store = NewRetryStore(store, f.retryConfig)
	}

	return store, nil
}

// CreateFromConfig creates a store wrapped with the default retry policy
func CreateFromConfig(config *Config) (Store, error) {
	return NewFactory(DefaultRetryConfig()).Create(config)
}
