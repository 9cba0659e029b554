package blobstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps blobs in process memory. It backs the CLI, tests and
// deployments where nothing may touch the disk.
type MemoryStore struct {
	mu        sync.RWMutex
	blobs     map[string]*memoryBlob
	publicURL string
	closed    bool
}

type memoryBlob struct {
	data []byte
	info BlobInfo
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(publicURL string) *MemoryStore {
	return &MemoryStore{
		blobs:     make(map[string]*memoryBlob),
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Put stores a copy of data
func (m *MemoryStore) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	if err := validateKey(key); err != nil {
		return NewStoreError("Put", key, err, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return NewStoreError("Put", key, ErrStoreClosed, false)
	}
	if opts != nil && !opts.Overwrite {
		if _, exists := m.blobs[key]; exists {
			return NewStoreError("Put", key, ErrBlobAlreadyExists, false)
		}
	}

	var metadata map[string]string
	if opts != nil && opts.Metadata != nil {
		metadata = make(map[string]string, len(opts.Metadata))
		for k, v := range opts.Metadata {
			metadata[k] = v
		}
	}

	m.blobs[key] = &memoryBlob{
		data: append([]byte(nil), data...),
		info: BlobInfo{
			Key:         key,
			Size:        int64(len(data)),
			ContentType: contentTypeFor(key, opts),
			CreatedAt:   time.Now().UTC(),
			Metadata:    metadata,
		},
	}
	return nil
}

// Get returns a copy of the blob
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := m.lookup("Get", key)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), blob.data...), nil
}

// Stat returns blob information
func (m *MemoryStore) Stat(ctx context.Context, key string) (*BlobInfo, error) {
	blob, err := m.lookup("Stat", key)
	if err != nil {
		return nil, err
	}
	info := blob.info
	return &info, nil
}

// Delete removes a blob
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return NewStoreError("Delete", key, err, false)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.blobs[key]; !exists {
		return NewStoreError("Delete", key, ErrBlobNotFound, false)
	}
	delete(m.blobs, key)
	return nil
}

// Exists checks if a blob is present
func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, NewStoreError("Exists", key, err, false)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.blobs[key]
	return exists, nil
}

// List returns blobs under prefix sorted by key
func (m *MemoryStore) List(ctx context.Context, prefix string) ([]BlobInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]BlobInfo, 0, len(m.blobs))
	for key, blob := range m.blobs {
		if prefix == "" || strings.HasPrefix(key, prefix) {
			out = append(out, blob.info)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// URL returns publicURL/key, or a memory:// URL when no public URL is set
func (m *MemoryStore) URL(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", NewStoreError("URL", key, err, false)
	}
	if m.publicURL != "" {
		return fmt.Sprintf("%s/%s", m.publicURL, key), nil
	}
	return "memory://" + key, nil
}

// Close drops every blob
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.blobs = make(map[string]*memoryBlob)
	return nil
}

// Len returns the number of blobs held
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

func (m *MemoryStore) lookup(op, key string) (*memoryBlob, error) {
	if err := validateKey(key); err != nil {
		return nil, NewStoreError(op, key, err, false)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, exists := m.blobs[key]
	if !exists {
		return nil, NewStoreError(op, key, ErrBlobNotFound, false)
	}
	return blob, nil
}
