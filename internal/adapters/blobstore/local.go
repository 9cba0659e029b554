package blobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

const metadataSuffix = ".meta.json"

// LocalStore keeps blobs as files under a base directory
type LocalStore struct {
	basePath  string
	publicURL string
	closed    atomic.Bool
}

type localMetadata struct {
	ContentType string            `json:"content_type"`
	CreatedAt   time.Time         `json:"created_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NewLocalStore creates the base directory if needed. When publicURL is set,
// URL returns publicURL/key; otherwise a file:// URL.
func NewLocalStore(basePath, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, NewStoreError("NewLocalStore", "", err, false)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, NewStoreError("NewLocalStore", "", err, false)
	}

	return &LocalStore{
		basePath:  absPath,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// Put writes data atomically through a temp file and rename
func (l *LocalStore) Put(ctx context.Context, key string, data []byte, opts *PutOptions) error {
	if err := l.check(ctx, key); err != nil {
		return NewStoreError("Put", key, err, false)
	}

	path := l.path(key)

	if opts != nil && !opts.Overwrite {
		if _, err := os.Stat(path); err == nil {
			return NewStoreError("Put", key, ErrBlobAlreadyExists, false)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return NewStoreError("Put", key, err, true)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return NewStoreError("Put", key, err, true)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return NewStoreError("Put", key, err, true)
	}

	meta := localMetadata{
		ContentType: contentTypeFor(key, opts),
		CreatedAt:   time.Now().UTC(),
	}
	if opts != nil {
		meta.Metadata = opts.Metadata
	}
	raw, err := json.Marshal(meta)
	if err == nil {
		// sidecar loss only degrades Stat to extension sniffing
		_ = os.WriteFile(path+metadataSuffix, raw, 0o600)
	}

	return nil
}

// Get reads a blob
func (l *LocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := l.check(ctx, key); err != nil {
		return nil, NewStoreError("Get", key, err, false)
	}

	data, err := os.ReadFile(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStoreError("Get", key, ErrBlobNotFound, false)
		}
		return nil, NewStoreError("Get", key, err, true)
	}
	return data, nil
}

// Stat returns blob information, reading the metadata sidecar when present
func (l *LocalStore) Stat(ctx context.Context, key string) (*BlobInfo, error) {
	if err := l.check(ctx, key); err != nil {
		return nil, NewStoreError("Stat", key, err, false)
	}

	st, err := os.Stat(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewStoreError("Stat", key, ErrBlobNotFound, false)
		}
		return nil, NewStoreError("Stat", key, err, true)
	}

	return l.info(key, st), nil
}

// Delete removes a blob and its metadata sidecar
func (l *LocalStore) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return NewStoreError("Delete", key, err, false)
	}

	path := l.path(key)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return NewStoreError("Delete", key, ErrBlobNotFound, false)
		}
		return NewStoreError("Delete", key, err, true)
	}
	_ = os.Remove(path + metadataSuffix)

	return nil
}

// Exists checks if a blob is present
func (l *LocalStore) Exists(ctx context.Context, key string) (bool, error) {
	if err := l.check(ctx, key); err != nil {
		return false, NewStoreError("Exists", key, err, false)
	}

	if _, err := os.Stat(l.path(key)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, NewStoreError("Exists", key, err, true)
	}
	return true, nil
}

// List walks the base directory and returns blobs under prefix sorted by key
func (l *LocalStore) List(ctx context.Context, prefix string) ([]BlobInfo, error) {
	if l.closed.Load() {
		return nil, NewStoreError("List", "", ErrStoreClosed, false)
	}

	var out []BlobInfo
	err := filepath.Walk(l.basePath, func(path string, st os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if st.IsDir() || strings.HasSuffix(path, metadataSuffix) || strings.HasSuffix(path, ".tmp") {
			return nil
		}

		rel, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			return nil
		}

		out = append(out, *l.info(key, st))
		return nil
	})
	if err != nil {
		return nil, NewStoreError("List", "", err, true)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// URL returns the address a client can fetch the blob from
func (l *LocalStore) URL(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", NewStoreError("URL", key, err, false)
	}
	if l.publicURL != "" {
		return fmt.Sprintf("%s/%s", l.publicURL, key), nil
	}
	return "file://" + filepath.ToSlash(l.path(key)), nil
}

// Close marks the store closed. Files already written are left for their
// scheduled release.
func (l *LocalStore) Close() error {
	l.closed.Store(true)
	return nil
}

func (l *LocalStore) check(ctx context.Context, key string) error {
	if l.closed.Load() {
		return ErrStoreClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return validateKey(key)
}

func (l *LocalStore) path(key string) string {
	return filepath.Join(l.basePath, filepath.FromSlash(key))
}

func (l *LocalStore) info(key string, st os.FileInfo) *BlobInfo {
	info := &BlobInfo{
		Key:         key,
		Size:        st.Size(),
		ContentType: contentTypeFor(key, nil),
		CreatedAt:   st.ModTime().UTC(),
	}

	raw, err := os.ReadFile(l.path(key) + metadataSuffix)
	if err != nil {
		return info
	}
	var meta localMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return info
	}
	if meta.ContentType != "" {
		info.ContentType = meta.ContentType
	}
	if !meta.CreatedAt.IsZero() {
		info.CreatedAt = meta.CreatedAt
	}
	info.Metadata = meta.Metadata
	return info
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	// directory traversal
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return ErrInvalidKey
	}
	if strings.HasSuffix(key, metadataSuffix) || strings.HasSuffix(key, ".tmp") {
		return ErrInvalidKey
	}
	return nil
}

func contentTypeFor(key string, opts *PutOptions) string {
	if opts != nil && opts.ContentType != "" {
		return opts.ContentType
	}
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
