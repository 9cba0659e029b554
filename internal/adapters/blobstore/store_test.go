package blobstore

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()

	local, err := NewLocalStore(t.TempDir(), "http://127.0.0.1:8081/api/v1/files")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}

	return map[string]Store{
		"local":  local,
		"memory": NewMemoryStore("http://127.0.0.1:8081/api/v1/files"),
	}
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			key := "exports/rcp-0001.pdf"
			data := []byte("%PDF-1.3 test")

			if err := store.Put(ctx, key, data, &PutOptions{ContentType: "application/pdf", Metadata: map[string]string{"doc": "d1"}}); err != nil {
				t.Fatalf("Put failed: %v", err)
			}

			got, err := store.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("Expected %q, got %q", data, got)
			}

			info, err := store.Stat(ctx, key)
			if err != nil {
				t.Fatalf("Stat failed: %v", err)
			}
			if info.Size != int64(len(data)) {
				t.Errorf("Expected size %d, got %d", len(data), info.Size)
			}
			if info.ContentType != "application/pdf" {
				t.Errorf("Expected content type application/pdf, got %s", info.ContentType)
			}
			if info.Metadata["doc"] != "d1" {
				t.Errorf("Expected metadata doc=d1, got %v", info.Metadata)
			}

			exists, err := store.Exists(ctx, key)
			if err != nil || !exists {
				t.Errorf("Expected blob to exist, got %v (%v)", exists, err)
			}

			url, err := store.URL(key)
			if err != nil {
				t.Fatalf("URL failed: %v", err)
			}
			if url != "http://127.0.0.1:8081/api/v1/files/"+key {
				t.Errorf("Unexpected URL %s", url)
			}

			if err := store.Delete(ctx, key); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}

			if _, err := store.Get(ctx, key); !IsNotFound(err) {
				t.Errorf("Expected not found after delete, got %v", err)
			}
			if err := store.Delete(ctx, key); !IsNotFound(err) {
				t.Errorf("Expected not found on second delete, got %v", err)
			}
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Put(ctx, "a.txt", []byte("one"), nil); err != nil {
				t.Fatalf("Put failed: %v", err)
			}

			err := store.Put(ctx, "a.txt", []byte("two"), &PutOptions{})
			if !errors.Is(err, ErrBlobAlreadyExists) {
				t.Errorf("Expected ErrBlobAlreadyExists, got %v", err)
			}

			if err := store.Put(ctx, "a.txt", []byte("two"), &PutOptions{Overwrite: true}); err != nil {
				t.Fatalf("Overwrite failed: %v", err)
			}
			got, _ := store.Get(ctx, "a.txt")
			if string(got) != "two" {
				t.Errorf("Expected overwritten content, got %q", got)
			}
		})
	}
}

func TestStore_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	keys := []string{"", "  ", "../escape.pdf", "/abs.pdf", `dir\file.pdf`, "x.pdf.meta.json"}

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range keys {
				err := store.Put(ctx, key, []byte("x"), nil)
				if !errors.Is(err, ErrInvalidKey) {
					t.Errorf("Put(%q): expected ErrInvalidKey, got %v", key, err)
				}
			}
		})
	}
}

func TestStore_List(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"b/2.pdf", "a/1.pdf", "b/1.pdf"} {
				if err := store.Put(ctx, key, []byte(key), nil); err != nil {
					t.Fatalf("Put failed: %v", err)
				}
			}

			all, err := store.List(ctx, "")
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(all) != 3 {
				t.Fatalf("Expected 3 blobs, got %d", len(all))
			}
			if all[0].Key != "a/1.pdf" {
				t.Errorf("Expected sorted keys, first is %s", all[0].Key)
			}

			b, _ := store.List(ctx, "b/")
			if len(b) != 2 {
				t.Errorf("Expected 2 blobs under b/, got %d", len(b))
			}
		})
	}
}

func TestStore_Close(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := store.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			err := store.Put(ctx, "late.pdf", []byte("x"), nil)
			if !errors.Is(err, ErrStoreClosed) {
				t.Errorf("Expected ErrStoreClosed, got %v", err)
			}
		})
	}
}

func TestURL_WithoutPublicURL(t *testing.T) {
	local, err := NewLocalStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocalStore failed: %v", err)
	}
	url, _ := local.URL("x.pdf")
	if !strings.HasPrefix(url, "file://") {
		t.Errorf("Expected file:// URL, got %s", url)
	}

	url, _ = NewMemoryStore("").URL("x.pdf")
	if url != "memory://x.pdf" {
		t.Errorf("Expected memory:// URL, got %s", url)
	}
}

func TestStoreError(t *testing.T) {
	err := NewStoreError("Put", "k", ErrStoreUnavailable, true)

	if !strings.Contains(err.Error(), "Put") || !strings.Contains(err.Error(), "'k'") {
		t.Errorf("Unexpected message: %s", err.Error())
	}
	if !IsRetryable(err) {
		t.Error("Expected error to be retryable")
	}
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Error("Expected error to unwrap to ErrStoreUnavailable")
	}
	if IsRetryable(NewStoreError("Get", "k", ErrBlobNotFound, false)) {
		t.Error("Expected not-found to be non-retryable")
	}
	if !IsRetryable(ErrTimeout) {
		t.Error("Expected bare timeout to be retryable")
	}
}
