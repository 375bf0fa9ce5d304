// Package receipts is the blob interface for receipt files referenced by
// receiptFileName fields. It is a plain read/write-by-name surface; the
// record store treats every failure here as non-fatal.
package receipts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Read for blobs that do not exist. Delete
// swallows the condition instead of surfacing it.
var ErrNotFound = errors.New("receipt not found")

// Store is the blob collaborator the record store depends on.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

// DirStore keeps receipt blobs as files in a single directory.
type DirStore struct {
	dir string
}

func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create receipts directory: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

func (s *DirStore) path(name string) string {
	// Blob names are plain filenames; strip any path the caller smuggled in.
	return filepath.Join(s.dir, filepath.Base(name))
}

func (s *DirStore) Read(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read receipt %q: %w", name, err)
	}
	return data, nil
}

func (s *DirStore) Write(_ context.Context, name string, data []byte) error {
	if err := os.WriteFile(s.path(name), data, 0644); err != nil {
		return fmt.Errorf("write receipt %q: %w", name, err)
	}
	return nil
}

// Delete removes a blob. A missing blob is treated as already deleted.
func (s *DirStore) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete receipt %q: %w", name, err)
	}
	return nil
}

// MimeType maps a receipt filename to its MIME type, defaulting to JPEG
// for unknown extensions.
func MimeType(name string) string {
	switch ext(name) {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// FileType reports whether a receipt is a pdf or an image.
func FileType(name string) string {
	if ext(name) == "pdf" {
		return "pdf"
	}
	return "image"
}

func ext(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
