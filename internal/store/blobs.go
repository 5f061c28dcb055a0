package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReminderImagePath builds the canonical object path for a reminder image.
// The fixed name enables overwrite-on-update semantics.
func ReminderImagePath(userID, reminderID string) string {
	return fmt.Sprintf("users/%s/%s_image.jpg", userID, reminderID)
}

// FilesystemBlobs implements BlobStore on a local directory, served back to
// clients under a public base URL.
type FilesystemBlobs struct {
	root    string
	baseURL string
}

// NewFilesystemBlobs constructs a filesystem-backed BlobStore rooted at dir.
func NewFilesystemBlobs(dir, baseURL string) (*FilesystemBlobs, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("store: blob directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create blob directory: %w", err)
	}
	return &FilesystemBlobs{
		root:    dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Root reports the directory blobs are stored under.
func (b *FilesystemBlobs) Root() string {
	return b.root
}

// Put writes data at path, unconditionally overwriting any existing object,
// and returns the retrievable URL.
func (b *FilesystemBlobs) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	full, err := b.resolve(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("store: create blob path: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("store: write blob: %w", err)
	}

	return b.baseURL + "/" + path, nil
}

// Delete removes the object at path. A missing object is reported as
// ErrNotFound so callers can decide whether that matters.
func (b *FilesystemBlobs) Delete(ctx context.Context, path string) error {
	full, err := b.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("store: delete blob: %w", err)
	}
	return nil
}

func (b *FilesystemBlobs) resolve(path string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(path))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("store: invalid blob path %q", path)
	}
	return filepath.Join(b.root, cleaned), nil
}

var _ BlobStore = (*FilesystemBlobs)(nil)
