package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
)

var _ catalogapp.ObjectStorage = (*LocalObjectStorage)(nil)

// Storage errors
var (
	// ErrInvalidKey is returned for keys that would leave the storage root
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrObjectTooLarge is returned by Put when the body exceeds its limit
	ErrObjectTooLarge = errors.New("object too large")
)

// LocalObjectStorage keeps product images on the local disk.
// Uploads go through the API's image endpoint and downloads are served
// statically under BaseURL. Meant for development and single-node setups.
type LocalObjectStorage struct {
	root    string
	baseURL string
}

// NewLocalObjectStorage creates the root directory if needed
func NewLocalObjectStorage(root, baseURL string) (*LocalObjectStorage, error) {
	if root == "" {
		return nil, errors.New("storage directory is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalObjectStorage{root: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root returns the directory objects are stored under
func (s *LocalObjectStorage) Root() string {
	return s.root
}

// GenerateUploadURL returns the PUT target of storageKey. Local URLs are not signed;
// the expiry is informational.
func (s *LocalObjectStorage) GenerateUploadURL(_ context.Context, storageKey, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if _, err := s.path(storageKey); err != nil {
		return "", time.Time{}, err
	}
	return s.url(storageKey), time.Now().Add(expiresIn), nil
}

// GenerateDownloadURL returns the static URL of storageKey
func (s *LocalObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if _, err := s.path(storageKey); err != nil {
		return "", time.Time{}, err
	}
	return s.url(storageKey), time.Now().Add(expiresIn), nil
}

// DeleteObject removes storageKey. Deleting a missing object is not an error.
func (s *LocalObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	p, err := s.path(storageKey)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// ObjectExists reports whether storageKey is a stored file
func (s *LocalObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	p, err := s.path(storageKey)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}
	return info.Mode().IsRegular(), nil
}

// Put writes body to storageKey, limited to maxBytes. The file appears atomically.
func (s *LocalObjectStorage) Put(ctx context.Context, storageKey string, body io.Reader, maxBytes int64) error {
	p, err := s.path(storageKey)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create object: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(body, maxBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	if n > maxBytes {
		return fmt.Errorf("%w: more than %d bytes", ErrObjectTooLarge, maxBytes)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}
	return nil
}

// path maps a key to a file under root, rejecting traversal
func (s *LocalObjectStorage) path(storageKey string) (string, error) {
	if storageKey == "" {
		return "", errEmptyKey
	}
	if strings.Contains(storageKey, `\`) || strings.HasPrefix(storageKey, "/") {
		return "", ErrInvalidKey
	}
	p := filepath.Join(s.root, filepath.FromSlash(storageKey))
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidKey
	}
	return p, nil
}

func (s *LocalObjectStorage) url(storageKey string) string {
	parts := strings.Split(storageKey, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return s.baseURL + "/" + strings.Join(parts, "/")
}
