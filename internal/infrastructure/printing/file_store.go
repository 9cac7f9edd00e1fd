package printing

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot is returned for paths that escape the store root
var ErrOutsideRoot = errors.New("path is outside the invoice directory")

// FileStore writes invoice files below a root directory
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed
func NewFileStore(root string) (*FileStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve invoice directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create invoice directory: %w", err)
	}
	return &FileStore{root: abs}, nil
}

// Root returns the absolute root directory
func (s *FileStore) Root() string {
	return s.root
}

// Create opens a pending file for path. Nothing is visible at path until
// Commit; Abort discards what was written.
func (s *FileStore) Create(path string) (*PendingFile, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create invoice directory", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".invoice-*")
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create invoice file", err)
	}
	return &PendingFile{file: tmp, target: target}, nil
}

func (s *FileStore) resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(s.root, abs)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return abs, nil
}

// PendingFile is an invoice file being written
type PendingFile struct {
	file   *os.File
	target string
	closed bool
}

func (f *PendingFile) Write(p []byte) (int, error) {
	return f.file.Write(p)
}

// Commit moves the file into place
func (f *PendingFile) Commit() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if err := f.file.Close(); err != nil {
		_ = os.Remove(f.file.Name())
		return NewRenderError(ErrCodeStorageFailed, "failed to write invoice file", err)
	}
	if err := os.Rename(f.file.Name(), f.target); err != nil {
		_ = os.Remove(f.file.Name())
		return NewRenderError(ErrCodeStorageFailed, "failed to store invoice file", err)
	}
	return nil
}

// Abort removes the partial file. It is a no-op after Commit.
func (f *PendingFile) Abort() {
	if f.closed {
		return
	}
	f.closed = true
	_ = f.file.Close()
	_ = os.Remove(f.file.Name())
}
