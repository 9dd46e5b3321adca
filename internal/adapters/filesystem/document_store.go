// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

const filePerms = 0o644

// DocumentStore implements secondary.DocumentStore by writing exports into
// a directory. References are file:// URIs.
type DocumentStore struct {
	dir string
}

// NewDocumentStore creates a store rooted at dir. An empty dir defaults to
// .court/archive.
func NewDocumentStore(dir string) *DocumentStore {
	if dir == "" {
		dir = filepath.Join(".court", "archive")
	}
	return &DocumentStore{dir: dir}
}

// Dir returns the archive directory.
func (s *DocumentStore) Dir() string { return s.dir }

// Store writes the document atomically. An existing file with the same name
// is a conflict; names carry a second-resolution timestamp.
func (s *DocumentStore) Store(ctx context.Context, doc secondary.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := filepath.Base(doc.Name)
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, "..") {
		return "", courterr.Validation("document.store", "invalid document name %q", doc.Name)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", courterr.Persistence("document.store", err, "failed to create archive directory")
	}

	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err == nil {
		return "", courterr.Conflict("document.store", "archive file %s already exists", name)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(doc.Data)); err != nil {
		return "", courterr.Persistence("document.store", err, "failed to write archive file")
	}

	// Set file permissions (atomic.WriteFile doesn't set them for new files)
	if err := os.Chmod(path, filePerms); err != nil {
		return "", courterr.Persistence("document.store", err, "failed to set archive file permissions")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", courterr.Persistence("document.store", err, "failed to resolve archive path")
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}

// Load reads a stored document back by reference.
func (s *DocumentStore) Load(ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err != nil || u.Scheme != "file" {
		return nil, fmt.Errorf("not a file reference: %s", ref)
	}
	return os.ReadFile(filepath.FromSlash(u.Path))
}

// Ensure DocumentStore implements the interface
var _ secondary.DocumentStore = (*DocumentStore)(nil)
