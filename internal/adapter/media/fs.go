// Package media implements blob storage for uploaded images on the local
// filesystem or an S3-compatible bucket.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/atelier-cms/atelier/internal/domain"
)

// FSStore stores uploads under a local directory.
type FSStore struct {
	dir        string
	publicBase string
}

// NewFSStore creates the directory if needed and returns a local store.
func NewFSStore(dir, publicBase string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &FSStore{dir: dir, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

// Put writes the blob to disk and returns its public path.
func (s *FSStore) Put(_ context.Context, name string, _ string, r io.Reader) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(s.dir, name)) //nolint:gosec // G304: name is sanitized by cleanName
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close() //nolint:errcheck,gosec // write error takes precedence
		return "", fmt.Errorf("write media file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close media file: %w", err)
	}
	return s.publicBase + "/" + name, nil
}

// Open returns a reader over a stored blob.
func (s *FSStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.dir, name)) //nolint:gosec // G304: name is sanitized by cleanName
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open media %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open media %s: %w", name, err)
	}
	return f, nil
}

// Delete removes a stored blob. Deleting a missing blob is not an error.
func (s *FSStore) Delete(_ context.Context, name string) error {
	name, err := cleanName(name)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete media %s: %w", name, err)
	}
	return nil
}

// cleanName rejects names that would escape the storage directory.
func cleanName(name string) (string, error) {
	cleaned := path.Clean("/" + name)[1:]
	if cleaned == "" || cleaned != name || strings.Contains(name, "\\") {
		return "", fmt.Errorf("%w: bad media name %q", domain.ErrValidation, name)
	}
	return cleaned, nil
}
