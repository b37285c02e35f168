// Package fsstore stores assets as files under a root directory, one
// subdirectory per area.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"rgbyp-maskeditor/internal/assets"
)

// Store is a directory-backed assets.Store.
type Store struct {
	root string
	mu   sync.Mutex
}

var _ assets.Store = (*Store)(nil)

// New creates a store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create asset root: %w", err)
	}
	return &Store{root: dir}, nil
}

func (s *Store) path(ref assets.Ref) string {
	return filepath.Join(s.root, filepath.FromSlash(ref.Key()))
}

// Upload implements assets.Store. Files are written to a temporary name and
// renamed into place.
func (s *Store) Upload(ctx context.Context, ref assets.Ref, data []byte, overwrite bool) (assets.Ref, error) {
	if err := ctx.Err(); err != nil {
		return assets.Ref{}, err
	}
	if err := ref.Validate(); err != nil {
		return assets.Ref{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !overwrite {
		ref.Filename = assets.UniqueName(ref.Filename, func(name string) bool {
			c := ref
			c.Filename = name
			_, err := os.Stat(s.path(c))
			return err == nil
		})
	}

	dst := s.path(ref)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return assets.Ref{}, fmt.Errorf("failed to create asset directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return assets.Ref{}, fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return assets.Ref{}, fmt.Errorf("failed to write asset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return assets.Ref{}, fmt.Errorf("failed to write asset: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return assets.Ref{}, fmt.Errorf("failed to store asset: %w", err)
	}
	return ref, nil
}

// Fetch implements assets.Store.
func (s *Store) Fetch(ctx context.Context, ref assets.Ref) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", assets.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read asset: %w", err)
	}
	return data, nil
}
