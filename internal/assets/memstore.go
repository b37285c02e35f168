package assets

import (
	"context"
	"fmt"
	"sync"
)

// MemStore is an in-process Store. It backs tests and the editor when no
// persistent backend is configured.
type MemStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// FailUpload, when set, is consulted before every upload and its error
	// returned.
	FailUpload func(ref Ref) error
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string][]byte)}
}

// Upload implements Store.
func (s *MemStore) Upload(ctx context.Context, ref Ref, data []byte, overwrite bool) (Ref, error) {
	if err := ctx.Err(); err != nil {
		return Ref{}, err
	}
	if err := ref.Validate(); err != nil {
		return Ref{}, err
	}
	if s.FailUpload != nil {
		if err := s.FailUpload(ref); err != nil {
			return Ref{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !overwrite {
		ref.Filename = UniqueName(ref.Filename, func(name string) bool {
			c := ref
			c.Filename = name
			_, ok := s.blobs[c.Key()]
			return ok
		})
	}
	s.blobs[ref.Key()] = append([]byte(nil), data...)
	return ref, nil
}

// Fetch implements Store.
func (s *MemStore) Fetch(ctx context.Context, ref Ref) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[ref.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return append([]byte(nil), data...), nil
}

// Has reports whether a blob exists for ref.
func (s *MemStore) Has(ref Ref) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[ref.Key()]
	return ok
}

// Len returns the number of stored blobs.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
