// Package memstore is a process-local KV backend. Nothing survives exit.
package memstore

import (
	"context"
	"slices"
)

// Store keeps values in a map. It is not safe for concurrent use.
type Store struct {
	data map[string][]byte
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(v), true, nil
}

// Set stores a copy of value under key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.data[key] = slices.Clone(value)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
