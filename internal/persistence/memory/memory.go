// Package memory provides an in-process persistence.KeyValueStore.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/example/trip-linker/internal/persistence"
)

// Storage keeps values in a map guarded by a read/write mutex.
type Storage struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// New returns an empty Storage.
func New() *Storage {
	return &Storage{entries: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if strings.TrimSpace(key) == "" {
		return nil, persistence.ErrEmptyKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, persistence.ErrNotFound
	}
	return cloneBytes(value), nil
}

// Set stores a copy of value under key.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if strings.TrimSpace(key) == "" {
		return persistence.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = cloneBytes(value)
	return nil
}

// Delete removes key if present.
func (s *Storage) Delete(ctx context.Context, key string) error {
	if strings.TrimSpace(key) == "" {
		return persistence.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Keys returns the stored keys in ascending order.
func (s *Storage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out
}
