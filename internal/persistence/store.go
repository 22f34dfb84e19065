package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// KeyValueStore persists opaque JSON documents under string keys.
type KeyValueStore interface {
	// Get returns the raw value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// GetJSON decodes the value stored under key. A missing key yields fallback
// and a nil error. A malformed value or a backend failure yields fallback
// together with the error so callers can report it and carry on.
func GetJSON[T any](ctx context.Context, store KeyValueStore, key string, fallback T) (T, error) {
	if store == nil {
		return fallback, nil
	}
	raw, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fallback, nil
		}
		return fallback, fmt.Errorf("persistence: read %q: %w", key, err)
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return fallback, fmt.Errorf("%w: key %q: %v", ErrMalformedValue, key, err)
	}
	return value, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, store KeyValueStore, key string, value any) error {
	if store == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("persistence: encode %q: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("persistence: write %q: %w", key, err)
	}
	return nil
}
