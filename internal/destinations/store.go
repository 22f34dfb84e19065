package destinations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/example/trip-linker/internal/persistence"
)

// OverridesKey is the store key holding every override, keyed by destination id.
const OverridesKey = "destination_overrides"

// Store serves merged destinations. Edits are read-modify-write on a single
// stored map; a failing backend never blocks an edit, the in-memory state is
// kept and the failure is reported as ErrNotPersisted.
type Store struct {
	mu        sync.RWMutex
	dataset   Dataset
	index     map[string]int
	overrides map[string]Override
	kv        persistence.KeyValueStore
	logger    *slog.Logger
}

// NewStore validates the dataset and loads stored overrides. Unreadable
// overrides are logged and replaced by an empty set.
func NewStore(ctx context.Context, dataset Dataset, kv persistence.KeyValueStore, logger *slog.Logger) (*Store, error) {
	if err := dataset.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		dataset: dataset,
		index:   make(map[string]int, len(dataset.Destinations)),
		kv:      kv,
		logger:  logger.With("component", "destination_store"),
	}
	for i, r := range dataset.Destinations {
		s.index[r.ID] = i
	}

	overrides, err := persistence.GetJSON(ctx, kv, OverridesKey, map[string]Override{})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load destination overrides, continuing without them", "error", err)
	}
	if overrides == nil {
		overrides = map[string]Override{}
	}
	s.overrides = overrides
	return s, nil
}

// List returns every destination in catalog order with overrides applied.
func (s *Store) List() []Destination {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Destination, 0, len(s.dataset.Destinations))
	for _, r := range s.dataset.Destinations {
		out = append(out, s.mergeLocked(r))
	}
	return out
}

// Get returns the merged destination with the given id.
func (s *Store) Get(id string) (Destination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return Destination{}, fmt.Errorf("%w: %q", ErrUnknownDestination, id)
	}
	return s.mergeLocked(s.dataset.Destinations[i]), nil
}

// DepartureCities returns the selectable departure hubs in catalog order.
func (s *Store) DepartureCities() []DepartureCity {
	return append([]DepartureCity(nil), s.dataset.DepartureCities...)
}

// HasDepartureCity reports whether id names a known departure hub.
func (s *Store) HasDepartureCity(id string) bool {
	for _, c := range s.dataset.DepartureCities {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Update sets one field of a destination's override and persists the whole
// override map. The merged destination is returned even when persisting
// fails; in that case the error wraps ErrNotPersisted.
func (s *Store) Update(ctx context.Context, id string, field Field, value string) (Destination, error) {
	field, err := ParseField(string(field))
	if err != nil {
		return Destination{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return Destination{}, fmt.Errorf("%w: %q", ErrUnknownDestination, id)
	}
	updated, err := s.overrides[id].With(field, value)
	if err != nil {
		return Destination{}, err
	}

	next := s.cloneOverridesLocked()
	next[id] = updated
	s.overrides = next

	merged := s.mergeLocked(s.dataset.Destinations[i])
	s.logger.InfoContext(ctx, "destination override updated", "destination_id", id, "field", string(field))
	return merged, s.persistLocked(ctx)
}

// Reset removes every override of a destination.
func (s *Store) Reset(ctx context.Context, id string) (Destination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return Destination{}, fmt.Errorf("%w: %q", ErrUnknownDestination, id)
	}

	next := s.cloneOverridesLocked()
	delete(next, id)
	s.overrides = next

	merged := s.mergeLocked(s.dataset.Destinations[i])
	s.logger.InfoContext(ctx, "destination overrides reset", "destination_id", id)
	return merged, s.persistLocked(ctx)
}

// OriginalValue returns the catalog value of field for destination id,
// ignoring overrides.
func (s *Store) OriginalValue(id string, field Field) (any, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.dataset.Destinations[i].Value(field)
}

// Overrides returns a copy of the current override map.
func (s *Store) Overrides() map[string]Override {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneOverridesLocked()
}

func (s *Store) mergeLocked(r Record) Destination {
	o, ok := s.overrides[r.ID]
	if !ok {
		return Destination{Record: r}
	}
	return Destination{Record: o.Apply(r), HasOverride: o.Len() > 0}
}

func (s *Store) cloneOverridesLocked() map[string]Override {
	out := make(map[string]Override, len(s.overrides))
	for id, o := range s.overrides {
		out[id] = o
	}
	return out
}

func (s *Store) persistLocked(ctx context.Context) error {
	if err := persistence.SetJSON(ctx, s.kv, OverridesKey, s.overrides); err != nil {
		s.logger.WarnContext(ctx, "failed to persist destination overrides", "error", err)
		return fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	return nil
}
