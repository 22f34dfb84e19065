package application

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/trip-linker/internal/session"
)

const (
	defaultSessionTTL        = 12 * time.Hour
	defaultMaxSessionEntries = 64
)

// SessionRegistry keeps live search sessions addressable by id. Entries
// expire after ttl without access; when full, the least recently used entry
// is dropped.
type SessionRegistry struct {
	mu         sync.Mutex
	now        func() time.Time
	newID      func() string
	ttl        time.Duration
	maxEntries int
	entries    map[string]sessionEntry
}

type sessionEntry struct {
	session  *session.Session
	lastSeen time.Time
}

// NewSessionRegistry builds a registry. Zero values select the defaults;
// a nil idGenerator yields random UUIDs.
func NewSessionRegistry(ttl time.Duration, maxEntries int, idGenerator func() string, now func() time.Time) *SessionRegistry {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if maxEntries <= 0 {
		maxEntries = defaultMaxSessionEntries
	}
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	return &SessionRegistry{
		now:        now,
		newID:      idGenerator,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]sessionEntry),
	}
}

// Add registers s under a fresh id.
func (r *SessionRegistry) Add(s *session.Session) string {
	id := r.newID()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.cleanupLocked()
	if len(r.entries) >= r.maxEntries {
		r.evictOneLocked()
	}
	r.entries[id] = sessionEntry{session: s, lastSeen: r.now()}
	return id
}

// Get returns the session for id and refreshes its idle timer.
func (r *SessionRegistry) Get(id string) (*session.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	now := r.now()
	if now.Sub(entry.lastSeen) > r.ttl {
		delete(r.entries, id)
		return nil, false
	}
	entry.lastSeen = now
	r.entries[id] = entry
	return entry.session, true
}

// Remove drops the session for id.
func (r *SessionRegistry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	return ok
}

// Len returns the number of registered sessions, expired ones included.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *SessionRegistry) cleanupLocked() {
	now := r.now()
	for id, entry := range r.entries {
		if now.Sub(entry.lastSeen) > r.ttl {
			delete(r.entries, id)
		}
	}
}

func (r *SessionRegistry) evictOneLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, entry := range r.entries {
		if oldestID == "" || entry.lastSeen.Before(oldest) {
			oldestID, oldest = id, entry.lastSeen
		}
	}
	if oldestID != "" {
		delete(r.entries, oldestID)
	}
}
