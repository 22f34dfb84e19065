package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/example/trip-linker/internal/session"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
}

func TestSessionRegistryIdleExpiry(t *testing.T) {
	current := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	registry := NewSessionRegistry(time.Hour, 4, sequentialIDs(), func() time.Time { return current })

	s := session.New(context.Background(), session.Config{})
	id := registry.Add(s)
	if id != "session-1" {
		t.Fatalf("unexpected id %q", id)
	}

	current = current.Add(50 * time.Minute)
	if got, ok := registry.Get(id); !ok || got != s {
		t.Fatalf("expected session before idle timeout")
	}

	// Access refreshes the idle timer.
	current = current.Add(50 * time.Minute)
	if _, ok := registry.Get(id); !ok {
		t.Fatalf("expected refreshed session to survive")
	}

	current = current.Add(61 * time.Minute)
	if _, ok := registry.Get(id); ok {
		t.Fatalf("expected idle session to expire")
	}
	if registry.Len() != 0 {
		t.Fatalf("expected expired entry to be dropped, got %d", registry.Len())
	}
}

func TestSessionRegistryEvictsLeastRecentlyUsed(t *testing.T) {
	current := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	registry := NewSessionRegistry(time.Hour, 2, sequentialIDs(), func() time.Time { return current })

	first := registry.Add(session.New(context.Background(), session.Config{}))
	current = current.Add(time.Minute)
	second := registry.Add(session.New(context.Background(), session.Config{}))
	current = current.Add(time.Minute)
	registry.Get(first)
	current = current.Add(time.Minute)
	third := registry.Add(session.New(context.Background(), session.Config{}))

	if _, ok := registry.Get(second); ok {
		t.Fatalf("expected least recently used session to be evicted")
	}
	for _, id := range []string{first, third} {
		if _, ok := registry.Get(id); !ok {
			t.Fatalf("expected %s to remain", id)
		}
	}
}

func TestSessionRegistryRemove(t *testing.T) {
	registry := NewSessionRegistry(0, 0, nil, nil)
	id := registry.Add(session.New(context.Background(), session.Config{}))
	if len(id) != 36 {
		t.Fatalf("expected uuid identifier, got %q", id)
	}
	if !registry.Remove(id) {
		t.Fatalf("expected Remove to report an existing entry")
	}
	if registry.Remove(id) {
		t.Fatalf("expected second Remove to report false")
	}
}
