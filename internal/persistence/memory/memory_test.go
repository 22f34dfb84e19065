package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/example/trip-linker/internal/persistence"
)

func TestStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("missing keys report ErrNotFound", func(t *testing.T) {
		s := New()
		if _, err := s.Get(ctx, "absent"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("set, get and delete", func(t *testing.T) {
		s := New()
		value := []byte(`{"a":1}`)
		if err := s.Set(ctx, "k", value); err != nil {
			t.Fatalf("Set returned error: %v", err)
		}
		value[0] = 'x'

		got, err := s.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if string(got) != `{"a":1}` {
			t.Fatalf("expected stored copy to be isolated, got %s", got)
		}

		if err := s.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete returned error: %v", err)
		}
		if err := s.Delete(ctx, "k"); err != nil {
			t.Fatalf("deleting a missing key should succeed, got %v", err)
		}
		if len(s.Keys()) != 0 {
			t.Fatalf("expected no keys, got %v", s.Keys())
		}
	})

	t.Run("rejects blank keys", func(t *testing.T) {
		s := New()
		if err := s.Set(ctx, "  ", nil); !errors.Is(err, persistence.ErrEmptyKey) {
			t.Fatalf("expected ErrEmptyKey, got %v", err)
		}
	})
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	type settings struct {
		Adults int `json:"adults"`
	}

	t.Run("missing key yields fallback without error", func(t *testing.T) {
		got, err := persistence.GetJSON(ctx, New(), "settings", settings{Adults: 3})
		if err != nil || got.Adults != 3 {
			t.Fatalf("expected fallback, got %+v / %v", got, err)
		}
	})

	t.Run("round trips stored values", func(t *testing.T) {
		s := New()
		if err := persistence.SetJSON(ctx, s, "settings", settings{Adults: 5}); err != nil {
			t.Fatalf("SetJSON returned error: %v", err)
		}
		got, err := persistence.GetJSON(ctx, s, "settings", settings{Adults: 3})
		if err != nil || got.Adults != 5 {
			t.Fatalf("expected stored value, got %+v / %v", got, err)
		}
	})

	t.Run("malformed value yields fallback and error", func(t *testing.T) {
		s := New()
		_ = s.Set(ctx, "settings", []byte("{not json"))
		got, err := persistence.GetJSON(ctx, s, "settings", settings{Adults: 3})
		if !errors.Is(err, persistence.ErrMalformedValue) {
			t.Fatalf("expected ErrMalformedValue, got %v", err)
		}
		if got.Adults != 3 {
			t.Fatalf("expected fallback on malformed value, got %+v", got)
		}
	})
}
