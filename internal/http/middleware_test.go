package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"

	"github.com/example/trip-linker/internal/logging"
)

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var seenID string
	handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = logging.RequestIDFromContext(r.Context())
		if LoggerFromContext(r.Context()) == nil {
			t.Errorf("expected request logger in context")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	ids := make(map[string]struct{})
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/holidays", nil))

		id := rec.Header().Get(RequestIDHeader)
		if _, err := ulid.ParseStrict(id); err != nil {
			t.Fatalf("expected ULID request id, got %q: %v", id, err)
		}
		if id != seenID {
			t.Fatalf("expected context id %q to match header %q", seenID, id)
		}
		ids[id] = struct{}{}
	}
	if len(ids) != 3 {
		t.Fatalf("expected unique request ids, got %v", ids)
	}

	out := buf.String()
	if !strings.Contains(out, "request completed") || !strings.Contains(out, "status=418") || !strings.Contains(out, "path=/holidays") {
		t.Fatalf("unexpected log output %s", out)
	}
}

func TestRecoverer(t *testing.T) {
	handler := Recoverer(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Interner Serverfehler.") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestSplitResource(t *testing.T) {
	tests := []struct {
		path, id, rest string
	}{
		{path: "/sessions/abc", id: "abc"},
		{path: "/sessions/abc/", id: "abc"},
		{path: "/sessions/abc/open/2", id: "abc", rest: "open/2"},
		{path: "/sessions/", id: ""},
	}
	for _, tt := range tests {
		id, rest := splitResource(tt.path, "/sessions/")
		if id != tt.id || rest != tt.rest {
			t.Errorf("splitResource(%q) = %q, %q; want %q, %q", tt.path, id, rest, tt.id, tt.rest)
		}
	}
}

func TestTranslateValidationMessage(t *testing.T) {
	tests := map[string]string{
		"must be between 18 and 99":             "Der Wert muss zwischen 18 und 99 liegen.",
		`unknown departure city "berlin"`:       "Unbekannte Abflugstadt.",
		"must not be before the departure date": "Die Rückreise darf nicht vor der Hinreise liegen.",
		"something else":                        "something else",
	}
	for in, want := range tests {
		if got := translateValidationMessage(in); got != want {
			t.Errorf("translateValidationMessage(%q) = %q, want %q", in, got, want)
		}
	}
}
