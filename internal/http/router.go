package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Holidays     *HolidayHandler
	Destinations *DestinationHandler
	Sessions     *SessionHandler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Holidays != nil {
		mux.HandleFunc("/holidays", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Holidays.List(w, r)
		})
	}

	if cfg.Destinations != nil {
		mux.HandleFunc("/departure-cities", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Destinations.DepartureCities(w, r)
		})
		mux.HandleFunc("/destinations", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Destinations.List(w, r)
		})
		mux.HandleFunc("/destinations/", func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitResource(r.URL.Path, "/destinations/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithDestinationID(r.Context(), id))

			switch rest {
			case "":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Destinations.Get(w, r)
			case "overrides":
				switch r.Method {
				case http.MethodPut:
					cfg.Destinations.UpdateOverride(w, r)
				case http.MethodDelete:
					cfg.Destinations.ResetOverride(w, r)
				default:
					methodNotAllowed(w, http.MethodPut, http.MethodDelete)
				}
			case "original":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Destinations.Original(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Sessions != nil {
		mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Sessions.Create(w, r)
		})
		mux.HandleFunc("/sessions/", func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitResource(r.URL.Path, "/sessions/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithSessionID(r.Context(), id))

			if rest == "" {
				switch r.Method {
				case http.MethodGet:
					cfg.Sessions.Get(w, r)
				case http.MethodPatch:
					cfg.Sessions.Update(w, r)
				case http.MethodDelete:
					cfg.Sessions.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPatch, http.MethodDelete)
				}
				return
			}

			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			switch {
			case rest == "generate":
				cfg.Sessions.Generate(w, r)
			case rest == "open-all":
				cfg.Sessions.OpenAll(w, r)
			case rest == "copy":
				cfg.Sessions.Copy(w, r)
			case strings.HasPrefix(rest, "open/"):
				cfg.Sessions.Open(w, r, strings.TrimPrefix(rest, "open/"))
			default:
				http.NotFound(w, r)
			}
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

// splitResource returns the identifier following prefix and the remaining
// sub path without surrounding slashes.
func splitResource(path, prefix string) (id, rest string) {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	id, rest, _ = strings.Cut(trimmed, "/")
	return id, rest
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
