package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/trip-linker/internal/application"
	"github.com/example/trip-linker/internal/destinations"
)

type destinationService interface {
	DepartureCities() []destinations.DepartureCity
	Destinations(ctx context.Context) ([]destinations.Destination, error)
	Destination(ctx context.Context, id string) (destinations.Destination, error)
	UpdateDestinationField(ctx context.Context, id, field, value string) (application.DestinationChange, error)
	ResetDestination(ctx context.Context, id string) (application.DestinationChange, error)
	OriginalValue(id, field string) (application.OriginalValue, error)
}

// DestinationHandler serves the destination catalog and its overrides.
type DestinationHandler struct {
	service   destinationService
	responder responder
	logger    *slog.Logger
}

func NewDestinationHandler(service destinationService, logger *slog.Logger) *DestinationHandler {
	base := defaultLogger(logger)
	return &DestinationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *DestinationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "DestinationHandler", operation, attrs...)
}

func (h *DestinationHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *DestinationHandler) destinationID(w http.ResponseWriter, r *http.Request, operation string) (string, bool) {
	id, ok := DestinationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").WarnContext(r.Context(), "missing destination id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDestinationID)
		return "", false
	}
	return id, true
}

// DepartureCities answers GET /departure-cities.
func (h *DestinationHandler) DepartureCities(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	cities := h.service.DepartureCities()
	resp := departureCitiesResponse{DepartureCities: make([]departureCityDTO, 0, len(cities))}
	for _, c := range cities {
		resp.DepartureCities = append(resp.DepartureCities, departureCityDTO{ID: c.ID, Name: c.Name})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// List answers GET /destinations.
func (h *DestinationHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	list, err := h.service.Destinations(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "destination listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	resp := destinationsResponse{Destinations: make([]destinationDTO, 0, len(list))}
	for _, d := range list {
		resp.Destinations = append(resp.Destinations, toDestinationDTO(d))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

// Get answers GET /destinations/{id}.
func (h *DestinationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.destinationID(w, r, "Get")
	if !ok {
		return
	}
	dest, err := h.service.Destination(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, destinationResponse{Destination: toDestinationDTO(dest)})
}

// UpdateOverride answers PUT /destinations/{id}/overrides.
func (h *DestinationHandler) UpdateOverride(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.destinationID(w, r, "UpdateOverride")
	if !ok {
		return
	}

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "UpdateOverride", "destination_id", id, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode override request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateOverride", "destination_id", id, "field", req.Field)
	change, err := h.service.UpdateDestinationField(r.Context(), id, domainField(req.Field), req.Value)
	if err != nil {
		logger.WarnContext(r.Context(), "override update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "override updated", "persisted", change.Persisted)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDestinationChangeResponse(change))
}

// ResetOverride answers DELETE /destinations/{id}/overrides.
func (h *DestinationHandler) ResetOverride(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.destinationID(w, r, "ResetOverride")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "ResetOverride", "destination_id", id)
	change, err := h.service.ResetDestination(r.Context(), id)
	if err != nil {
		logger.WarnContext(r.Context(), "override reset failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "overrides reset", "persisted", change.Persisted)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDestinationChangeResponse(change))
}

// Original answers GET /destinations/{id}/original?field=.
func (h *DestinationHandler) Original(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.destinationID(w, r, "Original")
	if !ok {
		return
	}
	original, err := h.service.OriginalValue(id, domainField(r.URL.Query().Get("field")))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, originalValueResponse{
		DestinationID: original.DestinationID,
		Field:         original.Field,
		Value:         original.Value,
	})
}

// overrideFields maps request field names to record field names. The
// record names themselves are accepted as well.
var overrideFields = map[string]string{
	"country_de":     "countryDE",
	"kiwi_slug":      "kiwiSlug",
	"airbnb_format":  "airbnbFormat",
	"booking_format": "bookingFormat",
}

func domainField(name string) string {
	if mapped, ok := overrideFields[strings.TrimSpace(name)]; ok {
		return mapped
	}
	return name
}

type overrideRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type departureCitiesResponse struct {
	DepartureCities []departureCityDTO `json:"departure_cities"`
}

type departureCityDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type destinationsResponse struct {
	Destinations []destinationDTO `json:"destinations"`
}

type destinationResponse struct {
	Destination destinationDTO `json:"destination"`
	Persisted   *bool          `json:"persisted,omitempty"`
}

type originalValueResponse struct {
	DestinationID string `json:"destination_id"`
	Field         string `json:"field"`
	Value         any    `json:"value"`
}

type destinationDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Country       string  `json:"country"`
	CountryDE     string  `json:"country_de"`
	KiwiSlug      string  `json:"kiwi_slug"`
	AirbnbFormat  string  `json:"airbnb_format"`
	BookingFormat string  `json:"booking_format"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	HasOverride   bool    `json:"has_override"`
}

func toDestinationDTO(d destinations.Destination) destinationDTO {
	return destinationDTO{
		ID:            d.ID,
		Name:          d.Name,
		Country:       d.Country,
		CountryDE:     d.CountryDE,
		KiwiSlug:      d.KiwiSlug,
		AirbnbFormat:  d.AirbnbFormat,
		BookingFormat: d.BookingFormat,
		Lat:           d.Lat,
		Lon:           d.Lon,
		HasOverride:   d.HasOverride,
	}
}

func toDestinationChangeResponse(change application.DestinationChange) destinationResponse {
	persisted := change.Persisted
	return destinationResponse{Destination: toDestinationDTO(change.Destination), Persisted: &persisted}
}
