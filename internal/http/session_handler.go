package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/trip-linker/internal/application"
	"github.com/example/trip-linker/internal/links"
	"github.com/example/trip-linker/internal/session"
)

type sessionService interface {
	CreateSession(ctx context.Context) (application.SessionView, error)
	Session(ctx context.Context, id string) (application.SessionView, error)
	DeleteSession(ctx context.Context, id string) error
	UpdateSession(ctx context.Context, id string, patch application.SessionPatch) (application.SessionView, error)
	Generate(ctx context.Context, id, destinationID string) (application.SessionView, error)
	OpenLink(ctx context.Context, id string, index int) (application.OpenResult, error)
	OpenAll(ctx context.Context, id string) (application.OpenAllResult, error)
	CopyLinks(ctx context.Context, id string) (application.CopyResult, error)
}

// SessionHandler drives search sessions: selections, link generation and
// the open and copy actions.
type SessionHandler struct {
	service   sessionService
	responder responder
	logger    *slog.Logger
}

func NewSessionHandler(service sessionService, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	return &SessionHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

func (h *SessionHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *SessionHandler) sessionID(w http.ResponseWriter, r *http.Request, operation string) (string, bool) {
	id, ok := SessionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").WarnContext(r.Context(), "missing session id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return "", false
	}
	return id, true
}

// Create answers POST /sessions.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	view, err := h.service.CreateSession(r.Context())
	if err != nil {
		h.log(r.Context(), "Create").ErrorContext(r.Context(), "session creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+view.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{Session: toSessionDTO(view)})
}

// Get answers GET /sessions/{id}.
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.sessionID(w, r, "Get")
	if !ok {
		return
	}
	view, err := h.service.Session(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(view)})
}

// Delete answers DELETE /sessions/{id}.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.sessionID(w, r, "Delete")
	if !ok {
		return
	}
	if err := h.service.DeleteSession(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Update answers PATCH /sessions/{id}. Rejected fields are reported with
// 422 while accepted fields stay applied.
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.sessionID(w, r, "Update")
	if !ok {
		return
	}

	var req sessionPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "session_id", id, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode session patch", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	view, err := h.service.UpdateSession(r.Context(), id, req.toPatch())
	if err != nil {
		h.log(r.Context(), "Update", "session_id", id).InfoContext(r.Context(), "session patch rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(view)})
}

// Generate answers POST /sessions/{id}/generate.
func (h *SessionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.sessionID(w, r, "Generate")
	if !ok {
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.log(r.Context(), "Generate", "session_id", id, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode generate request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Generate", "session_id", id, "destination_id", req.DestinationID)
	view, err := h.service.Generate(r.Context(), id, strings.TrimSpace(req.DestinationID))
	if err != nil {
		logger.InfoContext(r.Context(), "link generation rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	logger.InfoContext(r.Context(), "links generated", "count", len(view.Links))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(view)})
}

// Open answers POST /sessions/{id}/open/{index}.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request, rawIndex string) {
	if !h.ready(w) {
		return
	}
	id, ok := h.sessionID(w, r, "Open")
	if !ok {
		return
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidLinkIndex)
		return
	}

	result, err := h.service.OpenLink(r.Context(), id, index)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, openResponse{
		Index:   result.Index,
		URL:     result.URL,
		Opened:  result.Opened,
		Message: result.Message,
	})
}

// OpenAll answers POST /sessions/{id}/open-all. The response is written once
// every tab was requested.
func (h *SessionHandler) OpenAll(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.sessionID(w, r, "OpenAll")
	if !ok {
		return
	}

	result, err := h.service.OpenAll(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.log(r.Context(), "OpenAll", "session_id", id).InfoContext(r.Context(), "bulk open finished",
		"opened", result.Opened,
		"blocked", result.Blocked,
	)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, openAllResponse{
		Opened:  result.Opened,
		Blocked: result.Blocked,
		Total:   result.Total,
		Message: result.Message,
	})
}

// Copy answers POST /sessions/{id}/copy.
func (h *SessionHandler) Copy(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	id, ok := h.sessionID(w, r, "Copy")
	if !ok {
		return
	}

	result, err := h.service.CopyLinks(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, copyResponse{
		Text:    result.Text,
		Copied:  result.Copied,
		Message: result.Message,
	})
}

type sessionPatchRequest struct {
	HolidayID     *string `json:"holiday_id"`
	DateFrom      *string `json:"date_from"`
	DateTo        *string `json:"date_to"`
	FlexDays      *int    `json:"flex_days"`
	Adults        *int    `json:"adults"`
	Bedrooms      *int    `json:"bedrooms"`
	CheckedBags   *int    `json:"checked_bags"`
	DepartureCity *string `json:"departure_city"`
	RadiusKm      *int    `json:"radius_km"`
	DriverAge     *int    `json:"driver_age"`
	DestinationID *string `json:"destination_id"`
}

func (r sessionPatchRequest) toPatch() application.SessionPatch {
	return application.SessionPatch{
		HolidayID:       r.HolidayID,
		DateFrom:        r.DateFrom,
		DateTo:          r.DateTo,
		FlexDays:        r.FlexDays,
		Adults:          r.Adults,
		Bedrooms:        r.Bedrooms,
		CheckedBags:     r.CheckedBags,
		DepartureCityID: r.DepartureCity,
		RadiusKm:        r.RadiusKm,
		DriverAge:       r.DriverAge,
		DestinationID:   r.DestinationID,
	}
}

type generateRequest struct {
	DestinationID string `json:"destination_id"`
}

type sessionResponse struct {
	Session sessionDTO `json:"session"`
}

type sessionDTO struct {
	ID                string        `json:"id"`
	State             string        `json:"state"`
	Settings          settingsDTO   `json:"settings"`
	SettingsPersisted bool          `json:"settings_persisted"`
	DateFrom          string        `json:"date_from,omitempty"`
	DateTo            string        `json:"date_to,omitempty"`
	FlexDates         *flexDatesDTO `json:"flex_dates,omitempty"`
	DestinationID     string        `json:"destination_id,omitempty"`
	Links             []linkDTO     `json:"links"`
	Stale             bool          `json:"stale"`
}

type settingsDTO struct {
	FlexDays      int    `json:"flex_days"`
	Adults        int    `json:"adults"`
	Bedrooms      int    `json:"bedrooms"`
	CheckedBags   int    `json:"checked_bags"`
	DepartureCity string `json:"departure_city"`
	RadiusKm      int    `json:"radius_km"`
	DriverAge     int    `json:"driver_age"`
}

type flexDatesDTO struct {
	Outbound        string `json:"outbound"`
	Return          string `json:"return"`
	OutboundDisplay string `json:"outbound_display"`
	ReturnDisplay   string `json:"return_display"`
}

type linkDTO struct {
	Type      string `json:"type"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	URL       string `json:"url"`
}

type openResponse struct {
	Index   int    `json:"index"`
	URL     string `json:"url"`
	Opened  bool   `json:"opened"`
	Message string `json:"message,omitempty"`
}

type openAllResponse struct {
	Opened  int    `json:"opened"`
	Blocked int    `json:"blocked"`
	Total   int    `json:"total"`
	Message string `json:"message,omitempty"`
}

type copyResponse struct {
	Text    string `json:"text"`
	Copied  bool   `json:"copied"`
	Message string `json:"message"`
}

func toSessionDTO(view application.SessionView) sessionDTO {
	dto := sessionDTO{
		ID:                view.ID,
		State:             string(view.State),
		Settings:          toSettingsDTO(view.Settings),
		SettingsPersisted: view.SettingsPersisted,
		DateFrom:          view.DateFrom.ISO(),
		DateTo:            view.DateTo.ISO(),
		DestinationID:     view.DestinationID,
		Links:             toLinkDTOs(view.Links),
		Stale:             view.Stale,
	}
	if view.FlexDates != nil {
		dto.FlexDates = &flexDatesDTO{
			Outbound:        view.FlexDates.Outbound.ISO(),
			Return:          view.FlexDates.Return.ISO(),
			OutboundDisplay: view.FlexDates.Outbound.Display(),
			ReturnDisplay:   view.FlexDates.Return.Display(),
		}
	}
	return dto
}

func toSettingsDTO(s session.Settings) settingsDTO {
	return settingsDTO{
		FlexDays:      s.FlexDays,
		Adults:        s.Adults,
		Bedrooms:      s.Bedrooms,
		CheckedBags:   s.CheckedBags,
		DepartureCity: s.DepartureCityID,
		RadiusKm:      s.RadiusKm,
		DriverAge:     s.DriverAge,
	}
}

func toLinkDTOs(descriptors []links.Descriptor) []linkDTO {
	out := make([]linkDTO, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, linkDTO{
			Type:      string(d.Category),
			Name:      d.DisplayName,
			ShortName: d.ShortName,
			Icon:      d.Icon,
			Color:     d.Color,
			URL:       d.URL,
		})
	}
	return out
}
