package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/trip-linker/internal/application"
)

var (
	errBadRequestBody       = errors.New("Ungültiges Anfrageformat.")
	errInvalidDestinationID = errors.New("Ungültige Reiseziel-ID.")
	errInvalidSessionID     = errors.New("Ungültige Such-ID.")
	errInvalidLinkIndex     = errors.New("Ungültiger Link-Index.")
	errInvalidQuery         = errors.New("Ungültige Abfrageparameter.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request rejected", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrSessionNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: "SESSION_NOT_FOUND",
			Message:   "Die Suche wurde nicht gefunden oder ist abgelaufen.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: localizedStatusMessage(http.StatusNotFound)})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: localizedStatusMessage(http.StatusUnprocessableEntity),
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: localizedStatusMessage(http.StatusInternalServerError)})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Die Anfrage ist fehlerhaft."
	case http.StatusNotFound:
		return "Die angeforderte Ressource wurde nicht gefunden."
	case http.StatusMethodNotAllowed:
		return "Diese Methode ist hier nicht erlaubt."
	case http.StatusUnprocessableEntity:
		return "Die Eingaben sind ungültig."
	default:
		return "Interner Serverfehler."
	}
}

// wireFields maps parameter names to their request body keys.
var wireFields = map[string]string{
	"dateFrom":      "date_from",
	"dateTo":        "date_to",
	"flexDays":      "flex_days",
	"checkedBags":   "checked_bags",
	"departureCity": "departure_city",
	"radius":        "radius_km",
	"driverAge":     "driver_age",
	"destinationId": "destination_id",
	"holidayId":     "holiday_id",
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		if key, ok := wireFields[field]; ok {
			field = key
		}
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "destination is required":
		return "Bitte Reiseziel auswählen!"
	case "travel dates are required":
		return "Bitte Reisezeitraum eingeben!"
	case "must be a date in YYYY-MM-DD form":
		return "Datum bitte im Format JJJJ-MM-TT angeben."
	case "must not be after the return date":
		return "Die Hinreise darf nicht nach der Rückreise liegen."
	case "must not be before the departure date":
		return "Die Rückreise darf nicht vor der Hinreise liegen."
	case "must be at least 1":
		return "Der Wert muss mindestens 1 sein."
	case "must not be negative":
		return "Der Wert darf nicht negativ sein."
	case "must not be empty":
		return "Bitte einen Wert auswählen."
	case "unknown holiday period":
		return "Unbekannte Ferienperiode."
	case "destination does not exist":
		return "Das Reiseziel existiert nicht."
	case "field is not editable":
		return "Dieses Feld kann nicht bearbeitet werden."
	case "value is invalid":
		return "Der Wert ist ungültig."
	default:
		if rest, ok := strings.CutPrefix(message, "must be between "); ok {
			return "Der Wert muss zwischen " + strings.Replace(rest, " and ", " und ", 1) + " liegen."
		}
		if rest, ok := strings.CutPrefix(message, "must be one of "); ok {
			return "Erlaubte Werte: " + strings.Trim(rest, "[]") + "."
		}
		if strings.HasPrefix(message, "unknown departure city") {
			return "Unbekannte Abflugstadt."
		}
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
