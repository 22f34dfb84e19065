package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/trip-linker/internal/application"
	"github.com/example/trip-linker/internal/holidays"
)

type holidayService interface {
	Holidays(ctx context.Context, q application.HolidayQuery) holidays.Result
}

// HolidayHandler serves the school holiday catalog.
type HolidayHandler struct {
	service   holidayService
	responder responder
	logger    *slog.Logger
}

func NewHolidayHandler(service holidayService, logger *slog.Logger) *HolidayHandler {
	base := defaultLogger(logger)
	return &HolidayHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *HolidayHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "HolidayHandler", operation, attrs...)
}

// List answers GET /holidays?year=&window=.
func (h *HolidayHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query, err := parseHolidayQuery(r)
	if err != nil {
		h.log(r.Context(), "List", "error_kind", "bad_request").WarnContext(r.Context(), "invalid holiday query", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidQuery)
		return
	}

	result := h.service.Holidays(r.Context(), query)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toHolidaysResponse(result))
}

func parseHolidayQuery(r *http.Request) (application.HolidayQuery, error) {
	var q application.HolidayQuery
	values := r.URL.Query()
	if raw := strings.TrimSpace(values.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return q, err
		}
		q.Year = &year
	}
	if raw := strings.TrimSpace(values.Get("window")); raw != "" {
		months, err := strconv.Atoi(raw)
		if err != nil {
			return q, err
		}
		q.WindowMonths = &months
	}
	return q, nil
}

type holidaysResponse struct {
	Region         string             `json:"region"`
	Periods        []holidayPeriodDTO `json:"periods"`
	AllPeriods     []holidayPeriodDTO `json:"all_periods"`
	AvailableYears []int              `json:"available_years"`
	SelectedYear   *int               `json:"selected_year,omitempty"`
}

type holidayPeriodDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Emoji        string `json:"emoji,omitempty"`
	From         string `json:"from"`
	To           string `json:"to"`
	FromDisplay  string `json:"from_display"`
	ToDisplay    string `json:"to_display"`
	Year         int    `json:"year"`
	DurationDays int    `json:"duration_days"`
	Status       string `json:"status"`
}

func toHolidaysResponse(result holidays.Result) holidaysResponse {
	return holidaysResponse{
		Region:         result.Region,
		Periods:        toHolidayPeriodDTOs(result.Periods),
		AllPeriods:     toHolidayPeriodDTOs(result.All),
		AvailableYears: result.AvailableYears,
		SelectedYear:   result.SelectedYear,
	}
}

func toHolidayPeriodDTOs(periods []holidays.EnrichedPeriod) []holidayPeriodDTO {
	out := make([]holidayPeriodDTO, 0, len(periods))
	for _, p := range periods {
		out = append(out, holidayPeriodDTO{
			ID:           p.ID,
			Name:         p.Name,
			Emoji:        p.Emoji,
			From:         p.From.ISO(),
			To:           p.To.ISO(),
			FromDisplay:  p.From.Display(),
			ToDisplay:    p.To.Display(),
			Year:         p.Year,
			DurationDays: p.DurationDays,
			Status:       string(p.Status()),
		})
	}
	return out
}
