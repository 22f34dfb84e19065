package application

import (
	"github.com/example/trip-linker/internal/destinations"
	"github.com/example/trip-linker/internal/session"
)

// HolidayQuery selects the visible holiday periods. A nil WindowMonths uses
// the configured window; zero or less disables it. A nil Year shows all years.
type HolidayQuery struct {
	WindowMonths *int
	Year         *int
}

// DestinationChange is the outcome of an override edit or reset.
type DestinationChange struct {
	Destination destinations.Destination `json:"destination"`
	Persisted   bool                     `json:"persisted"`
}

// OriginalValue is the catalog value of one editable field.
type OriginalValue struct {
	DestinationID string `json:"destinationId"`
	Field         string `json:"field"`
	Value         any    `json:"value"`
}

// SessionPatch carries a partial update of a search session. Nil fields are
// left unchanged. HolidayID takes precedence over DateFrom and DateTo; an
// empty date string clears that end of the range.
type SessionPatch struct {
	HolidayID       *string
	DateFrom        *string
	DateTo          *string
	FlexDays        *int
	Adults          *int
	Bedrooms        *int
	CheckedBags     *int
	DepartureCityID *string
	RadiusKm        *int
	DriverAge       *int
	DestinationID   *string
}

func (p SessionPatch) touchesSettings() bool {
	return p.FlexDays != nil || p.Adults != nil || p.Bedrooms != nil || p.CheckedBags != nil ||
		p.DepartureCityID != nil || p.RadiusKm != nil || p.DriverAge != nil
}

// SessionView is the externally visible state of a search session.
type SessionView struct {
	ID                string `json:"id"`
	SettingsPersisted bool   `json:"settingsPersisted"`
	session.Snapshot
}

// OpenResult reports a single open request.
type OpenResult struct {
	Index   int    `json:"index"`
	URL     string `json:"url"`
	Opened  bool   `json:"opened"`
	Message string `json:"message,omitempty"`
}

// OpenAllResult reports a bulk open request.
type OpenAllResult struct {
	session.Summary
	Message string `json:"message"`
}

// CopyResult reports a clipboard request. Text is returned even when the
// clipboard rejected it so callers can offer it for manual copying.
type CopyResult struct {
	Text    string `json:"text"`
	Copied  bool   `json:"copied"`
	Message string `json:"message"`
}
