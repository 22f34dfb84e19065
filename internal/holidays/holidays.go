// Package holidays classifies and filters a static catalog of school holiday
// periods against a moving "today".
package holidays

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/trip-linker/internal/dates"
)

// DefaultWindowMonths is the rolling look-ahead applied when none is configured.
const DefaultWindowMonths = 18

var (
	// ErrInvalidPeriod indicates a catalog entry violates from <= to or lacks an id.
	ErrInvalidPeriod = errors.New("holidays: invalid period")
	// ErrDuplicatePeriod indicates two catalog entries share an id.
	ErrDuplicatePeriod = errors.New("holidays: duplicate period id")
)

// Period is one named holiday interval as stored in the catalog.
type Period struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Emoji string     `json:"emoji"`
	From  dates.Date `json:"from"`
	To    dates.Date `json:"to"`
	Year  int        `json:"year"`
}

// Catalog is the region tag plus its ordered list of periods.
type Catalog struct {
	Region  string   `json:"region"`
	Periods []Period `json:"periods"`
}

// Normalize fills derived years and validates every entry. Catalog order is
// kept as is.
func (c Catalog) Normalize() (Catalog, error) {
	out := Catalog{Region: c.Region, Periods: make([]Period, 0, len(c.Periods))}
	seen := make(map[string]struct{}, len(c.Periods))
	for i, p := range c.Periods {
		if p.ID == "" || p.From.IsZero() || p.To.IsZero() || p.To.Before(p.From) {
			return Catalog{}, fmt.Errorf("%w: entry %d (%q)", ErrInvalidPeriod, i, p.ID)
		}
		if _, dup := seen[p.ID]; dup {
			return Catalog{}, fmt.Errorf("%w: %q", ErrDuplicatePeriod, p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Year == 0 {
			p.Year = p.From.Year()
		}
		out.Periods = append(out.Periods, p)
	}
	return out, nil
}

// Find returns the period with the given id.
func (c Catalog) Find(id string) (Period, bool) {
	for _, p := range c.Periods {
		if p.ID == id {
			return p, true
		}
	}
	return Period{}, false
}

// Status is the temporal state of a period relative to today.
type Status string

const (
	StatusPast    Status = "past"
	StatusCurrent Status = "current"
	StatusFuture  Status = "future"
)

// EnrichedPeriod is a Period with values derived at evaluation time.
type EnrichedPeriod struct {
	Period
	DurationDays int  `json:"durationDays"`
	IsPast       bool `json:"isPast"`
	IsCurrent    bool `json:"isCurrent"`
	IsFuture     bool `json:"isFuture"`
}

// Status reports the single temporal state that is set.
func (e EnrichedPeriod) Status() Status {
	switch {
	case e.IsPast:
		return StatusPast
	case e.IsCurrent:
		return StatusCurrent
	default:
		return StatusFuture
	}
}

// Enrich derives duration and temporal state of p as seen at now.
func Enrich(p Period, now time.Time) EnrichedPeriod {
	isPast := dates.IsPastDate(p.To, now)
	isCurrent := dates.IsCurrentRange(p.From, p.To, now)
	return EnrichedPeriod{
		Period:       p,
		DurationDays: dates.DaysBetween(p.From, p.To) + 1,
		IsPast:       isPast,
		IsCurrent:    isCurrent,
		IsFuture:     !isPast && !isCurrent,
	}
}

// Query selects the visible part of the catalog. WindowMonths <= 0 disables
// the rolling window; a nil Year disables the year filter.
type Query struct {
	WindowMonths int
	Year         *int
}

// Result is the outcome of Filter.
type Result struct {
	Region         string           `json:"region"`
	Periods        []EnrichedPeriod `json:"periods"`
	All            []EnrichedPeriod `json:"allPeriods"`
	AvailableYears []int            `json:"availableYears"`
	SelectedYear   *int             `json:"selectedYear"`
}

// Filter enriches every period against now, keeps those starting within the
// rolling window and, when requested, those of the selected year. The
// available years are taken from the windowed list before the year filter so
// that every year with visible entries stays selectable. Catalog order is
// preserved throughout.
func Filter(c Catalog, now time.Time, q Query) Result {
	all := make([]EnrichedPeriod, 0, len(c.Periods))
	for _, p := range c.Periods {
		all = append(all, Enrich(p, now))
	}

	windowed := all
	if q.WindowMonths > 0 {
		windowed = make([]EnrichedPeriod, 0, len(all))
		for _, e := range all {
			if dates.IsWithinMonths(e.From, q.WindowMonths, now) {
				windowed = append(windowed, e)
			}
		}
	}

	result := Result{
		Region:         c.Region,
		All:            all,
		AvailableYears: distinctYears(windowed),
		Periods:        windowed,
	}

	if q.Year != nil {
		year := *q.Year
		result.SelectedYear = &year
		selected := make([]EnrichedPeriod, 0, len(windowed))
		for _, e := range windowed {
			if e.Year == year {
				selected = append(selected, e)
			}
		}
		result.Periods = selected
	}

	return result
}

func distinctYears(periods []EnrichedPeriod) []int {
	seen := make(map[int]struct{}, len(periods))
	years := make([]int, 0)
	for _, p := range periods {
		if _, ok := seen[p.Year]; ok {
			continue
		}
		seen[p.Year] = struct{}{}
		years = append(years, p.Year)
	}
	sort.Ints(years)
	return years
}
