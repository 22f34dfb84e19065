// Package dates implements calendar-day arithmetic, formatting and
// classification for travel date ranges.
//
// A Date carries no time of day and no zone. It is stored as midnight UTC so
// that day differences never observe daylight-saving transitions. Functions
// that depend on "today" take the evaluation instant explicitly; the calendar
// day of that instant is read in the instant's own location.
package dates

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const isoLayout = "2006-01-02"

// ErrInvalidDate is returned when a date string cannot be parsed.
var ErrInvalidDate = errors.New("dates: invalid date")

// Date is a calendar day.
type Date struct {
	t time.Time
}

// New returns the date for the given components. Out-of-range components are
// normalized the same way time.Date normalizes them.
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime returns the calendar day of t in t's location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return New(y, m, d)
}

// Today returns the calendar day containing now.
func Today(now time.Time) Date {
	return FromTime(now)
}

// ParseISO parses a YYYY-MM-DD string.
func ParseISO(value string) (Date, error) {
	parsed, err := time.Parse(isoLayout, strings.TrimSpace(value))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return Date{t: parsed}, nil
}

// MustParseISO is like ParseISO but panics on malformed input. Intended for
// static data and tests.
func MustParseISO(value string) Date {
	d, err := ParseISO(value)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDisplay parses the German display form D.M.YYYY (leading zeros optional).
func ParseDisplay(value string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(value), ".")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
		}
		nums[i] = n
	}
	d := New(nums[2], time.Month(nums[1]), nums[0])
	if d.Day() != nums[0] || int(d.Month()) != nums[1] {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return d, nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Year returns the year of d.
func (d Date) Year() int { return d.t.Year() }

// Month returns the month of d.
func (d Date) Month() time.Month { return d.t.Month() }

// Day returns the day of month of d.
func (d Date) Day() int { return d.t.Day() }

// Time returns midnight UTC of d.
func (d Date) Time() time.Time { return d.t }

// ISO formats d as YYYY-MM-DD.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(isoLayout)
}

// Display formats d the way de-DE renders dates, e.g. 4.7.2026.
func (d Date) Display() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d.%d.%d", d.Day(), int(d.Month()), d.Year())
}

// String implements fmt.Stringer using the ISO form.
func (d Date) String() string { return d.ISO() }

// AddDays returns d shifted by n calendar days; n may be negative.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddMonths returns d shifted by n calendar months with time.AddDate overflow rules.
func (d Date) AddMonths(n int) Date {
	return Date{t: d.t.AddDate(0, n, 0)}
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d is later than other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// Equal reports whether d and other are the same day.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// MarshalText encodes d in ISO form.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.ISO()), nil
}

// UnmarshalText decodes an ISO date. An empty input yields the zero Date.
func (d *Date) UnmarshalText(text []byte) error {
	if len(strings.TrimSpace(string(text))) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseISO(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// AddDays returns date shifted by n calendar days.
func AddDays(date Date, n int) Date {
	return date.AddDays(n)
}

// DaysBetween returns b - a in whole calendar days.
func DaysBetween(a, b Date) int {
	return int(math.Round(b.t.Sub(a.t).Hours() / 24))
}

// IsPastDate reports whether d lies strictly before the calendar day of now.
func IsPastDate(d Date, now time.Time) bool {
	return d.Before(Today(now))
}

// IsCurrentRange reports whether the calendar day of now lies within
// [from, to], both ends inclusive.
func IsCurrentRange(from, to Date, now time.Time) bool {
	today := Today(now)
	return !today.Before(from) && !today.After(to)
}

// IsWithinMonths reports whether d is on or before today plus months calendar
// months. A non-positive months disables the check.
func IsWithinMonths(d Date, months int, now time.Time) bool {
	if months <= 0 {
		return true
	}
	return !d.After(Today(now).AddMonths(months))
}

// FlexDates holds the flight search dates narrowed inward from a travel range.
type FlexDates struct {
	Outbound Date `json:"outbound"`
	Return   Date `json:"return"`
}

// CalculateFlexDates narrows [from, to] by flex days from both ends. The
// window is not validated: a flex larger than half the range yields an
// inverted window.
func CalculateFlexDates(from, to Date, flex int) FlexDates {
	return FlexDates{
		Outbound: from.AddDays(flex),
		Return:   to.AddDays(-flex),
	}
}
