// Package calendar holds the date primitives shared by the agenda views:
// week-anchor resolution, backend timestamp normalization and display
// formatting. Everything here is pure and safe for concurrent use.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

const (
	// DefaultZone is the farm's home civil time.
	DefaultZone = "Asia/Manila"
	// DefaultOffsetMinutes is the fixed UTC offset of DefaultZone (+08:00).
	DefaultOffsetMinutes = 8 * 60
)

// ErrInvalidDate is returned by ConstructDate for out-of-range fields.
var ErrInvalidDate = errors.New("invalid calendar date")

// manilaFixed stands in for Asia/Manila when the tz database is missing.
var manilaFixed = time.FixedZone(DefaultZone, DefaultOffsetMinutes*60)

// LoadZone resolves an IANA zone name. An empty name means DefaultZone.
// If the zone database cannot be read, DefaultZone falls back to a fixed
// +08:00 zone; any other unknown name is an error.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultZone
	}
	loc, err := time.LoadLocation(name)
	if err == nil {
		return loc, nil
	}
	if name == DefaultZone {
		return manilaFixed, nil
	}
	return nil, fmt.Errorf("load zone %q: %w", name, err)
}

// DaysInMonth reports the number of days in the given month. month must be
// 1..12; other values return 0.
func DaysInMonth(year int, month time.Month) int {
	if month < time.January || month > time.December {
		return 0
	}
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ConstructDate builds a calendar date at midnight UTC. Unlike time.Date it
// refuses to normalize overflowing fields: 2023-02-30 is an error, not
// March 2nd. Years are limited to the four-digit range the backend accepts.
func ConstructDate(year int, month time.Month, day int) (time.Time, error) {
	if year < 1 || year > 9999 {
		return time.Time{}, fmt.Errorf("%w: year %d", ErrInvalidDate, year)
	}
	if month < time.January || month > time.December {
		return time.Time{}, fmt.Errorf("%w: month %d", ErrInvalidDate, int(month))
	}
	if day < 1 || day > DaysInMonth(year, month) {
		return time.Time{}, fmt.Errorf("%w: day %d of %04d-%02d", ErrInvalidDate, day, year, int(month))
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// ZonedInstant is an instant tied to a named zone, the representation the
// calendar widget consumes.
type ZonedInstant struct {
	Time time.Time
	Zone string
}

// ToZoned places the calendar date of date at start-of-day in loc.
func ToZoned(date time.Time, loc *time.Location) ZonedInstant {
	if loc == nil {
		loc = manilaFixed
	}
	y, m, d := date.Date()
	return ZonedInstant{
		Time: time.Date(y, m, d, 0, 0, 0, 0, loc),
		Zone: loc.String(),
	}
}

// With returns a copy shifted to the given wall-clock hour and minute on the
// same date, seconds cleared.
func (z ZonedInstant) With(hour, minute int) ZonedInstant {
	y, m, d := z.Time.Date()
	z.Time = time.Date(y, m, d, hour, minute, 0, 0, z.Time.Location())
	return z
}

// OffsetMinutes is the UTC offset in effect at this instant.
func (z ZonedInstant) OffsetMinutes() int {
	_, sec := z.Time.Zone()
	return sec / 60
}

// WallClock returns the wall-clock fields of the instant in its own zone.
func (z ZonedInstant) WallClock() WallClock {
	w := WallClockOf(z.Time)
	w.Zone = z.Zone
	return w
}

// String renders the bracketed form, e.g.
// "2026-01-22T21:22:00+08:00[Asia/Manila]".
func (z ZonedInstant) String() string {
	return FormatTransport(z.WallClock(), z.OffsetMinutes()) + "[" + z.Zone + "]"
}
