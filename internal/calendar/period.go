package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Week anchors offered by the agenda filter: the day of the month each
// "week" starts on.
const (
	Week1 = 1
	Week2 = 8
	Week3 = 15
	Week4 = 22
)

// AnchorLayout is the fromDate shape the backend event listing expects.
const AnchorLayout = "2006-01-02 15:04:05"

// ErrInvalidPeriod marks a selector that cannot resolve to a date. Callers
// must not issue a query for it.
var ErrInvalidPeriod = errors.New("invalid period")

// PeriodSelector is "the week starting on day WeekAnchor of Month/Year".
// Zero fields mean "not selected yet".
type PeriodSelector struct {
	Year       int `json:"year" yaml:"year"`
	Month      int `json:"month" yaml:"month"`
	WeekAnchor int `json:"week" yaml:"week"`
}

// Complete reports whether all three fields have been chosen.
func (s PeriodSelector) Complete() bool {
	return s.Year != 0 && s.Month != 0 && s.WeekAnchor != 0
}

// Valid reports whether the selector is usable for querying.
func (s PeriodSelector) Valid() bool {
	if !s.Complete() {
		return false
	}
	_, err := s.AnchorDate()
	return err == nil
}

// AnchorDate returns the anchor day at noon, UTC-naive. The anchor is
// clamped to the last day of the month; anchors outside the offered set are
// clamped the same way, non-positive anchors are rejected.
func (s PeriodSelector) AnchorDate() (time.Time, error) {
	if s.WeekAnchor < 1 {
		return time.Time{}, fmt.Errorf("%w: week anchor %d", ErrInvalidPeriod, s.WeekAnchor)
	}
	days := DaysInMonth(s.Year, time.Month(s.Month))
	if days == 0 {
		return time.Time{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, s.Month)
	}
	day := min(s.WeekAnchor, days)

	date, err := ConstructDate(s.Year, time.Month(s.Month), day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidPeriod, err)
	}
	// Noon keeps the date stable when the backend reads it at another offset.
	return date.Add(12 * time.Hour), nil
}

// ResolveAnchor renders the selector as "YYYY-MM-DD 12:00:00".
func ResolveAnchor(s PeriodSelector) (string, error) {
	t, err := s.AnchorDate()
	if err != nil {
		return "", err
	}
	return t.Format(AnchorLayout), nil
}

// WeekEnd is the last day covered by the selected week: six days after the
// anchor, or the month end for the final week.
func (s PeriodSelector) WeekEnd() (time.Time, error) {
	start, err := s.AnchorDate()
	if err != nil {
		return time.Time{}, err
	}
	last := DaysInMonth(s.Year, time.Month(s.Month))
	endDay := start.Day() + 6
	if s.WeekAnchor >= Week4 || endDay > last {
		endDay = last
	}
	return time.Date(start.Year(), start.Month(), endDay, 12, 0, 0, 0, time.UTC), nil
}

// Option is a value/label pair for filter dropdowns.
type Option struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// PeriodOptions lists the choices the agenda filter offers.
type PeriodOptions struct {
	Years  []Option `json:"years"`
	Months []Option `json:"months"`
	Weeks  []Option `json:"weeks"`
}

// OptionsFor builds the dropdown choices around the current year: five years
// back and five forward.
func OptionsFor(now time.Time) PeriodOptions {
	var opts PeriodOptions

	current := now.Year()
	for y := current - 5; y <= current+5; y++ {
		opts.Years = append(opts.Years, Option{Value: y, Label: fmt.Sprint(y)})
	}
	for m := time.January; m <= time.December; m++ {
		opts.Months = append(opts.Months, Option{Value: int(m), Label: m.String()})
	}
	opts.Weeks = []Option{
		{Value: Week1, Label: "Week 1 (1-7)"},
		{Value: Week2, Label: "Week 2 (8-14)"},
		{Value: Week3, Label: "Week 3 (15-21)"},
		{Value: Week4, Label: "Week 4 (22-end)"},
	}
	return opts
}

// WeekOf is the selector whose week contains t's calendar date.
func WeekOf(t time.Time) PeriodSelector {
	anchor := Week1
	for _, a := range []int{Week2, Week3, Week4} {
		if t.Day() >= a {
			anchor = a
		}
	}
	return PeriodSelector{Year: t.Year(), Month: int(t.Month()), WeekAnchor: anchor}
}

// DefaultSelector is week 1 of the month containing now.
func DefaultSelector(now time.Time) PeriodSelector {
	return PeriodSelector{Year: now.Year(), Month: int(now.Month()), WeekAnchor: Week1}
}
