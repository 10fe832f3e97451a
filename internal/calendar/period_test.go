package calendar_test

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"farmcal/internal/calendar"
)

func TestResolveAnchor(t *testing.T) {
	tests := []struct {
		name string
		sel  calendar.PeriodSelector
		want string
	}{
		{"leap february week 4", calendar.PeriodSelector{Year: 2024, Month: 2, WeekAnchor: 22}, "2024-02-22 12:00:00"},
		{"short february week 4", calendar.PeriodSelector{Year: 2023, Month: 2, WeekAnchor: 22}, "2023-02-22 12:00:00"},
		{"april week 4", calendar.PeriodSelector{Year: 2024, Month: 4, WeekAnchor: 22}, "2024-04-22 12:00:00"},
		{"week 1 pads day and month", calendar.PeriodSelector{Year: 2026, Month: 1, WeekAnchor: 1}, "2026-01-01 12:00:00"},
		{"out of set anchor clamps to month end", calendar.PeriodSelector{Year: 2024, Month: 4, WeekAnchor: 31}, "2024-04-30 12:00:00"},
		{"out of set anchor clamps in short february", calendar.PeriodSelector{Year: 2023, Month: 2, WeekAnchor: 30}, "2023-02-28 12:00:00"},
		{"out of set anchor clamps in leap february", calendar.PeriodSelector{Year: 2024, Month: 2, WeekAnchor: 30}, "2024-02-29 12:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calendar.ResolveAnchor(tt.sel)
			if err != nil {
				t.Fatalf("ResolveAnchor(%+v) error: %v", tt.sel, err)
			}
			if got != tt.want {
				t.Errorf("ResolveAnchor(%+v) = %q, want %q", tt.sel, got, tt.want)
			}
		})
	}
}

func TestResolveAnchorAllMonths(t *testing.T) {
	shape := regexp.MustCompile(`^\d{4}-\d{2}-\d{2} 12:00:00$`)
	for _, year := range []int{1900, 2000, 2023, 2024, 2100} {
		for month := 1; month <= 12; month++ {
			days := calendar.DaysInMonth(year, time.Month(month))
			for _, week := range []int{calendar.Week1, calendar.Week2, calendar.Week3, calendar.Week4} {
				sel := calendar.PeriodSelector{Year: year, Month: month, WeekAnchor: week}
				got, err := calendar.ResolveAnchor(sel)
				if err != nil {
					t.Fatalf("ResolveAnchor(%+v) error: %v", sel, err)
				}
				if !shape.MatchString(got) {
					t.Fatalf("ResolveAnchor(%+v) = %q, bad shape", sel, got)
				}
				want := fmt.Sprintf("%04d-%02d-%02d 12:00:00", year, month, min(week, days))
				if got != want {
					t.Errorf("ResolveAnchor(%+v) = %q, want %q", sel, got, want)
				}
			}
		}
	}
}

func TestResolveAnchorInvalid(t *testing.T) {
	tests := []calendar.PeriodSelector{
		{Year: 2024, Month: 13, WeekAnchor: 1},
		{Year: 2024, Month: 0, WeekAnchor: 1},
		{Year: 2024, Month: 5, WeekAnchor: 0},
		{Year: 2024, Month: 5, WeekAnchor: -8},
		{Year: 0, Month: 5, WeekAnchor: 1},
		{Year: 10000, Month: 5, WeekAnchor: 1},
	}
	for _, sel := range tests {
		got, err := calendar.ResolveAnchor(sel)
		if err == nil {
			t.Errorf("ResolveAnchor(%+v) = %q, want error", sel, got)
			continue
		}
		if !errors.Is(err, calendar.ErrInvalidPeriod) {
			t.Errorf("ResolveAnchor(%+v) error = %v, want ErrInvalidPeriod", sel, err)
		}
		if got != "" {
			t.Errorf("ResolveAnchor(%+v) = %q on error, want empty", sel, got)
		}
	}
}

func TestPeriodSelectorValid(t *testing.T) {
	tests := []struct {
		sel  calendar.PeriodSelector
		want bool
	}{
		{calendar.PeriodSelector{Year: 2024, Month: 2, WeekAnchor: 22}, true},
		{calendar.PeriodSelector{Year: 2024, Month: 2}, false},
		{calendar.PeriodSelector{Month: 2, WeekAnchor: 1}, false},
		{calendar.PeriodSelector{Year: 2024, Month: 14, WeekAnchor: 1}, false},
	}
	for _, tt := range tests {
		if got := tt.sel.Valid(); got != tt.want {
			t.Errorf("Valid(%+v) = %v, want %v", tt.sel, got, tt.want)
		}
	}
}

func TestWeekEnd(t *testing.T) {
	tests := []struct {
		sel  calendar.PeriodSelector
		want string
	}{
		{calendar.PeriodSelector{Year: 2024, Month: 2, WeekAnchor: 1}, "2024-02-07"},
		{calendar.PeriodSelector{Year: 2024, Month: 2, WeekAnchor: 15}, "2024-02-21"},
		{calendar.PeriodSelector{Year: 2024, Month: 2, WeekAnchor: 22}, "2024-02-29"},
		{calendar.PeriodSelector{Year: 2024, Month: 1, WeekAnchor: 22}, "2024-01-31"},
	}
	for _, tt := range tests {
		end, err := tt.sel.WeekEnd()
		if err != nil {
			t.Fatalf("WeekEnd(%+v) error: %v", tt.sel, err)
		}
		if got := end.Format("2006-01-02"); got != tt.want {
			t.Errorf("WeekEnd(%+v) = %s, want %s", tt.sel, got, tt.want)
		}
	}
}

func TestOptionsFor(t *testing.T) {
	opts := calendar.OptionsFor(time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC))
	if len(opts.Years) != 11 || opts.Years[0].Value != 2021 || opts.Years[10].Value != 2031 {
		t.Errorf("Years = %+v, want 2021..2031", opts.Years)
	}
	if len(opts.Months) != 12 || opts.Months[1].Label != "February" {
		t.Errorf("Months = %+v", opts.Months)
	}
	if len(opts.Weeks) != 4 || opts.Weeks[3].Value != 22 || opts.Weeks[3].Label != "Week 4 (22-end)" {
		t.Errorf("Weeks = %+v", opts.Weeks)
	}
}

func TestConstructDateRejectsOverflow(t *testing.T) {
	if _, err := calendar.ConstructDate(2023, time.February, 29); !errors.Is(err, calendar.ErrInvalidDate) {
		t.Errorf("ConstructDate(2023-02-29) error = %v, want ErrInvalidDate", err)
	}
	d, err := calendar.ConstructDate(2024, time.February, 29)
	if err != nil {
		t.Fatalf("ConstructDate(2024-02-29): %v", err)
	}
	if d.Day() != 29 {
		t.Errorf("day = %d, want 29", d.Day())
	}
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		day  int
		want int
	}{
		{1, 1}, {7, 1}, {8, 8}, {14, 8}, {15, 15}, {21, 15}, {22, 22}, {31, 22},
	}
	for _, tt := range tests {
		got := calendar.WeekOf(time.Date(2026, 1, tt.day, 9, 0, 0, 0, time.UTC))
		if got.WeekAnchor != tt.want || got.Year != 2026 || got.Month != 1 {
			t.Errorf("WeekOf(day %d) = %+v, want anchor %d", tt.day, got, tt.want)
		}
	}
}
