package calendar_test

import (
	"testing"

	"farmcal/internal/calendar"
)

func TestFormatDisplay(t *testing.T) {
	tests := []struct {
		raw, want string
	}{
		{"2026-01-22 21:22:00.000000", "22/01/2026 21:22"},
		{"2024-01-23T06:00:00+08:00", "23/01/2024 06:00"},
		{"2024-01-23T06:00:00+09:00[Asia/Tokyo]", "23/01/2024 06:00"},
		{"2024-01-22T22:00:00Z", "22/01/2024 22:00"},
		{"2026-01-22 21:22", "22/01/2026 21:22"},
		{"2026-01-22T07:05", "22/01/2026 07:05"},
		{"2026-01-22 9:05:00", "22/01/2026 9:05"},
		{"2026-01-22 9:05", "22/01/2026 9:05"},
		{"2026-01-22 123:05", "2026-01-22 123:05"},
		{"not-a-date", "not-a-date"},
		{"2026-01-22", "2026-01-22"},
		{"", ""},
		{"hello world", "hello world"},
		{"2026-01-22 later", "2026-01-22 later"},
	}
	for _, tt := range tests {
		if got := calendar.FormatDisplay(tt.raw); got != tt.want {
			t.Errorf("FormatDisplay(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestFormatDisplayIsOneWay(t *testing.T) {
	first := calendar.FormatDisplay("2026-01-22 21:22:00.000000")
	second := calendar.FormatDisplay(first)
	if second != first {
		t.Errorf("FormatDisplay(%q) = %q, want input unchanged", first, second)
	}
}
