package calendar_test

import (
	"errors"
	"testing"
	"time"

	"farmcal/internal/calendar"
)

func TestParseShapes(t *testing.T) {
	tests := []struct {
		raw  string
		want calendar.WallClock
	}{
		{
			"2026-01-22 21:22:00.000000",
			calendar.WallClock{Year: 2026, Month: 1, Day: 22, Hour: 21, Minute: 22, OffsetMinutes: 480, Zone: "Asia/Manila"},
		},
		{
			"2026-01-22 21:22:05",
			calendar.WallClock{Year: 2026, Month: 1, Day: 22, Hour: 21, Minute: 22, Second: 5, OffsetMinutes: 480, Zone: "Asia/Manila"},
		},
		{
			"2026-01-22T21:22:00",
			calendar.WallClock{Year: 2026, Month: 1, Day: 22, Hour: 21, Minute: 22, OffsetMinutes: 480, Zone: "Asia/Manila"},
		},
		{
			"2026-01-22T21:22:00.1234567",
			calendar.WallClock{Year: 2026, Month: 1, Day: 22, Hour: 21, Minute: 22, OffsetMinutes: 480, Zone: "Asia/Manila"},
		},
		{
			"2026-01-22",
			calendar.WallClock{Year: 2026, Month: 1, Day: 22, OffsetMinutes: 480, Zone: "Asia/Manila"},
		},
		{
			"2024-01-23T06:00:00+08:00",
			calendar.WallClock{Year: 2024, Month: 1, Day: 23, Hour: 6, OffsetMinutes: 480, Zone: "Asia/Manila"},
		},
		{
			"2024-01-23T06:00:00-05:30",
			calendar.WallClock{Year: 2024, Month: 1, Day: 23, Hour: 6, OffsetMinutes: -330, Zone: "Asia/Manila"},
		},
		{
			"2024-01-23T06:00:00+09:00[Asia/Tokyo]",
			calendar.WallClock{Year: 2024, Month: 1, Day: 23, Hour: 6, OffsetMinutes: 540, Zone: "Asia/Tokyo"},
		},
		{
			"2024-01-22T22:00:00Z",
			calendar.WallClock{Year: 2024, Month: 1, Day: 22, Hour: 22, OffsetMinutes: 0, Zone: "Asia/Manila"},
		},
		{
			"  2026-01-22 08:00:00  ",
			calendar.WallClock{Year: 2026, Month: 1, Day: 22, Hour: 8, OffsetMinutes: 480, Zone: "Asia/Manila"},
		},
	}
	for _, tt := range tests {
		got, err := calendar.Parse(tt.raw)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

func TestParseRejects(t *testing.T) {
	for _, raw := range []string{
		"not-a-date",
		"",
		"2026-13-01",
		"2023-02-29 10:00:00",
		"22/01/2026 21:22",
		"2026-01-22 21:22",
		"2026-01-22T21:22:00[Asia/Manila]",
		"2026-1-2",
	} {
		_, err := calendar.Parse(raw)
		var perr *calendar.ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q) error = %v, want *ParseError", raw, err)
			continue
		}
		if perr.Raw != raw {
			t.Errorf("ParseError.Raw = %q, want %q", perr.Raw, raw)
		}
	}
}

func TestParseRejectsYearsBeyondFourDigits(t *testing.T) {
	for _, raw := range []string{
		"9999-12-31T23:59:59-01:00",
		"0001-01-01T00:00:00+14:00",
	} {
		_, err := calendar.Parse(raw)
		var perr *calendar.ParseError
		if !errors.As(err, &perr) || perr.Reason == "" {
			t.Errorf("Parse(%q) error = %v, want out-of-range *ParseError", raw, err)
		}
	}

	w, err := calendar.Parse("9999-12-31T15:59:59Z")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got, want := calendar.FormatTransport(w, calendar.DefaultOffsetMinutes), "9999-12-31T23:59:59+08:00"; got != want {
		t.Errorf("FormatTransport = %q, want %q", got, want)
	}
}

func TestFormatTransport(t *testing.T) {
	tests := []struct {
		raw    string
		offset int
		want   string
	}{
		{"2026-01-22 21:22:00.000000", 480, "2026-01-22T21:22:00+08:00"},
		{"2024-01-23T06:00:00+08:00", 480, "2024-01-23T06:00:00+08:00"},
		{"2024-01-22T22:00:00Z", 480, "2024-01-23T06:00:00+08:00"},
		{"2024-01-23T06:00:00+08:00", 0, "2024-01-22T22:00:00+00:00"},
		{"2024-01-23T06:00:00+08:00", -330, "2024-01-22T16:30:00-05:30"},
		{"0999-03-04", 480, "0999-03-04T00:00:00+08:00"},
	}
	for _, tt := range tests {
		w, err := calendar.Parse(tt.raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.raw, err)
		}
		if got := calendar.FormatTransport(w, tt.offset); got != tt.want {
			t.Errorf("FormatTransport(%q, %d) = %q, want %q", tt.raw, tt.offset, got, tt.want)
		}
	}
}

func TestTransportRoundTrip(t *testing.T) {
	for _, raw := range []string{
		"2026-01-22 21:22:00",
		"2026-01-22 21:22:00.000000",
		"2024-02-29 00:00:59.5",
		"1999-12-31 23:59:59",
	} {
		w, err := calendar.Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		got := calendar.FormatTransport(w, calendar.DefaultOffsetMinutes)
		want := raw[:10] + "T" + raw[11:19] + "+08:00"
		if got != want {
			t.Errorf("round trip %q = %q, want %q", raw, got, want)
		}
	}
}

func TestFormatOffset(t *testing.T) {
	tests := map[int]string{0: "+00:00", 480: "+08:00", -330: "-05:30", 345: "+05:45", -720: "-12:00"}
	for in, want := range tests {
		if got := calendar.FormatOffset(in); got != want {
			t.Errorf("FormatOffset(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractParts(t *testing.T) {
	tests := []struct {
		raw, date, clock string
	}{
		{"2026-01-22 21:22:00.000000", "2026-01-22", "21:22"},
		{"2024-01-23T06:05:00+08:00", "2024-01-23", "06:05"},
		{"2024-01-23", "2024-01-23", "00:00"},
		{"not-a-date", "", ""},
		{"", "", ""},
	}
	for _, tt := range tests {
		if got := calendar.ExtractDatePart(tt.raw); got != tt.date {
			t.Errorf("ExtractDatePart(%q) = %q, want %q", tt.raw, got, tt.date)
		}
		if got := calendar.ExtractTimePart(tt.raw); got != tt.clock {
			t.Errorf("ExtractTimePart(%q) = %q, want %q", tt.raw, got, tt.clock)
		}
	}
}

func TestNormalizerZoneMode(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	n := calendar.NewNormalizer(ny, calendar.OffsetZone)

	summer, err := n.Parse("2024-07-01 09:00:00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if summer.OffsetMinutes != -240 {
		t.Errorf("summer offset = %d, want -240", summer.OffsetMinutes)
	}
	winter, err := n.Parse("2024-01-01 09:00:00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if winter.OffsetMinutes != -300 {
		t.Errorf("winter offset = %d, want -300", winter.OffsetMinutes)
	}

	z := calendar.ToZoned(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), ny).With(9, 30)
	if got, want := n.Transport(z), "2024-07-01T09:30:00-04:00"; got != want {
		t.Errorf("Transport = %q, want %q", got, want)
	}
}

func TestNormalizerFixedModeIgnoresZoneRules(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	n := calendar.NewNormalizer(ny, calendar.OffsetFixed)
	w, err := n.Parse("2024-07-01 09:00:00")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if w.OffsetMinutes != calendar.DefaultOffsetMinutes {
		t.Errorf("offset = %d, want %d", w.OffsetMinutes, calendar.DefaultOffsetMinutes)
	}
}

func TestZonedInstant(t *testing.T) {
	loc, err := calendar.LoadZone("")
	if err != nil {
		t.Fatalf("LoadZone: %v", err)
	}
	date, err := calendar.ConstructDate(2024, time.January, 23)
	if err != nil {
		t.Fatalf("ConstructDate: %v", err)
	}
	z := calendar.ToZoned(date, loc).With(6, 0)
	if got, want := z.String(), "2024-01-23T06:00:00+08:00[Asia/Manila]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := calendar.FormatTransport(z.WallClock(), z.OffsetMinutes()), "2024-01-23T06:00:00+08:00"; got != want {
		t.Errorf("FormatTransport = %q, want %q", got, want)
	}
}

func TestLoadZoneUnknown(t *testing.T) {
	if _, err := calendar.LoadZone("Mars/Olympus_Mons"); err == nil {
		t.Error("LoadZone(unknown) = nil error, want error")
	}
}
