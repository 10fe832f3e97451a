package calendar

import (
	"fmt"
	"strings"
)

// FormatDisplay renders a backend timestamp as "DD/MM/YYYY HH:MM" using the
// wall-clock fields embedded in raw; no zone conversion happens.
//
// Input without a date/time separator (space or 'T'), or whose pieces are
// not date and time shaped, is returned unchanged. The output is not itself
// an accepted input, so a second application returns it as is.
func FormatDisplay(raw string) string {
	clean := strings.TrimSpace(raw)
	if i := strings.IndexByte(clean, '.'); i >= 0 {
		clean = strings.TrimSpace(clean[:i])
	}

	sep := strings.IndexAny(clean, " T")
	if sep < 0 {
		return raw
	}

	if w, err := Parse(raw); err == nil {
		return displayFields(w.DatePart(), w.TimePart())
	}

	// Lenient path for strings the strict parser rejects but that still
	// split cleanly, e.g. a missing seconds field.
	datePart, timePart := clean[:sep], strings.TrimSpace(clean[sep+1:])
	if !dateShaped(datePart) {
		return raw
	}
	hhmm, ok := leadingClock(timePart)
	if !ok {
		return raw
	}
	return displayFields(datePart, hhmm)
}

func displayFields(date, hhmm string) string {
	ymd := strings.Split(date, "-")
	return fmt.Sprintf("%s/%s/%s %s", ymd[2], ymd[1], ymd[0], hhmm)
}

// dateShaped accepts NNNN-NN-NN.
func dateShaped(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return false
	}
	return allDigits(parts[0]) && allDigits(parts[1]) && allDigits(parts[2])
}

// leadingClock extracts "H:MM" or "HH:MM" from the start of s
// ("06:00:00+08:00" and "9:05:00" too). The hour is kept as written.
func leadingClock(s string) (string, bool) {
	hh, rest, ok := strings.Cut(s, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || !allDigits(hh) {
		return "", false
	}
	if len(rest) < 2 || !allDigits(rest[:2]) {
		return "", false
	}
	return hh + ":" + rest[:2], true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
