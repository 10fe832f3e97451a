package calendar

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// OffsetMode selects how the offset of naive backend timestamps is chosen.
type OffsetMode string

const (
	// OffsetFixed always uses the configured fixed offset (+08:00).
	OffsetFixed OffsetMode = "fixed"
	// OffsetZone derives the offset for each date from the tz database.
	OffsetZone OffsetMode = "zone"
)

const (
	layoutOffsetT     = "2006-01-02T15:04:05Z07:00"
	layoutOffsetSpace = "2006-01-02 15:04:05Z07:00"
	layoutSpace       = "2006-01-02 15:04:05"
	layoutT           = "2006-01-02T15:04:05"
	layoutDate        = "2006-01-02"
)

var (
	offsetSuffix  = regexp.MustCompile(`(?:[+-]\d{2}:\d{2}|Z)$`)
	bracketSuffix = regexp.MustCompile(`\[([^\[\]]+)\]$`)
	naiveSpace    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:\.\d+)?$`)
	naiveT        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?$`)
	dateOnly      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ParseError reports a timestamp string in none of the accepted shapes, or
// one whose instant cannot be written with a four-digit year.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("timestamp %q: %s", e.Raw, e.Reason)
	}
	return fmt.Sprintf("unrecognized timestamp %q", e.Raw)
}

// WallClock is a date and time as written on a clock face together with the
// UTC offset it was written in.
type WallClock struct {
	Year          int
	Month         time.Month
	Day           int
	Hour          int
	Minute        int
	Second        int
	OffsetMinutes int
	// Zone is the IANA name attached for zone-aware consumers; it does not
	// affect the instant, the offset does.
	Zone string
}

// WallClockOf captures the wall-clock fields of t in t's own location.
func WallClockOf(t time.Time) WallClock {
	_, off := t.Zone()
	return WallClock{
		Year:          t.Year(),
		Month:         t.Month(),
		Day:           t.Day(),
		Hour:          t.Hour(),
		Minute:        t.Minute(),
		Second:        t.Second(),
		OffsetMinutes: off / 60,
		Zone:          t.Location().String(),
	}
}

// Time returns the instant the wall clock denotes.
func (w WallClock) Time() time.Time {
	loc := time.FixedZone(w.Zone, w.OffsetMinutes*60)
	return time.Date(w.Year, w.Month, w.Day, w.Hour, w.Minute, w.Second, 0, loc)
}

// In re-expresses the same instant at another offset. The zone name is kept.
func (w WallClock) In(offsetMinutes int) WallClock {
	if w.OffsetMinutes == offsetMinutes {
		return w
	}
	t := w.Time().In(time.FixedZone(w.Zone, offsetMinutes*60))
	out := WallClockOf(t)
	out.Zone = w.Zone
	return out
}

// DatePart renders YYYY-MM-DD.
func (w WallClock) DatePart() string {
	return fmt.Sprintf("%04d-%02d-%02d", w.Year, int(w.Month), w.Day)
}

// TimePart renders HH:MM.
func (w WallClock) TimePart() string {
	return fmt.Sprintf("%02d:%02d", w.Hour, w.Minute)
}

// Zoned converts the wall clock to a ZonedInstant in loc, preserving the
// instant. A nil loc uses a fixed zone built from the wall clock itself.
func (w WallClock) Zoned(loc *time.Location) ZonedInstant {
	t := w.Time()
	if loc != nil {
		t = t.In(loc)
	}
	zone := w.Zone
	if loc != nil {
		zone = loc.String()
	}
	return ZonedInstant{Time: t, Zone: zone}
}

// Normalizer parses backend timestamps relative to a home zone.
type Normalizer struct {
	loc  *time.Location
	mode OffsetMode
	// naive is the location naive strings are read in.
	naive *time.Location
}

// NewNormalizer returns a Normalizer for loc. In OffsetFixed mode naive
// timestamps are read at DefaultOffsetMinutes regardless of loc's rules;
// in OffsetZone mode they are read in loc itself.
func NewNormalizer(loc *time.Location, mode OffsetMode) *Normalizer {
	if loc == nil {
		loc = manilaFixed
	}
	n := &Normalizer{loc: loc, mode: mode}
	switch mode {
	case OffsetZone:
		n.naive = loc
	default:
		n.mode = OffsetFixed
		n.naive = time.FixedZone(loc.String(), DefaultOffsetMinutes*60)
	}
	return n
}

var defaultNormalizer = NewNormalizer(manilaFixed, OffsetFixed)

// Location is the home zone.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Mode reports the offset mode in use.
func (n *Normalizer) Mode() OffsetMode {
	return n.mode
}

// Parse reads raw in the first matching shape:
//
//  1. ISO 8601 with a trailing ±HH:MM (or Z), optionally followed by a
//     bracketed zone name. The offset is authoritative.
//  2. "YYYY-MM-DD HH:MM:SS[.ffffff]" in the home offset.
//  3. "YYYY-MM-DDTHH:MM:SS[.ffffff]" in the home offset.
//  4. "YYYY-MM-DD" at midnight in the home offset.
//
// Fractional seconds are discarded. Anything else is a *ParseError.
func (n *Normalizer) Parse(raw string) (WallClock, error) {
	s := strings.TrimSpace(raw)

	zone := ""
	if m := bracketSuffix.FindStringSubmatchIndex(s); m != nil {
		zone = s[m[2]:m[3]]
		s = s[:m[0]]
	}

	if offsetSuffix.MatchString(s) {
		for _, layout := range []string{layoutOffsetT, layoutOffsetSpace} {
			t, err := time.Parse(layout, s)
			if err != nil {
				continue
			}
			w := WallClockOf(t)
			w.Zone = zone
			if w.Zone == "" {
				w.Zone = n.loc.String()
			}
			if home := w.In(n.OffsetAt(w)); home.Year < 1 || home.Year > 9999 {
				return WallClock{}, &ParseError{Raw: raw, Reason: "year out of range at the home offset"}
			}
			return w, nil
		}
		return WallClock{}, &ParseError{Raw: raw}
	}
	if zone != "" {
		// A zone bracket without an offset is not a shape we accept.
		return WallClock{}, &ParseError{Raw: raw}
	}

	var layout string
	switch {
	case naiveSpace.MatchString(s):
		layout = layoutSpace
	case naiveT.MatchString(s):
		layout = layoutT
	case dateOnly.MatchString(s):
		layout = layoutDate
	default:
		return WallClock{}, &ParseError{Raw: raw}
	}

	t, err := time.ParseInLocation(layout, s, n.naive)
	if err != nil {
		return WallClock{}, &ParseError{Raw: raw}
	}
	w := WallClockOf(t)
	w.Zone = n.loc.String()
	return w, nil
}

// OffsetAt is the offset transport strings should carry for the given
// wall-clock date and time.
func (n *Normalizer) OffsetAt(w WallClock) int {
	if n.mode != OffsetZone {
		return DefaultOffsetMinutes
	}
	t := time.Date(w.Year, w.Month, w.Day, w.Hour, w.Minute, w.Second, 0, n.loc)
	_, off := t.Zone()
	return off / 60
}

// Transport formats z for the backend at the offset this normalizer uses.
func (n *Normalizer) Transport(z ZonedInstant) string {
	w := z.WallClock()
	return FormatTransport(w, n.OffsetAt(w))
}

// Parse reads raw with the default Asia/Manila fixed-offset normalizer.
func Parse(raw string) (WallClock, error) {
	return defaultNormalizer.Parse(raw)
}

// FormatTransport renders w as YYYY-MM-DDTHH:MM:SS±HH:MM at offsetMinutes.
// If w was recorded at another offset the instant is converted first. Parse
// only returns wall clocks that stay within years 1-9999 at the home offset.
func FormatTransport(w WallClock, offsetMinutes int) string {
	w = w.In(offsetMinutes)
	return fmt.Sprintf("%04d-%02d-%02dT%02d:%02d:%02d%s",
		w.Year, int(w.Month), w.Day, w.Hour, w.Minute, w.Second,
		FormatOffset(offsetMinutes))
}

// FormatOffset renders a signed offset as ±HH:MM. Zero is "+00:00".
func FormatOffset(offsetMinutes int) string {
	sign := '+'
	if offsetMinutes < 0 {
		sign = '-'
		offsetMinutes = -offsetMinutes
	}
	return fmt.Sprintf("%c%02d:%02d", sign, offsetMinutes/60, offsetMinutes%60)
}

// ExtractDatePart returns the YYYY-MM-DD of raw, or "" if raw is unparseable.
func ExtractDatePart(raw string) string {
	w, err := Parse(raw)
	if err != nil {
		return ""
	}
	return w.DatePart()
}

// ExtractTimePart returns the HH:MM of raw, or "" if raw is unparseable.
func ExtractTimePart(raw string) string {
	w, err := Parse(raw)
	if err != nil {
		return ""
	}
	return w.TimePart()
}
