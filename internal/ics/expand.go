package ics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"farmcal/internal/calendar"
	"farmcal/internal/config"
	appLog "farmcal/internal/log"
	"farmcal/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// DisplayLocation is the zone all occurrences are converted to.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd define the inclusive window for occurrences.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent caps runaway rules. Zero means 5000.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the expanded occurrences and the UIDs that hit the cap.
type ExpandResult struct {
	Occurrences     []model.Occurrence
	TruncatedEvents []string
}

// ExpandOccurrences expands events into concrete occurrences within the
// configured range, honoring RRULE, EXDATE, RECURRENCE-ID overrides and
// all-day semantics. Occurrences are sorted by start time.
func ExpandOccurrences(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.UTC
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	uids := make([]string, 0)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		if _, seen := baseByUID[ev.UID]; !seen {
			uids = append(uids, ev.UID)
		}
		baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
	}

	all := make([]model.Occurrence, 0)
	for _, uid := range uids {
		truncated := false
		for _, ev := range baseByUID[uid] {
			occ, hitCap := expandEvent(ev, overridesByUID[uid], cfg)
			truncated = truncated || hitCap
			all = append(all, occ...)
		}
		if truncated {
			result.TruncatedEvents = append(result.TruncatedEvents, uid)
			appLog.Error("expand: truncated occurrences", errors.New("max occurrences reached"),
				"uid", uid, "cap", cfg.MaxOccurrencesPerEvent)
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].Start.Before(all[j].Start) })
	result.Occurrences = all
	return result, nil
}

func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, bool) {
	if ev.RawRRule == "" {
		return expandSingleEvent(ev, overrides, cfg), false
	}
	return expandRecurringEvent(ev, overrides, cfg)
}

func expandSingleEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Occurrence {
	start, end := ev.Start, ev.End
	if o, ok := findOverrideForStart(overrides, start); ok {
		ev, start, end = o, o.Start, o.End
	}
	if !timeRangesOverlap(start, end, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}
	return []model.Occurrence{makeOccurrence(ev, start, end, cfg.DisplayLocation)}
}

func expandRecurringEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Occurrence, bool) {
	out := make([]model.Occurrence, 0)

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Widen the lower bound by one duration so an occurrence that started
	// before the window but is still running is included.
	dur := ev.End.Sub(ev.Start)
	if ev.AllDay && dur <= 0 {
		dur = 24 * time.Hour
	}
	rangeStart := cfg.RangeStart.Add(-dur).In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())

	occTimes := set.Between(rangeStart, rangeEnd, true)
	hitCap := false
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	for _, occStart := range occTimes {
		var occEnd time.Time
		if ev.AllDay {
			y, m, d := occStart.Date()
			occStart = time.Date(y, m, d, 0, 0, 0, 0, occStart.Location())
			occEnd = occStart.AddDate(0, 0, 1)
		} else {
			occEnd = occStart.Add(dur)
		}

		baseEv, baseStart, baseEnd := ev, occStart, occEnd
		if o, ok := findOverrideForStart(overrides, occStart); ok {
			baseEv, baseStart, baseEnd = o, o.Start, o.End
		}
		if !timeRangesOverlap(baseStart, baseEnd, cfg.RangeStart, cfg.RangeEnd) {
			continue
		}
		out = append(out, makeOccurrence(baseEv, baseStart, baseEnd, cfg.DisplayLocation))
	}

	return out, hitCap
}

// findOverrideForStart finds the override whose RECURRENCE-ID is the same
// instant as start.
func findOverrideForStart(overrides []ParsedEvent, start time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence != nil && ov.Recurrence.Equal(start) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func makeOccurrence(ev ParsedEvent, start, end time.Time, displayLoc *time.Location) model.Occurrence {
	startLocal := start.In(displayLoc)
	return model.Occurrence{
		SourceID:    ev.Source.ID,
		UID:         ev.UID,
		InstanceKey: startLocal.Format(time.RFC3339),
		Summary:     ev.Summary,
		Description: ev.Description,
		Location:    ev.Location,
		AllDay:      ev.AllDay,
		Start:       startLocal,
		End:         end.In(displayLoc),
	}
}

// timeRangesOverlap treats both ranges as closed intervals.
func timeRangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

// TaskSource is the Source of events built from configured tasks.
var TaskSource = Source{ID: "tasks"}

// TaskEvents turns recurring task definitions into ParsedEvents anchored in
// loc. Tasks without a Since date are anchored on the day of from.
func TaskEvents(tasks []config.TaskConfig, from time.Time, loc *time.Location) ([]ParsedEvent, error) {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]ParsedEvent, 0, len(tasks))
	for _, t := range tasks {
		hour, minute, err := splitClock(t.Start)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", t.ID, err)
		}

		y, m, d := from.In(loc).Date()
		if t.Since != "" {
			since, err := time.ParseInLocation("2006-01-02", t.Since, loc)
			if err != nil {
				return nil, fmt.Errorf("task %s: since %q: %w", t.ID, t.Since, err)
			}
			y, m, d = since.Date()
		}

		start := time.Date(y, m, d, hour, minute, 0, 0, loc)
		dur := time.Duration(t.DurationMinutes) * time.Minute
		out = append(out, ParsedEvent{
			Source:   TaskSource,
			UID:      t.ID,
			Summary:  t.Title,
			Start:    start,
			End:      start.Add(dur),
			RawRRule: t.RRule,
		})
	}
	return out, nil
}

// WeekSchedule expands tasks over the week sel selects, from midnight of the
// anchor day to the last second of the week's final day, in loc.
func WeekSchedule(tasks []config.TaskConfig, sel calendar.PeriodSelector, loc *time.Location) (ExpandResult, error) {
	if loc == nil {
		loc = time.UTC
	}
	first, err := sel.AnchorDate()
	if err != nil {
		return ExpandResult{}, err
	}
	last, err := sel.WeekEnd()
	if err != nil {
		return ExpandResult{}, err
	}
	from := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, loc)
	to := time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 0, loc)

	events, err := TaskEvents(tasks, from, loc)
	if err != nil {
		return ExpandResult{}, err
	}
	return ExpandOccurrences(events, ExpandConfig{DisplayLocation: loc, RangeStart: from, RangeEnd: to})
}

func splitClock(s string) (int, int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("start %q is not HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// ToCreateEvents converts occurrences into backend create payloads in
// transport format.
func ToCreateEvents(occs []model.Occurrence, n *calendar.Normalizer) []model.CreateEvent {
	out := make([]model.CreateEvent, 0, len(occs))
	for _, o := range occs {
		start := calendar.WallClockOf(o.Start.In(n.Location()))
		end := calendar.WallClockOf(o.End.In(n.Location()))
		out = append(out, model.CreateEvent{
			Title: o.Summary,
			Start: calendar.FormatTransport(start, n.OffsetAt(start)),
			End:   calendar.FormatTransport(end, n.OffsetAt(end)),
		})
	}
	return out
}
