package ics

import (
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"

	"farmcal/internal/calendar"
	appLog "farmcal/internal/log"
	"farmcal/internal/model"
)

const productID = "-//farmcal//calendar feed//EN"

// FeedResult is a serialized iCalendar feed plus the events left out of it.
type FeedResult struct {
	Body    string
	Skipped []int
}

// BuildFeed renders backend events as an iCalendar feed. Events whose
// timestamps cannot be parsed are skipped and reported, not fatal.
func BuildFeed(name string, events []model.Event, n *calendar.Normalizer, now time.Time) FeedResult {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetXWRCalName(name)
	}
	cal.SetXWRTimezone(n.Location().String())

	var res FeedResult
	for _, e := range events {
		start, err := n.Parse(e.Start)
		if err != nil {
			appLog.Error("ics export: bad start", err, "id", e.ID)
			res.Skipped = append(res.Skipped, e.ID)
			continue
		}
		end, err := n.Parse(e.End)
		if err != nil {
			appLog.Error("ics export: bad end", err, "id", e.ID)
			res.Skipped = append(res.Skipped, e.ID)
			continue
		}

		ev := cal.AddEvent(eventUID(e.ID))
		ev.SetDtStampTime(now)
		ev.SetSummary(e.Title)
		ev.SetStartAt(start.Time())
		ev.SetEndAt(end.Time())
	}

	res.Body = cal.Serialize()
	return res
}

func eventUID(id int) string {
	return "event-" + strconv.Itoa(id) + "@farmcal"
}
