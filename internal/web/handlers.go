package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"farmcal/internal/agenda"
	"farmcal/internal/backend"
	"farmcal/internal/calendar"
	"farmcal/internal/ics"
	appLog "farmcal/internal/log"
	"farmcal/internal/model"
	"farmcal/internal/state"
)

// selectorFromQuery reads ?year=&month=&week=. Missing fields stay zero.
func selectorFromQuery(r *http.Request) calendar.PeriodSelector {
	q := r.URL.Query()
	return calendar.PeriodSelector{
		Year:       parseIntDefault(q.Get("year"), 0),
		Month:      parseIntDefault(q.Get("month"), 0),
		WeekAnchor: parseIntDefault(q.Get("week"), 0),
	}
}

// writeServiceError maps agenda/backend errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, calendar.ErrInvalidPeriod), errors.Is(err, agenda.ErrInvalidForm):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, backend.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		appLog.Error("backend call failed", err)
		writeError(w, http.StatusBadGateway, "backend request failed")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return 0, false
	}
	return id, true
}

// periodOptionsResponse is the JSON shape for /api/period/options.
type periodOptionsResponse struct {
	calendar.PeriodOptions
	Default calendar.PeriodSelector `json:"default"`
}

// handlePeriodOptions returns the filter dropdown choices. Default is the
// last searched period if one was saved, week 1 of this month otherwise.
func (s *Server) handlePeriodOptions(w http.ResponseWriter, _ *http.Request) {
	today := s.agenda.Today()
	resp := periodOptionsResponse{
		PeriodOptions: s.agenda.PeriodOptions(today),
		Default:       calendar.DefaultSelector(today),
	}
	if st, err := s.state.Load(); err != nil {
		appLog.Error("load state failed", err)
	} else if st.LastFilter != nil {
		resp.Default = *st.LastFilter
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePeriodAnchor resolves ?year=&month=&week= to the backend fromDate.
func (s *Server) handlePeriodAnchor(w http.ResponseWriter, r *http.Request) {
	sel := selectorFromQuery(r)
	anchor, err := calendar.ResolveAnchor(sel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"selector":  sel,
		"from_date": anchor,
	})
}

// timestampDTO is one entry of the /api/timestamps response.
type timestampDTO struct {
	Raw       string `json:"raw"`
	Valid     bool   `json:"valid"`
	Error     string `json:"error,omitempty"`
	Transport string `json:"transport,omitempty"`
	Zoned     string `json:"zoned,omitempty"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Display   string `json:"display"`
}

// handleTimestamps shows how each ?value= would be normalized, extracted
// and displayed.
//
// GET /api/timestamps?value=2026-01-22+21:22:00&value=...
func (s *Server) handleTimestamps(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()["value"]
	if len(values) == 0 {
		writeError(w, http.StatusBadRequest, "at least one value is required")
		return
	}

	n := s.agenda.Normalizer()
	out := make([]timestampDTO, 0, len(values))
	for _, raw := range values {
		dto := timestampDTO{
			Raw:     raw,
			Date:    calendar.ExtractDatePart(raw),
			Time:    calendar.ExtractTimePart(raw),
			Display: calendar.FormatDisplay(raw),
		}
		wc, err := n.Parse(raw)
		if err != nil {
			dto.Error = err.Error()
		} else {
			dto.Valid = true
			dto.Transport = calendar.FormatTransport(wc, n.OffsetAt(wc))
			dto.Zoned = wc.Zoned(n.Location()).String()
		}
		out = append(out, dto)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSearchEvents lists the events of the selected week and remembers
// the selection.
//
// GET /api/events?year=2026&month=1&week=22
func (s *Server) handleSearchEvents(w http.ResponseWriter, r *http.Request) {
	sel := selectorFromQuery(r)
	res, err := s.agenda.Search(r.Context(), sel)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	s.rememberFilter(sel)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) rememberFilter(sel calendar.PeriodSelector) {
	err := s.state.Update(func(st *state.State) {
		st.LastFilter = &sel
	})
	if err != nil {
		appLog.Error("save state failed", err)
	}
}

// eventResponse pairs a stored event with its prefilled edit form.
type eventResponse struct {
	Event model.Event     `json:"event"`
	Form  model.EventForm `json:"form"`
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ev, err := s.agenda.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Event: ev, Form: s.agenda.EditForm(ev)})
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var form model.EventForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	payload, err := s.agenda.Create(r.Context(), form)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payload)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var form model.EventForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := s.agenda.Update(r.Context(), id, form)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.agenda.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEventsFeed exports the selected week as text/calendar.
func (s *Server) handleEventsFeed(w http.ResponseWriter, r *http.Request) {
	sel := selectorFromQuery(r)
	res, err := s.agenda.Search(r.Context(), sel)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	events := make([]model.Event, 0, len(res.Rows))
	for _, row := range res.Rows {
		events = append(events, model.Event{ID: row.ID, Title: row.Title, Start: row.Start, End: row.End})
	}
	feed := ics.BuildFeed("Farm calendar", events, s.agenda.Normalizer(), time.Now())
	if len(feed.Skipped) > 0 {
		appLog.Info("ics export skipped events", "ids", feed.Skipped)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="farmcal-`+strings.ReplaceAll(res.FromDate[:10], "-", "")+`.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(feed.Body))
}

// occurrenceDTO is a JSON-friendly view of task occurrences.
type occurrenceDTO struct {
	SourceID    string    `json:"source_id"`
	UID         string    `json:"uid"`
	InstanceKey string    `json:"instance_key"`
	Summary     string    `json:"summary"`
	AllDay      bool      `json:"all_day"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Display     string    `json:"display"`
}

// scheduleResponse is the JSON shape for /api/schedule.
type scheduleResponse struct {
	Selector        calendar.PeriodSelector `json:"selector"`
	Occurrences     []occurrenceDTO         `json:"occurrences"`
	TruncatedUIDs   []string                `json:"truncated_uids,omitempty"`
	DisplayTimeZone string                  `json:"display_timezone"`
}

// handleSchedule expands the configured recurring tasks over the selected
// week.
//
// GET /api/schedule?year=2026&month=1&week=22
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	sel := selectorFromQuery(r)
	loc := s.agenda.Normalizer().Location()

	res, err := ics.WeekSchedule(s.cfg.Tasks, sel, loc)
	if err != nil {
		if errors.Is(err, calendar.ErrInvalidPeriod) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		appLog.Error("api schedule: expand failed", err)
		writeError(w, http.StatusInternalServerError, "failed to expand tasks")
		return
	}

	dtos := make([]occurrenceDTO, 0, len(res.Occurrences))
	for _, occ := range res.Occurrences {
		dtos = append(dtos, occurrenceDTO{
			SourceID:    occ.SourceID,
			UID:         occ.UID,
			InstanceKey: occ.InstanceKey,
			Summary:     occ.Summary,
			AllDay:      occ.AllDay,
			Start:       occ.Start,
			End:         occ.End,
			Display:     calendar.FormatDisplay(occ.Start.Format(time.RFC3339)),
		})
	}

	writeJSON(w, http.StatusOK, scheduleResponse{
		Selector:        sel,
		Occurrences:     dtos,
		TruncatedUIDs:   res.TruncatedEvents,
		DisplayTimeZone: loc.String(),
	})
}

func (s *Server) handleGetState(w http.ResponseWriter, _ *http.Request) {
	st, err := s.state.Load()
	if err != nil {
		appLog.Error("load state failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load state")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	var st state.State
	if err := decodeJSON(w, r, &st); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := model.Validate(st); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if st.LastFilter != nil && !st.LastFilter.Valid() {
		writeError(w, http.StatusBadRequest, "last_filter is not a valid period")
		return
	}
	if err := s.state.Save(st); err != nil {
		appLog.Error("save state failed", err)
		writeError(w, http.StatusInternalServerError, "failed to save state")
		return
	}
	writeJSON(w, http.StatusOK, st)
}
