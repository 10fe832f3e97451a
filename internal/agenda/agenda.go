// Package agenda implements the calendar assistant: searching events by
// week, preparing edit forms and turning submitted forms back into the
// transport format the backend accepts.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"farmcal/internal/calendar"
	appLog "farmcal/internal/log"
	"farmcal/internal/model"
)

const defaultCacheTTL = 30 * time.Second

// ErrInvalidForm is returned when a submitted form cannot be converted.
var ErrInvalidForm = errors.New("invalid event form")

// maxSearchPages bounds how many backend pages one search follows.
const maxSearchPages = 20

// EventStore is the slice of the backend event repository the agenda needs.
// *backend.EventRepository satisfies it.
type EventStore interface {
	ListAll(ctx context.Context, params url.Values, maxPages int) ([]model.Event, error)
	Get(ctx context.Context, id string) (model.Event, error)
	Create(ctx context.Context, payload model.CreateEvent) (model.Event, error)
	Update(ctx context.Context, id string, ev model.Event) (model.Event, error)
	Delete(ctx context.Context, id string) error
}

// Row is one event prepared for the agenda table.
type Row struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	// Start / End are the raw backend strings.
	Start string `json:"start"`
	End   string `json:"end"`
	// StartDisplay / EndDisplay are "DD/MM/YYYY HH:MM".
	StartDisplay string `json:"start_display"`
	EndDisplay   string `json:"end_display"`
	// StartZoned / EndZoned are "...+08:00[Asia/Manila]" for the calendar
	// widget; empty when the raw value could not be parsed.
	StartZoned string `json:"start_zoned,omitempty"`
	EndZoned   string `json:"end_zoned,omitempty"`
}

// Result is a search outcome.
type Result struct {
	FromDate string `json:"from_date"`
	Rows     []Row  `json:"rows"`
}

type cacheEntry struct {
	res       Result
	updatedAt time.Time
}

// Service runs agenda queries against an EventStore.
type Service struct {
	store EventStore
	norm  *calendar.Normalizer
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
}

// Option customizes a Service.
type Option func(*Service)

// WithCacheTTL sets how long search results are reused. Zero disables
// caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store EventStore, norm *calendar.Normalizer, opts ...Option) *Service {
	s := &Service{
		store: store,
		norm:  norm,
		ttl:   defaultCacheTTL,
		now:   time.Now,
		cache: make(map[string]cacheEntry),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Normalizer exposes the normalizer the service formats with.
func (s *Service) Normalizer() *calendar.Normalizer {
	return s.norm
}

// Today is the current date in the farm's zone.
func (s *Service) Today() time.Time {
	return s.now().In(s.norm.Location())
}

// PeriodOptions lists the filter choices around now's year.
func (s *Service) PeriodOptions(now time.Time) calendar.PeriodOptions {
	return calendar.OptionsFor(now.In(s.norm.Location()))
}

// Search resolves the selector and lists the events from its anchor date.
// An unresolvable selector returns an error wrapping
// calendar.ErrInvalidPeriod and no query is sent.
func (s *Service) Search(ctx context.Context, sel calendar.PeriodSelector) (Result, error) {
	if !sel.Complete() {
		return Result{}, fmt.Errorf("%w: year, month and week are required", calendar.ErrInvalidPeriod)
	}
	fromDate, err := calendar.ResolveAnchor(sel)
	if err != nil {
		return Result{}, err
	}
	return s.searchFrom(ctx, fromDate)
}

func (s *Service) searchFrom(ctx context.Context, fromDate string) (Result, error) {
	if res, ok := s.cached(fromDate); ok {
		return res, nil
	}

	events, err := s.store.ListAll(ctx, url.Values{"fromDate": {fromDate}}, maxSearchPages)
	if err != nil {
		return Result{}, fmt.Errorf("list events from %s: %w", fromDate, err)
	}

	res := Result{FromDate: fromDate, Rows: make([]Row, 0, len(events))}
	for _, ev := range events {
		res.Rows = append(res.Rows, s.row(ev))
	}

	appLog.Info("agenda search", "from_date", fromDate, "events", len(res.Rows))
	s.remember(fromDate, res)
	return res, nil
}

func (s *Service) row(ev model.Event) Row {
	r := Row{
		ID:           ev.ID,
		Title:        ev.Title,
		Start:        ev.Start,
		End:          ev.End,
		StartDisplay: calendar.FormatDisplay(ev.Start),
		EndDisplay:   calendar.FormatDisplay(ev.End),
	}
	r.StartZoned = s.zoned(ev.ID, ev.Start)
	r.EndZoned = s.zoned(ev.ID, ev.End)
	return r
}

func (s *Service) zoned(id int, raw string) string {
	w, err := s.norm.Parse(raw)
	if err != nil {
		appLog.Error("agenda: unparseable event timestamp", err, "id", id)
		return ""
	}
	return w.Zoned(s.norm.Location()).String()
}

// Get fetches one event.
func (s *Service) Get(ctx context.Context, id int) (model.Event, error) {
	ev, err := s.store.Get(ctx, strconv.Itoa(id))
	if err != nil {
		return model.Event{}, fmt.Errorf("get event %d: %w", id, err)
	}
	return ev, nil
}

// EditForm prefills the edit form from a stored event. Unparseable fields
// are left blank.
func (s *Service) EditForm(ev model.Event) model.EventForm {
	return model.EventForm{
		Title:     ev.Title,
		Date:      calendar.ExtractDatePart(ev.Start),
		StartTime: calendar.ExtractTimePart(ev.Start),
		EndTime:   calendar.ExtractTimePart(ev.End),
	}
}

// NewForm is a blank create form dated today.
func (s *Service) NewForm() model.EventForm {
	return model.EventForm{Date: s.Today().Format("2006-01-02")}
}

// Payload converts a submitted form into transport-format start and end.
func (s *Service) Payload(f model.EventForm) (model.CreateEvent, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Date = strings.TrimSpace(f.Date)
	f.StartTime = strings.TrimSpace(f.StartTime)
	f.EndTime = strings.TrimSpace(f.EndTime)
	if err := model.Validate(f); err != nil {
		return model.CreateEvent{}, fmt.Errorf("%w: %w", ErrInvalidForm, err)
	}

	date, _ := time.Parse("2006-01-02", f.Date)
	start, _ := time.Parse("15:04", f.StartTime)
	end, _ := time.Parse("15:04", f.EndTime)
	if end.Before(start) {
		return model.CreateEvent{}, fmt.Errorf("%w: end %s is before start %s", ErrInvalidForm, f.EndTime, f.StartTime)
	}

	day := calendar.ToZoned(date, s.norm.Location())
	return model.CreateEvent{
		Title: f.Title,
		Start: s.norm.Transport(day.With(start.Hour(), start.Minute())),
		End:   s.norm.Transport(day.With(end.Hour(), end.Minute())),
	}, nil
}

// Create validates and submits a new event.
func (s *Service) Create(ctx context.Context, f model.EventForm) (model.CreateEvent, error) {
	payload, err := s.Payload(f)
	if err != nil {
		return model.CreateEvent{}, err
	}
	if _, err := s.store.Create(ctx, payload); err != nil {
		return model.CreateEvent{}, fmt.Errorf("create event: %w", err)
	}
	s.Invalidate()
	appLog.Info("agenda event created", "title", payload.Title, "start", payload.Start)
	return payload, nil
}

// Update validates and submits an edited event.
func (s *Service) Update(ctx context.Context, id int, f model.EventForm) (model.Event, error) {
	payload, err := s.Payload(f)
	if err != nil {
		return model.Event{}, err
	}
	ev := model.Event{ID: id, Title: payload.Title, Start: payload.Start, End: payload.End}
	if _, err := s.store.Update(ctx, strconv.Itoa(id), ev); err != nil {
		return model.Event{}, fmt.Errorf("update event %d: %w", id, err)
	}
	s.Invalidate()
	appLog.Info("agenda event updated", "id", id, "start", ev.Start)
	return ev, nil
}

// Delete removes an event.
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.store.Delete(ctx, strconv.Itoa(id)); err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	s.Invalidate()
	appLog.Info("agenda event deleted", "id", id)
	return nil
}

// Warm refreshes the cached results for the week containing today.
func (s *Service) Warm(ctx context.Context) error {
	fromDate, err := calendar.ResolveAnchor(calendar.WeekOf(s.Today()))
	if err != nil {
		return err
	}
	s.drop(fromDate)
	_, err = s.searchFrom(ctx, fromDate)
	return err
}

// Invalidate drops all cached search results.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cache = make(map[string]cacheEntry)
	s.mu.Unlock()
}

func (s *Service) cached(fromDate string) (Result, bool) {
	if s.ttl <= 0 {
		return Result{}, false
	}
	s.mu.RLock()
	e, ok := s.cache[fromDate]
	s.mu.RUnlock()
	if !ok || s.now().Sub(e.updatedAt) >= s.ttl {
		return Result{}, false
	}
	return e.res, true
}

func (s *Service) remember(fromDate string, res Result) {
	if s.ttl <= 0 {
		return
	}
	s.mu.Lock()
	s.cache[fromDate] = cacheEntry{res: res, updatedAt: s.now()}
	s.mu.Unlock()
}

func (s *Service) drop(fromDate string) {
	s.mu.Lock()
	delete(s.cache, fromDate)
	s.mu.Unlock()
}
