// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Bigdanydan/dj-calendar-pro/internal/model"
)

// AnalyticsMonths is the length of the trailing monthly revenue window,
// current month included.
const AnalyticsMonths = 12

// EventStore is the persistence contract the service needs. Both
// repository.EventRepository and repository.MemoryEventRepository satisfy it.
type EventStore interface {
	List(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	Create(ctx context.Context, e *model.Event) (*model.Event, error)
	Update(ctx context.Context, id int64, apply func(*model.Event) error) (*model.Event, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (model.Stats, error)
	RevenueByType(ctx context.Context) ([]model.TypeRevenue, error)
	MonthlyRevenue(ctx context.Context, from, to string) ([]model.MonthTotal, error)
}

// EventService orchestrates event-related business operations.
type EventService struct {
	store  EventStore
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an EventService.
type Option func(*EventService)

// WithClock overrides the clock used to place the analytics window.
func WithClock(now func() time.Time) Option {
	return func(s *EventService) { s.now = now }
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(store EventStore, logger *slog.Logger, opts ...Option) *EventService {
	s := &EventService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListEvents returns events matching the optional search, type and status
// filters.
func (s *EventService) ListEvents(ctx context.Context, search, eventType, status string) ([]model.Event, error) {
	events, err := s.store.List(ctx, model.EventFilter{
		Search: strings.TrimSpace(search),
		Type:   strings.TrimSpace(eventType),
		Status: strings.TrimSpace(status),
	})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// CreateEvent coerces the submitted fields over the defaults, validates the
// result and stores it.
func (s *EventService) CreateEvent(ctx context.Context, fields Fields) (*model.Event, error) {
	e := model.NewEvent()
	if err := applyFields(e, fields); err != nil {
		return nil, err
	}
	if err := validateEvent(e); err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info("event created", "id", created.ID, "date", created.Date)
	return created, nil
}

// UpdateEvent changes only the submitted fields of an existing event.
// Nothing is written if any field fails coercion or validation.
func (s *EventService) UpdateEvent(ctx context.Context, id int64, fields Fields) (*model.Event, error) {
	return s.UpdateEventWith(ctx, id, func() (Fields, error) { return fields, nil })
}

// UpdateEventWith is UpdateEvent for fields that may have failed to decode.
// load is only called once the event is known to exist, so a missing event
// is reported ahead of a bad request body.
func (s *EventService) UpdateEventWith(ctx context.Context, id int64, load func() (Fields, error)) (*model.Event, error) {
	var n int
	updated, err := s.store.Update(ctx, id, func(e *model.Event) error {
		fields, err := load()
		if err != nil {
			return err
		}
		n = len(fields)
		if err := applyFields(e, fields); err != nil {
			return err
		}
		return validateEvent(e)
	})
	if err != nil {
		return nil, fmt.Errorf("update event %d: %w", id, err)
	}
	s.logger.Info("event updated", "id", id, "fields", n)
	return updated, nil
}

// DeleteEvent removes an event permanently.
func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	s.logger.Info("event deleted", "id", id)
	return nil
}

// Stats returns the dashboard counters. It never fails: a storage error is
// logged and reported as all-zero counters.
func (s *EventService) Stats(ctx context.Context) model.Stats {
	st, err := s.store.Stats(ctx)
	return orEmpty(s.logger, "stats", st, err)
}

// Analytics returns revenue per type and per month over the trailing window.
// Like Stats it never fails; each part falls back to an empty list.
func (s *EventService) Analytics(ctx context.Context) model.Analytics {
	byType, err := s.store.RevenueByType(ctx)
	byType = orEmpty(s.logger, "revenue by type", byType, err)
	if byType == nil {
		byType = []model.TypeRevenue{}
	}

	monthly, err := s.monthlyRevenue(ctx)
	monthly = orEmpty(s.logger, "monthly revenue", monthly, err)
	if monthly == nil {
		monthly = []model.MonthlyRevenue{}
	}

	return model.Analytics{MonthlyRevenue: monthly, RevenueByType: byType}
}

// monthlyRevenue returns one bucket per calendar month of the window, oldest
// first, with empty months zero-filled.
func (s *EventService) monthlyRevenue(ctx context.Context) ([]model.MonthlyRevenue, error) {
	now := s.now().UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := current.AddDate(0, -(AnalyticsMonths - 1), 0)
	end := current.AddDate(0, 1, 0)

	totals, err := s.store.MonthlyRevenue(ctx, start.Format(time.DateOnly), end.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]model.MonthTotal, len(totals))
	for _, t := range totals {
		byKey[t.Key] = t
	}

	out := make([]model.MonthlyRevenue, 0, AnalyticsMonths)
	for m := start; m.Before(end); m = m.AddDate(0, 1, 0) {
		t := byKey[m.Format("2006-01")]
		out = append(out, model.MonthlyRevenue{
			Month:       fmt.Sprintf("%s %d", m.Month(), m.Year()),
			Year:        m.Year(),
			MonthNumber: int(m.Month()),
			Revenue:     t.Revenue,
			Count:       t.Count,
		})
	}
	return out, nil
}

// orEmpty is the one place the summary endpoints swallow failures: on error
// it logs and returns the zero value of T.
func orEmpty[T any](logger *slog.Logger, what string, v T, err error) T {
	if err != nil {
		logger.Error("summary query failed, returning empty result", "query", what, "error", err)
		var zero T
		return zero
	}
	return v
}
