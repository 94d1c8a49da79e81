package repository

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Bigdanydan/dj-calendar-pro/internal/model"
)

// MemoryEventRepository keeps events in process memory. It honours the same
// contract as EventRepository, including single-row atomic writes, and is
// meant for local runs without PostgreSQL and for tests.
type MemoryEventRepository struct {
	mu     sync.RWMutex
	nextID int64
	events map[int64]*model.Event
	now    func() time.Time
}

// NewMemoryEventRepository constructs an empty MemoryEventRepository.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		events: make(map[int64]*model.Event),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func matches(e *model.Event, f model.EventFilter) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(e.Title), needle) &&
			!strings.Contains(strings.ToLower(e.VenueName), needle) {
			return false
		}
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	return true
}

// List returns events matching the filter ordered by date, start time, id.
func (m *MemoryEventRepository) List(_ context.Context, f model.EventFilter) ([]model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := []model.Event{}
	for _, e := range m.events {
		if matches(e, f) {
			events = append(events, *e.Clone())
		}
	}
	slices.SortFunc(events, func(a, b model.Event) int {
		return cmp.Or(
			cmp.Compare(a.Date, b.Date),
			cmp.Compare(a.StartTime, b.StartTime),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return events, nil
}

// Create stores a copy of e under a fresh id.
func (m *MemoryEventRepository) Create(_ context.Context, e *model.Event) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	created := e.Clone()
	created.ID = m.nextID
	created.CreatedAt = m.now()
	m.events[created.ID] = created
	return created.Clone(), nil
}

// Update runs apply on a copy and stores it only if apply succeeds.
func (m *MemoryEventRepository) Update(_ context.Context, id int64, apply func(*model.Event) error) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.events[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	next := current.Clone()
	if err := apply(next); err != nil {
		return nil, err
	}
	next.ID = id
	next.CreatedAt = current.CreatedAt
	m.events[id] = next
	return next.Clone(), nil
}

// Delete removes an event permanently.
func (m *MemoryEventRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[id]; !ok {
		return model.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

// Stats computes the dashboard counters.
func (m *MemoryEventRepository) Stats(_ context.Context) (model.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var s model.Stats
	for _, e := range m.events {
		s.TotalEvents++
		switch e.Status {
		case model.StatusConfirmed:
			s.ConfirmedEvents++
			s.TotalRevenue += e.Fee
		case model.StatusPending:
			s.PendingEvents++
		}
	}
	return s, nil
}

// RevenueByType sums confirmed fees per event type, highest revenue first.
func (m *MemoryEventRepository) RevenueByType(_ context.Context) ([]model.TypeRevenue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byType := map[string]*model.TypeRevenue{}
	for _, e := range m.events {
		if e.Status != model.StatusConfirmed {
			continue
		}
		t, ok := byType[e.Type]
		if !ok {
			t = &model.TypeRevenue{Type: e.Type}
			byType[e.Type] = t
		}
		t.Revenue += e.Fee
		t.Count++
	}

	out := make([]model.TypeRevenue, 0, len(byType))
	for _, t := range byType {
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b model.TypeRevenue) int {
		return cmp.Or(cmp.Compare(b.Revenue, a.Revenue), cmp.Compare(a.Type, b.Type))
	})
	return out, nil
}

// MonthlyRevenue sums confirmed fees per "YYYY-MM" for dates in [from, to).
func (m *MemoryEventRepository) MonthlyRevenue(_ context.Context, from, to string) ([]model.MonthTotal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byMonth := map[string]*model.MonthTotal{}
	for _, e := range m.events {
		if e.Status != model.StatusConfirmed || e.Date < from || e.Date >= to || len(e.Date) < 7 {
			continue
		}
		key := e.Date[:7]
		mt, ok := byMonth[key]
		if !ok {
			mt = &model.MonthTotal{Key: key}
			byMonth[key] = mt
		}
		mt.Revenue += e.Fee
		mt.Count++
	}

	out := make([]model.MonthTotal, 0, len(byMonth))
	for _, mt := range byMonth {
		out = append(out, *mt)
	}
	slices.SortFunc(out, func(a, b model.MonthTotal) int { return cmp.Compare(a.Key, b.Key) })
	return out, nil
}
