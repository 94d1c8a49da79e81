package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Bigdanydan/dj-calendar-pro/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventStore is the behaviour both repositories share.
type eventStore interface {
	List(ctx context.Context, f model.EventFilter) ([]model.Event, error)
	Create(ctx context.Context, e *model.Event) (*model.Event, error)
	Update(ctx context.Context, id int64, apply func(*model.Event) error) (*model.Event, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (model.Stats, error)
	RevenueByType(ctx context.Context) ([]model.TypeRevenue, error)
	MonthlyRevenue(ctx context.Context, from, to string) ([]model.MonthTotal, error)
}

func gig(title, venue, date, start, status, typ string, fee float64) *model.Event {
	e := model.NewEvent()
	e.Title = title
	e.VenueName = venue
	e.Date = date
	e.StartTime = start
	e.Status = status
	e.Type = typ
	e.Fee = fee
	return e
}

func seed(t *testing.T, s eventStore) []*model.Event {
	t.Helper()
	ctx := context.Background()
	var out []*model.Event
	for _, e := range []*model.Event{
		gig("Saturday Session", "Fabric London", "2026-09-12", "23:00", "confirmed", "club", 100),
		gig("Wedding Reception", "Old Barn", "2026-08-01", "18:00", "pending", "wedding", 75),
		gig("Fabric Live", "Room One", "2026-09-12", "21:00", "confirmed", "club", 50),
		gig("Corporate Gala", "Hilton 100%", "2026-10-03", "20:00", "confirmed", "corporate", 300),
	} {
		created, err := s.Create(ctx, e)
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func titles(events []model.Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

func runStoreContract(t *testing.T, newStore func(t *testing.T) eventStore) {
	ctx := context.Background()

	t.Run("create assigns id and created_at", func(t *testing.T) {
		s := newStore(t)
		minutes := 45
		in := gig("Fabric", "Fabric", "2026-09-12", "23:00", "confirmed", "club", 100)
		in.TechSetupTime = &minutes

		created, err := s.Create(ctx, in)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		require.NotNil(t, created.TechSetupTime)
		assert.Equal(t, 45, *created.TechSetupTime)

		events, err := s.List(ctx, model.EventFilter{})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, created.ID, events[0].ID)
		assert.Equal(t, "Fabric", events[0].Title)
		assert.Equal(t, 45, *events[0].TechSetupTime)
		assert.True(t, created.CreatedAt.Equal(events[0].CreatedAt),
			"created %v, listed %v", created.CreatedAt, events[0].CreatedAt)
	})

	t.Run("list orders by date then start time", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		events, err := s.List(ctx, model.EventFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Wedding Reception", "Fabric Live", "Saturday Session", "Corporate Gala"}, titles(events))
	})

	t.Run("list filters", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		events, err := s.List(ctx, model.EventFilter{Search: "fabric"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Fabric Live", "Saturday Session"}, titles(events))

		events, err = s.List(ctx, model.EventFilter{Search: "100%"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Corporate Gala"}, titles(events))

		events, err = s.List(ctx, model.EventFilter{Search: "fabric", Status: "confirmed", Type: "club"})
		require.NoError(t, err)
		assert.Len(t, events, 2)

		events, err = s.List(ctx, model.EventFilter{Type: "wedding"})
		require.NoError(t, err)
		assert.Equal(t, []string{"Wedding Reception"}, titles(events))

		events, err = s.List(ctx, model.EventFilter{Status: "cancelled"})
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})

	t.Run("update applies and persists", func(t *testing.T) {
		s := newStore(t)
		created := seed(t, s)[0]

		updated, err := s.Update(ctx, created.ID, func(e *model.Event) error {
			e.Fee = 250
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 250.0, updated.Fee)
		assert.Equal(t, created.Title, updated.Title)
		assert.Equal(t, created.ID, updated.ID)

		events, err := s.List(ctx, model.EventFilter{Search: created.Title})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, 250.0, events[0].Fee)
	})

	t.Run("update keeps id and created_at", func(t *testing.T) {
		s := newStore(t)
		created := seed(t, s)[0]

		updated, err := s.Update(ctx, created.ID, func(e *model.Event) error {
			e.ID = 424242
			e.CreatedAt = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
			e.Notes = "moved"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))

		events, err := s.List(ctx, model.EventFilter{Search: created.Title})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, created.ID, events[0].ID)
		assert.Equal(t, "moved", events[0].Notes)
		assert.True(t, created.CreatedAt.Equal(events[0].CreatedAt))
	})

	t.Run("failed apply leaves the row untouched", func(t *testing.T) {
		s := newStore(t)
		created := seed(t, s)[0]
		boom := errors.New("boom")

		_, err := s.Update(ctx, created.ID, func(e *model.Event) error {
			e.Fee = 1
			return boom
		})
		assert.ErrorIs(t, err, boom)

		events, err := s.List(ctx, model.EventFilter{Search: created.Title})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, created.Fee, events[0].Fee)
	})

	t.Run("update and delete of a missing id", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Update(ctx, 999999, func(*model.Event) error { return nil })
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.ErrorIs(t, s.Delete(ctx, 999999), model.ErrNotFound)
	})

	t.Run("delete removes the row", func(t *testing.T) {
		s := newStore(t)
		created := seed(t, s)[0]

		require.NoError(t, s.Delete(ctx, created.ID))
		assert.ErrorIs(t, s.Delete(ctx, created.ID), model.ErrNotFound)

		events, err := s.List(ctx, model.EventFilter{})
		require.NoError(t, err)
		for _, e := range events {
			assert.NotEqual(t, created.ID, e.ID)
		}
	})

	t.Run("stats", func(t *testing.T) {
		s := newStore(t)
		st, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.Stats{}, st)

		seed(t, s)
		st, err = s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, model.Stats{TotalEvents: 4, ConfirmedEvents: 3, PendingEvents: 1, TotalRevenue: 450}, st)
	})

	t.Run("revenue by type", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		out, err := s.RevenueByType(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.TypeRevenue{
			{Type: "corporate", Revenue: 300, Count: 1},
			{Type: "club", Revenue: 150, Count: 2},
		}, out)
	})

	t.Run("monthly revenue window", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)

		out, err := s.MonthlyRevenue(ctx, "2026-08-01", "2026-10-01")
		require.NoError(t, err)
		assert.Equal(t, []model.MonthTotal{{Key: "2026-09", Revenue: 150, Count: 2}}, out)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		s := newStore(t)
		created := seed(t, s)[0]

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Update(ctx, created.ID, func(e *model.Event) error {
					e.Fee++
					return nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		events, err := s.List(ctx, model.EventFilter{Search: created.Title})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, created.Fee+20, events[0].Fee)
	})
}
