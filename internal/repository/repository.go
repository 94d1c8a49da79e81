// Package repository implements event storage for the booking calendar.
// The PostgreSQL implementation uses pgx directly (no ORM).
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Bigdanydan/dj-calendar-pro/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const eventColumns = `id, title, date, start_time, end_time, venue_name, venue_address,
	fee, currency, status, event_type, notes,
	tech_equipment, tech_setup, tech_playlist, tech_setup_time, tech_notes, created_at`

// EventRepository handles persistence for events in PostgreSQL.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

func storageErr(op string, err error) error {
	return &model.StorageError{Op: op, Err: err}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Date, &e.StartTime, &e.EndTime, &e.VenueName, &e.VenueAddress,
		&e.Fee, &e.Currency, &e.Status, &e.Type, &e.Notes,
		&e.TechEquipment, &e.TechSetup, &e.TechPlaylist, &e.TechSetupTime, &e.TechNotes, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// likePattern escapes LIKE metacharacters so search text matches literally.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// List returns events matching the filter ordered by date, start time, id.
func (r *EventRepository) List(ctx context.Context, f model.EventFilter) ([]model.Event, error) {
	var (
		conds []string
		args  []any
	)
	if f.Search != "" {
		args = append(args, likePattern(f.Search))
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR venue_name ILIKE $%d)", n, n))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		conds = append(conds, fmt.Sprintf("event_type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY date ASC, start_time ASC, id ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list events", err)
	}
	defer rows.Close()

	events := []model.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, storageErr("scan event", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list events", err)
	}
	return events, nil
}

// Create inserts a new event and returns it with its generated id.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) (*model.Event, error) {
	created := e.Clone()
	// PostgreSQL keeps microseconds; trim so the returned value matches later reads.
	created.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)

	err := r.db.QueryRow(ctx,
		`INSERT INTO events (title, date, start_time, end_time, venue_name, venue_address,
			fee, currency, status, event_type, notes,
			tech_equipment, tech_setup, tech_playlist, tech_setup_time, tech_notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 RETURNING id`,
		created.Title, created.Date, created.StartTime, created.EndTime, created.VenueName, created.VenueAddress,
		created.Fee, created.Currency, created.Status, created.Type, created.Notes,
		created.TechEquipment, created.TechSetup, created.TechPlaylist, created.TechSetupTime, created.TechNotes,
		created.CreatedAt,
	).Scan(&created.ID)
	if err != nil {
		return nil, storageErr("insert event", err)
	}
	return created, nil
}

// Update applies a read-modify-write to one event inside a transaction.
//
// The row is locked with SELECT … FOR UPDATE, so two concurrent updates of
// the same event are serialised and the later one wins. If apply returns an
// error the transaction is rolled back and that error is returned unchanged.
func (r *EventRepository) Update(ctx context.Context, id int64, apply func(*model.Event) error) (*model.Event, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, storageErr("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var e *model.Event
	e, err = scanEvent(tx.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = model.ErrNotFound
			return nil, err
		}
		err = storageErr("lock event row", err)
		return nil, err
	}

	createdAt := e.CreatedAt
	if err = apply(e); err != nil {
		return nil, err
	}
	e.ID = id
	e.CreatedAt = createdAt

	_, err = tx.Exec(ctx,
		`UPDATE events SET
			title = $2, date = $3, start_time = $4, end_time = $5, venue_name = $6, venue_address = $7,
			fee = $8, currency = $9, status = $10, event_type = $11, notes = $12,
			tech_equipment = $13, tech_setup = $14, tech_playlist = $15, tech_setup_time = $16, tech_notes = $17
		 WHERE id = $1`,
		id, e.Title, e.Date, e.StartTime, e.EndTime, e.VenueName, e.VenueAddress,
		e.Fee, e.Currency, e.Status, e.Type, e.Notes,
		e.TechEquipment, e.TechSetup, e.TechPlaylist, e.TechSetupTime, e.TechNotes,
	)
	if err != nil {
		err = storageErr("update event", err)
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		err = storageErr("commit transaction", err)
		return nil, err
	}
	return e, nil
}

// Delete removes an event permanently.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return storageErr("delete event", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Stats computes all dashboard counters in a single scan.
func (r *EventRepository) Stats(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2),
			COALESCE(SUM(fee) FILTER (WHERE status = $1), 0)
		 FROM events`,
		model.StatusConfirmed, model.StatusPending,
	).Scan(&s.TotalEvents, &s.ConfirmedEvents, &s.PendingEvents, &s.TotalRevenue)
	if err != nil {
		return model.Stats{}, storageErr("event stats", err)
	}
	return s, nil
}

// RevenueByType sums confirmed fees per event type.
func (r *EventRepository) RevenueByType(ctx context.Context) ([]model.TypeRevenue, error) {
	rows, err := r.db.Query(ctx,
		`SELECT event_type, COALESCE(SUM(fee), 0), COUNT(*)
		 FROM events
		 WHERE status = $1
		 GROUP BY event_type
		 ORDER BY 2 DESC, event_type ASC`,
		model.StatusConfirmed,
	)
	if err != nil {
		return nil, storageErr("revenue by type", err)
	}
	defer rows.Close()

	out := []model.TypeRevenue{}
	for rows.Next() {
		var t model.TypeRevenue
		if err := rows.Scan(&t.Type, &t.Revenue, &t.Count); err != nil {
			return nil, storageErr("scan revenue by type", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("revenue by type", err)
	}
	return out, nil
}

// MonthlyRevenue sums confirmed fees per "YYYY-MM" for dates in [from, to).
// Both bounds are ISO dates.
func (r *EventRepository) MonthlyRevenue(ctx context.Context, from, to string) ([]model.MonthTotal, error) {
	rows, err := r.db.Query(ctx,
		`SELECT substr(date, 1, 7) AS month, COALESCE(SUM(fee), 0), COUNT(*)
		 FROM events
		 WHERE status = $1 AND date >= $2 AND date < $3
		 GROUP BY month
		 ORDER BY month ASC`,
		model.StatusConfirmed, from, to,
	)
	if err != nil {
		return nil, storageErr("monthly revenue", err)
	}
	defer rows.Close()

	out := []model.MonthTotal{}
	for rows.Next() {
		var m model.MonthTotal
		if err := rows.Scan(&m.Key, &m.Revenue, &m.Count); err != nil {
			return nil, storageErr("scan monthly revenue", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("monthly revenue", err)
	}
	return out, nil
}
