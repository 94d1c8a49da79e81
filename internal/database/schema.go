package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the events table and its indexes. Every statement is
// idempotent so it runs on each startup.
const Schema = `
CREATE TABLE IF NOT EXISTS events (
	id              BIGSERIAL PRIMARY KEY,
	title           TEXT             NOT NULL DEFAULT '',
	date            VARCHAR(10)      NOT NULL,
	start_time      VARCHAR(5)       NOT NULL,
	end_time        VARCHAR(5)       NOT NULL DEFAULT '',
	venue_name      TEXT             NOT NULL DEFAULT '',
	venue_address   TEXT             NOT NULL DEFAULT '',
	fee             DOUBLE PRECISION NOT NULL DEFAULT 0,
	currency        VARCHAR(3)       NOT NULL DEFAULT 'EUR',
	status          TEXT             NOT NULL DEFAULT 'confirmed',
	event_type      TEXT             NOT NULL DEFAULT 'club',
	notes           TEXT             NOT NULL DEFAULT '',
	tech_equipment  TEXT             NOT NULL DEFAULT '',
	tech_setup      TEXT             NOT NULL DEFAULT '',
	tech_playlist   TEXT             NOT NULL DEFAULT '',
	tech_setup_time INTEGER,
	tech_notes      TEXT             NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ      NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS events_date_idx ON events (date);
CREATE INDEX IF NOT EXISTS events_status_idx ON events (status);
`

// EnsureSchema applies Schema.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
