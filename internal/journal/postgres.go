package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Postgres journals events into an append-only events table.
type Postgres struct {
	db *sql.DB
}

const eventsSchema = `
CREATE TABLE IF NOT EXISTS events (
	id SERIAL PRIMARY KEY,
	time TIMESTAMPTZ NOT NULL,
	type TEXT NOT NULL,
	description TEXT NOT NULL,
	data JSONB
);
CREATE INDEX IF NOT EXISTS idx_events_type_time ON events (type, time);
`

func NewPostgres(ctx context.Context, connStr string) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, eventsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating events table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) LogEvent(ctx context.Context, event Event) error {
	data, _ := json.Marshal(event.Data)
	_, err := p.db.ExecContext(ctx, `INSERT INTO events (time, type, description, data) VALUES ($1,$2,$3,$4)`,
		event.Time, event.Type, event.Description, data)
	if err != nil {
		return fmt.Errorf("failed to log event: %w", err)
	}
	return nil
}

func (p *Postgres) GetEvents(ctx context.Context, eventType string, start, end time.Time) ([]Event, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT time, type, description, data FROM events WHERE type=$1 AND time >= $2 AND time <= $3 ORDER BY time ASC`,
		eventType, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var data []byte
		if err := rows.Scan(&e.Time, &e.Type, &e.Description, &data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if len(data) > 0 {
			_ = json.Unmarshal(data, &e.Data)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (p *Postgres) Close() error { return p.db.Close() }
