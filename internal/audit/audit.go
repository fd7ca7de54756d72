// Package audit persists a journal of writer lifecycle events in sqlite.
//
// The journal is an optional collaborator fed through the writer's
// lifecycle hooks; the rotation engine itself never consults it, so the
// directory listing remains the only decision state.
package audit

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Event operations.
const (
	OpOpen  = "open"
	OpClose = "close"
)

// Event is one recorded lifecycle notification.
type Event struct {
	Op    string
	File  string
	Bytes int64
	At    time.Time
}

// Journal records writer lifecycle events in a sqlite database.
type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path and applies
// pending schema migrations.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping journal database: %w", err)
	}
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	drv, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Record appends one event to the journal.
func (j *Journal) Record(ctx context.Context, ev Event) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO events (op, file, bytes, at) VALUES (?, ?, ?, ?)",
		ev.Op, ev.File, ev.Bytes, at.UnixNano())
	if err != nil {
		return fmt.Errorf("record %s event: %w", ev.Op, err)
	}
	return nil
}

// Events returns all recorded events in insertion order.
func (j *Journal) Events(ctx context.Context) ([]Event, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT op, file, bytes, at FROM events ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var nanos int64
		if err := rows.Scan(&ev.Op, &ev.File, &ev.Bytes, &nanos); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.At = time.Unix(0, nanos)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
