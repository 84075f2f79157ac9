// Package store holds the current run's normalized events in an
// in-memory SQLite database so the API can page and search raw
// records without rescanning the archive. Nothing is written to
// disk; the store lives and dies with the process.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/AyGoub/gramview/internal/event"
	"github.com/AyGoub/gramview/internal/timeutil"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps a single in-memory SQLite connection. Writes are
// serialized; SQLite handles concurrent readers on the one
// connection the pool is capped to, which an in-memory database
// requires to keep its data visible.
type Store struct {
	db *sql.DB
	mu sync.Mutex // serializes writes
}

// Open creates a fresh in-memory store.
func Open() (*Store, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	// One connection: each pool connection would otherwise get
	// its own empty :memory: database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Replace swaps the stored events for the given stream inside
// one transaction, so readers never observe a half-loaded run.
func (s *Store) Replace(
	ctx context.Context, stream event.Stream,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM events"); err != nil {
		return fmt.Errorf("clearing events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (ts, category, username, url, text)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range stream {
		_, err := stmt.ExecContext(ctx,
			timeutil.Format(r.Timestamp),
			r.Category,
			r.Attrs["username"],
			r.Attrs["url"],
			r.Attrs["text"],
		)
		if err != nil {
			return fmt.Errorf("inserting event: %w", err)
		}
	}
	return tx.Commit()
}

// EventFilter restricts List results.
type EventFilter struct {
	Category string // exact match, "" = all
	Username string // substring match, "" = all
	Limit    int    // 0 = default page size
	Offset   int
}

const defaultPageSize = 100

// StoredEvent is one raw event row as served by the API.
type StoredEvent struct {
	ID        int64  `json:"id"`
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
	Username  string `json:"username,omitempty"`
	URL       string `json:"url,omitempty"`
	Text      string `json:"text,omitempty"`
}

// List returns a page of events ordered newest first, plus the
// total count matching the filter.
func (s *Store) List(
	ctx context.Context, f EventFilter,
) ([]StoredEvent, int, error) {
	preds := []string{"1=1"}
	var args []any
	if f.Category != "" {
		preds = append(preds, "category = ?")
		args = append(args, f.Category)
	}
	if f.Username != "" {
		preds = append(preds, "username LIKE ?")
		args = append(args, "%"+f.Username+"%")
	}
	where := strings.Join(preds, " AND ")

	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM events WHERE "+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting events: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ts, category, username, url, text
		 FROM events WHERE `+where+`
		 ORDER BY ts DESC, id DESC LIMIT ? OFFSET ?`,
		append(args, limit, f.Offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var e StoredEvent
		if err := rows.Scan(
			&e.ID, &e.Timestamp, &e.Category,
			&e.Username, &e.URL, &e.Text,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning event: %w", err)
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// CategoryCount is the number of stored events per category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryCounts returns per-category totals, largest first.
func (s *Store) CategoryCounts(
	ctx context.Context,
) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, count(*) FROM events
		 GROUP BY category
		 ORDER BY count(*) DESC, category`,
	)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()

	var out []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
