// Package journal records the outcome of every dispatched call in SQLite.
// The journal is write-only from the dispatch path; it is read by the admin
// API and the CLI.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chatvolt/chatvolt-mcp/internal/tool"
	"github.com/chatvolt/chatvolt-mcp/pkg/protocol"
)

// Filter constrains journal queries.
type Filter struct {
	Operation string    // exact match
	Status    string    // ok or error
	Kind      string    // error kind
	Since     time.Time // started at or after
	Limit     int       // 0 = no limit
}

const queueSize = 256

// Store is a SQLite-backed call journal. It implements tool.Observer.
// Observed calls are written by a background goroutine so dispatch never
// waits on the database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	mu      sync.RWMutex
	closed  bool
	queue   chan protocol.CallEntry
	pending sync.WaitGroup
	done    chan struct{}
}

var _ tool.Observer = (*Store)(nil)

// Open opens (or creates) the journal database and runs migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	// One connection serializes writers and keeps the pragmas below in effect.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: busy timeout: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		db:     db,
		logger: logger.With("component", "journal"),
		queue:  make(chan protocol.CallEntry, queueSize),
		done:   make(chan struct{}),
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	go s.writeLoop()
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS calls (
			id          TEXT PRIMARY KEY,
			operation   TEXT NOT NULL,
			status      TEXT NOT NULL,
			kind        TEXT NOT NULL DEFAULT '',
			error       TEXT NOT NULL DEFAULT '',
			started_at  TEXT NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_calls_started ON calls(started_at);
		CREATE INDEX IF NOT EXISTS idx_calls_operation ON calls(operation);
	`)
	if err != nil {
		return fmt.Errorf("journal: migrate: %w", err)
	}
	return nil
}

// Record stores an entry. A missing ID is generated.
func (s *Store) Record(ctx context.Context, e protocol.CallEntry) (protocol.CallEntry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calls (id, operation, status, kind, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Operation, e.Status, e.Kind, e.Error, formatTime(e.StartedAt), e.DurationMS)
	if err != nil {
		return e, fmt.Errorf("journal: record: %w", err)
	}
	return e, nil
}

// Observe queues a finished dispatch for recording. It never blocks: when
// the queue is full or the store is closed the call is dropped and logged.
func (s *Store) Observe(_ context.Context, rec tool.CallRecord) {
	e := protocol.CallEntry{
		Operation:  rec.Operation,
		Status:     rec.Status,
		Kind:       rec.Kind,
		Error:      rec.Error,
		StartedAt:  rec.StartedAt,
		DurationMS: rec.Duration.Milliseconds(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.Warn("journal closed, call not recorded", "operation", rec.Operation)
		return
	}
	s.pending.Add(1)
	select {
	case s.queue <- e:
	default:
		s.pending.Done()
		s.logger.Warn("journal queue full, call not recorded", "operation", rec.Operation)
	}
}

func (s *Store) writeLoop() {
	defer close(s.done)
	for e := range s.queue {
		if _, err := s.Record(context.Background(), e); err != nil {
			s.logger.Error("record call failed", "operation", e.Operation, "error", err)
		}
		s.pending.Done()
	}
}

// Flush waits until every queued call has been written.
func (s *Store) Flush() {
	s.pending.Wait()
}

// List returns entries matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter Filter) ([]protocol.CallEntry, error) {
	where, args := filter.where()
	query := "SELECT id, operation, status, kind, error, started_at, duration_ms FROM calls" +
		where + " ORDER BY started_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	defer rows.Close()

	var entries []protocol.CallEntry
	for rows.Next() {
		var (
			e       protocol.CallEntry
			started string
		)
		if err := rows.Scan(&e.ID, &e.Operation, &e.Status, &e.Kind, &e.Error, &started, &e.DurationMS); err != nil {
			return nil, fmt.Errorf("journal: list scan: %w", err)
		}
		e.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of entries matching the filter. Limit is ignored.
func (s *Store) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filter.where()
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM calls"+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("journal: count: %w", err)
	}
	return n, nil
}

// Prune deletes entries that started before the cutoff and returns how many
// were removed.
func (s *Store) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM calls WHERE started_at < ?", formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("journal: prune: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Info("pruned calls", "count", n, "before", before.Format(time.RFC3339))
	}
	return n, nil
}

// Close writes the queued calls and closes the database. It is safe to call
// more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	<-s.done
	return s.db.Close()
}

func (f Filter) where() (string, []any) {
	clause := " WHERE 1=1"
	var args []any
	if f.Operation != "" {
		clause += " AND operation = ?"
		args = append(args, f.Operation)
	}
	if f.Status != "" {
		clause += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.Kind != "" {
		clause += " AND kind = ?"
		args = append(args, f.Kind)
	}
	if !f.Since.IsZero() {
		clause += " AND started_at >= ?"
		args = append(args, formatTime(f.Since))
	}
	return clause, args
}

// formatTime uses a fixed-width UTC layout so string order matches time order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
