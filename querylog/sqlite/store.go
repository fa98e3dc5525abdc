// Package sqlite is a SQLite-backed implementation of querylog.Store: a
// concrete database/sql-backed implementation of the interface defined in
// the parent package, driven by github.com/mattn/go-sqlite3.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/otterlearn/reusecache/querylog"
)

// Store is a SQLite-backed querylog.Store.
type Store struct {
	db *sql.DB
}

// Config holds configuration for the SQLite-backed store.
type Config struct {
	// DBPath is the path to the SQLite database file. Use ":memory:" for
	// an ephemeral in-process database.
	DBPath string
}

// New opens (creating if necessary) a SQLite-backed query log at
// config.DBPath and ensures its schema exists.
func New(config *Config) (*Store, error) {
	if config.DBPath == "" {
		return nil, fmt.Errorf("querylog/sqlite: DBPath is required")
	}

	db, err := sql.Open("sqlite3", config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("querylog/sqlite: failed to open db: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("querylog/sqlite: failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS query_log (
		sequence    INTEGER PRIMARY KEY AUTOINCREMENT,
		query       TEXT NOT NULL,
		output      TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		duration_ns INTEGER NOT NULL,
		at          INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_query_log_at ON query_log(at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records entry, assigning it the next sequence number. entry.Query
// and entry.Output symbols are joined with a unit separator, matching the
// same string-based symbol representation used across cmd/reusebench.
func (s *Store) Append(ctx context.Context, entry querylog.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO query_log (query, output, outcome, duration_ns, at) VALUES (?, ?, ?, ?, ?)`,
		encodeSymbols(entry.Query), encodeSymbols(entry.Output), entry.Outcome,
		entry.Duration.Nanoseconds(), entry.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("querylog/sqlite: failed to insert entry: %w", err)
	}
	return nil
}

// Recent returns the last n entries, most recent first.
func (s *Store) Recent(ctx context.Context, n int) ([]querylog.Entry, error) {
	if n <= 0 {
		n = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT sequence, query, output, outcome, duration_ns, at
		 FROM query_log ORDER BY sequence DESC LIMIT ?`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("querylog/sqlite: failed to query recent entries: %w", err)
	}
	defer rows.Close()

	var out []querylog.Entry
	for rows.Next() {
		var e querylog.Entry
		var query, output string
		var durationNs, atNs int64

		if err := rows.Scan(&e.Sequence, &query, &output, &e.Outcome, &durationNs, &atNs); err != nil {
			return nil, fmt.Errorf("querylog/sqlite: failed to scan entry: %w", err)
		}
		e.Query = decodeSymbols(query)
		e.Output = decodeSymbols(output)
		e.Duration = time.Duration(durationNs)
		e.At = time.Unix(0, atNs)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querylog/sqlite: error iterating entries: %w", err)
	}
	return out, nil
}

// Count returns the total number of entries ever appended.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM query_log`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("querylog/sqlite: failed to count entries: %w", err)
	}
	return count, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const symbolSeparator = "\x1f"

func encodeSymbols(symbols []string) string {
	return strings.Join(symbols, symbolSeparator)
}

func decodeSymbols(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, symbolSeparator)
}
