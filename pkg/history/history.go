package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded version check.
type Entry struct {
	Core     string
	Expected float64
	Actual   float64
	OK       bool
	Detail   string
	Time     time.Time
}

// Store keeps version check outcomes in a local SQLite file.
type Store struct {
	db *sql.DB
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS version_checks(core TEXT, expected REAL, actual REAL, ok INTEGER, detail TEXT, ts INTEGER);
CREATE INDEX IF NOT EXISTS idx_version_checks_core ON version_checks(core, ts);`

// Open creates (if needed) and opens the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history mkdir: %w", err)
	}
	dsn := "file:" + path + "?_pragma=busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history init schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends e. A zero Time is replaced with now.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	ok := 0
	if e.OK {
		ok = 1
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO version_checks(core, expected, actual, ok, detail, ts) VALUES(?,?,?,?,?,?)`,
		e.Core, e.Expected, e.Actual, ok, e.Detail, e.Time.UnixNano())
	return err
}

// Recent returns up to limit entries for core, newest first.
// An empty core matches every core.
func (s *Store) Recent(ctx context.Context, core string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT core, expected, actual, ok, detail, ts FROM version_checks
		WHERE ? = '' OR core = ? ORDER BY ts DESC LIMIT ?`, core, core, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			ok int
			ts int64
		)
		if err := rows.Scan(&e.Core, &e.Expected, &e.Actual, &ok, &e.Detail, &ts); err != nil {
			return nil, err
		}
		e.OK = ok == 1
		e.Time = time.Unix(0, ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
