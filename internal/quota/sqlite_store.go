package quota

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"botanize/internal/sqlitedb"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// SQLiteStore keeps quota values in a SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

var (
	_ Backend = (*SQLiteStore)(nil)
	_ Counter = (*SQLiteStore)(nil)
)

// querier is the subset shared by *sql.DB and *sql.Conn.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// OpenSQLiteStore opens or creates the quota database at path.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sqlitedb.Open(ctx, path, sqlitedb.Schema{Name: "quota", SQL: schemaSQL, Version: schemaVersion})
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	return getValue(ctx, s.db, key)
}

// Set implements Store.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	return setValue(ctx, s.db, key, value)
}

// Consume implements Counter. The read and both writes run inside one
// IMMEDIATE transaction, which takes the database write lock up front so
// processes sharing the file serialize on it.
func (s *SQLiteStore) Consume(ctx context.Context, req ConsumeRequest) (int, bool, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("acquire quota connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		return 0, false, fmt.Errorf("apply busy timeout: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return 0, false, fmt.Errorf("begin quota transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	date, _, err := getValue(ctx, conn, req.DateKey)
	if err != nil {
		return 0, false, err
	}
	raw, _, err := getValue(ctx, conn, req.CountKey)
	if err != nil {
		return 0, false, err
	}
	count, accepted := nextCount(date, raw, req)
	if err := setValue(ctx, conn, req.CountKey, strconv.Itoa(count)); err != nil {
		return 0, false, err
	}
	if err := setValue(ctx, conn, req.DateKey, req.Today); err != nil {
		return 0, false, err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return 0, false, fmt.Errorf("commit quota transaction: %w", err)
	}
	committed = true
	return count, accepted, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func getValue(ctx context.Context, q querier, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, "SELECT value FROM quota_values WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read quota %q: %w", key, err)
	}
	return value, true, nil
}

func setValue(ctx context.Context, q querier, key, value string) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO quota_values (key, value, updated_at) VALUES (?, ?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("write quota %q: %w", key, err)
	}
	return nil
}
