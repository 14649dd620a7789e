package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"botanize/internal/logging"
	"botanize/internal/sqlitedb"
	"botanize/internal/traits"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrNotFound is returned when no entry has the requested ID.
var ErrNotFound = errors.New("journal entry not found")

const entryColumns = `id, scientific_name, common_name, family, mode, raw_score, adjusted_score,
    verified_count, verified_traits_json, notes, created_at`

// Journal persists entries in SQLite.
type Journal struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock overrides the timestamp source for new entries.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		if now != nil {
			j.now = now
		}
	}
}

// WithLogger sets the journal's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		j.logger = logger
	}
}

// Open opens or creates the journal database at path.
func Open(ctx context.Context, path string, opts ...Option) (*Journal, error) {
	db, err := sqlitedb.Open(ctx, path, sqlitedb.Schema{Name: "journal", SQL: schemaSQL, Version: schemaVersion})
	if err != nil {
		return nil, err
	}
	j := &Journal{db: db, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(j)
		}
	}
	j.logger = logging.NewComponentLogger(j.logger, "journal")
	return j, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Add stores entry and returns it with ID, timestamp and notes filled in.
func (j *Journal) Add(ctx context.Context, entry Entry) (Entry, error) {
	entry.ScientificName = strings.TrimSpace(entry.ScientificName)
	if entry.ScientificName == "" {
		return Entry{}, errors.New("journal entry requires a scientific name")
	}
	mode, err := ParseMode(string(entry.Mode))
	if err != nil {
		return Entry{}, err
	}
	entry.Mode = mode
	entry.VerifiedTraits = entry.VerifiedTraits.Normalize()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = j.now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	if strings.TrimSpace(entry.Notes) == "" {
		entry.Notes = DefaultNotes(entry)
	}

	var traitsJSON any
	if len(entry.VerifiedTraits) > 0 {
		data, err := json.Marshal(entry.VerifiedTraits)
		if err != nil {
			return Entry{}, fmt.Errorf("marshal verified traits: %w", err)
		}
		traitsJSON = string(data)
	}

	_, err = j.db.ExecContext(ctx,
		`INSERT INTO journal_entries (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.ScientificName,
		nullableString(entry.CommonName),
		nullableString(entry.Family),
		string(entry.Mode),
		entry.RawScore,
		entry.AdjustedScore,
		entry.VerifiedCount,
		traitsJSON,
		entry.Notes,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert journal entry: %w", err)
	}
	j.logger.Info("journal entry saved",
		logging.String("entry_id", entry.ID),
		logging.String(logging.FieldSpecies, entry.ScientificName),
		logging.String("mode", string(entry.Mode)))
	return entry, nil
}

// List returns entries newest first. A limit of zero or less returns all entries.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return entries, nil
}

// Get fetches one entry by ID.
func (j *Journal) Get(ctx context.Context, id string) (Entry, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// Delete removes one entry by ID.
func (j *Journal) Delete(ctx context.Context, id string) error {
	res, err := j.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete journal entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	j.logger.Info("journal entry removed", logging.String("entry_id", id))
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry      Entry
		mode       string
		commonName sql.NullString
		family     sql.NullString
		traitsJSON sql.NullString
		notes      sql.NullString
		createdAt  string
	)
	if err := row.Scan(
		&entry.ID,
		&entry.ScientificName,
		&commonName,
		&family,
		&mode,
		&entry.RawScore,
		&entry.AdjustedScore,
		&entry.VerifiedCount,
		&traitsJSON,
		&notes,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan journal entry: %w", err)
	}
	entry.Mode = Mode(mode)
	entry.CommonName = commonName.String
	entry.Family = family.String
	entry.Notes = notes.String
	if traitsJSON.Valid && traitsJSON.String != "" {
		var verified traits.Selection
		if err := json.Unmarshal([]byte(traitsJSON.String), &verified); err != nil {
			return Entry{}, fmt.Errorf("decode verified traits for %s: %w", entry.ID, err)
		}
		entry.VerifiedTraits = verified
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at for %s: %w", entry.ID, err)
	}
	entry.CreatedAt = ts
	return entry, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
