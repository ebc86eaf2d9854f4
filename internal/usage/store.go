package usage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// MaxRecords is the number of records retained by the store.
const MaxRecords = 100

const schema = `
CREATE TABLE IF NOT EXISTS usage_records (
    seq               INTEGER PRIMARY KEY AUTOINCREMENT,
    id                TEXT NOT NULL UNIQUE,
    recorded_at       TEXT NOT NULL,
    provider          TEXT NOT NULL DEFAULT '',
    model             TEXT NOT NULL DEFAULT '',
    kind              TEXT NOT NULL DEFAULT '',
    prompt_tokens     INTEGER NOT NULL DEFAULT 0,
    completion_tokens INTEGER NOT NULL DEFAULT 0,
    total_tokens      INTEGER NOT NULL DEFAULT 0,
    latency_seconds   REAL NOT NULL DEFAULT 0,
    cost              REAL NOT NULL DEFAULT 0
);
`

// Store provides SQLite-backed storage for the most recent usage records.
//
// The database file is shared by every invocation of the tool. There is no
// locking beyond SQLite's own: concurrent writers race on the truncation
// window and the last one wins.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the usage database at dbPath and runs migrations.
func OpenStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create usage dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open usage db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Append stores a record and evicts everything older than the most recent
// MaxRecords, in one transaction.
func (s *Store) Append(ctx context.Context, r Record) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	if r.TotalTokens == 0 {
		r.TotalTokens = r.PromptTokens + r.CompletionTokens
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO usage_records (
			id, recorded_at, provider, model, kind,
			prompt_tokens, completion_tokens, total_tokens,
			latency_seconds, cost
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Timestamp.UTC().Format(time.RFC3339Nano), r.Provider, r.Model, r.Kind,
		r.PromptTokens, r.CompletionTokens, r.TotalTokens,
		r.LatencySeconds, r.Cost,
	); err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM usage_records
		WHERE seq NOT IN (
			SELECT seq FROM usage_records ORDER BY seq DESC LIMIT ?
		)`, MaxRecords); err != nil {
		return fmt.Errorf("truncate usage records: %w", err)
	}

	return tx.Commit()
}

// ReadAll returns the retained records, oldest first. An empty store yields
// an empty slice.
func (s *Store) ReadAll(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, recorded_at, provider, model, kind,
		       prompt_tokens, completion_tokens, total_tokens,
		       latency_seconds, cost
		FROM usage_records
		ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query usage records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var r Record
		var recordedAt string
		if err := rows.Scan(
			&r.ID, &recordedAt, &r.Provider, &r.Model, &r.Kind,
			&r.PromptTokens, &r.CompletionTokens, &r.TotalTokens,
			&r.LatencySeconds, &r.Cost,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			r.Timestamp = t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Aggregate summarizes the retained records.
func (s *Store) Aggregate(ctx context.Context) (Aggregate, error) {
	records, err := s.ReadAll(ctx)
	if err != nil {
		return Aggregate{}, err
	}
	return Summarize(records), nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
