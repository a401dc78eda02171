package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only decision journal record. Written only by the
// Forecast Planner; read back by the planner itself to build short-term
// context for the next cycle.
type Entry struct {
	ID             int64
	RunID          string
	Timestamp      time.Time
	Summary        string
	ActionsTaken   string
	RawResponse    string
	SensorSnapshot string
}

// Repository defines the interface for decision journal persistence.
// This abstraction allows different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Append inserts a new journal entry. The entry's RunID is
	// generated when empty.
	Append(ctx context.Context, entry *Entry) error

	// Recent returns the last n entries, oldest first, matching the
	// chronological order the planning prompt presents them in.
	Recent(ctx context.Context, n int) ([]Entry, error)
}

// entryColumns is the SELECT column list for journal queries.
const entryColumns = `id, run_id, timestamp, summary, actions_taken, raw_response, sensor_snapshot`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository and
// ensures the decisions table exists.
func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		return nil, err
	}
	return r, nil
}

// migrate creates the decisions table and its recency index.
func (r *SQLiteRepository) migrate() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		summary TEXT,
		actions_taken TEXT,
		raw_response TEXT,
		sensor_snapshot TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions(timestamp DESC);`

	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("creating decisions table: %w", err)
	}
	return nil
}

// Append inserts a new journal entry.
func (r *SQLiteRepository) Append(ctx context.Context, entry *Entry) error {
	if entry.RunID == "" {
		entry.RunID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	const query = `INSERT INTO decisions
		(run_id, timestamp, summary, actions_taken, raw_response, sensor_snapshot)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		entry.RunID,
		entry.Timestamp.Format(time.RFC3339),
		entry.Summary,
		entry.ActionsTaken,
		entry.RawResponse,
		entry.SensorSnapshot,
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}

	return nil
}

// Recent returns the last n entries, oldest first.
func (r *SQLiteRepository) Recent(ctx context.Context, n int) ([]Entry, error) {
	const query = `SELECT ` + entryColumns + ` FROM decisions ORDER BY id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("querying recent entries: %w", err)
	}
	defer rows.Close()

	var newestFirst []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &e.RunID, &ts, &e.Summary, &e.ActionsTaken, &e.RawResponse, &e.SensorSnapshot); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Timestamp = parsed
		}
		newestFirst = append(newestFirst, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal entries: %w", err)
	}

	// Reverse to oldest-first for prompt construction.
	entries := make([]Entry, len(newestFirst))
	for i, e := range newestFirst {
		entries[len(newestFirst)-1-i] = e
	}

	return entries, nil
}
