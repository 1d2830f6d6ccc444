package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS interactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    session_id TEXT NOT NULL,
    channel TEXT NOT NULL DEFAULT '',
    user_message TEXT NOT NULL,
    assistant_response TEXT NOT NULL,
    rule TEXT NOT NULL DEFAULT '',
    source TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_interactions_timestamp ON interactions(timestamp);
CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions(session_id);
`

// SQLRecorder stores events in SQLite.
type SQLRecorder struct {
	db *sql.DB
}

// OpenSQLite creates or opens the transcript database at path.
func OpenSQLite(path string) (*SQLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return newSQLRecorder(db)
}

// OpenSQLiteMemory creates an in-memory database (useful for testing).
func OpenSQLiteMemory() (*SQLRecorder, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("opening in-memory database: %w", err)
	}
	// every connection to :memory: is a separate database
	db.SetMaxOpenConns(1)
	return newSQLRecorder(db)
}

func newSQLRecorder(db *sql.DB) (*SQLRecorder, error) {
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &SQLRecorder{db: db}, nil
}

func (r *SQLRecorder) AppendInteraction(ev Event) error {
	_, err := r.db.Exec(
		`INSERT INTO interactions (timestamp, session_id, channel, user_message, assistant_response, rule, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.Timestamp.UTC().Format(time.RFC3339Nano), ev.SessionID, ev.Channel,
		ev.UserMessage, ev.AssistantResponse, ev.Rule, ev.Source,
	)
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

func (r *SQLRecorder) LoadInteractions() ([]Event, error) {
	rows, err := r.db.Query(
		`SELECT timestamp, session_id, channel, user_message, assistant_response, rule, source
		 FROM interactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var ts string
		if err := rows.Scan(&ts, &ev.SessionID, &ev.Channel, &ev.UserMessage, &ev.AssistantResponse, &ev.Rule, &ev.Source); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		ev.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (r *SQLRecorder) Close() error {
	return r.db.Close()
}
