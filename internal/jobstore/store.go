// Package jobstore implements the Job Lifecycle Store: a durable,
// SQLite-backed per-job document plus normalized child tables for
// queryability, adapted from the teacher's mutex-guarded *sql.DB wrapper.
package jobstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"jobcore/internal/logging"
)

// Store wraps a single sqlite database. Every write path is serialized by
// mu; reads use RLock so concurrent polling never blocks on itself.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewStore opens (creating if absent) the jobcore sqlite database at
// dbPath and applies the schema migration.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("jobstore: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("jobstore: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, dbPath: dbPath}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("jobstore: migrate: %w", err)
	}
	logging.Job("opened job store at %s", dbPath)
	return store, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the sqlite file path this Store was opened with.
func (s *Store) Path() string {
	return s.dbPath
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	job_id TEXT PRIMARY KEY,
	draft_json TEXT NOT NULL,
	refined_json TEXT,
	refinement_summary TEXT,
	refinement_metadata_json TEXT,
	refinement_failure_json TEXT,
	finalization_source TEXT,
	finalized_draft_json TEXT,
	finalized_at DATETIME,
	channels_updated_at DATETIME,
	channels_failure_json TEXT,
	asset_run_status TEXT,
	asset_run_planned_count INTEGER NOT NULL DEFAULT 0,
	asset_run_completed_count INTEGER NOT NULL DEFAULT 0,
	asset_run_error TEXT,
	hero_image_json TEXT,
	video_json TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS channel_recommendations (
	job_id TEXT NOT NULL REFERENCES jobs(job_id),
	position INTEGER NOT NULL,
	channel TEXT NOT NULL,
	reason TEXT NOT NULL,
	expected_cpa REAL,
	PRIMARY KEY (job_id, channel)
);
CREATE INDEX IF NOT EXISTS idx_channel_recs_job ON channel_recommendations(job_id, position);

CREATE TABLE IF NOT EXISTS assets (
	job_id TEXT NOT NULL REFERENCES jobs(job_id),
	asset_id TEXT NOT NULL,
	format_id TEXT NOT NULL,
	channel_id TEXT NOT NULL,
	status TEXT NOT NULL,
	content_json TEXT,
	logo_url TEXT,
	updated_at DATETIME NOT NULL,
	PRIMARY KEY (job_id, asset_id)
);
CREATE INDEX IF NOT EXISTS idx_assets_job ON assets(job_id);

CREATE TABLE IF NOT EXISTS copilot_messages (
	job_id TEXT NOT NULL REFERENCES jobs(job_id),
	message_id TEXT NOT NULL,
	client_message_id TEXT,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	metadata_json TEXT,
	created_at DATETIME NOT NULL,
	PRIMARY KEY (job_id, message_id)
);
CREATE INDEX IF NOT EXISTS idx_copilot_job_created ON copilot_messages(job_id, created_at);
CREATE INDEX IF NOT EXISTS idx_copilot_client_msg ON copilot_messages(job_id, client_message_id);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

// errInvariant marks a violation that should abort the run rather than be
// retried (spec §7 "Internal invariants").
type errInvariant struct {
	reason  string
	message string
}

func (e *errInvariant) Error() string {
	return fmt.Sprintf("jobstore: internal invariant violated (%s): %s", e.reason, e.message)
}

func newInvariantError(reason, message string) error {
	return &errInvariant{reason: reason, message: message}
}
