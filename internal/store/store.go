package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite persistence layer for resolve runs: the canonical
// tree each run produced, its diagnostics, and the input hash used to
// reuse a run when nothing changed.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if needed) the run database at dbPath, in WAL
// mode with foreign keys enforced. The parent directory is created too.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the handle for ad-hoc queries in tests and tools.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the run tables and their indexes if missing.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
  id              TEXT PRIMARY KEY,
  module          TEXT NOT NULL,
  input_hash      TEXT NOT NULL,
  implicit_export INTEGER NOT NULL DEFAULT 0,
  created_at      TIMESTAMP NOT NULL,
  error_count     INTEGER NOT NULL DEFAULT 0,
  warning_count   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS files (
  id              INTEGER PRIMARY KEY,
  run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  path            TEXT NOT NULL,
  ordinal         INTEGER NOT NULL,
  hash            TEXT,
  UNIQUE(run_id, path)
);

CREATE TABLE IF NOT EXISTS declarations (
  id              INTEGER PRIMARY KEY,
  run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  decl_id         INTEGER NOT NULL,
  parent_id       INTEGER NOT NULL,
  qname           TEXT NOT NULL,
  overload_key    TEXT NOT NULL,
  kind            TEXT NOT NULL,
  name            TEXT NOT NULL,
  flags           TEXT,
  doc             TEXT,
  file            TEXT NOT NULL,
  loc_file        TEXT,
  line            INTEGER,
  col             INTEGER,
  payload         TEXT,
  signature_hash  TEXT NOT NULL,
  UNIQUE(run_id, decl_id)
);

CREATE TABLE IF NOT EXISTS diagnostics (
  id              INTEGER PRIMARY KEY,
  run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  ordinal         INTEGER NOT NULL,
  kind            TEXT NOT NULL,
  severity        TEXT NOT NULL,
  name            TEXT,
  message         TEXT NOT NULL,
  file            TEXT,
  line            INTEGER,
  col             INTEGER,
  related         TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_input_hash ON runs(input_hash);
CREATE INDEX IF NOT EXISTS idx_files_run ON files(run_id);
CREATE INDEX IF NOT EXISTS idx_declarations_run ON declarations(run_id);
CREATE INDEX IF NOT EXISTS idx_declarations_qname ON declarations(run_id, qname);
CREATE INDEX IF NOT EXISTS idx_diagnostics_run ON diagnostics(run_id);
`
