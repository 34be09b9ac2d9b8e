package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/landgrid/atlas-cli/internal/crosswalk"
	"github.com/landgrid/atlas-cli/internal/report"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS crosswalk (
	nation_id TEXT NOT NULL,
	unit_id   TEXT NOT NULL,
	weight    REAL NOT NULL,
	method    TEXT NOT NULL,
	PRIMARY KEY (nation_id, unit_id)
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	status      TEXT NOT NULL DEFAULT 'running',
	coverage    TEXT,
	started_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_crosswalk_nation ON crosswalk(nation_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCrosswalk replaces the cached crosswalk wholesale inside one
// transaction: a partially written cache would be worse than a stale one.
func (s *SQLiteStore) SaveCrosswalk(ctx context.Context, entries []crosswalk.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin crosswalk tx")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM crosswalk`); err != nil {
		return eris.Wrap(err, "sqlite: clear crosswalk")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO crosswalk (nation_id, unit_id, weight, method) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare crosswalk insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.NationID, e.UnitID, e.Weight, e.Method); err != nil {
			return eris.Wrapf(err, "sqlite: insert crosswalk entry %s/%s", e.NationID, e.UnitID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit crosswalk")
}

// LoadCrosswalk returns every cached entry ordered by nation then unit.
func (s *SQLiteStore) LoadCrosswalk(ctx context.Context) ([]crosswalk.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT nation_id, unit_id, weight, method FROM crosswalk ORDER BY nation_id, unit_id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query crosswalk")
	}
	defer func() { _ = rows.Close() }()

	var entries []crosswalk.Entry
	for rows.Next() {
		var e crosswalk.Entry
		if err := rows.Scan(&e.NationID, &e.UnitID, &e.Weight, &e.Method); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan crosswalk entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate crosswalk rows")
	}
	return entries, nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, status, started_at) VALUES (?, 'running', ?)`,
		runID, time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert run %s", runID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, cov report.Coverage) error {
	covJSON, err := json.Marshal(cov)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal coverage")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = 'complete', coverage = ?, finished_at = ? WHERE id = ?`,
		string(covJSON), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", runID)
	}
	return nil
}

// LatestCoverage returns the coverage report of the most recent completed
// run, or nil when no run has completed.
func (s *SQLiteStore) LatestCoverage(ctx context.Context) (*report.Coverage, error) {
	var covJSON sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT coverage FROM runs WHERE status = 'complete' ORDER BY finished_at DESC LIMIT 1`,
	).Scan(&covJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query latest coverage")
	}
	if !covJSON.Valid {
		return nil, nil
	}

	var cov report.Coverage
	if err := json.Unmarshal([]byte(covJSON.String), &cov); err != nil {
		return nil, eris.Wrap(err, "sqlite: decode coverage")
	}
	return &cov, nil
}
