// Package storage archives evolution reports so finished runs can be
// inspected and compared later.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/XiaoConstantine/evolve-go/pkg/errors"
	"github.com/XiaoConstantine/evolve-go/pkg/evolution"
	"github.com/XiaoConstantine/evolve-go/pkg/logging"
)

// SQLiteReportStore persists evolution reports in a SQLite database, one row
// per run keyed by run ID.
type SQLiteReportStore struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	initialized sync.Once
}

// NewSQLiteReportStore opens (or creates) a report archive at path. The path
// ":memory:" creates an in-memory database.
func NewSQLiteReportStore(path string) (*SQLiteReportStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to open SQLite database"),
			errors.Fields{"path": path},
		)
	}

	store := &SQLiteReportStore{
		db:   db,
		path: path,
	}
	if err := store.ensureInitialized(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteReportStore) ensureInitialized() error {
	var initErr error
	s.initialized.Do(func() {
		// WAL mode for better concurrency
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to enable WAL mode")
			return
		}

		query := `
        CREATE TABLE IF NOT EXISTS evolution_reports (
            run_id TEXT PRIMARY KEY,
            report TEXT NOT NULL,
            created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
            updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
        );

        CREATE INDEX IF NOT EXISTS idx_evolution_reports_created_at
        ON evolution_reports(created_at);
        `

		if _, err := s.db.Exec(query); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to initialize database")
			return
		}
	})
	return initErr
}

// Save upserts a report under its run ID.
func (s *SQLiteReportStore) Save(report *evolution.Report) error {
	if report == nil || report.Summary.RunID == "" {
		return errors.New(errors.InvalidInput, "report must carry a run ID")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to marshal report"),
			errors.Fields{"run_id": report.Summary.RunID},
		)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to begin transaction")
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			logging.GetLogger().Error(context.Background(), "failed to rollback transaction: %v", err)
		}
	}()

	query := `
    INSERT INTO evolution_reports (run_id, report, updated_at)
    VALUES (?, ?, CURRENT_TIMESTAMP)
    ON CONFLICT(run_id) DO UPDATE SET
        report = excluded.report,
        updated_at = CURRENT_TIMESTAMP
    `

	if _, err := tx.Exec(query, report.Summary.RunID, string(data)); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to store report"),
			errors.Fields{"run_id": report.Summary.RunID},
		)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to commit transaction")
	}
	return nil
}

// Get retrieves the report for a run ID.
func (s *SQLiteReportStore) Get(runID string) (*evolution.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRow(
		"SELECT report FROM evolution_reports WHERE run_id = ?", runID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, errors.WithFields(
			errors.New(errors.ResourceNotFound, "report not found"),
			errors.Fields{"run_id": runID},
		)
	}
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to query report"),
			errors.Fields{"run_id": runID},
		)
	}

	var report evolution.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to unmarshal stored report"),
			errors.Fields{"run_id": runID},
		)
	}
	return &report, nil
}

// List returns all archived run IDs, most recent first.
func (s *SQLiteReportStore) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT run_id FROM evolution_reports ORDER BY created_at DESC, run_id")
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to list reports")
	}
	defer rows.Close()

	var runIDs []string
	for rows.Next() {
		var runID string
		if err := rows.Scan(&runID); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "failed to scan run ID")
		}
		runIDs = append(runIDs, runID)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to iterate reports")
	}
	return runIDs, nil
}

// Delete removes the report for a run ID. Deleting an absent run is not an
// error.
func (s *SQLiteReportStore) Delete(runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(
		"DELETE FROM evolution_reports WHERE run_id = ?", runID); err != nil {
		return errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to delete report"),
			errors.Fields{"run_id": runID},
		)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteReportStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to close database")
	}
	return nil
}
