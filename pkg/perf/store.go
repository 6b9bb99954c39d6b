package perf

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/inferkit/smc-go/pkg/errors"
)

// SQLiteStore persists performance tables to a SQLite database, one row per
// performance record. Experiment parameters are stored as a JSON object
// keyed by field name, since their layout varies per model.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.Mutex
	path string

	initialized sync.Once
}

// NewSQLiteStore opens (or creates) the database at path. Use ":memory:"
// for an in-memory store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.StorageFailed, "failed to open SQLite database"),
			errors.Fields{"path": path},
		)
	}

	store := &SQLiteStore{
		db:   db,
		path: path,
	}
	if err := store.ensureInitialized(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureInitialized() error {
	var initErr error
	s.initialized.Do(func() {
		// Enable WAL mode for better concurrency
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to enable WAL mode")
			return
		}

		query := `
        CREATE TABLE IF NOT EXISTS performance (
            trial_id       TEXT NOT NULL,
            experiment     INTEGER NOT NULL,
            loss           REAL NOT NULL,
            resample_count INTEGER NOT NULL,
            elapsed_time   REAL NOT NULL,
            outcome        INTEGER NOT NULL,
            expparams      TEXT NOT NULL,
            created_at     DATETIME DEFAULT CURRENT_TIMESTAMP,
            PRIMARY KEY (trial_id, experiment)
        );

        CREATE INDEX IF NOT EXISTS idx_performance_trial
        ON performance(trial_id);
        `

		if _, err := s.db.Exec(query); err != nil {
			initErr = errors.Wrap(err, errors.StorageFailed, "failed to initialize database")
			return
		}
	})
	return initErr
}

// SaveTable writes every record of the table in one transaction.
func (s *SQLiteStore) SaveTable(ctx context.Context, t *Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to begin transaction")
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO performance
            (trial_id, experiment, loss, resample_count, elapsed_time, outcome, expparams)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, errors.StorageFailed, "failed to prepare insert")
	}
	defer stmt.Close()

	for idx, rec := range t.Records {
		fields := make(map[string]float64, len(t.Schema))
		for _, f := range t.Schema {
			v, _ := rec.ExpParams.Get(f.Name)
			fields[f.Name] = v
		}
		blob, err := json.Marshal(fields)
		if err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, errors.StorageFailed, "failed to marshal experiment parameters")
		}

		if _, err := stmt.ExecContext(ctx,
			t.ID.String(), idx, rec.Loss, rec.ResampleCount,
			rec.ElapsedTime, rec.Outcome, string(blob),
		); err != nil {
			_ = tx.Rollback()
			return errors.WithFields(
				errors.Wrap(err, errors.StorageFailed, "failed to insert performance record"),
				errors.Fields{"trial_id": t.ID.String(), "experiment": idx},
			)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to commit performance records")
	}
	return nil
}

// SaveTables writes several tables, stopping at the first failure.
func (s *SQLiteStore) SaveTables(ctx context.Context, tables []*Table) error {
	for _, t := range tables {
		if err := s.SaveTable(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// LoadLosses returns the per-experiment loss sequence of a stored trial.
func (s *SQLiteStore) LoadLosses(ctx context.Context, trialID string) ([]float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT loss FROM performance WHERE trial_id = ? ORDER BY experiment`, trialID)
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to query losses")
	}
	defer rows.Close()

	var losses []float64
	for rows.Next() {
		var loss float64
		if err := rows.Scan(&loss); err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "failed to scan loss")
		}
		losses = append(losses, loss)
	}
	return losses, rows.Err()
}

// CountRecords returns the number of stored records across all trials.
func (s *SQLiteStore) CountRecords(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM performance`).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, errors.StorageFailed, "failed to count records")
	}
	return count, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
