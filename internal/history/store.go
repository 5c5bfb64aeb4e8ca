// Package history persists benchmark run results to SQLite so runs
// can be compared over time.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const defaultLimit = 50

// DefaultSQLitePath is where run history lands when storage.path is
// not configured.
const DefaultSQLitePath = "data/hotpot-eval.db"

type Store struct {
	db *sql.DB
}

// Run is one evaluated benchmark batch.
type Run struct {
	ID         int64
	Dataset    string
	Model      string
	Queries    int
	ExactMatch float64
	F1         float64
	EvalDate   time.Time
}

func NewStore(dbPath string) (*Store, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, errors.New("history: empty db path")
	}

	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("history: create db dir: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: ping db: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("history: nil db")
	}

	stmts := []string{
		`PRAGMA journal_mode = WAL`,
		`CREATE TABLE IF NOT EXISTS benchmark_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			dataset TEXT NOT NULL,
			model TEXT NOT NULL,
			queries INTEGER NOT NULL,
			exact_match REAL NOT NULL,
			f1 REAL NOT NULL,
			eval_date INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_dataset ON benchmark_runs(dataset)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_eval_date ON benchmark_runs(eval_date)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("history: init schema: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts the run and fills in its ID.
func (s *Store) Save(ctx context.Context, run *Run) error {
	if s == nil || s.db == nil {
		return errors.New("history: nil store")
	}
	if ctx == nil {
		return errors.New("history: nil context")
	}
	if run == nil {
		return errors.New("history: nil run")
	}

	dataset := strings.TrimSpace(run.Dataset)
	if dataset == "" {
		return errors.New("history: empty dataset")
	}
	model := strings.TrimSpace(run.Model)
	if model == "" {
		model = "unknown"
	}

	when := run.EvalDate
	if when.IsZero() {
		when = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO benchmark_runs (dataset, model, queries, exact_match, f1, eval_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		dataset, model, run.Queries, run.ExactMatch, run.F1, when.Unix(),
	)
	if err != nil {
		return fmt.Errorf("history: save run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("history: last insert id: %w", err)
	}
	run.ID = id
	run.Dataset = dataset
	run.Model = model
	run.EvalDate = when
	return nil
}

// List returns the most recent runs, optionally filtered by dataset.
func (s *Store) List(ctx context.Context, dataset string, limit int) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history: nil store")
	}
	if ctx == nil {
		return nil, errors.New("history: nil context")
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT id, dataset, model, queries, exact_match, f1, eval_date
		FROM benchmark_runs`
	args := make([]any, 0, 2)

	dataset = strings.TrimSpace(dataset)
	if dataset != "" {
		query += ` WHERE dataset = ?`
		args = append(args, dataset)
	}
	query += ` ORDER BY eval_date DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var unix int64
		if err := rows.Scan(&r.ID, &r.Dataset, &r.Model, &r.Queries, &r.ExactMatch, &r.F1, &unix); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.EvalDate = time.Unix(unix, 0).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate runs: %w", err)
	}
	return out, nil
}
