package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/attribution-cli/internal/dateparse"
	"github.com/sells-group/attribution-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

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
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS attribution_runs (
	id         TEXT PRIMARY KEY,
	config     TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	summary    TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS attribution_credits (
	id                       TEXT PRIMARY KEY,
	run_id                   TEXT NOT NULL REFERENCES attribution_runs(id) ON DELETE CASCADE,
	seq                      INTEGER NOT NULL,
	customer_id              TEXT NOT NULL,
	interaction_id           TEXT NOT NULL,
	interaction_date         TEXT,
	channel                  TEXT NOT NULL,
	source                   TEXT NOT NULL DEFAULT '',
	match_type               TEXT NOT NULL DEFAULT '',
	credit                   REAL NOT NULL,
	revenue_attributed       REAL NOT NULL DEFAULT 0,
	total_revenue_attributed REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_attribution_runs_status ON attribution_runs(status);
CREATE INDEX IF NOT EXISTS idx_attribution_runs_created_at ON attribution_runs(created_at);
CREATE UNIQUE INDEX IF NOT EXISTS idx_attribution_credits_run_seq ON attribution_credits(run_id, seq);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, cfg model.Config) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal config")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO attribution_runs (id, config, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(cfgJSON), string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.Run{
		ID:        id,
		Config:    cfg,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, summary model.RunSummary, credits []model.CreditRecord) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin complete run")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE attribution_runs SET status = ?, summary = ?, error = NULL, updated_at = ? WHERE id = ? AND status = ?`,
		string(model.RunStatusComplete), string(summaryJSON), time.Now().UTC(), runID, string(model.RunStatusRunning),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	if err := checkRowsAffected(res, runID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO attribution_credits (`+joinColumns()+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare credit insert")
	}
	defer stmt.Close() //nolint:errcheck

	for i, c := range credits {
		if _, err := stmt.ExecContext(ctx,
			uuid.New().String(), runID, i, c.CustomerID, c.InteractionID, sqliteDate(c.InteractionDate),
			c.Channel, c.Source, string(c.MatchMethod), c.Credit, c.RevenueAttributed, c.TotalRevenueAttributed,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert credit %d of run %s", i, runID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit complete run")
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, msg string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin fail run")
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE attribution_runs SET status = ?, error = ?, summary = NULL, updated_at = ? WHERE id = ?`,
		string(model.RunStatusFailed), msg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	if err := checkRowsAffected(res, runID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM attribution_credits WHERE run_id = ?`, runID); err != nil {
		return eris.Wrapf(err, "sqlite: clear credits of run %s", runID)
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit fail run")
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, config, status, summary, error, created_at, updated_at FROM attribution_runs WHERE id = ?`,
		runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(runID)
	}
	return r, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, config, status, summary, error, created_at, updated_at FROM attribution_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, listLimit(filter))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) GetCredits(ctx context.Context, runID string) ([]model.CreditRecord, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT customer_id, interaction_id, interaction_date, channel, source, match_type, credit, revenue_attributed, total_revenue_attributed
		 FROM attribution_credits WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get credits of run %s", runID)
	}
	defer rows.Close() //nolint:errcheck

	var out []model.CreditRecord
	for rows.Next() {
		var (
			c    model.CreditRecord
			date sql.NullString
		)
		if err := rows.Scan(&c.CustomerID, &c.InteractionID, &date, &c.Channel, &c.Source, &c.MatchMethod,
			&c.Credit, &c.RevenueAttributed, &c.TotalRevenueAttributed); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan credit")
		}
		if date.Valid {
			c.InteractionDate, _ = dateparse.Parse(date.String)
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: get credits iterate")
}

// helpers

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return notFound(runID)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.Run, error) {
	var (
		r           model.Run
		cfgJSON     string
		summaryJSON sql.NullString
		errMsg      sql.NullString
	)

	err := row.Scan(&r.ID, &cfgJSON, &r.Status, &summaryJSON, &errMsg, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	if err := json.Unmarshal([]byte(cfgJSON), &r.Config); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal config")
	}
	if summaryJSON.Valid {
		r.Summary = &model.RunSummary{}
		if err := json.Unmarshal([]byte(summaryJSON.String), r.Summary); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal summary")
		}
	}
	r.Error = errMsg.String
	return &r, nil
}

// sqliteDate stores interaction dates as ISO text; the zero date is NULL.
func sqliteDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return dateparse.Format(t)
}
