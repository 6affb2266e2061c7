package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/attribution-cli/internal/dateparse"
	"github.com/sells-group/attribution-cli/internal/db"
	"github.com/sells-group/attribution-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, opts db.PoolOptions) (*PostgresStore, error) {
	if opts.MaxConns == 0 {
		opts.MaxConns = 10
	}
	if opts.MinConns == 0 {
		opts.MinConns = 2
	}
	pool, err := db.Connect(ctx, connString, opts)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS attribution_runs (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	config     JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	summary    JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS attribution_credits (
	id                       TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id                   TEXT NOT NULL REFERENCES attribution_runs(id) ON DELETE CASCADE,
	seq                      INTEGER NOT NULL,
	customer_id              TEXT NOT NULL,
	interaction_id           TEXT NOT NULL,
	interaction_date         DATE,
	channel                  TEXT NOT NULL,
	source                   TEXT NOT NULL DEFAULT '',
	match_type               TEXT NOT NULL DEFAULT '',
	credit                   DOUBLE PRECISION NOT NULL,
	revenue_attributed       DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_revenue_attributed DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_attribution_runs_status ON attribution_runs(status);
CREATE INDEX IF NOT EXISTS idx_attribution_runs_created_at ON attribution_runs(created_at DESC);
CREATE UNIQUE INDEX IF NOT EXISTS idx_attribution_credits_run_seq ON attribution_credits(run_id, seq);
CREATE INDEX IF NOT EXISTS idx_attribution_credits_channel ON attribution_credits(run_id, channel);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, cfg model.Config) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal config")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO attribution_runs (id, config, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, cfgJSON, string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.Run{
		ID:        id,
		Config:    cfg,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, summary model.RunSummary, credits []model.CreditRecord) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin complete run")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`UPDATE attribution_runs SET status = $1, summary = $2, error = NULL, updated_at = $3 WHERE id = $4 AND status = $5`,
		string(model.RunStatusComplete), summaryJSON, time.Now().UTC(), runID, string(model.RunStatusRunning),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return notFound(runID)
	}

	rows := make([][]any, len(credits))
	for i, c := range credits {
		rows[i] = []any{
			uuid.New().String(), runID, int32(i), c.CustomerID, c.InteractionID, pgDate(c.InteractionDate),
			c.Channel, c.Source, string(c.MatchMethod), c.Credit, c.RevenueAttributed, c.TotalRevenueAttributed,
		}
	}
	if _, err := db.CopyFrom(ctx, tx, "attribution_credits", creditColumns, rows); err != nil {
		return eris.Wrapf(err, "postgres: copy credits of run %s", runID)
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit complete run")
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, msg string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin fail run")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx,
		`UPDATE attribution_runs SET status = $1, error = $2, summary = NULL, updated_at = $3 WHERE id = $4`,
		string(model.RunStatusFailed), msg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return notFound(runID)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM attribution_credits WHERE run_id = $1`, runID); err != nil {
		return eris.Wrapf(err, "postgres: clear credits of run %s", runID)
	}
	return eris.Wrap(tx.Commit(ctx), "postgres: commit fail run")
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, config, status, summary, COALESCE(error, ''), created_at, updated_at FROM attribution_runs WHERE id = $1`,
		runID,
	)
	r, err := scanPgRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(runID)
	}
	return r, err
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, config, status, summary, COALESCE(error, ''), created_at, updated_at FROM attribution_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	args = append(args, listLimit(filter), filter.Offset)
	query += ` ORDER BY created_at DESC, id LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) GetCredits(ctx context.Context, runID string) ([]model.CreditRecord, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT customer_id, interaction_id, COALESCE(to_char(interaction_date, 'YYYY-MM-DD'), ''), channel, source, match_type, credit, revenue_attributed, total_revenue_attributed
		 FROM attribution_credits WHERE run_id = $1 ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get credits of run %s", runID)
	}
	defer rows.Close()

	var out []model.CreditRecord
	for rows.Next() {
		var (
			c      model.CreditRecord
			date   string
			method string
		)
		if err := rows.Scan(&c.CustomerID, &c.InteractionID, &date, &c.Channel, &c.Source, &method,
			&c.Credit, &c.RevenueAttributed, &c.TotalRevenueAttributed); err != nil {
			return nil, eris.Wrap(err, "postgres: scan credit")
		}
		c.InteractionDate, _ = dateparse.Parse(date)
		c.MatchMethod = model.MatchMethod(method)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: get credits iterate")
}

func scanPgRun(row pgx.Row) (*model.Run, error) {
	var (
		r           model.Run
		status      string
		cfgJSON     []byte
		summaryJSON []byte
	)

	err := row.Scan(&r.ID, &cfgJSON, &status, &summaryJSON, &r.Error, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}

	r.Status = model.RunStatus(status)
	if err := json.Unmarshal(cfgJSON, &r.Config); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal config")
	}
	if len(summaryJSON) > 0 {
		r.Summary = &model.RunSummary{}
		if err := json.Unmarshal(summaryJSON, r.Summary); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal summary")
		}
	}
	return &r, nil
}

func pgDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
