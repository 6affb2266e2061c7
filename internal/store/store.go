// Package store persists attribution runs and their credited touchpoints.
package store

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/attribution-cli/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for attribution runs. A run's
// credits become visible only together with its complete status; a failed
// run keeps none.
type Store interface {
	CreateRun(ctx context.Context, cfg model.Config) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, summary model.RunSummary, credits []model.CreditRecord) error
	FailRun(ctx context.Context, runID string, msg string) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	GetCredits(ctx context.Context, runID string) ([]model.CreditRecord, error)

	Migrate(ctx context.Context) error
	Close() error
}

// creditColumns is the column order shared by both backends.
var creditColumns = []string{
	"id", "run_id", "seq", "customer_id", "interaction_id", "interaction_date",
	"channel", "source", "match_type", "credit", "revenue_attributed", "total_revenue_attributed",
}

const defaultListLimit = 100

func listLimit(f RunFilter) int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

func notFound(runID string) error {
	return eris.Wrapf(ErrNotFound, "run %s", runID)
}

func joinColumns() string {
	return strings.Join(creditColumns, ", ")
}
