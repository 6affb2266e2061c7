package model

import "time"

// RunStatus represents the current state of an attribution run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one persisted invocation of the attribution engine.
type Run struct {
	ID        string      `json:"id"`
	Config    Config      `json:"config"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// RunSummary holds the headline numbers of a completed run.
type RunSummary struct {
	Interactions int        `json:"interactions"`
	Customers    int        `json:"customers"`
	RevenueRows  int        `json:"revenue_rows"`
	Matches      MatchStats `json:"matches"`
	Touchpoints  int        `json:"touchpoints"`
	Attributed   int        `json:"attributed_customers"`
	Channels     int        `json:"channels"`
	TotalCredit  float64    `json:"total_credit"`
	TotalRevenue float64    `json:"total_revenue"`
	HasRevenue   bool       `json:"has_revenue"` // revenue data was supplied, so revenue columns are meaningful
}
