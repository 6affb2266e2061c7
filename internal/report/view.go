// Package report aggregates attributed touchpoints into channel, customer and
// first/last-touch summaries.
package report

import (
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/attribution-cli/internal/model"
)

// Column names of the attributed-touchpoint table.
const (
	ColCustomerID             = "customer_id"
	ColInteractionID          = "interaction_id"
	ColInteractionDate        = "interaction_date"
	ColChannel                = "channel"
	ColSource                 = "source"
	ColMatchType              = "match_type"
	ColCredit                 = "credit"
	ColRevenueAttributed      = "revenue_attributed"
	ColTotalRevenueAttributed = "total_revenue_attributed"
)

// RequiredColumns must be present for a view to be constructed.
var RequiredColumns = []string{ColCustomerID, ColChannel, ColCredit}

var (
	// ErrMissingColumns is returned when a table lacks a required column.
	ErrMissingColumns = eris.New("missing required columns")

	// ErrNoDateColumn is returned by date-based operations on a table without
	// interaction dates.
	ErrNoDateColumn = eris.New("table must have an interaction_date column")
)

// View is a read-only view over attributed touchpoints.
type View struct {
	records []model.CreditRecord
	columns map[string]bool
}

// NewView builds a view over records carrying the given columns. It fails
// when a required column is absent.
func NewView(records []model.CreditRecord, columns []string) (*View, error) {
	cols := make(map[string]bool, len(columns))
	for _, c := range columns {
		cols[c] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !cols[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, eris.Wrapf(ErrMissingColumns, "%v", missing)
	}
	return &View{records: records, columns: cols}, nil
}

// FromRecords builds a view over engine output, which always carries the
// full schema. Revenue columns are included when withRevenue is set.
func FromRecords(records []model.CreditRecord, withRevenue bool) *View {
	cols := []string{ColCustomerID, ColInteractionID, ColInteractionDate, ColChannel, ColSource, ColMatchType, ColCredit}
	if withRevenue {
		cols = append(cols, ColRevenueAttributed, ColTotalRevenueAttributed)
	}
	v, _ := NewView(records, cols)
	return v
}

// Empty returns a view with the full schema and no rows.
func Empty(withRevenue bool) *View {
	return FromRecords(nil, withRevenue)
}

// HasColumn reports whether the table carries the named column.
func (v *View) HasColumn(name string) bool { return v.columns[name] }

// Columns returns the table's columns in canonical order.
func (v *View) Columns() []string {
	var out []string
	for _, c := range allColumns {
		if v.columns[c] {
			out = append(out, c)
		}
	}
	return out
}

var allColumns = []string{
	ColCustomerID, ColInteractionID, ColInteractionDate, ColChannel, ColSource,
	ColMatchType, ColCredit, ColRevenueAttributed, ColTotalRevenueAttributed,
}

// Len returns the number of touchpoints.
func (v *View) Len() int { return len(v.records) }

// Records returns a copy of the touchpoints.
func (v *View) Records() []model.CreditRecord {
	out := make([]model.CreditRecord, len(v.records))
	copy(out, v.records)
	return out
}

// TotalCredit sums credit over all touchpoints.
func (v *View) TotalCredit() float64 {
	var sum float64
	for _, r := range v.records {
		sum += r.Credit
	}
	return sum
}

// TotalRevenue sums attributed first-paid revenue over all touchpoints.
func (v *View) TotalRevenue() float64 {
	var sum float64
	for _, r := range v.records {
		sum += r.RevenueAttributed
	}
	return sum
}

// UniqueCustomers counts distinct customers.
func (v *View) UniqueCustomers() int {
	return countDistinct(v.records, func(r model.CreditRecord) string { return r.CustomerID })
}

// UniqueChannels counts distinct channels.
func (v *View) UniqueChannels() int {
	return countDistinct(v.records, func(r model.CreditRecord) string { return r.Channel })
}

func countDistinct(records []model.CreditRecord, key func(model.CreditRecord) string) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		seen[key(r)] = struct{}{}
	}
	return len(seen)
}

// FilterByDateRange returns a new view restricted to touchpoints dated within
// [start, end], inclusive.
func (v *View) FilterByDateRange(start, end time.Time) (*View, error) {
	if !v.columns[ColInteractionDate] {
		return nil, ErrNoDateColumn
	}
	var out []model.CreditRecord
	for _, r := range v.records {
		if r.InteractionDate.Before(start) || r.InteractionDate.After(end) {
			continue
		}
		out = append(out, r)
	}
	return &View{records: out, columns: v.columns}, nil
}

// ChannelSummary is one row of the channel report.
type ChannelSummary struct {
	Channel               string  `json:"channel"`
	TotalCredit           float64 `json:"total_credit"`
	CustomerCount         int     `json:"customer_count"`
	TotalRevenue          float64 `json:"total_revenue"`
	AvgRevenuePerCustomer float64 `json:"avg_revenue_per_customer"`
}

// ByChannel sums credit and revenue per channel and counts distinct
// customers, sorted by total revenue descending (ties by channel name).
func (v *View) ByChannel() []ChannelSummary {
	idx := make(map[string]int)
	customers := make(map[string]map[string]struct{})
	var out []ChannelSummary
	for _, r := range v.records {
		i, ok := idx[r.Channel]
		if !ok {
			i = len(out)
			idx[r.Channel] = i
			out = append(out, ChannelSummary{Channel: r.Channel})
			customers[r.Channel] = make(map[string]struct{})
		}
		out[i].TotalCredit += r.Credit
		out[i].TotalRevenue += r.RevenueAttributed
		customers[r.Channel][r.CustomerID] = struct{}{}
	}
	for i := range out {
		out[i].CustomerCount = len(customers[out[i].Channel])
		if out[i].CustomerCount > 0 {
			out[i].AvgRevenuePerCustomer = out[i].TotalRevenue / float64(out[i].CustomerCount)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}

// CustomerRow is one customer's credit by channel. Credits align with
// CustomerTable.Channels.
type CustomerRow struct {
	CustomerID   string    `json:"customer_id"`
	Credits      []float64 `json:"credits"`
	TotalRevenue float64   `json:"total_revenue,omitempty"`
}

// CustomerTable is the wide per-customer layout.
type CustomerTable struct {
	Channels   []string      `json:"channels"`
	HasRevenue bool          `json:"has_revenue"`
	Rows       []CustomerRow `json:"rows"`
}

// ByCustomer pivots credit into one row per customer and one column per
// channel, sorted by customer ID and channel name. Missing cells are 0.
func (v *View) ByCustomer() CustomerTable {
	chanSet := make(map[string]struct{})
	credit := make(map[string]map[string]float64)
	revenue := make(map[string]float64)
	for _, r := range v.records {
		chanSet[r.Channel] = struct{}{}
		if credit[r.CustomerID] == nil {
			credit[r.CustomerID] = make(map[string]float64)
		}
		credit[r.CustomerID][r.Channel] += r.Credit
		revenue[r.CustomerID] += r.RevenueAttributed
	}

	t := CustomerTable{HasRevenue: v.columns[ColRevenueAttributed]}
	t.Channels = sortedKeys(chanSet)
	for _, id := range sortedKeys(credit) {
		row := CustomerRow{CustomerID: id, Credits: make([]float64, len(t.Channels))}
		for i, ch := range t.Channels {
			row.Credits[i] = credit[id][ch]
		}
		if t.HasRevenue {
			row.TotalRevenue = revenue[id]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// TouchSummary is one row of a first- or last-touch report.
type TouchSummary struct {
	Channel   string  `json:"channel"`
	Credit    float64 `json:"credit"`
	Customers int     `json:"customers"`
}

// FirstTouch keeps each customer's earliest touchpoint and aggregates credit
// and customer count by channel. Same-day ties go to the earlier row.
func (v *View) FirstTouch() ([]TouchSummary, error) {
	return v.touch(false)
}

// LastTouch keeps each customer's latest touchpoint and aggregates credit
// and customer count by channel. Same-day ties go to the later row.
func (v *View) LastTouch() ([]TouchSummary, error) {
	return v.touch(true)
}

func (v *View) touch(last bool) ([]TouchSummary, error) {
	if !v.columns[ColInteractionDate] {
		return nil, ErrNoDateColumn
	}

	sorted := v.Records()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].InteractionDate.Before(sorted[j].InteractionDate)
	})

	pick := make(map[string]model.CreditRecord)
	for _, r := range sorted {
		if _, seen := pick[r.CustomerID]; seen && !last {
			continue
		}
		pick[r.CustomerID] = r
	}

	agg := make(map[string]*TouchSummary)
	for _, id := range sortedKeys(pick) {
		r := pick[id]
		ts, ok := agg[r.Channel]
		if !ok {
			ts = &TouchSummary{Channel: r.Channel}
			agg[r.Channel] = ts
		}
		ts.Credit += r.Credit
		ts.Customers++
	}

	out := make([]TouchSummary, 0, len(agg))
	for _, ch := range sortedKeys(agg) {
		out = append(out, *agg[ch])
	}
	return out, nil
}
