// Package dataset maps raw input tables onto pipeline records using
// configurable column names.
package dataset

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/fetcher"
	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/report"
)

// ErrMissingColumn is returned when a table lacks a column the loader needs.
var ErrMissingColumn = eris.New("dataset: missing column")

// InteractionColumns names the interaction export's columns.
type InteractionColumns struct {
	ID         string `yaml:"id" mapstructure:"id"`
	Timestamp  string `yaml:"timestamp" mapstructure:"timestamp"`
	Date       string `yaml:"date" mapstructure:"date"`
	Source     string `yaml:"source" mapstructure:"source"`
	Channel    string `yaml:"channel" mapstructure:"channel"`
	Phone      string `yaml:"phone" mapstructure:"phone"`
	Email      string `yaml:"email" mapstructure:"email"`
	CustomerID string `yaml:"customer_id" mapstructure:"customer_id"`
}

// CustomerColumns names the customer registry's columns. Phone and email
// slots are the columns named prefix+N, ordered by N.
type CustomerColumns struct {
	ID          string `yaml:"id" mapstructure:"id"`
	PhonePrefix string `yaml:"phone_prefix" mapstructure:"phone_prefix"`
	EmailPrefix string `yaml:"email_prefix" mapstructure:"email_prefix"`
}

// RevenueColumns names the revenue export's columns.
type RevenueColumns struct {
	CustomerID      string `yaml:"customer_id" mapstructure:"customer_id"`
	ServiceDate     string `yaml:"service_date" mapstructure:"service_date"`
	Net             string `yaml:"net" mapstructure:"net"`
	RevenueCenter   string `yaml:"revenue_center" mapstructure:"revenue_center"`
	ServiceCategory string `yaml:"service_category" mapstructure:"service_category"`
}

// Columns groups the column names of every input.
type Columns struct {
	Interactions InteractionColumns `yaml:"interactions" mapstructure:"interactions"`
	Customers    CustomerColumns    `yaml:"customers" mapstructure:"customers"`
	Revenue      RevenueColumns     `yaml:"revenue" mapstructure:"revenue"`
}

// DefaultColumns returns the column names of the standard exports.
func DefaultColumns() Columns {
	return Columns{
		Interactions: InteractionColumns{
			ID:         "id",
			Timestamp:  "called_at",
			Date:       "interaction_date",
			Source:     "source",
			Channel:    "channel",
			Phone:      "contact_number",
			Email:      "email",
			CustomerID: "customer_id",
		},
		Customers: CustomerColumns{
			ID:          "customer_id",
			PhonePrefix: "phone_",
			EmailPrefix: "email_",
		},
		Revenue: RevenueColumns{
			CustomerID:      "customer_id",
			ServiceDate:     "service_date",
			Net:             "net",
			RevenueCenter:   "revenue_center",
			ServiceCategory: "service_category",
		},
	}
}

// index resolves header names case-insensitively.
type index map[string]int

func newIndex(header []string) index {
	ix := make(index, len(header))
	for i, h := range header {
		k := strings.ToLower(strings.TrimSpace(h))
		if _, dup := ix[k]; !dup {
			ix[k] = i
		}
	}
	return ix
}

func (ix index) has(col string) bool {
	if col == "" {
		return false
	}
	_, ok := ix[strings.ToLower(col)]
	return ok
}

func (ix index) get(row []string, col string) string {
	if col == "" {
		return ""
	}
	i, ok := ix[strings.ToLower(col)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (ix index) require(table string, cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !ix.has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return eris.Wrapf(ErrMissingColumn, "%s: %s", table, strings.Join(missing, ", "))
	}
	return nil
}

// slots returns the header names prefix+N in N order, at most limit of them.
func (ix index) slots(prefix string, limit int) []string {
	if prefix == "" {
		return nil
	}
	prefix = strings.ToLower(prefix)
	type slot struct {
		n    int
		name string
	}
	var found []slot
	for name := range ix {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			continue
		}
		found = append(found, slot{n, name})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })
	out := make([]string, 0, min(len(found), limit))
	for _, s := range found {
		if len(out) == limit {
			zap.L().Warn("dataset: ignoring extra identifier column", zap.String("column", s.name), zap.Int("limit", limit))
			continue
		}
		out = append(out, s.name)
	}
	return out
}

// Interactions maps an interaction export. A date column (timestamp or
// fallback date) is required; rows without an ID column are numbered from 1.
func Interactions(t *fetcher.Table, cols InteractionColumns) ([]model.Interaction, error) {
	ix := newIndex(t.Header)
	if !ix.has(cols.Timestamp) && !ix.has(cols.Date) {
		return nil, eris.Wrapf(ErrMissingColumn, "interactions: %s or %s", cols.Timestamp, cols.Date)
	}
	if !ix.has(cols.Phone) && !ix.has(cols.Email) && !ix.has(cols.CustomerID) {
		zap.L().Warn("dataset: interactions carry no phone, email or customer ID column")
	}

	out := make([]model.Interaction, 0, len(t.Rows))
	for i, row := range t.Rows {
		id := ix.get(row, cols.ID)
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		out = append(out, model.Interaction{
			ID:         id,
			Timestamp:  ix.get(row, cols.Timestamp),
			Date:       ix.get(row, cols.Date),
			Source:     ix.get(row, cols.Source),
			Channel:    ix.get(row, cols.Channel),
			Phone:      ix.get(row, cols.Phone),
			Email:      ix.get(row, cols.Email),
			CustomerID: ix.get(row, cols.CustomerID),
		})
	}
	return out, nil
}

// Customers maps a customer registry. Rows without a customer ID are skipped.
func Customers(t *fetcher.Table, cols CustomerColumns) ([]model.Customer, error) {
	ix := newIndex(t.Header)
	if err := ix.require("customers", cols.ID); err != nil {
		return nil, err
	}
	phoneCols := ix.slots(cols.PhonePrefix, model.MaxPhoneSlots)
	emailCols := ix.slots(cols.EmailPrefix, model.MaxEmailSlots)

	out := make([]model.Customer, 0, len(t.Rows))
	var skipped int
	for _, row := range t.Rows {
		id := ix.get(row, cols.ID)
		if id == "" {
			skipped++
			continue
		}
		c := model.Customer{ID: id}
		for _, col := range phoneCols {
			c.Phones = append(c.Phones, ix.get(row, col))
		}
		for _, col := range emailCols {
			c.Emails = append(c.Emails, ix.get(row, col))
		}
		out = append(out, c)
	}
	if skipped > 0 {
		zap.L().Warn("dataset: skipped customers without an ID", zap.Int("rows", skipped))
	}
	return out, nil
}

// Revenue maps a revenue export. The result is never nil, so a supplied but
// empty export still counts as revenue data. Rows with an unparseable net
// amount are skipped.
func Revenue(t *fetcher.Table, cols RevenueColumns) ([]model.RevenueEvent, error) {
	ix := newIndex(t.Header)
	if err := ix.require("revenue", cols.CustomerID, cols.ServiceDate, cols.Net); err != nil {
		return nil, err
	}

	out := make([]model.RevenueEvent, 0, len(t.Rows))
	var skipped int
	for _, row := range t.Rows {
		net, err := ParseAmount(ix.get(row, cols.Net))
		if err != nil {
			skipped++
			continue
		}
		out = append(out, model.RevenueEvent{
			CustomerID:      ix.get(row, cols.CustomerID),
			ServiceDate:     ix.get(row, cols.ServiceDate),
			Net:             net,
			RevenueCenter:   ix.get(row, cols.RevenueCenter),
			ServiceCategory: ix.get(row, cols.ServiceCategory),
		})
	}
	if skipped > 0 {
		zap.L().Warn("dataset: skipped revenue rows with unparseable amounts", zap.Int("rows", skipped))
	}
	return out, nil
}

// Costs maps a channel cost table with columns channel, monthly_cost and
// optionally cost_per_interaction.
func Costs(t *fetcher.Table) ([]report.ChannelCost, error) {
	ix := newIndex(t.Header)
	if err := ix.require("costs", "channel", "monthly_cost"); err != nil {
		return nil, err
	}

	out := make([]report.ChannelCost, 0, len(t.Rows))
	for i, row := range t.Rows {
		monthly, err := ParseAmount(ix.get(row, "monthly_cost"))
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: costs row %d", i+1)
		}
		c := report.ChannelCost{Channel: ix.get(row, "channel"), MonthlyCost: monthly}
		if s := ix.get(row, "cost_per_interaction"); s != "" {
			if c.CostPerInteraction, err = ParseAmount(s); err != nil {
				return nil, eris.Wrapf(err, "dataset: costs row %d", i+1)
			}
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseAmount parses a money amount, tolerating a currency sign, thousands
// separators and accounting-style parentheses for negatives.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	if neg {
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "dataset: parse amount %q", s)
	}
	if neg {
		f = -f
	}
	return f, nil
}
