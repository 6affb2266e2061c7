package report

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/dateparse"
	"github.com/sells-group/attribution-cli/internal/model"
)

// FromTable builds a view from a previously exported result table. Header
// names are matched case-insensitively; unknown columns are ignored. Rows
// with an unparseable credit, or an unparseable interaction_date when that
// column is present, are skipped.
func FromTable(header []string, rows [][]string) (*View, error) {
	pos := make(map[string]int, len(header))
	var cols []string
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := pos[name]; dup {
			continue
		}
		pos[name] = i
		cols = append(cols, name)
	}

	v, err := NewView(nil, cols)
	if err != nil {
		return nil, eris.Wrap(err, "report: read table")
	}

	get := func(row []string, col string) string {
		i, ok := pos[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	num := func(row []string, col string) (float64, bool) {
		s := strings.TrimSpace(get(row, col))
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}

	_, hasDate := pos[ColInteractionDate]
	var skipped, badDates int
	for _, row := range rows {
		credit, ok := num(row, ColCredit)
		if !ok {
			skipped++
			continue
		}
		var date time.Time
		if hasDate {
			if date, ok = dateparse.Parse(get(row, ColInteractionDate)); !ok {
				badDates++
				continue
			}
		}
		r := model.CreditRecord{
			CustomerID:      get(row, ColCustomerID),
			InteractionID:   get(row, ColInteractionID),
			Channel:         get(row, ColChannel),
			Source:          get(row, ColSource),
			MatchMethod:     model.MatchMethod(get(row, ColMatchType)),
			Credit:          credit,
			InteractionDate: date,
		}
		r.RevenueAttributed, _ = num(row, ColRevenueAttributed)
		r.TotalRevenueAttributed, _ = num(row, ColTotalRevenueAttributed)
		v.records = append(v.records, r)
	}
	if skipped > 0 {
		zap.L().Warn("report: skipped rows with unparseable credit", zap.Int("rows", skipped))
	}
	if badDates > 0 {
		zap.L().Warn("report: skipped rows with unparseable interaction_date", zap.Int("rows", badDates))
	}
	return v, nil
}

// WriteCSV writes the table with a header row in canonical column order.
func (v *View) WriteCSV(w io.Writer) error {
	cols := v.Columns()
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return eris.Wrap(err, "report: write header")
	}
	row := make([]string, len(cols))
	for _, r := range v.records {
		for i, c := range cols {
			row[i] = cell(r, c)
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "report: write row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "report: flush")
}

func cell(r model.CreditRecord, col string) string {
	switch col {
	case ColCustomerID:
		return r.CustomerID
	case ColInteractionID:
		return r.InteractionID
	case ColInteractionDate:
		return dateparse.Format(r.InteractionDate)
	case ColChannel:
		return r.Channel
	case ColSource:
		return r.Source
	case ColMatchType:
		return string(r.MatchMethod)
	case ColCredit:
		return formatFloat(r.Credit)
	case ColRevenueAttributed:
		return formatFloat(r.RevenueAttributed)
	case ColTotalRevenueAttributed:
		return formatFloat(r.TotalRevenueAttributed)
	}
	return ""
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
