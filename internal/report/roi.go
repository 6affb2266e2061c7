package report

import "sort"

// ChannelCost is the marketing spend for one channel.
type ChannelCost struct {
	Channel            string  `json:"channel"`
	MonthlyCost        float64 `json:"monthly_cost"`
	CostPerInteraction float64 `json:"cost_per_interaction"`
}

// ROIRow is a channel summary joined with its cost.
type ROIRow struct {
	ChannelSummary
	MonthlyCost        float64 `json:"monthly_cost"`
	CostPerInteraction float64 `json:"cost_per_interaction"`
	Profit             float64 `json:"profit"`
	ROI                float64 `json:"roi"`
	CostPerCustomer    float64 `json:"cost_per_customer"`
	RevenuePerDollar   float64 `json:"revenue_per_dollar"`
}

// ROI joins channel summaries with costs. Channels without a cost row are
// treated as free; ratios with a zero denominator are 0. Rows are sorted by
// total revenue descending.
func ROI(channels []ChannelSummary, costs []ChannelCost) []ROIRow {
	byChannel := make(map[string]ChannelCost, len(costs))
	for _, c := range costs {
		byChannel[c.Channel] = c
	}

	out := make([]ROIRow, 0, len(channels))
	for _, ch := range channels {
		c := byChannel[ch.Channel]
		row := ROIRow{
			ChannelSummary:     ch,
			MonthlyCost:        c.MonthlyCost,
			CostPerInteraction: c.CostPerInteraction,
			Profit:             ch.TotalRevenue - c.MonthlyCost,
		}
		if c.MonthlyCost != 0 {
			row.ROI = row.Profit / c.MonthlyCost
			row.RevenuePerDollar = ch.TotalRevenue / c.MonthlyCost
		}
		if ch.CustomerCount != 0 {
			row.CostPerCustomer = c.MonthlyCost / float64(ch.CustomerCount)
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].Channel < out[j].Channel
	})
	return out
}

// ROITotals is the portfolio-level rollup of an ROI report.
type ROITotals struct {
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
	ROI     float64 `json:"roi"` // profit / cost, 0 when there is no spend
}

// Totals sums an ROI report.
func Totals(rows []ROIRow) ROITotals {
	var t ROITotals
	for _, r := range rows {
		t.Revenue += r.TotalRevenue
		t.Cost += r.MonthlyCost
	}
	t.Profit = t.Revenue - t.Cost
	if t.Cost > 0 {
		t.ROI = t.Profit / t.Cost
	}
	return t
}
