package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/report"
)

func TestFormatSummary(t *testing.T) {
	var buf bytes.Buffer
	formatSummary(&buf, model.RunSummary{
		Interactions: 5,
		Customers:    2,
		RevenueRows:  3,
		Matches:      model.MatchStats{TotalMatches: 4, PhoneMatches: 3, EmailMatches: 1},
		Touchpoints:  3,
		Attributed:   2,
		Channels:     3,
		TotalCredit:  2,
		TotalRevenue: 1900,
		HasRevenue:   true,
	})

	out := buf.String()
	assert.Contains(t, out, "Revenue rows:")
	assert.Contains(t, out, "4 (phone 3, email 1, id 0)")
	assert.Contains(t, out, "$1900.00")
}

func TestFormatSummary_NoRevenue(t *testing.T) {
	var buf bytes.Buffer
	formatSummary(&buf, model.RunSummary{Interactions: 1})
	assert.NotContains(t, buf.String(), "Revenue")
}

func TestFormatChannelReport(t *testing.T) {
	rows := []report.ChannelSummary{
		{Channel: "Google Ads", TotalCredit: 1.5, CustomerCount: 2, TotalRevenue: 900, AvgRevenuePerCustomer: 450},
	}

	var buf bytes.Buffer
	formatChannelReport(&buf, rows, true)
	out := buf.String()
	assert.Contains(t, out, "REVENUE")
	assert.Contains(t, out, "Google Ads")
	assert.Contains(t, out, "$450.00")

	buf.Reset()
	formatChannelReport(&buf, rows, false)
	assert.NotContains(t, buf.String(), "REVENUE")
	assert.Contains(t, buf.String(), "1.50")
}

func TestFormatCustomerTable(t *testing.T) {
	var buf bytes.Buffer
	formatCustomerTable(&buf, report.CustomerTable{
		Channels:   []string{"Facebook", "Google Ads"},
		HasRevenue: true,
		Rows:       []report.CustomerRow{{CustomerID: "PAT001", Credits: []float64{0.5, 0.5}, TotalRevenue: 1500}},
	})

	out := buf.String()
	assert.Contains(t, out, "CUSTOMER")
	assert.Contains(t, out, "Google Ads")
	assert.Contains(t, out, "PAT001")
	assert.Contains(t, out, "$1500.00")
}

func TestFormatTouchReport(t *testing.T) {
	var buf bytes.Buffer
	formatTouchReport(&buf, []report.TouchSummary{{Channel: "Referral", Credit: 1, Customers: 1}})
	assert.Contains(t, buf.String(), "Referral")
	assert.Contains(t, buf.String(), "1.00")
}

func TestFormatROI(t *testing.T) {
	rows := report.ROI(
		[]report.ChannelSummary{{Channel: "Google Ads", TotalRevenue: 1000, CustomerCount: 2}},
		[]report.ChannelCost{{Channel: "Google Ads", MonthlyCost: 500}},
	)

	var buf bytes.Buffer
	formatROI(&buf, rows)
	out := buf.String()
	assert.Contains(t, out, "Google Ads")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "TOTAL")
}

func TestFormatMatchStats(t *testing.T) {
	var buf bytes.Buffer
	formatMatchStats(&buf, model.MatchStats{TotalMatches: 4, UniqueCustomers: 2, PhoneMatches: 3, EmailMatches: 1}, 5)
	out := buf.String()
	assert.Contains(t, out, "Interactions:")
	assert.Contains(t, out, "Unique customers:")
}

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Config:    model.DefaultConfig(),
			Status:    model.RunStatusComplete,
			Summary:   &model.RunSummary{Touchpoints: 12, TotalCredit: 4, TotalRevenue: 2500, HasRevenue: true},
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Second),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Config:    model.Config{ConversionType: model.ConversionFirstContact},
			Status:    model.RunStatusFailed,
			Error:     "revenue data required",
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-1 * time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "first_paid")
	assert.Contains(t, output, "$2500.00")
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "first_contact")
	assert.Contains(t, output, "2025-06-15 10:30")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789"))
	assert.Equal(t, "short", truncateID("short"))
}
