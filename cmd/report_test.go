package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/report"
)

func writeSampleResults(t *testing.T) string {
	t.Helper()
	out := runSample(t, true, nil)
	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, writeResults(path, out.View))
	return path
}

func TestOpenReportView_SourceSelection(t *testing.T) {
	setTestConfig(t)
	ctx := context.Background()

	_, err := openReportView(ctx, reportSource{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of --results or --run")

	_, err = openReportView(ctx, reportSource{Results: "a.csv", RunID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both")
}

func TestOpenReportView_Results(t *testing.T) {
	path := writeSampleResults(t)

	v, err := openReportView(context.Background(), reportSource{Results: path})
	require.NoError(t, err)
	assert.Equal(t, 3, v.Len())
	assert.True(t, v.HasColumn(report.ColRevenueAttributed))
}

func TestOpenReportView_DateRange(t *testing.T) {
	path := writeSampleResults(t)

	v, err := openReportView(context.Background(), reportSource{Results: path, From: "2024-01-16", To: "01/20/2024"})
	require.NoError(t, err)
	recs := v.Records()
	require.Len(t, recs, 1)
	assert.Equal(t, "I4", recs[0].InteractionID)

	v, err = openReportView(context.Background(), reportSource{Results: path, From: "2024-01-20"})
	require.NoError(t, err)
	require.Len(t, v.Records(), 1)
	assert.Equal(t, "I2", v.Records()[0].InteractionID)

	_, err = openReportView(context.Background(), reportSource{Results: path, To: "not a date"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --to date")
}

func TestOpenReportView_StoredRun(t *testing.T) {
	setTestConfig(t)
	ctx := context.Background()

	st, err := initStore(ctx)
	require.NoError(t, err)
	run, err := st.CreateRun(ctx, cfg.Attribution)
	require.NoError(t, err)
	recs := []model.CreditRecord{
		{CustomerID: "PAT001", InteractionID: "I1", Channel: "Google Ads", Credit: 1, RevenueAttributed: 100},
	}
	require.NoError(t, st.CompleteRun(ctx, run.ID, model.RunSummary{Touchpoints: 1, HasRevenue: true}, recs))
	require.NoError(t, st.Close())

	v, err := openReportView(ctx, reportSource{RunID: run.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, v.Len())
	assert.True(t, v.HasColumn(report.ColRevenueAttributed))
	assert.InDelta(t, 100.0, v.TotalRevenue(), 1e-9)
}

func TestViewFromRun_NotComplete(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.DefaultConfig())
	require.NoError(t, err)

	_, err = viewFromRun(ctx, st, run.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, errRunNotComplete)
}

func TestFilterDates_NoBounds(t *testing.T) {
	v := report.Empty(false)
	got, err := filterDates(v, "", "")
	require.NoError(t, err)
	assert.Same(t, v, got)
}
