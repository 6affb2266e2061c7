package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/config"
	"github.com/sells-group/attribution-cli/internal/dataset"
	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const (
	interactionsCSV = `id,called_at,source,channel,contact_number,email
I1,2024-01-15 10:30:00,google,Google Ads,619-555-1234,
I2,2024-01-22 14:00:00,facebook,Facebook,(619) 555-1234,
I3,2024-01-30 09:00:00,google,Google Ads,619-555-1234,
I4,2024-01-18 11:00:00,referral,Referral,,jane@example.com
I5,2024-01-19 11:00:00,yelp,Yelp,858-555-0000,
`
	customersCSV = `customer_id,phone_1,phone_2,email_1
PAT001,(619) 555-1234,,
PAT002,,,Jane@Example.com
`
	revenueCSV = `customer_id,service_date,net,revenue_center
PAT001,2024-01-25,"$1,500.00",Main
PAT001,2024-02-10,200,Main
PAT002,2024-01-20,400,Main
`
	costsCSV = `channel,monthly_cost,cost_per_interaction
Google Ads,500,10
Facebook,250,5
Referral,0,0
`
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// setTestConfig installs a default configuration for commands under test.
func setTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{
		Attribution: model.DefaultConfig(),
		Columns:     dataset.DefaultColumns(),
		Input:       config.InputConfig{Encoding: "utf-8", Delimiter: ","},
	}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = filepath.Join(t.TempDir(), "attribution.db")
	cfg.Server.Port = 8080
	t.Cleanup(func() { cfg = prev })
}

// testSources writes the sample inputs into a temp dir.
func testSources(t *testing.T, withRevenue bool) inputSources {
	t.Helper()
	dir := t.TempDir()
	src := inputSources{
		Interactions: writeTestFile(t, dir, "interactions.csv", interactionsCSV),
		Customers:    writeTestFile(t, dir, "customers.csv", customersCSV),
	}
	if withRevenue {
		src.Revenue = writeTestFile(t, dir, "revenue.csv", revenueCSV)
	}
	return src
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}
