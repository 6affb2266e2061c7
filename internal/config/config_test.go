package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/model"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, model.ConversionFirstPaid, cfg.Attribution.ConversionType)
	assert.Equal(t, 0, cfg.Attribution.LookbackDays)
	assert.True(t, cfg.Attribution.NormalizeCredit)
	assert.Zero(t, cfg.Attribution.MinCreditThreshold)
	assert.Equal(t, 4, cfg.Attribution.Workers)

	assert.Equal(t, "called_at", cfg.Columns.Interactions.Timestamp)
	assert.Equal(t, "contact_number", cfg.Columns.Interactions.Phone)
	assert.Equal(t, "phone_", cfg.Columns.Customers.PhonePrefix)
	assert.Equal(t, "service_date", cfg.Columns.Revenue.ServiceDate)

	assert.Equal(t, "utf-8", cfg.Input.Encoding)
	assert.Equal(t, ',', cfg.Input.DelimiterRune())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "attribution.db", cfg.Store.DatabaseURL)
	assert.Equal(t, int32(10), cfg.Store.Pool.MaxConns)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
attribution:
  conversion_type: first_contact
  lookback_days: 90
  normalize_credit: false
  min_credit_threshold: 0.05
columns:
  interactions:
    timestamp: call_start
    phone: caller_number
input:
  delimiter: ";"
  encoding: windows-1252
store:
  driver: postgres
  database_url: postgres://localhost/attribution
log:
  level: debug
  format: console
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, model.ConversionFirstContact, cfg.Attribution.ConversionType)
	assert.Equal(t, 90, cfg.Attribution.LookbackDays)
	assert.False(t, cfg.Attribution.NormalizeCredit)
	assert.InDelta(t, 0.05, cfg.Attribution.MinCreditThreshold, 1e-9)
	assert.Equal(t, "call_start", cfg.Columns.Interactions.Timestamp)
	assert.Equal(t, "caller_number", cfg.Columns.Interactions.Phone)
	// Defaults still apply for unset values
	assert.Equal(t, "source", cfg.Columns.Interactions.Source)
	assert.Equal(t, ';', cfg.Input.DelimiterRune())
	assert.Equal(t, "windows-1252", cfg.Input.Encoding)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
attribution:
  lookback_days: 30
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("ATTRIBUTION_ATTRIBUTION_LOOKBACK_DAYS", "7")
	t.Setenv("ATTRIBUTION_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, 7, cfg.Attribution.LookbackDays)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("ATTRIBUTION_SERVER_PORT", "3000")
	t.Setenv("ATTRIBUTION_STORE_DRIVER", "postgres")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestLoadBadYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0o644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{Attribution: model.DefaultConfig()}
	cfg.Store.Driver = "sqlite"
	cfg.Store.DatabaseURL = "attribution.db"
	cfg.Server.Port = 8080
	return cfg
}

func TestValidate_Modes(t *testing.T) {
	for _, mode := range []string{"run", "report", "store", "serve"} {
		assert.NoError(t, validDefaults().Validate(mode), mode)
	}

	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidate_NormalizesConversionType(t *testing.T) {
	cfg := validDefaults()
	cfg.Attribution.ConversionType = "First-Contact"
	require.NoError(t, cfg.Validate("run"))
	assert.Equal(t, model.ConversionFirstContact, cfg.Attribution.ConversionType)
}

func TestValidate_Attribution(t *testing.T) {
	cfg := validDefaults()
	cfg.Attribution.MinCreditThreshold = 1.5
	err := cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min_credit_threshold")

	cfg = validDefaults()
	cfg.Attribution.ConversionType = "last_touch"
	err = cfg.Validate("run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown conversion type")
}

func TestValidate_Store(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""
	assert.NoError(t, cfg.Validate("run"), "run does not need a store")

	err := cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg = validDefaults()
	cfg.Store.Driver = "mysql"
	err = cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}

func TestValidate_ServePort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestDelimiterRune(t *testing.T) {
	assert.Equal(t, '\t', InputConfig{Delimiter: `\t`}.DelimiterRune())
	assert.Equal(t, '\t', InputConfig{Delimiter: "TAB"}.DelimiterRune())
	assert.Equal(t, '|', InputConfig{Delimiter: "|"}.DelimiterRune())
	assert.Equal(t, rune(0), InputConfig{}.DelimiterRune())
}
