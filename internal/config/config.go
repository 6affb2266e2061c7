// Package config loads application configuration from config.yaml and
// ATTRIBUTION_* environment variables, and installs the global logger.
package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/attribution-cli/internal/dataset"
	"github.com/sells-group/attribution-cli/internal/db"
	"github.com/sells-group/attribution-cli/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Attribution model.Config    `yaml:"attribution" mapstructure:"attribution"`
	Columns     dataset.Columns `yaml:"columns" mapstructure:"columns"`
	Input       InputConfig     `yaml:"input" mapstructure:"input"`
	Store       StoreConfig     `yaml:"store" mapstructure:"store"`
	Server      ServerConfig    `yaml:"server" mapstructure:"server"`
	Log         LogConfig       `yaml:"log" mapstructure:"log"`
}

// InputConfig controls how input files are decoded.
type InputConfig struct {
	Encoding   string `yaml:"encoding" mapstructure:"encoding"`
	Delimiter  string `yaml:"delimiter" mapstructure:"delimiter"`
	DateFormat string `yaml:"date_format" mapstructure:"date_format"` // Go layout tried before the built-in ones
	Sheet      string `yaml:"sheet" mapstructure:"sheet"`
}

// DelimiterRune returns the configured CSV delimiter, 0 for the default.
func (c InputConfig) DelimiterRune() rune {
	if c.Delimiter == `\t` || strings.EqualFold(c.Delimiter, "tab") {
		return '\t'
	}
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string         `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string         `yaml:"database_url" mapstructure:"database_url"`
	Pool        db.PoolOptions `yaml:"pool" mapstructure:"pool"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ATTRIBUTION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	attr := model.DefaultConfig()
	v.SetDefault("attribution.conversion_type", string(attr.ConversionType))
	v.SetDefault("attribution.lookback_days", attr.LookbackDays)
	v.SetDefault("attribution.normalize_credit", attr.NormalizeCredit)
	v.SetDefault("attribution.min_credit_threshold", attr.MinCreditThreshold)
	v.SetDefault("attribution.workers", 4)

	cols := dataset.DefaultColumns()
	v.SetDefault("columns.interactions.id", cols.Interactions.ID)
	v.SetDefault("columns.interactions.timestamp", cols.Interactions.Timestamp)
	v.SetDefault("columns.interactions.date", cols.Interactions.Date)
	v.SetDefault("columns.interactions.source", cols.Interactions.Source)
	v.SetDefault("columns.interactions.channel", cols.Interactions.Channel)
	v.SetDefault("columns.interactions.phone", cols.Interactions.Phone)
	v.SetDefault("columns.interactions.email", cols.Interactions.Email)
	v.SetDefault("columns.interactions.customer_id", cols.Interactions.CustomerID)
	v.SetDefault("columns.customers.id", cols.Customers.ID)
	v.SetDefault("columns.customers.phone_prefix", cols.Customers.PhonePrefix)
	v.SetDefault("columns.customers.email_prefix", cols.Customers.EmailPrefix)
	v.SetDefault("columns.revenue.customer_id", cols.Revenue.CustomerID)
	v.SetDefault("columns.revenue.service_date", cols.Revenue.ServiceDate)
	v.SetDefault("columns.revenue.net", cols.Revenue.Net)
	v.SetDefault("columns.revenue.revenue_center", cols.Revenue.RevenueCenter)
	v.SetDefault("columns.revenue.service_category", cols.Revenue.ServiceCategory)

	v.SetDefault("input.encoding", "utf-8")
	v.SetDefault("input.delimiter", ",")
	v.SetDefault("input.date_format", "")
	v.SetDefault("input.sheet", "")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "attribution.db")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on: "run" and
// "report" need valid attribution options, "store" additionally needs a
// usable store, and "serve" needs a store and a port. It normalizes the
// conversion type in place.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "run", "report", "store", "serve":
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if ct, err := model.ParseConversionType(string(c.Attribution.ConversionType)); err != nil {
		problems = append(problems, err.Error())
	} else {
		c.Attribution.ConversionType = ct
		if err := c.Attribution.Validate(); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if mode == "store" || mode == "serve" {
		switch c.Store.Driver {
		case "sqlite", "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required")
			}
		default:
			problems = append(problems, fmt.Sprintf("store.driver must be sqlite or postgres, got %q", c.Store.Driver))
		}
	}
	if mode == "serve" && c.Server.Port <= 0 {
		problems = append(problems, "server.port must be > 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
