package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ConversionType selects the customer milestone that bounds attribution.
type ConversionType string

const (
	ConversionFirstContact  ConversionType = "first_contact"
	ConversionFirstBooked   ConversionType = "first_booked"
	ConversionFirstAttended ConversionType = "first_attended"
	ConversionFirstPaid     ConversionType = "first_paid"
)

// ErrInvalidConfig is returned for attribution options outside their domain.
var ErrInvalidConfig = eris.New("invalid attribution config")

// ParseConversionType converts a config or flag value into a ConversionType.
// Dashes are accepted in place of underscores.
func ParseConversionType(s string) (ConversionType, error) {
	ct := ConversionType(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch ct {
	case ConversionFirstContact, ConversionFirstBooked, ConversionFirstAttended, ConversionFirstPaid:
		return ct, nil
	case "":
		return ConversionFirstPaid, nil
	}
	return "", eris.Wrapf(ErrInvalidConfig, "unknown conversion type %q", s)
}

// Config holds the attribution options recognized by the engine.
type Config struct {
	ConversionType     ConversionType `json:"conversion_type" yaml:"conversion_type" mapstructure:"conversion_type"`
	LookbackDays       int            `json:"lookback_days" yaml:"lookback_days" mapstructure:"lookback_days"` // 0 = unlimited
	NormalizeCredit    bool           `json:"normalize_credit" yaml:"normalize_credit" mapstructure:"normalize_credit"`
	MinCreditThreshold float64        `json:"min_credit_threshold" yaml:"min_credit_threshold" mapstructure:"min_credit_threshold"`
	Workers            int            `json:"workers,omitempty" yaml:"workers" mapstructure:"workers"`
}

// DefaultConfig returns first-paid attribution with unlimited lookback,
// normalized credit and no threshold.
func DefaultConfig() Config {
	return Config{
		ConversionType:  ConversionFirstPaid,
		NormalizeCredit: true,
	}
}

// Validate checks option domains. Unimplemented conversion types are valid
// here; the engine rejects them when it resolves conversions.
func (c Config) Validate() error {
	if _, err := ParseConversionType(string(c.ConversionType)); err != nil {
		return err
	}
	if c.LookbackDays < 0 {
		return eris.Wrapf(ErrInvalidConfig, "lookback_days must be positive or 0 for unlimited, got %d", c.LookbackDays)
	}
	if c.MinCreditThreshold < 0 || c.MinCreditThreshold > 1 {
		return eris.Wrapf(ErrInvalidConfig, "min_credit_threshold must be within [0,1], got %g", c.MinCreditThreshold)
	}
	if c.Workers < 0 {
		return eris.Wrapf(ErrInvalidConfig, "workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// HasLookback reports whether a lookback window is configured.
func (c Config) HasLookback() bool { return c.LookbackDays > 0 }
