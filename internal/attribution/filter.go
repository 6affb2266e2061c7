package attribution

import (
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/dateparse"
	"github.com/sells-group/attribution-cli/internal/model"
)

// FilterTouchpoints keeps touchpoints on or before their customer's
// conversion date and, when a lookback is configured, no more than
// LookbackDays before it. Customers absent from conv are dropped. For
// first_contact the input is returned unchanged.
func FilterTouchpoints(cfg model.Config, tps []Touchpoint, conv ConversionDates) []Touchpoint {
	if cfg.ConversionType == model.ConversionFirstContact {
		return tps
	}

	out := make([]Touchpoint, 0, len(tps))
	for _, tp := range tps {
		cd, ok := conv.Lookup(tp.CustomerID)
		if !ok || cd.IsZero() {
			continue
		}
		if tp.Date.After(cd) {
			continue
		}
		if cfg.HasLookback() && dateparse.Days(tp.Date, cd) > cfg.LookbackDays {
			continue
		}
		tp.ConversionDate = cd
		out = append(out, tp)
	}

	zap.L().Info("filtered to pre-conversion touchpoints",
		zap.Int("touchpoints", len(out)),
		zap.Int("dropped", len(tps)-len(out)),
	)
	return out
}
