package attribution

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/dateparse"
	"github.com/sells-group/attribution-cli/internal/model"
)

var (
	// ErrNotImplemented is returned for conversion types that are declared
	// but have no data source yet (first_booked, first_attended).
	ErrNotImplemented = eris.New("conversion type not implemented")

	// ErrRevenueRequired is returned when first_paid attribution is
	// requested without revenue data.
	ErrRevenueRequired = eris.New("revenue data required for first_paid conversion type")
)

// ConversionDates maps customer ID to conversion date. A zero date means the
// customer converts without bounding attribution (first_contact).
type ConversionDates map[string]time.Time

// Lookup returns the conversion date of a customer and whether the customer
// converted at all.
func (c ConversionDates) Lookup(customerID string) (time.Time, bool) {
	d, ok := c[customerID]
	return d, ok
}

// CheckConversionType fails for conversion types the engine cannot resolve,
// and for first_paid without revenue.
func CheckConversionType(ct model.ConversionType, haveRevenue bool) error {
	switch ct {
	case model.ConversionFirstContact:
		return nil
	case model.ConversionFirstPaid:
		if !haveRevenue {
			return ErrRevenueRequired
		}
		return nil
	case model.ConversionFirstBooked, model.ConversionFirstAttended:
		return eris.Wrapf(ErrNotImplemented, "conversion type %s", ct)
	}
	return eris.Wrapf(model.ErrInvalidConfig, "unknown conversion type %q", ct)
}

// ResolveConversions computes each customer's conversion date. revenue nil
// means no revenue data was supplied.
//
// first_contact: every registry customer converts with no date.
// first_paid: the earliest parseable service date per customer; customers
// without one are absent and contribute no touchpoints.
func ResolveConversions(ct model.ConversionType, customers []model.Customer, revenue []model.RevenueEvent, layout string) (ConversionDates, error) {
	if err := CheckConversionType(ct, revenue != nil); err != nil {
		return nil, err
	}

	switch ct {
	case model.ConversionFirstContact:
		out := make(ConversionDates, len(customers))
		for _, c := range customers {
			out[c.ID] = time.Time{}
		}
		return out, nil

	default: // first_paid
		out := make(ConversionDates)
		var unparseable int
		for _, ev := range revenue {
			d, ok := dateparse.ParseDate(ev.ServiceDate, layout)
			if !ok {
				unparseable++
				continue
			}
			if cur, seen := out[ev.CustomerID]; !seen || d.Before(cur) {
				out[ev.CustomerID] = d
			}
		}
		if unparseable > 0 {
			zap.L().Warn("skipped revenue rows with unparseable service dates", zap.Int("rows", unparseable))
		}
		zap.L().Info("found customers with revenue", zap.Int("customers", len(out)))
		return out, nil
	}
}
