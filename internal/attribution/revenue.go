package attribution

import (
	"github.com/sells-group/attribution-cli/internal/dateparse"
	"github.com/sells-group/attribution-cli/internal/model"
)

// customerRevenue is one customer's revenue split.
type customerRevenue struct {
	firstPaid float64 // revenue on the conversion date
	total     float64 // lifetime revenue
}

// AttributeRevenue spreads each customer's first-paid revenue (all revenue
// on the conversion date) and lifetime revenue across their credited
// touchpoints in proportion to credit. Customers without revenue get 0.
func AttributeRevenue(records []model.CreditRecord, revenue []model.RevenueEvent, conv ConversionDates, layout string) []model.CreditRecord {
	byCustomer := make(map[string]*customerRevenue)
	for _, ev := range revenue {
		cr, ok := byCustomer[ev.CustomerID]
		if !ok {
			cr = &customerRevenue{}
			byCustomer[ev.CustomerID] = cr
		}
		cr.total += ev.Net

		cd, ok := conv.Lookup(ev.CustomerID)
		if !ok || cd.IsZero() {
			continue
		}
		if d, ok := dateparse.ParseDate(ev.ServiceDate, layout); ok && d.Equal(cd) {
			cr.firstPaid += ev.Net
		}
	}

	for i := range records {
		cr, ok := byCustomer[records[i].CustomerID]
		if !ok {
			records[i].RevenueAttributed = 0
			records[i].TotalRevenueAttributed = 0
			continue
		}
		records[i].RevenueAttributed = records[i].Credit * cr.firstPaid
		records[i].TotalRevenueAttributed = records[i].Credit * cr.total
	}
	return records
}
