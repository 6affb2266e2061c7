package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/report"
)

// formatSummary writes the headline numbers of a run to out.
func formatSummary(out io.Writer, s model.RunSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Interactions:\t%d\n", s.Interactions)
	_, _ = fmt.Fprintf(w, "Customers:\t%d\n", s.Customers)
	if s.HasRevenue {
		_, _ = fmt.Fprintf(w, "Revenue rows:\t%d\n", s.RevenueRows)
	}
	_, _ = fmt.Fprintf(w, "Matches:\t%d (phone %d, email %d, id %d)\n",
		s.Matches.TotalMatches, s.Matches.PhoneMatches, s.Matches.EmailMatches, s.Matches.DirectIDMatches)
	_, _ = fmt.Fprintf(w, "Touchpoints:\t%d\n", s.Touchpoints)
	_, _ = fmt.Fprintf(w, "Attributed customers:\t%d\n", s.Attributed)
	_, _ = fmt.Fprintf(w, "Channels:\t%d\n", s.Channels)
	_, _ = fmt.Fprintf(w, "Total credit:\t%.2f\n", s.TotalCredit)
	if s.HasRevenue {
		_, _ = fmt.Fprintf(w, "Total revenue:\t$%.2f\n", s.TotalRevenue)
	}
	_ = w.Flush()
}

// formatChannelReport writes the channel report as a table.
func formatChannelReport(out io.Writer, rows []report.ChannelSummary, withRevenue bool) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if withRevenue {
		_, _ = fmt.Fprintln(w, "CHANNEL\tCREDIT\tCUSTOMERS\tREVENUE\tAVG/CUSTOMER")
		_, _ = fmt.Fprintln(w, "-------\t------\t---------\t-------\t------------")
	} else {
		_, _ = fmt.Fprintln(w, "CHANNEL\tCREDIT\tCUSTOMERS")
		_, _ = fmt.Fprintln(w, "-------\t------\t---------")
	}
	for _, r := range rows {
		if withRevenue {
			_, _ = fmt.Fprintf(w, "%s\t%.2f\t%d\t$%.2f\t$%.2f\n",
				r.Channel, r.TotalCredit, r.CustomerCount, r.TotalRevenue, r.AvgRevenuePerCustomer)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%.2f\t%d\n", r.Channel, r.TotalCredit, r.CustomerCount)
	}
	_ = w.Flush()
}

// formatCustomerTable writes one row per customer with a credit column per
// channel.
func formatCustomerTable(out io.Writer, t report.CustomerTable) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	header := append([]string{"CUSTOMER"}, t.Channels...)
	if t.HasRevenue {
		header = append(header, "REVENUE")
	}
	_, _ = fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range t.Rows {
		cells := []string{r.CustomerID}
		for _, c := range r.Credits {
			cells = append(cells, fmt.Sprintf("%.2f", c))
		}
		if t.HasRevenue {
			cells = append(cells, fmt.Sprintf("$%.2f", r.TotalRevenue))
		}
		_, _ = fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
}

// formatTouchReport writes a first- or last-touch report.
func formatTouchReport(out io.Writer, rows []report.TouchSummary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CHANNEL\tCREDIT\tCUSTOMERS")
	_, _ = fmt.Fprintln(w, "-------\t------\t---------")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%.2f\t%d\n", r.Channel, r.Credit, r.Customers)
	}
	_ = w.Flush()
}

// formatROI writes the ROI report followed by its totals.
func formatROI(out io.Writer, rows []report.ROIRow) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CHANNEL\tREVENUE\tCOST\tPROFIT\tROI\tCOST/CUSTOMER\tREVENUE/$")
	_, _ = fmt.Fprintln(w, "-------\t-------\t----\t------\t---\t-------------\t---------")
	for _, r := range rows {
		_, _ = fmt.Fprintf(w, "%s\t$%.2f\t$%.2f\t$%.2f\t%.1f%%\t$%.2f\t%.2f\n",
			r.Channel, r.TotalRevenue, r.MonthlyCost, r.Profit, r.ROI*100, r.CostPerCustomer, r.RevenuePerDollar)
	}
	t := report.Totals(rows)
	_, _ = fmt.Fprintf(w, "TOTAL\t$%.2f\t$%.2f\t$%.2f\t%.1f%%\t\t\n", t.Revenue, t.Cost, t.Profit, t.ROI*100)
	_ = w.Flush()
}

// formatMatchStats writes identity resolution statistics.
func formatMatchStats(out io.Writer, s model.MatchStats, interactions int) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Interactions:\t%d\n", interactions)
	_, _ = fmt.Fprintf(w, "Total matches:\t%d\n", s.TotalMatches)
	_, _ = fmt.Fprintf(w, "Unique customers:\t%d\n", s.UniqueCustomers)
	_, _ = fmt.Fprintf(w, "  Phone:\t%d\n", s.PhoneMatches)
	_, _ = fmt.Fprintf(w, "  Email:\t%d\n", s.EmailMatches)
	_, _ = fmt.Fprintf(w, "  Customer ID:\t%d\n", s.DirectIDMatches)
	_ = w.Flush()
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(out io.Writer, runs []model.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tCONVERSION\tTOUCHPOINTS\tCREDIT\tREVENUE\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t------\t----------\t-----------\t------\t-------\t-------\t--------")

	for _, r := range runs {
		dur := r.UpdatedAt.Sub(r.CreatedAt).Round(time.Second).String()

		touchpoints, credit, revenue := "-", "-", "-"
		if r.Summary != nil {
			touchpoints = fmt.Sprintf("%d", r.Summary.Touchpoints)
			credit = fmt.Sprintf("%.2f", r.Summary.TotalCredit)
			if r.Summary.HasRevenue {
				revenue = fmt.Sprintf("$%.2f", r.Summary.TotalRevenue)
			}
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(r.ID),
			r.Status,
			r.Config.ConversionType,
			touchpoints,
			credit,
			revenue,
			r.CreatedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
