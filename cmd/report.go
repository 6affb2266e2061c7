package main

import (
	"context"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/attribution-cli/internal/dataset"
	"github.com/sells-group/attribution-cli/internal/dateparse"
	"github.com/sells-group/attribution-cli/internal/fetcher"
	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/report"
	"github.com/sells-group/attribution-cli/internal/store"
)

// reportSource selects the attributed touchpoints a report reads.
type reportSource struct {
	Results string
	RunID   string
	From    string
	To      string
}

var (
	reportSrc   reportSource
	reportCosts string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize attributed touchpoints",
	Long:  "Builds channel, customer, first-touch, last-touch and ROI reports from a results CSV (--results) or a stored run (--run).",
}

var reportChannelCmd = &cobra.Command{
	Use:   "channel",
	Short: "Credit, customers and revenue per channel",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, err := openReportView(cmd.Context(), reportSrc)
		if err != nil {
			return err
		}
		formatChannelReport(os.Stdout, v.ByChannel(), v.HasColumn(report.ColRevenueAttributed))
		return nil
	},
}

var reportCustomerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Credit per customer and channel",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, err := openReportView(cmd.Context(), reportSrc)
		if err != nil {
			return err
		}
		formatCustomerTable(os.Stdout, v.ByCustomer())
		return nil
	},
}

var reportFirstTouchCmd = &cobra.Command{
	Use:   "first-touch",
	Short: "Channels of each customer's earliest touchpoint",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, err := openReportView(cmd.Context(), reportSrc)
		if err != nil {
			return err
		}
		rows, err := v.FirstTouch()
		if err != nil {
			return eris.Wrap(err, "report first-touch")
		}
		formatTouchReport(os.Stdout, rows)
		return nil
	},
}

var reportLastTouchCmd = &cobra.Command{
	Use:   "last-touch",
	Short: "Channels of each customer's latest touchpoint",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v, err := openReportView(cmd.Context(), reportSrc)
		if err != nil {
			return err
		}
		rows, err := v.LastTouch()
		if err != nil {
			return eris.Wrap(err, "report last-touch")
		}
		formatTouchReport(os.Stdout, rows)
		return nil
	},
}

var reportROICmd = &cobra.Command{
	Use:   "roi",
	Short: "Channel profit and ROI against a cost table",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		v, err := openReportView(ctx, reportSrc)
		if err != nil {
			return err
		}
		if !v.HasColumn(report.ColRevenueAttributed) {
			return eris.New("report roi: results carry no revenue")
		}

		t, err := fetcher.ReadTable(ctx, reportCosts, readOptions(cfg.Input))
		if err != nil {
			return eris.Wrap(err, "read costs")
		}
		costs, err := dataset.Costs(t)
		if err != nil {
			return eris.Wrap(err, "load costs")
		}

		formatROI(os.Stdout, report.ROI(v.ByChannel(), costs))
		return nil
	},
}

// openReportView loads the touchpoints named by src and applies its date
// range.
func openReportView(ctx context.Context, src reportSource) (*report.View, error) {
	mode := "report"
	if src.RunID != "" {
		mode = "store"
	}
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	var (
		v   *report.View
		err error
	)
	switch {
	case src.Results != "" && src.RunID != "":
		return nil, eris.New("use either --results or --run, not both")
	case src.Results != "":
		v, err = viewFromResults(ctx, src.Results)
	case src.RunID != "":
		st, serr := initStore(ctx)
		if serr != nil {
			return nil, serr
		}
		defer st.Close() //nolint:errcheck
		v, err = viewFromRun(ctx, st, src.RunID)
	default:
		return nil, eris.New("one of --results or --run is required")
	}
	if err != nil {
		return nil, err
	}
	return filterDates(v, src.From, src.To)
}

func viewFromResults(ctx context.Context, path string) (*report.View, error) {
	t, err := fetcher.ReadTable(ctx, path, readOptions(cfg.Input))
	if err != nil {
		return nil, eris.Wrap(err, "read results")
	}
	return report.FromTable(t.Header, t.Rows)
}

// viewFromRun rebuilds the result view of a completed run.
func viewFromRun(ctx context.Context, st store.Store, runID string) (*report.View, error) {
	run, err := st.GetRun(ctx, runID)
	if err != nil {
		return nil, eris.Wrap(err, "get run")
	}
	if run.Status != model.RunStatusComplete {
		return nil, eris.Wrapf(errRunNotComplete, "run %s is %s", runID, run.Status)
	}
	credits, err := st.GetCredits(ctx, runID)
	if err != nil {
		return nil, eris.Wrap(err, "get credits")
	}
	withRevenue := run.Summary != nil && run.Summary.HasRevenue
	return report.FromRecords(credits, withRevenue), nil
}

var errRunNotComplete = eris.New("run is not complete")

var maxDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// filterDates restricts v to [from, to]. Either bound may be empty.
func filterDates(v *report.View, from, to string) (*report.View, error) {
	if from == "" && to == "" {
		return v, nil
	}
	start, end := time.Time{}, maxDate
	if from != "" {
		d, ok := dateparse.Parse(from)
		if !ok {
			return nil, eris.Errorf("invalid --from date %q", from)
		}
		start = d
	}
	if to != "" {
		d, ok := dateparse.Parse(to)
		if !ok {
			return nil, eris.Errorf("invalid --to date %q", to)
		}
		end = d
	}
	return v.FilterByDateRange(start, end)
}

func init() {
	reportCmd.PersistentFlags().StringVar(&reportSrc.Results, "results", "", "results CSV written by run --output")
	reportCmd.PersistentFlags().StringVar(&reportSrc.RunID, "run", "", "ID of a stored run")
	reportCmd.PersistentFlags().StringVar(&reportSrc.From, "from", "", "only include touchpoints on or after this date")
	reportCmd.PersistentFlags().StringVar(&reportSrc.To, "to", "", "only include touchpoints on or before this date")

	reportROICmd.Flags().StringVar(&reportCosts, "costs", "", "channel cost table (channel,monthly_cost,cost_per_interaction)")
	_ = reportROICmd.MarkFlagRequired("costs")

	reportCmd.AddCommand(reportChannelCmd)
	reportCmd.AddCommand(reportCustomerCmd)
	reportCmd.AddCommand(reportFirstTouchCmd)
	reportCmd.AddCommand(reportLastTouchCmd)
	reportCmd.AddCommand(reportROICmd)
	rootCmd.AddCommand(reportCmd)
}
