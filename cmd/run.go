package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/attribution"
	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/report"
	"github.com/sells-group/attribution-cli/internal/store"
)

var (
	runSources inputSources
	runOutput  string
	runPersist bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run attribution over interaction, customer and revenue files",
	Long: `Matches interactions to customers by phone, email or customer ID, keeps the
touchpoints before each customer's conversion, and splits credit (and first-paid
revenue, when a revenue file is given) across them. Prints the channel report and
optionally writes the attributed touchpoints to CSV.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := applyAttributionFlags(cmd, &cfg.Attribution); err != nil {
			return err
		}
		mode := "run"
		if runPersist {
			mode = "store"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		in, err := loadInput(ctx, runSources, cfg.Columns, readOptions(cfg.Input))
		if err != nil {
			return err
		}

		eng, err := newEngine(cfg.Attribution, cfg.Input)
		if err != nil {
			return err
		}

		var st store.Store
		if runPersist {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		out, runID, err := executeRun(ctx, eng, st, in)
		if err != nil {
			return err
		}

		formatSummary(os.Stdout, out.Summary)
		fmt.Fprintln(os.Stdout)
		formatChannelReport(os.Stdout, eng.ChannelReport(out.View), out.Summary.HasRevenue)

		if runOutput != "" {
			if err := writeResults(runOutput, out.View); err != nil {
				return err
			}
			zap.L().Info("wrote results", zap.String("path", runOutput), zap.Int("rows", out.View.Len()))
		}
		if runID != "" {
			fmt.Fprintf(os.Stdout, "\nRun ID: %s\n", runID)
		}
		return nil
	},
}

// executeRun runs the engine and, when st is non-nil, records the run. A
// failed calculation is stored as a failed run with no credits.
func executeRun(ctx context.Context, eng *attribution.Engine, st store.Store, in attribution.Input) (*attribution.Outcome, string, error) {
	var run *model.Run
	if st != nil {
		var err error
		run, err = st.CreateRun(ctx, eng.Config())
		if err != nil {
			return nil, "", eris.Wrap(err, "create run")
		}
	}

	out, err := eng.Run(ctx, in)
	if err != nil {
		if run != nil {
			if ferr := st.FailRun(ctx, run.ID, err.Error()); ferr != nil {
				zap.L().Error("failed to record run failure", zap.String("run_id", run.ID), zap.Error(ferr))
			}
		}
		return nil, "", eris.Wrap(err, "run attribution")
	}

	if run == nil {
		return out, "", nil
	}
	if err := st.CompleteRun(ctx, run.ID, out.Summary, out.View.Records()); err != nil {
		return nil, "", eris.Wrap(err, "complete run")
	}
	zap.L().Info("persisted run", zap.String("run_id", run.ID), zap.Int("touchpoints", out.Summary.Touchpoints))
	return out, run.ID, nil
}

// applyAttributionFlags overrides configured attribution options with the
// flags the user set explicitly.
func applyAttributionFlags(cmd *cobra.Command, ac *model.Config) error {
	flags := cmd.Flags()
	if flags.Changed("conversion-type") {
		s, _ := flags.GetString("conversion-type")
		ct, err := model.ParseConversionType(s)
		if err != nil {
			return err
		}
		ac.ConversionType = ct
	}
	if flags.Changed("lookback-days") {
		ac.LookbackDays, _ = flags.GetInt("lookback-days")
	}
	if flags.Changed("no-normalize") {
		off, _ := flags.GetBool("no-normalize")
		ac.NormalizeCredit = !off
	}
	if flags.Changed("min-credit") {
		ac.MinCreditThreshold, _ = flags.GetFloat64("min-credit")
	}
	if flags.Changed("workers") {
		ac.Workers, _ = flags.GetInt("workers")
	}
	return nil
}

func writeResults(path string, v *report.View) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := v.WriteCSV(f); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "write %s", path)
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}

func addInputFlags(cmd *cobra.Command, src *inputSources) {
	cmd.Flags().StringVar(&src.Interactions, "interactions", "", "interactions file or URL (required)")
	cmd.Flags().StringVar(&src.Customers, "customers", "", "customer registry file or URL (required)")
	_ = cmd.MarkFlagRequired("interactions")
	_ = cmd.MarkFlagRequired("customers")
}

func init() {
	addInputFlags(runCmd, &runSources)
	runCmd.Flags().StringVar(&runSources.Revenue, "revenue", "", "revenue file or URL (required for first_paid)")
	runCmd.Flags().StringVar(&runSources.Channels, "channels", "", "source-to-channel mapping (CSV with source,channel or YAML)")

	runCmd.Flags().String("conversion-type", "", "first_paid, first_contact, first_booked or first_attended (default from config)")
	runCmd.Flags().Int("lookback-days", 0, "only keep touchpoints within N days of conversion (0 = unlimited)")
	runCmd.Flags().Bool("no-normalize", false, "keep raw credit (1 per day) instead of per-customer shares")
	runCmd.Flags().Float64("min-credit", 0, "drop touchpoints with credit below this threshold")
	runCmd.Flags().Int("workers", 0, "credit allocation workers (default from config)")

	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "write attributed touchpoints to this CSV file")
	runCmd.Flags().BoolVar(&runPersist, "persist", false, "record the run and its touchpoints in the store")

	rootCmd.AddCommand(runCmd)
}
