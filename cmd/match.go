package main

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/match"
	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/phone"
)

var (
	matchSources inputSources
	matchOutput  string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Resolve interactions to customers without attributing credit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		in, err := loadInput(ctx, matchSources, cfg.Columns, readOptions(cfg.Input))
		if err != nil {
			return err
		}

		resolver := match.NewResolver(in.Customers, phone.NewNormalizer(0))
		matched := resolver.MatchAll(in.Interactions)
		formatMatchStats(os.Stdout, match.Statistics(matched), len(in.Interactions))

		if matchOutput != "" {
			if err := writeMatches(matchOutput, matched); err != nil {
				return err
			}
			zap.L().Info("wrote matches", zap.String("path", matchOutput), zap.Int("rows", len(matched)))
		}
		return nil
	},
}

func writeMatches(path string, matched []model.MatchRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	w := csv.NewWriter(f)
	_ = w.Write([]string{"interaction_id", "customer_id", "match_type", "source"})
	for _, m := range matched {
		_ = w.Write([]string{m.Interaction.ID, m.CustomerID, string(m.Method), m.Interaction.Source})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "write %s", path)
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}

func init() {
	addInputFlags(matchCmd, &matchSources)
	matchCmd.Flags().StringVarP(&matchOutput, "output", "o", "", "write match records to this CSV file")
	rootCmd.AddCommand(matchCmd)
}
