package main

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/attribution-cli/internal/attribution"
	"github.com/sells-group/attribution-cli/internal/config"
	"github.com/sells-group/attribution-cli/internal/dataset"
	"github.com/sells-group/attribution-cli/internal/fetcher"
	"github.com/sells-group/attribution-cli/internal/model"
)

// inputSources names the files (or URLs) of one attribution batch. Revenue
// and Channels are optional.
type inputSources struct {
	Interactions string
	Customers    string
	Revenue      string
	Channels     string
}

func readOptions(in config.InputConfig) fetcher.Options {
	return fetcher.Options{
		Delimiter: in.DelimiterRune(),
		Encoding:  in.Encoding,
		Sheet:     in.Sheet,
	}
}

// loadInput reads every source concurrently and maps the raw tables into
// model records. Revenue stays nil when no revenue source is given.
func loadInput(ctx context.Context, src inputSources, cols dataset.Columns, opts fetcher.Options) (attribution.Input, error) {
	var in attribution.Input
	if src.Interactions == "" || src.Customers == "" {
		return in, eris.New("interactions and customers are required")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := fetcher.ReadTable(gctx, src.Interactions, opts)
		if err != nil {
			return eris.Wrap(err, "read interactions")
		}
		in.Interactions, err = dataset.Interactions(t, cols.Interactions)
		if err != nil {
			return eris.Wrap(err, "load interactions")
		}
		return nil
	})

	g.Go(func() error {
		t, err := fetcher.ReadTable(gctx, src.Customers, opts)
		if err != nil {
			return eris.Wrap(err, "read customers")
		}
		in.Customers, err = dataset.Customers(t, cols.Customers)
		if err != nil {
			return eris.Wrap(err, "load customers")
		}
		return nil
	})

	if src.Revenue != "" {
		g.Go(func() error {
			t, err := fetcher.ReadTable(gctx, src.Revenue, opts)
			if err != nil {
				return eris.Wrap(err, "read revenue")
			}
			in.Revenue, err = dataset.Revenue(t, cols.Revenue)
			if err != nil {
				return eris.Wrap(err, "load revenue")
			}
			return nil
		})
	}

	if src.Channels != "" {
		g.Go(func() error {
			in.ChannelMapping = dataset.LoadChannelMapping(gctx, src.Channels, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return attribution.Input{}, err
	}
	return in, nil
}

// newEngine builds an engine for ac using the configured date layout.
func newEngine(ac model.Config, in config.InputConfig) (*attribution.Engine, error) {
	var opts []attribution.Option
	if in.DateFormat != "" {
		opts = append(opts, attribution.WithDateLayout(in.DateFormat))
	}
	eng, err := attribution.NewEngine(ac, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "init engine")
	}
	return eng, nil
}
