package attribution

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/attribution-cli/internal/model"
)

// DefaultWorkers is the customer-shard fan-out used when Config.Workers is 0.
const DefaultWorkers = 4

// AllocateCredit assigns each touchpoint a credit share.
//
// Touchpoints on the same customer-day split that day's unit of credit
// evenly. With NormalizeCredit each customer's daily credits are scaled to
// sum to 1.0. Rows below MinCreditThreshold are dropped afterwards and the
// survivors are not re-normalized.
//
// Customers are independent, so they are sharded across workers; output
// order always follows input order.
func AllocateCredit(ctx context.Context, cfg model.Config, tps []Touchpoint) ([]model.CreditRecord, error) {
	if len(tps) == 0 {
		return nil, nil
	}

	groups := make(map[string][]int)
	var order []string
	for i, tp := range tps {
		if _, ok := groups[tp.CustomerID]; !ok {
			order = append(order, tp.CustomerID)
		}
		groups[tp.CustomerID] = append(groups[tp.CustomerID], i)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	workers = min(workers, len(order))

	credits := make([]float64, len(tps))
	g, gctx := errgroup.WithContext(ctx)
	for w := range workers {
		g.Go(func() error {
			for c := w; c < len(order); c += workers {
				if err := gctx.Err(); err != nil {
					return eris.Wrap(err, "credit: allocation cancelled")
				}
				allocateCustomer(tps, groups[order[c]], cfg.NormalizeCredit, credits)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.CreditRecord, 0, len(tps))
	var dropped int
	for i, tp := range tps {
		if cfg.MinCreditThreshold > 0 && credits[i] < cfg.MinCreditThreshold {
			dropped++
			continue
		}
		out = append(out, model.CreditRecord{
			CustomerID:      tp.CustomerID,
			InteractionID:   tp.Interaction.ID,
			InteractionDate: tp.Date,
			Channel:         tp.Channel,
			Source:          tp.Interaction.Source,
			MatchMethod:     tp.Method,
			Credit:          credits[i],
		})
	}
	if dropped > 0 {
		zap.L().Info("dropped touchpoints below credit threshold",
			zap.Int("dropped", dropped),
			zap.Float64("threshold", cfg.MinCreditThreshold),
		)
	}
	return out, nil
}

// allocateCustomer writes credits for one customer's touchpoints. Each call
// touches only the indexes it is given.
func allocateCustomer(tps []Touchpoint, idx []int, normalize bool, credits []float64) {
	perDay := make(map[time.Time]int, len(idx))
	for _, i := range idx {
		perDay[tps[i].Date]++
	}

	var total float64
	for _, i := range idx {
		credits[i] = 1.0 / float64(perDay[tps[i].Date])
		total += credits[i]
	}
	if !normalize || total == 0 {
		return
	}
	for _, i := range idx {
		credits[i] /= total
	}
}
