// Package attribution computes multi-touch attribution: it resolves
// interactions to customers, bounds them by each customer's conversion and
// allocates normalized credit and revenue.
package attribution

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/attribution-cli/internal/match"
	"github.com/sells-group/attribution-cli/internal/model"
	"github.com/sells-group/attribution-cli/internal/phone"
	"github.com/sells-group/attribution-cli/internal/report"
)

// Input is one batch of attribution data. Revenue nil means no revenue was
// supplied; an empty non-nil slice means revenue was supplied with no rows.
type Input struct {
	Interactions   []model.Interaction  `json:"interactions"`
	Customers      []model.Customer     `json:"customers"`
	Revenue        []model.RevenueEvent `json:"revenue,omitempty"`
	ChannelMapping map[string]string    `json:"channel_mapping,omitempty"`
}

// Outcome is a completed attribution run.
type Outcome struct {
	View    *report.View
	Summary model.RunSummary
}

// Engine runs the attribution pipeline. It holds no per-run state and may
// be reused across calls.
type Engine struct {
	cfg        model.Config
	phones     *phone.Normalizer
	dateLayout string
}

// Option configures an Engine.
type Option func(*Engine)

// WithNormalizer shares a phone normalizer (and its validation cache).
func WithNormalizer(n *phone.Normalizer) Option {
	return func(e *Engine) { e.phones = n }
}

// WithDateLayout sets a Go layout tried before the built-in date layouts.
func WithDateLayout(layout string) Option {
	return func(e *Engine) { e.dateLayout = layout }
}

// NewEngine validates cfg and returns an engine.
func NewEngine(cfg model.Config, opts ...Option) (*Engine, error) {
	ct, err := model.ParseConversionType(string(cfg.ConversionType))
	if err != nil {
		return nil, err
	}
	cfg.ConversionType = ct
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.phones == nil {
		e.phones = phone.NewNormalizer(0)
	}
	zap.L().Info("initialized attribution engine", zap.String("conversion_type", string(cfg.ConversionType)))
	return e, nil
}

// Config returns the engine's effective configuration.
func (e *Engine) Config() model.Config { return e.cfg }

// Calculate runs the pipeline and returns the attributed touchpoints.
func (e *Engine) Calculate(ctx context.Context, in Input) (*report.View, error) {
	out, err := e.Run(ctx, in)
	if err != nil {
		return nil, err
	}
	return out.View, nil
}

// Run is Calculate plus run statistics. It either returns a complete result
// or an error; no partial output is produced.
func (e *Engine) Run(ctx context.Context, in Input) (*Outcome, error) {
	log := zap.L().With(zap.String("component", "attribution_engine"))
	log.Info("starting attribution calculation",
		zap.Int("interactions", len(in.Interactions)),
		zap.Int("customers", len(in.Customers)),
		zap.Int("revenue_rows", len(in.Revenue)),
	)

	haveRevenue := in.Revenue != nil
	if err := CheckConversionType(e.cfg.ConversionType, haveRevenue); err != nil {
		return nil, eris.Wrap(err, "attribution: check config")
	}

	summary := model.RunSummary{
		Interactions: len(in.Interactions),
		Customers:    len(in.Customers),
		RevenueRows:  len(in.Revenue),
		HasRevenue:   haveRevenue,
	}
	empty := func(reason string) *Outcome {
		log.Warn(reason)
		return &Outcome{View: report.Empty(haveRevenue), Summary: summary}
	}

	resolver := match.NewResolver(in.Customers, e.phones)
	matched := resolver.MatchAll(in.Interactions)
	summary.Matches = match.Statistics(matched)
	if len(matched) == 0 {
		return empty("no interactions matched to customers"), nil
	}

	tps := PrepareTouchpoints(matched, in.ChannelMapping, e.dateLayout)

	conv, err := ResolveConversions(e.cfg.ConversionType, in.Customers, in.Revenue, e.dateLayout)
	if err != nil {
		return nil, eris.Wrap(err, "attribution: resolve conversions")
	}

	tps = FilterTouchpoints(e.cfg, tps, conv)
	if len(tps) == 0 {
		return empty("no pre-conversion touchpoints found"), nil
	}

	records, err := AllocateCredit(ctx, e.cfg, tps)
	if err != nil {
		return nil, eris.Wrap(err, "attribution: allocate credit")
	}

	if haveRevenue {
		records = AttributeRevenue(records, in.Revenue, conv, e.dateLayout)
	}

	view := report.FromRecords(records, haveRevenue)
	summary.Touchpoints = view.Len()
	summary.Attributed = view.UniqueCustomers()
	summary.Channels = view.UniqueChannels()
	summary.TotalCredit = view.TotalCredit()
	summary.TotalRevenue = view.TotalRevenue()

	log.Info("attribution complete",
		zap.Int("touchpoints", summary.Touchpoints),
		zap.Int("customers", summary.Attributed),
	)
	return &Outcome{View: view, Summary: summary}, nil
}

// ChannelReport summarizes a result by channel.
func (e *Engine) ChannelReport(v *report.View) []report.ChannelSummary {
	return v.ByChannel()
}
