package eventconsumers

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
	"github.com/jiaming2012/option-pricer/src/pricing"
	"github.com/jiaming2012/option-pricer/src/telemetry"
)

// PricingCoordinator prices every configured contract on each tick of its underlying.
// The configuration is replaced atomically, so a tick always sees one consistent snapshot.
type PricingCoordinator struct {
	config  atomic.Pointer[eventmodels.PricingConfig]
	sink    PricingResultSink
	metrics *telemetry.PricerMetrics
	tracer  trace.Tracer
	now     func() time.Time
}

func NewPricingCoordinator(cfg eventmodels.PricingConfig, sink PricingResultSink) (*PricingCoordinator, error) {
	if sink == nil {
		return nil, fmt.Errorf("NewPricingCoordinator: missing sink")
	}

	c := &PricingCoordinator{
		sink:    sink,
		metrics: telemetry.DefaultPricerMetrics(),
		tracer:  otel.Tracer(telemetry.InstrumentationName),
		now:     time.Now,
	}

	c.UpdateConfig(cfg)

	return c, nil
}

// UpdateConfig swaps in cfg. Contracts that were already configured keep their IDs.
func (c *PricingCoordinator) UpdateConfig(cfg eventmodels.PricingConfig) {
	snapshot := cfg.Copy()
	if previous := c.config.Load(); previous != nil {
		snapshot = cfg.WithIDsFrom(*previous)
	}

	c.config.Store(&snapshot)

	log.Infof("PricingCoordinator: configured %d contracts on %v", len(snapshot.Contracts), snapshot.Symbols())
}

func (c *PricingCoordinator) Snapshot() eventmodels.PricingConfig {
	return c.config.Load().Copy()
}

// OnTick prices all contracts written on the tick's symbol before returning. Invalid contracts
// are logged and skipped without affecting the others.
func (c *PricingCoordinator) OnTick(tick eventmodels.StockTick) {
	ctx, span := c.tracer.Start(context.Background(), "PricingCoordinator.OnTick", trace.WithAttributes(
		attribute.String("symbol", tick.Symbol.String()),
		attribute.Float64("price", tick.Price),
	))
	defer span.End()

	if err := tick.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		log.WithContext(ctx).Warnf("PricingCoordinator: rejected tick %+v: %v", tick, err)
		return
	}

	cfg := c.config.Load()

	emitted := 0
	for _, params := range cfg.ForSymbol(tick.Symbol) {
		in := eventmodels.NewPricingInput(params, tick)

		price, err := pricing.PriceInput(in)
		if err != nil {
			c.metrics.PricingFailures.Add(ctx, 1)
			log.WithContext(ctx).WithFields(log.Fields{
				"contract": params.Contract.String(),
				"kind":     eventmodels.ErrorKindOf(err),
			}).Warnf("PricingCoordinator: skipping contract: %v", err)
			continue
		}

		result := eventmodels.NewPricingResult(price, params.Contract, tick, c.now())
		if err := c.sink.Emit(ctx, result); err != nil {
			log.WithContext(ctx).Errorf("PricingCoordinator: failed to emit result for %s: %v", params.Contract, err)
			continue
		}

		c.metrics.ResultsEmitted.Add(ctx, 1)
		emitted++
	}

	span.SetAttributes(attribute.Int("results", emitted))
}

func (c *PricingCoordinator) OnStateChange(state eventmodels.ConnectionState) {
	log.Infof("PricingCoordinator: stream is %s", state)
}

func (c *PricingCoordinator) OnError(kind eventmodels.ErrorKind, message string) {
	log.WithField("kind", kind).Errorf("PricingCoordinator: stream error: %s", message)
}
