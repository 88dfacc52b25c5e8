package telemetry

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const InstrumentationName = "github.com/jiaming2012/option-pricer"

type PricerMetrics struct {
	TicksReceived   metric.Int64Counter
	FramesDropped   metric.Int64Counter
	Reconnects      metric.Int64Counter
	ResultsEmitted  metric.Int64Counter
	PricingFailures metric.Int64Counter
}

func NewPricerMetrics(meter metric.Meter) (*PricerMetrics, error) {
	ticks, err := meter.Int64Counter("pricer.stream.ticks", metric.WithDescription("Trades received from the market data stream"))
	if err != nil {
		return nil, fmt.Errorf("NewPricerMetrics: ticks: %w", err)
	}

	dropped, err := meter.Int64Counter("pricer.stream.dropped_frames", metric.WithDescription("Inbound frames or events dropped as malformed"))
	if err != nil {
		return nil, fmt.Errorf("NewPricerMetrics: dropped frames: %w", err)
	}

	reconnects, err := meter.Int64Counter("pricer.stream.reconnects", metric.WithDescription("Reconnect attempts after a failed or dropped session"))
	if err != nil {
		return nil, fmt.Errorf("NewPricerMetrics: reconnects: %w", err)
	}

	results, err := meter.Int64Counter("pricer.results", metric.WithDescription("Pricing results emitted"))
	if err != nil {
		return nil, fmt.Errorf("NewPricerMetrics: results: %w", err)
	}

	failures, err := meter.Int64Counter("pricer.failures", metric.WithDescription("Contracts skipped because of invalid pricing input"))
	if err != nil {
		return nil, fmt.Errorf("NewPricerMetrics: failures: %w", err)
	}

	return &PricerMetrics{
		TicksReceived:   ticks,
		FramesDropped:   dropped,
		Reconnects:      reconnects,
		ResultsEmitted:  results,
		PricingFailures: failures,
	}, nil
}

// DefaultPricerMetrics registers counters on the global meter provider, falling back to
// no-op instruments if registration fails.
func DefaultPricerMetrics() *PricerMetrics {
	m, err := NewPricerMetrics(otel.Meter(InstrumentationName))
	if err != nil {
		log.Warnf("DefaultPricerMetrics: using no-op instruments: %v", err)
		m, _ = NewPricerMetrics(noop.NewMeterProvider().Meter(InstrumentationName))
	}

	return m
}
