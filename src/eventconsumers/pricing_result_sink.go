package eventconsumers

import (
	"context"
	"errors"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

// PricingResultSink receives every successfully priced contract. Implementations are called on
// the stream worker and must hand off slow work.
type PricingResultSink interface {
	Emit(ctx context.Context, result eventmodels.PricingResult) error
}

type PricingResultSinkFunc func(ctx context.Context, result eventmodels.PricingResult) error

func (f PricingResultSinkFunc) Emit(ctx context.Context, result eventmodels.PricingResult) error {
	return f(ctx, result)
}

// PricingResultSinks emits to each sink in order and joins their errors.
type PricingResultSinks []PricingResultSink

func (s PricingResultSinks) Emit(ctx context.Context, result eventmodels.PricingResult) error {
	var errs []error
	for _, sink := range s {
		if err := sink.Emit(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
