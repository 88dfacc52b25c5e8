package eventpubsub

import (
	"context"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

type StreamError struct {
	Kind    eventmodels.ErrorKind
	Message string
}

func (b *Bus) Emit(ctx context.Context, result eventmodels.PricingResult) error {
	b.Publish(PricingResultEvent, result)
	return nil
}

func (b *Bus) OnTick(tick eventmodels.StockTick) {
	b.Publish(StockTickEvent, tick)
}

func (b *Bus) OnStateChange(state eventmodels.ConnectionState) {
	b.Publish(ConnectionStateEvent, state)
}

func (b *Bus) OnError(kind eventmodels.ErrorKind, message string) {
	b.Publish(StreamErrorEvent, StreamError{Kind: kind, Message: message})
}
