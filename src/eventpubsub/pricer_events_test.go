package eventpubsub

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

func TestBus(t *testing.T) {
	t.Run("delivers pricer events to subscribers", func(t *testing.T) {
		// arrange
		bus := New()

		var mu sync.Mutex
		var results []eventmodels.PricingResult
		var states []eventmodels.ConnectionState
		var streamErrors []StreamError

		require.NoError(t, bus.Subscribe(PricingResultEvent, func(r eventmodels.PricingResult) {
			mu.Lock()
			defer mu.Unlock()
			results = append(results, r)
		}))

		require.NoError(t, bus.Subscribe(ConnectionStateEvent, func(s eventmodels.ConnectionState) {
			mu.Lock()
			defer mu.Unlock()
			states = append(states, s)
		}))

		require.NoError(t, bus.Subscribe(StreamErrorEvent, func(e StreamError) {
			mu.Lock()
			defer mu.Unlock()
			streamErrors = append(streamErrors, e)
		}))

		contract := eventmodels.OptionContract{UnderlyingSymbol: "AAPL", Strike: 100, YearFraction: 1, OptionType: eventmodels.Call}
		tick := eventmodels.NewStockTick("AAPL", 101, 1700000000000)

		// act
		require.NoError(t, bus.Emit(context.Background(), eventmodels.NewPricingResult(11.2, contract, tick, tick.Time())))
		bus.OnStateChange(eventmodels.Subscribed)
		bus.OnError(eventmodels.TransportClosedUnexpectedly, "eof")
		bus.WaitAsync()

		// assert
		mu.Lock()
		defer mu.Unlock()

		require.Len(t, results, 1)
		require.Equal(t, 11.2, results[0].TheoreticalPrice)
		require.Equal(t, []eventmodels.ConnectionState{eventmodels.Subscribed}, states)
		require.Equal(t, []StreamError{{Kind: eventmodels.TransportClosedUnexpectedly, Message: "eof"}}, streamErrors)
	})

	t.Run("publishing without subscribers is a no-op", func(t *testing.T) {
		bus := New()
		bus.OnTick(eventmodels.NewStockTick("AAPL", 1, 1))
		bus.WaitAsync()
	})
}
