package eventservices

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

func TestPricingResultCSVWriter(t *testing.T) {
	t.Run("writes a header once followed by one row per result", func(t *testing.T) {
		// arrange
		buf := &bytes.Buffer{}
		writer := NewPricingResultCSVWriter(buf, 8)
		contract := eventmodels.OptionContract{UnderlyingSymbol: "AAPL", Strike: 100, YearFraction: 1, OptionType: eventmodels.Call}
		tick := eventmodels.NewStockTick("AAPL", 101, 1700000000000)

		// act
		require.NoError(t, writer.Emit(context.Background(), eventmodels.NewPricingResult(11.5, contract, tick, tick.Time())))
		require.NoError(t, writer.Emit(context.Background(), eventmodels.NewPricingResult(11.75, contract, tick, tick.Time())))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, writer.Run(ctx))

		// assert
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 3)
		require.Equal(t, "id,contract_id,symbol,option_type,strike,expiration,underlying_price,tick_timestamp,theoretical_price,priced_at", lines[0])
		require.Contains(t, lines[1], ",AAPL,call,")
		require.Contains(t, lines[2], "11.75")
	})

	t.Run("drops results when the buffer is full", func(t *testing.T) {
		writer := NewPricingResultCSVWriter(&bytes.Buffer{}, 1)
		result := eventmodels.NewPricingResult(1, eventmodels.OptionContract{}, eventmodels.StockTick{}, eventmodels.StockTick{}.Time())

		require.NoError(t, writer.Emit(context.Background(), result))
		require.Error(t, writer.Emit(context.Background(), result))
		require.Equal(t, int64(1), writer.Dropped())
	})
}
