package run

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

func TestQuote(t *testing.T) {
	t.Run("prices a call and a put per strike", func(t *testing.T) {
		// arrange
		args := QuoteArgs{
			Symbol:       "aapl",
			Spot:         100,
			Strikes:      []float64{100, 110},
			YearFraction: 1,
			RiskFreeRate: 0.05,
			Volatility:   0.2,
			Location:     time.UTC,
		}

		// act
		rows, err := Quote(args)

		// assert
		require.NoError(t, err)
		require.Len(t, rows, 4)

		assert.Equal(t, eventmodels.Call, rows[0].OptionType)
		assert.InDelta(t, 10.4506, rows[0].Theoretical, 1e-4)
		assert.Equal(t, eventmodels.Put, rows[1].OptionType)
		assert.InDelta(t, 5.5735, rows[1].Theoretical, 1e-4)

		assert.Equal(t, 10.0, rows[3].Intrinsic)
		assert.Equal(t, 100.0, rows[2].Spot)
	})

	t.Run("expiration date is measured from now", func(t *testing.T) {
		now := time.Date(2026, 6, 18, 16, 0, 0, 0, time.UTC)

		rows, err := Quote(QuoteArgs{
			Symbol:       "AAPL",
			Spot:         100,
			Strikes:      []float64{100},
			Expiration:   "2026-12-17",
			RiskFreeRate: 0.05,
			Volatility:   0.2,
			Location:     time.UTC,
			Now:          now,
		})

		require.NoError(t, err)
		assert.InDelta(t, 182.0/365.0, rows[0].TimeToExpiry, 1e-9)
	})

	t.Run("requires a spot or an api key", func(t *testing.T) {
		_, err := Quote(QuoteArgs{Symbol: "AAPL", Strikes: []float64{100}, YearFraction: 1, Volatility: 0.2})
		require.Error(t, err)
	})

	t.Run("requires a volatility or an api key", func(t *testing.T) {
		_, err := Quote(QuoteArgs{Symbol: "AAPL", Spot: 100, Strikes: []float64{100}, YearFraction: 1})
		require.Error(t, err)
	})

	t.Run("rejects invalid parameters", func(t *testing.T) {
		_, err := Quote(QuoteArgs{Symbol: "AAPL", Spot: 100, Strikes: []float64{100}, YearFraction: 1, Volatility: -0.2})
		require.ErrorIs(t, err, eventmodels.ErrInvalidParameter)
	})

	t.Run("bad expiration", func(t *testing.T) {
		_, err := Quote(QuoteArgs{Symbol: "AAPL", Spot: 100, Strikes: []float64{100}, Expiration: "12/18/2026", Volatility: 0.2, Location: time.UTC})
		require.Error(t, err)
	})
}

func TestRenderQuote(t *testing.T) {
	rows := []QuoteRow{
		{Spot: 1250, Volatility: 0.25, OptionType: eventmodels.Call, Strike: 1200, TimeToExpiry: 0.5, Theoretical: 98.7654, Intrinsic: 50},
	}

	out := &strings.Builder{}
	RenderQuote(out, "spy", 1250, rows)

	s := out.String()
	assert.Contains(t, s, "SPY @ $1,250.00")
	assert.Contains(t, s, "$1,200.00")
	assert.Contains(t, s, "$98.7654")
	assert.Contains(t, s, "$48.7654")
	assert.Contains(t, s, "25.0%")
	assert.Contains(t, s, "THEORETICAL")
}
