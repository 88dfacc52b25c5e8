package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

func TestHistoricalVolatility(t *testing.T) {
	t.Run("annualizes the sample deviation of log returns", func(t *testing.T) {
		// arrange
		closes := []float64{100, 110, 100}
		r := math.Log(1.1)

		// act
		vol, err := HistoricalVolatility(closes, TradingDaysPerYear)

		// assert
		require.NoError(t, err)
		require.InDelta(t, r*math.Sqrt2*math.Sqrt(TradingDaysPerYear), vol, 1e-12)
	})

	t.Run("flat prices have no volatility", func(t *testing.T) {
		vol, err := HistoricalVolatility([]float64{50, 50, 50, 50}, TradingDaysPerYear)
		require.NoError(t, err)
		require.Equal(t, 0.0, vol)
	})

	t.Run("rejects short or invalid series", func(t *testing.T) {
		_, err := HistoricalVolatility([]float64{100, 101}, TradingDaysPerYear)
		require.ErrorIs(t, err, eventmodels.ErrInvalidParameter)

		_, err = HistoricalVolatility([]float64{100, 0, 101}, TradingDaysPerYear)
		require.ErrorIs(t, err, eventmodels.ErrInvalidParameter)

		_, err = HistoricalVolatility([]float64{-5, 100, 101}, TradingDaysPerYear)
		require.ErrorIs(t, err, eventmodels.ErrInvalidParameter)
		require.Contains(t, err.Error(), "got -5 at 0")

		_, err = HistoricalVolatility([]float64{100, 101, 102}, 0)
		require.ErrorIs(t, err, eventmodels.ErrInvalidParameter)
	})
}
