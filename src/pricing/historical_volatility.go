package pricing

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

const TradingDaysPerYear = 252.0

// HistoricalVolatility annualizes the sample standard deviation of the log returns of closes.
func HistoricalVolatility(closes []float64, periodsPerYear float64) (float64, error) {
	if len(closes) < 3 {
		return 0, eventmodels.NewParameterError("closes", fmt.Sprintf("need at least 3 prices, got %d", len(closes)))
	}

	if !(periodsPerYear > 0) {
		return 0, eventmodels.NewParameterError("periodsPerYear", fmt.Sprintf("must be positive, got %v", periodsPerYear))
	}

	for i, c := range closes {
		if !(c > 0) || math.IsInf(c, 0) {
			return 0, eventmodels.NewParameterError("closes", fmt.Sprintf("prices must be positive and finite, got %v at %d", c, i))
		}
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}

	sd, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0, fmt.Errorf("HistoricalVolatility: failed to calculate the standard deviation: %w", err)
	}

	return sd * math.Sqrt(periodsPerYear), nil
}
