package pricing

import (
	"fmt"
	"math"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

// NormCDF is the standard normal cumulative distribution function.
// 0.5*erfc(-x/√2) equals (1+erf(x/√2))/2 but keeps full precision in the lower tail.
func NormCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// Price computes the Black-Scholes value of a European option.
//
// S is the underlying price, K the strike, T the time to expiration in years, r the
// annualized risk-free rate and sigma the annualized volatility.
func Price(S, K, T, r, sigma float64, optionType eventmodels.OptionType) (float64, error) {
	if err := validate(S, K, T, r, sigma); err != nil {
		return 0, err
	}

	if err := optionType.Validate(); err != nil {
		return 0, fmt.Errorf("Price: %w", err)
	}

	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	discountedStrike := K * math.Exp(-r*T)

	if optionType == eventmodels.Call {
		return S*NormCDF(d1) - discountedStrike*NormCDF(d2), nil
	}

	return discountedStrike*NormCDF(-d2) - S*NormCDF(-d1), nil
}

func PriceInput(in eventmodels.PricingInput) (float64, error) {
	return Price(in.UnderlyingPrice, in.Contract.Strike, in.TimeToExpiry, in.RiskFreeRate, in.Volatility, in.Contract.OptionType)
}

// Intrinsic is the value of exercising the option immediately.
func Intrinsic(S, K float64, optionType eventmodels.OptionType) float64 {
	if optionType == eventmodels.Call {
		return math.Max(S-K, 0)
	}

	return math.Max(K-S, 0)
}

func validate(S, K, T, r, sigma float64) error {
	if !(T > 0) || math.IsInf(T, 0) {
		return eventmodels.NewParameterError("T", fmt.Sprintf("time to expiration must be positive and finite, got %v", T))
	}

	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return eventmodels.NewParameterError("sigma", fmt.Sprintf("volatility must be positive and finite, got %v", sigma))
	}

	if !(S > 0) || math.IsInf(S, 0) {
		return eventmodels.NewParameterError("S", fmt.Sprintf("spot price must be positive and finite, got %v", S))
	}

	if !(K > 0) || math.IsInf(K, 0) {
		return eventmodels.NewParameterError("K", fmt.Sprintf("strike must be positive and finite, got %v", K))
	}

	if math.IsNaN(r) || math.IsInf(r, 0) {
		return eventmodels.NewParameterError("r", fmt.Sprintf("risk-free rate must be finite, got %v", r))
	}

	return nil
}
