package eventmodels

type PricingInput struct {
	Contract        OptionContract
	UnderlyingPrice float64
	RiskFreeRate    float64
	Volatility      float64
	TimeToExpiry    float64
}

func NewPricingInput(params ContractParameters, tick StockTick) PricingInput {
	return PricingInput{
		Contract:        params.Contract,
		UnderlyingPrice: tick.Price,
		RiskFreeRate:    params.RiskFreeRate,
		Volatility:      params.Volatility,
		TimeToExpiry:    params.Contract.TimeToExpiry(tick.Time()),
	}
}
