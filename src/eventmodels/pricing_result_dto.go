package eventmodels

type PricingResultDTO struct {
	ID               string  `json:"id" csv:"id"`
	ContractID       string  `json:"contract_id" csv:"contract_id"`
	Symbol           string  `json:"symbol" csv:"symbol"`
	OptionType       string  `json:"option_type" csv:"option_type"`
	Strike           float64 `json:"strike" csv:"strike"`
	Expiration       string  `json:"expiration,omitempty" csv:"expiration"`
	UnderlyingPrice  float64 `json:"underlying_price" csv:"underlying_price"`
	TickTimestamp    int64   `json:"tick_timestamp" csv:"tick_timestamp"`
	TheoreticalPrice float64 `json:"theoretical_price" csv:"theoretical_price"`
	PricedAt         string  `json:"priced_at" csv:"priced_at"`
}
