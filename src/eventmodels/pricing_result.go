package eventmodels

import (
	"time"

	"github.com/google/uuid"
)

type PricingResult struct {
	ID               uuid.UUID      `json:"id"`
	TheoreticalPrice float64        `json:"theoretical_price"`
	Contract         OptionContract `json:"contract"`
	SourceTick       StockTick      `json:"source_tick"`
	PricedAt         time.Time      `json:"priced_at"`
}

func NewPricingResult(price float64, contract OptionContract, tick StockTick, pricedAt time.Time) PricingResult {
	return PricingResult{
		ID:               uuid.New(),
		TheoreticalPrice: price,
		Contract:         contract,
		SourceTick:       tick,
		PricedAt:         pricedAt,
	}
}

func (r PricingResult) ToDTO() PricingResultDTO {
	var expiration string
	if !r.Contract.Expiration.IsZero() {
		expiration = r.Contract.Expiration.Format("2006-01-02")
	}

	return PricingResultDTO{
		ID:               r.ID.String(),
		ContractID:       r.Contract.ID.String(),
		Symbol:           r.Contract.UnderlyingSymbol.String(),
		OptionType:       string(r.Contract.OptionType),
		Strike:           r.Contract.Strike,
		Expiration:       expiration,
		UnderlyingPrice:  r.SourceTick.Price,
		TickTimestamp:    r.SourceTick.Timestamp,
		TheoreticalPrice: r.TheoreticalPrice,
		PricedAt:         r.PricedAt.UTC().Format(time.RFC3339Nano),
	}
}
