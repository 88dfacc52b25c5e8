package eventmodels

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const daysPerYear = 365.0

// OptionContract is a European option on a single underlying. Either Expiration or
// YearFraction determines the time to expiry; Expiration wins when both are set.
type OptionContract struct {
	ID               uuid.UUID   `json:"id"`
	UnderlyingSymbol StockSymbol `json:"underlying_symbol"`
	Strike           float64     `json:"strike"`
	Expiration       time.Time   `json:"expiration"`
	YearFraction     float64     `json:"year_fraction,omitempty"`
	OptionType       OptionType  `json:"option_type"`
}

func NewOptionContract(symbol StockSymbol, strike float64, expiration time.Time, optionType OptionType) OptionContract {
	return OptionContract{
		ID:               uuid.New(),
		UnderlyingSymbol: NewStockSymbol(string(symbol)),
		Strike:           strike,
		Expiration:       expiration,
		OptionType:       optionType,
	}
}

// TimeToExpiry returns the time remaining until expiration in years.
func (c OptionContract) TimeToExpiry(at time.Time) float64 {
	if c.Expiration.IsZero() {
		return c.YearFraction
	}

	return c.Expiration.Sub(at).Hours() / 24.0 / daysPerYear
}

func (c OptionContract) Validate() error {
	if c.UnderlyingSymbol == "" {
		return NewParameterError("underlyingSymbol", "must not be empty")
	}

	if !(c.Strike > 0) {
		return NewParameterError("strike", fmt.Sprintf("must be positive, got %v", c.Strike))
	}

	if c.Expiration.IsZero() && !(c.YearFraction > 0) {
		return NewParameterError("expiration", "either an expiration date or a positive year fraction is required")
	}

	return c.OptionType.Validate()
}

// Key identifies the contract by its terms, so a contract rebuilt from the same
// configuration maps to the same key even though its ID differs.
func (c OptionContract) Key() string {
	if c.Expiration.IsZero() {
		return fmt.Sprintf("%s|%g|%s|T=%g", c.UnderlyingSymbol, c.Strike, c.OptionType, c.YearFraction)
	}

	return fmt.Sprintf("%s|%g|%s|%s", c.UnderlyingSymbol, c.Strike, c.OptionType, c.Expiration.UTC().Format(time.RFC3339))
}

func (c OptionContract) String() string {
	if c.Expiration.IsZero() {
		return fmt.Sprintf("%s %.2f %s T=%.4f", c.UnderlyingSymbol, c.Strike, c.OptionType, c.YearFraction)
	}

	return fmt.Sprintf("%s %.2f %s %s", c.UnderlyingSymbol, c.Strike, c.OptionType, c.Expiration.Format("2006-01-02"))
}
