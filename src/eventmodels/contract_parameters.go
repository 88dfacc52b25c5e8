package eventmodels

import (
	"fmt"

	"github.com/google/uuid"
)

// ContractParameters pairs a contract with the externally supplied model inputs used to price it.
type ContractParameters struct {
	Contract     OptionContract `json:"contract"`
	RiskFreeRate float64        `json:"risk_free_rate"`
	Volatility   float64        `json:"volatility"`
}

func (p ContractParameters) Validate() error {
	if err := p.Contract.Validate(); err != nil {
		return err
	}

	if !(p.Volatility > 0) {
		return NewParameterError("volatility", fmt.Sprintf("must be positive, got %v", p.Volatility))
	}

	return nil
}

type PricingConfig struct {
	Contracts []ContractParameters `json:"contracts"`
}

func (c PricingConfig) Copy() PricingConfig {
	contracts := make([]ContractParameters, len(c.Contracts))
	copy(contracts, c.Contracts)
	return PricingConfig{Contracts: contracts}
}

// Symbols returns the distinct underlyings referenced by the configuration.
func (c PricingConfig) Symbols() []StockSymbol {
	symbols := make([]StockSymbol, 0, len(c.Contracts))
	for _, p := range c.Contracts {
		symbols = append(symbols, p.Contract.UnderlyingSymbol)
	}

	return UniqueStockSymbols(symbols)
}

func (c PricingConfig) ForSymbol(symbol StockSymbol) []ContractParameters {
	var out []ContractParameters
	for _, p := range c.Contracts {
		if p.Contract.UnderlyingSymbol == symbol {
			out = append(out, p)
		}
	}

	return out
}

// Keys returns the set of contract keys in the configuration.
func (c PricingConfig) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, len(c.Contracts))
	for _, p := range c.Contracts {
		keys[p.Contract.Key()] = struct{}{}
	}

	return keys
}

// WithIDsFrom returns a copy of c in which every contract also present in previous keeps
// its previous ID.
func (c PricingConfig) WithIDsFrom(previous PricingConfig) PricingConfig {
	ids := make(map[string]uuid.UUID, len(previous.Contracts))
	for _, p := range previous.Contracts {
		ids[p.Contract.Key()] = p.Contract.ID
	}

	out := c.Copy()
	for i := range out.Contracts {
		if id, ok := ids[out.Contracts[i].Contract.Key()]; ok {
			out.Contracts[i].Contract.ID = id
		}
	}

	return out
}
