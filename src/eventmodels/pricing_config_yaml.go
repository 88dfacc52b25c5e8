package eventmodels

import (
	"fmt"
	"time"
)

type PricingConfigYAML struct {
	RiskFreeRate float64              `yaml:"riskFreeRate"`
	Volatility   float64              `yaml:"volatility"`
	Contracts    []OptionContractYAML `yaml:"contracts"`
}

type OptionContractYAML struct {
	Symbol       string   `yaml:"symbol"`
	Strike       float64  `yaml:"strike"`
	Expiration   string   `yaml:"expiration,omitempty"`
	YearFraction float64  `yaml:"yearFraction,omitempty"`
	Type         string   `yaml:"type"`
	RiskFreeRate *float64 `yaml:"riskFreeRate,omitempty"`
	Volatility   *float64 `yaml:"volatility,omitempty"`
}

// ToModel converts the file representation into a validated PricingConfig. Per-contract
// rate and volatility override the file-wide defaults.
func (y *PricingConfigYAML) ToModel(loc *time.Location) (PricingConfig, error) {
	if len(y.Contracts) == 0 {
		return PricingConfig{}, fmt.Errorf("PricingConfigYAML: ToModel: no contracts configured")
	}

	var cfg PricingConfig
	for i, c := range y.Contracts {
		optionType, err := NewOptionType(c.Type)
		if err != nil {
			return PricingConfig{}, fmt.Errorf("PricingConfigYAML: contract %d: %w", i, err)
		}

		var expiration time.Time
		if c.Expiration != "" {
			expiration, err = time.ParseInLocation("2006-01-02", c.Expiration, loc)
			if err != nil {
				return PricingConfig{}, fmt.Errorf("PricingConfigYAML: contract %d: failed to parse expiration: %w", i, err)
			}

			// options stop trading at the close of the expiration date
			expiration = expiration.Add(16 * time.Hour)
		}

		contract := NewOptionContract(NewStockSymbol(c.Symbol), c.Strike, expiration, optionType)
		contract.YearFraction = c.YearFraction

		params := ContractParameters{
			Contract:     contract,
			RiskFreeRate: y.RiskFreeRate,
			Volatility:   y.Volatility,
		}

		if c.RiskFreeRate != nil {
			params.RiskFreeRate = *c.RiskFreeRate
		}

		if c.Volatility != nil {
			params.Volatility = *c.Volatility
		}

		if err := params.Validate(); err != nil {
			return PricingConfig{}, fmt.Errorf("PricingConfigYAML: contract %d (%s): %w", i, contract, err)
		}

		cfg.Contracts = append(cfg.Contracts, params)
	}

	return cfg, nil
}
