package eventconsumers

import (
	"context"
	"sort"
	"sync"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

// LatestPricingResults keeps the most recent result per contract.
type LatestPricingResults struct {
	mu      sync.RWMutex
	results map[string]eventmodels.PricingResult
}

func NewLatestPricingResults() *LatestPricingResults {
	return &LatestPricingResults{
		results: make(map[string]eventmodels.PricingResult),
	}
}

func (l *LatestPricingResults) Emit(ctx context.Context, result eventmodels.PricingResult) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := result.Contract.Key()
	if previous, ok := l.results[key]; ok && previous.SourceTick.Timestamp > result.SourceTick.Timestamp {
		return nil
	}

	l.results[key] = result
	return nil
}

// Retain drops results for contracts that are not in cfg and returns how many were dropped.
func (l *LatestPricingResults) Retain(cfg eventmodels.PricingConfig) int {
	keys := cfg.Keys()

	l.mu.Lock()
	defer l.mu.Unlock()

	dropped := 0
	for key := range l.results {
		if _, ok := keys[key]; !ok {
			delete(l.results, key)
			dropped++
		}
	}

	return dropped
}

// Snapshot returns the stored results ordered by symbol, then strike, then option type.
func (l *LatestPricingResults) Snapshot() []eventmodels.PricingResultDTO {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]eventmodels.PricingResultDTO, 0, len(l.results))
	for _, r := range l.results {
		out = append(out, r.ToDTO())
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Symbol != out[j].Symbol {
			return out[i].Symbol < out[j].Symbol
		}

		if out[i].Strike != out[j].Strike {
			return out[i].Strike < out[j].Strike
		}

		return out[i].OptionType < out[j].OptionType
	})

	return out
}
