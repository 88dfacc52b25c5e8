package run

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/option-pricer/src/eventconsumers"
	"github.com/jiaming2012/option-pricer/src/eventmodels"
)

func writeContracts(t *testing.T, path string, strike string) {
	doc := "riskFreeRate: 0.05\nvolatility: 0.2\ncontracts:\n  - symbol: AAPL\n    strike: " + strike + "\n    expiration: 2026-12-18\n    type: call\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
}

func TestReloadContracts(t *testing.T) {
	// arrange
	path := filepath.Join(t.TempDir(), "contracts.yaml")
	writeContracts(t, path, "190")

	args := StreamArgs{ContractsFile: path, Location: time.UTC}
	cfg, err := LoadPricingConfig(path, time.UTC)
	require.NoError(t, err)

	latest := eventconsumers.NewLatestPricingResults()
	coordinator, err := eventconsumers.NewPricingCoordinator(cfg, latest)
	require.NoError(t, err)

	subscribed := []eventmodels.StockSymbol{"AAPL"}
	coordinator.OnTick(eventmodels.NewStockTick("AAPL", 100, 1700000000000))

	before := latest.Snapshot()
	require.Len(t, before, 1)

	t.Run("reloading an unchanged file keeps one result per contract", func(t *testing.T) {
		// act
		reloadContracts(coordinator, latest, args, subscribed)
		coordinator.OnTick(eventmodels.NewStockTick("AAPL", 101, 1700000001000))

		// assert
		after := latest.Snapshot()
		require.Len(t, after, 1)
		require.Equal(t, 101.0, after[0].UnderlyingPrice)
		require.Equal(t, before[0].ContractID, after[0].ContractID)
	})

	t.Run("removed contracts are dropped", func(t *testing.T) {
		// arrange
		writeContracts(t, path, "200")

		// act
		reloadContracts(coordinator, latest, args, subscribed)

		// assert
		require.Empty(t, latest.Snapshot())

		coordinator.OnTick(eventmodels.NewStockTick("AAPL", 102, 1700000002000))
		after := latest.Snapshot()
		require.Len(t, after, 1)
		require.Equal(t, 200.0, after[0].Strike)
	})

	t.Run("an invalid file keeps the previous contracts", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte("contracts: [::"), 0o600))

		reloadContracts(coordinator, latest, args, subscribed)

		require.Len(t, latest.Snapshot(), 1)
		require.Equal(t, 200.0, coordinator.Snapshot().Contracts[0].Contract.Strike)
	})
}
