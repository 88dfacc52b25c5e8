package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/option-pricer/src/cmd/pricer/run"
	"github.com/jiaming2012/option-pricer/src/eventservices"
	"github.com/jiaming2012/option-pricer/src/logger"
	"github.com/jiaming2012/option-pricer/src/utils"
)

var rootCmd = &cobra.Command{
	Use:   "pricer",
	Short: "Real-time Black-Scholes pricing of option contracts from Polygon trades",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		goEnv, err := cmd.Flags().GetString("go-env")
		if err != nil {
			return fmt.Errorf("error getting go-env: %w", err)
		}

		envDir, err := cmd.Flags().GetString("env-dir")
		if err != nil {
			return fmt.Errorf("error getting env-dir: %w", err)
		}

		if err := utils.InitEnvironmentVariables(envDir, goEnv); err != nil {
			return fmt.Errorf("error loading environment variables: %w", err)
		}

		logger.Setup(os.Stderr, utils.GetEnv("LOG_LEVEL", "info"), utils.GetEnv("LOG_FORMAT", "text"))
		return nil
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream --contracts contracts.yaml",
	Short: "Stream Polygon trades and price the configured contracts on every tick",
	Run: func(cmd *cobra.Command, args []string) {
		contractsFile, err := cmd.Flags().GetString("contracts")
		if err != nil {
			log.Fatalf("error getting contracts: %v", err)
		}

		symbols, err := cmd.Flags().GetStringSlice("symbols")
		if err != nil {
			log.Fatalf("error getting symbols: %v", err)
		}

		csvOut, err := cmd.Flags().GetString("csv-out")
		if err != nil {
			log.Fatalf("error getting csv-out: %v", err)
		}

		statusAddr, err := cmd.Flags().GetString("status-addr")
		if err != nil {
			log.Fatalf("error getting status-addr: %v", err)
		}

		readTimeout, err := cmd.Flags().GetDuration("read-timeout")
		if err != nil {
			log.Fatalf("error getting read-timeout: %v", err)
		}

		maxBackoff, err := cmd.Flags().GetDuration("max-backoff")
		if err != nil {
			log.Fatalf("error getting max-backoff: %v", err)
		}

		tz, err := cmd.Flags().GetString("timezone")
		if err != nil {
			log.Fatalf("error getting timezone: %v", err)
		}

		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("error loading location %s: %v", tz, err)
		}

		apiKey := os.Getenv("POLYGON_API_KEY")
		if apiKey == "" {
			log.Fatalf("missing POLYGON_API_KEY environment variable")
		}

		if statusAddr == "" {
			statusAddr = os.Getenv("STATUS_ADDR")
		}

		backoffCfg := eventservices.DefaultBackoffConfig()
		backoffCfg.MaxInterval = maxBackoff

		err = run.Stream(run.StreamArgs{
			APIKey:        apiKey,
			StreamURL:     utils.GetEnv("POLYGON_STREAM_URL", eventservices.DefaultPolygonStocksStreamURL),
			ContractsFile: contractsFile,
			Symbols:       symbols,
			CSVOut:        csvOut,
			StatusAddr:    statusAddr,
			Location:      loc,
			ReadTimeout:   readTimeout,
			Backoff:       backoffCfg,
			Telemetry:     os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "",
		})

		if err != nil {
			log.Fatalf("stream: %v", err)
		}
	},
}

var quoteCmd = &cobra.Command{
	Use:   "quote --symbol AAPL --strikes 185,190 --expiration 2026-12-18",
	Short: "Print theoretical call and put prices for one underlying price",
	Run: func(cmd *cobra.Command, args []string) {
		symbol, err := cmd.Flags().GetString("symbol")
		if err != nil {
			log.Fatalf("error getting symbol: %v", err)
		}

		strikes, err := cmd.Flags().GetFloat64Slice("strikes")
		if err != nil {
			log.Fatalf("error getting strikes: %v", err)
		}

		expiration, err := cmd.Flags().GetString("expiration")
		if err != nil {
			log.Fatalf("error getting expiration: %v", err)
		}

		years, err := cmd.Flags().GetFloat64("years")
		if err != nil {
			log.Fatalf("error getting years: %v", err)
		}

		rate, err := cmd.Flags().GetFloat64("rate")
		if err != nil {
			log.Fatalf("error getting rate: %v", err)
		}

		vol, err := cmd.Flags().GetFloat64("vol")
		if err != nil {
			log.Fatalf("error getting vol: %v", err)
		}

		spot, err := cmd.Flags().GetFloat64("spot")
		if err != nil {
			log.Fatalf("error getting spot: %v", err)
		}

		tz, err := cmd.Flags().GetString("timezone")
		if err != nil {
			log.Fatalf("error getting timezone: %v", err)
		}

		loc, err := time.LoadLocation(tz)
		if err != nil {
			log.Fatalf("error loading location %s: %v", tz, err)
		}

		if expiration == "" && years <= 0 {
			log.Fatalf("either --expiration or --years is required")
		}

		rows, err := run.Quote(run.QuoteArgs{
			APIKey:       os.Getenv("POLYGON_API_KEY"),
			Symbol:       symbol,
			Spot:         spot,
			Strikes:      strikes,
			Expiration:   expiration,
			YearFraction: years,
			RiskFreeRate: rate,
			Volatility:   vol,
			Location:     loc,
		})

		if err != nil {
			log.Fatalf("quote: %v", err)
		}

		if spot <= 0 && len(rows) > 0 {
			spot = rows[0].Spot
		}

		run.RenderQuote(os.Stdout, symbol, spot, rows)
	},
}

func main() {
	rootCmd.PersistentFlags().String("go-env", "development", "The go environment to run the command in.")
	rootCmd.PersistentFlags().String("env-dir", ".", "The directory containing the .env files.")
	rootCmd.PersistentFlags().String("timezone", "America/New_York", "The location used for contract expiration dates.")

	streamCmd.Flags().String("contracts", "", "The YAML file of contracts to price.")
	streamCmd.Flags().StringSlice("symbols", []string{}, "Extra symbols to subscribe to.")
	streamCmd.Flags().String("csv-out", "", "Write pricing results to this CSV file.")
	streamCmd.Flags().String("status-addr", "", "Serve GET /status on this address. Defaults to STATUS_ADDR.")
	streamCmd.Flags().Duration("read-timeout", 0, "Reconnect when no frame arrives within this duration. 0 disables.")
	streamCmd.Flags().Duration("max-backoff", time.Minute, "The longest wait between reconnect attempts.")
	streamCmd.MarkFlagRequired("contracts")

	quoteCmd.Flags().String("symbol", "", "The underlying stock symbol.")
	quoteCmd.Flags().Float64Slice("strikes", []float64{}, "The strike prices to quote.")
	quoteCmd.Flags().String("expiration", "", "The expiration date, formatted as 2006-01-02.")
	quoteCmd.Flags().Float64("years", 0, "Time to expiry in years. Used when --expiration is omitted.")
	quoteCmd.Flags().Float64("rate", 0.05, "The annualized risk-free rate.")
	quoteCmd.Flags().Float64("vol", 0, "The annualized volatility. Estimated from 90 days of Polygon daily closes when omitted.")
	quoteCmd.Flags().Float64("spot", 0, "The underlying price. Fetched from Polygon when omitted.")
	quoteCmd.MarkFlagRequired("symbol")
	quoteCmd.MarkFlagRequired("strikes")

	rootCmd.AddCommand(streamCmd, quoteCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
