package run

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-pricer/src/eventconsumers"
	"github.com/jiaming2012/option-pricer/src/eventmodels"
	"github.com/jiaming2012/option-pricer/src/eventpubsub"
	"github.com/jiaming2012/option-pricer/src/eventservices"
	"github.com/jiaming2012/option-pricer/src/handler"
	"github.com/jiaming2012/option-pricer/src/telemetry"
)

const stopTimeout = 5 * time.Second

type StreamArgs struct {
	APIKey        string
	StreamURL     string
	ContractsFile string
	Symbols       []string
	CSVOut        string
	StatusAddr    string
	Location      *time.Location
	ReadTimeout   time.Duration
	Backoff       eventservices.BackoffConfig
	Telemetry     bool
}

// Stream runs the pricing pipeline until SIGINT or SIGTERM. SIGHUP reloads the contracts file.
func Stream(args StreamArgs) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if args.Telemetry {
		otelShutdown, setupErr := telemetry.SetupOTelSDK(ctx, "option-pricer")
		if setupErr != nil {
			return fmt.Errorf("Stream: failed to set up telemetry: %w", setupErr)
		}

		defer func() {
			err = errors.Join(err, otelShutdown(context.Background()))
		}()
	}

	cfg, err := LoadPricingConfig(args.ContractsFile, args.Location)
	if err != nil {
		return err
	}

	symbols := cfg.Symbols()
	for _, s := range args.Symbols {
		symbols = append(symbols, eventmodels.NewStockSymbol(s))
	}

	bus := eventpubsub.New()
	if err := bus.Subscribe(eventpubsub.PricingResultEvent, printPricingResult); err != nil {
		return fmt.Errorf("Stream: failed to subscribe to pricing results: %w", err)
	}

	latest := eventconsumers.NewLatestPricingResults()
	sinks := eventconsumers.PricingResultSinks{bus, latest}

	sinkCtx, cancelSinks := context.WithCancel(context.Background())
	defer cancelSinks()

	var csvDone chan error
	if args.CSVOut != "" {
		f, err := os.OpenFile(args.CSVOut, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("Stream: failed to open %s: %w", args.CSVOut, err)
		}
		defer f.Close()

		csvWriter := eventservices.NewPricingResultCSVWriter(f, 0)
		sinks = append(sinks, csvWriter)

		csvDone = make(chan error, 1)
		go func() {
			csvDone <- csvWriter.Run(sinkCtx)
		}()
	}

	coordinator, err := eventconsumers.NewPricingCoordinator(cfg, sinks)
	if err != nil {
		return err
	}

	clientCfg := eventservices.DefaultPolygonStreamClientConfig(args.APIKey)
	if args.StreamURL != "" {
		clientCfg.URL = args.StreamURL
	}
	clientCfg.ReadTimeout = args.ReadTimeout
	if args.Backoff.InitialInterval > 0 {
		clientCfg.Backoff = args.Backoff
	}

	client, err := eventservices.NewPolygonStreamClient(clientCfg, nil, eventservices.MultiStreamObserver(coordinator, bus))
	if err != nil {
		return err
	}

	var srv *http.Server
	if args.StatusAddr != "" {
		router := mux.NewRouter()
		handler.SetupHandler(router, client, latest)

		srv = &http.Server{
			Addr:              args.StatusAddr,
			Handler:           handler.NewServerHandler(router),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			log.Infof("status server listening on %s", args.StatusAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("status server: %v", err)
			}
		}()
	}

	if err := client.Start(symbols); err != nil {
		return err
	}

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)

	for running := true; running; {
		select {
		case <-ctx.Done():
			running = false
		case <-client.Done():
			running = false
		case <-reload:
			reloadContracts(coordinator, latest, args, symbols)
		}
	}

	log.Info("shutting down")
	client.Stop()

	select {
	case <-client.Done():
	case <-time.After(stopTimeout):
		log.Warnf("stream did not stop within %v", stopTimeout)
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("status server shutdown: %v", err)
		}
	}

	bus.WaitAsync()
	cancelSinks()

	if csvDone != nil {
		if err := <-csvDone; err != nil {
			return fmt.Errorf("Stream: csv writer: %w", err)
		}
	}

	return nil
}

// reloadContracts swaps in the contracts file and drops stored results of contracts it no
// longer lists.
func reloadContracts(coordinator *eventconsumers.PricingCoordinator, latest *eventconsumers.LatestPricingResults, args StreamArgs, subscribed []eventmodels.StockSymbol) {
	cfg, err := LoadPricingConfig(args.ContractsFile, args.Location)
	if err != nil {
		log.Errorf("reload: keeping previous contracts: %v", err)
		return
	}

	known := make(map[eventmodels.StockSymbol]bool, len(subscribed))
	for _, s := range subscribed {
		known[s] = true
	}

	for _, s := range cfg.Symbols() {
		if !known[s] {
			log.Warnf("reload: %s is not subscribed, restart to receive its ticks", s)
		}
	}

	coordinator.UpdateConfig(cfg)

	if dropped := latest.Retain(cfg); dropped > 0 {
		log.Infof("reload: dropped %d results of removed contracts", dropped)
	}
}

func printPricingResult(result eventmodels.PricingResult) {
	data, err := json.Marshal(result.ToDTO())
	if err != nil {
		log.Errorf("printPricingResult: %v", err)
		return
	}

	fmt.Println(string(data))
}
