package eventservices

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"github.com/jiaming2012/option-pricer/src/eventmodels"
	"github.com/jiaming2012/option-pricer/src/telemetry"
)

const DefaultPolygonStocksStreamURL = "wss://socket.polygon.io/stocks"

var ErrStreamStopping = errors.New("stream is stopping")
var ErrStreamNotRunning = errors.New("stream is not running")

type BackoffConfig struct {
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64
	// MaxElapsedTime bounds how long the client keeps retrying a failing endpoint before it
	// parks in Failed. Zero retries forever.
	MaxElapsedTime time.Duration
}

func DefaultBackoffConfig() BackoffConfig {
	return BackoffConfig{
		InitialInterval:     time.Second,
		MaxInterval:         time.Minute,
		Multiplier:          2,
		RandomizationFactor: 0.5,
	}
}

func (c BackoffConfig) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialInterval
	b.MaxInterval = c.MaxInterval
	b.Multiplier = c.Multiplier
	b.RandomizationFactor = c.RandomizationFactor
	b.MaxElapsedTime = c.MaxElapsedTime
	b.Reset()
	return b
}

type PolygonStreamClientConfig struct {
	URL    string
	APIKey string
	// AuthTimeout bounds the wait for the provider's auth acknowledgement.
	AuthTimeout time.Duration
	// ReadTimeout, when positive, treats a silent connection as dropped.
	ReadTimeout time.Duration
	Backoff     BackoffConfig
}

func DefaultPolygonStreamClientConfig(apiKey string) PolygonStreamClientConfig {
	return PolygonStreamClientConfig{
		URL:         DefaultPolygonStocksStreamURL,
		APIKey:      apiKey,
		AuthTimeout: 10 * time.Second,
		Backoff:     DefaultBackoffConfig(),
	}
}

// PolygonStreamClient keeps one authenticated trade subscription alive against the Polygon
// stocks websocket and reports normalized ticks to its observer.
type PolygonStreamClient struct {
	cfg      PolygonStreamClientConfig
	dialer   StreamDialer
	observer PolygonStreamObserver
	metrics  *telemetry.PricerMetrics

	state       atomic.Int32
	parseErrors atomic.Int64

	mu          sync.Mutex
	apiKey      string
	cancel      context.CancelFunc
	done        chan struct{}
	reconnectCh chan struct{}
	stopping    bool
}

func NewPolygonStreamClient(cfg PolygonStreamClientConfig, dialer StreamDialer, observer PolygonStreamObserver) (*PolygonStreamClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("NewPolygonStreamClient: missing api key")
	}

	if observer == nil {
		return nil, fmt.Errorf("NewPolygonStreamClient: missing observer")
	}

	if cfg.URL == "" {
		cfg.URL = DefaultPolygonStocksStreamURL
	}

	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = 10 * time.Second
	}

	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff = DefaultBackoffConfig()
	}

	if dialer == nil {
		dialer = NewWebsocketStreamDialer(cfg.AuthTimeout)
	}

	c := &PolygonStreamClient{
		cfg:      cfg,
		dialer:   dialer,
		observer: observer,
		metrics:  telemetry.DefaultPricerMetrics(),
		apiKey:   cfg.APIKey,
	}

	c.state.Store(int32(eventmodels.Disconnected))

	return c, nil
}

func (c *PolygonStreamClient) State() eventmodels.ConnectionState {
	return eventmodels.ConnectionState(c.state.Load())
}

// ParseErrors is the number of inbound frames or events dropped as malformed.
func (c *PolygonStreamClient) ParseErrors() int64 {
	return c.parseErrors.Load()
}

// SetAPIKey replaces the credential used from the next authentication onwards.
func (c *PolygonStreamClient) SetAPIKey(apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.apiKey = apiKey
}

// Start launches the session worker and returns immediately. It is a no-op while a worker
// is already running.
func (c *PolygonStreamClient) Start(symbols []eventmodels.StockSymbol) error {
	symbols = eventmodels.UniqueStockSymbols(symbols)
	if len(symbols) == 0 {
		return fmt.Errorf("PolygonStreamClient: Start: no symbols")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning() {
		if c.stopping {
			return fmt.Errorf("PolygonStreamClient: Start: %w", ErrStreamStopping)
		}

		log.Debugf("PolygonStreamClient: Start: already running")
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.reconnectCh = make(chan struct{}, 1)
	c.stopping = false

	go c.run(ctx, symbols, c.done, c.reconnectCh)

	return nil
}

// Stop requests a graceful shutdown without waiting for it. The worker closes the transport,
// which unblocks any pending read, and finishes in Disconnected. Use Done to wait.
func (c *PolygonStreamClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning() {
		return
	}

	c.stopping = true
	c.cancel()
}

// Reconnect leaves the Failed state, skipping any pending backoff delay. It is ignored in
// any other state.
func (c *PolygonStreamClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning() || c.stopping {
		return fmt.Errorf("PolygonStreamClient: Reconnect: %w", ErrStreamNotRunning)
	}

	if c.State() != eventmodels.Failed {
		log.Debugf("PolygonStreamClient: Reconnect: ignored in state %s", c.State())
		return nil
	}

	select {
	case c.reconnectCh <- struct{}{}:
	default:
	}

	return nil
}

// Done is closed once the current worker has exited.
func (c *PolygonStreamClient) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}

	return c.done
}

func (c *PolygonStreamClient) isRunning() bool {
	if c.done == nil {
		return false
	}

	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

func (c *PolygonStreamClient) currentAPIKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.apiKey
}

func (c *PolygonStreamClient) setState(state eventmodels.ConnectionState) {
	previous := eventmodels.ConnectionState(c.state.Swap(int32(state)))
	if previous == state {
		return
	}

	log.WithFields(log.Fields{
		"from": previous,
		"to":   state,
	}).Debug("polygon stream state change")

	c.observer.OnStateChange(state)
}

func (c *PolygonStreamClient) run(ctx context.Context, symbols []eventmodels.StockSymbol, done chan struct{}, reconnectCh chan struct{}) {
	defer close(done)

	policy := c.cfg.Backoff.newBackOff()

	for ctx.Err() == nil {
		c.setState(eventmodels.Connecting)

		err := c.runSession(ctx, symbols, policy)
		if ctx.Err() != nil {
			break
		}

		kind := eventmodels.ErrorKindOf(err)
		log.WithField("kind", kind).Errorf("polygon stream session ended: %v", err)
		c.observer.OnError(kind, err.Error())

		if kind == eventmodels.AuthenticationError {
			c.setState(eventmodels.Failed)
			if !c.awaitReconnect(ctx, reconnectCh) {
				break
			}

			policy.Reset()
			continue
		}

		if kind == eventmodels.TransportClosedUnexpectedly {
			c.setState(eventmodels.Connecting)
		} else {
			c.setState(eventmodels.Failed)
		}

		delay := policy.NextBackOff()
		if delay == backoff.Stop {
			log.Warnf("polygon stream: retry budget of %v exhausted, waiting for reconnect request", c.cfg.Backoff.MaxElapsedTime)
			c.setState(eventmodels.Failed)
			if !c.awaitReconnect(ctx, reconnectCh) {
				break
			}

			policy.Reset()
			continue
		}

		c.metrics.Reconnects.Add(ctx, 1)
		log.Infof("polygon stream: reconnecting in %v", delay)

		if !c.sleepOrReconnect(ctx, delay, reconnectCh) {
			break
		}
	}

	c.setState(eventmodels.Closing)
	c.setState(eventmodels.Disconnected)
}

func (c *PolygonStreamClient) runSession(ctx context.Context, symbols []eventmodels.StockSymbol, policy backoff.BackOff) error {
	conn, err := c.dialer.Dial(ctx, c.cfg.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", eventmodels.ErrConnection, err)
	}

	sessionDone := make(chan struct{})
	defer func() {
		close(sessionDone)
		if err := conn.Close(); err != nil {
			log.Debugf("polygon stream: close: %v", err)
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-sessionDone:
		}
	}()

	c.setState(eventmodels.Authenticating)

	if err := c.authenticate(conn); err != nil {
		return err
	}

	msg, err := BuildSubscribeMessage(symbols)
	if err != nil {
		return fmt.Errorf("%w: %v", eventmodels.ErrConnection, err)
	}

	if err := conn.WriteMessage(msg); err != nil {
		return fmt.Errorf("%w: failed to send subscribe: %v", eventmodels.ErrConnection, err)
	}

	log.Infof("polygon stream: subscribed to %s", subscribeParams(symbols))

	c.setState(eventmodels.Subscribed)
	policy.Reset()

	return c.receive(ctx, conn)
}

func (c *PolygonStreamClient) authenticate(conn StreamConn) error {
	msg, err := BuildAuthMessage(c.currentAPIKey())
	if err != nil {
		return fmt.Errorf("%w: %v", eventmodels.ErrConnection, err)
	}

	if err := conn.WriteMessage(msg); err != nil {
		return fmt.Errorf("%w: failed to send auth: %v", eventmodels.ErrConnection, err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(c.cfg.AuthTimeout)); err != nil {
		return fmt.Errorf("%w: %v", eventmodels.ErrConnection, err)
	}

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("%w: awaiting auth acknowledgement: %v", eventmodels.ErrConnection, err)
		}

		frame, err := ParsePolygonFrame(data)
		if err != nil {
			c.dropFrame(data, err)
			continue
		}

		for _, status := range frame.Statuses {
			switch status.Status {
			case polygonStatusAuthSuccess:
				if err := conn.SetReadDeadline(time.Time{}); err != nil {
					return fmt.Errorf("%w: %v", eventmodels.ErrConnection, err)
				}

				return nil
			case polygonStatusAuthFailed:
				return fmt.Errorf("%w: %s", eventmodels.ErrAuthentication, status.Message)
			case polygonStatusConnected:
				log.Debugf("polygon stream: %s", status.Message)
			default:
				log.Infof("polygon stream: unexpected status during auth: %s %s", status.Status, status.Message)
			}
		}
	}
}

func (c *PolygonStreamClient) receive(ctx context.Context, conn StreamConn) error {
	for {
		if c.cfg.ReadTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout)); err != nil {
				return fmt.Errorf("%w: %v", eventmodels.ErrTransportClosed, err)
			}
		}

		data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				c.setState(eventmodels.Closing)
				return ctx.Err()
			}

			return fmt.Errorf("%w: %v", eventmodels.ErrTransportClosed, err)
		}

		c.handleFrame(ctx, data)
	}
}

func (c *PolygonStreamClient) handleFrame(ctx context.Context, data []byte) {
	frame, err := ParsePolygonFrame(data)
	if err != nil {
		c.dropFrame(data, err)
		return
	}

	for _, err := range frame.Errors {
		c.dropFrame(data, err)
	}

	for _, status := range frame.Statuses {
		log.Infof("polygon stream: status %s: %s", status.Status, status.Message)
	}

	for _, tick := range frame.Ticks {
		c.metrics.TicksReceived.Add(ctx, 1)
		c.observer.OnTick(tick)
	}
}

func (c *PolygonStreamClient) dropFrame(data []byte, err error) {
	c.parseErrors.Add(1)
	c.metrics.FramesDropped.Add(context.Background(), 1)

	log.WithField("frame", truncate(string(data), 256)).Warnf("polygon stream: dropped malformed event: %v", err)
}

func (c *PolygonStreamClient) awaitReconnect(ctx context.Context, reconnectCh <-chan struct{}) bool {
	select {
	case <-ctx.Done():
		return false
	case <-reconnectCh:
		log.Info("polygon stream: reconnect requested")
		return true
	}
}

// sleepOrReconnect waits out a backoff delay. It returns false when ctx is cancelled.
func (c *PolygonStreamClient) sleepOrReconnect(ctx context.Context, d time.Duration, reconnectCh <-chan struct{}) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-reconnectCh:
		log.Info("polygon stream: reconnect requested")
		return true
	case <-timer.C:
		return true
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
