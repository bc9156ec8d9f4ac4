package electrum

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// requestRateLimit bounds how fast the client issues RPC requests against a
// single server, so a burst of local work (e.g. ensure_index's batch of
// history lookups) never looks like a hostile client to the remote end.
const (
	requestsPerSecond = 20
	requestBurst      = 20
)

// Config selects the Electrum server a Client connects to.
type Config struct {
	Host string
	SSL  bool
	Port int
}

func (c Config) addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

type pendingRequest struct {
	resultCh chan rpcResult
	timer    *time.Timer
}

type rpcResult struct {
	result []byte
	err    error
}

// Client is a single-connection Electrum JSON-RPC client. Run owns the
// socket from one goroutine (connect, read loop, reconnect-with-backoff);
// Call may be invoked concurrently from any goroutine and blocks its caller
// until a matching response arrives, the connection drops, or the request
// times out.
type Client struct {
	cfgMu sync.RWMutex
	cfg   Config

	connMu sync.Mutex
	conn   net.Conn
	writer *bufio.Writer

	state  atomic.Int32
	nextID atomic.Uint64
	tip    atomic.Int64

	pendingMu sync.Mutex
	pending   map[uint64]*pendingRequest

	pub     *publishers
	limiter *rate.Limiter

	subMu        sync.Mutex
	scripthashOf map[string]string          // address -> scripthash
	addressOf    map[string]string          // scripthash -> address
	knownTxids   map[string]map[string]bool // address -> set of seen txids
}

// New constructs a Client in the Disconnected state. Call Run to begin
// connecting; Run blocks until ctx is cancelled.
func New(cfg Config) *Client {
	c := &Client{
		cfg:          cfg,
		pending:      make(map[uint64]*pendingRequest),
		pub:          newPublishers(),
		limiter:      rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		scripthashOf: make(map[string]string),
		addressOf:    make(map[string]string),
		knownTxids:   make(map[string]map[string]bool),
	}
	c.state.Store(int32(Disconnected))
	return c
}

// State returns the client's current connection state.
func (c *Client) State() ConnState { return ConnState(c.state.Load()) }

func (c *Client) currentConfig() Config {
	c.cfgMu.RLock()
	defer c.cfgMu.RUnlock()
	return c.cfg
}

// UpdateServer switches to a new server: it applies the new settings and,
// if currently connected, force-closes the connection so Run's reconnect
// loop immediately redials using them.
func (c *Client) UpdateServer(cfg Config) {
	c.cfgMu.Lock()
	c.cfg = cfg
	c.cfgMu.Unlock()

	c.connMu.Lock()
	conn := c.conn
	c.connMu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func (c *Client) setState(s ConnState) {
	c.state.Store(int32(s))
	c.pub.connectionState.publish(s)
}

// Run drives the connection state machine until ctx is cancelled: dial,
// subscribe to headers, read notifications and responses until the
// connection fails or closes, wait reconnectDelay, then try again.
func (c *Client) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			c.setState(Disconnected)
			return
		}
		if err := c.connectAndServe(ctx); err != nil {
			c.setState(Failed)
		}
		select {
		case <-ctx.Done():
			c.setState(Disconnected)
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Client) connectAndServe(ctx context.Context) error {
	c.setState(Connecting)

	cfg := c.currentConfig()
	dialer := &net.Dialer{Timeout: requestTimeout}
	var conn net.Conn
	var err error
	if cfg.SSL {
		conn, err = tls.DialWithDialer(dialer, "tcp", cfg.addr(), &tls.Config{MinVersion: tls.VersionTLS12})
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", cfg.addr())
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.writer = bufio.NewWriter(conn)
	c.connMu.Unlock()

	c.setState(Connected)
	defer c.teardown()

	if err := c.subscribeHeaders(ctx); err != nil {
		return err
	}
	// Re-subscribe any addresses carried over from a prior connection.
	c.resubscribeAddresses(ctx)

	return c.readLoop(bufio.NewReader(conn))
}

func (c *Client) teardown() {
	c.connMu.Lock()
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()
	c.failAllPending(ErrConnectionFailed)
}

func (c *Client) resubscribeAddresses(ctx context.Context) {
	c.subMu.Lock()
	scripthashes := make([]string, 0, len(c.scripthashOf))
	for _, sh := range c.scripthashOf {
		scripthashes = append(scripthashes, sh)
	}
	c.subMu.Unlock()
	for _, sh := range scripthashes {
		_, _ = c.Call(ctx, "blockchain.scripthash.subscribe", []interface{}{sh})
	}
}
