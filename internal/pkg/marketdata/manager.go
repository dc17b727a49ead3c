package marketdata

import (
	"context"
	"encoding/json"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	baseReconnectDelay = 2 * time.Second
	maxReconnectDelay  = 2 * time.Minute
	reconnectJitter    = 0.1

	wsPongWait      = 70 * time.Second
	wsPingInterval  = 25 * time.Second
	wsWriteWait     = 10 * time.Second
	quoteChanBuffer = 32
)

// Quote is one price tick from the market-data feed.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Change    float64   `json:"change"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// Conn is the slice of a websocket connection the manager uses; tests inject
// fakes, production wraps *websocket.Conn.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
	Close() error
}

// Dialer opens a feed connection. Injectable for tests.
type Dialer func(ctx context.Context, url string) (Conn, error)

func defaultDialer(ctx context.Context, url string) (Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type subscriber struct {
	symbols map[string]struct{}
	ch      chan Quote
}

// Manager maintains the feed connection with automatic reconnect and fans
// quotes out to subscribers. Slow subscribers drop ticks; the read loop never
// blocks on a consumer.
type Manager struct {
	feedURL string
	dial    Dialer
	logger  zerolog.Logger
	onQuote func(Quote) // optional hook, used to cache latest quotes

	// writeMu serializes data frames; gorilla/websocket forbids concurrent
	// writers, and subscribe commands can race from subscriber goroutines.
	writeMu sync.Mutex

	mu        sync.Mutex
	conn      Conn
	subs      map[uint64]*subscriber
	nextSubID uint64
	refs      map[string]int // symbol -> subscriber count
	connected bool
	lastError string

	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithDialer replaces the websocket dialer.
func WithDialer(d Dialer) Option {
	return func(m *Manager) { m.dial = d }
}

// WithQuoteHook installs a callback invoked for every received quote before
// fan-out, e.g. to cache the latest price per symbol.
func WithQuoteHook(fn func(Quote)) Option {
	return func(m *Manager) { m.onQuote = fn }
}

// NewManager creates a manager for the given feed URL.
func NewManager(feedURL string, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		feedURL: feedURL,
		dial:    defaultDialer,
		logger:  logger,
		subs:    make(map[uint64]*subscriber),
		refs:    make(map[string]int),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the connection loop in the background.
func (m *Manager) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	go func() {
		defer close(m.done)
		m.run(ctx)
	}()
}

// Close stops the manager and waits briefly for the loop to exit.
func (m *Manager) Close() {
	if m.cancel != nil {
		m.cancel()
	}
	select {
	case <-m.done:
	case <-time.After(5 * time.Second):
	}
}

// Connected reports whether the feed connection is currently up.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Subscribe registers interest in a set of symbols and returns a quote
// channel plus a cancel function. The channel is closed on cancel.
func (m *Manager) Subscribe(symbols ...string) (<-chan Quote, func()) {
	sub := &subscriber{
		symbols: make(map[string]struct{}, len(symbols)),
		ch:      make(chan Quote, quoteChanBuffer),
	}

	m.mu.Lock()
	m.nextSubID++
	id := m.nextSubID
	var added []string
	for _, s := range symbols {
		sub.symbols[s] = struct{}{}
		m.refs[s]++
		if m.refs[s] == 1 {
			added = append(added, s)
		}
	}
	m.subs[id] = sub
	conn := m.conn
	m.mu.Unlock()

	if conn != nil && len(added) > 0 {
		m.sendSubscribe(conn, added)
	}

	cancel := func() {
		m.mu.Lock()
		stored, ok := m.subs[id]
		if !ok {
			m.mu.Unlock()
			return
		}
		delete(m.subs, id)
		var removed []string
		for s := range stored.symbols {
			m.refs[s]--
			if m.refs[s] <= 0 {
				delete(m.refs, s)
				removed = append(removed, s)
			}
		}
		conn := m.conn
		m.mu.Unlock()

		close(stored.ch)
		if conn != nil && len(removed) > 0 {
			m.sendUnsubscribe(conn, removed)
		}
	}
	return sub.ch, cancel
}

// run is the reconnect loop. Blocks until ctx is cancelled.
func (m *Manager) run(ctx context.Context) {
	consecutiveFailures := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		err := m.connectAndHandle(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			consecutiveFailures++
			m.mu.Lock()
			m.lastError = err.Error()
			m.connected = false
			m.conn = nil
			m.mu.Unlock()

			delay := backoffDelay(consecutiveFailures)
			if consecutiveFailures >= 3 {
				m.logger.Warn().Err(err).
					Int("failures", consecutiveFailures).
					Dur("retry_in", delay).
					Msg("market feed connection failed repeatedly")
			} else {
				m.logger.Debug().Err(err).
					Dur("retry_in", delay).
					Msg("market feed interrupted, reconnecting")
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			continue
		}
		consecutiveFailures = 0
	}
}

type feedCommand struct {
	Action  string   `json:"action"`
	Symbols []string `json:"symbols"`
}

type feedMessage struct {
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	Volume    int64   `json:"volume"`
	Timestamp int64   `json:"ts"`
}

func (m *Manager) connectAndHandle(ctx context.Context) error {
	conn, err := m.dial(ctx, m.feedURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	m.mu.Lock()
	m.conn = conn
	m.connected = true
	m.lastError = ""
	symbols := make([]string, 0, len(m.refs))
	for s := range m.refs {
		symbols = append(symbols, s)
	}
	m.mu.Unlock()

	// resubscribe everything after a reconnect
	if len(symbols) > 0 {
		m.sendSubscribe(conn, symbols)
	}

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go m.pingLoop(pingCtx, conn)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var msg feedMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			m.logger.Debug().Err(err).Msg("malformed feed message skipped")
			continue
		}
		if msg.Type != "quote" || msg.Symbol == "" {
			continue
		}

		quote := Quote{
			Symbol:    msg.Symbol,
			Price:     msg.Price,
			Change:    msg.Change,
			Volume:    msg.Volume,
			Timestamp: time.UnixMilli(msg.Timestamp),
		}
		if m.onQuote != nil {
			m.onQuote(quote)
		}
		m.dispatch(quote)
	}
}

func (m *Manager) pingLoop(ctx context.Context, conn Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

// dispatch fans a quote out to interested subscribers, dropping the tick for
// any subscriber whose buffer is full.
func (m *Manager) dispatch(q Quote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.subs {
		if _, ok := sub.symbols[q.Symbol]; !ok {
			continue
		}
		select {
		case sub.ch <- q:
		default:
		}
	}
}

func (m *Manager) writeCommand(conn Conn, cmd feedCommand) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return conn.WriteJSON(cmd)
}

func (m *Manager) sendSubscribe(conn Conn, symbols []string) {
	if err := m.writeCommand(conn, feedCommand{Action: "subscribe", Symbols: symbols}); err != nil {
		m.logger.Warn().Err(err).Msg("subscribe command failed")
	}
}

func (m *Manager) sendUnsubscribe(conn Conn, symbols []string) {
	if err := m.writeCommand(conn, feedCommand{Action: "unsubscribe", Symbols: symbols}); err != nil {
		m.logger.Debug().Err(err).Msg("unsubscribe command failed")
	}
}

func backoffDelay(failures int) time.Duration {
	delay := baseReconnectDelay * time.Duration(math.Pow(2, float64(failures-1)))
	if delay > maxReconnectDelay {
		delay = maxReconnectDelay
	}
	jitter := time.Duration(float64(delay) * reconnectJitter * (rand.Float64()*2 - 1))
	return delay + jitter
}

// LastError returns the most recent connection failure, empty while healthy.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastError
}

var (
	defaultMu      sync.RWMutex
	defaultManager *Manager
)

// SetDefault registers the process-wide feed manager used by HTTP handlers.
func SetDefault(m *Manager) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultManager = m
}

// Default returns the registered feed manager, or nil when no feed is
// configured for this process.
func Default() *Manager {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultManager
}
