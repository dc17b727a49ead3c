package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn feeds scripted messages to the manager and records commands.
type fakeConn struct {
	mu       sync.Mutex
	incoming chan []byte
	commands []feedCommand
	closed   bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{incoming: make(chan []byte, 16)}
}

func (f *fakeConn) push(v interface{}) {
	data, _ := json.Marshal(v)
	f.incoming <- data
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-f.incoming
	if !ok {
		return 0, nil, io.EOF
	}
	return 1, data, nil
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cmd, ok := v.(feedCommand); ok {
		f.commands = append(f.commands, cmd)
	}
	return nil
}

func (f *fakeConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return nil
}

func (f *fakeConn) SetReadDeadline(t time.Time) error { return nil }
func (f *fakeConn) SetPongHandler(h func(string) error) {}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.incoming)
	}
	return nil
}

func (f *fakeConn) sentCommands() []feedCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]feedCommand, len(f.commands))
	copy(out, f.commands)
	return out
}

func quoteMsg(symbol string, price float64) feedMessage {
	return feedMessage{
		Type:      "quote",
		Symbol:    symbol,
		Price:     price,
		Timestamp: time.Now().UnixMilli(),
	}
}

func startManager(t *testing.T, dial Dialer, opts ...Option) *Manager {
	t.Helper()
	opts = append(opts, WithDialer(dial))
	m := NewManager("wss://feed.test/ws", zerolog.Nop(), opts...)
	m.Start(context.Background())
	t.Cleanup(m.Close)
	return m
}

func waitForQuote(t *testing.T, ch <-chan Quote) Quote {
	t.Helper()
	select {
	case q := <-ch:
		return q
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for quote")
		return Quote{}
	}
}

func TestSubscribeReceivesMatchingQuotes(t *testing.T) {
	conn := newFakeConn()
	m := startManager(t, func(ctx context.Context, url string) (Conn, error) {
		return conn, nil
	})

	ch, cancel := m.Subscribe("AAPL")
	defer cancel()

	conn.push(quoteMsg("AAPL", 187.5))
	conn.push(quoteMsg("TSLA", 240.0)) // not subscribed, must not arrive
	conn.push(quoteMsg("AAPL", 188.0))

	q := waitForQuote(t, ch)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 187.5, q.Price)

	q = waitForQuote(t, ch)
	assert.Equal(t, 188.0, q.Price)
}

func TestSubscribeSendsSubscribeCommand(t *testing.T) {
	conn := newFakeConn()
	m := startManager(t, func(ctx context.Context, url string) (Conn, error) {
		return conn, nil
	})

	require.Eventually(t, m.Connected, 2*time.Second, 10*time.Millisecond)

	_, cancel := m.Subscribe("NVDA")
	require.Eventually(t, func() bool {
		for _, cmd := range conn.sentCommands() {
			if cmd.Action == "subscribe" && len(cmd.Symbols) == 1 && cmd.Symbols[0] == "NVDA" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		for _, cmd := range conn.sentCommands() {
			if cmd.Action == "unsubscribe" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReconnectResubscribes(t *testing.T) {
	first := newFakeConn()
	second := newFakeConn()
	dials := 0
	var mu sync.Mutex

	m := startManager(t, func(ctx context.Context, url string) (Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		dials++
		if dials == 1 {
			return first, nil
		}
		return second, nil
	})

	ch, cancel := m.Subscribe("SPY")
	defer cancel()

	// drop the first connection; the manager must redial and resubscribe
	first.Close()

	require.Eventually(t, func() bool {
		for _, cmd := range second.sentCommands() {
			if cmd.Action == "subscribe" && len(cmd.Symbols) == 1 && cmd.Symbols[0] == "SPY" {
				return true
			}
		}
		return false
	}, 10*time.Second, 20*time.Millisecond)

	second.push(quoteMsg("SPY", 512.25))
	q := waitForQuote(t, ch)
	assert.Equal(t, 512.25, q.Price)
}

func TestSlowSubscriberDropsTicksWithoutBlocking(t *testing.T) {
	conn := newFakeConn()
	m := startManager(t, func(ctx context.Context, url string) (Conn, error) {
		return conn, nil
	})

	ch, cancel := m.Subscribe("AMD")
	defer cancel()

	// overflow the subscriber buffer; the read loop must keep up regardless
	for i := 0; i < quoteChanBuffer*3; i++ {
		conn.push(quoteMsg("AMD", float64(100+i)))
	}

	conn.push(quoteMsg("AMD", 999))
	require.Eventually(t, m.Connected, 2*time.Second, 10*time.Millisecond)

	received := 0
	for {
		select {
		case <-ch:
			received++
		case <-time.After(200 * time.Millisecond):
			// some ticks were dropped, but the loop stayed live
			assert.Greater(t, received, 0)
			return
		}
	}
}

func TestQuoteHookSeesEveryQuote(t *testing.T) {
	conn := newFakeConn()
	var mu sync.Mutex
	var seen []string

	m := startManager(t, func(ctx context.Context, url string) (Conn, error) {
		return conn, nil
	}, WithQuoteHook(func(q Quote) {
		mu.Lock()
		seen = append(seen, q.Symbol)
		mu.Unlock()
	}))

	ch, cancel := m.Subscribe("MSFT")
	defer cancel()

	conn.push(quoteMsg("MSFT", 420.0))
	conn.push(quoteMsg("GOOG", 170.0)) // hook fires even without subscribers

	waitForQuote(t, ch)
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"MSFT", "GOOG"}, seen)
	mu.Unlock()
}

// overlapConn flags any two WriteJSON calls that run at the same time.
type overlapConn struct {
	*fakeConn
	writing  atomic.Int32
	overlaps atomic.Int32
}

func (o *overlapConn) WriteJSON(v interface{}) error {
	if !o.writing.CompareAndSwap(0, 1) {
		o.overlaps.Add(1)
	}
	time.Sleep(2 * time.Millisecond)
	o.writing.Store(0)
	return o.fakeConn.WriteJSON(v)
}

func TestConcurrentSubscribesNeverWriteConcurrently(t *testing.T) {
	conn := &overlapConn{fakeConn: newFakeConn()}
	m := startManager(t, func(ctx context.Context, url string) (Conn, error) {
		return conn, nil
	})
	require.Eventually(t, m.Connected, 2*time.Second, 10*time.Millisecond)

	var wg sync.WaitGroup
	cancels := make([]func(), 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, cancels[i] = m.Subscribe(fmt.Sprintf("SYM%02d", i))
		}(i)
	}
	wg.Wait()
	for _, cancel := range cancels {
		go cancel()
	}

	require.Eventually(t, func() bool {
		return len(conn.sentCommands()) >= 16
	}, 5*time.Second, 10*time.Millisecond)
	assert.Zero(t, conn.overlaps.Load())
}

func TestDialFailureRetries(t *testing.T) {
	conn := newFakeConn()
	attempts := 0
	var mu sync.Mutex

	m := startManager(t, func(ctx context.Context, url string) (Conn, error) {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 2 {
			return nil, errors.New("connection refused")
		}
		return conn, nil
	})

	require.Eventually(t, m.Connected, 10*time.Second, 20*time.Millisecond)
	mu.Lock()
	assert.GreaterOrEqual(t, attempts, 2)
	mu.Unlock()
	assert.Empty(t, m.LastError())
}
