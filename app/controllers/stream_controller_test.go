package controllers

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradewindhq/tradewind/internal/pkg/marketdata"
	"github.com/tradewindhq/tradewind/internal/pkg/security"
)

const streamTestSecret = "stream-test-secret"

func streamTestApp(t *testing.T) *fiber.App {
	t.Helper()
	t.Setenv("STREAM_TOKEN_SECRET", streamTestSecret)
	app := fiber.New()
	app.Get("/api/stream", HandleStreamFeed)
	return app
}

// quoteEmittingConn hands the manager a steady stream of ticks.
type quoteEmittingConn struct {
	closed chan struct{}
	once   sync.Once
}

func newQuoteEmittingConn() *quoteEmittingConn {
	return &quoteEmittingConn{closed: make(chan struct{})}
}

func (c *quoteEmittingConn) ReadMessage() (int, []byte, error) {
	select {
	case <-c.closed:
		return 0, nil, io.EOF
	case <-time.After(20 * time.Millisecond):
		return 1, []byte(`{"type":"quote","symbol":"AAPL","price":187.5,"ts":1700000000000}`), nil
	}
}

func (c *quoteEmittingConn) WriteJSON(v interface{}) error { return nil }
func (c *quoteEmittingConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return nil
}
func (c *quoteEmittingConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *quoteEmittingConn) SetPongHandler(h func(string) error) {}

func (c *quoteEmittingConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func TestStreamFeedRejectsMissingToken(t *testing.T) {
	app := streamTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/stream?symbols=AAPL", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestStreamFeedRejectsInsufficientTier(t *testing.T) {
	app := streamTestApp(t)

	token, err := security.GenerateStreamToken(7, "paid", time.Minute, streamTestSecret)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/stream?symbols=AAPL&token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestStreamFeedRequiresSymbols(t *testing.T) {
	app := streamTestApp(t)

	token, err := security.GenerateStreamToken(7, "premium", time.Minute, streamTestSecret)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/stream?token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestStreamFeedUnavailableWithoutFeed(t *testing.T) {
	app := streamTestApp(t)
	marketdata.SetDefault(nil)

	token, err := security.GenerateStreamToken(7, "premium", time.Minute, streamTestSecret)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/stream?symbols=AAPL&token="+token, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestStreamFeedRelaysQuotesUntilTokenExpires(t *testing.T) {
	app := streamTestApp(t)

	conn := newQuoteEmittingConn()
	feed := marketdata.NewManager("wss://feed.test/ws", zerolog.Nop(),
		marketdata.WithDialer(func(ctx context.Context, url string) (marketdata.Conn, error) {
			return conn, nil
		}))
	feed.Start(context.Background())
	marketdata.SetDefault(feed)
	t.Cleanup(func() {
		marketdata.SetDefault(nil)
		feed.Close()
	})

	// expiry claims carry second precision, so keep the TTL above one second
	token, err := security.GenerateStreamToken(7, "premium", 2*time.Second, streamTestSecret)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/stream?symbols=AAPL&token="+token, nil), 8000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get(fiber.HeaderContentType))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"symbol":"AAPL"`)
	assert.Contains(t, string(body), "event: expired")
}
