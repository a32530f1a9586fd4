package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hamedsh/rsi-bot/internal/bot"
	"github.com/hamedsh/rsi-bot/internal/config"
	"github.com/hamedsh/rsi-bot/internal/exchange"
	"github.com/hamedsh/rsi-bot/internal/feed"
	"github.com/hamedsh/rsi-bot/internal/journal"
	"github.com/hamedsh/rsi-bot/internal/metrics"
	"github.com/hamedsh/rsi-bot/internal/notifier"
	"github.com/hamedsh/rsi-bot/internal/order"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idleFeed struct{}

func (idleFeed) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func newTestServer(t *testing.T) (*Server, *bot.Bot) {
	t.Helper()
	cfg := config.Config{
		Symbol:       "ETH-USDT",
		Quantity:     0.006,
		RSIPeriod:    3,
		Overbought:   70,
		Oversold:     30,
		SocketURL:    "ws://unused",
		Mode:         "paper",
		OrderTimeout: time.Second,
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	trail := journal.NewTrail()
	gw := order.NewGateway(exchange.NewSimExchange(), cfg.Symbol, cfg.Quantity, cfg.OrderTimeout, trail, journal.Nop{}, notifier.Noop{}, m)
	b := bot.New(cfg, gw, trail, journal.Nop{}, m, bot.WithFeedFactory(func(h feed.Handler) bot.FeedRunner {
		return idleFeed{}
	}))
	return New(":0", b, reg), b
}

func do(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestStartStopRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/start")
	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Bot started", body["status"])

	rec = do(t, s, http.MethodPost, "/start")
	assert.Equal(t, http.StatusOK, rec.Code, "repeated start is informational, not an error")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Bot is already running", body["status"])

	rec = do(t, s, http.MethodPost, "/stop")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Bot stopped", body["status"])

	rec = do(t, s, http.MethodPost, "/stop")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Bot is not running", body["status"])
}

func TestLifecycleRoutesRejectGet(t *testing.T) {
	s, _ := newTestServer(t)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodGet, "/start").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, s, http.MethodGet, "/stop").Code)
}

func TestStatusRoute(t *testing.T) {
	s, b := newTestServer(t)
	b.OnClosedCandle(100)
	b.OnClosedCandle(101)

	rec := do(t, s, http.MethodGet, "/status")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var st bot.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "ETH-USDT", st.Symbol)
	assert.Equal(t, 2, st.DataPoints)
	assert.False(t, st.Running)
	assert.False(t, st.InPosition)
}

func TestDashboardRoute(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, rec.Code)

	var st bot.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, "ETH-USDT", st.Symbol)

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/nope").Code)
}

func TestLogsRoute(t *testing.T) {
	s, b := newTestServer(t)
	b.OnClosedCandle(100)
	b.OnClosedCandle(101)
	b.OnClosedCandle(102)

	rec := do(t, s, http.MethodGet, "/logs")
	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Count int      `json:"count"`
		Logs  []string `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 6, body.Count) // candle + insufficient-data line per close
	assert.Len(t, body.Logs, 6)

	rec = do(t, s, http.MethodGet, "/logs?limit=2")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, body.Logs, b.Logs(0)[4:])

	rec = do(t, s, http.MethodGet, "/logs?limit=50")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 6, body.Count)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/logs?limit=abc").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/logs?limit=-1").Code)
}

func TestHealthzRoute(t *testing.T) {
	s, b := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Running with no feed connection reports degraded.
	b.Start()
	rec = do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	b.OnFeedOpen()
	rec = do(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	b.Stop()
}

func TestMetricsRoute(t *testing.T) {
	s, b := newTestServer(t)
	b.OnClosedCandle(100)

	rec := do(t, s, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rsibot_candles_closed_total")
}
