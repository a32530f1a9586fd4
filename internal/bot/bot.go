// Package bot
package bot

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hamedsh/rsi-bot/internal/config"
	"github.com/hamedsh/rsi-bot/internal/exchange"
	"github.com/hamedsh/rsi-bot/internal/feed"
	"github.com/hamedsh/rsi-bot/internal/indicator"
	"github.com/hamedsh/rsi-bot/internal/journal"
	"github.com/hamedsh/rsi-bot/internal/metrics"
	"github.com/hamedsh/rsi-bot/internal/order"
	"github.com/hamedsh/rsi-bot/internal/utils"
)

// FeedRunner is the slice of the feed listener the bot drives.
type FeedRunner interface {
	Run(ctx context.Context) error
}

// FeedFactory builds the feed connection for a Start call. The bot itself is
// the handler.
type FeedFactory func(h feed.Handler) FeedRunner

// Status is a consistent snapshot of the bot's state.
type Status struct {
	Symbol        string    `json:"symbol"`
	InPosition    bool      `json:"in_position"`
	TotalProfit   float64   `json:"total_profit"`
	DataPoints    int       `json:"data_points"`
	Running       bool      `json:"running"`
	CurrentRSI    float64   `json:"current_rsi"`
	RSITimestamp  time.Time `json:"rsi_timestamp"`
	FeedConnected bool      `json:"feed_connected"`
	LastCandleAt  time.Time `json:"last_candle_at"`
}

// Bot owns the close history, position state, realized profit and lifecycle.
// Candles arrive sequentially on the feed goroutine; status and log reads may
// happen concurrently from the control surface. One mutex covers it all, and
// it is held across an order submission so a reader never sees a close
// appended with the position not yet settled.
type Bot struct {
	cfg     config.Config
	gateway *order.Gateway
	trail   *journal.Trail
	journal journal.Journaler
	metrics *metrics.Metrics
	newFeed FeedFactory

	mu            sync.Mutex
	closes        []float64
	inPosition    bool
	totalProfit   float64
	lastRSI       float64
	lastRSITime   time.Time
	lastCandleAt  time.Time
	feedConnected bool
	running       bool
	cancel        context.CancelFunc
}

// Option customizes a Bot. Tests use WithFeedFactory to avoid a real socket.
type Option func(*Bot)

func WithFeedFactory(f FeedFactory) Option {
	return func(b *Bot) { b.newFeed = f }
}

func New(cfg config.Config, gw *order.Gateway, trail *journal.Trail, jr journal.Journaler, m *metrics.Metrics, opts ...Option) *Bot {
	b := &Bot{
		cfg:     cfg,
		gateway: gw,
		trail:   trail,
		journal: jr,
		metrics: m,
	}
	b.newFeed = func(h feed.Handler) FeedRunner {
		return feed.NewListener(cfg.SocketURL, h, trail, m)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Start opens the feed connection on a background goroutine. Idempotent:
// calling it while running is an informational no-op.
func (b *Bot) Start() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		b.log("start requested but bot is already running")
		return "Bot is already running"
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.running = true
	b.metrics.BotRunning.Set(1)

	listener := b.newFeed(b)
	go func() {
		if err := listener.Run(ctx); err != nil {
			utils.GetLogger().Printf("Bot | feed terminated: %v", err)
		}
	}()

	b.log(fmt.Sprintf("bot started for %s (period=%d overbought=%v oversold=%v)",
		b.cfg.Symbol, b.cfg.RSIPeriod, b.cfg.Overbought, b.cfg.Oversold))
	b.journal.LogEvent(context.Background(), journal.Event{
		Time: time.Now().UTC(), Type: "lifecycle", Description: "started",
		Data: map[string]any{"symbol": b.cfg.Symbol},
	})
	return "Bot started"
}

// Stop requests the feed connection to close. It does not wait for the read
// loop to drain; a final in-flight candle may still be processed afterwards.
// Idempotent.
func (b *Bot) Stop() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		b.log("stop requested but bot is not running")
		return "Bot is not running"
	}

	b.cancel()
	b.cancel = nil
	b.running = false
	b.metrics.BotRunning.Set(0)

	b.log("bot stopped")
	b.journal.LogEvent(context.Background(), journal.Event{
		Time: time.Now().UTC(), Type: "lifecycle", Description: "stopped",
		Data: map[string]any{"symbol": b.cfg.Symbol},
	})
	return "Bot stopped"
}

// Status returns a snapshot safe to call concurrently with candle processing.
func (b *Bot) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Status{
		Symbol:        b.cfg.Symbol,
		InPosition:    b.inPosition,
		TotalProfit:   b.totalProfit,
		DataPoints:    len(b.closes),
		Running:       b.running,
		CurrentRSI:    b.lastRSI,
		RSITimestamp:  b.lastRSITime,
		FeedConnected: b.feedConnected,
		LastCandleAt:  b.lastCandleAt,
	}
}

// Logs returns the last limit trail entries oldest-first; limit <= 0 returns
// everything.
func (b *Bot) Logs(limit int) []string {
	return b.trail.Last(limit)
}

// OnFeedOpen implements feed.Handler.
func (b *Bot) OnFeedOpen() {
	b.mu.Lock()
	b.feedConnected = true
	b.mu.Unlock()
}

// OnFeedClose implements feed.Handler.
func (b *Bot) OnFeedClose(err error) {
	b.mu.Lock()
	b.feedConnected = false
	b.mu.Unlock()
}

// OnClosedCandle implements feed.Handler. This is the signal state machine:
// append the close, compute the RSI once warm, and drive at most one order.
// Position and profit only change on a confirmed submission.
func (b *Bot) OnClosedCandle(close float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if math.IsNaN(close) || math.IsInf(close, 0) {
		b.log(fmt.Sprintf("rejecting non-finite close price %v", close))
		b.metrics.RejectedCloses.Inc()
		return
	}

	b.closes = append(b.closes, close)
	b.lastCandleAt = time.Now().UTC()
	b.metrics.CandlesClosed.Inc()
	b.log(fmt.Sprintf("candle closed at %v (%d closes)", close, len(b.closes)))

	if len(b.closes) <= b.cfg.RSIPeriod {
		b.log(fmt.Sprintf("insufficient data for RSI (%d/%d closes)", len(b.closes), b.cfg.RSIPeriod))
		return
	}

	rsi, ok := indicator.LastRSI(b.closes, b.cfg.RSIPeriod)
	if !ok {
		return
	}
	b.lastRSI = rsi
	b.lastRSITime = time.Now().UTC()
	b.metrics.CurrentRSI.Set(rsi)
	b.log(fmt.Sprintf("RSI is %.2f", rsi))

	switch {
	case rsi > b.cfg.Overbought:
		if !b.inPosition {
			b.log("overbought but no position held, nothing to do")
			return
		}
		b.log("overbought, selling")
		if b.gateway.Submit(context.Background(), exchange.SideSell, close) {
			b.inPosition = false
			b.totalProfit += close * b.cfg.Quantity
			b.log(fmt.Sprintf("position closed, total profit %v", b.totalProfit))
		}

	case rsi < b.cfg.Oversold:
		if b.inPosition {
			b.log("oversold but already in position, nothing to do")
			return
		}
		b.log("oversold, buying")
		if b.gateway.Submit(context.Background(), exchange.SideBuy, close) {
			b.inPosition = true
			b.totalProfit -= close * b.cfg.Quantity
			b.log(fmt.Sprintf("position opened, total profit %v", b.totalProfit))
		}
	}
	// Neutral zone, including readings exactly on a threshold: no action.
}

func (b *Bot) log(msg string) {
	utils.GetLogger().Printf("Bot | %s", msg)
	b.trail.Append(msg)
}
