// Package feed
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/hamedsh/rsi-bot/internal/journal"
	"github.com/hamedsh/rsi-bot/internal/metrics"
	"github.com/hamedsh/rsi-bot/internal/utils"
)

// Handler receives decoded feed events. OnClosedCandle is only called for
// finalized candles with a finite close price, in arrival order.
type Handler interface {
	OnFeedOpen()
	OnFeedClose(err error)
	OnClosedCandle(close float64)
}

// klineMessage is the wire shape of a candle stream event. Only the closed
// flag and the close price are consumed; symbol and interval are fixed by
// the subscription URL.
type klineMessage struct {
	Kline struct {
		IsClosed bool `json:"x"`
		Close    any  `json:"c"` // string on Binance-style streams, number on some others
	} `json:"k"`
}

// Listener consumes a websocket candle stream and forwards closed candles to
// its handler. It does not reconnect: a dropped transport is recovered by an
// explicit stop/start from the controller.
type Listener struct {
	url     string
	handler Handler
	trail   *journal.Trail
	metrics *metrics.Metrics
}

func NewListener(url string, h Handler, trail *journal.Trail, m *metrics.Metrics) *Listener {
	return &Listener{url: url, handler: h, trail: trail, metrics: m}
}

// Run dials the stream and processes messages until the context is canceled
// or the transport fails. Messages are handled to completion one at a time.
func (l *Listener) Run(ctx context.Context) error {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
	if err != nil {
		l.log(fmt.Sprintf("connection failed: %v", err))
		l.handler.OnFeedClose(err)
		return fmt.Errorf("dialing %s: %w", l.url, err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	l.log("connection opened")
	l.metrics.FeedConnected.Set(1)
	l.handler.OnFeedOpen()

	// Closing the conn is the only way to unblock ReadMessage on cancel.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			l.metrics.FeedConnected.Set(0)
			if ctx.Err() != nil {
				l.log("connection closed")
				l.handler.OnFeedClose(nil)
				return nil
			}
			l.log(fmt.Sprintf("connection closed: %v", err))
			l.handler.OnFeedClose(err)
			return fmt.Errorf("reading from %s: %w", l.url, err)
		}
		l.metrics.FeedMessagesTotal.Inc()
		l.handleMessage(msg)
	}
}

func (l *Listener) handleMessage(msg []byte) {
	var km klineMessage
	if err := json.Unmarshal(msg, &km); err != nil {
		l.warn(fmt.Sprintf("dropping malformed message: %v", err))
		return
	}
	if !km.Kline.IsClosed {
		// Mid-candle update, not a decision point.
		return
	}
	close, err := parseClose(km.Kline.Close)
	if err != nil {
		l.warn(fmt.Sprintf("dropping closed candle: %v", err))
		return
	}
	l.handler.OnClosedCandle(close)
}

func parseClose(v any) (float64, error) {
	var close float64
	switch c := v.(type) {
	case string:
		f, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return 0, fmt.Errorf("non-numeric close price %q", c)
		}
		close = f
	case float64:
		close = c
	case nil:
		return 0, fmt.Errorf("missing close price")
	default:
		return 0, fmt.Errorf("unexpected close price type %T", v)
	}
	if math.IsNaN(close) || math.IsInf(close, 0) {
		return 0, fmt.Errorf("non-finite close price %v", close)
	}
	return close, nil
}

func (l *Listener) log(msg string) {
	utils.GetLogger().Printf("Feed | %s", msg)
	l.trail.Append(msg)
}

func (l *Listener) warn(msg string) {
	utils.GetLogger().Printf("Feed | WARN %s", msg)
	l.trail.Append("warning: " + msg)
	l.metrics.MalformedMessages.Inc()
}
