// Package order
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/hamedsh/rsi-bot/internal/exchange"
	"github.com/hamedsh/rsi-bot/internal/journal"
	"github.com/hamedsh/rsi-bot/internal/metrics"
	"github.com/hamedsh/rsi-bot/internal/notifier"
	"github.com/hamedsh/rsi-bot/internal/utils"

	"github.com/google/uuid"
)

// Gateway submits market orders for the configured symbol and quantity.
// Every exchange fault, including a timeout, is absorbed here and surfaced
// as a false return; nothing propagates into the signal engine.
type Gateway struct {
	ex       exchange.Exchange
	symbol   string
	quantity float64
	timeout  time.Duration

	trail    *journal.Trail
	journal  journal.Journaler
	notifier notifier.Notifier
	metrics  *metrics.Metrics
}

func NewGateway(
	ex exchange.Exchange,
	symbol string,
	quantity float64,
	timeout time.Duration,
	trail *journal.Trail,
	jr journal.Journaler,
	n notifier.Notifier,
	m *metrics.Metrics,
) *Gateway {
	return &Gateway{
		ex:       ex,
		symbol:   symbol,
		quantity: quantity,
		timeout:  timeout,
		trail:    trail,
		journal:  jr,
		notifier: n,
		metrics:  m,
	}
}

// Submit places a market order and reports whether the exchange confirmed
// it. The trigger price is carried on the request for journaling and for the
// paper exchange's fill price.
func (g *Gateway) Submit(ctx context.Context, side string, price float64) bool {
	req := exchange.OrderRequest{
		Symbol:   g.symbol,
		Side:     side,
		Type:     "market",
		Price:    price,
		Quantity: g.quantity,
		ClientID: uuid.NewString(),
	}

	g.log(fmt.Sprintf("sending %s order for %v %s", side, g.quantity, g.symbol))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.ex.SubmitOrder(ctx, req)
	if err != nil {
		g.log(fmt.Sprintf("%s order failed: %v", side, err))
		g.metrics.OrdersTotal.WithLabelValues(side, "failure").Inc()
		// Fresh context: the submit context may already be expired.
		g.journal.LogEvent(context.Background(), journal.Event{
			Time:        time.Now().UTC(),
			Type:        "order",
			Description: "order_failed",
			Data:        map[string]any{"side": side, "symbol": g.symbol, "quantity": g.quantity, "price": price, "error": err.Error()},
		})
		g.notifier.SendWithRetry(fmt.Sprintf("%s %s order failed: %v", g.symbol, side, err))
		return false
	}

	g.log(fmt.Sprintf("%s order confirmed (order %s, status %s)", side, resp.OrderID, resp.Status))
	g.metrics.OrdersTotal.WithLabelValues(side, "success").Inc()
	g.journal.LogEvent(context.Background(), journal.Event{
		Time:        time.Now().UTC(),
		Type:        "order",
		Description: "order_confirmed",
		Data:        map[string]any{"order": resp},
	})
	g.notifier.SendWithRetry(fmt.Sprintf("%s %s order confirmed at %v (order %s)", g.symbol, side, price, resp.OrderID))
	return true
}

func (g *Gateway) log(msg string) {
	utils.GetLogger().Printf("Gateway | %s", msg)
	g.trail.Append(msg)
}
