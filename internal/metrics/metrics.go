// Package metrics
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the bot.
type Metrics struct {
	FeedMessagesTotal prometheus.Counter
	CandlesClosed     prometheus.Counter
	MalformedMessages prometheus.Counter
	RejectedCloses    prometheus.Counter
	OrdersTotal       *prometheus.CounterVec // labels: side, result
	CurrentRSI        prometheus.Gauge
	FeedConnected     prometheus.Gauge
	BotRunning        prometheus.Gauge
}

// New registers and returns all metrics on the given registerer. Tests pass
// a private prometheus.NewRegistry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FeedMessagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rsibot_feed_messages_total",
			Help: "Total messages received from the candle stream",
		}),
		CandlesClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rsibot_candles_closed_total",
			Help: "Total closed candles processed",
		}),
		MalformedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rsibot_feed_malformed_total",
			Help: "Feed messages dropped as malformed",
		}),
		RejectedCloses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rsibot_rejected_closes_total",
			Help: "Closed candles rejected for non-finite close prices",
		}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rsibot_orders_total",
			Help: "Order submissions by side and result",
		}, []string{"side", "result"}),
		CurrentRSI: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsibot_current_rsi",
			Help: "Most recently computed RSI value",
		}),
		FeedConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsibot_feed_connected",
			Help: "Whether the candle stream connection is open (0/1)",
		}),
		BotRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rsibot_running",
			Help: "Whether the bot lifecycle state is running (0/1)",
		}),
	}

	reg.MustRegister(
		m.FeedMessagesTotal,
		m.CandlesClosed,
		m.MalformedMessages,
		m.RejectedCloses,
		m.OrdersTotal,
		m.CurrentRSI,
		m.FeedConnected,
		m.BotRunning,
	)

	return m
}
