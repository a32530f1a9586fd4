// Package exchange
package exchange

import (
	"context"
	"time"
)

// Order sides accepted by SubmitOrder.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// OrderRequest represents a new order to be submitted.
type OrderRequest struct {
	Symbol   string
	Side     string // "buy" or "sell"
	Type     string // "market"
	Price    float64
	Quantity float64
	ClientID string
}

// Order represents the response from the exchange.
type Order struct {
	OrderID   string
	Status    string
	FilledQty float64
	AvgPrice  float64
	Timestamp time.Time
	Symbol    string
	Side      string
	Type      string
	Price     float64
	Quantity  float64
}

// Exchange is the interface for all supported order backends.
type Exchange interface {
	Name() string
	SubmitOrder(ctx context.Context, req OrderRequest) (Order, error)
	GetOrderStatus(ctx context.Context, orderID string) (Order, error)
}
