package exchange

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hamedsh/rsi-bot/internal/utils"
)

// SimExchange fills market orders instantly at the requested trigger price.
// It backs the paper trading mode, the analogue of an exchange test-order
// endpoint: the signal engine behaves identically in paper and live mode.
type SimExchange struct {
	mu     sync.Mutex
	orders map[string]Order
}

func NewSimExchange() *SimExchange {
	return &SimExchange{orders: make(map[string]Order)}
}

func (s *SimExchange) Name() string {
	return "sim"
}

func (s *SimExchange) SubmitOrder(ctx context.Context, req OrderRequest) (Order, error) {
	select {
	case <-ctx.Done():
		return Order{}, ctx.Err()

	default:
		if strings.ToLower(req.Type) != "market" {
			return Order{}, fmt.Errorf("sim exchange: order type %q not supported, only market orders", req.Type)
		}
		if req.Side != SideBuy && req.Side != SideSell {
			return Order{}, fmt.Errorf("sim exchange: invalid side %q", req.Side)
		}

		order := Order{
			OrderID:   uuid.NewString(),
			Status:    "FILLED",
			FilledQty: req.Quantity,
			AvgPrice:  req.Price,
			Timestamp: time.Now().UTC(),
			Symbol:    req.Symbol,
			Side:      req.Side,
			Type:      req.Type,
			Price:     req.Price,
			Quantity:  req.Quantity,
		}

		s.mu.Lock()
		s.orders[order.OrderID] = order
		s.mu.Unlock()

		utils.GetLogger().Printf("Exchange | sim filled %s %v %s at %v (order %s)",
			req.Side, req.Quantity, req.Symbol, req.Price, order.OrderID)
		return order, nil
	}
}

func (s *SimExchange) GetOrderStatus(ctx context.Context, orderID string) (Order, error) {
	select {
	case <-ctx.Done():
		return Order{}, ctx.Err()

	default:
		s.mu.Lock()
		defer s.mu.Unlock()
		order, ok := s.orders[orderID]
		if !ok {
			return Order{}, fmt.Errorf("sim exchange: order %s not found", orderID)
		}
		return order, nil
	}
}
