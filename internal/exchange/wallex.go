package exchange

import (
	"context"
	"strconv"
	"strings"

	"github.com/hamedsh/rsi-bot/internal/utils"
	wallex "github.com/wallexchange/wallex-go"
)

type WallexExchange struct {
	client *wallex.Client
}

func NewWallexExchange(apiKey string) Exchange {
	return &WallexExchange{
		client: wallex.New(wallex.ClientOptions{APIKey: apiKey}),
	}
}

func (w *WallexExchange) Name() string {
	return "wallex"
}

// NormalizeSymbol converts "ETH-USDT" style symbols to the exchange's
// "ETHUSDT" form.
func NormalizeSymbol(symbol string) string {
	return strings.ReplaceAll(strings.ToUpper(symbol), "-", "")
}

func (w *WallexExchange) SubmitOrder(ctx context.Context, req OrderRequest) (Order, error) {
	select {
	case <-ctx.Done():
		utils.GetLogger().Printf("Exchange | %s SubmitOrder timeout", w.Name())
		return Order{}, ctx.Err()

	default:
		price := strconv.FormatFloat(req.Price, 'f', 8, 64)
		qty := strconv.FormatFloat(req.Quantity, 'f', 8, 64)

		params := &wallex.OrderParams{
			Symbol:   NormalizeSymbol(req.Symbol),
			Type:     strings.ToUpper(req.Type),
			Side:     strings.ToUpper(req.Side),
			Price:    wallex.Number(price),
			Quantity: wallex.Number(qty),
		}
		resp, err := w.client.PlaceOrder(params)
		if err != nil {
			return Order{}, err
		}

		return Order{
			OrderID:   resp.ClientOrderID,
			Status:    strings.ToUpper(resp.Status),
			FilledQty: numberToFloat(resp.ExecutedQty),
			AvgPrice:  numberToFloat(resp.ExecutedPrice),
			Timestamp: resp.CreatedAt.UTC(),
			Symbol:    req.Symbol,
			Side:      req.Side,
			Type:      req.Type,
			Price:     req.Price,
			Quantity:  req.Quantity,
		}, nil
	}
}

func (w *WallexExchange) GetOrderStatus(ctx context.Context, orderID string) (Order, error) {
	select {
	case <-ctx.Done():
		utils.GetLogger().Printf("Exchange | %s GetOrderStatus timeout", w.Name())
		return Order{}, ctx.Err()

	default:
		resp, err := w.client.Order(orderID)
		if err != nil {
			return Order{}, err
		}

		return Order{
			OrderID:   resp.ClientOrderID,
			Status:    strings.ToUpper(resp.Status),
			FilledQty: numberToFloat(resp.ExecutedQty),
			AvgPrice:  numberToFloat(resp.ExecutedPrice),
			Timestamp: resp.CreatedAt.UTC(),
			Symbol:    resp.Symbol,
			Side:      strings.ToLower(resp.Side),
			Type:      strings.ToLower(resp.Type),
			Price:     numberToFloat(&resp.Price),
			Quantity:  numberToFloat(&resp.OrigQty),
		}, nil
	}
}

func numberToFloat(n *wallex.Number) float64 {
	if n == nil {
		return 0
	}
	f, _ := strconv.ParseFloat(string(*n), 64)
	return f
}
