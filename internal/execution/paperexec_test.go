package execution

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/riskdesk/internal/eventbus"
	"github.com/sawpanic/riskdesk/internal/models"
)

func TestPlaceOrderOpensNewPosition(t *testing.T) {
	e := NewPaperExecutor(nil)
	res := e.PlaceOrder(context.Background(), "hyperliquid", "BTC-PERP", "buy", 1.0, "limit", 100.0, OrderContext{})

	assert.Equal(t, "paper_filled", res.Status)
	assert.NotEmpty(t, res.OrderID)

	positions := e.GetPositions()
	require.Len(t, positions, 1)
	assert.Equal(t, 1.0, positions[0].SignedSize)
	assert.Equal(t, 100.0, positions[0].EntryPrice)
}

func TestPlaceOrderSameDirectionAveragesCostBasis(t *testing.T) {
	e := NewPaperExecutor(nil)
	e.PlaceOrder(context.Background(), "hyperliquid", "BTC-PERP", "buy", 1.0, "limit", 100.0, OrderContext{})
	e.PlaceOrder(context.Background(), "hyperliquid", "BTC-PERP", "buy", 1.0, "limit", 120.0, OrderContext{})

	positions := e.GetPositions()
	require.Len(t, positions, 1)
	assert.Equal(t, 2.0, positions[0].SignedSize)
	assert.InDelta(t, 110.0, positions[0].EntryPrice, 0.001)
}

func TestPlaceOrderOppositeDirectionReducesPosition(t *testing.T) {
	e := NewPaperExecutor(nil)
	e.PlaceOrder(context.Background(), "hyperliquid", "BTC-PERP", "buy", 2.0, "limit", 100.0, OrderContext{})
	e.PlaceOrder(context.Background(), "hyperliquid", "BTC-PERP", "sell", 1.0, "limit", 110.0, OrderContext{})

	positions := e.GetPositions()
	require.Len(t, positions, 1)
	assert.Equal(t, 1.0, positions[0].SignedSize)
	assert.Equal(t, 100.0, positions[0].EntryPrice)
}

func TestPlaceOrderOppositeDirectionFlipsPosition(t *testing.T) {
	e := NewPaperExecutor(nil)
	e.PlaceOrder(context.Background(), "hyperliquid", "BTC-PERP", "buy", 1.0, "limit", 100.0, OrderContext{})
	e.PlaceOrder(context.Background(), "hyperliquid", "BTC-PERP", "sell", 3.0, "limit", 120.0, OrderContext{})

	positions := e.GetPositions()
	require.Len(t, positions, 1)
	assert.Equal(t, -2.0, positions[0].SignedSize)
	assert.Equal(t, 120.0, positions[0].EntryPrice)
}

func TestPlaceOrderExactOffsetRemovesPosition(t *testing.T) {
	e := NewPaperExecutor(nil)
	e.PlaceOrder(context.Background(), "hyperliquid", "BTC-PERP", "buy", 1.0, "limit", 100.0, OrderContext{})
	e.PlaceOrder(context.Background(), "hyperliquid", "BTC-PERP", "sell", 1.0, "limit", 110.0, OrderContext{})

	positions := e.GetPositions()
	assert.Len(t, positions, 0)
}

func TestPlaceOrderEmitsSentThenFilled(t *testing.T) {
	bus := eventbus.New(nil, zerolog.Nop())
	var seen []string
	bus.Subscribe("", func(ctx context.Context, evt models.Event) { seen = append(seen, evt.EventType) })

	e := NewPaperExecutor(bus)
	e.PlaceOrder(context.Background(), "hyperliquid", "BTC-PERP", "buy", 1.0, "limit", 100.0, OrderContext{})

	require.Len(t, seen, 2)
	assert.Equal(t, eventbus.OrderSent, seen[0])
	assert.Equal(t, eventbus.OrderFilled, seen[1])
}

func TestCancelOrderMarksKnownOrderCancelled(t *testing.T) {
	e := NewPaperExecutor(nil)
	res := e.PlaceOrder(context.Background(), "hyperliquid", "BTC-PERP", "buy", 1.0, "limit", 100.0, OrderContext{})

	status, ok := e.CancelOrder(res.OrderID)
	assert.True(t, ok)
	assert.Equal(t, "cancelled", status)
}

func TestCancelOrderUnknownReturnsNotFound(t *testing.T) {
	e := NewPaperExecutor(nil)
	status, ok := e.CancelOrder("does-not-exist")
	assert.False(t, ok)
	assert.Equal(t, "not_found", status)
}

func TestPlaceOrderClampsNegativePriceToZero(t *testing.T) {
	e := NewPaperExecutor(nil)
	res := e.PlaceOrder(context.Background(), "hyperliquid", "BTC-PERP", "buy", 1.0, "limit", -5.0, OrderContext{})
	assert.Equal(t, 0.0, res.FillPrice)
}
