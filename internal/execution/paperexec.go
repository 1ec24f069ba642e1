package execution

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sawpanic/riskdesk/internal/eventbus"
	"github.com/sawpanic/riskdesk/internal/models"
)

// OrderContext carries the data-lineage fields every order event tags
// itself with, so a downstream audit can trace a fill back to the exact
// tariff/shock/price reading that justified it.
type OrderContext struct {
	TariffTs        *time.Time
	ShockTs         *time.Time
	PriceTs         *time.Time
	PriceSource     string
	PriceAsOfTs     *time.Time
	IntegrityStatus string
	ExecutionMode   string
	DataAgeMs       *float64
	DataQuality     string
}

// OrderResult is what a successful paper order returns.
type OrderResult struct {
	OrderID   string
	Status    string
	FillPrice float64
	Side      string
	Market    string
	Venue     string
	Size      float64
	Ts        time.Time
}

type paperOrder struct {
	OrderResult
	orderType string
}

// PaperExecutor fills every order immediately at the quoted price and
// maintains an in-memory position book, replacing a live venue connection
// entirely — no order it places ever reaches a real exchange.
type PaperExecutor struct {
	bus *eventbus.Bus

	mu        sync.Mutex
	positions map[string]models.Position
	orders    map[string]paperOrder
}

// NewPaperExecutor returns an executor with an empty position book.
func NewPaperExecutor(bus *eventbus.Bus) *PaperExecutor {
	return &PaperExecutor{
		bus:       bus,
		positions: make(map[string]models.Position),
		orders:    make(map[string]paperOrder),
	}
}

// PlaceOrder fills immediately at price (or 0 if unset), emitting
// ORDER_SENT then ORDER_FILLED, and updates the in-memory position book.
func (e *PaperExecutor) PlaceOrder(ctx context.Context, venue, market, side string, size float64, orderType string, price float64, octx OrderContext) OrderResult {
	orderID := uuid.NewString()
	now := time.Now().UTC()
	fillPrice := math.Max(price, 0)

	e.emitOrderEvent(ctx, eventbus.OrderSent, orderID, venue, market, side, size, orderType, fillPrice, octx)

	e.mu.Lock()
	e.orders[orderID] = paperOrder{
		OrderResult: OrderResult{OrderID: orderID, Status: "paper_filled", FillPrice: fillPrice, Side: side, Market: market, Venue: venue, Size: size, Ts: now},
		orderType:   orderType,
	}
	e.updatePosition(venue, market, side, size, fillPrice)
	e.mu.Unlock()

	e.emitOrderEvent(ctx, eventbus.OrderFilled, orderID, venue, market, side, size, orderType, fillPrice, octx)

	return OrderResult{OrderID: orderID, Status: "paper_filled", FillPrice: fillPrice, Side: side, Market: market, Venue: venue, Size: size, Ts: now}
}

func (e *PaperExecutor) emitOrderEvent(ctx context.Context, eventType, orderID, venue, market, side string, size float64, orderType string, fillPrice float64, octx OrderContext) {
	if e.bus == nil {
		return
	}
	payload := map[string]interface{}{
		"order_id": orderID, "venue": venue, "market": market, "side": side,
		"size": size, "order_type": orderType, "price": fillPrice,
		"price_source":     octx.PriceSource,
		"integrity_status": orEmptyDefault(octx.IntegrityStatus, "OK"),
		"execution_mode":   orEmptyDefault(octx.ExecutionMode, "paper"),
		"data_quality":     orEmptyDefault(octx.DataQuality, "OK"),
		"message":          fmt.Sprintf("paper %s %.4f %s @ %.4f", side, size, market, fillPrice),
	}
	e.bus.Emit(ctx, eventType, "paper_executor", payload)
}

// CancelOrder marks a previously placed order cancelled. It's a
// bookkeeping no-op beyond that: paper fills happen synchronously at
// placement time, so there's nothing in flight to actually cancel.
func (e *PaperExecutor) CancelOrder(orderID string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.orders[orderID]
	if !ok {
		return "not_found", false
	}
	o.Status = "cancelled"
	e.orders[orderID] = o
	return "cancelled", true
}

// GetPositions returns a snapshot of the current position book.
func (e *PaperExecutor) GetPositions() []models.Position {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Position, 0, len(e.positions))
	for _, p := range e.positions {
		out = append(out, p)
	}
	return out
}

// updatePosition applies a fill to the position book: same-direction fills
// average into a new cost basis (weighted by size), opposite-direction
// fills reduce or flip the position, and a position that nets to
// (near-)zero is removed entirely. Caller must hold e.mu.
func (e *PaperExecutor) updatePosition(venue, market, side string, size, price float64) {
	key := venue + ":" + market
	signedSize := size
	if side == "sell" {
		signedSize = -size
	}

	existing, ok := e.positions[key]
	if !ok {
		e.positions[key] = models.Position{Venue: venue, Market: market, SignedSize: signedSize, EntryPrice: price}
		return
	}

	newSize := existing.SignedSize + signedSize
	if math.Abs(newSize) < 1e-12 {
		delete(e.positions, key)
		return
	}

	var newEntry float64
	sameDirection := (existing.SignedSize > 0 && signedSize > 0) || (existing.SignedSize < 0 && signedSize < 0)
	if sameDirection {
		totalCost := math.Abs(existing.SignedSize)*existing.EntryPrice + math.Abs(signedSize)*price
		newEntry = totalCost / math.Abs(newSize)
	} else if math.Abs(newSize) >= math.Abs(existing.SignedSize) {
		// flipped direction: the new leg's price becomes the basis
		newEntry = price
	} else {
		// partial reduction: basis is unchanged
		newEntry = existing.EntryPrice
	}

	existing.SignedSize = newSize
	existing.EntryPrice = newEntry
	e.positions[key] = existing
}

func orEmptyDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
