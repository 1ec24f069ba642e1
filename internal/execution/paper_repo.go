package execution

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PaperTradeRepo persists fills from PaperExecutor to the `paper_trades`
// table, giving the desk a durable record of simulated fills that
// survives a process restart (the in-memory position book does not).
type PaperTradeRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewPaperTradeRepo wraps an already-connected sqlx.DB.
func NewPaperTradeRepo(db *sqlx.DB, timeout time.Duration) *PaperTradeRepo {
	return &PaperTradeRepo{db: db, timeout: timeout}
}

type paperTradeRow struct {
	OrderID   string    `db:"order_id"`
	Venue     string    `db:"venue"`
	Market    string    `db:"market"`
	Side      string    `db:"side"`
	Size      float64   `db:"size"`
	FillPrice float64   `db:"fill_price"`
	Status    string    `db:"status"`
	Ts        time.Time `db:"ts"`
}

// Record inserts a completed fill. A duplicate order id (a retried
// caller re-recording the same fill) is treated as success, matching
// the event log's idempotent-append behavior.
func (r *PaperTradeRepo) Record(ctx context.Context, result OrderResult) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
		INSERT INTO paper_trades (order_id, venue, market, side, size, fill_price, status, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		result.OrderID, result.Venue, result.Market, result.Side,
		result.Size, result.FillPrice, result.Status, result.Ts)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil
		}
		return fmt.Errorf("execution: insert paper trade: %w", err)
	}
	return nil
}

// Recent returns the most recent fills for market, newest first. An
// empty market returns fills across every market.
func (r *PaperTradeRepo) Recent(ctx context.Context, market string, limit int) ([]OrderResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT order_id, venue, market, side, size, fill_price, status, ts
		FROM paper_trades`
	args := []interface{}{}
	if market != "" {
		query += ` WHERE market = $1 ORDER BY ts DESC LIMIT $2`
		args = append(args, market, limit)
	} else {
		query += ` ORDER BY ts DESC LIMIT $1`
		args = append(args, limit)
	}

	var rows []paperTradeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("execution: select recent paper trades: %w", err)
	}

	out := make([]OrderResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, OrderResult{
			OrderID: row.OrderID, Status: row.Status, FillPrice: row.FillPrice,
			Side: row.Side, Market: row.Market, Venue: row.Venue, Size: row.Size, Ts: row.Ts,
		})
	}
	return out, nil
}

// UpdateStatus reflects a later cancellation against an already-recorded
// fill; PaperExecutor.CancelOrder is in-memory bookkeeping only, this is
// what makes that decision durable.
func (r *PaperTradeRepo) UpdateStatus(ctx context.Context, orderID, status string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	const query = `UPDATE paper_trades SET status = $2 WHERE order_id = $1`
	_, err := r.db.ExecContext(ctx, query, orderID, status)
	if err != nil {
		return fmt.Errorf("execution: update paper trade status: %w", err)
	}
	return nil
}
