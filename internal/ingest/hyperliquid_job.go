package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/store"
	"github.com/sawpanic/riskdesk/internal/timeutil"
)

const (
	hyperliquidInitialBackoff = time.Second
	hyperliquidMaxBackoff     = 60 * time.Second
)

// wsMessage is the channel envelope every Hyperliquid WS push arrives in.
type wsMessage struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// Dialer opens the Hyperliquid WebSocket connection. The concrete dial
// target and TLS/proxy configuration are an external collaborator; this
// repo only owns the reconnect loop and message handling around it.
type Dialer func(ctx context.Context) (*websocket.Conn, error)

// HyperliquidJob holds a single long-lived WebSocket connection and
// reconnects with exponential backoff (1s doubling to a 60s cap) on any
// disconnect, matching the original client's behavior. Unlike the other
// ingest jobs it is not invoked repeatedly by the scheduler: call Start
// once and let it run until ctx is canceled.
type HyperliquidJob struct {
	Symbol string
	Dial   Dialer
	Snaps  store.SnapshotStore
	Logger zerolog.Logger

	conn *websocket.Conn
}

func (j *HyperliquidJob) Name() string { return "hyperliquid_ws" }

// Start connects and reconnects until ctx is canceled. It never returns an
// error to the caller; every disconnect is logged and retried.
func (j *HyperliquidJob) Start(ctx context.Context) {
	backoff := hyperliquidInitialBackoff
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := j.connectAndListen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			j.Logger.Warn().Err(err).Dur("retry_in", backoff).Msg("hyperliquid ws disconnected")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > hyperliquidMaxBackoff {
				backoff = hyperliquidMaxBackoff
			}
			continue
		}
		backoff = hyperliquidInitialBackoff
	}
}

func (j *HyperliquidJob) connectAndListen(ctx context.Context) error {
	if j.Dial == nil {
		return ErrNoFetcher
	}
	conn, err := j.Dial(ctx)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	j.conn = conn
	defer conn.Close()

	if err := j.subscribe(conn); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	j.Logger.Info().Str("symbol", j.Symbol).Msg("hyperliquid ws connected")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			j.Logger.Warn().Msg("hyperliquid ws: invalid JSON received")
			continue
		}
		j.handleMessage(msg)
	}
}

func (j *HyperliquidJob) subscribe(conn *websocket.Conn) error {
	subs := []map[string]interface{}{
		{"method": "subscribe", "subscription": map[string]interface{}{"type": "allMids"}},
		{"method": "subscribe", "subscription": map[string]interface{}{"type": "trades", "coin": j.Symbol}},
		{"method": "subscribe", "subscription": map[string]interface{}{"type": "l2Book", "coin": j.Symbol}},
	}
	for _, sub := range subs {
		if err := conn.WriteJSON(sub); err != nil {
			return err
		}
	}
	return nil
}

func (j *HyperliquidJob) handleMessage(msg wsMessage) {
	switch msg.Channel {
	case "allMids":
		j.handleAllMids(msg.Data)
	case "trades":
		j.handleTrades(msg.Data)
	case "l2Book":
		j.handleL2Book(msg.Data)
	}
}

func (j *HyperliquidJob) handleAllMids(data json.RawMessage) {
	var payload struct {
		Mids map[string]string `json:"mids"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	priceStr, ok := payload.Mids[j.Symbol]
	if !ok {
		return
	}
	var price float64
	if _, err := fmt.Sscanf(priceStr, "%f", &price); err != nil || price <= 0 {
		return
	}
	tick := models.PriceTick{Symbol: j.Symbol + "/USD", Venue: "hyperliquid", Price: price, Ts: timeutil.NowUTC()}
	j.Snaps.Set("price:hyperliquid:"+j.Symbol+"/USD", tick, 60*time.Second)
}

func (j *HyperliquidJob) handleTrades(data json.RawMessage) {
	var trades []struct {
		Coin string `json:"coin"`
		Px   string `json:"px"`
	}
	if err := json.Unmarshal(data, &trades); err != nil {
		return
	}
	for _, tr := range trades {
		if tr.Coin != j.Symbol {
			continue
		}
		var price float64
		if _, err := fmt.Sscanf(tr.Px, "%f", &price); err != nil || price <= 0 {
			continue
		}
		tick := models.PriceTick{Symbol: tr.Coin + "/USD", Venue: "hyperliquid", Price: price, Ts: timeutil.NowUTC()}
		j.Snaps.Set("price:hyperliquid:trade:"+tr.Coin, tick, 60*time.Second)
	}
}

func (j *HyperliquidJob) handleL2Book(data json.RawMessage) {
	var payload struct {
		Coin   string `json:"coin"`
		Levels [][]struct {
			Px string `json:"px"`
			Sz string `json:"sz"`
		} `json:"levels"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}
	coin := payload.Coin
	if coin == "" {
		coin = j.Symbol
	}

	parseLevels := func(raw []struct {
		Px string `json:"px"`
		Sz string `json:"sz"`
	}) []models.PriceLevel {
		levels := make([]models.PriceLevel, 0, len(raw))
		for _, l := range raw {
			var px, sz float64
			fmt.Sscanf(l.Px, "%f", &px)
			fmt.Sscanf(l.Sz, "%f", &sz)
			levels = append(levels, models.PriceLevel{Price: px, Qty: sz})
		}
		return levels
	}

	var bids, asks []models.PriceLevel
	if len(payload.Levels) > 0 {
		bids = parseLevels(payload.Levels[0])
	}
	if len(payload.Levels) > 1 {
		asks = parseLevels(payload.Levels[1])
	}

	snap := models.OrderbookSnap{
		Venue:  "hyperliquid",
		Market: coin + "-PERP",
		Bids:   bids,
		Asks:   asks,
		Ts:     timeutil.NowUTC(),
	}
	j.Snaps.Set("orderbook:hyperliquid:"+coin, snap, 30*time.Second)
}
