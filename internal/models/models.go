// Package models holds the shared data model of the risk desk: the
// immutable ticks ingestors produce, the position and event records the
// core mutates, and the typed MarketState record analytics and agents
// consume in place of the legacy free-form "state" mapping (see Design
// Notes on dynamic mapping inputs).
package models

import "time"

// PriceTick is an immutable price observation produced by an ingestor.
type PriceTick struct {
	Symbol     string    `json:"symbol"`
	Venue      string    `json:"venue"`
	Price      float64   `json:"price"`
	Confidence float64   `json:"confidence"`
	Ts         time.Time `json:"ts"`
}

// FundingTick is a per-period funding rate observation. Venues quote an
// 8-hour period; annualization uses 3*365.
type FundingTick struct {
	Venue       string    `json:"venue"`
	Market      string    `json:"market"`
	FundingRate float64   `json:"funding_rate"`
	Ts          time.Time `json:"ts"`
}

// PriceLevel is one (price, qty) rung of an order book side.
type PriceLevel struct {
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
}

// OrderbookSnap is a venue order book snapshot. Bids are ordered
// descending by price, asks ascending.
type OrderbookSnap struct {
	Venue  string       `json:"venue"`
	Market string       `json:"market"`
	Bids   []PriceLevel `json:"bids"`
	Asks   []PriceLevel `json:"asks"`
	Ts     time.Time    `json:"ts"`
}

// IndexTick is the latest tariff index reading.
type IndexTick struct {
	TariffIndex  float64            `json:"tariff_index"`
	ShockScore   float64            `json:"shock_score"`
	RateOfChange float64            `json:"rate_of_change"`
	Components   map[string]float64 `json:"components"`
	Ts           time.Time          `json:"ts"`
}

// Position is keyed by (Venue, Market). SignedSize>0 is long, <0 is short,
// ==0 means the position does not exist and must be removed from storage.
type Position struct {
	Venue      string   `json:"venue"`
	Market     string   `json:"market"`
	SignedSize float64  `json:"signed_size"`
	EntryPrice float64  `json:"entry_price"`
	PnL        float64  `json:"pnl"`
	Margin     float64  `json:"margin"`
	LiqPrice   *float64 `json:"liq_price,omitempty"`
}

// Side returns "long" or "short" for a nonzero position.
func (p Position) Side() string {
	if p.SignedSize < 0 {
		return "short"
	}
	return "long"
}

// Key returns the (venue, market) storage key.
func (p Position) Key() string {
	return p.Venue + ":" + p.Market
}

// Event is a single append-only, typed entry on the bus. Payload is a
// free-form map because event shapes vary widely by EventType; every
// producer in this repo documents its own payload fields at the call site.
type Event struct {
	ID        string                 `json:"id"`
	EventType string                 `json:"event_type"`
	Source    string                 `json:"source"`
	Payload   map[string]interface{} `json:"payload"`
	Ts        time.Time              `json:"ts"`
}

// RiskState is the guardrail engine's mutable state, persisted between
// checkConstraints calls.
type RiskState struct {
	ThrottleActive     bool      `json:"throttle_active"`
	ThrottleReason     string    `json:"throttle_reason"`
	LastActionTs       time.Time `json:"last_action_ts"`
	DailyPnL           float64   `json:"daily_pnl"`
	DailyPnLResetDate  string    `json:"daily_pnl_reset_date"`
}

// MarketState is the typed record analytics modules and agents read,
// replacing the legacy loosely-typed "state" mapping per Design Notes §9.
// Every field referenced anywhere in the spec is enumerated here; Extra
// carries anything forward-compatible an implementation wants to stash.
type MarketState struct {
	TariffIndex       float64 `json:"tariff_index"`
	TariffMomentum    float64 `json:"tariff_momentum"`
	RateOfChange      float64 `json:"rate_of_change"`
	ShockScore        float64 `json:"shock_score"`
	VolRegime         string  `json:"vol_regime"`         // low|normal|high|extreme
	FundingRegime     string  `json:"funding_regime"`     // contango|neutral|backwardation
	FundingRegimeFlip bool    `json:"funding_regime_flip"`
	CarryScore        float64 `json:"carry_score"`

	CurrentPrice     float64 `json:"current_price"`
	PriceChangePct   float64 `json:"price_change_pct"`
	SpreadBps        float64 `json:"spread_bps"`
	LiquidityDepth   float64 `json:"liquidity_depth"`
	OBImbalance      float64 `json:"ob_imbalance"`
	PriceIntegrity   string  `json:"price_integrity"` // OK|WARNING

	DivergenceAlertActive bool `json:"divergence_alert_active"`

	StablecoinHealth float64 `json:"stablecoin_health"`

	SuggestedSize float64 `json:"suggested_size"`
	SuggestedSide string  `json:"suggested_side"`
	Venue         string  `json:"venue"`
	Market        string  `json:"market"`

	// TradeAggression is consumed by HyperliquidAgent but never populated
	// by any ingestor in this repo (see Design Notes, open question #2).
	// Optional, zero-defaulted.
	TradeAggression float64 `json:"trade_aggression"`

	Positions []Position `json:"positions"`

	Extra map[string]interface{} `json:"extra,omitempty"`
}
