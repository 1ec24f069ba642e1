package agents

import (
	"fmt"
	"math"
	"time"
)

// StablecoinDepeg is one symbol's depeg reading, as surfaced by
// internal/analytics's stablehealth computations.
type StablecoinDepeg struct {
	Symbol   string
	DepegBps float64
}

// LiquidityInput is the liquidity slice of MarketState a LiquidityAgent
// reads.
type LiquidityInput struct {
	StablecoinHealth []StablecoinDepeg
	OBImbalance      float64
	SpreadBps        float64
	DataTs           time.Time
}

// LiquidityAgent watches stablecoin peg health, orderbook imbalance, and
// spread for signs of thinning liquidity.
type LiquidityAgent struct{}

// NewLiquidityAgent returns a LiquidityAgent.
func NewLiquidityAgent() *LiquidityAgent { return &LiquidityAgent{} }

// Evaluate flags any stablecoin depegging beyond 50bps, extreme orderbook
// imbalance, and wide spreads.
func (a *LiquidityAgent) Evaluate(in LiquidityInput) []Signal {
	now := time.Now().UTC()
	dataTs := in.DataTs
	if dataTs.IsZero() {
		dataTs = now
	}

	var signals []Signal

	for _, sc := range in.StablecoinHealth {
		if sc.DepegBps > 50 {
			signals = append(signals, Signal{
				Type: "AGENT_SIGNAL", Agent: "liquidity_agent", Signal: "STABLE_DEPEG_DETECTED",
				Reason:     fmt.Sprintf("%s depeg at %.0fbps - monitor peg health", sc.Symbol, sc.DepegBps),
				Severity:   "high", Confidence: 0.90, DataTsUsed: dataTs, Ts: now,
			})
		}
	}

	if math.Abs(in.OBImbalance) > 0.5 {
		direction := "sell-heavy"
		if in.OBImbalance > 0 {
			direction = "buy-heavy"
		}
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "liquidity_agent", Signal: "EXTREME_IMBALANCE",
			Reason:     fmt.Sprintf("Orderbook heavily %s (imbalance=%.2f)", direction, in.OBImbalance),
			Severity:   "medium", Confidence: 0.75, DataTsUsed: dataTs, Ts: now,
		})
	}

	if in.SpreadBps > 30 {
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "liquidity_agent", Signal: "WIDE_SPREAD",
			Reason:     fmt.Sprintf("Spread %.0fbps - liquidity thinning", in.SpreadBps),
			Severity:   "medium", Confidence: 0.80, DataTsUsed: dataTs, Ts: now,
		})
	}

	return signals
}
