package agents

import (
	"fmt"
	"time"
)

// MarketSnapshot is the pre-trade liquidity/integrity picture an order is
// checked against.
type MarketSnapshot struct {
	SpreadBps      float64
	LiquidityDepth float64
	PriceIntegrity string // OK|WARNING
}

// PreTradeOrder is the minimal order shape ExecutionAgent needs to echo
// back in its verdict.
type PreTradeOrder struct {
	Venue  string
	Market string
	Side   string
	Size   float64
}

// PreTradeVerdict is ExecutionAgent's allow/block decision on one order.
type PreTradeVerdict struct {
	Allowed bool
	Reasons []string
	Order   PreTradeOrder
	Ts      time.Time
	Signal  Signal
}

// ExecutionAgent gates orders on spread, depth, and price integrity
// before they reach a venue, and separately watches the same conditions
// for advisory signals.
type ExecutionAgent struct {
	MaxSlippageBps    float64
	MinLiquidityDepth float64
}

// NewExecutionAgent returns an agent using the desk's standard 50bps
// slippage ceiling and 50-unit minimum depth.
func NewExecutionAgent() *ExecutionAgent {
	return &ExecutionAgent{MaxSlippageBps: 50.0, MinLiquidityDepth: 50.0}
}

// PreTradeCheck blocks order if the spread exceeds MaxSlippageBps, depth
// is below MinLiquidityDepth (when reported), or price integrity is
// WARNING.
func (a *ExecutionAgent) PreTradeCheck(order PreTradeOrder, market MarketSnapshot) PreTradeVerdict {
	var reasons []string
	allowed := true

	if market.SpreadBps > a.MaxSlippageBps {
		reasons = append(reasons, fmt.Sprintf("Spread %.0fbps exceeds max %.0fbps", market.SpreadBps, a.MaxSlippageBps))
		allowed = false
	}
	if market.LiquidityDepth > 0 && market.LiquidityDepth < a.MinLiquidityDepth {
		reasons = append(reasons, fmt.Sprintf("Liquidity depth %.0f below minimum %.0f", market.LiquidityDepth, a.MinLiquidityDepth))
		allowed = false
	}
	if market.PriceIntegrity == "WARNING" {
		reasons = append(reasons, "Price integrity WARNING - cross-venue deviation detected")
		allowed = false
	}

	now := time.Now().UTC()
	sig := Signal{Agent: "execution_agent", Ts: now}
	if allowed {
		sig.Type = "AGENT_SIGNAL"
		sig.Signal = "TRADE_APPROVED"
	} else {
		sig.Type = "AGENT_BLOCKED"
	}

	return PreTradeVerdict{Allowed: allowed, Reasons: reasons, Order: order, Ts: now, Signal: sig}
}

// ExecutionWatchInput is the slice of state ExecutionAgent.Evaluate
// watches continuously, independent of any single order.
type ExecutionWatchInput struct {
	PriceIntegrity string
	SpreadBps      float64
	DataTs         time.Time
}

// Evaluate flags a compromised price-integrity read and a spread that has
// drifted past the agent's safe threshold.
func (a *ExecutionAgent) Evaluate(in ExecutionWatchInput) []Signal {
	now := time.Now().UTC()
	dataTs := in.DataTs
	if dataTs.IsZero() {
		dataTs = now
	}

	var signals []Signal

	if in.PriceIntegrity == "WARNING" {
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "execution_agent", Signal: "PRICE_INTEGRITY_WARNING",
			Reason:     "Price integrity compromised - execution should be paused",
			Severity:   "high", Confidence: 0.95, DataTsUsed: dataTs, Ts: now,
		})
	}

	if in.SpreadBps > a.MaxSlippageBps {
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "execution_agent", Signal: "HIGH_SLIPPAGE_WARNING",
			Reason:     fmt.Sprintf("Spread %.0fbps exceeds safe threshold %.0fbps", in.SpreadBps, a.MaxSlippageBps),
			Severity:   "medium", Confidence: 0.90, DataTsUsed: dataTs, Ts: now,
		})
	}

	return signals
}
