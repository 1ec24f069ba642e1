package agents

import (
	"fmt"
	"math"
	"time"
)

// MicrostructureInput is the orderbook/trade-flow slice of MarketState a
// HyperliquidAgent reads.
type MicrostructureInput struct {
	OBImbalance     float64
	SpreadBps       float64
	TradeAggression float64
	BidDepth        float64
	AskDepth        float64
	DataTs          time.Time
}

// HyperliquidAgent reads Hyperliquid orderbook microstructure —
// imbalance, spread compression, trade aggression, and depth — for
// short-horizon directional and liquidity signals.
type HyperliquidAgent struct {
	ImbalanceThreshold     float64
	SpreadCompressBps      float64
	AggressionThreshold    float64
	ThinningDepthThreshold float64
}

// NewHyperliquidAgent returns an agent using the desk's standard
// microstructure thresholds.
func NewHyperliquidAgent() *HyperliquidAgent {
	return &HyperliquidAgent{
		ImbalanceThreshold:     0.4,
		SpreadCompressBps:      5.0,
		AggressionThreshold:    0.6,
		ThinningDepthThreshold: 50000.0,
	}
}

// Evaluate flags orderbook imbalance, spread compression (a liquidity
// tell, not a risk), trade aggression, and thinning total depth.
func (a *HyperliquidAgent) Evaluate(in MicrostructureInput) []Signal {
	now := time.Now().UTC()
	dataTs := in.DataTs
	if dataTs.IsZero() {
		dataTs = now
	}
	totalDepth := in.BidDepth + in.AskDepth

	var signals []Signal

	if math.Abs(in.OBImbalance) > a.ImbalanceThreshold {
		direction := "bearish"
		if in.OBImbalance > 0 {
			direction = "bullish"
		}
		confidence := clampConfidence(0.70+math.Abs(in.OBImbalance)*0.25, 0.95)
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "hyperliquid_agent", Signal: "MICROSTRUCTURE_SIGNAL",
			Direction: direction, Confidence: round2(confidence),
			Reason:     fmt.Sprintf("Orderbook imbalance %.2f suggests %s pressure", in.OBImbalance, direction),
			Severity:   "medium", DataTsUsed: dataTs, Ts: now,
		})
	}

	if in.SpreadBps > 0 && in.SpreadBps <= a.SpreadCompressBps {
		confidence := clampConfidence(0.70+(a.SpreadCompressBps-in.SpreadBps)/a.SpreadCompressBps*0.20, 0.95)
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "hyperliquid_agent", Signal: "MICROSTRUCTURE_SIGNAL",
			Direction: "neutral", Confidence: round2(confidence),
			Reason:     fmt.Sprintf("Spread compressed to %.1fbps - high liquidity regime", in.SpreadBps),
			Severity:   "low", DataTsUsed: dataTs, Ts: now,
		})
	}

	if math.Abs(in.TradeAggression) > a.AggressionThreshold {
		direction := "bearish"
		if in.TradeAggression > 0 {
			direction = "bullish"
		}
		confidence := clampConfidence(0.70+math.Abs(in.TradeAggression)*0.20, 0.95)
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "hyperliquid_agent", Signal: "MICROSTRUCTURE_SIGNAL",
			Direction: direction, Confidence: round2(confidence),
			Reason:     fmt.Sprintf("Trade aggression %.2f indicates %s momentum", in.TradeAggression, direction),
			Severity:   "medium", DataTsUsed: dataTs, Ts: now,
		})
	}

	if totalDepth > 0 && totalDepth < a.ThinningDepthThreshold {
		thinningRatio := totalDepth / a.ThinningDepthThreshold
		confidence := clampConfidence(0.70+(1.0-thinningRatio)*0.25, 0.95)
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "hyperliquid_agent", Signal: "LIQUIDITY_THINNING_WARNING",
			Direction: "neutral", Confidence: round2(confidence),
			Reason:     fmt.Sprintf("Total depth $%.0f below $%.0f threshold", totalDepth, a.ThinningDepthThreshold),
			Severity:   "high", DataTsUsed: dataTs, Ts: now,
		})
	}

	return signals
}
