package agents

import (
	"fmt"
	"strings"
	"time"

	"github.com/sawpanic/riskdesk/internal/analytics"
)

// JupiterInput is the swap-quote/route/congestion slice of MarketState a
// JupiterAgent reads.
type JupiterInput struct {
	QuoteAgeSeconds float64
	RouteHops       int
	PriceImpactBps  float64
	SpreadBps       float64
	RPCLatencyMs    float64
	SlotDelta       int
	OBDepth         float64
	DataTs          time.Time
}

// JupiterAgent watches Solana swap-route health: quote staleness, route
// complexity, price impact, slippage, and RPC/slot congestion, deferring
// to internal/analytics's solana liquidity helpers for the composite
// congestion and execution-quality reads.
type JupiterAgent struct {
	QuoteStaleSeconds     float64
	RouteComplexityWarn   int
	PriceImpactWarnBps    float64
	SlippageHighBps       float64
	CongestionRPCThreshMs float64
}

// NewJupiterAgent returns an agent using the desk's standard Jupiter
// route thresholds.
func NewJupiterAgent() *JupiterAgent {
	return &JupiterAgent{
		QuoteStaleSeconds:     30.0,
		RouteComplexityWarn:   3,
		PriceImpactWarnBps:    50.0,
		SlippageHighBps:       80.0,
		CongestionRPCThreshMs: 1500.0,
	}
}

// Evaluate flags stale quotes, overly complex routes, high price impact,
// slippage spikes, Solana network congestion, and poor composite
// execution quality.
func (a *JupiterAgent) Evaluate(in JupiterInput) []Signal {
	now := time.Now().UTC()
	dataTs := in.DataTs
	if dataTs.IsZero() {
		dataTs = now
	}

	var signals []Signal

	if in.QuoteAgeSeconds > a.QuoteStaleSeconds {
		staleness := minFloat(in.QuoteAgeSeconds/a.QuoteStaleSeconds, 3.0)
		confidence := clampConfidence(0.70+staleness*0.08, 0.95)
		severity := "medium"
		if in.QuoteAgeSeconds > a.QuoteStaleSeconds*2 {
			severity = "high"
		}
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "jupiter_agent", Signal: "JUPITER_QUOTE_STALE",
			Direction: "neutral", Confidence: round2(confidence),
			Reason:         fmt.Sprintf("Jupiter quote age %.0fs exceeds %.0fs threshold - re-quote before execution", in.QuoteAgeSeconds, a.QuoteStaleSeconds),
			Severity:       severity, DataTsUsed: dataTs, Ts: now, ProposedAction: "block_execution",
		})
	}

	if in.RouteHops >= a.RouteComplexityWarn {
		confidence := clampConfidence(0.70+float64(in.RouteHops-a.RouteComplexityWarn)*0.10, 0.95)
		severity := "medium"
		if in.RouteHops > 4 {
			severity = "high"
		}
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "jupiter_agent", Signal: "JUPITER_ROUTE_COMPLEX",
			Direction: "neutral", Confidence: round2(confidence),
			Reason:         fmt.Sprintf("Route uses %d hops - increased slippage and failure risk", in.RouteHops),
			Severity:       severity, DataTsUsed: dataTs, Ts: now, ProposedAction: "reduce_size",
		})
	}

	if in.PriceImpactBps > a.PriceImpactWarnBps {
		ratio := minFloat(in.PriceImpactBps/a.PriceImpactWarnBps, 4.0)
		confidence := clampConfidence(0.70+ratio*0.06, 0.95)
		severity := "medium"
		proposedAction := "reduce_size"
		if in.PriceImpactBps > a.PriceImpactWarnBps*2 {
			severity = "high"
			proposedAction = "block_execution"
		}
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "jupiter_agent", Signal: "JUPITER_PRICE_IMPACT_HIGH",
			Direction: "bearish", Confidence: round2(confidence),
			Reason:         fmt.Sprintf("Price impact %.1fbps exceeds %.0fbps warn level", in.PriceImpactBps, a.PriceImpactWarnBps),
			Severity:       severity, DataTsUsed: dataTs, Ts: now, ProposedAction: proposedAction,
		})
	}

	if in.SpreadBps > a.SlippageHighBps {
		ratio := minFloat(in.SpreadBps/a.SlippageHighBps, 4.0)
		confidence := clampConfidence(0.70+ratio*0.06, 0.95)
		severity := "medium"
		if in.SpreadBps > a.SlippageHighBps*2 {
			severity = "high"
		}
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "jupiter_agent", Signal: "JUPITER_SLIPPAGE_SPIKE",
			Direction: "neutral", Confidence: round2(confidence),
			Reason:         fmt.Sprintf("Effective spread %.1fbps indicates high slippage environment", in.SpreadBps),
			Severity:       severity, DataTsUsed: dataTs, Ts: now, ProposedAction: "delay_execution",
		})
	}

	if in.RPCLatencyMs > 0 || in.SlotDelta > 0 {
		congestion := analytics.AssessSolanaCongestion(in.RPCLatencyMs, in.SlotDelta)
		if congestion.Congested {
			confidence := 0.75
			if congestion.Severity == "high" {
				confidence = 0.85
			}
			signals = append(signals, Signal{
				Type: "AGENT_SIGNAL", Agent: "jupiter_agent", Signal: "SOLANA_CONGESTION_WARNING",
				Direction: "neutral", Confidence: confidence,
				Reason:         fmt.Sprintf("Solana congestion detected: %s", strings.Join(congestion.Reasons, "; ")),
				Severity:       congestion.Severity, DataTsUsed: dataTs, Ts: now, ProposedAction: congestion.RecommendedAction,
			})
		}
	}

	if in.SpreadBps > 0 || in.PriceImpactBps > 0 || in.RPCLatencyMs > 0 {
		quality := analytics.ComputeSolanaExecutionQuality(in.SpreadBps, in.PriceImpactBps, in.RPCLatencyMs, in.OBDepth)
		if quality.ExecutionQualityScore < 40.0 {
			confidence := clampConfidence(0.70+(40.0-quality.ExecutionQualityScore)/40.0*0.25, 0.95)
			severity := "medium"
			proposedAction := "reduce_size"
			if quality.ExecutionQualityScore < 20 {
				severity = "high"
				proposedAction = "block_execution"
			}
			signals = append(signals, Signal{
				Type: "AGENT_SIGNAL", Agent: "jupiter_agent", Signal: "JUPITER_LOW_QUALITY",
				Direction: "neutral", Confidence: round2(confidence),
				Reason:         fmt.Sprintf("Execution quality score %.0f/100 - poor conditions for swap", quality.ExecutionQualityScore),
				Severity:       severity, DataTsUsed: dataTs, Ts: now, ProposedAction: proposedAction,
				Detail: map[string]interface{}{"execution_quality": quality},
			})
		}
	}

	return signals
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
