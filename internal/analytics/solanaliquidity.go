package analytics

import (
	"fmt"
	"time"
)

const (
	solanaSpreadThreshHigh        = 50.0
	solanaSpreadThreshMed         = 20.0
	solanaImpactThreshHigh        = 100.0
	solanaImpactThreshMed         = 30.0
	solanaRPCLatencyThreshHigh    = 2000.0
	solanaOBDepthThreshLow        = 5000.0
	solanaOBDepthThreshMed        = 50000.0
	solanaCongestionRPCThresh     = 1500.0
	solanaCongestionSlotDeltaThresh = 10
)

// SolanaExecutionQuality scores how favorable current Solana venue
// conditions are for executing a trade.
type SolanaExecutionQuality struct {
	ExecutionQualityScore float64
	CongestionWarning     bool
	SlippageRisk          string // low|medium|high
	SpreadScore           float64
	ImpactScore           float64
	LatencyScore          float64
	DepthScore            float64
	Ts                    time.Time
}

// ComputeSolanaExecutionQuality blends spread, price impact, RPC
// latency, and orderbook depth into a single 0-100 execution quality
// score, each dimension individually floored at 0 once its threshold is
// exceeded.
func ComputeSolanaExecutionQuality(spreadBps, priceImpactBps, rpcLatencyMs, obDepth float64) SolanaExecutionQuality {
	spreadScore := maxFloat(0, 100.0-(spreadBps/solanaSpreadThreshHigh)*100.0)
	impactScore := maxFloat(0, 100.0-(priceImpactBps/solanaImpactThreshHigh)*100.0)
	latencyScore := maxFloat(0, 100.0-(rpcLatencyMs/solanaRPCLatencyThreshHigh)*100.0)

	var depthScore float64
	switch {
	case obDepth >= solanaOBDepthThreshMed:
		depthScore = 100.0
	case obDepth >= solanaOBDepthThreshLow:
		depthScore = 50.0 + 50.0*((obDepth-solanaOBDepthThreshLow)/(solanaOBDepthThreshMed-solanaOBDepthThreshLow))
	default:
		depthScore = maxFloat(0, 50.0*(obDepth/solanaOBDepthThreshLow))
	}

	eqs := clamp(0.30*spreadScore+0.25*impactScore+0.25*latencyScore+0.20*depthScore, 0, 100)

	var slippageRisk string
	switch {
	case spreadBps >= solanaSpreadThreshHigh || priceImpactBps >= solanaImpactThreshHigh:
		slippageRisk = "high"
	case spreadBps >= solanaSpreadThreshMed || priceImpactBps >= solanaImpactThreshMed:
		slippageRisk = "medium"
	default:
		slippageRisk = "low"
	}

	return SolanaExecutionQuality{
		ExecutionQualityScore: round2(eqs),
		CongestionWarning:     rpcLatencyMs >= solanaCongestionRPCThresh,
		SlippageRisk:          slippageRisk,
		SpreadScore:           round2(spreadScore),
		ImpactScore:           round2(impactScore),
		LatencyScore:          round2(latencyScore),
		DepthScore:            round2(depthScore),
		Ts:                    time.Now().UTC(),
	}
}

// SolanaCongestion is a network-congestion verdict combining RPC
// latency and slot lag.
type SolanaCongestion struct {
	Congested          bool
	Severity           string // low|medium|high
	Reasons            []string
	RecommendedAction  string // proceed|reduce_size|delay_execution
	Ts                 time.Time
}

// AssessSolanaCongestion flags congestion from RPC latency and/or slot
// delta, escalating to "high" severity (and a recommendation to delay)
// only when both signals cross their thresholds simultaneously.
func AssessSolanaCongestion(rpcLatencyMs float64, slotDelta int) SolanaCongestion {
	latencyHigh := rpcLatencyMs >= solanaCongestionRPCThresh
	slotHigh := slotDelta >= solanaCongestionSlotDeltaThresh

	var severity string
	switch {
	case latencyHigh && slotHigh:
		severity = "high"
	case latencyHigh || slotHigh:
		severity = "medium"
	default:
		severity = "low"
	}

	var reasons []string
	if latencyHigh {
		reasons = append(reasons, fmt.Sprintf("RPC latency %.0fms exceeds %.0fms threshold", rpcLatencyMs, float64(solanaCongestionRPCThresh)))
	}
	if slotHigh {
		reasons = append(reasons, fmt.Sprintf("slot delta %d exceeds %d threshold", slotDelta, solanaCongestionSlotDeltaThresh))
	}

	action := "proceed"
	switch severity {
	case "high":
		action = "delay_execution"
	case "medium":
		action = "reduce_size"
	}

	return SolanaCongestion{
		Congested:         latencyHigh || slotHigh,
		Severity:          severity,
		Reasons:           reasons,
		RecommendedAction: action,
		Ts:                time.Now().UTC(),
	}
}

// JupiterRouteEstimate is a rough pre-trade cost estimate for a Jupiter
// aggregator swap, derived from cached depth/impact observations rather
// than a live route query.
type JupiterRouteEstimate struct {
	InputMint             string
	OutputMint            string
	AmountUSD             float64
	EstimatedPriceImpactBps float64
	EstimatedHops         int
	RiskLevel             string // low|medium|high
	DepthAvailable        float64
	Ts                    time.Time
}

// EstimateJupiterRoute scales a cached impact-per-dollar-of-depth figure
// by the requested trade size, falling back to a flat 10bps estimate
// when no cached depth is available.
func EstimateJupiterRoute(inputMint, outputMint string, amountUSD, cachedDepth, cachedImpactBps float64) JupiterRouteEstimate {
	estimatedImpact := 10.0
	if cachedDepth > 0 {
		estimatedImpact = cachedImpactBps * (amountUSD / maxFloat(cachedDepth, 1.0))
	}

	var hops int
	switch {
	case amountUSD <= 1000:
		hops = 1
	case amountUSD <= 10000:
		hops = 2
	default:
		hops = 3
	}

	riskLevel := "low"
	switch {
	case estimatedImpact > 100:
		riskLevel = "high"
	case estimatedImpact > 30:
		riskLevel = "medium"
	}

	return JupiterRouteEstimate{
		InputMint: inputMint, OutputMint: outputMint, AmountUSD: amountUSD,
		EstimatedPriceImpactBps: round2(estimatedImpact),
		EstimatedHops:           hops,
		RiskLevel:               riskLevel,
		DepthAvailable:          cachedDepth,
		Ts:                      time.Now().UTC(),
	}
}
