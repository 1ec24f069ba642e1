package agents

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sawpanic/riskdesk/internal/models"
)

// HedgingInput is the full slice of MarketState the HedgingAgent
// synthesizes into one beta/delta target.
type HedgingInput struct {
	ShockScore      float64
	TariffIndex     float64
	VolRegime       string
	FundingRegime   string
	MarginUsage     float64
	PredictorProb   float64
	CarryScore      float64
	MaxStableDepeg  float64
	Positions       []models.Position
	DataTs          time.Time
}

// HedgingAgent combines shock, volatility, funding, margin, and macro
// predictor readings into a single target-beta/target-delta hedge
// proposal. It never executes the hedge — only proposes legs for
// internal/execution to place.
type HedgingAgent struct {
	HighShockThreshold float64
	HighVolRegimes     map[string]bool
	DepegWarnBps       float64
	MarginWarnThresh   float64
	ConfidenceFloor    float64
}

// NewHedgingAgent returns an agent using the desk's standard thresholds.
func NewHedgingAgent() *HedgingAgent {
	return &HedgingAgent{
		HighShockThreshold: 60.0,
		HighVolRegimes:     map[string]bool{"high": true, "extreme": true},
		DepegWarnBps:       30.0,
		MarginWarnThresh:   0.6,
		ConfidenceFloor:    0.70,
	}
}

// Evaluate folds every active hedge trigger into one HEDGE_PROPOSAL
// signal (plus HEDGE_REBALANCE_SUGGESTED / HEDGE_THROTTLE_RECOMMENDED
// follow-ons when conditions warrant), or returns nil if nothing fired.
func (a *HedgingAgent) Evaluate(in HedgingInput) []Signal {
	now := time.Now().UTC()
	dataTs := in.DataTs
	if dataTs.IsZero() {
		dataTs = now
	}

	var exposure float64
	for _, p := range in.Positions {
		exposure += math.Abs(p.SignedSize * p.EntryPrice)
	}

	targetBeta := 1.0
	targetDelta := 0.0
	urgency := "low"
	var reasoning []string
	var proposedActions []string

	if in.ShockScore > a.HighShockThreshold {
		reduction := math.Min((in.ShockScore-a.HighShockThreshold)/100.0, 0.5)
		targetBeta -= reduction
		reasoning = append(reasoning, fmt.Sprintf("Shock score %.1f elevated — reduce beta by %.2f", in.ShockScore, reduction))
		proposedActions = append(proposedActions, "reduce_exposure")
		urgency = "medium"
	}

	if a.HighVolRegimes[in.VolRegime] {
		targetBeta *= 0.7
		reasoning = append(reasoning, fmt.Sprintf("Vol regime '%s' — scale to 70%% target beta", in.VolRegime))
		proposedActions = append(proposedActions, "scale_down_risk")
		if in.VolRegime == "extreme" {
			urgency = "high"
		} else {
			urgency = maxUrgency(urgency, "medium")
		}
	}

	if in.PredictorProb < 0.35 {
		targetDelta = -0.15
		reasoning = append(reasoning, fmt.Sprintf("Macro predictor bearish (%.2f) — tilt short delta", in.PredictorProb))
		proposedActions = append(proposedActions, "hedge_via_hl_short")
	} else if in.PredictorProb > 0.65 {
		targetDelta = 0.10
		reasoning = append(reasoning, fmt.Sprintf("Macro predictor bullish (%.2f) — allow long delta", in.PredictorProb))
	}

	if in.MaxStableDepeg > a.DepegWarnBps {
		targetBeta *= 0.8
		reasoning = append(reasoning, fmt.Sprintf("Stablecoin depeg %.0fbps — reduce exposure + rotate to safer stables", in.MaxStableDepeg))
		proposedActions = append(proposedActions, "stable_rotation")
		urgency = "high"
	}

	if in.MarginUsage > a.MarginWarnThresh {
		targetBeta *= 0.6
		reasoning = append(reasoning, fmt.Sprintf("Margin usage %.0f%% high — deleverage urgently", in.MarginUsage*100))
		proposedActions = append(proposedActions, "deleverage")
		urgency = "high"
	}

	if in.FundingRegime == "negative" && in.CarryScore < -0.05 {
		reasoning = append(reasoning, fmt.Sprintf("Negative funding regime (carry %.3f) — consider reducing HL longs or hedging via Drift", in.CarryScore))
		proposedActions = append(proposedActions, "hedge_funding_via_drift")
	}

	if in.TariffIndex > 70 {
		targetBeta *= 0.85
		reasoning = append(reasoning, fmt.Sprintf("Tariff index %.1f elevated — macro headwind, reduce risk", in.TariffIndex))
		proposedActions = append(proposedActions, "reduce_exposure")
	}

	if len(reasoning) == 0 {
		return nil
	}

	targetBeta = math.Max(round2(targetBeta), 0.0)
	targetDelta = round2(targetDelta)

	var hedgeLegs []map[string]string
	if contains(proposedActions, "hedge_via_hl_short") || contains(proposedActions, "reduce_exposure") {
		hedgeLegs = append(hedgeLegs, map[string]string{"venue": "hyperliquid", "action": "short_perp", "sizing": "proportional_to_beta_gap"})
	}
	if contains(proposedActions, "hedge_funding_via_drift") {
		hedgeLegs = append(hedgeLegs, map[string]string{"venue": "drift", "action": "long_perp", "sizing": "carry_neutral"})
	}
	if contains(proposedActions, "stable_rotation") {
		hedgeLegs = append(hedgeLegs, map[string]string{"venue": "jupiter", "action": "swap_to_usdc", "sizing": "excess_stable_allocation"})
	}

	var confidenceFactors []float64
	if in.ShockScore > 0 {
		confidenceFactors = append(confidenceFactors, math.Min(in.ShockScore/100.0, 0.3))
	}
	if a.HighVolRegimes[in.VolRegime] {
		confidenceFactors = append(confidenceFactors, 0.15)
	}
	if in.MarginUsage > a.MarginWarnThresh {
		confidenceFactors = append(confidenceFactors, 0.10)
	}
	if in.MaxStableDepeg > a.DepegWarnBps {
		confidenceFactors = append(confidenceFactors, 0.10)
	}
	var confidenceSum float64
	for _, f := range confidenceFactors {
		confidenceSum += f
	}
	confidence := math.Min(a.ConfidenceFloor+confidenceSum, 0.95)

	direction := "neutral"
	if targetDelta < 0 {
		direction = "bearish"
	} else if targetDelta > 0 {
		direction = "bullish"
	}

	proposedAction := "monitor"
	if len(proposedActions) > 0 {
		proposedAction = proposedActions[0]
	}

	signals := []Signal{{
		Type: "AGENT_SIGNAL", Agent: "hedging_agent", Signal: "HEDGE_PROPOSAL",
		Direction: direction, Confidence: round2(confidence), Reason: strings.Join(reasoning, "; "),
		Severity: urgency, DataTsUsed: dataTs, Ts: now, ProposedAction: proposedAction,
		Detail: map[string]interface{}{
			"target_beta": targetBeta, "target_delta": targetDelta, "urgency": urgency,
			"hedge_legs": hedgeLegs, "all_proposed_actions": proposedActions,
			"current_exposure": round2(exposure),
		},
	}}

	if urgency == "high" && len(proposedActions) >= 2 {
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "hedging_agent", Signal: "HEDGE_REBALANCE_SUGGESTED",
			Direction: "neutral", Confidence: round2(confidence),
			Reason:         fmt.Sprintf("Multiple hedge triggers active (%d actions) — rebalance recommended", len(proposedActions)),
			Severity:       "high", DataTsUsed: dataTs, Ts: now, ProposedAction: "rebalance",
		})
	}

	if in.MarginUsage > 0.8 {
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "hedging_agent", Signal: "HEDGE_THROTTLE_RECOMMENDED",
			Direction: "neutral", Confidence: 0.90,
			Reason:         fmt.Sprintf("Margin usage %.0f%% critical — throttle new positions until deleveraged", in.MarginUsage*100),
			Severity:       "high", DataTsUsed: dataTs, Ts: now, ProposedAction: "throttle",
		})
	}

	return signals
}

func maxUrgency(a, b string) string {
	rank := map[string]int{"low": 0, "medium": 1, "high": 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
