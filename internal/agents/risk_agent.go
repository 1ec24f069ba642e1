package agents

import (
	"fmt"
	"math"
	"time"

	"github.com/sawpanic/riskdesk/internal/models"
)

// RiskInput is the slice of MarketState a RiskAgent needs, plus the
// margin usage figure the guardrail engine already tracks.
type RiskInput struct {
	Positions    []models.Position
	CurrentPrice float64
	ShockScore   float64
	VolRegime    string
	MarginUsage  float64
	DataTs       time.Time
}

// RiskAgent watches liquidation distance, shock/volatility combinations,
// and margin usage, flagging conditions that warrant attention but never
// throttling or placing an order itself — that's internal/risk's job.
type RiskAgent struct {
	LiqDistanceWarnPct float64
}

// NewRiskAgent returns an agent warning inside the desk's standard 8%
// liquidation-distance band.
func NewRiskAgent() *RiskAgent {
	return &RiskAgent{LiqDistanceWarnPct: 8.0}
}

// Evaluate inspects positions for thin liquidation distance, checks for a
// high-shock/high-vol combination, and flags elevated margin usage.
func (a *RiskAgent) Evaluate(in RiskInput) []Signal {
	now := time.Now().UTC()
	dataTs := in.DataTs
	if dataTs.IsZero() {
		dataTs = now
	}

	var signals []Signal

	for _, pos := range in.Positions {
		currentPrice := in.CurrentPrice
		if currentPrice <= 0 {
			currentPrice = pos.EntryPrice
		}
		if pos.LiqPrice == nil || currentPrice <= 0 {
			continue
		}
		distancePct := math.Abs(currentPrice-*pos.LiqPrice) / currentPrice * 100.0
		if distancePct < a.LiqDistanceWarnPct {
			signals = append(signals, Signal{
				Type: "AGENT_SIGNAL", Agent: "risk_agent", Signal: "RISK_WARNING",
				Reason:     fmt.Sprintf("Liquidation distance %.1f%% < %.1f%% for %s", distancePct, a.LiqDistanceWarnPct, pos.Market),
				Severity:   "high", Confidence: 0.95, DataTsUsed: dataTs, Ts: now,
			})
		}
	}

	if in.ShockScore > 1.5 && (in.VolRegime == "high" || in.VolRegime == "extreme") {
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "risk_agent", Signal: "THROTTLE_RECOMMENDED",
			Reason:     fmt.Sprintf("High shock (%.2f) + %s vol regime -> throttle recommended", in.ShockScore, in.VolRegime),
			Severity:   "high", Confidence: 0.85, DataTsUsed: dataTs, Ts: now,
		})
	}

	if in.MarginUsage > 0.5 {
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "risk_agent", Signal: "MARGIN_WARNING",
			Reason:     fmt.Sprintf("Margin usage %.0f%% approaching limit", in.MarginUsage*100),
			Severity:   "medium", Confidence: 0.90, DataTsUsed: dataTs, Ts: now,
		})
	}

	return signals
}
