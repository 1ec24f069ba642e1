package agents

import (
	"fmt"
	"time"
)

// MacroInput is the macro slice of MarketState a MacroAgent reads.
type MacroInput struct {
	TariffIndex    float64
	TariffMomentum float64
	ShockScore     float64
	DataTs         time.Time
}

// MacroAgent watches tariff momentum and shock-score levels for signs of
// accelerating trade-policy risk.
type MacroAgent struct{}

// NewMacroAgent returns a MacroAgent.
func NewMacroAgent() *MacroAgent { return &MacroAgent{} }

// Evaluate flags rapid tariff-momentum acceleration, high news-shock
// readings, and a sustained elevated tariff regime.
func (a *MacroAgent) Evaluate(in MacroInput) []Signal {
	now := time.Now().UTC()
	dataTs := in.DataTs
	if dataTs.IsZero() {
		dataTs = now
	}

	var signals []Signal

	if in.TariffMomentum > 5.0 {
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "macro_agent", Signal: "TARIFF_ACCELERATION",
			Reason:     fmt.Sprintf("Tariff momentum %.2f - rapid policy tightening detected", in.TariffMomentum),
			Severity:   "medium", Confidence: 0.75, DataTsUsed: dataTs, Ts: now,
			Detail: map[string]interface{}{"weight_adjustment": map[string]float64{"shock_score": 1.3, "tariff_momentum": 1.5}},
		})
	}

	if in.ShockScore > 2.0 {
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "macro_agent", Signal: "NEWS_SHOCK_HIGH",
			Reason:     fmt.Sprintf("Shock score %.2f - significant geopolitical event detected", in.ShockScore),
			Severity:   "high", Confidence: 0.80, DataTsUsed: dataTs, Ts: now,
			Detail: map[string]interface{}{"weight_adjustment": map[string]float64{"shock_score": 1.5}},
		})
	}

	if in.TariffIndex > 70 {
		signals = append(signals, Signal{
			Type: "AGENT_SIGNAL", Agent: "macro_agent", Signal: "HIGH_TARIFF_REGIME",
			Reason:     fmt.Sprintf("Tariff index at %.1f - elevated trade risk environment", in.TariffIndex),
			Severity:   "medium", Confidence: 0.70, DataTsUsed: dataTs, Ts: now,
		})
	}

	return signals
}
