package analytics

import (
	"fmt"
	"sort"
	"time"
)

const (
	playbookDepegWarnBps        = 30.0
	playbookDepegAlertBps       = 50.0
	playbookStressThreshold     = 0.5
	playbookPegBreakProbThresh  = 0.3
)

// PlaybookAction is one recommended mitigation step, ordered by
// priority (1 = most urgent).
type PlaybookAction struct {
	Action   string
	Detail   string
	Priority int
}

// PlaybookInputs are the stablecoin-stress signals the playbook reacts
// to.
type PlaybookInputs struct {
	DepegBps             float64
	StressScore          float64
	PegBreakProb         float64
	MarginUsage          float64
	VolRegime            string
	StableAllocationPct  float64
	CurrentLeverage      float64
}

// PlaybookResult is the evaluated stablecoin-stress response plan.
type PlaybookResult struct {
	Triggered bool
	Urgency   string // none|medium|high
	Actions   []PlaybookAction
	Reasoning []string
	Confidence float64
	Ts        time.Time
}

// EvaluateStablePlaybook runs a fixed decision tree over depeg severity,
// composite stress, peg-break probability, margin usage, and vol regime,
// accumulating recommended actions and a rough confidence score from
// which signals fired.
func EvaluateStablePlaybook(in PlaybookInputs) PlaybookResult {
	var actions []PlaybookAction
	var reasoning []string
	triggered := false
	urgency := "none"
	var confidence float64

	switch {
	case in.DepegBps > playbookDepegAlertBps:
		triggered = true
		urgency = "high"
		confidence += 0.3
		actions = append(actions,
			PlaybookAction{"reduce_leverage", fmt.Sprintf("reduce leverage from %.1fx, depeg %.0fbps is critical", in.CurrentLeverage, in.DepegBps), 1},
			PlaybookAction{"diversify_stables", "rotate away from depegging stable to USDC/DAI", 2},
		)
		reasoning = append(reasoning, fmt.Sprintf("depeg %.0fbps exceeds alert threshold (%.0fbps)", in.DepegBps, playbookDepegAlertBps))
	case in.DepegBps > playbookDepegWarnBps:
		triggered = true
		urgency = "medium"
		confidence += 0.2
		actions = append(actions, PlaybookAction{"monitor_closely", fmt.Sprintf("depeg %.0fbps approaching alert level, prepare rotation plan", in.DepegBps), 3})
		reasoning = append(reasoning, fmt.Sprintf("depeg %.0fbps exceeds warning threshold (%.0fbps)", in.DepegBps, playbookDepegWarnBps))
	}

	if in.StressScore > playbookStressThreshold {
		triggered = true
		if urgency != "high" {
			if in.StressScore > 0.7 {
				urgency = "high"
			} else {
				urgency = "medium"
			}
		}
		confidence += 0.2
		actions = append(actions, PlaybookAction{"hedge_risk_assets", fmt.Sprintf("stress score %.2f elevated, hedge directional exposure via HL/Drift shorts", in.StressScore), 2})
		reasoning = append(reasoning, fmt.Sprintf("stress score %.2f exceeds threshold (%.1f)", in.StressScore, playbookStressThreshold))
	}

	if in.PegBreakProb > playbookPegBreakProbThresh {
		triggered = true
		urgency = "high"
		confidence += 0.25
		actions = append(actions,
			PlaybookAction{"defensive_rotation", fmt.Sprintf("peg break probability %.0f%%, emergency rotation to safer stables", in.PegBreakProb*100), 1},
			PlaybookAction{"risk_throttle", "activate risk throttle, block new positions until peg stabilizes", 1},
		)
		reasoning = append(reasoning, fmt.Sprintf("peg break probability %.0f%% exceeds threshold (%.0f%%)", in.PegBreakProb*100, playbookPegBreakProbThresh*100))
	}

	if triggered && in.MarginUsage > 0.5 {
		actions = append(actions, PlaybookAction{"reduce_leverage", fmt.Sprintf("margin usage %.0f%% elevated during stablecoin stress, deleverage", in.MarginUsage*100), 1})
		confidence += 0.1
		reasoning = append(reasoning, fmt.Sprintf("high margin usage (%.0f%%) compounds stablecoin risk", in.MarginUsage*100))
	}

	if triggered && (in.VolRegime == "high" || in.VolRegime == "extreme") {
		actions = append(actions, PlaybookAction{"reduce_position_sizes", fmt.Sprintf("vol regime '%s' plus stablecoin stress, reduce all position sizes by 30-50%%", in.VolRegime), 2})
		confidence += 0.1
		reasoning = append(reasoning, fmt.Sprintf("vol regime '%s' amplifies stablecoin risk", in.VolRegime))
	}

	sort.SliceStable(actions, func(i, j int) bool { return actions[i].Priority < actions[j].Priority })

	if triggered {
		confidence = minFloat(round2(0.50+confidence), 0.95)
	} else {
		confidence = 0.0
	}

	return PlaybookResult{
		Triggered:  triggered,
		Urgency:    urgency,
		Actions:    actions,
		Reasoning:  reasoning,
		Confidence: confidence,
		Ts:         time.Now().UTC(),
	}
}
