// Package risk enforces the desk's hard trading guardrails: leverage,
// margin usage, daily loss, and live-execution cooldown limits. It never
// evaluates opportunity — only whether a proposed action is allowed to
// proceed — and it never places orders itself.
package risk

import (
	"fmt"

	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/timeutil"
)

// ProposedAction is the trade a caller wants the guardrails to clear.
type ProposedAction struct {
	Venue  string
	Market string
	Side   string // buy|sell
	Size   float64
	Price  float64
	Margin float64 // 0 means derive from size/price/MaxLeverage
}

// GuardrailConfig bounds the account-level risk the engine enforces.
type GuardrailConfig struct {
	MaxLeverage    float64
	MaxMarginPct   float64
	MaxDailyLoss   float64
	CooldownSeconds float64
}

// DefaultGuardrailConfig mirrors the desk's standing limits.
func DefaultGuardrailConfig() GuardrailConfig {
	return GuardrailConfig{
		MaxLeverage:     3.0,
		MaxMarginPct:    0.6,
		MaxDailyLoss:    500.0,
		CooldownSeconds: 300,
	}
}

// Engine checks proposed actions against GuardrailConfig limits, carrying
// the mutable RiskState (throttle flag, daily PnL, cooldown clock)
// between calls. State is the caller's to persist; the engine only
// mutates the struct it's given.
type Engine struct {
	cfg GuardrailConfig
}

// NewEngine builds a guardrail engine from cfg.
func NewEngine(cfg GuardrailConfig) *Engine {
	return &Engine{cfg: cfg}
}

func isReducing(positions []models.Position, action ProposedAction) bool {
	key := action.Venue + ":" + action.Market
	side := action.Side
	for _, p := range positions {
		if p.Key() != key {
			continue
		}
		if (p.SignedSize > 0 && side == "sell") || (p.SignedSize < 0 && side == "buy") {
			return true
		}
	}
	return false
}

// CheckConstraints evaluates action against positions and the current
// state, returning whether it's allowed and the reasons if not. A
// position-reducing action is exempt from the throttle, leverage, margin,
// and daily-loss checks (the desk always lets you de-risk). On success
// state.LastActionTs is advanced; the caller is responsible for
// persisting state afterward.
func (e *Engine) CheckConstraints(state *models.RiskState, positions []models.Position, action ProposedAction, executionMode string) (bool, []string) {
	var reasons []string
	reducing := isReducing(positions, action)

	if state.ThrottleActive && !reducing {
		reasons = append(reasons, fmt.Sprintf("throttle active: %s", state.ThrottleReason))
	}

	var totalNotional, totalMargin float64
	for _, p := range positions {
		totalNotional += absFloat(p.SignedSize * p.EntryPrice)
		totalMargin += p.Margin
	}
	totalEquity := totalMargin
	if totalEquity <= 0 {
		totalEquity = 1.0
	}

	actionNotional := absFloat(action.Size * action.Price)

	var projectedNotional float64
	if reducing {
		projectedNotional = maxFloat(0, totalNotional-actionNotional)
	} else {
		projectedNotional = totalNotional + actionNotional
	}
	projectedLeverage := projectedNotional / totalEquity

	if !reducing && projectedLeverage > e.cfg.MaxLeverage {
		reasons = append(reasons, fmt.Sprintf("leverage limit exceeded: projected %.2f > max %.2f", projectedLeverage, e.cfg.MaxLeverage))
	}

	if !reducing {
		actionMargin := action.Margin
		if actionMargin == 0 && e.cfg.MaxLeverage > 0 {
			actionMargin = actionNotional / e.cfg.MaxLeverage
		}
		projectedMarginUsage := (totalMargin + actionMargin) / totalEquity
		if projectedMarginUsage > e.cfg.MaxMarginPct {
			reasons = append(reasons, fmt.Sprintf("margin usage exceeded: projected %.1f%% > max %.1f%%", projectedMarginUsage*100, e.cfg.MaxMarginPct*100))
		}
	}

	today := timeutil.NowUTC().Format("2006-01-02")
	if state.DailyPnLResetDate != today {
		state.DailyPnL = 0
		state.DailyPnLResetDate = today
	}

	if state.DailyPnL < -e.cfg.MaxDailyLoss && !reducing {
		reasons = append(reasons, fmt.Sprintf("daily loss limit breached: %.2f < -%.2f", state.DailyPnL, e.cfg.MaxDailyLoss))
	}

	if executionMode == "live" && !reducing {
		now := timeutil.NowUTC()
		if !state.LastActionTs.IsZero() {
			elapsed := now.Sub(state.LastActionTs).Seconds()
			if elapsed < e.cfg.CooldownSeconds {
				remaining := e.cfg.CooldownSeconds - elapsed
				reasons = append(reasons, fmt.Sprintf("cooldown active: %.0fs remaining", remaining))
			}
		}
	}

	allowed := len(reasons) == 0
	if allowed {
		state.LastActionTs = timeutil.NowUTC()
	}
	return allowed, reasons
}

// ActivateThrottle flips state into throttled mode with an explanatory
// reason, blocking all non-reducing actions until deactivated.
func (e *Engine) ActivateThrottle(state *models.RiskState, reason string) {
	state.ThrottleActive = true
	state.ThrottleReason = reason
}

// DeactivateThrottle clears the throttle.
func (e *Engine) DeactivateThrottle(state *models.RiskState) {
	state.ThrottleActive = false
	state.ThrottleReason = ""
}

// RecordPnL adds pnl to the day's running total, resetting it first if
// the UTC date has rolled over since the last record.
func (e *Engine) RecordPnL(state *models.RiskState, pnl float64) {
	today := timeutil.NowUTC().Format("2006-01-02")
	if state.DailyPnLResetDate != today {
		state.DailyPnL = 0
		state.DailyPnLResetDate = today
	}
	state.DailyPnL += pnl
}

// Status is a point-in-time snapshot of the guardrail engine's limits and
// mutable state, suitable for a status endpoint or dashboard.
type Status struct {
	ThrottleActive  bool
	ThrottleReason  string
	MaxLeverage     float64
	MaxMarginPct    float64
	MaxDailyLoss    float64
	CooldownSeconds float64
	DailyPnL        float64
}

// GetStatus reports the engine's configured limits and state's current
// mutable fields.
func (e *Engine) GetStatus(state *models.RiskState) Status {
	return Status{
		ThrottleActive:  state.ThrottleActive,
		ThrottleReason:  state.ThrottleReason,
		MaxLeverage:     e.cfg.MaxLeverage,
		MaxMarginPct:    e.cfg.MaxMarginPct,
		MaxDailyLoss:    e.cfg.MaxDailyLoss,
		CooldownSeconds: e.cfg.CooldownSeconds,
		DailyPnL:        state.DailyPnL,
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
