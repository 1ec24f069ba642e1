package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/riskdesk/internal/models"
)

func TestCheckConstraintsAllowsWithinLimits(t *testing.T) {
	e := NewEngine(DefaultGuardrailConfig())
	state := &models.RiskState{}
	positions := []models.Position{
		{Venue: "hyperliquid", Market: "BTC-PERP", SignedSize: 1, EntryPrice: 50000, Margin: 20000},
	}
	action := ProposedAction{Venue: "hyperliquid", Market: "ETH-PERP", Side: "buy", Size: 1, Price: 3000}

	allowed, reasons := e.CheckConstraints(state, positions, action, "paper")

	require.True(t, allowed)
	assert.Empty(t, reasons)
	assert.False(t, state.LastActionTs.IsZero())
}

func TestCheckConstraintsRejectsLeverageBreach(t *testing.T) {
	e := NewEngine(DefaultGuardrailConfig())
	state := &models.RiskState{}
	positions := []models.Position{
		{Venue: "hyperliquid", Market: "BTC-PERP", SignedSize: 1, EntryPrice: 50000, Margin: 10000},
	}
	action := ProposedAction{Venue: "hyperliquid", Market: "ETH-PERP", Side: "buy", Size: 10, Price: 3000}

	allowed, reasons := e.CheckConstraints(state, positions, action, "paper")

	require.False(t, allowed)
	assert.NotEmpty(t, reasons)
}

func TestCheckConstraintsExemptsReducingAction(t *testing.T) {
	e := NewEngine(DefaultGuardrailConfig())
	state := &models.RiskState{ThrottleActive: true, ThrottleReason: "shock"}
	positions := []models.Position{
		{Venue: "hyperliquid", Market: "BTC-PERP", SignedSize: 1, EntryPrice: 50000, Margin: 20000},
	}
	// opposite side on the same key, reduces the long
	action := ProposedAction{Venue: "hyperliquid", Market: "BTC-PERP", Side: "sell", Size: 1, Price: 50000}

	allowed, reasons := e.CheckConstraints(state, positions, action, "paper")

	assert.True(t, allowed)
	assert.Empty(t, reasons)
}

func TestCheckConstraintsRejectsWhileThrottled(t *testing.T) {
	e := NewEngine(DefaultGuardrailConfig())
	state := &models.RiskState{ThrottleActive: true, ThrottleReason: "tariff shock"}
	action := ProposedAction{Venue: "hyperliquid", Market: "BTC-PERP", Side: "buy", Size: 1, Price: 50000}

	allowed, reasons := e.CheckConstraints(state, nil, action, "paper")

	require.False(t, allowed)
	assert.Contains(t, reasons[0], "throttle active")
}

func TestCheckConstraintsRejectsDailyLossBreach(t *testing.T) {
	e := NewEngine(DefaultGuardrailConfig())
	state := &models.RiskState{DailyPnL: -600}
	action := ProposedAction{Venue: "hyperliquid", Market: "BTC-PERP", Side: "buy", Size: 0.1, Price: 50000}

	allowed, reasons := e.CheckConstraints(state, nil, action, "paper")

	require.False(t, allowed)
	found := false
	for _, r := range reasons {
		if r == "daily loss limit breached: -600.00 < -500.00" {
			found = true
		}
	}
	assert.True(t, found, "expected a daily loss reason, got %v", reasons)
}

func TestCheckConstraintsEnforcesLiveCooldown(t *testing.T) {
	e := NewEngine(DefaultGuardrailConfig())
	state := &models.RiskState{}
	action := ProposedAction{Venue: "hyperliquid", Market: "BTC-PERP", Side: "buy", Size: 0.01, Price: 50000}

	allowed, _ := e.CheckConstraints(state, nil, action, "live")
	require.True(t, allowed)

	allowed, reasons := e.CheckConstraints(state, nil, action, "live")
	require.False(t, allowed)
	assert.Contains(t, reasons[0], "cooldown active")
}

func TestThrottleActivateAndDeactivate(t *testing.T) {
	e := NewEngine(DefaultGuardrailConfig())
	state := &models.RiskState{}

	e.ActivateThrottle(state, "shock score spike")
	assert.True(t, state.ThrottleActive)
	assert.Equal(t, "shock score spike", state.ThrottleReason)

	e.DeactivateThrottle(state)
	assert.False(t, state.ThrottleActive)
	assert.Empty(t, state.ThrottleReason)
}

func TestRecordPnLResetsOnNewDay(t *testing.T) {
	e := NewEngine(DefaultGuardrailConfig())
	state := &models.RiskState{DailyPnL: -100, DailyPnLResetDate: "2000-01-01"}

	e.RecordPnL(state, 50)

	assert.Equal(t, 50.0, state.DailyPnL)
	assert.NotEqual(t, "2000-01-01", state.DailyPnLResetDate)
}

func TestGetStatusReflectsConfigAndState(t *testing.T) {
	e := NewEngine(DefaultGuardrailConfig())
	state := &models.RiskState{ThrottleActive: true, ThrottleReason: "x", DailyPnL: -42}

	status := e.GetStatus(state)

	assert.True(t, status.ThrottleActive)
	assert.Equal(t, "x", status.ThrottleReason)
	assert.Equal(t, 3.0, status.MaxLeverage)
	assert.Equal(t, -42.0, status.DailyPnL)
}
