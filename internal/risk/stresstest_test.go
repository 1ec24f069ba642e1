package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/riskdesk/internal/models"
)

func liqPrice(v float64) *float64 { return &v }

func TestRunScenarioUnknownReturnsError(t *testing.T) {
	r := NewRunner()
	res := r.RunScenario("made_up", nil, StressParams{})
	assert.NotEmpty(t, res.Error)
	assert.Equal(t, "made_up", res.Scenario)
}

func TestTariffShockLongPositionLoses(t *testing.T) {
	r := NewRunner()
	positions := []models.Position{
		{Venue: "hyperliquid", Market: "BTC-PERP", SignedSize: 1, EntryPrice: 50000, Margin: 20000, LiqPrice: liqPrice(40000)},
	}

	res := r.RunScenario("tariff_shock", positions, StressParams{ShockPct: 10, Sensitivity: 0.3})

	require.Contains(t, res.VenueDetails, "hyperliquid")
	assert.Less(t, res.ProjectedPnL, 0.0)
	assert.Equal(t, "tariff_shock", res.Scenario)
}

func TestSolCrashShortPositionGains(t *testing.T) {
	r := NewRunner()
	positions := []models.Position{
		{Venue: "drift", Market: "SOL-PERP", SignedSize: -10, EntryPrice: 100, Margin: 500, LiqPrice: liqPrice(130)},
	}

	res := r.RunScenario("sol_crash", positions, StressParams{CrashPct: 8})

	assert.Greater(t, res.ProjectedPnL, 0.0)
}

func TestVolSpikeIncreasesRequiredMargin(t *testing.T) {
	r := NewRunner()
	positions := []models.Position{
		{Venue: "hyperliquid", Market: "BTC-PERP", SignedSize: 1, EntryPrice: 50000, Margin: 2000},
	}

	res := r.RunScenario("vol_spike", positions, StressParams{VolMultiplier: 2.0, BaseMarginRate: 0.05})

	detail := res.VenueDetails["hyperliquid"]
	assert.Greater(t, detail.RequiredMargin, detail.CurrentMargin)
	assert.Greater(t, res.MarginShortfall, 0.0)
}

func TestWouldLiquidateFlag(t *testing.T) {
	r := NewRunner()
	positions := []models.Position{
		{Venue: "hyperliquid", Market: "BTC-PERP", SignedSize: 1, EntryPrice: 50000, Margin: 1000},
	}

	res := r.RunScenario("tariff_shock", positions, StressParams{ShockPct: 90, Sensitivity: 1.0})

	assert.True(t, res.WouldLiquidate)
}
