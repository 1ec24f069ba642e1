package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/timeutil"
)

// StressParams carries the scenario-specific knobs for one RunScenario
// call. Zero values fall back to each scenario's own defaults.
type StressParams struct {
	ShockPct      float64 // tariff_shock, percent
	Sensitivity   float64 // tariff_shock
	CrashPct      float64 // sol_crash, percent
	VolMultiplier float64 // vol_spike
	BaseMarginRate float64 // vol_spike
}

// VenueStressDetail is one position's per-venue contribution to a
// scenario's projected outcome.
type VenueStressDetail struct {
	Venue                  string
	Notional               float64
	PnLImpact              float64
	CurrentMargin          float64
	RequiredMargin         float64
	MarginIncrease         float64
	StressedPrice          float64
	LiquidationDistancePct *float64
}

// StressResult is the outcome of running one named scenario against a
// position book.
type StressResult struct {
	Scenario              string
	Error                 string
	PriceShockPct         float64
	ProjectedPnL          float64
	ProjectedMargin       float64
	WouldLiquidate        bool
	MarginUsageProjected  float64
	DrawdownProjectedPct  float64
	VolMultiplier         float64
	MarginShortfall       float64
	VenueDetails          map[string]VenueStressDetail
	Ts                    time.Time
}

// Runner evaluates fixed stress scenarios (tariff shock, SOL crash, vol
// spike) against a position book. MaintenanceMarginPct sets the margin
// usage level at which a scenario's projected margin implies liquidation.
type Runner struct {
	MaintenanceMarginPct float64
}

// NewRunner returns a runner using the desk's standard 5% maintenance
// margin.
func NewRunner() *Runner {
	return &Runner{MaintenanceMarginPct: 0.05}
}

// RunScenario dispatches to the named scenario handler. An unknown name
// returns a StressResult carrying Error instead of panicking — a
// misconfigured cron job or CLI flag shouldn't crash the process.
func (r *Runner) RunScenario(scenario string, positions []models.Position, params StressParams) StressResult {
	switch scenario {
	case "tariff_shock":
		return r.tariffShock(positions, params)
	case "sol_crash":
		return r.solCrash(positions, params)
	case "vol_spike":
		return r.volSpike(positions, params)
	default:
		return StressResult{Scenario: scenario, Error: fmt.Sprintf("unknown scenario: %s", scenario), Ts: timeutil.NowUTC()}
	}
}

func liquidationDistance(stressedPrice float64, liqPrice *float64) *float64 {
	if liqPrice == nil || stressedPrice == 0 {
		return nil
	}
	d := round2((stressedPrice - *liqPrice) / stressedPrice * 100.0)
	return &d
}

func (r *Runner) tariffShock(positions []models.Position, params StressParams) StressResult {
	shockPct := params.ShockPct
	if shockPct == 0 {
		shockPct = 10.0
	}
	sensitivity := params.Sensitivity
	if sensitivity == 0 {
		sensitivity = 0.3
	}
	shock := shockPct / 100.0

	var totalMargin, pnlImpact float64
	details := make(map[string]VenueStressDetail, len(positions))

	for _, p := range positions {
		notional := absFloat(p.SignedSize * p.EntryPrice)
		totalMargin += p.Margin

		dirSign := 1.0
		if p.SignedSize <= 0 {
			dirSign = -1.0
		}
		posPnL := -notional * shock * sensitivity * dirSign
		pnlImpact += posPnL

		stressedPrice := p.EntryPrice * (1 - shock*sensitivity)

		details[p.Venue] = VenueStressDetail{
			Venue: p.Venue, Notional: notional,
			PnLImpact: round2(posPnL), StressedPrice: round4(stressedPrice),
			LiquidationDistancePct: liquidationDistance(stressedPrice, p.LiqPrice),
		}
	}

	equity := totalMargin + pnlImpact
	marginUsage := 1.0
	if equity > 0 {
		marginUsage = totalMargin / equity
	}
	var drawdown float64
	if totalMargin > 0 {
		drawdown = pnlImpact / totalMargin * 100.0
	}

	return StressResult{
		Scenario: "tariff_shock", PriceShockPct: shockPct,
		ProjectedPnL: round2(pnlImpact), ProjectedMargin: round4(marginUsage),
		WouldLiquidate: marginUsage > (1.0 - r.MaintenanceMarginPct),
		MarginUsageProjected: round4(marginUsage), DrawdownProjectedPct: round2(drawdown),
		VenueDetails: details, Ts: timeutil.NowUTC(),
	}
}

func (r *Runner) solCrash(positions []models.Position, params StressParams) StressResult {
	crashPct := params.CrashPct
	if crashPct == 0 {
		crashPct = 8.0
	}
	crash := crashPct / 100.0

	var totalMargin, pnlImpact float64
	details := make(map[string]VenueStressDetail, len(positions))

	for _, p := range positions {
		notional := absFloat(p.SignedSize * p.EntryPrice)
		totalMargin += p.Margin

		priceChange := crash
		if p.SignedSize > 0 {
			priceChange = -crash
		}
		posPnL := notional * priceChange
		pnlImpact += posPnL

		stressedPrice := p.EntryPrice * (1 - crash)

		details[p.Venue] = VenueStressDetail{
			Venue: p.Venue, Notional: notional,
			PnLImpact: round2(posPnL), StressedPrice: round4(stressedPrice),
			LiquidationDistancePct: liquidationDistance(stressedPrice, p.LiqPrice),
		}
	}

	equity := totalMargin + pnlImpact
	marginUsage := 1.0
	if equity > 0 {
		marginUsage = totalMargin / equity
	}
	var drawdown float64
	if totalMargin > 0 {
		drawdown = pnlImpact / totalMargin * 100.0
	}

	return StressResult{
		Scenario: "sol_crash", PriceShockPct: crashPct,
		ProjectedPnL: round2(pnlImpact), ProjectedMargin: round4(marginUsage),
		WouldLiquidate: marginUsage > (1.0 - r.MaintenanceMarginPct),
		MarginUsageProjected: round4(marginUsage), DrawdownProjectedPct: round2(drawdown),
		VenueDetails: details, Ts: timeutil.NowUTC(),
	}
}

func (r *Runner) volSpike(positions []models.Position, params StressParams) StressResult {
	volMultiplier := params.VolMultiplier
	if volMultiplier == 0 {
		volMultiplier = 2.0
	}
	baseMarginRate := params.BaseMarginRate
	if baseMarginRate == 0 {
		baseMarginRate = 0.05
	}

	var totalMarginCurrent, totalNotional float64
	details := make(map[string]VenueStressDetail, len(positions))

	for _, p := range positions {
		notional := absFloat(p.SignedSize * p.EntryPrice)
		totalNotional += notional
		totalMarginCurrent += p.Margin

		newMarginRate := baseMarginRate * volMultiplier
		requiredMargin := notional * newMarginRate
		marginIncrease := requiredMargin - p.Margin

		details[p.Venue] = VenueStressDetail{
			Venue: p.Venue, Notional: notional,
			CurrentMargin: round2(p.Margin), RequiredMargin: round2(requiredMargin),
			MarginIncrease: round2(marginIncrease),
			LiquidationDistancePct: liquidationDistance(p.EntryPrice, p.LiqPrice),
		}
	}

	totalRequired := totalNotional * baseMarginRate * volMultiplier
	marginUsage := 1.0
	if totalMarginCurrent > 0 {
		marginUsage = totalRequired / totalMarginCurrent
	}
	shortfall := maxFloat(totalRequired-totalMarginCurrent, 0)

	return StressResult{
		Scenario: "vol_spike", PriceShockPct: 0,
		ProjectedPnL: 0, ProjectedMargin: round4(marginUsage),
		WouldLiquidate: marginUsage > 1.0,
		MarginUsageProjected: round4(marginUsage), DrawdownProjectedPct: 0,
		VolMultiplier: volMultiplier, MarginShortfall: round2(shortfall),
		VenueDetails: details, Ts: timeutil.NowUTC(),
	}
}

func round2(v float64) float64 {
	return math.Round(v*1e2) / 1e2
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
