// Package sandbox runs two rule-threshold configurations against the
// same market context and compares their simulated P&L, side by side —
// a what-if tool for tuning rules.Thresholds before committing a change,
// never a path that places real orders.
package sandbox

import (
	"math"
	"time"

	"github.com/sawpanic/riskdesk/internal/analytics"
	"github.com/sawpanic/riskdesk/internal/rules"
)

// MarketState is the slice of context a sandbox run simulates against.
type MarketState struct {
	CurrentPrice       float64
	PriceChangePct     float64
	Volatility         float64
	SpreadBps          float64
	Venue              string
	Market             string
	SuggestedSize      float64
	TariffRateOfChange float64
	VolRegime          string
	ShockScore         float64
	DivergenceAlertActive bool
	FundingRegimeFlipped  bool
	CarryScore            float64
}

func (m MarketState) toContext() rules.Context {
	return rules.Context{
		Venue: m.Venue, Market: m.Market, SuggestedSize: m.SuggestedSize,
		TariffRateOfChange: m.TariffRateOfChange, VolRegime: m.VolRegime,
		ShockScore: m.ShockScore, DivergenceAlertActive: m.DivergenceAlertActive,
		FundingRegimeFlipped: m.FundingRegimeFlipped, CarryScore: m.CarryScore,
	}
}

// Decision is one triggered rule's simulated trade.
type Decision struct {
	Rule         string
	Action       string
	Size         float64
	SimulatedPnL float64
}

// StrategyResult is one configuration's simulated performance.
type StrategyResult struct {
	ConfigName        string
	Thresholds        rules.Thresholds
	VolScaleFactor    float64
	Decisions         []Decision
	TradeCount        int
	TotalPnL          float64
	MaxDrawdown       float64
	HitRate           float64
	VaR95             float64
	CVaR95            float64
	Turnover          int
	AvgSlippageEstBps float64
}

// Config is one side of an A/B sandbox comparison: the rule thresholds
// under test plus a position-sizing scale factor.
type Config struct {
	Name           string
	Thresholds     rules.Thresholds
	VolScaleFactor float64
}

// DefaultConfigA mirrors the desk's standard, conservative rule table.
func DefaultConfigA() Config {
	return Config{Name: "Config A (Default)", Thresholds: rules.DefaultThresholds(), VolScaleFactor: 1.0}
}

// DefaultConfigB is a deliberately more aggressive comparison point:
// lower trigger thresholds, larger position scaling.
func DefaultConfigB() Config {
	t := rules.DefaultThresholds()
	t.ShockThrottle = 1.0
	t.StableRotationShock = 0.8
	t.StableRotationTariff = 4.0
	return Config{Name: "Config B (Aggressive)", Thresholds: t, VolScaleFactor: 1.5}
}

// Result is the full side-by-side comparison.
type Result struct {
	StrategyA         StrategyResult
	StrategyB         StrategyResult
	Winner            string // A|B
	PnLDifference     float64
	Highlights        []string
	CurrentPriceUsed  float64
	PriceChangePctUsed float64
	Ts                time.Time
}

func simulate(cfg Config, state MarketState) StrategyResult {
	engine := rules.NewEngine(cfg.Thresholds)
	actions := engine.Evaluate(state.toContext())

	var decisions []Decision
	var pnl float64
	for _, action := range actions {
		size := action.Size * cfg.VolScaleFactor
		simulatedPnL := size * state.PriceChangePct / 100.0
		pnl += simulatedPnL
		decisions = append(decisions, Decision{
			Rule: action.RuleName, Action: action.ActionType,
			Size: round4(size), SimulatedPnL: round4(simulatedPnL),
		})
	}

	var varResult, cvarResult float64
	mc := analytics.MonteCarloEngine{}.Run(analytics.MonteCarloParams{
		CurrentPrice: valueOr(state.CurrentPrice, 100.0),
		HorizonHours: 24, NPaths: 1000,
		Volatility:   valueOr(state.Volatility, 0.03),
		PositionSize: 1.0,
	})
	varResult, cvarResult = mc.VaR95, mc.CVaR95

	maxDrawdown := 0.0
	if pnl < 0 {
		maxDrawdown = math.Abs(pnl)
	}

	hitRate := 0.0
	if len(decisions) > 0 {
		var wins int
		for _, d := range decisions {
			if d.SimulatedPnL > 0 {
				wins++
			}
		}
		hitRate = float64(wins) / float64(len(decisions))
	}

	avgSlippage := valueOr(state.SpreadBps, 5.0) * 0.5

	return StrategyResult{
		ConfigName: cfg.Name, Thresholds: cfg.Thresholds, VolScaleFactor: cfg.VolScaleFactor,
		Decisions: decisions, TradeCount: len(decisions), TotalPnL: round4(pnl),
		MaxDrawdown: round4(maxDrawdown), HitRate: round4(hitRate),
		VaR95: round4(varResult), CVaR95: round4(cvarResult),
		Turnover: len(decisions), AvgSlippageEstBps: round2(avgSlippage),
	}
}

// Run simulates configA and configB against the same state and declares
// a winner by total simulated P&L.
func Run(configA, configB Config, state MarketState) Result {
	if state.CurrentPrice == 0 {
		state.CurrentPrice = 100.0
	}

	resultA := simulate(configA, state)
	resultB := simulate(configB, state)

	winner := "B"
	if resultA.TotalPnL >= resultB.TotalPnL {
		winner = "A"
	}

	var highlights []string
	if resultA.HitRate > resultB.HitRate {
		highlights = append(highlights, "Config A has higher hit rate")
	} else if resultB.HitRate > resultA.HitRate {
		highlights = append(highlights, "Config B has higher hit rate")
	}
	if resultA.MaxDrawdown < resultB.MaxDrawdown {
		highlights = append(highlights, "Config A has lower drawdown")
	} else if resultB.MaxDrawdown < resultA.MaxDrawdown {
		highlights = append(highlights, "Config B has lower drawdown")
	}
	if resultA.TradeCount != resultB.TradeCount {
		highlights = append(highlights, "Trade count differs between configs")
	}

	return Result{
		StrategyA: resultA, StrategyB: resultB, Winner: winner,
		PnLDifference: round4(math.Abs(resultA.TotalPnL - resultB.TotalPnL)),
		Highlights:    highlights,
		CurrentPriceUsed: state.CurrentPrice, PriceChangePctUsed: state.PriceChangePct,
		Ts: time.Now().UTC(),
	}
}

func valueOr(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
