package analytics

import "time"

// StableNetCarry is the full carry breakdown for one funding rate,
// including round-trip cost and a risk-adjusted figure.
type StableNetCarry struct {
	GrossCarryAnnual     float64
	NetCarryAnnual       float64
	RiskAdjustedCarry    float64
	EntryExitCostAnnual  float64
	RiskFactor           float64
	Ts                   time.Time
}

// StableYieldCalculator annualizes per-period funding into a carry
// figure and nets out round-trip transaction costs.
type StableYieldCalculator struct{}

// ComputeAnnualizedCarry scales a per-period funding rate to an annual
// figure given how many periods compound per day.
func (StableYieldCalculator) ComputeAnnualizedCarry(fundingRate float64, periodsPerDay int) float64 {
	if periodsPerDay <= 0 {
		periodsPerDay = 3
	}
	return fundingRate * float64(periodsPerDay) * 365.0
}

// ComputeNetCarry nets round-trip spread and fee costs (each paid on
// entry and exit, assumed roughly monthly i.e. 12x/year) out of gross
// annualized carry, then derates the result by a risk factor that
// shrinks as the gross carry itself grows (a larger funding rate implies
// a more crowded, more reversal-prone trade).
func (c StableYieldCalculator) ComputeNetCarry(fundingRate, spreadBps, feeBps float64, periodsPerDay int) StableNetCarry {
	gross := c.ComputeAnnualizedCarry(fundingRate, periodsPerDay)

	slippageCost := spreadBps / 10000.0 * 2.0
	feeCost := feeBps / 10000.0 * 2.0
	entryExitCostAnnual := (slippageCost + feeCost) * 12.0
	net := gross - entryExitCostAnnual

	riskFactor := maxFloat(0.3, 1.0-absFloat(gross)*0.5)
	riskAdjusted := net * riskFactor

	return StableNetCarry{
		GrossCarryAnnual:    round6(gross),
		NetCarryAnnual:      round6(net),
		RiskAdjustedCarry:   round6(riskAdjusted),
		EntryExitCostAnnual: round6(entryExitCostAnnual),
		RiskFactor:          round4(riskFactor),
		Ts:                  time.Now().UTC(),
	}
}

// ComputeCarryScores nets carry for every venue's funding rate, using a
// per-venue spread where provided and a 5bps default otherwise.
func (c StableYieldCalculator) ComputeCarryScores(fundingRates, spreads map[string]float64) map[string]StableNetCarry {
	out := make(map[string]StableNetCarry, len(fundingRates))
	for venue, rate := range fundingRates {
		spread := getOr(spreads, venue, 5.0)
		out[venue] = c.ComputeNetCarry(rate, spread, 1.0, 3)
	}
	return out
}

// DetectCarryRegimeFlip reports whether carry crossed zero between two
// readings (sign change, inclusive of landing exactly on zero).
func (StableYieldCalculator) DetectCarryRegimeFlip(currentCarry, previousCarry float64) bool {
	return (currentCarry > 0 && previousCarry <= 0) || (currentCarry <= 0 && previousCarry > 0)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
