package analytics

import (
	"math"
	"time"
)

// PnLAttribution decomposes total PnL into explained components plus a
// residual.
type PnLAttribution struct {
	TotalPnL           float64
	PricePnL           float64
	FundingIncome      float64
	MacroEffect        float64
	BasisSpread        float64
	ExecutionSlippage  float64
	VolatilityDrift    float64
	Unexplained        float64
	Ts                 time.Time
}

// PnLAttributionInputs are the auxiliary signals used to explain a
// position's PnL beyond raw price movement.
type PnLAttributionInputs struct {
	TotalPnL           float64
	PositionSize       float64
	EntryPrice         float64
	CurrentPrice       float64
	FundingAccumulated float64
	TariffIndexDelta   float64
	ShockScore         float64
	RealizedVol        float64
	SlippageCost       float64
	BasisPnL           float64
}

// AttributePnL apportions total PnL to price movement, funding income,
// a macro/tariff-shock proxy, basis spread, execution slippage, and a
// volatility-drift term, leaving any residual as Unexplained.
func AttributePnL(in PnLAttributionInputs) PnLAttribution {
	pricePnL := in.PositionSize * (in.CurrentPrice - in.EntryPrice)

	macroProxy := -math.Abs(in.TariffIndexDelta * 0.01 * in.PositionSize * in.CurrentPrice)
	if in.ShockScore > 1.0 {
		macroProxy *= 1 + in.ShockScore*0.1
	}

	var volDrift float64
	if in.RealizedVol > 0.5 {
		volDrift = -math.Abs(in.TotalPnL) * 0.05 * in.RealizedVol
	}

	unexplained := in.TotalPnL - (pricePnL + in.FundingAccumulated + macroProxy + in.BasisPnL - in.SlippageCost + volDrift)

	return PnLAttribution{
		TotalPnL:          round2(in.TotalPnL),
		PricePnL:          round2(pricePnL),
		FundingIncome:     round2(in.FundingAccumulated),
		MacroEffect:       round2(macroProxy),
		BasisSpread:       round2(in.BasisPnL),
		ExecutionSlippage: round2(-in.SlippageCost),
		VolatilityDrift:   round2(volDrift),
		Unexplained:       round2(unexplained),
		Ts:                time.Now().UTC(),
	}
}
