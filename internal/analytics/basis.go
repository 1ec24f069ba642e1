package analytics

import "time"

// BasisMaxHistory bounds the basis engine's ring history, matching the
// original deque(maxlen=200).
const BasisMaxHistory = 200

// BasisReading is one computed basis/carry snapshot across Hyperliquid,
// Drift, and a spot reference.
type BasisReading struct {
	Ts                  time.Time
	HLSpotBasisBps      float64
	DriftSpotBasisBps   float64
	HLDriftSpreadBps    float64
	AnnualizedBasisBps  float64
	FundingDiffBps      float64
	NetCarry            float64
	HLPerpPrice         float64
	DriftPerpPrice      float64
	SpotPrice           float64
	HLFunding           float64
	DriftFunding        float64
	Invalid             bool
}

// BasisEngine holds a bounded history of basis readings. Callers own one
// instance per symbol; there is no package-level shared state.
type BasisEngine struct {
	history []BasisReading
}

// NewBasisEngine returns an empty engine.
func NewBasisEngine() *BasisEngine {
	return &BasisEngine{history: make([]BasisReading, 0, BasisMaxHistory)}
}

// Compute derives basis and net-carry figures from perp prices on two
// venues against a spot reference, appending the result to history. A
// non-positive spot price yields an Invalid reading that is still
// recorded, matching the original's "return empty but still log" shape.
func (e *BasisEngine) Compute(hlPerpPrice, driftPerpPrice, spotPrice, hlFunding, driftFunding float64) BasisReading {
	now := time.Now().UTC()

	if spotPrice <= 0 {
		r := BasisReading{Ts: now, Invalid: true}
		e.append(r)
		return r
	}

	hlSpotBasisBps := (hlPerpPrice - spotPrice) / spotPrice * 10000.0
	driftSpotBasisBps := (driftPerpPrice - spotPrice) / spotPrice * 10000.0

	var hlDriftSpreadBps float64
	if driftPerpPrice > 0 {
		hlDriftSpreadBps = (hlPerpPrice - driftPerpPrice) / driftPerpPrice * 10000.0
	}

	avgBasisBps := (hlSpotBasisBps + driftSpotBasisBps) / 2.0
	// Funding compounds three times a day; annualize the average basis
	// on that cadence.
	annualizedBasisBps := avgBasisBps * 365 * 3

	fundingDiffBps := (hlFunding - driftFunding) * 10000.0
	netCarry := annualizedBasisBps + fundingDiffBps

	r := BasisReading{
		Ts:                 now,
		HLSpotBasisBps:     round2(hlSpotBasisBps),
		DriftSpotBasisBps:  round2(driftSpotBasisBps),
		HLDriftSpreadBps:   round2(hlDriftSpreadBps),
		AnnualizedBasisBps: round2(annualizedBasisBps),
		FundingDiffBps:     round2(fundingDiffBps),
		NetCarry:           round2(netCarry),
		HLPerpPrice:        hlPerpPrice,
		DriftPerpPrice:     driftPerpPrice,
		SpotPrice:          spotPrice,
		HLFunding:          hlFunding,
		DriftFunding:       driftFunding,
	}
	e.append(r)
	return r
}

func (e *BasisEngine) append(r BasisReading) {
	e.history = append(e.history, r)
	if len(e.history) > BasisMaxHistory {
		e.history = e.history[len(e.history)-BasisMaxHistory:]
	}
}

// History returns the most recent limit readings, newest first.
func (e *BasisEngine) History(limit int) []BasisReading {
	if limit <= 0 || limit > len(e.history) {
		limit = len(e.history)
	}
	out := make([]BasisReading, limit)
	for i := 0; i < limit; i++ {
		out[i] = e.history[len(e.history)-1-i]
	}
	return out
}

// AssessFeasibility scores 0-100 how tradeable a carry opportunity is,
// deducting for wide spread, thin liquidity, and non-ok data integrity.
func AssessFeasibility(spreadBps, liquidityDepth float64, integrityStatus string) int {
	score := 100

	absSpread := spreadBps
	if absSpread < 0 {
		absSpread = -absSpread
	}
	switch {
	case absSpread > 100:
		score -= 40
	case absSpread > 50:
		score -= 20
	case absSpread > 20:
		score -= 10
	}

	switch {
	case liquidityDepth < 0.3:
		score -= 30
	case liquidityDepth < 0.6:
		score -= 15
	case liquidityDepth < 0.8:
		score -= 5
	}

	if integrityStatus != "ok" {
		score -= 25
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
