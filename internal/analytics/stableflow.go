package analytics

import (
	"fmt"
	"math"
	"time"
)

// StableFlowMaxHistory bounds the flow momentum engine's history.
const StableFlowMaxHistory = 200

// StablePrices/StableVolumes key on lowercase symbol ("usdt","usdc","dai").

// StableFlowResult is one momentum reading with its contributing drivers.
type StableFlowResult struct {
	StableFlowMomentum float64
	RiskOnOffIndicator string // risk_on|risk_off|neutral
	Drivers            []string
	PegDeviations      map[string]float64
	TotalStableVolume  float64
	Ts                 time.Time
}

// StableFlowEngine tracks stablecoin peg health and volume dominance to
// derive a risk-on/risk-off momentum signal, referencing its own prior
// reading to detect acceleration.
type StableFlowEngine struct {
	history []StableFlowResult
}

// NewStableFlowEngine returns an empty engine.
func NewStableFlowEngine() *StableFlowEngine {
	return &StableFlowEngine{}
}

// ComputeFlowMomentum blends peg-deviation stress, stablecoin market-cap
// dominance, and USDC share-of-volume into a bounded [-1, 1] momentum
// score, appending the result to history.
func (e *StableFlowEngine) ComputeFlowMomentum(stablePrices, stableVolumes map[string]float64, totalMarketCap float64) StableFlowResult {
	var drivers []string
	momentum := 0.0

	usdtPrice := getOr(stablePrices, "usdt", 1.0)
	usdcPrice := getOr(stablePrices, "usdc", 1.0)
	daiPrice := getOr(stablePrices, "dai", 1.0)

	pegDeviations := map[string]float64{
		"usdt": math.Abs(usdtPrice - 1.0),
		"usdc": math.Abs(usdcPrice - 1.0),
		"dai":  math.Abs(daiPrice - 1.0),
	}
	avgPegDev := (pegDeviations["usdt"] + pegDeviations["usdc"] + pegDeviations["dai"]) / 3.0

	switch {
	case avgPegDev > 0.005:
		momentum -= 0.3
		drivers = append(drivers, fmt.Sprintf("peg_stress: avg_deviation=%.4f", avgPegDev))
	case avgPegDev > 0.002:
		momentum -= 0.1
		drivers = append(drivers, fmt.Sprintf("mild_peg_pressure: avg_deviation=%.4f", avgPegDev))
	default:
		drivers = append(drivers, fmt.Sprintf("peg_healthy: avg_deviation=%.4f", avgPegDev))
	}

	usdtVol := getOr(stableVolumes, "usdt", 0)
	usdcVol := getOr(stableVolumes, "usdc", 0)
	daiVol := getOr(stableVolumes, "dai", 0)
	totalStableVol := usdtVol + usdcVol + daiVol

	if totalMarketCap > 0 && totalStableVol > 0 {
		dominanceRatio := totalStableVol / totalMarketCap
		switch {
		case dominanceRatio > 0.05:
			momentum -= 0.3
			drivers = append(drivers, fmt.Sprintf("high_stable_dominance: ratio=%.4f", dominanceRatio))
		case dominanceRatio > 0.02:
			momentum -= 0.1
			drivers = append(drivers, fmt.Sprintf("moderate_stable_dominance: ratio=%.4f", dominanceRatio))
		default:
			momentum += 0.2
			drivers = append(drivers, fmt.Sprintf("low_stable_dominance: ratio=%.4f", dominanceRatio))
		}
	} else if totalStableVol > 0 {
		drivers = append(drivers, "market_cap_unavailable: using volume signals only")
	}

	if totalStableVol > 0 {
		usdcShare := usdcVol / totalStableVol
		switch {
		case usdcShare > 0.5:
			momentum += 0.15
			drivers = append(drivers, fmt.Sprintf("usdc_inflow_dominant: share=%.2f", usdcShare))
		case usdcShare < 0.2:
			momentum -= 0.1
			drivers = append(drivers, fmt.Sprintf("usdc_outflow_signal: share=%.2f", usdcShare))
		}
	}

	if len(e.history) >= 2 {
		prevMomentum := e.history[len(e.history)-1].StableFlowMomentum
		delta := momentum - prevMomentum
		if math.Abs(delta) > 0.3 {
			momentum += delta * 0.2
			drivers = append(drivers, fmt.Sprintf("momentum_acceleration: delta=%.3f", delta))
		}
	}

	momentum = clamp(momentum, -1.0, 1.0)

	riskIndicator := "neutral"
	switch {
	case momentum > 0.15:
		riskIndicator = "risk_on"
	case momentum < -0.15:
		riskIndicator = "risk_off"
	}

	roundedDeviations := make(map[string]float64, 3)
	for k, v := range pegDeviations {
		roundedDeviations[k] = round(v, 6)
	}

	result := StableFlowResult{
		StableFlowMomentum: round4(momentum),
		RiskOnOffIndicator: riskIndicator,
		Drivers:            drivers,
		PegDeviations:      roundedDeviations,
		TotalStableVolume:  totalStableVol,
		Ts:                 time.Now().UTC(),
	}

	e.history = append(e.history, result)
	if len(e.history) > StableFlowMaxHistory {
		e.history = e.history[len(e.history)-StableFlowMaxHistory:]
	}

	return result
}

// History returns the most recent limit readings, newest first.
func (e *StableFlowEngine) History(limit int) []StableFlowResult {
	if limit <= 0 || limit > len(e.history) {
		limit = len(e.history)
	}
	out := make([]StableFlowResult, limit)
	for i := 0; i < limit; i++ {
		out[i] = e.history[len(e.history)-1-i]
	}
	return out
}

func getOr(m map[string]float64, key string, def float64) float64 {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}
