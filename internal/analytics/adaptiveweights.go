package analytics

import (
	"fmt"
	"time"
)

// defaultStrategyWeights is the baseline allocation across the desk's
// four signal families before any regime adjustment.
var defaultStrategyWeights = map[string]float64{
	"macro":          0.25,
	"carry":          0.25,
	"microstructure": 0.25,
	"momentum":       0.25,
}

// AdaptiveWeightsInputs are the regime signals that can tilt the
// baseline strategy weights.
type AdaptiveWeightsInputs struct {
	ShockScore   float64
	FundingSkew  float64
	VolRegime    string // normal|high|extreme
	TariffIndex  float64
}

// AdaptiveWeightsResult is the (possibly tilted) strategy weight vector,
// normalized to sum to 1, plus an audit trail of which adjustments fired.
type AdaptiveWeightsResult struct {
	Weights         map[string]float64
	AdaptiveEnabled bool
	Adjustments     []string
	Ts              time.Time
}

// ComputeAdaptiveWeights tilts the default macro/carry/microstructure/
// momentum allocation toward whichever signal family is most informative
// for the current regime (elevated shock, wide funding skew, high
// volatility, stretched tariff index), then renormalizes to sum to 1.
// When enabled is false the baseline weights pass through unchanged.
func ComputeAdaptiveWeights(in AdaptiveWeightsInputs, enabled bool) AdaptiveWeightsResult {
	now := time.Now().UTC()

	if !enabled {
		return AdaptiveWeightsResult{
			Weights:         copyWeights(defaultStrategyWeights),
			AdaptiveEnabled: false,
			Ts:              now,
		}
	}

	weights := copyWeights(defaultStrategyWeights)
	var adjustments []string

	switch {
	case in.ShockScore > 70:
		bump := minFloat((in.ShockScore-70)/100, 0.15)
		weights["macro"] += bump
		adjustments = append(adjustments, fmt.Sprintf("macro +%.3f (shock_score=%.1f)", bump, in.ShockScore))
	case in.ShockScore > 50:
		bump := minFloat((in.ShockScore-50)/200, 0.07)
		weights["macro"] += bump
		adjustments = append(adjustments, fmt.Sprintf("macro +%.3f (moderate shock=%.1f)", bump, in.ShockScore))
	}

	absSkew := in.FundingSkew
	if absSkew < 0 {
		absSkew = -absSkew
	}
	switch {
	case absSkew > 0.05:
		bump := minFloat(absSkew*1.0, 0.15)
		weights["carry"] += bump
		adjustments = append(adjustments, fmt.Sprintf("carry +%.3f (funding_skew=%.4f)", bump, in.FundingSkew))
	case absSkew > 0.02:
		bump := minFloat(absSkew*0.5, 0.07)
		weights["carry"] += bump
		adjustments = append(adjustments, fmt.Sprintf("carry +%.3f (moderate skew=%.4f)", bump, in.FundingSkew))
	}

	switch in.VolRegime {
	case "high":
		weights["microstructure"] += 0.10
		adjustments = append(adjustments, "microstructure +0.100 (vol_regime=high)")
	case "extreme":
		weights["microstructure"] += 0.15
		adjustments = append(adjustments, "microstructure +0.150 (vol_regime=extreme)")
	}

	if in.TariffIndex > 75 {
		bump := minFloat((in.TariffIndex-75)/200, 0.10)
		weights["macro"] += bump
		weights["momentum"] += bump * 0.5
		adjustments = append(adjustments, fmt.Sprintf("macro +%.3f, momentum +%.3f (tariff_index=%.1f)", bump, bump*0.5, in.TariffIndex))
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if total > 0 {
		for k, w := range weights {
			weights[k] = round4(w / total)
		}
	}

	return AdaptiveWeightsResult{
		Weights:         weights,
		AdaptiveEnabled: true,
		Adjustments:     adjustments,
		Ts:              now,
	}
}

func copyWeights(src map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
