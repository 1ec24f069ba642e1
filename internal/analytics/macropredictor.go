package analytics

import (
	"math"
	"time"
)

// MacroFeatures are the inputs to MacroPredictor.Predict. A zero value is
// neutral for every feature except StablecoinHealthScore, whose zero value
// scores as fully unhealthy.
type MacroFeatures struct {
	TariffMomentum         float64
	ShockScore             float64
	FundingRegimeScore     float64
	VolRegimeScore         float64
	CrossVenueSpreadBps    float64
	StablecoinHealthScore  float64 // 1.0 = healthy, 0.5 = neutral; not defaulted, caller must supply
	OrderbookImbalance     float64
}

// MacroPrediction is the probability a macro regime shift pushes price
// up vs down over the next 4 hours, with a per-feature contribution
// breakdown for explainability.
type MacroPrediction struct {
	ProbUpNext4h           float64
	ProbDownNext4h         float64
	Confidence             float64
	RawScore               float64
	FeatureContributions   map[string]float64
	Ts                     time.Time
}

// macroFeatureWeights are fixed linear-model weights over the seven
// macro signals tracked by the desk.
var macroFeatureWeights = map[string]float64{
	"tariff_momentum":     0.25,
	"shock_score":         0.20,
	"funding_regime":      0.15,
	"vol_regime":          0.15,
	"cross_venue_spread":  0.10,
	"stablecoin_health":   0.10,
	"orderbook_imbalance": 0.05,
}

// MacroPredictor is a fixed-weight logistic regime predictor: each macro
// signal maps to a signed sub-score, weighted and summed, then squashed
// through a sigmoid to a directional probability.
type MacroPredictor struct{}

// Predict combines the seven macro features into a sigmoid-squashed
// up/down probability for the next 4-hour window.
func (MacroPredictor) Predict(f MacroFeatures) MacroPrediction {
	contributions := make(map[string]float64, 7)
	var rawScore float64

	add := func(name string, signedScore float64) {
		c := signedScore * macroFeatureWeights[name]
		rawScore += c
		contributions[name] = round4(c)
	}

	add("tariff_momentum", -f.TariffMomentum*0.1)
	add("shock_score", -f.ShockScore*0.5)
	add("funding_regime", f.FundingRegimeScore*2.0)
	add("vol_regime", -math.Abs(f.VolRegimeScore)*0.3)
	add("cross_venue_spread", -math.Abs(f.CrossVenueSpreadBps)*0.01)
	add("stablecoin_health", (f.StablecoinHealthScore-0.5)*2.0)
	add("orderbook_imbalance", f.OrderbookImbalance*1.0)

	probUp := sigmoid(rawScore)
	probDown := 1.0 - probUp
	confidence := math.Abs(probUp-0.5) * 2.0

	return MacroPrediction{
		ProbUpNext4h:         round4(probUp),
		ProbDownNext4h:       round4(probDown),
		Confidence:           round4(confidence),
		RawScore:             round4(rawScore),
		FeatureContributions: contributions,
		Ts:                   time.Now().UTC(),
	}
}

func sigmoid(x float64) float64 {
	x = clamp(x, -20.0, 20.0)
	return 1.0 / (1.0 + math.Exp(-x))
}

// EncodeFundingRegime maps a qualitative funding regime label to a
// signed score for MacroFeatures.FundingRegimeScore.
func EncodeFundingRegime(regime string) float64 {
	switch regime {
	case "contango":
		return 1.0
	case "backwardation":
		return -1.0
	default:
		return 0.0
	}
}

// EncodeVolRegime maps a qualitative volatility regime label to a score
// for MacroFeatures.VolRegimeScore.
func EncodeVolRegime(regime string) float64 {
	switch regime {
	case "low":
		return 0.0
	case "high":
		return 0.7
	case "extreme":
		return 1.0
	default:
		return 0.3
	}
}
