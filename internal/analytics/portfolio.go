package analytics

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PortfolioAssetClasses is the closed set of allocation buckets the
// optimizer sizes.
var PortfolioAssetClasses = []string{"hl_perps", "drift_perps", "spot_jupiter", "stablecoins"}

var portfolioDefaultWeights = map[string]float64{
	"hl_perps": 0.25, "drift_perps": 0.25, "spot_jupiter": 0.25, "stablecoins": 0.25,
}

// PortfolioCapsConfig is an operator-tunable overlay of hard caps and
// floors per asset class, loaded from YAML so allocation limits can be
// adjusted without a code change. Zero-value fields fall back to the
// built-in defaults.
type PortfolioCapsConfig struct {
	Caps   map[string]float64 `yaml:"caps"`
	Floors map[string]float64 `yaml:"floors"`
}

var portfolioDefaultCaps = map[string]float64{
	"hl_perps": 0.50, "drift_perps": 0.50, "spot_jupiter": 0.50, "stablecoins": 0.80,
}
var portfolioDefaultFloors = map[string]float64{
	"hl_perps": 0.0, "drift_perps": 0.0, "spot_jupiter": 0.0, "stablecoins": 0.05,
}

// LoadPortfolioCapsConfig reads a YAML caps/floors overlay from path. A
// missing path is not an error: callers get the built-in defaults.
func LoadPortfolioCapsConfig(path string) (PortfolioCapsConfig, error) {
	cfg := PortfolioCapsConfig{Caps: copyWeights(portfolioDefaultCaps), Floors: copyWeights(portfolioDefaultFloors)}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	var overlay PortfolioCapsConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, err
	}
	for k, v := range overlay.Caps {
		cfg.Caps[k] = v
	}
	for k, v := range overlay.Floors {
		cfg.Floors[k] = v
	}
	return cfg, nil
}

// PortfolioOptimizer proposes an asset-class allocation from a choice of
// sizing methods, then applies regime tilts and hard caps/floors. It
// never places trades itself — output is advisory only.
type PortfolioOptimizer struct {
	Caps PortfolioCapsConfig
}

// NewPortfolioOptimizer returns an optimizer using the built-in default
// caps/floors.
func NewPortfolioOptimizer() *PortfolioOptimizer {
	return &PortfolioOptimizer{Caps: PortfolioCapsConfig{Caps: copyWeights(portfolioDefaultCaps), Floors: copyWeights(portfolioDefaultFloors)}}
}

func normalizeWeights(w map[string]float64) map[string]float64 {
	var total float64
	for _, v := range w {
		total += v
	}
	if total <= 0 {
		return copyWeights(portfolioDefaultWeights)
	}
	out := make(map[string]float64, len(w))
	for k, v := range w {
		out[k] = v / total
	}
	return out
}

func (o *PortfolioOptimizer) applyCaps(w map[string]float64) map[string]float64 {
	capped := make(map[string]float64, len(PortfolioAssetClasses))
	for _, k := range PortfolioAssetClasses {
		capped[k] = clamp(w[k], o.Caps.Floors[k], o.Caps.Caps[k])
	}
	return normalizeWeights(capped)
}

// RiskParity allocates inversely to each asset class's volatility.
func RiskParity(volHL, volDrift, volSpot, volStable float64) map[string]float64 {
	vols := map[string]float64{
		"hl_perps":     maxFloat(volHL, 0.01),
		"drift_perps":  maxFloat(volDrift, 0.01),
		"spot_jupiter": maxFloat(volSpot, 0.01),
		"stablecoins":  maxFloat(volStable, 0.001),
	}
	invVols := make(map[string]float64, len(vols))
	for k, v := range vols {
		invVols[k] = 1.0 / v
	}
	return normalizeWeights(invVols)
}

// MeanVariance scores each asset class by mu - 0.5*riskAversion*sigma^2
// (a quadratic-utility proxy), floored above zero so no class gets
// negative weight.
func MeanVariance(expectedReturns, vols map[string]float64, riskAversion float64) map[string]float64 {
	scores := make(map[string]float64, len(PortfolioAssetClasses))
	for _, k := range PortfolioAssetClasses {
		mu := expectedReturns[k]
		sigma := maxFloat(vols[k], 0.01)
		scores[k] = maxFloat(mu-0.5*riskAversion*sigma*sigma, 0.001)
	}
	return normalizeWeights(scores)
}

// ScaledKelly sizes each asset class with a fractional-Kelly bet implied
// by its edge/odds pair, scaled down by kellyFraction for safety.
func ScaledKelly(edge, odds map[string]float64, kellyFraction float64) map[string]float64 {
	raw := make(map[string]float64, len(PortfolioAssetClasses))
	for _, k := range PortfolioAssetClasses {
		e := edge[k]
		o := maxFloat(odds[k], 0.01)
		if o == 0 {
			o = 1.0
		}
		p := clamp(0.5+e/(2.0*o), 0, 1)
		q := 1.0 - p
		kelly := 0.0
		if o*p-q > 0 {
			kelly = (o*p - q) / o
		}
		raw[k] = maxFloat(kelly*kellyFraction, 0)
	}
	var total float64
	for _, v := range raw {
		total += v
	}
	if total <= 0 {
		return copyWeights(portfolioDefaultWeights)
	}
	return normalizeWeights(raw)
}

// PortfolioOptimizeInputs parameterizes one Optimize call.
type PortfolioOptimizeInputs struct {
	RiskLimit          float64
	PredictorProb      float64
	CarryScore         float64
	MacroRegime        string // neutral|risk_on|risk_off|crisis
	StableRotationPref float64
	Method             string // risk_parity|mean_variance|kelly
}

// PortfolioAllocation is the final, capped, normalized allocation plus
// the reasoning trail that produced it.
type PortfolioAllocation struct {
	Allocation  map[string]float64
	Method      string
	Reasoning   []string
	Ts          time.Time
}

// Optimize proposes an allocation via the selected sizing method, tilts
// it for the macro regime and any stablecoin rotation preference, scales
// down risky legs when RiskLimit is tight, then applies hard caps/floors
// and renormalizes. This is a proposal only; it never places trades.
func (o *PortfolioOptimizer) Optimize(in PortfolioOptimizeInputs) PortfolioAllocation {
	riskLimit := clamp(in.RiskLimit, 0, 1)
	predictorProb := clamp(in.PredictorProb, 0, 1)
	stableRotationPref := clamp(in.StableRotationPref, -1, 1)

	var reasoning []string
	var weights map[string]float64

	switch in.Method {
	case "mean_variance":
		er := map[string]float64{
			"hl_perps":     in.CarryScore*0.5 + predictorProb*0.1,
			"drift_perps":  in.CarryScore*0.4 + predictorProb*0.1,
			"spot_jupiter": predictorProb * 0.15,
			"stablecoins":  0.04,
		}
		vols := map[string]float64{"hl_perps": 0.35, "drift_perps": 0.35, "spot_jupiter": 0.28, "stablecoins": 0.02}
		weights = MeanVariance(er, vols, 2.0)
		reasoning = append(reasoning, "mean_variance: weights derived from expected returns vs vol")
	case "kelly":
		edge := map[string]float64{
			"hl_perps":     in.CarryScore * 0.3,
			"drift_perps":  in.CarryScore * 0.25,
			"spot_jupiter": predictorProb*0.2 - 0.05,
			"stablecoins":  0.02,
		}
		odds := map[string]float64{"hl_perps": 1.0, "drift_perps": 1.0, "spot_jupiter": 1.0, "stablecoins": 1.0}
		weights = ScaledKelly(edge, odds, 0.25)
		reasoning = append(reasoning, "scaled_kelly: fractional Kelly sizing with 0.25x scaling")
	default:
		in.Method = "risk_parity"
		weights = RiskParity(0.30, 0.30, 0.25, 0.02)
		reasoning = append(reasoning, "risk_parity: inverse-vol allocation across venues")
	}

	switch in.MacroRegime {
	case "risk_off", "crisis":
		shift := 0.15
		weights["stablecoins"] += shift
		weights["hl_perps"] -= shift * 0.4
		weights["drift_perps"] -= shift * 0.3
		weights["spot_jupiter"] -= shift * 0.3
		reasoning = append(reasoning, "macro_regime="+in.MacroRegime+": shifted toward stablecoins")
	case "risk_on":
		shift := 0.10
		weights["stablecoins"] -= shift
		weights["hl_perps"] += shift * 0.4
		weights["drift_perps"] += shift * 0.3
		weights["spot_jupiter"] += shift * 0.3
		reasoning = append(reasoning, "macro_regime=risk_on: shifted toward risk assets")
	}

	switch {
	case stableRotationPref > 0.3:
		weights["stablecoins"] += stableRotationPref * 0.10
		reasoning = append(reasoning, "stable_rotation_pref positive: boosted stablecoins")
	case stableRotationPref < -0.3:
		weights["stablecoins"] -= absFloat(stableRotationPref) * 0.08
		reasoning = append(reasoning, "stable_rotation_pref negative: reduced stablecoins")
	}

	if riskLimit < 0.3 {
		factor := riskLimit / 0.3
		for _, k := range []string{"hl_perps", "drift_perps", "spot_jupiter"} {
			weights[k] *= factor
		}
		weights["stablecoins"] += (1.0 - factor) * 0.3
		reasoning = append(reasoning, "risk_limit tight: scaled down risky allocations")
	}

	for _, k := range PortfolioAssetClasses {
		weights[k] = maxFloat(weights[k], 0)
	}

	weights = o.applyCaps(weights)
	reasoning = append(reasoning, "proposal only, no auto-trade")

	rounded := make(map[string]float64, len(weights))
	for _, k := range PortfolioAssetClasses {
		rounded[k] = round(weights[k], 6)
	}

	return PortfolioAllocation{
		Allocation: rounded,
		Method:     in.Method,
		Reasoning:  reasoning,
		Ts:         time.Now().UTC(),
	}
}
