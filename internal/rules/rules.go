// Package rules evaluates the desk's fixed set of condition/action
// trading rules against the current market/risk context, producing a
// list of recommended actions for the execution layer to act on (or not
// — rules only recommend, they never place orders themselves).
package rules

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Context is the snapshot of signals a rule evaluates against.
type Context struct {
	Venue                  string
	Market                 string
	SuggestedSize          float64
	TariffRateOfChange     float64
	VolRegime              string // normal|high|extreme
	ShockScore             float64
	DivergenceAlertActive  bool
	FundingRegimeFlipped   bool
	CarryScore             float64
}

// Action is one rule's recommendation, carrying the reasoning that
// triggered it.
type Action struct {
	RuleName   string
	ActionType string
	Venue      string
	Market     string
	Side       string // buy|sell|none
	Size       float64
	Reason     string
	Ts         time.Time
}

// Thresholds are the tunable trigger points for each rule, overridable
// via YAML so desk operators can retune sensitivity without a rebuild.
type Thresholds struct {
	TariffRocVolReduce    float64 `yaml:"tariff_roc_vol_reduce"`
	ShockThrottle         float64 `yaml:"shock_throttle"`
	NegativeCarryReduce   float64 `yaml:"negative_carry_reduce"`
	StableRotationShock   float64 `yaml:"stable_rotation_shock"`
	StableRotationTariff  float64 `yaml:"stable_rotation_tariff_roc"`
}

// DefaultThresholds returns the desk's standard rule sensitivities,
// the starting point for YAML overlays and for sandbox comparisons.
func DefaultThresholds() Thresholds {
	return defaultThresholds()
}

func defaultThresholds() Thresholds {
	return Thresholds{
		TariffRocVolReduce:   5.0,
		ShockThrottle:        2.0,
		NegativeCarryReduce:  -0.10,
		StableRotationShock:  1.5,
		StableRotationTariff: 8.0,
	}
}

// LoadThresholds reads a YAML threshold overlay from path, falling back
// to built-in defaults for any field it doesn't set. A missing file is
// not an error.
func LoadThresholds(path string) (Thresholds, error) {
	t := defaultThresholds()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, err
	}
	return t, nil
}

type rule struct {
	name       string
	actionType string
	explain    string
	condition  func(Context, Thresholds) bool
}

// Engine evaluates the fixed rule table against a context.
type Engine struct {
	thresholds Thresholds
	rules      []rule
}

// NewEngine builds a rules engine using the given thresholds.
func NewEngine(thresholds Thresholds) *Engine {
	return &Engine{
		thresholds: thresholds,
		rules: []rule{
			{
				name: "tariff_vol_reduce", actionType: "reduce_exposure",
				explain:   "tariff index rate_of_change exceeds threshold and vol regime is high, reduce exposure",
				condition: tariffVolCondition,
			},
			{
				name: "shock_throttle", actionType: "enable_risk_throttle",
				explain:   "shock score exceeds threshold, enable risk throttle",
				condition: shockCondition,
			},
			{
				name: "divergence_hedge", actionType: "hedge",
				explain:   "divergence alert active and funding regime flipped, hedge",
				condition: divergenceHedgeCondition,
			},
			{
				name: "negative_carry_reduce", actionType: "reduce_long_perp",
				explain:   "carry score very negative, reduce long perp",
				condition: negativeCarryCondition,
			},
			{
				name: "stable_rotation", actionType: "rotate_to_stables",
				explain:   "tariff shock high, rotate to 80% stables, reduce beta to 0.2",
				condition: stableRotationCondition,
			},
		},
	}
}

// Evaluate runs every rule against ctx and returns the actions whose
// condition fired.
func (e *Engine) Evaluate(ctx Context) []Action {
	now := time.Now().UTC()
	var actions []Action
	for _, r := range e.rules {
		if r.condition(ctx, e.thresholds) {
			actions = append(actions, Action{
				RuleName: r.name, ActionType: r.actionType,
				Venue: ctx.Venue, Market: ctx.Market,
				Side: inferSide(r.actionType), Size: ctx.SuggestedSize,
				Reason: r.explain, Ts: now,
			})
		}
	}
	return actions
}

func tariffVolCondition(ctx Context, t Thresholds) bool {
	return ctx.TariffRateOfChange > t.TariffRocVolReduce && (ctx.VolRegime == "high" || ctx.VolRegime == "extreme")
}

func shockCondition(ctx Context, t Thresholds) bool {
	return ctx.ShockScore > t.ShockThrottle
}

func divergenceHedgeCondition(ctx Context, _ Thresholds) bool {
	return ctx.DivergenceAlertActive && ctx.FundingRegimeFlipped
}

func negativeCarryCondition(ctx Context, t Thresholds) bool {
	return ctx.CarryScore < t.NegativeCarryReduce
}

func stableRotationCondition(ctx Context, t Thresholds) bool {
	return ctx.ShockScore > t.StableRotationShock || ctx.TariffRateOfChange > t.StableRotationTariff
}

func inferSide(actionType string) string {
	switch actionType {
	case "reduce_exposure", "reduce_long_perp", "rotate_to_stables", "hedge":
		return "sell"
	default:
		return "none"
	}
}
