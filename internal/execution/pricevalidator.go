package execution

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sawpanic/riskdesk/internal/eventbus"
	"github.com/sawpanic/riskdesk/internal/store"
	"github.com/sawpanic/riskdesk/internal/timeutil"
)

const priceDislocationAlertCooldown = 60 * time.Second

// ValidationResult is the outcome of one cross-venue price-integrity check.
type ValidationResult struct {
	Status       string // OK|WARNING
	IntegrityStatus string
	Reason       string
	DeviationBps map[string]float64
	Prices       map[string]float64
	LastAlertTs  *time.Time
	Ts           time.Time
}

// PriceValidator cross-checks pyth/kraken/coingecko quotes for dislocation,
// emitting a throttled PRICE_DISLOCATION_ALERT when any pair's deviation
// exceeds DeviationThresholdBps.
type PriceValidator struct {
	DeviationThresholdBps float64

	store       store.SnapshotStore
	bus         *eventbus.Bus
	status      string
	reason      string
	lastAlertTs *time.Time
}

// NewPriceValidator returns a validator using the desk's standard 50bps
// deviation threshold.
func NewPriceValidator(s store.SnapshotStore, bus *eventbus.Bus) *PriceValidator {
	return &PriceValidator{DeviationThresholdBps: 50.0, store: s, bus: bus, status: "OK"}
}

func pairDeviationBps(a, b float64) (float64, bool) {
	if a <= 0 || b <= 0 {
		return 0, false
	}
	return math.Abs(a-b) / b * 10000.0, true
}

// Validate cross-checks the three venue prices (zero or absent means "no
// quote") and returns the integrity verdict, emitting a throttled alert if
// any pair crosses the deviation threshold.
func (v *PriceValidator) Validate(ctx context.Context, prices map[string]float64) ValidationResult {
	pyth := prices["pyth"]
	kraken := prices["kraken"]
	coingecko := prices["coingecko"]

	deviations := make(map[string]float64)
	var warnings []string

	if dev, ok := pairDeviationBps(pyth, kraken); ok {
		deviations["pyth_vs_kraken"] = round2(dev)
		if dev > v.DeviationThresholdBps {
			warnings = append(warnings, fmt.Sprintf("pyth vs kraken deviation %.0fbps", dev))
		}
	}
	if dev, ok := pairDeviationBps(pyth, coingecko); ok {
		deviations["pyth_vs_coingecko"] = round2(dev)
		if dev > v.DeviationThresholdBps {
			warnings = append(warnings, fmt.Sprintf("pyth vs coingecko deviation %.0fbps", dev))
		}
	}
	if pyth <= 0 {
		if dev, ok := pairDeviationBps(kraken, coingecko); ok {
			deviations["kraken_vs_coingecko"] = round2(dev)
			if dev > v.DeviationThresholdBps {
				warnings = append(warnings, fmt.Sprintf("kraken vs coingecko deviation %.0fbps", dev))
			}
		}
	}

	status := "OK"
	reason := ""
	if len(warnings) > 0 {
		status = "WARNING"
		reason = joinReasons(warnings)
	}
	v.status = status
	v.reason = reason

	now := timeutil.NowUTC()
	if len(warnings) > 0 {
		v.emitDislocationAlertThrottled(ctx, warnings, deviations)
	}

	positivePrices := make(map[string]float64, len(prices))
	for k, p := range prices {
		if p > 0 {
			positivePrices[k] = round4(p)
		}
	}

	return ValidationResult{
		Status: status, IntegrityStatus: status, Reason: reason,
		DeviationBps: deviations, Prices: positivePrices,
		LastAlertTs: v.lastAlertTs, Ts: now,
	}
}

func (v *PriceValidator) emitDislocationAlertThrottled(ctx context.Context, warnings []string, deviations map[string]float64) {
	if v.store != nil && !store.CheckThrottle(v.store, "price_dislocation_alert", priceDislocationAlertCooldown) {
		return
	}
	now := timeutil.NowUTC()
	v.lastAlertTs = &now
	if v.bus == nil {
		return
	}
	v.bus.Emit(ctx, eventbus.PriceDislocationAlert, "price_validator", map[string]interface{}{
		"message":       joinReasons(warnings),
		"deviations":    deviations,
		"threshold_bps": v.DeviationThresholdBps,
	})
}

// Status returns the validator's last-computed integrity status.
func (v *PriceValidator) Status() string { return v.status }

// IsSafe reports whether the last validation was clean.
func (v *PriceValidator) IsSafe() bool { return v.status == "OK" }

func joinReasons(warnings []string) string {
	out := ""
	for i, w := range warnings {
		if i > 0 {
			out += "; "
		}
		out += w
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*1e2) / 1e2 }
func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
