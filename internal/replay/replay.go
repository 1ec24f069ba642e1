// Package replay re-runs the rules engine against a recorded event
// history to check whether today's rule table would have produced the
// same decisions it did at the time — a forensic tool for validating
// rule changes against history, not a live trading path.
package replay

import (
	"math"
	"time"

	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/rules"
)

var replayableEventTypes = map[string]bool{
	"ORDER_SENT":           true,
	"ORDER_FILLED":         true,
	"RULE_ACTION_PROPOSED": true,
}

var passthroughNoteEventTypes = map[string]bool{
	"AGENT_SIGNAL":          true,
	"AGENT_ACTION_PROPOSED": true,
}

// Overrides lets a replay run override the context a recorded event's
// data_context would otherwise reconstruct, standing in for strategy_config
// in a sandboxed what-if replay.
type Overrides struct {
	ShockScore           *float64
	VolRegime            *string
	FundingRegimeFlipped *bool
	TariffRateOfChange   *float64
	CarryScore           *float64
}

// MismatchDetail records what the original decision was vs. what the
// current rule table would produce for the same context.
type MismatchDetail struct {
	Original string
	Replayed string
}

// Step is one event's replay outcome.
type Step struct {
	StepNum         int
	EventID         string
	EventType       string
	OriginalTs      time.Time
	Replayable      bool
	Reason          string
	Actions         []rules.Action
	Note            string
	MatchesOriginal *bool
	Mismatch        *MismatchDetail
}

// OutcomeSummary rolls the per-step replay up into fidelity stats.
type OutcomeSummary struct {
	TotalSteps      int
	ReplayableSteps int
	MismatchRate    float64
	FidelityScore   float64
}

// Result is the full output of a replay run.
type Result struct {
	Status               string
	EventCount           int
	TotalEventsAvailable int
	DecisionsGenerated   int
	Mismatches           int
	NonReplayable        int
	ReplayDurationMs     float64
	Steps                []Step
	Truncated            bool
	TimeWindowStart      *time.Time
	TimeWindowEnd        *time.Time
	Outcome              OutcomeSummary
	Ts                   time.Time
}

const maxSteps = 500

// Run replays events (already in chronological order) through engine,
// optionally restricted to [start, end] and with overrides applied to
// every reconstructed context. A recorded event without a data_context
// payload field is marked non-replayable rather than skipped, so its
// absence is visible in the outcome summary.
func Run(engine *rules.Engine, events []models.Event, overrides Overrides, start, end *time.Time) Result {
	runStart := time.Now()
	filtered := filterByWindow(events, start, end)

	var steps []Step
	var decisionsGenerated, mismatches, nonReplayable int

	for i, evt := range filtered {
		step := Step{
			StepNum: i + 1, EventID: evt.ID, EventType: evt.EventType,
			OriginalTs: evt.Ts, Replayable: true,
		}

		switch {
		case replayableEventTypes[evt.EventType]:
			dataContext, ok := evt.Payload["data_context"].(map[string]interface{})
			if !ok || len(dataContext) == 0 {
				step.Replayable = false
				step.Reason = "Missing data_context for deterministic replay"
				nonReplayable++
				steps = append(steps, step)
				continue
			}

			ctx := contextFromDataContext(dataContext, overrides)
			actions := engine.Evaluate(ctx)
			decisionsGenerated++
			step.Actions = actions

			originalAction, hasOriginal := stringField(evt.Payload, "action", "side")
			if hasOriginal && len(actions) > 0 {
				replayed := actions[0].ActionType
				matches := originalAction == replayed
				step.MatchesOriginal = &matches
				if !matches {
					mismatches++
					step.Mismatch = &MismatchDetail{Original: originalAction, Replayed: replayed}
				}
			}
		case passthroughNoteEventTypes[evt.EventType]:
			step.Note = "Agent signal — recorded but not re-evaluated in replay"
		default:
			step.Note = "Event type " + evt.EventType + " passed through"
		}

		steps = append(steps, step)
	}

	truncated := len(steps) > maxSteps
	outSteps := steps
	if truncated {
		outSteps = steps[:maxSteps]
	}

	mismatchRate := 0.0
	fidelity := 1.0
	if decisionsGenerated > 0 {
		mismatchRate = round4(float64(mismatches) / float64(decisionsGenerated))
		fidelity = round4(1.0 - float64(mismatches)/float64(decisionsGenerated))
	}

	return Result{
		Status: "completed", EventCount: len(filtered), TotalEventsAvailable: len(events),
		DecisionsGenerated: decisionsGenerated, Mismatches: mismatches, NonReplayable: nonReplayable,
		ReplayDurationMs: float64(time.Since(runStart).Microseconds()) / 1000.0,
		Steps:            outSteps, Truncated: truncated,
		TimeWindowStart: start, TimeWindowEnd: end,
		Outcome: OutcomeSummary{
			TotalSteps: len(steps), ReplayableSteps: len(steps) - nonReplayable,
			MismatchRate: mismatchRate, FidelityScore: fidelity,
		},
		Ts: time.Now().UTC(),
	}
}

func filterByWindow(events []models.Event, start, end *time.Time) []models.Event {
	if start == nil && end == nil {
		return events
	}
	var out []models.Event
	for _, ev := range events {
		if start != nil && ev.Ts.Before(*start) {
			continue
		}
		if end != nil && ev.Ts.After(*end) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func contextFromDataContext(dc map[string]interface{}, overrides Overrides) rules.Context {
	ctx := rules.Context{
		TariffRateOfChange: floatField(dc, "rate_of_change"),
		ShockScore:         floatField(dc, "shock_score"),
		VolRegime:          stringOr(dc, "vol_regime", "normal"),
	}
	if overrides.ShockScore != nil {
		ctx.ShockScore = *overrides.ShockScore
	}
	if overrides.VolRegime != nil {
		ctx.VolRegime = *overrides.VolRegime
	}
	if overrides.FundingRegimeFlipped != nil {
		ctx.FundingRegimeFlipped = *overrides.FundingRegimeFlipped
	}
	if overrides.TariffRateOfChange != nil {
		ctx.TariffRateOfChange = *overrides.TariffRateOfChange
	}
	if overrides.CarryScore != nil {
		ctx.CarryScore = *overrides.CarryScore
	}
	return ctx
}

func floatField(m map[string]interface{}, key string) float64 {
	v, ok := m[key]
	if !ok {
		return 0
	}
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return f
}

func stringOr(m map[string]interface{}, key, def string) string {
	v, ok := m[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

func stringField(m map[string]interface{}, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
