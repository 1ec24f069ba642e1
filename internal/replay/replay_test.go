package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/rules"
)

func ruleEngine() *rules.Engine {
	return rules.NewEngine(rules.DefaultThresholds())
}

func TestRunMarksMissingDataContextNonReplayable(t *testing.T) {
	events := []models.Event{
		{ID: "1", EventType: "ORDER_SENT", Payload: map[string]interface{}{}, Ts: time.Now()},
	}
	result := Run(ruleEngine(), events, Overrides{}, nil, nil)

	require.Len(t, result.Steps, 1)
	assert.False(t, result.Steps[0].Replayable)
	assert.Equal(t, 1, result.NonReplayable)
	assert.Equal(t, 0, result.DecisionsGenerated)
}

func TestRunReplaysEventWithDataContext(t *testing.T) {
	events := []models.Event{
		{
			ID: "1", EventType: "RULE_ACTION_PROPOSED",
			Payload: map[string]interface{}{
				"action": "reduce",
				"data_context": map[string]interface{}{
					"rate_of_change": 10.0,
					"shock_score":    3.0,
					"vol_regime":     "high",
				},
			},
			Ts: time.Now(),
		},
	}
	result := Run(ruleEngine(), events, Overrides{}, nil, nil)

	require.Len(t, result.Steps, 1)
	assert.True(t, result.Steps[0].Replayable)
	assert.Equal(t, 1, result.DecisionsGenerated)
	require.NotNil(t, result.Steps[0].MatchesOriginal)
}

func TestRunFlagsMismatchBetweenOriginalAndReplayed(t *testing.T) {
	events := []models.Event{
		{
			ID: "1", EventType: "RULE_ACTION_PROPOSED",
			Payload: map[string]interface{}{
				"action": "some_action_that_will_never_match",
				"data_context": map[string]interface{}{
					"rate_of_change": 10.0,
					"shock_score":    3.0,
					"vol_regime":     "high",
				},
			},
			Ts: time.Now(),
		},
	}
	result := Run(ruleEngine(), events, Overrides{}, nil, nil)

	require.Len(t, result.Steps, 1)
	require.NotNil(t, result.Steps[0].MatchesOriginal)
	assert.False(t, *result.Steps[0].MatchesOriginal)
	assert.Equal(t, 1, result.Mismatches)
	require.NotNil(t, result.Steps[0].Mismatch)
	assert.Equal(t, "some_action_that_will_never_match", result.Steps[0].Mismatch.Original)
}

func TestRunAppliesOverrides(t *testing.T) {
	events := []models.Event{
		{
			ID: "1", EventType: "RULE_ACTION_PROPOSED",
			Payload: map[string]interface{}{
				"data_context": map[string]interface{}{"rate_of_change": 1.0, "vol_regime": "normal"},
			},
			Ts: time.Now(),
		},
	}
	shock := 100.0
	result := Run(ruleEngine(), events, Overrides{ShockScore: &shock}, nil, nil)

	require.Len(t, result.Steps, 1)
	require.NotEmpty(t, result.Steps[0].Actions)
}

func TestRunPassesThroughAgentSignalEvents(t *testing.T) {
	events := []models.Event{
		{ID: "1", EventType: "AGENT_SIGNAL", Payload: map[string]interface{}{}, Ts: time.Now()},
	}
	result := Run(ruleEngine(), events, Overrides{}, nil, nil)

	require.Len(t, result.Steps, 1)
	assert.True(t, result.Steps[0].Replayable)
	assert.NotEmpty(t, result.Steps[0].Note)
}

func TestRunFiltersByTimeWindow(t *testing.T) {
	early := time.Now().Add(-2 * time.Hour)
	late := time.Now()
	events := []models.Event{
		{ID: "1", EventType: "AGENT_SIGNAL", Ts: early},
		{ID: "2", EventType: "AGENT_SIGNAL", Ts: late},
	}
	start := time.Now().Add(-1 * time.Hour)
	result := Run(ruleEngine(), events, Overrides{}, &start, nil)

	assert.Equal(t, 1, result.EventCount)
	assert.Equal(t, 2, result.TotalEventsAvailable)
}

func TestRunComputesFidelityScoreFromMismatchRate(t *testing.T) {
	events := []models.Event{
		{
			ID: "1", EventType: "RULE_ACTION_PROPOSED",
			Payload: map[string]interface{}{
				"action":       "reduce",
				"data_context": map[string]interface{}{"rate_of_change": 10.0, "vol_regime": "high"},
			},
			Ts: time.Now(),
		},
	}
	result := Run(ruleEngine(), events, Overrides{}, nil, nil)
	assert.Equal(t, 1.0-result.Outcome.MismatchRate, result.Outcome.FidelityScore)
}
