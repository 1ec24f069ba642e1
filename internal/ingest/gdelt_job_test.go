package ingest

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/riskdesk/internal/eventbus"
	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/store"
)

func TestGDELTJobFiresShockSpikeOnRisingEdgeOnly(t *testing.T) {
	snaps := store.NewTTLMap(0)
	log := &fakeEventLog{}
	bus := eventbus.New(log, zerolog.Nop())

	scores := []float64{-10, -10, -10, -10, -10, -10, -10, -10, -10, -10}
	job := &GDELTJob{
		Keywords: []string{"tariff"},
		Fetch: func(ctx context.Context, kw []string) ([]float64, error) {
			return scores, nil
		},
		Snaps: snaps,
		Bus:   bus,
	}

	require.NoError(t, job.Run(context.Background()))
	first := len(log.appended)
	assert.Equal(t, 1, first, "shock score above threshold should fire exactly one SHOCK_SPIKE")

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, first, len(log.appended), "sustained shock score should not refire SHOCK_SPIKE")
}

func TestComputeShockScore(t *testing.T) {
	score := computeShockScore([]float64{-2, -2, -2})
	assert.InDelta(t, 2.06, score, 0.01)
}

type fakeEventLog struct {
	appended []models.Event
}

func (f *fakeEventLog) Append(ctx context.Context, evt models.Event) error {
	f.appended = append(f.appended, evt)
	return nil
}

func (f *fakeEventLog) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	return f.appended, nil
}
