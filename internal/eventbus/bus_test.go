package eventbus

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/riskdesk/internal/models"
)

type fakeLog struct {
	appended []models.Event
}

func (f *fakeLog) Append(ctx context.Context, evt models.Event) error {
	f.appended = append(f.appended, evt)
	return nil
}

func (f *fakeLog) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	if limit > len(f.appended) {
		limit = len(f.appended)
	}
	out := make([]models.Event, limit)
	for i := 0; i < limit; i++ {
		out[i] = f.appended[len(f.appended)-1-i]
	}
	return out, nil
}

func TestEmitDispatchesToTypedAndWildcardSubscribers(t *testing.T) {
	b := New(nil, zerolog.Nop())

	var typedCount, wildcardCount int
	b.Subscribe(ShockSpike, func(ctx context.Context, evt models.Event) { typedCount++ })
	b.Subscribe("", func(ctx context.Context, evt models.Event) { wildcardCount++ })

	id := b.Emit(context.Background(), ShockSpike, "test", map[string]interface{}{"score": 0.9})

	assert.NotEmpty(t, id)
	assert.Equal(t, 1, typedCount)
	assert.Equal(t, 1, wildcardCount)
}

func TestEmitDoesNotDispatchToOtherTypes(t *testing.T) {
	b := New(nil, zerolog.Nop())
	var count int
	b.Subscribe(ShockSpike, func(ctx context.Context, evt models.Event) { count++ })

	b.Emit(context.Background(), IndexUpdate, "test", nil)
	assert.Equal(t, 0, count)
}

func TestEmitPersistsToLog(t *testing.T) {
	log := &fakeLog{}
	b := New(log, zerolog.Nop())

	b.Emit(context.Background(), RiskThrottleOn, "risk", map[string]interface{}{"reason": "daily_loss"})
	require.Len(t, log.appended, 1)
	assert.Equal(t, RiskThrottleOn, log.appended[0].EventType)

	recent, err := b.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "risk", recent[0].Source)
}

func TestSubscriberPanicDoesNotStopDispatch(t *testing.T) {
	b := New(nil, zerolog.Nop())
	var secondCalled bool
	b.Subscribe(ErrorEvent, func(ctx context.Context, evt models.Event) { panic("boom") })
	b.Subscribe(ErrorEvent, func(ctx context.Context, evt models.Event) { secondCalled = true })

	assert.NotPanics(t, func() {
		b.Emit(context.Background(), ErrorEvent, "test", nil)
	})
	assert.True(t, secondCalled)
}

func TestRecentWithNoLogReturnsEmpty(t *testing.T) {
	b := New(nil, zerolog.Nop())
	recent, err := b.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
