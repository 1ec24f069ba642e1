package ingest

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sawpanic/riskdesk/internal/eventbus"
	"github.com/sawpanic/riskdesk/internal/store"
	"github.com/sawpanic/riskdesk/internal/timeutil"
)

// ShockThreshold is the GDELT-derived shock score above which a
// SHOCK_SPIKE event fires, matching the original implementation's fixed
// threshold.
const ShockThreshold = 5.0

// GDELTJob polls the GDELT news API every 5 minutes, computes a shock
// score from the average negative tone of matching articles, and fires
// SHOCK_SPIKE only on the rising edge (previous score below threshold,
// current score at or above it) so a sustained spike emits once.
type GDELTJob struct {
	Keywords []string
	Fetch    NewsFetchFunc
	Snaps    store.SnapshotStore
	Bus      *eventbus.Bus

	lastShockScore float64
}

func (j *GDELTJob) Name() string { return "gdelt_ingest" }

func (j *GDELTJob) Run(ctx context.Context) error {
	if j.Fetch == nil {
		return fmt.Errorf("%s: %w", j.Name(), ErrNoFetcher)
	}

	negToneScores, err := j.Fetch(ctx, j.Keywords)
	if err != nil {
		return fmt.Errorf("%s: fetch: %w", j.Name(), err)
	}
	if len(negToneScores) == 0 {
		return nil
	}

	shockScore := computeShockScore(negToneScores)

	j.Snaps.Set("gdelt:latest", map[string]interface{}{
		"article_count": len(negToneScores),
		"shock_score":   shockScore,
		"ts":            timeutil.ISO8601(timeutil.NowUTC()),
	}, 10*time.Minute)

	if shockScore >= ShockThreshold && j.lastShockScore < ShockThreshold && j.Bus != nil {
		j.Bus.Emit(ctx, eventbus.ShockSpike, j.Name(), map[string]interface{}{
			"shock_score": shockScore,
			"threshold":   ShockThreshold,
			"previous":    j.lastShockScore,
		})
	}
	j.lastShockScore = shockScore
	return nil
}

// computeShockScore averages the magnitude of negative article tone and
// scales it up with article volume, matching the original formula:
// |mean(tone_neg)| * (1 + count/100).
func computeShockScore(negToneScores []float64) float64 {
	var sum float64
	for _, v := range negToneScores {
		sum += v
	}
	avg := math.Abs(sum / float64(len(negToneScores)))
	score := avg * (1 + float64(len(negToneScores))/100.0)
	return math.Round(score*1000) / 1000
}
