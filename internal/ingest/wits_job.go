package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/sawpanic/riskdesk/internal/eventbus"
	"github.com/sawpanic/riskdesk/internal/store"
	"github.com/sawpanic/riskdesk/internal/timeutil"
)

// WITSJob fetches tariff data for every configured (partner, product) pair
// every 6 hours and stores one snapshot per pair, each TTL'd for a full day
// (4x the 6h period) since tariff schedules change slowly.
type WITSJob struct {
	Reporter string
	Partners []string
	Products []string
	Fetch    TariffFetchFunc
	Snaps    store.SnapshotStore
	Bus      *eventbus.Bus
}

func (j *WITSJob) Name() string { return "wits_ingest" }

func (j *WITSJob) Run(ctx context.Context) error {
	if j.Fetch == nil {
		return fmt.Errorf("%s: %w", j.Name(), ErrNoFetcher)
	}

	var lastErr error
	rowCount := 0
	for _, partner := range j.Partners {
		for _, product := range j.Products {
			components, err := j.Fetch(ctx, j.Reporter, partner, product)
			if err != nil {
				lastErr = fmt.Errorf("%s/%s: %w", partner, product, err)
				continue
			}
			key := fmt.Sprintf("wits:tariff:%s:%s:%s", j.Reporter, partner, product)
			j.Snaps.Set(key, map[string]interface{}{
				"reporter":   j.Reporter,
				"partner":    partner,
				"product":    product,
				"components": components,
				"ts":         timeutil.ISO8601(timeutil.NowUTC()),
			}, 24*time.Hour)
			rowCount += len(components)
		}
	}

	if j.Bus != nil {
		j.Bus.Emit(ctx, eventbus.IndexUpdate, j.Name(), map[string]interface{}{
			"reporter":  j.Reporter,
			"partners":  j.Partners,
			"products":  j.Products,
			"row_count": rowCount,
		})
	}

	if rowCount == 0 && lastErr != nil {
		return fmt.Errorf("%s: all fetches failed, last: %w", j.Name(), lastErr)
	}
	return nil
}
