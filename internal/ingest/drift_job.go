package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/sawpanic/riskdesk/internal/models"
	"github.com/sawpanic/riskdesk/internal/store"
	"github.com/sawpanic/riskdesk/internal/timeutil"
)

// DriftJob polls Drift's perp market and funding-rate endpoints every 60s,
// storing a PriceTick and a FundingTick with a 300s TTL (5x period) on the
// funding side, matching the original implementation's wider funding TTL.
type DriftJob struct {
	Market       string
	FetchPrice   PriceFetchFunc
	FetchFunding FundingFetchFunc
	Snaps        store.SnapshotStore
}

func (j *DriftJob) Name() string { return "drift_ingest" }

func (j *DriftJob) Run(ctx context.Context) error {
	var errs []error

	if j.FetchPrice != nil {
		price, _, err := j.FetchPrice(ctx, j.Market)
		if err != nil {
			errs = append(errs, fmt.Errorf("price: %w", err))
		} else if price > 0 {
			tick := models.PriceTick{Symbol: j.Market, Venue: "drift", Price: price, Ts: timeutil.NowUTC()}
			j.Snaps.Set("price:drift:"+j.Market, tick, 120*time.Second)
		}
	}

	if j.FetchFunding != nil {
		rate, err := j.FetchFunding(ctx, j.Market)
		if err != nil {
			errs = append(errs, fmt.Errorf("funding: %w", err))
		} else {
			tick := models.FundingTick{Venue: "drift", Market: j.Market, FundingRate: rate, Ts: timeutil.NowUTC()}
			j.Snaps.Set("funding:drift:"+j.Market, tick, 300*time.Second)
		}
	}

	if len(errs) == 2 {
		return fmt.Errorf("drift_ingest: both fetches failed: %v, %v", errs[0], errs[1])
	}
	return nil
}
