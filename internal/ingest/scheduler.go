// Package ingest runs the desk's fixed set of market-data and
// macro-signal jobs: six fixed-interval fetchers plus one
// connection-holding WebSocket job, each isolated so one job's failure
// never stops the others.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one schedulable unit of ingest work. Run is called on its own
// schedule and must not block past its own tick; long-lived jobs (the
// WebSocket ingestor) manage their own internal loop instead of being
// invoked repeatedly.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler drives a fixed roster of Jobs. Calendar-cadence jobs (hours,
// multi-minute) run on a cron expression; sub-minute jobs run on a plain
// ticker, matching the split between "scheduled occasionally" and
// "polled continuously" in the original ingest scheduler.
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger

	mu        sync.Mutex
	tickerJobs []tickerJob
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

type tickerJob struct {
	job      Job
	interval time.Duration
}

// NewScheduler creates an empty scheduler. Use AddCronJob/AddTickerJob to
// register work, then Start to begin running it.
func NewScheduler(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger.With().Str("component", "ingest.scheduler").Logger(),
	}
}

// AddCronJob registers job on a cron spec, e.g. "0 */6 * * *" for every 6
// hours. Used for WITS (6h) and GDELT (5m).
func (s *Scheduler) AddCronJob(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.runOnce(job)
	})
	return err
}

// AddTickerJob registers job to run every interval. Used for the 30s/60s
// price/funding fetchers (Kraken, CoinGecko, Pyth, Drift).
func (s *Scheduler) AddTickerJob(interval time.Duration, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickerJobs = append(s.tickerJobs, tickerJob{job: job, interval: interval})
}

// Start begins running every registered job until ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.cron.Start()

	s.mu.Lock()
	jobs := append([]tickerJob{}, s.tickerJobs...)
	s.mu.Unlock()

	for _, tj := range jobs {
		tj := tj
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.runTicker(ctx, tj)
		}()
	}
}

// Stop halts the cron scheduler and every ticker loop, waiting for
// in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) runTicker(ctx context.Context, tj tickerJob) {
	ticker := time.NewTicker(tj.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(tj.job)
		}
	}
}

// runOnce executes job and recovers/logs any panic or error so a single
// failing ingestor can never take down the scheduler.
func (s *Scheduler) runOnce(job Job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("job", job.Name()).Msg("ingest job panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := job.Run(ctx); err != nil {
		s.logger.Error().Err(err).Str("job", job.Name()).Msg("ingest job failed")
		return
	}
	s.logger.Debug().Str("job", job.Name()).Msg("ingest job completed")
}
