// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/invoice-converter/pkg/metrics"
	"github.com/FACorreiaa/invoice-converter/pkg/storage"
)

// DefaultSweepSchedule runs the spool sweep every fifteen minutes.
const DefaultSweepSchedule = "*/15 * * * *"

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	spool    storage.Storage
	maxAge   time.Duration
	schedule string
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewScheduler creates a new job scheduler that removes spooled uploads older than maxAge.
func NewScheduler(spool storage.Storage, maxAge time.Duration, m *metrics.Metrics, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		spool:    spool,
		maxAge:   maxAge,
		schedule: DefaultSweepSchedule,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.sweepSpool)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.Duration("spool_max_age", s.maxAge),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the spool sweep.
func (s *Scheduler) RunNow() {
	go s.sweepSpool()
}

// sweepSpool removes uploads left behind by interrupted requests.
func (s *Scheduler) sweepSpool() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	removed, err := s.spool.Sweep(ctx, s.now().Add(-s.maxAge))
	s.metrics.SpoolSwept(removed)
	if err != nil {
		s.logger.Error("failed to sweep spool",
			slog.Int("removed", removed),
			slog.Any("error", err),
		)
		return
	}

	if removed > 0 {
		s.logger.Info("spool sweep completed", slog.Int("removed", removed))
	}
}
