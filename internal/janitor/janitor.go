package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kipusaplus/kipus-api/internal/metrics"
	"github.com/robfig/cron/v3"
)

// Purger deletes reset codes that are no longer usable.
type Purger interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// Janitor purges stale password-reset codes on a cron schedule.
type Janitor struct {
	codes     Purger
	spec      string
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func New(codes Purger, spec string, retention time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		codes:     codes,
		spec:      spec,
		retention: retention,
		logger:    logger.With("component", "janitor"),
		now:       time.Now,
	}
}

// Start blocks until ctx is cancelled. Runs in progress are allowed to finish.
func (j *Janitor) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(j.spec, func() { j.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("janitor schedule %q: %w", j.spec, err)
	}

	c.Start()
	j.logger.Info("janitor started", "schedule", j.spec, "retention", j.retention)

	<-ctx.Done()
	<-c.Stop().Done()
	j.logger.Info("janitor shut down")
	return nil
}

// RunOnce deletes codes that expired or were consumed more than the retention
// period ago and returns how many rows went.
func (j *Janitor) RunOnce(ctx context.Context) int64 {
	start := time.Now()
	defer func() { metrics.JanitorRunDuration.Observe(time.Since(start).Seconds()) }()

	cutoff := j.now().Add(-j.retention)
	n, err := j.codes.Purge(ctx, cutoff)
	if err != nil {
		j.logger.ErrorContext(ctx, "purge reset codes", "error", err)
		return 0
	}
	if n > 0 {
		metrics.ResetCodesPurgedTotal.Add(float64(n))
		j.logger.InfoContext(ctx, "purged reset codes", "count", n, "cutoff", cutoff)
	}
	return n
}
