// Package retention prunes old snapshots on a schedule.
package retention

import (
	"context"
	"time"

	"github.com/dmitrijs2005/wordmaster/internal/logging"
	"github.com/go-co-op/gocron"
)

// Pruner removes every snapshot but the newest keep ones.
type Pruner interface {
	Prune(ctx context.Context, keep int) (int, error)
}

// Job runs Pruner.Prune every interval. Runs never overlap.
type Job struct {
	scheduler *gocron.Scheduler
	pruner    Pruner
	keep      int
	interval  time.Duration
	timeout   time.Duration
	log       logging.Logger
}

func New(p Pruner, keep int, interval time.Duration, log logging.Logger) *Job {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Job{
		scheduler: s,
		pruner:    p,
		keep:      keep,
		interval:  interval,
		timeout:   time.Minute,
		log:       log.With("module", "retention"),
	}
}

// Start schedules the job, with a first run right away, and returns
// without blocking.
func (j *Job) Start() error {
	if _, err := j.scheduler.Every(j.interval).Do(j.run); err != nil {
		return err
	}
	j.scheduler.StartAsync()
	j.log.Info(context.Background(), "retention scheduled", "keep", j.keep, "interval", j.interval.String())
	return nil
}

// Stop waits for a running prune to finish and cancels future runs.
func (j *Job) Stop() {
	j.scheduler.Stop()
}

func (j *Job) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.pruner.Prune(ctx, j.keep)
	if err != nil {
		j.log.Error(ctx, "retention run failed", "error", err)
		return
	}
	j.log.Debug(ctx, "retention run finished", "removed", n)
}
