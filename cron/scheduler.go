package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartCron schedules every registered job and starts the scheduler. A
// schedule in overrides replaces the registered one; an empty override keeps it.
func StartCron(overrides map[string]string, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(zap.NewStdLog(logger.Named("cron")))))
	for name, j := range Jobs() {
		sched := j.Schedule
		if o := overrides[name]; o != "" {
			sched = o
		}
		if _, err := c.AddFunc(sched, func() { RunJob(context.Background(), name, j, logger) }); err != nil {
			return nil, fmt.Errorf("cron: register job %s (%q): %w", name, sched, err)
		}
		logger.Info("cron job scheduled", zap.String("job", name), zap.String("schedule", sched))
	}
	c.Start()
	return c, nil
}

// RunJob runs j once, logging its outcome.
func RunJob(ctx context.Context, name string, j Job, logger *zap.Logger) error {
	start := time.Now()
	err := j.Run(ctx)
	if err != nil {
		logger.Error("cron job failed", zap.String("job", name), zap.Duration("took", time.Since(start)), zap.Error(err))
		return err
	}
	logger.Info("cron job done", zap.String("job", name), zap.Duration("took", time.Since(start)))
	return nil
}
