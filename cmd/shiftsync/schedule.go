package main

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	appLog "shiftsync/internal/log"
)

// cronLogger adapts the app logger to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	appLog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	appLog.Error("cron: "+msg, err, keysAndValues...)
}

// newScheduler registers job on a standard 5-field cron expression. A run that is
// still going when the next tick fires makes that tick a no-op.
func newScheduler(ctx context.Context, schedule string, job func(context.Context) error) (*cron.Cron, error) {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	_, err := c.AddFunc(schedule, func() {
		if err := job(ctx); err != nil {
			appLog.Error("scheduled sync failed", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	return c, nil
}

// runScheduled runs job on schedule until ctx is canceled, then waits for an
// in-flight run to finish.
func runScheduled(ctx context.Context, schedule string, job func(context.Context) error) error {
	c, err := newScheduler(ctx, schedule, job)
	if err != nil {
		return err
	}

	appLog.Info("scheduled sync enabled", "refresh", schedule)
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("shiftsync exiting")
	return nil
}
