package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// logrusLogger adapts logrus to cron.Logger.
type logrusLogger struct {
	entry *logrus.Entry
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}

func (l logrusLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l logrusLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(fields(keysAndValues)).Error(msg)
}

// NewScheduler builds a scheduler with every registered job added. Jobs
// that are still running when their next tick fires are skipped.
func NewScheduler(ctx context.Context) (*cron.Cron, error) {
	logger := logrusLogger{entry: logrus.WithField("component", "cron")}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))
	for _, name := range Names() {
		job := Jobs()[name]
		_, err := c.AddFunc(job.Schedule, func() {
			start := time.Now()
			entry := logger.entry.WithField("job", job.Name)
			if err := job.Run(ctx); err != nil {
				entry.WithError(err).Error("cron job failed")
				return
			}
			entry.WithField("took_ms", time.Since(start).Milliseconds()).Info("cron job finished")
		})
		if err != nil {
			return nil, fmt.Errorf("register job %s: %w", job.Name, err)
		}
	}
	return c, nil
}

// StartCron builds and starts the scheduler.
func StartCron(ctx context.Context) (*cron.Cron, error) {
	c, err := NewScheduler(ctx)
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
