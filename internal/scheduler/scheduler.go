package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then once per interval until ctx is done.
// Runs never overlap; a tick that fires while a run is in progress is dropped.
// Task errors are logged and do not stop the loop.
func Every(ctx context.Context, interval time.Duration, name string, task Task, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("task", name))

	runOnce := func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Error("run failed", zap.Error(err))
			return
		}
		log.Debug("run ok", zap.Duration("took", time.Since(start)))
	}

	runOnce()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			runOnce()
		}
	}
}
