package pipeline

import (
	"context"
	"fmt"
	"time"

	"audio-digest/internal/logger"
)

// runStage wraps one stage call with timing and error capture. Stage
// failures come back wrapped with the stage name so the job record
// carries a readable message.
func runStage[T any](ctx context.Context, log logger.Logger, jobID, name string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()

	out, err := fn(ctx)
	elapsed := time.Since(start).Round(time.Millisecond)

	if err != nil {
		log.Error(ctx, "Stage %s failed for job %s after %s: %v", name, jobID, elapsed, err)
		var zero T
		return zero, fmt.Errorf("%s: %w", name, err)
	}

	log.Info(ctx, "Stage %s done for job %s in %s", name, jobID, elapsed)
	return out, nil
}
