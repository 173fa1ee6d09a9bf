package pipeline

import (
	"context"
	"errors"
)

// ErrCancelled aborts the remaining stages of a job whose record was
// cancelled while it was processing. The stage that was running when the
// cancellation arrived completes on its own; its result is discarded.
var ErrCancelled = errors.New("job cancelled")

// Run is the single-worker drain loop. Jobs execute strictly one at a
// time in queue order; one job's failure never stops the loop.
func (p *implPipeline) Run(ctx context.Context) error {
	p.logger.Info(ctx, "Pipeline worker started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info(ctx, "Pipeline worker stopped")
			return ctx.Err()

		case jobID := <-p.registry.Dequeue():
			// A job cancelled while queued is already failed; its queue
			// entry is skipped here.
			if !p.registry.MarkProcessing(jobID) {
				p.logger.Debug(ctx, "Skipping dequeued job %s: no longer queued", jobID)
				continue
			}

			if err := p.process(ctx, jobID); err != nil {
				if errors.Is(err, ErrCancelled) {
					p.logger.Info(ctx, "Job %s cancelled mid-flight, result discarded", jobID)
					continue
				}

				p.logger.Error(ctx, "Job %s failed: %v", jobID, err)
				if markErr := p.registry.MarkFailed(jobID, err.Error()); markErr != nil {
					p.logger.Debug(ctx, "Could not mark job %s failed: %v", jobID, markErr)
				}
			}
		}
	}
}
