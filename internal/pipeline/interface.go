package pipeline

import "context"

// Pipeline drives queued jobs through every processing stage.
type Pipeline interface {
	// Run drains the job queue until the context is cancelled. It is the
	// single worker: at most one job is processing at any instant.
	Run(ctx context.Context) error
}
