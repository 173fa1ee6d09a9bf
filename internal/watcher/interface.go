package watcher

import "context"

// Watcher monitors the drop directory for new audio files.
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// SubmitFunc submits one detected audio file as a job. Submission only
// enqueues; the pipeline worker picks the job up later.
type SubmitFunc func(ctx context.Context, filePath string) error
