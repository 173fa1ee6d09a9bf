package executor

import "context"

// Executor runs external media tools (ffmpeg, ffprobe).
type Executor interface {
	// Execute runs a command and returns its stdout. Stderr is folded
	// into the error on failure.
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// Capture runs a command and returns stdout and stderr separately,
	// even when the command exits non-zero. Some tools report through
	// stderr on failure exits (ffmpeg -i with no output file).
	Capture(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}
