package pipeline

import (
	"context"
	"errors"
	"os"
)

// cleanupTemp removes every temporary file a job created. It runs on
// all exit paths, success, staged failure and cancellation alike, so a
// job never leaks disk.
func (p *implPipeline) cleanupTemp(ctx context.Context, paths []string) {
	for _, path := range paths {
		err := os.Remove(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", path, err)
			continue
		}
		p.logger.Debug(ctx, "Cleaned up temp file: %s", path)
	}
}
