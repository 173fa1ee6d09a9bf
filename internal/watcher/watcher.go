package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"audio-digest/internal/logger"
)

// settleDelay gives the producer time to finish writing a dropped file
// before it is submitted.
const settleDelay = 500 * time.Millisecond

var audioExtensions = []string{".mp3", ".wav", ".m4a", ".flac", ".ogg", ".aac"}

type implWatcher struct {
	inputDir string
	submit   SubmitFunc
	logger   logger.Logger
	watcher  *fsnotify.Watcher
}

// Start begins monitoring the drop directory for new audio files.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Drop-directory watcher started. Monitoring: %s", w.inputDir)
	w.logger.Info(ctx, "Supported formats: %s", strings.Join(audioExtensions, ", "))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Drop-directory watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isAudioFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-audio file: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New audio file detected: %s", event.Name)
			time.Sleep(settleDelay)

			if err := w.submit(ctx, event.Name); err != nil {
				w.logger.Error(ctx, "Failed to submit %s: %v", event.Name, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// Stop closes the underlying file watcher.
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func isAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range audioExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}
