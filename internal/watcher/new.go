package watcher

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	"audio-digest/internal/logger"
)

// New creates a Watcher that submits audio files dropped into inputDir.
func New(inputDir string, submit SubmitFunc, log logger.Logger) (Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fsWatcher.Add(inputDir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		inputDir: inputDir,
		submit:   submit,
		logger:   log,
		watcher:  fsWatcher,
	}, nil
}
