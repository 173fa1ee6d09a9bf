package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"audio-digest/internal/config"
	"audio-digest/internal/jobs"
	"audio-digest/internal/logger"
	"audio-digest/internal/pipeline"
	"audio-digest/internal/storage"
	"audio-digest/internal/summarizer"
	"audio-digest/internal/transcriber"
	"audio-digest/internal/watcher"
	"audio-digest/pkg/executor"
)

// watchOwner is the owner recorded on jobs submitted through the
// drop directory.
const watchOwner = "local"

func main() {
	ctx := context.Background()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Audio Episode Summarization Pipeline")
	log.Info(ctx, "========================================")
	log.Info(ctx, "Transcription service: %s", cfg.Whisper.URL)
	log.Info(ctx, "Summarization model: %s (%d API keys)", cfg.Gemini.Model, len(cfg.Gemini.APIKeys))
	log.Info(ctx, "Remote fetch enabled: %v", cfg.Pipeline.AllowRemote)

	if err := ensureDirectories(cfg); err != nil {
		log.Error(ctx, "Failed to create directories: %v", err)
		os.Exit(1)
	}

	// Clients are constructed once here and injected; nothing below
	// creates its own service wrappers.
	exec := executor.New()
	tr := transcriber.New(cfg.Whisper.URL, cfg.Whisper.Model,
		time.Duration(cfg.Whisper.TimeoutSeconds)*time.Second, log)
	sum := summarizer.New(cfg.Gemini.Model, cfg.Gemini.APIKeys, log)

	store, err := storage.NewFileStore(cfg.Paths.Output, log)
	if err != nil {
		log.Error(ctx, "Failed to create store: %v", err)
		os.Exit(1)
	}

	registry := jobs.NewRegistry(cfg.Pipeline.QueueSize)
	service := jobs.NewService(registry)
	pipe := pipeline.New(cfg, exec, registry, tr, sum, store, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 2)

	go func() {
		if err := pipe.Run(ctx); err != nil && err != context.Canceled {
			errChan <- err
		}
	}()

	if cfg.Paths.Watch != "" {
		w, err := watcher.New(cfg.Paths.Watch, submitDropped(service, log), log)
		if err != nil {
			log.Error(ctx, "Failed to create watcher: %v", err)
			os.Exit(1)
		}
		defer w.Stop()

		go func() {
			if err := w.Start(ctx); err != nil && err != context.Canceled {
				errChan <- err
			}
		}()

		log.Info(ctx, "Watching drop directory: %s", cfg.Paths.Watch)
	}

	log.Info(ctx, "Pipeline is ready. Press Ctrl+C to stop")

	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		log.Error(ctx, "Fatal error: %v", err)
	}

	log.Info(ctx, "Shutting down gracefully...")
	cancel()

	log.Info(ctx, "Pipeline stopped")
}

// submitDropped adapts the job service as the watcher's submit callback.
func submitDropped(service *jobs.Service, log logger.Logger) watcher.SubmitFunc {
	return func(ctx context.Context, filePath string) error {
		resp, err := service.Submit(watchOwner, jobs.SubmitRequest{
			Type: "file",
			File: filePath,
		})
		if err != nil {
			return err
		}

		log.Info(ctx, "Submitted job %s for %s (estimated %ds)", resp.JobID, filePath, resp.EstimatedTime)
		return nil
	}
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Uploads,
		cfg.Paths.Temp,
		cfg.Paths.Output,
	}
	if cfg.Paths.Watch != "" {
		dirs = append(dirs, cfg.Paths.Watch)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
