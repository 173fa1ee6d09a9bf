package pipeline

import (
	"net/http"
	"time"

	"audio-digest/internal/config"
	"audio-digest/internal/jobs"
	"audio-digest/internal/logger"
	"audio-digest/internal/storage"
	"audio-digest/internal/summarizer"
	"audio-digest/internal/transcriber"
	"audio-digest/pkg/executor"
)

type implPipeline struct {
	cfg         *config.Config
	executor    executor.Executor
	registry    *jobs.Registry
	transcriber transcriber.Transcriber
	summarizer  summarizer.Summarizer
	store       storage.Store
	logger      logger.Logger
	httpClient  *http.Client
}

// New creates the pipeline with its collaborators injected. The
// transcription and summarization clients are constructed once at
// process start and passed in, never created per job.
func New(
	cfg *config.Config,
	exec executor.Executor,
	registry *jobs.Registry,
	tr transcriber.Transcriber,
	sum summarizer.Summarizer,
	store storage.Store,
	log logger.Logger,
) Pipeline {
	return &implPipeline{
		cfg:         cfg,
		executor:    exec,
		registry:    registry,
		transcriber: tr,
		summarizer:  sum,
		store:       store,
		logger:      log,
		// A stalled remote download must not block the worker forever;
		// the client timeout bounds the whole fetch.
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Pipeline.DownloadTimeoutSeconds) * time.Second,
		},
	}
}
