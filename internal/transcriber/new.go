package transcriber

import (
	"net/http"
	"time"

	"audio-digest/internal/logger"
)

type implTranscriber struct {
	url        string
	model      string
	logger     logger.Logger
	httpClient *http.Client
}

// New creates a Transcriber backed by a Whisper-compatible HTTP service.
func New(url, model string, timeout time.Duration, log logger.Logger) Transcriber {
	return &implTranscriber{
		url:    url,
		model:  model,
		logger: log,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}
