package transcriber

import (
	"context"

	"audio-digest/internal/domain"
)

// Request carries one audio file to the speech-to-text service.
type Request struct {
	AudioPath string
	// Language is an optional ISO-639-1 hint; also used as the fallback
	// when the service does not report a detected language.
	Language string
	// Prompt is an optional disambiguation hint (domain vocabulary).
	Prompt string
}

// Transcriber converts audio into text plus timed segments.
type Transcriber interface {
	Transcribe(ctx context.Context, req Request) (*domain.TranscriptionResult, error)
}
