package summarizer

import (
	"context"

	"audio-digest/internal/domain"
)

// Request carries a transcript and its context to the language model.
type Request struct {
	Transcript      string
	Detail          domain.DetailLevel
	Timestamps      bool
	Language        string
	Title           string
	DurationSeconds float64
}

// Summarizer turns a transcript into a structured summary.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (*domain.SummarizationResult, error)
}
