package storage

import (
	"context"

	"audio-digest/internal/domain"
)

// Store is the persistence collaborator the pipeline hands completed
// summaries to. The pipeline does not retain a copy after Save returns.
// Delete removes a stored summary and its renderings; it exists for the
// cancellation race where a job is cancelled after Save already ran, so
// a failed job never exposes results.
type Store interface {
	Save(ctx context.Context, summary *domain.Summary) error
	Get(ctx context.Context, jobID string) (*domain.Summary, error)
	Delete(ctx context.Context, jobID string) error
}
