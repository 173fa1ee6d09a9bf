package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"audio-digest/internal/domain"
	"audio-digest/internal/logger"
)

// ErrSummaryNotFound is returned when no summary exists for a job id.
var ErrSummaryNotFound = errors.New("summary not found")

type implStore struct {
	mu     sync.Mutex
	dir    string
	logger logger.Logger
}

// NewFileStore creates a Store writing one JSON record per summary under
// dir, next to the rendered markdown, text and docx exports.
func NewFileStore(dir string, log logger.Logger) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	return &implStore{dir: dir, logger: log}, nil
}

// Save persists the structured summary and writes the export renderings.
// A rendering failure does not fail the save; the JSON record is the
// source of truth.
func (s *implStore) Save(ctx context.Context, summary *domain.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	jsonPath := s.path(summary.JobID, ".json")
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if err := os.WriteFile(s.path(summary.JobID, ".md"), []byte(renderOutline(summary)), 0o644); err != nil {
		s.logger.Warn(ctx, "Failed to write outline rendering for %s: %v", summary.JobID, err)
	}
	if err := os.WriteFile(s.path(summary.JobID, ".txt"), []byte(renderHeadings(summary)), 0o644); err != nil {
		s.logger.Warn(ctx, "Failed to write heading rendering for %s: %v", summary.JobID, err)
	}
	if err := summaryToDocx(summary, s.path(summary.JobID, ".docx")); err != nil {
		s.logger.Warn(ctx, "Failed to write docx rendering for %s: %v", summary.JobID, err)
	}

	s.logger.Info(ctx, "Stored summary %s (%s)", summary.JobID, jsonPath)
	return nil
}

// Get loads the stored summary for a job.
func (s *implStore) Get(ctx context.Context, jobID string) (*domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(jobID, ".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}

	var summary domain.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &summary, nil
}

// Delete removes the stored summary and every rendering for a job.
// Deleting a summary that was never stored is not an error.
func (s *implStore) Delete(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(jobID, ".json")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove summary: %w", err)
	}

	for _, ext := range []string{".md", ".txt", ".docx"} {
		if err := os.Remove(s.path(jobID, ext)); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn(ctx, "Failed to remove %s rendering for %s: %v", ext, jobID, err)
		}
	}

	s.logger.Info(ctx, "Removed stored summary %s", jobID)
	return nil
}

func (s *implStore) path(jobID, ext string) string {
	return filepath.Join(s.dir, jobID+ext)
}
