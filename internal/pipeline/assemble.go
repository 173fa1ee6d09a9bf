package pipeline

import (
	"math"
	"strings"
	"time"

	"audio-digest/internal/domain"
)

const (
	maxTitleLen   = 80
	titleEllipsis = "..."
)

// assemble merges the stage outputs with job bookkeeping into the final
// Summary. Ownership of the returned value transfers to the store; the
// pipeline keeps no reference after handoff.
func assemble(job domain.Job, meta domain.AudioMetadata, transcript *domain.TranscriptionResult, summary *domain.SummarizationResult, started time.Time) *domain.Summary {
	final := *summary
	if !job.Options.Timestamps {
		// Chapters are only ever part of the artifact when timestamps
		// were requested, regardless of what the service returned.
		final.Chapters = nil
	}

	return &domain.Summary{
		JobID:             job.ID,
		OwnerID:           job.OwnerID,
		Title:             generateTitle(final.Overview),
		Transcription:     *transcript,
		Summarization:     final,
		Metadata:          meta,
		ProcessingSeconds: time.Since(started).Seconds(),
		WordCount:         len(strings.Fields(transcript.Text)),
		Confidence:        math.Min(transcript.Confidence, final.Confidence),
		GeneratedAt:       time.Now(),
	}
}

// generateTitle takes the first sentence of the overview, truncated to a
// bounded length with an ellipsis marker when cut.
func generateTitle(overview string) string {
	sentence := strings.TrimSpace(overview)
	if sentence == "" {
		return "Untitled episode"
	}

	if idx := strings.IndexAny(sentence, ".!?"); idx >= 0 {
		sentence = sentence[:idx+1]
	}

	runes := []rune(sentence)
	if len(runes) > maxTitleLen {
		sentence = strings.TrimSpace(string(runes[:maxTitleLen])) + titleEllipsis
	}
	return sentence
}
