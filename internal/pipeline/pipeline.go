package pipeline

import (
	"context"
	"fmt"
	"time"

	"audio-digest/internal/domain"
	"audio-digest/internal/summarizer"
	"audio-digest/internal/transcriber"
)

// Progress milestones written after each stage completes.
const (
	progressAcquiredFile = 10
	progressAcquiredURL  = 20
	progressProbed       = 30
	progressNormalized   = 50
	progressTranscribed  = 70
	progressSummarized   = 90
)

// process runs one job through every stage in order. Temp files created
// along the way are removed on every exit path.
func (p *implPipeline) process(ctx context.Context, jobID string) error {
	job, ok := p.registry.Get(jobID)
	if !ok {
		return fmt.Errorf("job %s disappeared from registry", jobID)
	}

	started := time.Now()
	p.logger.Info(ctx, "Processing job %s (source=%s, detail=%s)", job.ID, job.Source, job.Options.Detail)

	var tempFiles []string
	defer func() { p.cleanupTemp(ctx, tempFiles) }()

	// Stage 1: acquisition.
	acquired, err := runStage(ctx, p.logger, jobID, "acquire", func(ctx context.Context) (acquireResult, error) {
		return p.acquire(ctx, job)
	})
	if err != nil {
		return err
	}
	if acquired.temp {
		tempFiles = append(tempFiles, acquired.path)
	}
	if err := p.advance(jobID, acquireProgress(job.Source)); err != nil {
		return err
	}

	// Stage 2: metadata probe.
	meta, err := runStage(ctx, p.logger, jobID, "probe", func(ctx context.Context) (domain.AudioMetadata, error) {
		return p.probe(ctx, acquired.path)
	})
	if err != nil {
		return err
	}
	if err := p.advance(jobID, progressProbed); err != nil {
		return err
	}

	// Stage 3: normalization, soft-degrade on tool failure.
	audioPath, normTemp := p.normalize(ctx, jobID, acquired.path)
	if normTemp {
		tempFiles = append(tempFiles, audioPath)
	}
	if err := p.advance(jobID, progressNormalized); err != nil {
		return err
	}

	// Stage 4: transcription.
	transcript, err := runStage(ctx, p.logger, jobID, "transcribe", func(ctx context.Context) (*domain.TranscriptionResult, error) {
		return p.transcriber.Transcribe(ctx, transcriber.Request{
			AudioPath: audioPath,
			Language:  job.Options.Language,
			Prompt:    p.cfg.Whisper.Prompt,
		})
	})
	if err != nil {
		return err
	}
	if err := p.advance(jobID, progressTranscribed); err != nil {
		return err
	}

	// Stage 5: summarization.
	summary, err := runStage(ctx, p.logger, jobID, "summarize", func(ctx context.Context) (*domain.SummarizationResult, error) {
		return p.summarizer.Summarize(ctx, summarizer.Request{
			Transcript:      transcript.Text,
			Detail:          job.Options.Detail,
			Timestamps:      job.Options.Timestamps,
			Language:        transcript.Language,
			Title:           job.SourceRef,
			DurationSeconds: meta.DurationSeconds,
		})
	})
	if err != nil {
		return err
	}
	if err := p.advance(jobID, progressSummarized); err != nil {
		return err
	}

	// Stage 6: assembly and persistence handoff.
	final := assemble(job, meta, transcript, summary, started)
	_, err = runStage(ctx, p.logger, jobID, "persist", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, p.store.Save(ctx, final)
	})
	if err != nil {
		return err
	}

	if err := p.registry.MarkCompleted(jobID); err != nil {
		// Cancelled during the persist handoff. The record stays failed
		// and the already-saved summary is removed; a failed job must
		// not expose results.
		if delErr := p.store.Delete(ctx, jobID); delErr != nil {
			p.logger.Warn(ctx, "Failed to remove summary for cancelled job %s: %v", jobID, delErr)
		}
		return ErrCancelled
	}

	p.logger.Info(ctx, "Job %s completed in %s (%d words, confidence %.2f)",
		jobID, time.Since(started).Round(time.Millisecond), final.WordCount, final.Confidence)
	return nil
}

// advance writes a progress milestone, aborting between stages when the
// job was cancelled while a stage was running.
func (p *implPipeline) advance(jobID string, progress int) error {
	job, ok := p.registry.Get(jobID)
	if !ok {
		return fmt.Errorf("job %s disappeared from registry", jobID)
	}
	if job.Status != domain.JobStatusProcessing {
		return ErrCancelled
	}

	return p.registry.SetProgress(jobID, progress)
}

func acquireProgress(source domain.SourceKind) int {
	if source == domain.SourceURL {
		return progressAcquiredURL
	}
	return progressAcquiredFile
}
