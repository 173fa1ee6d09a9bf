package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
)

// normalize transcodes the audio to the canonical waveform the
// transcription service expects: mono, fixed sample rate, 16-bit PCM,
// optionally loudness-normalized. Tool failure falls back to the
// original file instead of failing the job.
func (p *implPipeline) normalize(ctx context.Context, jobID, srcPath string) (string, bool) {
	if err := os.MkdirAll(p.cfg.Paths.Temp, 0o755); err != nil {
		p.logger.Warn(ctx, "Cannot create temp dir, using original audio: %v", err)
		return srcPath, false
	}

	outPath := filepath.Join(p.cfg.Paths.Temp, jobID+"_normalized.wav")

	args := []string{
		"-i", srcPath,
		"-vn",
		"-ar", strconv.Itoa(p.cfg.FFmpeg.SampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
	}
	if p.cfg.FFmpeg.Loudnorm {
		args = append(args, "-af", "loudnorm")
	}
	args = append(args, "-y", outPath)

	if _, err := p.executor.Execute(ctx, p.cfg.FFmpeg.Binary, args...); err != nil {
		p.logger.Warn(ctx, "Normalization failed for job %s, using original audio: %v", jobID, err)
		os.Remove(outPath)
		return srcPath, false
	}

	p.logger.Debug(ctx, "Normalized audio for job %s: %s (mono, %d Hz)",
		jobID, outPath, p.cfg.FFmpeg.SampleRate)
	return outPath, true
}
