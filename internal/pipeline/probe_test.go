package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"audio-digest/internal/config"
	"audio-digest/internal/jobs"
	"audio-digest/internal/logger"
)

func newProbePipeline(t *testing.T, exec *fakeExecutor) *implPipeline {
	t.Helper()

	cfg := &config.Config{
		Whisper: config.WhisperConfig{URL: "http://localhost:9000"},
		Gemini:  config.GeminiConfig{Model: "gemini-2.5-flash"},
		Paths: config.PathsConfig{
			Uploads: t.TempDir(),
			Temp:    t.TempDir(),
			Output:  t.TempDir(),
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	return New(cfg, exec, jobs.NewRegistry(1), nil, nil, nil, logger.New("error", "text")).(*implPipeline)
}

func writeProbeAudio(t *testing.T, p *implPipeline) string {
	t.Helper()
	path := filepath.Join(p.cfg.Paths.Uploads, "episode.mp3")
	if err := os.WriteFile(path, []byte("0123456789"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProbeJSON(t *testing.T) {
	p := newProbePipeline(t, &fakeExecutor{
		probeJSON: `{"format": {"format_name": "mp3", "duration": "123.45", "size": "2048"}}`,
	})
	path := writeProbeAudio(t, p)

	meta, err := p.probe(context.Background(), path)
	if err != nil {
		t.Fatalf("probe() error = %v", err)
	}

	if meta.Format != "mp3" {
		t.Errorf("Format = %q", meta.Format)
	}
	if meta.DurationSeconds != 123.45 {
		t.Errorf("DurationSeconds = %v", meta.DurationSeconds)
	}
	if meta.SizeBytes != 2048 {
		t.Errorf("SizeBytes = %d", meta.SizeBytes)
	}
}

func TestProbeBannerFallback(t *testing.T) {
	p := newProbePipeline(t, &fakeExecutor{
		probeErr:     errors.New("ffprobe not installed"),
		bannerStderr: "Input #0, mp3, from 'episode.mp3':\n  Duration: 01:02:03.50, start: 0.000000, bitrate: 128 kb/s",
	})
	path := writeProbeAudio(t, p)

	meta, err := p.probe(context.Background(), path)
	if err != nil {
		t.Fatalf("probe() error = %v", err)
	}

	want := 1*3600 + 2*60 + 3.5
	if meta.DurationSeconds != want {
		t.Errorf("DurationSeconds = %v, want %v", meta.DurationSeconds, want)
	}
	// size comes from the file itself when ffprobe is unavailable
	if meta.SizeBytes != 10 {
		t.Errorf("SizeBytes = %d, want 10", meta.SizeBytes)
	}
}

func TestProbeJSONWithoutDurationUsesBanner(t *testing.T) {
	p := newProbePipeline(t, &fakeExecutor{
		probeJSON:    `{"format": {"format_name": "wav"}}`,
		bannerStderr: "Duration: 00:00:42.00, bitrate: 256 kb/s",
	})
	path := writeProbeAudio(t, p)

	meta, err := p.probe(context.Background(), path)
	if err != nil {
		t.Fatalf("probe() error = %v", err)
	}
	if meta.DurationSeconds != 42 {
		t.Errorf("DurationSeconds = %v, want 42", meta.DurationSeconds)
	}
	if meta.Format != "wav" {
		t.Errorf("Format = %q, want wav", meta.Format)
	}
}

func TestProbeBothPathsFail(t *testing.T) {
	p := newProbePipeline(t, &fakeExecutor{
		probeErr:     errors.New("ffprobe not installed"),
		bannerStderr: "episode.mp3: Invalid data found when processing input",
	})
	path := writeProbeAudio(t, p)

	if _, err := p.probe(context.Background(), path); err == nil {
		t.Fatal("probe() should fail when no duration can be extracted")
	}
}
