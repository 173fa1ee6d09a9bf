package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"audio-digest/internal/config"
	"audio-digest/internal/domain"
	"audio-digest/internal/jobs"
	"audio-digest/internal/logger"
	"audio-digest/internal/summarizer"
	"audio-digest/internal/transcriber"
)

// fakeExecutor scripts ffprobe/ffmpeg behavior. A successful ffmpeg run
// writes its output file so cleanup behavior is observable.
type fakeExecutor struct {
	probeJSON    string
	probeErr     error
	ffmpegErr    error
	bannerStderr string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	if name == "ffprobe" {
		if f.probeErr != nil {
			return "", f.probeErr
		}
		return f.probeJSON, nil
	}

	if f.ffmpegErr != nil {
		return "", f.ffmpegErr
	}
	outPath := args[len(args)-1]
	if err := os.WriteFile(outPath, []byte("normalized"), 0644); err != nil {
		return "", err
	}
	return "", nil
}

func (f *fakeExecutor) Capture(ctx context.Context, name string, args ...string) (string, string, error) {
	return "", f.bannerStderr, errors.New("exit status 1")
}

type fakeTranscriber struct {
	result    *domain.TranscriptionResult
	err       error
	gotPath   string
	onCall    func()
	callCount int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, req transcriber.Request) (*domain.TranscriptionResult, error) {
	f.callCount++
	f.gotPath = req.AudioPath
	if f.onCall != nil {
		f.onCall()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeSummarizer struct {
	result *domain.SummarizationResult
	err    error
	gotReq summarizer.Request
}

func (f *fakeSummarizer) Summarize(ctx context.Context, req summarizer.Request) (*domain.SummarizationResult, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeStore struct {
	saved  *domain.Summary
	err    error
	onSave func()
}

func (f *fakeStore) Save(ctx context.Context, summary *domain.Summary) error {
	if f.err != nil {
		return f.err
	}
	f.saved = summary
	if f.onSave != nil {
		f.onSave()
	}
	return nil
}

func (f *fakeStore) Get(ctx context.Context, jobID string) (*domain.Summary, error) {
	if f.saved == nil || f.saved.JobID != jobID {
		return nil, errors.New("not found")
	}
	return f.saved, nil
}

func (f *fakeStore) Delete(ctx context.Context, jobID string) error {
	if f.saved != nil && f.saved.JobID == jobID {
		f.saved = nil
	}
	return nil
}

type testEnv struct {
	pipeline    *implPipeline
	registry    *jobs.Registry
	cfg         *config.Config
	executor    *fakeExecutor
	transcriber *fakeTranscriber
	summarizer  *fakeSummarizer
	store       *fakeStore
}

const probeJSON = `{"format": {"format_name": "mp3", "duration": "90.5", "size": "1024"}}`

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	base := t.TempDir()
	cfg := &config.Config{
		Whisper: config.WhisperConfig{URL: "http://localhost:9000"},
		Gemini:  config.GeminiConfig{Model: "gemini-2.5-flash"},
		Paths: config.PathsConfig{
			Uploads: filepath.Join(base, "uploads"),
			Temp:    filepath.Join(base, "temp"),
			Output:  filepath.Join(base, "output"),
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{cfg.Paths.Uploads, cfg.Paths.Temp, cfg.Paths.Output} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
	}

	env := &testEnv{
		registry: jobs.NewRegistry(8),
		cfg:      cfg,
		executor: &fakeExecutor{probeJSON: probeJSON},
		transcriber: &fakeTranscriber{
			result: &domain.TranscriptionResult{
				Text:       "one two three four five",
				Language:   "en",
				Duration:   90.5,
				Segments:   []domain.TranscriptSegment{{Start: 0, End: 90.5, Text: "one two three four five", Confidence: 0.95}},
				Confidence: 0.95,
			},
		},
		summarizer: &fakeSummarizer{
			result: &domain.SummarizationResult{
				Overview:    "A short episode about counting. Numbers are discussed at length.",
				Takeaways:   []string{"counting is useful"},
				KeyPoints:   []domain.KeyPoint{{Title: "Numbers", Description: "one through five", Importance: domain.ImportanceHigh}},
				ActionItems: []string{"count more"},
				Quotes:      []string{},
				Tags:        []string{"math"},
				Confidence:  0.9,
			},
		},
		store: &fakeStore{},
	}

	env.pipeline = New(cfg, env.executor, env.registry, env.transcriber, env.summarizer, env.store, logger.New("error", "text")).(*implPipeline)
	return env
}

// submitFile creates an upload file plus a queued job pointing at it.
func (env *testEnv) submitFile(t *testing.T, opts domain.ProcessingOptions) domain.Job {
	t.Helper()

	audioPath := filepath.Join(env.cfg.Paths.Uploads, "episode.mp3")
	if err := os.WriteFile(audioPath, []byte("mp3 bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	job, err := env.registry.Create("owner-1", domain.SourceFile, "episode.mp3", opts)
	if err != nil {
		t.Fatal(err)
	}
	return job
}

func (env *testEnv) runOne(t *testing.T, jobID string) error {
	t.Helper()
	if !env.registry.MarkProcessing(jobID) {
		t.Fatalf("job %s not queued", jobID)
	}
	return env.pipeline.process(context.Background(), jobID)
}

func tempFileCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func TestProcessSuccess(t *testing.T) {
	env := newTestEnv(t)
	job := env.submitFile(t, domain.ProcessingOptions{Detail: domain.DetailStandard})

	if err := env.runOne(t, job.ID); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	got, _ := env.registry.Get(job.ID)
	if got.Status != domain.JobStatusCompleted || got.Progress != 100 {
		t.Errorf("job = %+v", got)
	}

	saved := env.store.saved
	if saved == nil {
		t.Fatal("summary was not handed to the store")
	}
	if saved.WordCount != 5 {
		t.Errorf("WordCount = %d, want 5", saved.WordCount)
	}
	if saved.Confidence != 0.9 { // min(0.95, 0.9)
		t.Errorf("Confidence = %v, want 0.9", saved.Confidence)
	}
	if saved.Title != "A short episode about counting." {
		t.Errorf("Title = %q", saved.Title)
	}
	if saved.Metadata.DurationSeconds != 90.5 || saved.Metadata.Format != "mp3" {
		t.Errorf("Metadata = %+v", saved.Metadata)
	}

	// normalized audio fed to transcription, then cleaned up
	if !strings.HasSuffix(env.transcriber.gotPath, "_normalized.wav") {
		t.Errorf("transcriber got %q, want normalized wav", env.transcriber.gotPath)
	}
	if n := tempFileCount(t, env.cfg.Paths.Temp); n != 0 {
		t.Errorf("temp files remaining after success: %d", n)
	}
}

func TestProcessNormalizeFallback(t *testing.T) {
	env := newTestEnv(t)
	env.executor.ffmpegErr = errors.New("encoder exploded")
	job := env.submitFile(t, domain.ProcessingOptions{Detail: domain.DetailStandard})

	if err := env.runOne(t, job.ID); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	// tool failure degrades to the original file, never fails the job
	if !strings.HasSuffix(env.transcriber.gotPath, "episode.mp3") {
		t.Errorf("transcriber got %q, want original file", env.transcriber.gotPath)
	}
	got, _ := env.registry.Get(job.ID)
	if got.Status != domain.JobStatusCompleted {
		t.Errorf("Status = %v, want completed", got.Status)
	}
}

func TestProcessMissingFile(t *testing.T) {
	env := newTestEnv(t)
	job, err := env.registry.Create("owner-1", domain.SourceFile, "ghost.mp3", domain.ProcessingOptions{})
	if err != nil {
		t.Fatal(err)
	}

	err = env.runOne(t, job.ID)
	if err == nil || !strings.Contains(err.Error(), "audio file not found") {
		t.Errorf("process() error = %v, want missing-file failure", err)
	}
	if env.store.saved != nil {
		t.Error("no summary may be stored for a failed job")
	}
}

func TestProcessProbeFailure(t *testing.T) {
	env := newTestEnv(t)
	env.executor.probeErr = errors.New("ffprobe missing")
	env.executor.bannerStderr = "no duration here"
	job := env.submitFile(t, domain.ProcessingOptions{})

	err := env.runOne(t, job.ID)
	if err == nil || !strings.Contains(err.Error(), "probe") {
		t.Errorf("process() error = %v, want probe failure", err)
	}
}

func TestProcessTranscribeFailureCleansTemp(t *testing.T) {
	env := newTestEnv(t)
	env.transcriber.err = errors.New("service unavailable")
	job := env.submitFile(t, domain.ProcessingOptions{})

	if err := env.runOne(t, job.ID); err == nil {
		t.Fatal("process() should fail when transcription fails")
	}

	if n := tempFileCount(t, env.cfg.Paths.Temp); n != 0 {
		t.Errorf("temp files remaining after failure: %d", n)
	}
	if env.store.saved != nil {
		t.Error("failed job must not persist partial results")
	}
}

func TestProcessChaptersDropped(t *testing.T) {
	env := newTestEnv(t)
	// service returns chapter data although timestamps were not requested
	env.summarizer.result.Chapters = []domain.Chapter{{Title: "Intro", Start: 0, End: 30}}
	job := env.submitFile(t, domain.ProcessingOptions{Detail: domain.DetailBrief, Timestamps: false})

	if err := env.runOne(t, job.ID); err != nil {
		t.Fatalf("process() error = %v", err)
	}

	if len(env.store.saved.Summarization.Chapters) != 0 {
		t.Errorf("Chapters = %+v, want empty without timestamps", env.store.saved.Summarization.Chapters)
	}
}

func TestProcessURLUnsupported(t *testing.T) {
	env := newTestEnv(t)
	job, err := env.registry.Create("owner-1", domain.SourceURL, "http://example.com/pod.mp3", domain.ProcessingOptions{})
	if err != nil {
		t.Fatal(err)
	}

	err = env.runOne(t, job.ID)
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("process() error = %v, want ErrUnsupportedSource", err)
	}
	if !strings.Contains(err.Error(), "unsupported source") {
		t.Errorf("error message %q must identify the unsupported source", err.Error())
	}
}

func TestProcessCancelledMidStage(t *testing.T) {
	env := newTestEnv(t)
	job := env.submitFile(t, domain.ProcessingOptions{})

	// cancellation arrives while transcription is running; the stage
	// finishes but its result is discarded at the next boundary
	env.transcriber.onCall = func() {
		if err := env.registry.Cancel(job.ID, "owner-1"); err != nil {
			t.Errorf("Cancel() error = %v", err)
		}
	}

	err := env.runOne(t, job.ID)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("process() error = %v, want ErrCancelled", err)
	}
	if env.transcriber.callCount != 1 {
		t.Errorf("transcriber calls = %d, want 1 (stage not interrupted)", env.transcriber.callCount)
	}
	if env.store.saved != nil {
		t.Error("late-cancelled job must not persist a summary")
	}
	if n := tempFileCount(t, env.cfg.Paths.Temp); n != 0 {
		t.Errorf("temp files remaining after cancellation: %d", n)
	}
}

func TestProcessCancelledDuringPersist(t *testing.T) {
	env := newTestEnv(t)
	job := env.submitFile(t, domain.ProcessingOptions{})

	// cancellation arrives while the store is saving; the save has
	// already happened, so the record must be removed again
	env.store.onSave = func() {
		if err := env.registry.Cancel(job.ID, "owner-1"); err != nil {
			t.Errorf("Cancel() error = %v", err)
		}
	}

	err := env.runOne(t, job.ID)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("process() error = %v, want ErrCancelled", err)
	}

	got, _ := env.registry.Get(job.ID)
	if got.Status != domain.JobStatusFailed || got.Error != jobs.CancelMessage {
		t.Errorf("job = %+v, want failed with cancel message", got)
	}
	if env.store.saved != nil {
		t.Errorf("cancelled job must not leave a stored summary, got %s", env.store.saved.JobID)
	}
}

func TestWorkerFailureIsolation(t *testing.T) {
	env := newTestEnv(t)

	// first job fails at acquisition, the rest succeed
	bad, err := env.registry.Create("owner-1", domain.SourceFile, "ghost.mp3", domain.ProcessingOptions{})
	if err != nil {
		t.Fatal(err)
	}
	ids := []string{bad.ID}
	for range 3 {
		good := env.submitFile(t, domain.ProcessingOptions{})
		ids = append(ids, good.ID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		env.pipeline.Run(ctx)
	}()

	// drain all jobs, observing that the single worker never has more
	// than one job in processing at any instant
	deadline := time.After(5 * time.Second)
	for {
		processing, terminal := 0, 0
		for _, id := range ids {
			job, _ := env.registry.Get(id)
			if job.Status == domain.JobStatusProcessing {
				processing++
			}
			if job.Status.IsTerminal() {
				terminal++
			}
		}
		if processing > 1 {
			t.Fatalf("%d jobs processing at once, want at most 1", processing)
		}
		if terminal == len(ids) {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("queue never drained: %d of %d jobs terminal", terminal, len(ids))
		case <-time.After(time.Millisecond):
		}
	}

	badJob, _ := env.registry.Get(bad.ID)
	if badJob.Status != domain.JobStatusFailed {
		t.Errorf("first job = %+v, want failed", badJob)
	}
	if badJob.Error == "" {
		t.Error("failed job must carry an error message")
	}
	for _, id := range ids[1:] {
		job, _ := env.registry.Get(id)
		if job.Status != domain.JobStatusCompleted {
			t.Errorf("job %s = %v, want completed after earlier failure", id, job.Status)
		}
	}

	cancel()
	<-done
}

func TestWorkerSkipsCancelledQueuedJob(t *testing.T) {
	env := newTestEnv(t)
	job := env.submitFile(t, domain.ProcessingOptions{})

	if err := env.registry.Cancel(job.ID, "owner-1"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		env.pipeline.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	got, _ := env.registry.Get(job.ID)
	if got.Status != domain.JobStatusFailed || got.Error != jobs.CancelMessage {
		t.Errorf("job = %+v, want failed with cancel message", got)
	}
	if env.transcriber.callCount != 0 {
		t.Error("cancelled queued job must never reach a stage")
	}
}
