package domain

import "time"

// JobStatus tracks the lifecycle of a single summarization job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// IsTerminal reports whether a job in this status can still change.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// SourceKind identifies where the audio for a job comes from.
type SourceKind string

const (
	SourceFile SourceKind = "file"
	SourceURL  SourceKind = "url"
)

// DetailLevel controls how verbose the generated summary is.
type DetailLevel string

const (
	DetailBrief    DetailLevel = "brief"
	DetailStandard DetailLevel = "standard"
	DetailDeep     DetailLevel = "deep"
)

// Importance ranks a key point within the summary.
type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

// ProcessingOptions are the per-job knobs supplied at submission time.
type ProcessingOptions struct {
	Language   string      `json:"language,omitempty"`
	Detail     DetailLevel `json:"detail"`
	Timestamps bool        `json:"timestamps"`
}

// Job is one user request to summarize one audio source.
type Job struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"ownerId"`
	Source      SourceKind        `json:"source"`
	SourceRef   string            `json:"sourceRef"`
	Options     ProcessingOptions `json:"options"`
	Status      JobStatus         `json:"status"`
	Progress    int               `json:"progress"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	CompletedAt time.Time         `json:"completedAt,omitzero"`
}

// AudioMetadata is extracted once per job by the probe stage.
type AudioMetadata struct {
	Format          string  `json:"format"`
	DurationSeconds float64 `json:"durationSeconds"`
	SizeBytes       int64   `json:"sizeBytes"`
}

// TranscriptSegment is a timestamped span of transcript text.
// Confidence is 0 when the service did not report one.
type TranscriptSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// TranscriptionResult is the output of the speech-to-text stage.
type TranscriptionResult struct {
	Text       string              `json:"text"`
	Language   string              `json:"language"`
	Duration   float64             `json:"duration"`
	Segments   []TranscriptSegment `json:"segments"`
	Confidence float64             `json:"confidence"`
}

// KeyPoint is one notable point surfaced by the summarizer.
type KeyPoint struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Timestamp   *float64   `json:"timestamp,omitempty"`
	Importance  Importance `json:"importance"`
}

// Chapter is a named time range with its own summary, produced only
// when timestamps were requested.
type Chapter struct {
	Title     string   `json:"title"`
	Start     float64  `json:"start"`
	End       float64  `json:"end"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

// SummarizationResult is the structured output of the language-model stage.
type SummarizationResult struct {
	Overview    string     `json:"overview"`
	Takeaways   []string   `json:"takeaways"`
	KeyPoints   []KeyPoint `json:"keyPoints"`
	ActionItems []string   `json:"actionItems"`
	Quotes      []string   `json:"quotes"`
	Chapters    []Chapter  `json:"chapters,omitempty"`
	Tags        []string   `json:"tags"`
	Confidence  float64    `json:"confidence"`
}

// Summary is the final artifact assembled for a completed job. It is
// created once, handed to storage, and never mutated afterwards.
type Summary struct {
	JobID             string              `json:"jobId"`
	OwnerID           string              `json:"ownerId"`
	Title             string              `json:"title"`
	Transcription     TranscriptionResult `json:"transcription"`
	Summarization     SummarizationResult `json:"summarization"`
	Metadata          AudioMetadata       `json:"metadata"`
	ProcessingSeconds float64             `json:"processingSeconds"`
	WordCount         int                 `json:"wordCount"`
	Confidence        float64             `json:"confidence"`
	GeneratedAt       time.Time           `json:"generatedAt"`
}
