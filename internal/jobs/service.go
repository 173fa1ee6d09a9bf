package jobs

import (
	"errors"
	"fmt"

	"audio-digest/internal/domain"
)

// ErrInvalidRequest wraps submission validation failures. Invalid
// requests are rejected before a job record exists.
var ErrInvalidRequest = errors.New("invalid submission")

// SubmitRequest is the job-submission contract consumed from the
// upstream layer. File is an opaque handle to already-stored audio.
type SubmitRequest struct {
	Type    string          `json:"type"`
	File    string          `json:"file,omitempty"`
	URL     string          `json:"url,omitempty"`
	Options *OptionsPayload `json:"options,omitempty"`
}

// OptionsPayload carries the optional processing knobs of a submission.
type OptionsPayload struct {
	Lang       string `json:"lang,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Timestamps bool   `json:"timestamps,omitempty"`
}

// SubmitResponse acknowledges an accepted submission.
type SubmitResponse struct {
	JobID         string `json:"jobId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	EstimatedTime int    `json:"estimatedTime"`
}

// StatusResponse reports the current state of a job to its owner.
type StatusResponse struct {
	JobID    string `json:"jobId"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Error    string `json:"error,omitempty"`
}

// Service is the owner-facing surface over the registry: submission,
// status queries and cancellation, all scoped to a single owner.
type Service struct {
	registry *Registry
}

// NewService creates the job service.
func NewService(registry *Registry) *Service {
	return &Service{registry: registry}
}

// Submit validates a request, creates the job and returns the queued
// acknowledgement with an estimated processing time.
func (s *Service) Submit(ownerID string, req SubmitRequest) (SubmitResponse, error) {
	source, ref, opts, err := parseRequest(req)
	if err != nil {
		return SubmitResponse{}, err
	}

	job, err := s.registry.Create(ownerID, source, ref, opts)
	if err != nil {
		return SubmitResponse{}, err
	}

	return SubmitResponse{
		JobID:         job.ID,
		Status:        string(domain.JobStatusQueued),
		Message:       "Job accepted and queued for processing",
		EstimatedTime: EstimateSeconds(source, opts),
	}, nil
}

// Status returns the job state visible to its owner. Jobs belonging to
// other owners are reported as not found.
func (s *Service) Status(ownerID, jobID string) (StatusResponse, error) {
	job, ok := s.registry.GetOwned(jobID, ownerID)
	if !ok {
		return StatusResponse{}, ErrNotFound
	}

	return StatusResponse{
		JobID:    job.ID,
		Status:   string(job.Status),
		Progress: job.Progress,
		Message:  statusMessage(job),
		Error:    job.Error,
	}, nil
}

// Cancel terminates the owner's job per the registry's cancellation
// contract.
func (s *Service) Cancel(ownerID, jobID string) error {
	return s.registry.Cancel(jobID, ownerID)
}

func parseRequest(req SubmitRequest) (domain.SourceKind, string, domain.ProcessingOptions, error) {
	var source domain.SourceKind
	var ref string

	switch req.Type {
	case string(domain.SourceFile):
		if req.File == "" {
			return "", "", domain.ProcessingOptions{}, fmt.Errorf("%w: file handle is required for type=file", ErrInvalidRequest)
		}
		source, ref = domain.SourceFile, req.File
	case string(domain.SourceURL):
		if req.URL == "" {
			return "", "", domain.ProcessingOptions{}, fmt.Errorf("%w: url is required for type=url", ErrInvalidRequest)
		}
		source, ref = domain.SourceURL, req.URL
	default:
		return "", "", domain.ProcessingOptions{}, fmt.Errorf("%w: unknown source type %q", ErrInvalidRequest, req.Type)
	}

	opts := domain.ProcessingOptions{Detail: domain.DetailStandard}
	if req.Options != nil {
		opts.Language = req.Options.Lang
		opts.Timestamps = req.Options.Timestamps

		switch req.Options.Detail {
		case "":
			// keep standard
		case string(domain.DetailBrief), string(domain.DetailStandard), string(domain.DetailDeep):
			opts.Detail = domain.DetailLevel(req.Options.Detail)
		default:
			return "", "", domain.ProcessingOptions{}, fmt.Errorf("%w: unknown detail level %q", ErrInvalidRequest, req.Options.Detail)
		}
	}

	return source, ref, opts, nil
}

func statusMessage(job domain.Job) string {
	switch job.Status {
	case domain.JobStatusQueued:
		return "Waiting in queue"
	case domain.JobStatusProcessing:
		return fmt.Sprintf("Processing (%d%%)", job.Progress)
	case domain.JobStatusCompleted:
		return "Summary ready"
	case domain.JobStatusFailed:
		return "Processing failed"
	default:
		return string(job.Status)
	}
}
