package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"audio-digest/internal/domain"
)

// ErrUnsupportedSource is returned for url jobs when remote fetching is
// disabled. The job fails explicitly instead of silently degrading.
var ErrUnsupportedSource = errors.New("unsupported source: remote fetch is disabled")

type acquireResult struct {
	path string
	// temp marks files this stage created, which must be removed when
	// the job reaches a terminal status.
	temp bool
}

// acquire resolves the job's source into a local audio file.
func (p *implPipeline) acquire(ctx context.Context, job domain.Job) (acquireResult, error) {
	switch job.Source {
	case domain.SourceFile:
		return p.acquireFile(job.SourceRef)
	case domain.SourceURL:
		return p.acquireURL(ctx, job)
	default:
		return acquireResult{}, fmt.Errorf("unknown source kind %q", job.Source)
	}
}

// acquireFile resolves an opaque upload handle against the uploads
// directory. Absolute paths are used as-is.
func (p *implPipeline) acquireFile(ref string) (acquireResult, error) {
	audioPath := ref
	if !filepath.IsAbs(audioPath) {
		audioPath = filepath.Join(p.cfg.Paths.Uploads, ref)
	}

	info, err := os.Stat(audioPath)
	if err != nil {
		return acquireResult{}, fmt.Errorf("audio file not found: %s", ref)
	}
	if info.IsDir() {
		return acquireResult{}, fmt.Errorf("audio path is a directory: %s", ref)
	}

	return acquireResult{path: audioPath}, nil
}

// acquireURL downloads remote audio into the temp directory.
func (p *implPipeline) acquireURL(ctx context.Context, job domain.Job) (acquireResult, error) {
	if !p.cfg.Pipeline.AllowRemote {
		return acquireResult{}, fmt.Errorf("%w (url: %s)", ErrUnsupportedSource, job.SourceRef)
	}

	if err := os.MkdirAll(p.cfg.Paths.Temp, 0o755); err != nil {
		return acquireResult{}, fmt.Errorf("create temp dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.SourceRef, nil)
	if err != nil {
		return acquireResult{}, fmt.Errorf("build download request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return acquireResult{}, fmt.Errorf("download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return acquireResult{}, fmt.Errorf("download audio: remote returned status %d", resp.StatusCode)
	}

	ext := path.Ext(job.SourceRef)
	if ext == "" || len(ext) > 5 {
		ext = ".audio"
	}

	out, err := os.CreateTemp(p.cfg.Paths.Temp, "download-"+job.ID+"-*"+ext)
	if err != nil {
		return acquireResult{}, fmt.Errorf("create download file: %w", err)
	}
	defer out.Close()

	limit := int64(p.cfg.Pipeline.MaxDownloadMB) * 1024 * 1024
	written, err := io.Copy(out, io.LimitReader(resp.Body, limit+1))
	if err != nil {
		os.Remove(out.Name())
		return acquireResult{}, fmt.Errorf("download audio: %w", err)
	}
	if written > limit {
		os.Remove(out.Name())
		return acquireResult{}, fmt.Errorf("download exceeds limit of %d MB", p.cfg.Pipeline.MaxDownloadMB)
	}

	p.logger.Debug(ctx, "Downloaded %d bytes for job %s", written, job.ID)
	return acquireResult{path: out.Name(), temp: true}, nil
}
