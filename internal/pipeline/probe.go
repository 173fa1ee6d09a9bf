package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"audio-digest/internal/domain"
)

type ffprobeOutput struct {
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		Size       string `json:"size"`
	} `json:"format"`
}

// durationPattern matches the "Duration: HH:MM:SS.cc" line ffmpeg prints
// to stderr when invoked without an output file.
var durationPattern = regexp.MustCompile(`Duration:\s*(\d+):(\d\d):(\d\d(?:\.\d+)?)`)

// probe extracts format, duration and size from the audio file. It
// prefers ffprobe's JSON output; when the duration is missing there it
// falls back to parsing ffmpeg's stderr banner. If neither yields a
// duration the job fails.
func (p *implPipeline) probe(ctx context.Context, audioPath string) (domain.AudioMetadata, error) {
	meta := domain.AudioMetadata{
		Format: strings.TrimPrefix(filepath.Ext(audioPath), "."),
	}

	if info, err := os.Stat(audioPath); err == nil {
		meta.SizeBytes = info.Size()
	}

	out, err := p.executor.Execute(ctx, p.cfg.FFmpeg.ProbeBinary,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		audioPath,
	)
	if err == nil {
		var probed ffprobeOutput
		if jsonErr := json.Unmarshal([]byte(out), &probed); jsonErr == nil {
			if probed.Format.FormatName != "" {
				meta.Format = probed.Format.FormatName
			}
			if size, sizeErr := strconv.ParseInt(probed.Format.Size, 10, 64); sizeErr == nil && size > 0 {
				meta.SizeBytes = size
			}
			if duration, durErr := strconv.ParseFloat(probed.Format.Duration, 64); durErr == nil && duration > 0 {
				meta.DurationSeconds = duration
				return meta, nil
			}
		}
	} else {
		p.logger.Warn(ctx, "ffprobe failed for %s, falling back to ffmpeg banner: %v", audioPath, err)
	}

	duration, err := p.durationFromBanner(ctx, audioPath)
	if err != nil {
		return domain.AudioMetadata{}, fmt.Errorf("extract audio metadata: %w", err)
	}

	meta.DurationSeconds = duration
	return meta, nil
}

// durationFromBanner runs ffmpeg -i with no output file and parses the
// duration from stderr. ffmpeg exits non-zero in this mode; the exit
// code is ignored as long as the banner parses.
func (p *implPipeline) durationFromBanner(ctx context.Context, audioPath string) (float64, error) {
	_, stderr, _ := p.executor.Capture(ctx, p.cfg.FFmpeg.Binary, "-hide_banner", "-i", audioPath)

	match := durationPattern.FindStringSubmatch(stderr)
	if match == nil {
		return 0, fmt.Errorf("no duration in ffmpeg output for %s", filepath.Base(audioPath))
	}

	hours, _ := strconv.ParseFloat(match[1], 64)
	minutes, _ := strconv.ParseFloat(match[2], 64)
	seconds, err := strconv.ParseFloat(match[3], 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration seconds: %w", err)
	}

	return hours*3600 + minutes*60 + seconds, nil
}
