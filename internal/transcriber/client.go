package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"audio-digest/internal/domain"
)

// defaultConfidence is reported when the service returns no per-segment
// confidences at all.
const defaultConfidence = 0.8

const defaultLanguage = "en"

// whisperResponse is the verbose JSON shape of Whisper-compatible
// transcription services.
type whisperResponse struct {
	Task     string           `json:"task"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Transcribe uploads the audio file and maps the service response into a
// TranscriptionResult. Service errors propagate as-is; there is no retry.
func (t *implTranscriber) Transcribe(ctx context.Context, req Request) (*domain.TranscriptionResult, error) {
	audio, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer audio.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	fields := map[string]string{
		"model":           t.model,
		"response_format": "verbose_json",
	}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	if req.Prompt != "" {
		fields["prompt"] = req.Prompt
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("write field %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, body)
	if err != nil {
		return nil, fmt.Errorf("create transcription request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call transcription service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("transcription service returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var payload whisperResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}

	result := mapResponse(payload, req.Language)
	t.logger.Debug(ctx, "Transcribed %s: %d segments, language=%s, confidence=%.2f",
		filepath.Base(req.AudioPath), len(result.Segments), result.Language, result.Confidence)

	return result, nil
}

// mapResponse converts the wire shape to the domain result, applying the
// language and confidence fallbacks.
func mapResponse(payload whisperResponse, languageHint string) *domain.TranscriptionResult {
	segments := make([]domain.TranscriptSegment, 0, len(payload.Segments))
	var confidenceSum float64
	var confidenceCount int

	for _, seg := range payload.Segments {
		segments = append(segments, domain.TranscriptSegment{
			Start:      seg.Start,
			End:        seg.End,
			Text:       strings.TrimSpace(seg.Text),
			Confidence: seg.Confidence,
		})
		if seg.Confidence > 0 {
			confidenceSum += seg.Confidence
			confidenceCount++
		}
	}

	confidence := defaultConfidence
	if confidenceCount > 0 {
		confidence = confidenceSum / float64(confidenceCount)
	}

	language := payload.Language
	if language == "" {
		language = languageHint
	}
	if language == "" {
		language = defaultLanguage
	}

	return &domain.TranscriptionResult{
		Text:       strings.TrimSpace(payload.Text),
		Language:   language,
		Duration:   payload.Duration,
		Segments:   segments,
		Confidence: confidence,
	}
}
