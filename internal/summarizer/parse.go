package summarizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"audio-digest/internal/domain"
)

// Confidence is derived from how the generation finished, not from the
// content itself.
const (
	confidenceClean     = 0.9
	confidenceTruncated = 0.5
	confidenceOther     = 0.7
)

type responsePayload struct {
	Overview    string            `json:"overview"`
	Takeaways   []string          `json:"takeaways"`
	KeyPoints   []keyPointPayload `json:"keyPoints"`
	ActionItems []string          `json:"actionItems"`
	Quotes      []string          `json:"quotes"`
	Chapters    []chapterPayload  `json:"chapters"`
	Tags        []string          `json:"tags"`
}

type keyPointPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Timestamp   *float64 `json:"timestamp"`
	Importance  string   `json:"importance"`
}

type chapterPayload struct {
	Title     string   `json:"title"`
	Start     float64  `json:"start"`
	End       float64  `json:"end"`
	Summary   string   `json:"summary"`
	KeyPoints []string `json:"keyPoints"`
}

// parseResponse validates the model output against the expected object
// shape. Missing fields become empty slices, never nil. Chapters are
// dropped when timestamps were not requested, even if the model
// returned them anyway.
func parseResponse(raw string, timestamps bool) (*domain.SummarizationResult, error) {
	cleaned := stripCodeFences(raw)

	var payload responsePayload
	decoder := json.NewDecoder(strings.NewReader(cleaned))
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode JSON: %w", err)
	}
	if payload.Overview == "" {
		return nil, fmt.Errorf("missing overview field")
	}

	result := &domain.SummarizationResult{
		Overview:    strings.TrimSpace(payload.Overview),
		Takeaways:   nonNil(payload.Takeaways),
		ActionItems: nonNil(payload.ActionItems),
		Quotes:      nonNil(payload.Quotes),
		Tags:        nonNil(payload.Tags),
		KeyPoints:   make([]domain.KeyPoint, 0, len(payload.KeyPoints)),
	}

	for _, kp := range payload.KeyPoints {
		point := domain.KeyPoint{
			Title:       kp.Title,
			Description: kp.Description,
			Importance:  parseImportance(kp.Importance),
		}
		if timestamps {
			point.Timestamp = kp.Timestamp
		}
		result.KeyPoints = append(result.KeyPoints, point)
	}

	if timestamps {
		result.Chapters = make([]domain.Chapter, 0, len(payload.Chapters))
		for _, ch := range payload.Chapters {
			result.Chapters = append(result.Chapters, domain.Chapter{
				Title:     ch.Title,
				Start:     ch.Start,
				End:       ch.End,
				Summary:   ch.Summary,
				KeyPoints: nonNil(ch.KeyPoints),
			})
		}
	}

	return result, nil
}

// stripCodeFences removes a markdown code fence wrapper if the model
// added one despite the JSON response instruction.
func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func parseImportance(raw string) domain.Importance {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(domain.ImportanceHigh):
		return domain.ImportanceHigh
	case string(domain.ImportanceLow):
		return domain.ImportanceLow
	default:
		return domain.ImportanceMedium
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// confidenceFor maps the generation finish reason to a quality signal:
// a clean stop scores high, a truncated response low.
func confidenceFor(finish genai.FinishReason) float64 {
	switch finish {
	case genai.FinishReasonStop:
		return confidenceClean
	case genai.FinishReasonMaxTokens:
		return confidenceTruncated
	default:
		return confidenceOther
	}
}
