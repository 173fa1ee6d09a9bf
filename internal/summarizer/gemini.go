package summarizer

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"audio-digest/internal/domain"
)

// Summarize sends the transcript to Gemini and parses the structured
// response. A malformed response is a stage failure, never coerced.
func (s *implSummarizer) Summarize(ctx context.Context, req Request) (*domain.SummarizationResult, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return nil, fmt.Errorf("empty transcript")
	}

	prompt := buildPrompt(req)

	raw, finish, err := s.callGemini(ctx, prompt)
	if err != nil {
		return nil, err
	}

	result, err := parseResponse(raw, req.Timestamps)
	if err != nil {
		return nil, fmt.Errorf("malformed summarization response: %w", err)
	}

	result.Confidence = confidenceFor(finish)
	s.logger.Debug(ctx, "Summarized transcript: %d takeaways, %d key points, finish=%s",
		len(result.Takeaways), len(result.KeyPoints), finish)

	return result, nil
}

// callGemini sends one prompt and returns the response text plus the
// finish reason. Rotates API keys on 429 / quota errors.
func (s *implSummarizer) callGemini(ctx context.Context, prompt string) (string, genai.FinishReason, error) {
	attempts := len(s.apiKeys)
	if attempts == 0 {
		return "", "", fmt.Errorf("no Gemini API keys configured")
	}

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var lastErr error
	for range attempts {
		key := s.apiKeys[s.currentKey]

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			s.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), genConfig)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				s.logger.Warn(ctx, "Key %d rate limited, rotating...", s.currentKey+1)
				s.rotateKey()
				lastErr = err
				continue
			}
			return "", "", fmt.Errorf("generate content: %w", err)
		}

		if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return "", "", fmt.Errorf("empty response from Gemini")
		}

		candidate := result.Candidates[0]
		var text string
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		if text == "" {
			return "", "", fmt.Errorf("empty response from Gemini")
		}

		return text, candidate.FinishReason, nil
	}

	return "", "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implSummarizer) rotateKey() {
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}
