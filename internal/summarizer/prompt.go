package summarizer

import (
	"fmt"
	"strings"

	"audio-digest/internal/domain"
)

const promptHeader = `You are an expert audio content analyst. Summarize the episode transcript below into a single JSON object with exactly these fields:

{
  "overview": "2-4 sentence overview of the episode",
  "takeaways": ["..."],
  "keyPoints": [{"title": "...", "description": "...", "timestamp": 0.0, "importance": "high|medium|low"}],
  "actionItems": ["..."],
  "quotes": ["notable verbatim quotes"],
  "tags": ["topic tags, lowercase"]%s
}

Respond with the JSON object only, no surrounding prose or code fences.`

const chapterField = `,
  "chapters": [{"title": "...", "start": 0.0, "end": 0.0, "summary": "...", "keyPoints": ["..."]}]`

// buildPrompt renders the summarization instruction for one transcript.
// The detail-level targets are stated as ranges; the model may exceed
// them slightly without the response being rejected.
func buildPrompt(req Request) string {
	targets := domain.TargetsFor(req.Detail)

	chapters := ""
	wantChapters := req.Timestamps && targets.Chapters
	if wantChapters {
		chapters = chapterField
	}

	var b strings.Builder
	fmt.Fprintf(&b, promptHeader, chapters)

	fmt.Fprintf(&b, "\n\nTargets for this summary (detail level %q):\n", req.Detail)
	fmt.Fprintf(&b, "- %d-%d takeaways\n", targets.TakeawaysMin, targets.TakeawaysMax)
	fmt.Fprintf(&b, "- %d-%d key points\n", targets.KeyPointsMin, targets.KeyPointsMax)
	fmt.Fprintf(&b, "- %d-%d action items\n", targets.ActionItemsMin, targets.ActionItemsMax)
	if wantChapters {
		b.WriteString("- a chapter breakdown covering the full duration\n")
	}
	if !req.Timestamps {
		b.WriteString("- omit timestamps and chapters entirely\n")
	}

	b.WriteString("\nEpisode context:\n")
	if req.Title != "" {
		fmt.Fprintf(&b, "- title: %s\n", req.Title)
	}
	if req.Language != "" {
		fmt.Fprintf(&b, "- language: %s\n", req.Language)
	}
	if req.DurationSeconds > 0 {
		fmt.Fprintf(&b, "- duration: %.0f seconds\n", req.DurationSeconds)
	}

	fmt.Fprintf(&b, "\nTranscript:\n---\n%s\n---", req.Transcript)
	return b.String()
}
