package storage

import (
	"fmt"
	"strings"

	"audio-digest/internal/domain"
)

// renderOutline flattens a summary into outline-style markdown: the
// title, then every list as nested bullets.
func renderOutline(summary *domain.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", summary.Title)
	fmt.Fprintf(&b, "%s\n", summary.Summarization.Overview)

	if len(summary.Summarization.Takeaways) > 0 {
		b.WriteString("\n## Takeaways\n\n")
		for _, item := range summary.Summarization.Takeaways {
			fmt.Fprintf(&b, "- %s\n", item)
		}
	}

	if len(summary.Summarization.KeyPoints) > 0 {
		b.WriteString("\n## Key Points\n\n")
		for _, kp := range summary.Summarization.KeyPoints {
			fmt.Fprintf(&b, "- **%s** (%s)", kp.Title, kp.Importance)
			if kp.Timestamp != nil {
				fmt.Fprintf(&b, " [%s]", formatTimestamp(*kp.Timestamp))
			}
			fmt.Fprintf(&b, ": %s\n", kp.Description)
		}
	}

	if len(summary.Summarization.ActionItems) > 0 {
		b.WriteString("\n## Action Items\n\n")
		for _, item := range summary.Summarization.ActionItems {
			fmt.Fprintf(&b, "- [ ] %s\n", item)
		}
	}

	if len(summary.Summarization.Quotes) > 0 {
		b.WriteString("\n## Quotes\n\n")
		for _, quote := range summary.Summarization.Quotes {
			fmt.Fprintf(&b, "> %s\n", quote)
		}
	}

	if len(summary.Summarization.Chapters) > 0 {
		b.WriteString("\n## Chapters\n\n")
		for _, ch := range summary.Summarization.Chapters {
			fmt.Fprintf(&b, "- %s-%s: %s\n",
				formatTimestamp(ch.Start), formatTimestamp(ch.End), ch.Title)
			for _, kp := range ch.KeyPoints {
				fmt.Fprintf(&b, "  - %s\n", kp)
			}
		}
	}

	if len(summary.Summarization.Tags) > 0 {
		fmt.Fprintf(&b, "\nTags: %s\n", strings.Join(summary.Summarization.Tags, ", "))
	}

	return b.String()
}

// renderHeadings flattens a summary into heading-style plain text: each
// section introduced by an underlined heading, prose paragraphs below.
func renderHeadings(summary *domain.Summary) string {
	var b strings.Builder

	writeHeading(&b, summary.Title)
	fmt.Fprintf(&b, "%s\n", summary.Summarization.Overview)
	fmt.Fprintf(&b, "\nDuration: %s | Words: %d | Confidence: %.2f\n",
		formatTimestamp(summary.Metadata.DurationSeconds), summary.WordCount, summary.Confidence)

	if len(summary.Summarization.Takeaways) > 0 {
		writeHeading(&b, "Takeaways")
		for i, item := range summary.Summarization.Takeaways {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item)
		}
	}

	if len(summary.Summarization.KeyPoints) > 0 {
		writeHeading(&b, "Key Points")
		for _, kp := range summary.Summarization.KeyPoints {
			fmt.Fprintf(&b, "%s\n%s\n\n", kp.Title, kp.Description)
		}
	}

	if len(summary.Summarization.ActionItems) > 0 {
		writeHeading(&b, "Action Items")
		for i, item := range summary.Summarization.ActionItems {
			fmt.Fprintf(&b, "%d. %s\n", i+1, item)
		}
	}

	if len(summary.Summarization.Chapters) > 0 {
		writeHeading(&b, "Chapters")
		for _, ch := range summary.Summarization.Chapters {
			fmt.Fprintf(&b, "%s (%s - %s)\n%s\n\n",
				ch.Title, formatTimestamp(ch.Start), formatTimestamp(ch.End), ch.Summary)
		}
	}

	return b.String()
}

func writeHeading(b *strings.Builder, text string) {
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "%s\n%s\n", text, strings.Repeat("=", len(text)))
}

func formatTimestamp(seconds float64) string {
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
