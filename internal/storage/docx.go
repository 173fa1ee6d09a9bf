package storage

import (
	"fmt"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"

	"audio-digest/internal/domain"
)

const (
	fontName    = "Calibri"
	fontSize    = 11
	titleSize   = 16
	headingSize = 13
	fontColor   = "000000"
	accentColor = "444444"
)

// summaryToDocx renders a completed summary as a styled docx document.
func summaryToDocx(summary *domain.Summary, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return err
	}

	addStyled(doc.AddParagraph(""), summary.Title, true, titleSize)
	addStyled(doc.AddParagraph(""), summary.Summarization.Overview, false, fontSize)

	meta := fmt.Sprintf("Duration %s · %d words · confidence %.2f",
		formatTimestamp(summary.Metadata.DurationSeconds), summary.WordCount, summary.Confidence)
	doc.AddParagraph("").AddText(meta).Font(fontName).Size(fontSize).Color(accentColor)

	addListSection(doc, "Takeaways", summary.Summarization.Takeaways)

	if len(summary.Summarization.KeyPoints) > 0 {
		addStyled(doc.AddParagraph(""), "Key Points", true, headingSize)
		for _, kp := range summary.Summarization.KeyPoints {
			p := doc.AddParagraph("")
			p.AddText(kp.Title+": ").Font(fontName).Size(fontSize).Color(fontColor).Bold(true)
			p.AddText(kp.Description).Font(fontName).Size(fontSize).Color(fontColor)
		}
	}

	addListSection(doc, "Action Items", summary.Summarization.ActionItems)
	addListSection(doc, "Quotes", summary.Summarization.Quotes)

	if len(summary.Summarization.Chapters) > 0 {
		addStyled(doc.AddParagraph(""), "Chapters", true, headingSize)
		for _, ch := range summary.Summarization.Chapters {
			heading := fmt.Sprintf("%s (%s - %s)", ch.Title, formatTimestamp(ch.Start), formatTimestamp(ch.End))
			addStyled(doc.AddParagraph(""), heading, true, fontSize)
			addStyled(doc.AddParagraph(""), ch.Summary, false, fontSize)
		}
	}

	return doc.SaveTo(outputPath)
}

func addListSection(doc *docx.RootDoc, title string, items []string) {
	if len(items) == 0 {
		return
	}

	addStyled(doc.AddParagraph(""), title, true, headingSize)
	for _, item := range items {
		addStyled(doc.AddParagraph(""), "• "+item, false, fontSize)
	}
}

func addStyled(p *docx.Paragraph, text string, bold bool, size uint64) {
	run := p.AddText(text).Font(fontName).Size(size).Color(fontColor)
	if bold {
		run.Bold(true)
	}
}
