package slack

import (
	"fmt"
	"strings"
	"time"

	"PapersNotifier/internal/domain"
)

const (
	headerTitle = "📚 New Union Papers Detected"
	listPageURL = "https://economic.github.io/new_unions_papers/"
	contextNote = "_Automated notification from the Union Papers tracking system_"
)

// Message is a Block Kit payload, trimmed to the block kinds this notifier
// emits. Text is the fallback string clients show in desktop notifications.
type Message struct {
	Text   string  `json:"text"`
	Blocks []Block `json:"blocks"`
}

// Block is one typed visual segment of a Block Kit message.
type Block struct {
	Type     string       `json:"type"`
	Text     *TextObject  `json:"text,omitempty"`
	Elements []TextObject `json:"elements,omitempty"`
}

// TextObject carries either mrkdwn or plain_text content inside a block.
type TextObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// BuildMessage renders a batch of papers into the Block Kit payload. Callers
// guarantee a non-empty, already sorted batch. The current time is passed in
// so the builder stays pure; it only feeds the fallback text.
func BuildMessage(papers []domain.Paper, now time.Time) Message {
	count := len(papers)
	paperWord := "papers"
	haveWord := "have"
	if count == 1 {
		paperWord = "paper"
		haveWord = "has"
	}

	blocks := make([]Block, 0, len(papers)+5)
	blocks = append(blocks,
		Block{
			Type: "header",
			Text: &TextObject{Type: "plain_text", Text: headerTitle, Emoji: true},
		},
		Block{
			Type: "section",
			Text: &TextObject{
				Type: "mrkdwn",
				Text: fmt.Sprintf("The following *%d new %s* %s been added to the <%s|Recent Union Papers> list:",
					count, paperWord, haveWord, listPageURL),
			},
		},
		Block{Type: "divider"},
	)

	for _, paper := range papers {
		blocks = append(blocks, Block{
			Type: "section",
			Text: &TextObject{Type: "mrkdwn", Text: paperText(paper)},
		})
	}

	blocks = append(blocks,
		Block{Type: "divider"},
		Block{
			Type:     "context",
			Elements: []TextObject{{Type: "mrkdwn", Text: contextNote}},
		},
	)

	return Message{
		Text:   fmt.Sprintf("New union papers for the week ending %s", now.Format("January 02, 2006")),
		Blocks: blocks,
	}
}

// paperText renders one paper as mrkdwn: bold authors, italic title, then a
// journal segment (linked through the DOI when present) and a date segment,
// separated by a vertical bar only when the journal segment was emitted.
func paperText(paper domain.Paper) string {
	var b strings.Builder
	b.WriteString("*" + EscapeText(paper.Authors) + "*\n")
	b.WriteString("_" + EscapeText(paper.Title) + "_\n")

	journal := EscapeText(paper.Journal)
	switch {
	case paper.DOI != "" && journal != "":
		b.WriteString("📄 <" + paper.DOI + "|" + journal + ">")
	case journal != "":
		b.WriteString("📄 " + journal)
	}

	if paper.PublicationDate != "" {
		if journal != "" {
			b.WriteString("  |  ")
		}
		b.WriteString("📅 " + paper.PublicationDate)
	}

	return b.String()
}

// EscapeText replaces the characters Slack mrkdwn reserves with their entity
// equivalents. Ampersand goes first so freshly inserted entities are not
// escaped again.
func EscapeText(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}
