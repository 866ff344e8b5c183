package notify

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf16"

	"github.com/inovaitive/revu/internal/core/domain"
	"github.com/inovaitive/revu/internal/core/triage"
)

const (
	// Telegram counts message length in UTF-16 code units.
	maxMessageUnits = 4096
	ellipsis        = "…"
)

// Escaped size caps per field. Together with the fixed markup they stay
// under maxMessageUnits.
const (
	maxExcerptUnits     = 1800
	maxSummaryUnits     = 1000
	maxCompetitorsUnits = 300
	maxLabelUnits       = 100
)

// FormatCriticalReview renders the alert body in Telegram HTML.
func FormatCriticalReview(fb *domain.Feedback, a *domain.Analysis) string {
	var sb strings.Builder

	sb.WriteString("🚨 <b>Critical feedback needs review</b>\n\n")
	fmt.Fprintf(&sb, "<b>Priority:</b> %s (score %d)\n", triage.PriorityLabel(a.PriorityScore), a.PriorityScore)
	fmt.Fprintf(&sb, "<b>Sentiment:</b> %s (%+.2f)\n", escapeTruncate(string(a.Sentiment), maxLabelUnits), a.SentimentScore)
	fmt.Fprintf(&sb, "<b>Source:</b> %s", escapeTruncate(fb.Source, maxLabelUnits))

	if fb.AuthorName != "" {
		fmt.Fprintf(&sb, " · <b>Author:</b> %s", escapeTruncate(fb.AuthorName, maxLabelUnits))
	}

	sb.WriteString("\n")

	if a.ChurnRisk {
		sb.WriteString("<b>Churn risk:</b> yes\n")
	}

	if len(a.CompetitorMentions) > 0 {
		fmt.Fprintf(&sb, "<b>Competitors:</b> %s\n", escapeTruncate(strings.Join(a.CompetitorMentions, ", "), maxCompetitorsUnits))
	}

	if a.Insights.Summary != "" {
		fmt.Fprintf(&sb, "<b>Summary:</b> %s\n", escapeTruncate(a.Insights.Summary, maxSummaryUnits))
	}

	fmt.Fprintf(&sb, "\n<blockquote>%s</blockquote>\n", escapeTruncate(fb.Content, maxExcerptUnits))
	fmt.Fprintf(&sb, "\n<code>%s</code>", escapeTruncate(fb.ID, maxLabelUnits))

	return sb.String()
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

// truncateUTF16 cuts s to at most maxUnits UTF-16 code units, ellipsis
// included, without splitting a surrogate pair.
func truncateUTF16(s string, maxUnits int) string {
	if utf16Len(s) <= maxUnits {
		return s
	}

	budget := maxUnits - utf16Len(ellipsis)
	units := 0

	for i, r := range s {
		n := 1
		if r > 0xFFFF {
			n = 2
		}

		if units+n > budget {
			return strings.TrimRight(s[:i], " \n\t") + ellipsis
		}

		units += n
	}

	return s
}

// escapeTruncate HTML-escapes s and keeps the result within maxUnits UTF-16
// code units, ellipsis included. Cuts fall between runes, so an entity is
// never split.
func escapeTruncate(s string, maxUnits int) string {
	escaped := html.EscapeString(s)
	if utf16Len(escaped) <= maxUnits {
		return escaped
	}

	budget := maxUnits - utf16Len(ellipsis)
	units := 0

	var sb strings.Builder

	for _, r := range s {
		piece := html.EscapeString(string(r))

		n := utf16Len(piece)
		if units+n > budget {
			break
		}

		sb.WriteString(piece)
		units += n
	}

	return strings.TrimRight(sb.String(), " \n\t") + ellipsis
}
