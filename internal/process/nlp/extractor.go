// Package nlp extracts keyword and entity signals from raw feedback text.
//
// Extraction is heuristic and never fails: any internal problem yields an
// empty signal set so analysis can continue on the AI judgment alone.
package nlp

import (
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"

	"github.com/inovaitive/revu/internal/core/domain"
)

const maxKeyPhrases = 10

// Extractor finds urgency, churn and competitor keyword hits plus entities.
// It is safe for concurrent use.
type Extractor struct {
	competitors []string
	logger      *zerolog.Logger
}

// New creates an Extractor. An empty competitor list falls back to
// DefaultCompetitors.
func New(competitors []string, logger *zerolog.Logger) *Extractor {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	list := make([]string, 0, len(competitors))

	for _, c := range competitors {
		if c = strings.TrimSpace(c); c != "" {
			list = append(list, c)
		}
	}

	if len(list) == 0 {
		list = append(list, DefaultCompetitors...)
	}

	return &Extractor{
		competitors: list,
		logger:      logger,
	}
}

// Competitors returns the competitor names the extractor looks for.
func (e *Extractor) Competitors() []string {
	return append([]string(nil), e.competitors...)
}

// Extract returns the signals found in text.
func (e *Extractor) Extract(text string) (signals domain.NLPSignals) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Interface("panic", r).Msg("nlp extraction panicked, returning empty signals")

			signals = domain.NLPSignals{}
		}
	}()

	if strings.TrimSpace(text) == "" {
		return domain.NLPSignals{}
	}

	// Casers carry state and cannot be shared between goroutines.
	caser := cases.Fold()
	folded := caser.String(text)

	signals = domain.NLPSignals{
		UrgencyKeywords:    matchAll(caser, folded, UrgencyKeywords),
		ChurnKeywords:      matchAll(caser, folded, ChurnKeywords),
		CompetitorMentions: matchAll(caser, folded, e.competitors),
		KeyPhrases:         keyPhrases(folded, maxKeyPhrases),
	}
	signals.Entities = extractEntities(text, signals.CompetitorMentions)

	return signals
}

// matchAll returns every keyword that occurs in folded text, once each,
// in keyword list order.
func matchAll(caser cases.Caser, folded string, keywords []string) []string {
	var found []string

	for _, kw := range keywords {
		if strings.Contains(folded, caser.String(kw)) {
			found = append(found, kw)
		}
	}

	return found
}
