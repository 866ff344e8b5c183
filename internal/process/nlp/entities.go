package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/inovaitive/revu/internal/core/domain"
)

var (
	orgPattern     = regexp.MustCompile(`\b[A-Z][\w&-]*(?:\s+[A-Z][\w&-]*)*\s+(?:Inc|Corp|Corporation|Ltd|LLC|GmbH|Co)\b\.?`)
	personPattern  = regexp.MustCompile(`\b[A-Z][a-z]+\s+[A-Z][a-z]+\b`)
	titledPattern  = regexp.MustCompile(`\b(?:Mr|Mrs|Ms|Dr)\.?\s+[A-Z][a-z]+\b`)
	productPattern = regexp.MustCompile(`\b[A-Z][A-Za-z0-9]+\s+(?:app|API|plugin|integration|extension|SDK|dashboard)\b`)
	camelPattern   = regexp.MustCompile(`\b[a-z]*[A-Z]?[a-z]+[A-Z][A-Za-z0-9]*\b`)
	wordPattern    = regexp.MustCompile(`[\p{L}\p{N}']+`)
)

// Capitalized sentence openers that personPattern would otherwise take for a first name.
var notFirstNames = map[string]struct{}{
	"The": {}, "This": {}, "That": {}, "These": {}, "Your": {}, "Our": {}, "My": {},
	"We": {}, "I": {}, "It": {}, "Please": {}, "Since": {}, "After": {}, "When": {},
	"Every": {}, "Thanks": {}, "Hello": {}, "Hi": {}, "Dear": {}, "Great": {},
}

func extractEntities(text string, competitors []string) domain.Entities {
	var ents domain.Entities

	seen := make(map[string]bool)

	add := func(list *[]string, kind, value string) {
		value = strings.TrimSpace(strings.TrimSuffix(value, "."))
		key := kind + ":" + strings.ToLower(value)

		if value == "" || seen[key] {
			return
		}

		seen[key] = true
		*list = append(*list, value)
	}

	for _, c := range competitors {
		add(&ents.Organizations, "org", c)
	}

	orgSpans := orgPattern.FindAllString(text, -1)
	for _, m := range orgSpans {
		add(&ents.Organizations, "org", m)
	}

	for _, m := range productPattern.FindAllString(text, -1) {
		add(&ents.Products, "product", m)
	}

	for _, m := range camelPattern.FindAllString(text, -1) {
		add(&ents.Products, "product", m)
	}

	for _, m := range titledPattern.FindAllString(text, -1) {
		add(&ents.Persons, "person", m)
	}

	for _, m := range personPattern.FindAllString(text, -1) {
		first, _, _ := strings.Cut(m, " ")
		if _, skip := notFirstNames[first]; skip || insideAny(m, orgSpans) {
			continue
		}

		add(&ents.Persons, "person", m)
	}

	return ents
}

func insideAny(s string, spans []string) bool {
	for _, span := range spans {
		if strings.Contains(span, s) {
			return true
		}
	}

	return false
}

// keyPhrases returns up to limit distinct two-word phrases made of
// consecutive non-stopwords, in order of first appearance.
func keyPhrases(folded string, limit int) []string {
	words := wordPattern.FindAllString(folded, -1)

	var phrases []string

	seen := make(map[string]bool)

	for i := 0; i+1 < len(words) && len(phrases) < limit; i++ {
		a, b := words[i], words[i+1]
		if isStopWord(a) || isStopWord(b) || !hasLetter(a) || !hasLetter(b) {
			continue
		}

		phrase := a + " " + b
		if len(phrase) <= 5 || seen[phrase] {
			continue
		}

		seen[phrase] = true
		phrases = append(phrases, phrase)
	}

	return phrases
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}

	return false
}
