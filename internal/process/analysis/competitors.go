package analysis

import (
	"strings"

	"golang.org/x/text/cases"
)

// MergeCompetitors concatenates NLP and AI competitor names and drops
// duplicates under Unicode case folding. The first spelling seen is kept and
// NLP names come first.
func MergeCompetitors(nlp, ai []string) []string {
	caser := cases.Fold()
	seen := make(map[string]struct{}, len(nlp)+len(ai))
	out := make([]string, 0, len(nlp)+len(ai))

	for _, list := range [][]string{nlp, ai} {
		for _, name := range list {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}

			key := caser.String(name)
			if _, ok := seen[key]; ok {
				continue
			}

			seen[key] = struct{}{}
			out = append(out, name)
		}
	}

	return out
}
