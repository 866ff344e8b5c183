package domain

// Entities groups named entities found in feedback text.
type Entities struct {
	Organizations []string `json:"organizations"`
	Products      []string `json:"products"`
	Persons       []string `json:"persons"`
}

// IsEmpty reports whether no entity was detected.
func (e Entities) IsEmpty() bool {
	return len(e.Organizations) == 0 && len(e.Products) == 0 && len(e.Persons) == 0
}

func (e Entities) clone() Entities {
	return Entities{
		Organizations: cloneStrings(e.Organizations),
		Products:      cloneStrings(e.Products),
		Persons:       cloneStrings(e.Persons),
	}
}

// NLPSignals is the keyword and entity preprocessing output for one text.
// UrgencyKeywords keeps one entry per match so its length counts matches.
type NLPSignals struct {
	Entities           Entities `json:"entities"`
	KeyPhrases         []string `json:"keywords"`
	UrgencyKeywords    []string `json:"urgency_keywords"`
	ChurnKeywords      []string `json:"churn_keywords"`
	CompetitorMentions []string `json:"competitor_mentions"`
}

// HasUrgencySignals reports whether any urgency keyword matched.
func (s NLPSignals) HasUrgencySignals() bool {
	return len(s.UrgencyKeywords) > 0
}

// HasChurnSignals reports whether churn keywords or competitor names matched.
func (s NLPSignals) HasChurnSignals() bool {
	return len(s.ChurnKeywords) > 0 || len(s.CompetitorMentions) > 0
}
