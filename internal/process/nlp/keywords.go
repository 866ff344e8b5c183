package nlp

// UrgencyKeywords indicate time-sensitive issues.
var UrgencyKeywords = []string{
	"urgent", "critical", "immediately", "asap", "emergency", "blocking",
	"blocker", "broken", "down", "crash", "crashing", "failed", "failing",
	"not working", "stopped working", "can't use", "cannot use", "unusable",
}

// ChurnKeywords indicate dissatisfaction or intent to leave. Some entries
// are stems ("frustrat") so they match several word forms.
var ChurnKeywords = []string{
	"cancel", "canceling", "cancelling", "switch", "switching", "leave",
	"disappointed", "frustrat", "angry", "unacceptable", "terrible",
	"worst", "horrible", "awful", "useless", "waste", "regret",
	"competitor", "alternative", "looking for", "considering",
	"refund", "money back", "downgrade",
}

// DefaultCompetitors is used when no competitor list is configured.
var DefaultCompetitors = []string{
	"salesforce", "hubspot", "zendesk", "intercom", "freshdesk",
	"zoho", "pipedrive", "monday.com", "asana", "jira", "clickup",
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "been": {},
	"but": {}, "by": {}, "can": {}, "could": {}, "did": {}, "do": {}, "does": {},
	"for": {}, "from": {}, "had": {}, "has": {}, "have": {}, "he": {}, "her": {},
	"him": {}, "his": {}, "how": {}, "i": {}, "if": {}, "in": {}, "into": {}, "is": {},
	"it": {}, "its": {}, "just": {}, "me": {}, "more": {}, "my": {}, "no": {}, "not": {},
	"of": {}, "on": {}, "or": {}, "our": {}, "out": {}, "so": {}, "some": {}, "than": {},
	"that": {}, "the": {}, "their": {}, "them": {}, "then": {}, "there": {}, "these": {},
	"they": {}, "this": {}, "to": {}, "too": {}, "up": {}, "us": {}, "very": {}, "was": {},
	"we": {}, "were": {}, "what": {}, "when": {}, "which": {}, "while": {}, "who": {},
	"why": {}, "will": {}, "with": {}, "would": {}, "you": {}, "your": {}, "i'm": {},
	"it's": {}, "don't": {}, "can't": {}, "really": {}, "also": {}, "all": {}, "any": {},
	"after": {}, "again": {}, "about": {}, "since": {}, "every": {}, "only": {},
}

func isStopWord(w string) bool {
	_, ok := stopWords[w]

	return ok
}
