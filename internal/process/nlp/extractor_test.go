package nlp

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_UrgencyKeywords(t *testing.T) {
	e := New(nil, nil)

	signals := e.Extract("The app is BROKEN and crashing, this is Urgent!")

	assert.Equal(t, []string{"urgent", "broken", "crash", "crashing"}, signals.UrgencyKeywords)
	assert.True(t, signals.HasUrgencySignals())
	assert.False(t, signals.HasChurnSignals())
}

func TestExtract_ChurnAndCompetitors(t *testing.T) {
	e := New(nil, nil)

	signals := e.Extract("We are considering switching to HubSpot, refund please")

	assert.Equal(t, []string{"switch", "switching", "considering", "refund"}, signals.ChurnKeywords)
	assert.Equal(t, []string{"hubspot"}, signals.CompetitorMentions)
	assert.Contains(t, signals.Entities.Organizations, "hubspot")
	assert.Contains(t, signals.Entities.Products, "HubSpot")
	assert.True(t, signals.HasChurnSignals())
}

func TestExtract_KeywordMatchedOncePerEntry(t *testing.T) {
	e := New(nil, nil)

	signals := e.Extract("urgent urgent urgent")

	assert.Equal(t, []string{"urgent"}, signals.UrgencyKeywords)
}

func TestExtract_EmptyText(t *testing.T) {
	e := New(nil, nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		signals := e.Extract(text)
		assert.Empty(t, signals.UrgencyKeywords)
		assert.Empty(t, signals.ChurnKeywords)
		assert.Empty(t, signals.CompetitorMentions)
		assert.Empty(t, signals.KeyPhrases)
		assert.True(t, signals.Entities.IsEmpty())
	}
}

func TestNew_ConfiguredCompetitors(t *testing.T) {
	e := New([]string{" Acme ", "", "Globex"}, nil)

	require.Equal(t, []string{"Acme", "Globex"}, e.Competitors())

	signals := e.Extract("Moving to ACME next month unless this improves")
	assert.Equal(t, []string{"Acme"}, signals.CompetitorMentions)

	signals = e.Extract("we also evaluated zendesk")
	assert.Empty(t, signals.CompetitorMentions)
}

func TestNew_DefaultCompetitors(t *testing.T) {
	e := New(nil, nil)

	assert.Equal(t, DefaultCompetitors, e.Competitors())

	signals := e.Extract("Our team tracks everything in Jira and Monday.com")
	assert.Equal(t, []string{"monday.com", "jira"}, signals.CompetitorMentions)
}

func TestExtract_Entities(t *testing.T) {
	e := New([]string{"zendesk"}, nil)

	signals := e.Extract("Spoke with John Smith from Acme Corp yesterday. Dr. Adams said the Slack integration fails.")

	assert.Equal(t, []string{"Acme Corp"}, signals.Entities.Organizations)
	assert.Equal(t, []string{"Dr. Adams", "John Smith"}, signals.Entities.Persons)
	assert.Equal(t, []string{"Slack integration"}, signals.Entities.Products)
}

func TestKeyPhrases(t *testing.T) {
	phrases := keyPhrases("export button missing. export button missing again", maxKeyPhrases)

	assert.Equal(t, []string{"export button", "button missing", "missing export"}, phrases)
}

func TestKeyPhrases_Limit(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "widget%c gadget%c ", 'a'+rune(i%26), 'a'+rune((i+1)%26))
	}

	phrases := keyPhrases(b.String(), maxKeyPhrases)

	assert.Len(t, phrases, maxKeyPhrases)
}

func TestExtract_ConcurrentUse(t *testing.T) {
	e := New(nil, nil)
	done := make(chan []string, 8)

	for i := 0; i < 8; i++ {
		go func() {
			done <- e.Extract("checkout is down, asap please").UrgencyKeywords
		}()
	}

	for i := 0; i < 8; i++ {
		assert.Equal(t, []string{"asap", "down"}, <-done)
	}
}
