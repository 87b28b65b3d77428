package extract_test

import (
	"regexp"
	"testing"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/extract"
	"github.com/stretchr/testify/assert"
)

func TestExtract_NameFansOutToEveryAlias(t *testing.T) {
	e := extract.New()

	facts := e.Extract(extract.Request{Text: "My name is Jane Doe", Kind: domain.KindAffidavit})

	for _, key := range []string{"full_name", "applicant_name", "sender_name", "recipient_name"} {
		assert.Equal(t, "Jane Doe", facts[key], key)
	}
	assert.NotContains(t, facts, "address")
	assert.NotContains(t, facts, "purpose", "a matched text is not a purpose under the default policy")
}

func TestExtract_AddressFansOutToEveryAlias(t *testing.T) {
	e := extract.New()

	facts := e.Extract(extract.Request{Text: "I live at 123 Main Street, Delhi 110001"})

	for _, key := range []string{"address", "applicant_address", "sender_address"} {
		assert.Equal(t, "123 Main Street, Delhi 110001", facts[key], key)
	}
}

func TestExtract_AddressRules(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"Introduced", "Address: 45 Park Road, Mumbai 400 001", "45 Park Road, Mumbai 400 001"},
		{"Bare Shape", "Flat 12B Green Park, New Delhi, 110016", "12B Green Park, New Delhi, 110016"},
		{"Loose", "residing near the lake, Green Park, Delhi, 110016", "Green Park, Delhi, 110016"},
		{"No Postal Code", "I live at the old mill", ""},
	}
	e := extract.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := e.Extract(extract.Request{Text: tt.text})
			assert.Equal(t, tt.want, facts["address"])
		})
	}
}

func TestExtract_FullIntroduction(t *testing.T) {
	e := extract.New()

	facts := e.Extract(extract.Request{
		Text: "I need an affidavit for address proof. My name is John Doe, I live at 123 Main Street, Delhi 110001",
		Kind: domain.KindAffidavit,
	})

	assert.Equal(t, "John Doe", facts["full_name"])
	assert.Equal(t, "123 Main Street, Delhi 110001", facts["address"])
}

func TestExtract_CaseInsensitive(t *testing.T) {
	e := extract.New()
	facts := e.Extract(extract.Request{Text: "MY NAME IS JANE DOE"})
	assert.Equal(t, "JANE DOE", facts["full_name"])
}

func TestExtract_SingleTokenNameIsRejected(t *testing.T) {
	rules := []extract.Rule{extract.NameRules()[0]}
	e := extract.New(extract.WithNameRules(rules))

	facts := e.Extract(extract.Request{Text: "name: Jane"})
	assert.NotContains(t, facts, "full_name")
}

func TestFirstMatch_OrderIsPriority(t *testing.T) {
	rules := []extract.Rule{
		{Name: "first", Pattern: regexp.MustCompile(`(?i)call me (\w+ \w+)`), Accept: extract.MinTokens(2)},
		{Name: "second", Pattern: regexp.MustCompile(`(\w+ \w+)`), Accept: extract.MinTokens(2)},
	}

	value, rule, ok := extract.FirstMatch(rules, "hello there, call me Jane Doe")
	assert.True(t, ok)
	assert.Equal(t, "first", rule)
	assert.Equal(t, "Jane Doe", value)

	value, rule, ok = extract.FirstMatch(rules, "hello there")
	assert.True(t, ok)
	assert.Equal(t, "second", rule)
	assert.Equal(t, "hello there", value)
}

func TestFirstMatch_RejectedCaptureFallsThrough(t *testing.T) {
	rules := []extract.Rule{
		{Name: "strict", Pattern: regexp.MustCompile(`name: (\w+)`), Accept: extract.MinTokens(2)},
		{Name: "loose", Pattern: regexp.MustCompile(`name: (\w+)`)},
	}

	_, rule, ok := extract.FirstMatch(rules, "name: Jane")
	assert.True(t, ok)
	assert.Equal(t, "loose", rule)
}

func TestExtract_PurposeFallback(t *testing.T) {
	text := "I need a certificate"

	t.Run("Unmatched Text Becomes Purpose", func(t *testing.T) {
		facts := extract.New().Extract(extract.Request{Text: "  " + text + "  "})
		assert.Equal(t, text, facts["purpose"])
	})

	t.Run("Existing Purpose Is Kept", func(t *testing.T) {
		facts := extract.New().Extract(extract.Request{Text: text, Known: domain.Facts{"purpose": "for travel"}})
		assert.NotContains(t, facts, "purpose")
	})

	t.Run("Solicited Answer Is Not A Purpose", func(t *testing.T) {
		facts := extract.New().Extract(extract.Request{Text: text, Solicited: "address"})
		assert.NotContains(t, facts, "purpose")
	})

	t.Run("Always Policy Records Matched Text", func(t *testing.T) {
		e := extract.New(extract.WithPurposePolicy(extract.PurposeAlways))
		facts := e.Extract(extract.Request{Text: "My name is Jane Doe"})
		assert.Equal(t, "My name is Jane Doe", facts["purpose"])
		assert.Equal(t, "Jane Doe", facts["full_name"])
	})

	t.Run("Never Policy", func(t *testing.T) {
		e := extract.New(extract.WithPurposePolicy(extract.PurposeNever))
		facts := e.Extract(extract.Request{Text: text})
		assert.Empty(t, facts)
	})

	t.Run("Weak Name Match Still Records Purpose", func(t *testing.T) {
		facts := extract.New().Extract(extract.Request{Text: "I need a rental agreement for my flat", Kind: domain.KindCustom})
		assert.Equal(t, "I need a rental agreement for my flat", facts["purpose"])
		assert.Equal(t, "rental agreement for", facts["full_name"])
	})

	t.Run("Strong Name Match Suppresses Purpose", func(t *testing.T) {
		facts := extract.New().Extract(extract.Request{Text: "I am Ravi Kumar"})
		assert.NotContains(t, facts, "purpose")
	})

	t.Run("Strong Address Match Suppresses Purpose", func(t *testing.T) {
		facts := extract.New().Extract(extract.Request{Text: "I live at 123 Main Street, Delhi 110001"})
		assert.NotContains(t, facts, "purpose")
	})
}

func TestNameRules_OnlyBareWordsAreWeak(t *testing.T) {
	for _, r := range extract.NameRules() {
		assert.Equal(t, r.Name == "capitalized_words", r.Weak, r.Name)
	}
	for _, r := range extract.AddressRules() {
		assert.False(t, r.Weak, r.Name)
	}
}

func TestExtract_EmptyText(t *testing.T) {
	assert.Empty(t, extract.New().Extract(extract.Request{Text: "   "}))
}

func TestParsePurposePolicy(t *testing.T) {
	p, ok := extract.ParsePurposePolicy("ALWAYS")
	assert.True(t, ok)
	assert.Equal(t, extract.PurposeAlways, p)

	p, ok = extract.ParsePurposePolicy("")
	assert.True(t, ok)
	assert.Equal(t, extract.PurposeWhenUnmatched, p)

	_, ok = extract.ParsePurposePolicy("sometimes")
	assert.False(t, ok)
}
