// Package extract mines structured facts out of free-form user text.
//
// Extraction is an ordered list of rules per fact. Rules are evaluated in order and the
// first accepted capture wins; later rules are deliberately lower priority. A miss is
// the absence of a key, never an error.
package extract

import (
	"regexp"
	"strings"
)

// Rule is one pattern with its acceptance check.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	// Accept validates the trimmed capture. Nil accepts any non-empty capture.
	Accept func(capture string) bool
	// Weak rules still record their capture but do not count as a match for the
	// purpose fallback.
	Weak bool
}

// Match returns the accepted capture of the first group.
func (r Rule) Match(text string) (string, bool) {
	m := r.Pattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	capture := strings.TrimSpace(m[1])
	if capture == "" {
		return "", false
	}
	if r.Accept != nil && !r.Accept(capture) {
		return "", false
	}
	return capture, true
}

// FirstMatch evaluates rules in order and stops at the first acceptance.
func FirstMatch(rules []Rule, text string) (value string, rule string, ok bool) {
	v, r, ok := firstRule(rules, text)
	return v, r.Name, ok
}

func firstRule(rules []Rule, text string) (string, Rule, bool) {
	for _, r := range rules {
		if v, ok := r.Match(text); ok {
			return v, r, true
		}
	}
	return "", Rule{}, false
}

// MinTokens accepts captures with at least n whitespace-separated tokens.
func MinTokens(n int) func(string) bool {
	return func(s string) bool {
		return len(strings.Fields(s)) >= n
	}
}

// NameRules returns the name detection rules in priority order.
func NameRules() []Rule {
	twoTokens := MinTokens(2)
	return []Rule{
		{
			Name:    "self_identification",
			Pattern: regexp.MustCompile(`(?i)(?:my name is|i am|name:?)\s*([A-Za-z\s]+)`),
			Accept:  twoTokens,
		},
		{
			Name:    "capitalized_words",
			Pattern: regexp.MustCompile(`(?i)([A-Z][a-z]+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
			Accept:  twoTokens,
			// Case-insensitive, so any run of two words qualifies.
			Weak: true,
		},
		{
			Name:    "legal_declarant",
			Pattern: regexp.MustCompile(`(?i)I,?\s+([A-Z][a-z]+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)`),
			Accept:  twoTokens,
		},
	}
}

// AddressRules returns the address detection rules in priority order.
func AddressRules() []Rule {
	return []Rule{
		{
			Name:    "introduced_with_postal_code",
			Pattern: regexp.MustCompile(`(?i)(?:address|live at|residing at|from):?\s*([^.\n]+(?:\d{6}|\d{3}\s*\d{3})[^.\n]*)`),
		},
		{
			Name:    "number_street_postal_code",
			Pattern: regexp.MustCompile(`(?i)(\d+[^,\n]+,[^,\n]+,\s*\d{6})`),
		},
		{
			Name:    "loose_street_city_postal_code",
			Pattern: regexp.MustCompile(`(?i)(?:address|live|residing).*?([^,\n]+,\s*[^,\n]+,\s*\d{6})`),
		},
	}
}
