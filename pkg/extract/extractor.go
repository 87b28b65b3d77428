package extract

import (
	"log/slog"
	"strings"

	"github.com/aretw0/docket/internal/logging"
	"github.com/aretw0/docket/pkg/domain"
)

// PurposePolicy decides when the whole text is recorded as the purpose.
type PurposePolicy string

const (
	// PurposeAlways records the text whenever the session has no purpose yet.
	PurposeAlways PurposePolicy = "always"
	// PurposeWhenUnmatched records it only when no strong rule matched the text.
	PurposeWhenUnmatched PurposePolicy = "unmatched"
	// PurposeNever disables the fallback.
	PurposeNever PurposePolicy = "never"
)

// ParsePurposePolicy maps a configuration value to a policy.
func ParsePurposePolicy(s string) (PurposePolicy, bool) {
	switch p := PurposePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PurposeAlways, PurposeWhenUnmatched, PurposeNever:
		return p, true
	case "":
		return PurposeWhenUnmatched, true
	}
	return "", false
}

// Request is one block of text to mine.
type Request struct {
	Text string
	// Kind is the active document kind. Name, address and purpose extraction are kind-agnostic.
	Kind domain.DocumentKind
	// Known is the fact set already recorded for the session. It is not modified.
	Known domain.Facts
	// Solicited is the field the text answers, if any. The purpose fallback is skipped for answers.
	Solicited string
}

// Extractor applies the name and address rules and the purpose fallback.
type Extractor struct {
	names       []Rule
	addresses   []Rule
	nameKeys    []string
	addressKeys []string
	purpose     PurposePolicy
	logger      *slog.Logger
}

// Option configures the Extractor.
type Option func(*Extractor)

// WithPurposePolicy sets the purpose fallback policy.
func WithPurposePolicy(p PurposePolicy) Option {
	return func(e *Extractor) {
		e.purpose = p
	}
}

// WithNameRules replaces the name rules.
func WithNameRules(rules []Rule) Option {
	return func(e *Extractor) {
		e.names = rules
	}
}

// WithAddressRules replaces the address rules.
func WithAddressRules(rules []Rule) Option {
	return func(e *Extractor) {
		e.addresses = rules
	}
}

// WithLogger configures a logger for rule hits.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor with the default rules.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		names:       NameRules(),
		addresses:   AddressRules(),
		nameKeys:    domain.NameAliases,
		addressKeys: domain.AddressAliases,
		purpose:     PurposeWhenUnmatched,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the facts found in req.Text. Absent keys mean "not found".
func (e *Extractor) Extract(req Request) domain.Facts {
	out := make(domain.Facts)
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return out
	}

	matched := false
	if name, rule, ok := firstRule(e.names, text); ok {
		fanOut(out, e.nameKeys, name)
		matched = matched || !rule.Weak
		e.logger.Debug("name extracted", "rule", rule.Name, "weak", rule.Weak, "kind", req.Kind)
	}
	if address, rule, ok := firstRule(e.addresses, text); ok {
		fanOut(out, e.addressKeys, address)
		matched = matched || !rule.Weak
		e.logger.Debug("address extracted", "rule", rule.Name, "weak", rule.Weak, "kind", req.Kind)
	}

	if e.wantsPurpose(req, matched) {
		out[domain.FactPurpose] = text
	}
	return out
}

func (e *Extractor) wantsPurpose(req Request, matched bool) bool {
	if req.Solicited != "" || req.Known.Has(domain.FactPurpose) {
		return false
	}
	switch e.purpose {
	case PurposeAlways:
		return true
	case PurposeWhenUnmatched:
		return !matched
	}
	return false
}

func fanOut(out domain.Facts, keys []string, value string) {
	for _, k := range keys {
		out[k] = value
	}
}
