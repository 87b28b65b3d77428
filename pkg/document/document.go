// Package document holds the page layout shared by the renderers: the header
// decoded from the collected facts, the dated title block, the classified body
// paragraphs and the signature block.
package document

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

const (
	// DateLayout is the date printed in the header.
	DateLayout = "02/01/2006"
	// StampLayout is the timestamp used in file names.
	StampLayout = "20060102_150405"
	// SignatureRule is the line drawn above the signature caption.
	SignatureRule = "______________________________"
)

// Header is the subset of facts printed above the body.
type Header struct {
	FullName         string `mapstructure:"full_name"`
	ApplicantName    string `mapstructure:"applicant_name"`
	Address          string `mapstructure:"address"`
	ApplicantAddress string `mapstructure:"applicant_address"`
}

// DecodeHeader picks the header fields out of facts. Unknown keys are ignored.
func DecodeHeader(facts domain.Facts) (Header, error) {
	var h Header
	if err := mapstructure.Decode(map[string]string(facts), &h); err != nil {
		return Header{}, fmt.Errorf("decode header: %w", err)
	}
	return h, nil
}

// Name prefers full_name over applicant_name.
func (h Header) Name() string {
	return firstNonBlank(h.FullName, h.ApplicantName)
}

// AddressLine prefers address over applicant_address.
func (h Header) AddressLine() string {
	return firstNonBlank(h.Address, h.ApplicantAddress)
}

// Style is how a body paragraph is set.
type Style int

const (
	StyleBody Style = iota
	// StyleHeading is a bold address line (To:, From:).
	StyleHeading
	// StyleEmphasis is a bold, fully emphasised line (Subject:).
	StyleEmphasis
)

// Paragraph is one non-empty line of generated text.
type Paragraph struct {
	Text  string
	Style Style
}

// Classify returns the style of a trimmed line.
func Classify(line string) Style {
	switch {
	case strings.HasPrefix(line, "To:"), strings.HasPrefix(line, "From:"):
		return StyleHeading
	case strings.HasPrefix(line, "Subject:"):
		return StyleEmphasis
	}
	return StyleBody
}

// Layout is a renderer-agnostic description of one document page flow.
type Layout struct {
	Title      string
	Name       string
	Address    string
	Date       string
	Paragraphs []Paragraph
}

// Build lays out a render request. The request facts are only read.
func Build(req ports.RenderRequest) (Layout, error) {
	h, err := DecodeHeader(req.Facts)
	if err != nil {
		return Layout{}, err
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	l := Layout{
		Title:   strings.ToUpper(strings.TrimSpace(req.Title)),
		Name:    h.Name(),
		Address: h.AddressLine(),
		Date:    date.Format(DateLayout),
	}
	for _, line := range strings.Split(req.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		l.Paragraphs = append(l.Paragraphs, Paragraph{Text: line, Style: Classify(line)})
	}
	return l, nil
}

// Filename derives the base file name for an artifact, without extension.
func Filename(kind domain.DocumentKind, at time.Time) string {
	stamp := at.Format(StampLayout)
	if kind.IsGeneral() || kind == "" {
		return "chat_response_" + stamp
	}
	return string(kind) + "_" + stamp
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
