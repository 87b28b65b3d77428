// Package draft is an offline generator. It fills a plain template with the collected
// facts so the whole pipeline can run without network access or API keys.
package draft

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/aretw0/docket/pkg/prompt"
)

const defaultTemplate = `{{- if .Name }}From: {{ .Name }}
{{ end -}}
{{- if .Address }}Address: {{ .Address }}
{{ end -}}
{{- if .Subject }}Subject: {{ .Subject }}
{{ end }}
{{ .Label }}
{{ range .Facts }}
{{ .Label }}: {{ .Value }}
{{- end }}

{{ .Text }}
`

type fact struct {
	Label string
	Value string
}

type data struct {
	Kind    domain.DocumentKind
	Label   string
	Name    string
	Address string
	Subject string
	Text    string
	Facts   []fact
}

// Generator implements ports.Generator and ports.InfoChecker without a model.
type Generator struct {
	tmpl *template.Template
}

// New parses src, or the built-in template when src is empty.
func New(src string) (*Generator, error) {
	if strings.TrimSpace(src) == "" {
		src = defaultTemplate
	}
	tmpl, err := template.New("draft").Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("draft: parse template: %w", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// Generate renders the template. It never calls out of process.
func (g *Generator) Generate(ctx context.Context, req ports.GenerationRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d := data{
		Kind:    req.Kind,
		Label:   req.Label,
		Name:    req.Facts.FirstOf(append([]string{domain.FactIssuedTo}, domain.NameAliases...)...),
		Address: req.Facts.FirstOf(domain.AddressAliases...),
		Subject: req.Facts.FirstOf(domain.FactSubject),
		Text:    strings.TrimSpace(req.Text),
	}
	if d.Label == "" {
		d.Label = string(req.Kind)
	}
	skip := map[string]bool{domain.FactSubject: true, domain.FactIssuedTo: true}
	for _, k := range append(append([]string{}, domain.NameAliases...), domain.AddressAliases...) {
		skip[k] = true
	}
	for _, k := range req.Facts.Keys() {
		if skip[k] || !req.Facts.Has(k) {
			continue
		}
		d.Facts = append(d.Facts, fact{Label: prompt.Label(k), Value: strings.TrimSpace(req.Facts[k])})
	}

	var b strings.Builder
	if err := g.tmpl.Execute(&b, d); err != nil {
		return "", fmt.Errorf("draft: execute template: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

// NeedsMoreInfo never asks; the checklist already guarantees the required facts.
func (g *Generator) NeedsMoreInfo(ctx context.Context, kind domain.DocumentKind, text string) (string, error) {
	return "", nil
}
