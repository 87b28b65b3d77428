// Package gemini is a generator backed by Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/aretw0/docket/pkg/prompt"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when Gemini produces no text.
var ErrEmptyResponse = errors.New("gemini: empty response")

// Config selects the model and sampling parameters.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int32
	// BaseURL overrides the API endpoint (tests, proxies).
	BaseURL    string
	HTTPClient *http.Client
}

// Generator implements ports.Generator and ports.InfoChecker.
type Generator struct {
	client *genai.Client
	cfg    Config
}

// New creates a Gemini client.
func New(ctx context.Context, cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Generator{client: client, cfg: cfg}, nil
}

// Generate produces the document prose.
func (g *Generator) Generate(ctx context.Context, req ports.GenerationRequest) (string, error) {
	out, err := g.complete(ctx, prompt.System(req), prompt.User(req), g.cfg.Temperature, g.cfg.MaxTokens)
	if err != nil {
		return "", fmt.Errorf("gemini generate %s: %w", req.Kind, err)
	}
	return out, nil
}

// NeedsMoreInfo runs the GENERATE/QUESTION check.
func (g *Generator) NeedsMoreInfo(ctx context.Context, kind domain.DocumentKind, text string) (string, error) {
	out, err := g.complete(ctx, prompt.InfoCheckSystem(kind), prompt.InfoCheckUser(kind, text), 0.1, 200)
	if err != nil {
		return "", fmt.Errorf("gemini info check %s: %w", kind, err)
	}
	return prompt.ParseInfoCheck(out), nil
}

func (g *Generator) complete(ctx context.Context, system, user string, temperature float32, maxTokens int32) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx,
		g.cfg.Model,
		genai.Text(user),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
			Temperature:       genai.Ptr(temperature),
			MaxOutputTokens:   maxTokens,
		},
	)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
