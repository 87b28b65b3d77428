// Package oaichat is a generator for OpenAI-compatible chat completion APIs
// (Groq, OpenAI and self-hosted servers speaking the same protocol).
package oaichat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/aretw0/docket/internal/logging"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/aretw0/docket/pkg/prompt"
)

// Well-known endpoints.
const (
	GroqBaseURL   = "https://api.groq.com/openai"
	OpenAIBaseURL = "https://api.openai.com"

	DefaultGroqModel   = "llama-3.3-70b-versatile"
	DefaultOpenAIModel = "gpt-4o-mini"

	defaultPath = "/v1/chat/completions"
)

// Config selects the endpoint and sampling parameters.
type Config struct {
	BaseURL     string
	Path        string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration

	// Sampling of the short GENERATE/QUESTION info check.
	CheckTemperature float64
	CheckMaxTokens   int
}

// Client implements ports.Generator and ports.InfoChecker.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the transport. Tests use it to avoid network access.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New validates cfg and fills defaults.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("oaichat: base url required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("oaichat: model required")
	}
	if cfg.Path == "" {
		cfg.Path = defaultPath
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.CheckTemperature <= 0 {
		cfg.CheckTemperature = 0.1
	}
	if cfg.CheckMaxTokens <= 0 {
		cfg.CheckMaxTokens = 200
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Transport: tr},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate produces the document prose.
func (c *Client) Generate(ctx context.Context, req ports.GenerationRequest) (string, error) {
	out, err := c.complete(ctx, chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System(req)},
			{Role: "user", Content: prompt.User(req)},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("oaichat generate %s: %w", req.Kind, err)
	}
	return out, nil
}

// NeedsMoreInfo runs the GENERATE/QUESTION check.
func (c *Client) NeedsMoreInfo(ctx context.Context, kind domain.DocumentKind, text string) (string, error) {
	out, err := c.complete(ctx, chatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.InfoCheckSystem(kind)},
			{Role: "user", Content: prompt.InfoCheckUser(kind, text)},
		},
		Temperature: c.cfg.CheckTemperature,
		MaxTokens:   c.cfg.CheckMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("oaichat info check %s: %w", kind, err)
	}
	return prompt.ParseInfoCheck(out), nil
}

func (c *Client) complete(ctx context.Context, body chatCompletionRequest) (string, error) {
	var resp chatCompletionResponse
	start := time.Now()
	if err := c.doJSON(ctx, http.MethodPost, c.cfg.Path, body, &resp); err != nil {
		return "", err
	}
	c.logger.Debug("chat completion", "model", body.Model, "duration", time.Since(start))

	for _, ch := range resp.Choices {
		if s := strings.TrimSpace(ch.Message.Content); s != "" {
			return s, nil
		}
	}
	return "", ErrEmptyChoice
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
