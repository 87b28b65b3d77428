// Package process generates documents by running a local, allow-listed command.
//
// The command receives a JSON request on stdin and the same data as
// environment variables (DOCKET_MODE, DOCKET_KIND, DOCKET_SYSTEM, DOCKET_PROMPT
// and DOCKET_ARG_<FACT>). It prints the document text on stdout. In check mode
// it prints GENERATE or "QUESTION: <text>".
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/docket/internal/logging"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/aretw0/docket/pkg/prompt"
)

// Modes passed in DOCKET_MODE.
const (
	ModeGenerate = "generate"
	ModeCheck    = "check"
)

// ErrEmptyOutput is returned when the command succeeds but prints nothing.
var ErrEmptyOutput = errors.New("process produced no output")

// Config names the command to run. Args are fixed; user data never reaches the command line.
type Config struct {
	Command string            `yaml:"command" json:"command"`
	Args    []string          `yaml:"args" json:"args"`
	Env     map[string]string `yaml:"env" json:"env"`
	Dir     string            `yaml:"dir" json:"dir"`
}

// Request is the JSON document written to stdin.
type Request struct {
	Mode         string              `json:"mode"`
	Kind         domain.DocumentKind `json:"kind"`
	Label        string              `json:"label,omitempty"`
	Instructions string              `json:"instructions,omitempty"`
	System       string              `json:"system"`
	Prompt       string              `json:"prompt"`
	Text         string              `json:"text"`
	Facts        domain.Facts        `json:"facts,omitempty"`
}

// Generator implements ports.Generator and ports.InfoChecker.
type Generator struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// New creates a process generator.
func New(cfg Config, opts ...Option) (*Generator, error) {
	if strings.TrimSpace(cfg.Command) == "" {
		return nil, errors.New("process: command is required")
	}
	g := &Generator{cfg: cfg, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generator) Generate(ctx context.Context, req ports.GenerationRequest) (string, error) {
	return g.run(ctx, Request{
		Mode:         ModeGenerate,
		Kind:         req.Kind,
		Label:        req.Label,
		Instructions: req.Instructions,
		System:       prompt.System(req),
		Prompt:       prompt.User(req),
		Text:         req.Text,
		Facts:        req.Facts,
	})
}

func (g *Generator) NeedsMoreInfo(ctx context.Context, kind domain.DocumentKind, text string) (string, error) {
	out, err := g.run(ctx, Request{
		Mode:   ModeCheck,
		Kind:   kind,
		System: prompt.InfoCheckSystem(kind),
		Prompt: prompt.InfoCheckUser(kind, text),
		Text:   text,
	})
	if err != nil {
		return "", err
	}
	return prompt.ParseInfoCheck(out), nil
}

func (g *Generator) run(ctx context.Context, req Request) (string, error) {
	input, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("process: encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, g.cfg.Command, g.cfg.Args...)
	cmd.Dir = g.cfg.Dir
	cmd.Stdin = bytes.NewReader(input)
	cmd.Env = append(cmd.Environ(), environment(g.cfg.Env, req)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("process %s: %w", g.cfg.Command, ctxErr)
		}
		return "", fmt.Errorf("process %s: %w: %s", g.cfg.Command, err, strings.TrimSpace(stderr.String()))
	}
	g.logger.Debug("process finished", "command", g.cfg.Command, "mode", req.Mode, "duration", time.Since(start))

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("process %s: %w", g.cfg.Command, ErrEmptyOutput)
	}
	return out, nil
}

func environment(extra map[string]string, req Request) []string {
	env := []string{
		"DOCKET_MODE=" + req.Mode,
		"DOCKET_KIND=" + string(req.Kind),
		"DOCKET_SYSTEM=" + req.System,
		"DOCKET_PROMPT=" + req.Prompt,
	}
	keys := make([]string, 0, len(req.Facts))
	for k := range req.Facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, "DOCKET_ARG_"+envName(k)+"="+req.Facts[k])
	}
	names := make([]string, 0, len(extra))
	for k := range extra {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		env = append(env, k+"="+extra[k])
	}
	return env
}

// envName upper-cases key and replaces anything outside [A-Z0-9] with '_'.
func envName(key string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
