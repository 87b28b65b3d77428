package docket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/docket/internal/logging"
	"github.com/aretw0/docket/internal/runtime"
	"github.com/aretw0/docket/pkg/adapters/draft"
	"github.com/aretw0/docket/pkg/adapters/memory"
	"github.com/aretw0/docket/pkg/adapters/pdf"
	"github.com/aretw0/docket/pkg/catalog"
	"github.com/aretw0/docket/pkg/conversation"
	"github.com/aretw0/docket/pkg/domain"
	"github.com/aretw0/docket/pkg/extract"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/aretw0/docket/pkg/session"
)

// Version is the release of the docket module.
const Version = "0.4.0"

// Assistant is the high-level entry point for the docket library.
// It wires a catalog, an extractor, the collection machine and the orchestrator
// with in-memory defaults that options can replace.
type Assistant struct {
	orch      *conversation.Orchestrator
	catalog   *catalog.Catalog
	store     ports.SessionStore
	generator ports.Generator
	renderer  ports.Renderer
	policy    extract.PurposePolicy
	delegated bool
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Assistant.
type Option func(*Assistant)

// WithCatalog replaces the built-in document catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(a *Assistant) {
		a.catalog = c
	}
}

// WithStore sets the session store (default: in memory).
func WithStore(s ports.SessionStore) Option {
	return func(a *Assistant) {
		a.store = s
	}
}

// WithGenerator sets the generation backend (default: the offline draft template).
func WithGenerator(g ports.Generator) Option {
	return func(a *Assistant) {
		a.generator = g
	}
}

// WithRenderer sets the document renderer (default: PDF).
func WithRenderer(r ports.Renderer) Option {
	return func(a *Assistant) {
		a.renderer = r
	}
}

// WithPurposePolicy controls when free text is kept as the document purpose.
func WithPurposePolicy(p extract.PurposePolicy) Option {
	return func(a *Assistant) {
		a.policy = p
	}
}

// WithDelegatedQuestions lets the generator decide when enough is known.
// It needs a generator that implements ports.InfoChecker.
func WithDelegatedQuestions() Option {
	return func(a *Assistant) {
		a.delegated = true
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(a *Assistant) {
		a.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

// New initializes an Assistant.
func New(opts ...Option) (*Assistant, error) {
	a := &Assistant{
		policy: extract.PurposeWhenUnmatched,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.catalog == nil {
		a.catalog = catalog.Default()
	}
	if a.store == nil {
		a.store = memory.NewStore()
	}
	if a.generator == nil {
		g, err := draft.New("")
		if err != nil {
			return nil, err
		}
		a.generator = g
	}
	if a.renderer == nil {
		a.renderer = pdf.New("docket " + Version)
	}

	var strategy runtime.Strategy = runtime.Checklist{Catalog: a.catalog}
	if a.delegated {
		checker, _ := a.generator.(ports.InfoChecker)
		strategy = runtime.Delegated{Checker: checker, Logger: a.logger}
	}

	ex := extract.New(extract.WithPurposePolicy(a.policy), extract.WithLogger(a.logger))
	machine := runtime.NewMachine(a.catalog, ex, runtime.WithStrategy(strategy), runtime.WithLogger(a.logger))
	sessions := session.NewManager(a.store, session.WithLogger(a.logger))

	a.orch = conversation.New(sessions, machine, a.generator, a.renderer,
		conversation.WithHooks(a.hooks),
		conversation.WithLogger(a.logger),
	)
	return a, nil
}

// Orchestrator exposes the underlying turn orchestrator, for channel adapters.
func (a *Assistant) Orchestrator() *conversation.Orchestrator {
	return a.orch
}

// Catalog returns the catalog in use.
func (a *Assistant) Catalog() *catalog.Catalog {
	return a.catalog
}

// Reply is everything one turn sent back to the user.
type Reply struct {
	Outcome   conversation.Outcome
	Texts     []string
	Artifacts []domain.Artifact
}

// Send handles one user message and collects the replies instead of delivering them.
func (a *Assistant) Send(ctx context.Context, sessionID, text string) (*Reply, error) {
	c := &collector{}
	out, err := a.orch.HandleTurn(ctx, conversation.Turn{SessionID: sessionID, Text: text}, c)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return &Reply{Outcome: out, Texts: c.texts, Artifacts: c.artifacts}, nil
}

type collector struct {
	mu        sync.Mutex
	texts     []string
	artifacts []domain.Artifact
}

func (c *collector) SendText(_ context.Context, _ string, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	return nil
}

func (c *collector) SendArtifact(_ context.Context, _ string, a domain.Artifact) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifacts = append(c.artifacts, a)
	return nil
}
