package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/docket"
	"github.com/aretw0/docket/internal/config"
	"github.com/aretw0/docket/internal/runtime"
	"github.com/aretw0/docket/pkg/adapters/cache"
	"github.com/aretw0/docket/pkg/adapters/draft"
	"github.com/aretw0/docket/pkg/adapters/file"
	"github.com/aretw0/docket/pkg/adapters/gemini"
	"github.com/aretw0/docket/pkg/adapters/memory"
	"github.com/aretw0/docket/pkg/adapters/oaichat"
	"github.com/aretw0/docket/pkg/adapters/pdf"
	"github.com/aretw0/docket/pkg/adapters/png"
	"github.com/aretw0/docket/pkg/adapters/process"
	redisstore "github.com/aretw0/docket/pkg/adapters/redis"
	"github.com/aretw0/docket/pkg/catalog"
	"github.com/aretw0/docket/pkg/conversation"
	"github.com/aretw0/docket/pkg/extract"
	"github.com/aretw0/docket/pkg/observability"
	"github.com/aretw0/docket/pkg/persistence/middleware"
	"github.com/aretw0/docket/pkg/ports"
	"github.com/aretw0/docket/pkg/session"
)

// App is the fully wired assistant shared by every command.
type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	Catalog      *catalog.Catalog
	Store        ports.SessionStore
	Sessions     *session.Manager
	Machine      *runtime.Machine
	Generator    ports.Generator
	Renderer     ports.Renderer
	Metrics      *observability.Metrics
	Orchestrator *conversation.Orchestrator

	closers []func() error
}

// Build wires the configured adapters into an orchestrator.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	app := &App{Config: cfg, Logger: logger}

	cat, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		return nil, err
	}
	app.Catalog = cat

	store, locker, err := app.newStore()
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Store = store

	sessOpts := []session.Option{
		session.WithLogger(logger),
		session.WithLockTTL(cfg.Store.LockTTL),
	}
	if locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(locker))
	}
	app.Sessions = session.NewManager(store, sessOpts...)

	gen, err := newGenerator(ctx, cfg.Generator, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Generator = gen

	ex := extract.New(
		extract.WithPurposePolicy(cfg.Purpose()),
		extract.WithLogger(logger),
	)
	app.Machine = runtime.NewMachine(cat, ex,
		runtime.WithStrategy(newStrategy(cfg.Dialogue.Strategy, cat, gen, logger)),
		runtime.WithLogger(logger),
	)

	app.Renderer = newRenderer(cfg.Renderer.Format)
	app.Metrics = observability.NewMetrics(true)

	app.Orchestrator = conversation.New(app.Sessions, app.Machine, gen, app.Renderer,
		conversation.WithTimeouts(cfg.Generator.Timeout, cfg.Renderer.Timeout),
		conversation.WithHooks(observability.Combine(app.Metrics.Hooks(nil), createDebugHooks(logger))),
		conversation.WithLogger(logger),
	)

	logger.Debug("assistant ready",
		"store", cfg.Store.Driver,
		"generator", cfg.Generator.Provider,
		"renderer", app.Renderer.Format().Name,
		"strategy", app.Machine.Strategy().Name(),
	)
	return app, nil
}

// Close releases backend connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// InspectStore is a read-only view of the sessions with personal data masked.
func (a *App) InspectStore() (ports.SessionStore, error) {
	keys := a.Config.RedactKeys
	if len(keys) == 0 {
		keys = middleware.DefaultRedactKeys
	}
	view, err := middleware.NewRedactingView(keys)
	if err != nil {
		return nil, fmt.Errorf("invalid redact keys: %w", err)
	}
	return middleware.Chain(a.Store, view), nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func (a *App) newStore() (ports.SessionStore, ports.DistributedLocker, error) {
	sc := a.Config.Store

	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
	)
	switch sc.Driver {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StoreCache:
		store = cache.New(sc.IdleTTL, cache.DefaultCleanupInterval)
	case config.StoreFile:
		store = file.New(sc.Path)
	case config.StoreRedis:
		opts := []redisstore.Option{redisstore.WithTTL(sc.TTL)}
		if sc.Prefix != "" {
			opts = append(opts, redisstore.WithPrefix(sc.Prefix))
		}
		rs := redisstore.New(sc.RedisAddr, sc.RedisPassword, sc.RedisDB, opts...)
		a.closers = append(a.closers, rs.Close)
		store = rs
		locker = redisstore.NewLocker(rs.Client(), rs.Prefix())
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", sc.Driver)
	}

	if sc.EncryptionKey == "" {
		return store, locker, nil
	}
	enc := middleware.EncryptionConfig{}
	var err error
	if enc.ActiveKey, err = middleware.ParseKey(sc.EncryptionKey); err != nil {
		return nil, nil, err
	}
	for _, k := range sc.FallbackKeys {
		b, err := middleware.ParseKey(k)
		if err != nil {
			return nil, nil, err
		}
		enc.FallbackKeys = append(enc.FallbackKeys, b)
	}
	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, nil, err
	}
	return middleware.Chain(store, mw), locker, nil
}

func newGenerator(ctx context.Context, gc config.GeneratorConfig, logger *slog.Logger) (ports.Generator, error) {
	switch gc.Provider {
	case config.ProviderGroq, config.ProviderOpenAI:
		oc := oaichat.Config{
			BaseURL:     gc.BaseURL,
			APIKey:      gc.APIKey,
			Model:       gc.Model,
			Temperature: gc.Temperature,
			MaxTokens:   gc.MaxTokens,
			Timeout:     gc.Timeout,
		}
		if gc.Provider == config.ProviderGroq {
			oc.BaseURL = orDefault(oc.BaseURL, oaichat.GroqBaseURL)
			oc.Model = orDefault(oc.Model, oaichat.DefaultGroqModel)
		} else {
			oc.BaseURL = orDefault(oc.BaseURL, oaichat.OpenAIBaseURL)
			oc.Model = orDefault(oc.Model, oaichat.DefaultOpenAIModel)
		}
		return oaichat.New(oc, oaichat.WithLogger(logger))
	case config.ProviderGemini:
		return gemini.New(ctx, gemini.Config{
			APIKey:      gc.APIKey,
			Model:       gc.Model,
			Temperature: float32(gc.Temperature),
			MaxTokens:   int32(gc.MaxTokens),
			BaseURL:     gc.BaseURL,
		})
	case config.ProviderProcess:
		return process.New(gc.Process, process.WithLogger(logger))
	case config.ProviderDraft:
		return draft.New(gc.Template)
	}
	return nil, fmt.Errorf("unknown generator %q", gc.Provider)
}

func newStrategy(name string, cat *catalog.Catalog, gen ports.Generator, logger *slog.Logger) runtime.Strategy {
	if name == (runtime.Delegated{}).Name() {
		checker, _ := gen.(ports.InfoChecker)
		return runtime.Delegated{Checker: checker, Logger: logger}
	}
	return runtime.Checklist{Catalog: cat}
}

func newRenderer(format string) ports.Renderer {
	if format == config.FormatPNG {
		return png.New()
	}
	return pdf.New("docket " + docket.Version)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
