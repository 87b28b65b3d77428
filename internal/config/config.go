package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/docket/internal/runtime"
	"github.com/aretw0/docket/pkg/adapters/process"
	"github.com/aretw0/docket/pkg/extract"
	"github.com/aretw0/docket/pkg/persistence/middleware"
)

// Environment variables read on top of the YAML file.
const (
	EnvConfig         = "DOCKET_CONFIG"
	EnvLogLevel       = "DOCKET_LOG_LEVEL"
	EnvLogFormat      = "DOCKET_LOG_FORMAT"
	EnvStrategy       = "DOCKET_STRATEGY"
	EnvPurposePolicy  = "DOCKET_PURPOSE_POLICY"
	EnvStore          = "DOCKET_STORE"
	EnvStorePath      = "DOCKET_STORE_PATH"
	EnvRedisAddr      = "DOCKET_REDIS_ADDR"
	EnvRedisPassword  = "DOCKET_REDIS_PASSWORD"
	EnvRedisDB        = "DOCKET_REDIS_DB"
	EnvSessionTTL     = "DOCKET_SESSION_TTL"
	EnvIdleTTL        = "DOCKET_IDLE_TTL"
	EnvLockTTL        = "DOCKET_LOCK_TTL"
	EnvEncryptionKey  = "DOCKET_ENCRYPTION_KEY"
	EnvGenerator      = "DOCKET_GENERATOR"
	EnvGeneratorURL   = "DOCKET_GENERATOR_BASE_URL"
	EnvGeneratorModel = "DOCKET_GENERATOR_MODEL"
	EnvGeneratorKey   = "DOCKET_GENERATOR_API_KEY"
	EnvGenTimeout     = "DOCKET_GENERATE_TIMEOUT"
	EnvRenderer       = "DOCKET_RENDERER"
	EnvRenderTimeout  = "DOCKET_RENDER_TIMEOUT"
	EnvHTTPAddr       = "DOCKET_HTTP_ADDR"
	EnvMetrics        = "DOCKET_METRICS"
	EnvCatalogFile    = "DOCKET_CATALOG_FILE"
	EnvOutputDir      = "DOCKET_OUTPUT_DIR"
	EnvRedactKeys     = "DOCKET_REDACT_KEYS"

	EnvGroqKey   = "GROQ_API_KEY"
	EnvOpenAIKey = "OPENAI_API_KEY"
	EnvGeminiKey = "GEMINI_API_KEY"
)

// Store drivers.
const (
	StoreMemory = "memory"
	StoreCache  = "cache"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Generator providers.
const (
	ProviderAuto    = "auto"
	ProviderGroq    = "groq"
	ProviderOpenAI  = "openai"
	ProviderGemini  = "gemini"
	ProviderDraft   = "draft"
	ProviderProcess = "process"
)

// Renderer formats.
const (
	FormatPDF = "pdf"
	FormatPNG = "png"
)

type Config struct {
	Log         LogConfig       `yaml:"log"`
	Dialogue    DialogueConfig  `yaml:"dialogue"`
	Store       StoreConfig     `yaml:"store"`
	Generator   GeneratorConfig `yaml:"generator"`
	Renderer    RendererConfig  `yaml:"renderer"`
	HTTP        HTTPConfig      `yaml:"http"`
	CatalogFile string          `yaml:"catalog_file"`
	OutputDir   string          `yaml:"output_dir"`
	RedactKeys  []string        `yaml:"redact_keys"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type DialogueConfig struct {
	Strategy string `yaml:"strategy"`
	Purpose  string `yaml:"purpose"`
}

type StoreConfig struct {
	Driver        string        `yaml:"driver"`
	Path          string        `yaml:"path"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	Prefix        string        `yaml:"prefix"`
	TTL           time.Duration `yaml:"ttl"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	LockTTL       time.Duration `yaml:"lock_ttl"`
	EncryptionKey string        `yaml:"encryption_key"`
	FallbackKeys  []string      `yaml:"fallback_keys"`
}

type GeneratorConfig struct {
	Provider    string         `yaml:"provider"`
	BaseURL     string         `yaml:"base_url"`
	APIKey      string         `yaml:"api_key"`
	Model       string         `yaml:"model"`
	Temperature float64        `yaml:"temperature"`
	MaxTokens   int            `yaml:"max_tokens"`
	Timeout     time.Duration  `yaml:"timeout"`
	Template    string         `yaml:"template"`
	Process     process.Config `yaml:"process"`
}

type RendererConfig struct {
	Format  string        `yaml:"format"`
	Timeout time.Duration `yaml:"timeout"`
}

type HTTPConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Dialogue: DialogueConfig{Strategy: "checklist", Purpose: string(extract.PurposeWhenUnmatched)},
		Store: StoreConfig{
			Driver:    StoreMemory,
			Path:      ".docket/sessions",
			RedisAddr: "localhost:6379",
			IdleTTL:   time.Hour,
			LockTTL:   30 * time.Second,
		},
		Generator: GeneratorConfig{
			Provider: ProviderAuto,
			Timeout:  60 * time.Second,
		},
		Renderer:  RendererConfig{Format: FormatPDF, Timeout: 30 * time.Second},
		HTTP:      HTTPConfig{Addr: ":8080", Metrics: true},
		OutputDir: ".",
	}
}

type loader struct {
	lookup func(string) (string, bool)
	dotenv []string
}

// Option configures Load.
type Option func(*loader)

// WithLookup replaces os.LookupEnv.
func WithLookup(fn func(string) (string, bool)) Option {
	return func(l *loader) {
		l.lookup = fn
	}
}

// WithDotEnv sets the .env files to read. Missing files are ignored.
func WithDotEnv(files ...string) Option {
	return func(l *loader) {
		l.dotenv = files
	}
}

// Load builds the configuration: defaults, then the YAML file at path (or $DOCKET_CONFIG),
// then .env values, then the process environment. The real environment wins over .env.
func Load(path string, opts ...Option) (*Config, error) {
	l := &loader{lookup: os.LookupEnv, dotenv: []string{".env"}}
	for _, opt := range opts {
		opt(l)
	}

	lookup, err := l.withDotEnv()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if path == "" {
		path, _ = lookup(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	cfg.resolveProvider(lookup)
	return cfg, nil
}

func (l *loader) withDotEnv() (func(string) (string, bool), error) {
	values := map[string]string{}
	for _, file := range l.dotenv {
		m, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		for k, v := range m {
			if _, seen := values[k]; !seen {
				values[k] = v
			}
		}
	}
	base := l.lookup
	return func(key string) (string, bool) {
		if v, ok := base(key); ok {
			return v, true
		}
		v, ok := values[key]
		return v, ok
	}, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	str(EnvLogLevel, &c.Log.Level)
	str(EnvLogFormat, &c.Log.Format)
	str(EnvStrategy, &c.Dialogue.Strategy)
	str(EnvPurposePolicy, &c.Dialogue.Purpose)

	str(EnvStore, &c.Store.Driver)
	str(EnvStorePath, &c.Store.Path)
	str(EnvRedisAddr, &c.Store.RedisAddr)
	str(EnvRedisPassword, &c.Store.RedisPassword)
	if v, ok := lookup(EnvRedisDB); ok && strings.TrimSpace(v) != "" {
		db, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvRedisDB, err))
		} else {
			c.Store.RedisDB = db
		}
	}
	dur(EnvSessionTTL, &c.Store.TTL)
	dur(EnvIdleTTL, &c.Store.IdleTTL)
	dur(EnvLockTTL, &c.Store.LockTTL)
	str(EnvEncryptionKey, &c.Store.EncryptionKey)

	str(EnvGenerator, &c.Generator.Provider)
	str(EnvGeneratorURL, &c.Generator.BaseURL)
	str(EnvGeneratorModel, &c.Generator.Model)
	str(EnvGeneratorKey, &c.Generator.APIKey)
	dur(EnvGenTimeout, &c.Generator.Timeout)

	str(EnvRenderer, &c.Renderer.Format)
	dur(EnvRenderTimeout, &c.Renderer.Timeout)

	str(EnvHTTPAddr, &c.HTTP.Addr)
	if v, ok := lookup(EnvMetrics); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvMetrics, err))
		} else {
			c.HTTP.Metrics = b
		}
	}

	str(EnvCatalogFile, &c.CatalogFile)
	str(EnvOutputDir, &c.OutputDir)
	if v, ok := lookup(EnvRedactKeys); ok && strings.TrimSpace(v) != "" {
		c.RedactKeys = splitList(v)
	}

	return errors.Join(errs...)
}

// resolveProvider picks a backend from the available API keys when none is named,
// and fills in the provider-specific key.
func (c *Config) resolveProvider(lookup func(string) (string, bool)) {
	key := func(name string) string {
		v, _ := lookup(name)
		return strings.TrimSpace(v)
	}

	p := strings.ToLower(strings.TrimSpace(c.Generator.Provider))
	if p == "" || p == ProviderAuto {
		switch {
		case key(EnvGroqKey) != "":
			p = ProviderGroq
		case key(EnvOpenAIKey) != "":
			p = ProviderOpenAI
		case key(EnvGeminiKey) != "":
			p = ProviderGemini
		default:
			p = ProviderDraft
		}
	}
	c.Generator.Provider = p

	if c.Generator.APIKey != "" {
		return
	}
	switch p {
	case ProviderGroq:
		c.Generator.APIKey = key(EnvGroqKey)
	case ProviderOpenAI:
		c.Generator.APIKey = key(EnvOpenAIKey)
	case ProviderGemini:
		c.Generator.APIKey = key(EnvGeminiKey)
	}
}

// MinLockTTL is the shortest distributed lock TTL accepted for Redis.
// The lock is renewed every third of its TTL.
const MinLockTTL = time.Second

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Dialogue.Strategy {
	case runtime.Checklist{}.Name(), runtime.Delegated{}.Name():
	default:
		errs = append(errs, fmt.Errorf("unknown dialogue strategy %q", c.Dialogue.Strategy))
	}
	if _, ok := extract.ParsePurposePolicy(c.Dialogue.Purpose); !ok {
		errs = append(errs, fmt.Errorf("unknown purpose policy %q", c.Dialogue.Purpose))
	}

	switch c.Store.Driver {
	case StoreMemory, StoreCache:
	case StoreFile:
		if strings.TrimSpace(c.Store.Path) == "" {
			errs = append(errs, errors.New("file store requires a path"))
		}
	case StoreRedis:
		if strings.TrimSpace(c.Store.RedisAddr) == "" {
			errs = append(errs, errors.New("redis store requires an address"))
		}
		if c.Store.RedisDB < 0 {
			errs = append(errs, errors.New("redis db must not be negative"))
		}
		if c.Store.LockTTL > 0 && c.Store.LockTTL < MinLockTTL {
			errs = append(errs, fmt.Errorf("store.lock_ttl must be at least %s", MinLockTTL))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.Store.TTL < 0 || c.Store.IdleTTL < 0 || c.Store.LockTTL < 0 {
		errs = append(errs, errors.New("store durations must not be negative"))
	}
	if c.Store.EncryptionKey != "" {
		if _, err := middleware.ParseKey(c.Store.EncryptionKey); err != nil {
			errs = append(errs, fmt.Errorf("store.encryption_key: %w", err))
		}
	}
	for i, k := range c.Store.FallbackKeys {
		if _, err := middleware.ParseKey(k); err != nil {
			errs = append(errs, fmt.Errorf("store.fallback_keys[%d]: %w", i, err))
		}
	}
	if len(c.Store.FallbackKeys) > 0 && c.Store.EncryptionKey == "" {
		errs = append(errs, errors.New("store.fallback_keys requires store.encryption_key"))
	}

	switch c.Generator.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderGemini:
		if c.Generator.APIKey == "" {
			errs = append(errs, fmt.Errorf("generator %q requires an API key", c.Generator.Provider))
		}
	case ProviderDraft:
	case ProviderProcess:
		if strings.TrimSpace(c.Generator.Process.Command) == "" {
			errs = append(errs, errors.New("process generator requires a command"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown generator %q", c.Generator.Provider))
	}
	if c.Generator.Timeout <= 0 {
		errs = append(errs, errors.New("generator timeout must be positive"))
	}

	switch c.Renderer.Format {
	case FormatPDF, FormatPNG:
	default:
		errs = append(errs, fmt.Errorf("unknown renderer format %q", c.Renderer.Format))
	}
	if c.Renderer.Timeout <= 0 {
		errs = append(errs, errors.New("renderer timeout must be positive"))
	}

	return errors.Join(errs...)
}

// Purpose returns the parsed purpose policy. Call after Validate.
func (c *Config) Purpose() extract.PurposePolicy {
	p, _ := extract.ParsePurposePolicy(c.Dialogue.Purpose)
	return p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
