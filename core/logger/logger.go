package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ContextExtractor pulls a log attribute out of a context.
// It returns false when the context carries nothing to log.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

type config struct {
	level       slog.Level
	json        bool
	output      io.Writer
	attrs       []slog.Attr
	extractors  []ContextExtractor
	handlerOpts *slog.HandlerOptions
}

// Option configures a logger built by New.
type Option func(*config)

// New builds a slog.Logger. Without options it writes text at info level to stdout.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:  slog.LevelInfo,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	hopts := cfg.handlerOpts
	if hopts == nil {
		hopts = &slog.HandlerOptions{}
	}
	if hopts.Level == nil {
		hopts.Level = cfg.level
	}

	var h slog.Handler
	if cfg.json {
		h = slog.NewJSONHandler(cfg.output, hopts)
	} else {
		h = slog.NewTextHandler(cfg.output, hopts)
	}
	if len(cfg.attrs) > 0 {
		h = h.WithAttrs(cfg.attrs)
	}
	if len(cfg.extractors) > 0 {
		h = &contextHandler{Handler: h, extractors: cfg.extractors}
	}

	return slog.New(h)
}

// SetAsDefault installs l as the slog default logger.
func SetAsDefault(l *slog.Logger) {
	if l != nil {
		slog.SetDefault(l)
	}
}

// ParseLevel maps debug, info, warn and error (case-insensitive) to a slog level.
// Anything else yields info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithDevelopment configures text output at debug level tagged with the service name.
func WithDevelopment(service string) Option {
	return func(c *config) {
		c.json = false
		c.level = slog.LevelDebug
		c.attrs = append(c.attrs, slog.String("service", service), slog.String("env", "development"))
	}
}

// WithStaging configures JSON output at info level.
func WithStaging(service string) Option {
	return func(c *config) {
		c.json = true
		c.level = slog.LevelInfo
		c.attrs = append(c.attrs, slog.String("service", service), slog.String("env", "staging"))
	}
}

// WithProduction configures JSON output at info level.
func WithProduction(service string) Option {
	return func(c *config) {
		c.json = true
		c.level = slog.LevelInfo
		c.attrs = append(c.attrs, slog.String("service", service), slog.String("env", "production"))
	}
}

// WithEnvironment picks the preset for env, falling back to development.
func WithEnvironment(env, service string) Option {
	switch strings.ToLower(env) {
	case "production", "prod":
		return WithProduction(service)
	case "staging", "stage":
		return WithStaging(service)
	}
	return WithDevelopment(service)
}

func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

func WithJSONFormatter() Option {
	return func(c *config) { c.json = true }
}

func WithTextFormatter() Option {
	return func(c *config) { c.json = false }
}

// WithOutput sets the writer; nil is ignored.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) { c.attrs = append(c.attrs, attrs...) }
}

// WithHandlerOptions overrides the slog handler options. A Level set here wins over WithLevel.
func WithHandlerOptions(opts *slog.HandlerOptions) Option {
	return func(c *config) { c.handlerOpts = opts }
}

// WithContextExtractors adds extractors run for every record logged with a context.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) { c.extractors = append(c.extractors, extractors...) }
}

// WithContextValue logs ctx.Value(key) under name when it is set.
func WithContextValue(name string, key any) Option {
	return WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
		v := ctx.Value(key)
		if v == nil {
			return slog.Attr{}, false
		}
		return slog.Any(name, v), true
	})
}
