package di

import (
	"context"
	"fmt"
	"strings"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"graphcore/application/commands"
	"graphcore/application/commands/bus"
	"graphcore/application/session"
	"graphcore/domain/core/aggregates"
	"graphcore/domain/rules"
	"graphcore/domain/services/safedelete"
	"graphcore/infrastructure/config"
	"graphcore/infrastructure/stencil"
	"graphcore/pkg/extensions"
	"graphcore/pkg/observability"

	domainconfig "graphcore/domain/config"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Domain    *domainconfig.DomainConfig
	Rules     *rules.Reloadable
	Processor *safedelete.Processor
	Factory   *commands.Factory
	Collector *observability.Collector
	Tracer    *observability.Tracer
	Hooks     *extensions.HookManager
	Commands  *bus.CommandManager
	Stencils  *stencil.Builder
}

// NewSession opens a session on g evaluated against the container's rules
func (c *Container) NewSession(g *aggregates.Graph) *session.Session {
	return session.New(g, c.Rules, c.Commands, c.Logger)
}

// WatchRules starts reloading the configured rule file on change. The
// returned stop function must be called to release the watcher.
func (c *Container) WatchRules() (*config.RulesWatcher, func(), error) {
	if c.Config.RulesFile == "" {
		return nil, nil, fmt.Errorf("no rule file configured")
	}
	w, err := config.NewRulesWatcher(c.Config.RulesFile, c.Rules, c.Config.RulesDebounce, c.Logger)
	if err != nil {
		return nil, nil, err
	}
	w.WithHooks(c.Hooks)
	if c.Config.EnableMetrics {
		w.WithMetrics(c.Collector)
	}
	w.Start()
	return w, w.Stop, nil
}

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	// Command output goes to stdout; keep logs out of it
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", cfg.ServiceName)), nil
}

// ProvideDomainConfig returns the graph limits for the environment
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	dc := cfg.Domain()
	if err := dc.Validate(); err != nil {
		return nil, err
	}
	return dc, nil
}

// ProvideRules loads the configured rule file. Without one every command
// is evaluated against an empty rule set.
func ProvideRules(cfg *config.Config, logger *zap.Logger) (*rules.Reloadable, error) {
	if cfg.RulesFile == "" {
		logger.Debug("No rule file configured")
		return rules.NewReloadable(nil), nil
	}
	rs, err := config.LoadRuleSet(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	logger.Info("Rules loaded", zap.String("rule_set", rs.Name), zap.String("path", cfg.RulesFile))
	return rules.NewReloadable(rs), nil
}

// ProvideProcessor creates the safe-delete processor
func ProvideProcessor(dc *domainconfig.DomainConfig) *safedelete.Processor {
	return safedelete.NewProcessor(dc.MaxContainmentDepth)
}

// ProvideFactory creates the command factory
func ProvideFactory(processor *safedelete.Processor, logger *zap.Logger) *commands.Factory {
	return commands.NewFactory(processor, logger)
}

// ProvideCollector creates the metrics collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.MetricsNamespace)
}

// ProvideTracerProvider creates the tracer provider; the cleanup flushes it
func ProvideTracerProvider(cfg *config.Config, logger *zap.Logger) (*sdktrace.TracerProvider, func()) {
	tp := observability.NewTracerProvider(observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
	})
	return tp, func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("Failed to shut down tracer provider", zap.Error(err))
		}
	}
}

// ProvideTracer creates the command tracer
func ProvideTracer(cfg *config.Config, tp *sdktrace.TracerProvider) *observability.Tracer {
	return observability.NewTracer(cfg.ServiceName, tp)
}

// ProvideHookManager creates an empty hook registry
func ProvideHookManager() *extensions.HookManager {
	return extensions.NewHookManager()
}

// ProvideCommandManager creates the command manager with the middleware
// the configuration enables
func ProvideCommandManager(
	cfg *config.Config,
	factory *commands.Factory,
	collector *observability.Collector,
	tracer *observability.Tracer,
	hooks *extensions.HookManager,
	logger *zap.Logger,
) *bus.CommandManager {
	middlewares := []bus.Middleware{bus.LoggingMiddleware(logger)}
	if cfg.EnableMetrics {
		middlewares = append(middlewares, bus.MetricsMiddleware(collector))
	}
	if cfg.EnableTracing {
		middlewares = append(middlewares, bus.TracingMiddleware(tracer))
	}
	middlewares = append(middlewares, bus.HooksMiddleware(hooks))

	return bus.NewCommandManager(factory, logger, middlewares...)
}

// ProvideStencilBuilder creates the stencil document builder
func ProvideStencilBuilder(manager *bus.CommandManager, dc *domainconfig.DomainConfig, logger *zap.Logger) *stencil.Builder {
	return stencil.NewBuilder(manager, dc, logger)
}
