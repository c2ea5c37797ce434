package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	domainconfig "graphcore/domain/config"
)

// Config holds all application configuration
type Config struct {
	Environment string
	ServiceName string

	// Rules
	RulesFile     string
	RulesDebounce time.Duration

	// Graph limits; zero keeps the environment default
	MaxNodesPerGraph    int
	MaxEdgesPerGraph    int
	MaxContainmentDepth int
	ConnectorStencils   []string

	// Logging
	LogLevel string

	// Feature flags
	MetricsNamespace string
	EnableMetrics    bool
	EnableTracing    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServiceName: getEnv("SERVICE_NAME", "graphcore"),

		RulesFile:     getEnv("RULES_FILE", ""),
		RulesDebounce: time.Duration(getEnvInt("RULES_RELOAD_DEBOUNCE_MS", 250)) * time.Millisecond,

		MaxNodesPerGraph:    getEnvInt("MAX_NODES_PER_GRAPH", 0),
		MaxEdgesPerGraph:    getEnvInt("MAX_EDGES_PER_GRAPH", 0),
		MaxContainmentDepth: getEnvInt("MAX_CONTAINMENT_DEPTH", 0),
		ConnectorStencils:   getEnvList("CONNECTOR_STENCILS"),

		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "graphcore"),
		EnableMetrics:    getEnvBool("ENABLE_METRICS", false),
		EnableTracing:    getEnvBool("ENABLE_TRACING", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	switch c.Environment {
	case "development", "staging", "production", "test":
	default:
		return fmt.Errorf("ENVIRONMENT %q is not one of development, staging, production, test", c.Environment)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel)
	}
	if c.MaxNodesPerGraph < 0 || c.MaxEdgesPerGraph < 0 || c.MaxContainmentDepth < 0 {
		return fmt.Errorf("graph limits cannot be negative")
	}
	if c.RulesDebounce < 0 {
		return fmt.Errorf("RULES_RELOAD_DEBOUNCE_MS cannot be negative")
	}
	if c.EnableMetrics && c.MetricsNamespace == "" {
		return fmt.Errorf("METRICS_NAMESPACE is required when metrics are enabled")
	}
	if c.IsProduction() && c.RulesFile == "" {
		return fmt.Errorf("RULES_FILE is required in production")
	}

	return nil
}

// Domain returns the graph limits for the environment with any explicit
// overrides applied
func (c *Config) Domain() *domainconfig.DomainConfig {
	dc := domainconfig.LoadDomainConfig(c.Environment)
	if c.MaxNodesPerGraph > 0 {
		dc.MaxNodesPerGraph = c.MaxNodesPerGraph
	}
	if c.MaxEdgesPerGraph > 0 {
		dc.MaxEdgesPerGraph = c.MaxEdgesPerGraph
	}
	if c.MaxContainmentDepth > 0 {
		dc.MaxContainmentDepth = c.MaxContainmentDepth
	}
	if len(c.ConnectorStencils) > 0 {
		dc.ConnectorStencils = c.ConnectorStencils
	}
	return dc
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blanks
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
