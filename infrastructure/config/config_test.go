package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Arrange
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CONNECTOR_STENCILS", "")

	// Act
	cfg, err := LoadConfig()

	// Assert
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "graphcore", cfg.ServiceName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RulesFile)
}

func TestLoadConfig_Overrides(t *testing.T) {
	// Arrange
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("MAX_NODES_PER_GRAPH", "12")
	t.Setenv("MAX_CONTAINMENT_DEPTH", "3")
	t.Setenv("CONNECTOR_STENCILS", "Flow, Link ,")
	t.Setenv("ENABLE_METRICS", "yes")

	// Act
	cfg, err := LoadConfig()
	require.NoError(t, err)
	dc := cfg.Domain()

	// Assert
	assert.True(t, cfg.EnableMetrics)
	assert.Equal(t, 12, dc.MaxNodesPerGraph)
	assert.Equal(t, 50000, dc.MaxEdgesPerGraph)
	assert.Equal(t, 3, dc.MaxContainmentDepth)
	assert.Equal(t, []string{"Flow", "Link"}, dc.ConnectorStencils)
	assert.True(t, dc.IsConnectorStencil("Link"))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown environment", mutate: func(c *Config) { c.Environment = "qa" }, wantErr: "ENVIRONMENT"},
		{name: "unknown log level", mutate: func(c *Config) { c.LogLevel = "trace" }, wantErr: "LOG_LEVEL"},
		{name: "negative limit", mutate: func(c *Config) { c.MaxEdgesPerGraph = -1 }, wantErr: "negative"},
		{name: "metrics without namespace", mutate: func(c *Config) {
			c.EnableMetrics = true
			c.MetricsNamespace = ""
		}, wantErr: "METRICS_NAMESPACE"},
		{name: "production without rules", mutate: func(c *Config) { c.Environment = "production" }, wantErr: "RULES_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := &Config{Environment: "development", LogLevel: "info", MetricsNamespace: "graphcore"}
			tt.mutate(cfg)

			// Act
			err := cfg.Validate()

			// Assert
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
