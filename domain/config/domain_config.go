package config

import "fmt"

// DomainConfig holds the structural limits of a graph
type DomainConfig struct {
	// Graph constraints
	MaxNodesPerGraph int
	MaxEdgesPerGraph int
	DefaultGraphName string

	// Safe delete
	MaxContainmentDepth int

	// Stencil documents
	ConnectorStencils []string
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodesPerGraph:    10000,
		MaxEdgesPerGraph:    50000,
		DefaultGraphName:    "Diagram",
		MaxContainmentDepth: 256,
		ConnectorStencils: []string{
			"SequenceFlow",
			"MessageFlow",
			"Association",
		},
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.MaxNodesPerGraph = 5000
	config.MaxEdgesPerGraph = 25000
	config.MaxContainmentDepth = 64
	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.MaxNodesPerGraph = 100000
	config.MaxEdgesPerGraph = 500000
	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// IsConnectorStencil reports whether shapes of this stencil become edges
func (c *DomainConfig) IsConnectorStencil(stencil string) bool {
	for _, s := range c.ConnectorStencils {
		if s == stencil {
			return true
		}
	}
	return false
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MaxNodesPerGraph <= 0 {
		return fmt.Errorf("max nodes per graph must be positive, got %d", c.MaxNodesPerGraph)
	}
	if c.MaxEdgesPerGraph <= 0 {
		return fmt.Errorf("max edges per graph must be positive, got %d", c.MaxEdgesPerGraph)
	}
	if c.MaxContainmentDepth <= 0 {
		return fmt.Errorf("max containment depth must be positive, got %d", c.MaxContainmentDepth)
	}
	return nil
}
