// Package mocks provides testify mocks of the engine's collaborators.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
	"graphcore/domain/rules"
)

// RulesManager is a mock rules.Manager
type RulesManager struct {
	mock.Mock
}

var _ rules.Manager = (*RulesManager)(nil)

func (m *RulesManager) EvaluateCardinality(g *aggregates.Graph, candidate *entities.Node, op rules.Operation) rules.Violations {
	args := m.Called(g, candidate, op)
	if v := args.Get(0); v != nil {
		return v.(rules.Violations)
	}
	return nil
}

func (m *RulesManager) EvaluateContainment(g *aggregates.Graph, parent, candidate *entities.Node) rules.Violations {
	args := m.Called(g, parent, candidate)
	if v := args.Get(0); v != nil {
		return v.(rules.Violations)
	}
	return nil
}

func (m *RulesManager) EvaluateConnection(g *aggregates.Graph, edge *entities.Edge, source, target *entities.Node) rules.Violations {
	args := m.Called(g, edge, source, target)
	if v := args.Get(0); v != nil {
		return v.(rules.Violations)
	}
	return nil
}

// Permissive returns a mock that allows every operation
func Permissive() *RulesManager {
	m := &RulesManager{}
	m.On("EvaluateCardinality", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.On("EvaluateContainment", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.On("EvaluateConnection", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return m
}

// CardinalityError is a single error-severity cardinality violation
func CardinalityError(nodeID string, op rules.Operation) rules.Violations {
	return rules.Violations{{
		Rule:      rules.RuleCardinality,
		Severity:  rules.SeverityError,
		Message:   "cardinality out of bounds",
		NodeID:    nodeID,
		Operation: op,
	}}
}
