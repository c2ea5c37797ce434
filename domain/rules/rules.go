// Package rules evaluates structural constraints of a graph against a
// proposed operation. Evaluation is pure: it reads a graph snapshot and
// reports violations, it never mutates.
package rules

import (
	"fmt"
	"strings"

	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
)

// Operation is the kind of change being checked
type Operation string

const (
	OperationAdd     Operation = "ADD"
	OperationDelete  Operation = "DELETE"
	OperationConnect Operation = "CONNECT"
	OperationContain Operation = "CONTAIN"
)

// Severity of a violation. Only SeverityError refuses an operation.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// Violation is a reported structural problem
type Violation struct {
	Rule      string
	Severity  Severity
	Message   string
	NodeID    string
	EdgeID    string
	Operation Operation
}

// IsError reports whether the violation refuses the operation
func (v Violation) IsError() bool {
	return v.Severity == SeverityError
}

func (v Violation) String() string {
	subject := v.NodeID
	if v.EdgeID != "" {
		subject = "edge " + v.EdgeID
	}
	return fmt.Sprintf("%s %s [%s on %s]: %s", v.Severity, v.Rule, v.Operation, subject, v.Message)
}

// Violations is an ordered collection of violations
type Violations []Violation

// HasErrors reports whether any violation has error severity
func (vs Violations) HasErrors() bool {
	for _, v := range vs {
		if v.IsError() {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any violation has warning severity
func (vs Violations) HasWarnings() bool {
	for _, v := range vs {
		if v.Severity == SeverityWarning {
			return true
		}
	}
	return false
}

// Errors returns only the error-severity violations
func (vs Violations) Errors() Violations {
	var out Violations
	for _, v := range vs {
		if v.IsError() {
			out = append(out, v)
		}
	}
	return out
}

func (vs Violations) String() string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, "; ")
}

// Manager evaluates structural rules. A nil Manager means no rules are
// configured and every operation is allowed.
type Manager interface {
	// EvaluateCardinality checks how many nodes of the candidate's roles
	// the graph would hold after adding or deleting it.
	EvaluateCardinality(g *aggregates.Graph, candidate *entities.Node, op Operation) Violations

	// EvaluateContainment checks whether parent may contain candidate.
	EvaluateContainment(g *aggregates.Graph, parent, candidate *entities.Node) Violations

	// EvaluateConnection checks whether edge may link source to target.
	// A nil target means the connector is being detached.
	EvaluateConnection(g *aggregates.Graph, edge *entities.Edge, source, target *entities.Node) Violations
}
