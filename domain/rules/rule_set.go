package rules

import (
	"fmt"

	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
	pkgerrors "graphcore/pkg/errors"
	"graphcore/pkg/utils"
)

const (
	RuleCardinality = "cardinality"
	RuleContainment = "containment"
	RuleConnection  = "connection"
)

// Unbounded is the Max of a cardinality rule with no upper limit
const Unbounded = -1

// CardinalityRule bounds how many nodes of a role a graph may hold
type CardinalityRule struct {
	Role     string   `yaml:"role" validate:"required"`
	Min      int      `yaml:"min" validate:"gte=0"`
	Max      int      `yaml:"max" validate:"gte=-1"`
	Severity Severity `yaml:"severity" validate:"omitempty,oneof=INFO WARNING ERROR"`
}

// ContainmentRule lists the roles a parent role may contain
type ContainmentRule struct {
	Parent  string   `yaml:"parent" validate:"required"`
	Allowed []string `yaml:"allowed" validate:"required,min=1,dive,required"`
}

// RolePair is a permitted (source role, target role) combination
type RolePair struct {
	From string `yaml:"from" validate:"required"`
	To   string `yaml:"to" validate:"required"`
}

// ConnectionRule lists what a connector role may link
type ConnectionRule struct {
	Connector string     `yaml:"connector" validate:"required"`
	Permitted []RolePair `yaml:"permitted" validate:"required,min=1,dive"`
}

// RuleSet is the rule Manager built from declarative definitions. Roles
// without a containment or connection rule are unconstrained.
type RuleSet struct {
	Name                 string            `yaml:"name" validate:"required"`
	Cardinality          []CardinalityRule `yaml:"cardinality" validate:"dive"`
	Containment          []ContainmentRule `yaml:"containment" validate:"dive"`
	Connection           []ConnectionRule  `yaml:"connection" validate:"dive"`
	AllowSelfConnections bool              `yaml:"allowSelfConnections"`
}

var _ Manager = (*RuleSet)(nil)

// Validate checks struct tags and cross-field constraints
func (rs *RuleSet) Validate() error {
	if err := utils.ValidateStruct(rs); err != nil {
		return pkgerrors.NewDomainError(pkgerrors.DomainInfrastructureError, pkgerrors.ErrInvalidRuleSet.Code,
			"rule set definition is invalid").WithCause(err)
	}
	for _, r := range rs.Cardinality {
		if r.Max != Unbounded && r.Max < r.Min {
			return pkgerrors.NewDomainError(pkgerrors.DomainInfrastructureError, pkgerrors.ErrInvalidRuleSet.Code,
				fmt.Sprintf("cardinality rule for %q has max %d below min %d", r.Role, r.Max, r.Min)).
				WithDetail("role", r.Role)
		}
	}
	return nil
}

// EvaluateCardinality implements Manager
func (rs *RuleSet) EvaluateCardinality(g *aggregates.Graph, candidate *entities.Node, op Operation) Violations {
	if candidate == nil {
		return nil
	}

	var violations Violations
	present := g.Contains(candidate)
	for _, rule := range rs.Cardinality {
		if !candidate.HasLabel(rule.Role) {
			continue
		}

		count := countRole(g, rule.Role)
		switch op {
		case OperationAdd:
			if !present {
				count++
			}
			if rule.Max != Unbounded && count > rule.Max {
				violations = append(violations, cardinalityViolation(rule, candidate, op,
					fmt.Sprintf("role %q allows at most %d nodes, operation would leave %d", rule.Role, rule.Max, count)))
			}
		case OperationDelete:
			if present {
				count--
			}
			if count < rule.Min {
				violations = append(violations, cardinalityViolation(rule, candidate, op,
					fmt.Sprintf("role %q requires at least %d nodes, operation would leave %d", rule.Role, rule.Min, count)))
			}
		}
	}
	return violations
}

// EvaluateContainment implements Manager
func (rs *RuleSet) EvaluateContainment(g *aggregates.Graph, parent, candidate *entities.Node) Violations {
	if parent == nil || candidate == nil {
		return nil
	}

	constrained := false
	for _, rule := range rs.Containment {
		if !parent.HasLabel(rule.Parent) {
			continue
		}
		constrained = true
		for _, role := range rule.Allowed {
			if candidate.HasLabel(role) {
				return nil
			}
		}
	}
	if !constrained {
		return nil
	}

	return Violations{{
		Rule:      RuleContainment,
		Severity:  SeverityError,
		Message:   fmt.Sprintf("%s cannot contain %s", parent.Definition().Stencil, candidate.Definition().Stencil),
		NodeID:    candidate.ID().String(),
		Operation: OperationContain,
	}}
}

// EvaluateConnection implements Manager
func (rs *RuleSet) EvaluateConnection(g *aggregates.Graph, edge *entities.Edge, source, target *entities.Node) Violations {
	if edge == nil || source == nil || target == nil {
		return nil
	}

	if source.Equals(target) && !rs.AllowSelfConnections {
		return Violations{connectionViolation(edge, source, "a node cannot be connected to itself")}
	}

	constrained := false
	for _, rule := range rs.Connection {
		if rule.Connector != edge.Role() {
			continue
		}
		constrained = true
		for _, pair := range rule.Permitted {
			if source.HasLabel(pair.From) && target.HasLabel(pair.To) {
				return nil
			}
		}
	}
	if !constrained {
		return nil
	}

	return Violations{connectionViolation(edge, source, fmt.Sprintf("%s cannot connect %s to %s",
		edge.Role(), source.Definition().Stencil, target.Definition().Stencil))}
}

func countRole(g *aggregates.Graph, role string) int {
	count := 0
	for _, n := range g.Nodes() {
		if n.HasLabel(role) {
			count++
		}
	}
	return count
}

func cardinalityViolation(rule CardinalityRule, candidate *entities.Node, op Operation, message string) Violation {
	severity := rule.Severity
	if severity == "" {
		severity = SeverityError
	}
	return Violation{
		Rule:      RuleCardinality,
		Severity:  severity,
		Message:   message,
		NodeID:    candidate.ID().String(),
		Operation: op,
	}
}

func connectionViolation(edge *entities.Edge, source *entities.Node, message string) Violation {
	return Violation{
		Rule:      RuleConnection,
		Severity:  SeverityError,
		Message:   message,
		NodeID:    source.ID().String(),
		EdgeID:    edge.ID().String(),
		Operation: OperationConnect,
	}
}
