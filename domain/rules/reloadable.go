package rules

import (
	"sync/atomic"

	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
)

// Reloadable is a Manager whose rule set can be swapped while commands keep
// a reference to it. Evaluations see either the old or the new set, never a
// mix.
type Reloadable struct {
	current atomic.Pointer[RuleSet]
}

var _ Manager = (*Reloadable)(nil)

// NewReloadable wraps an initial rule set
func NewReloadable(initial *RuleSet) *Reloadable {
	r := &Reloadable{}
	r.current.Store(initial)
	return r
}

// Swap installs a new rule set and returns the previous one
func (r *Reloadable) Swap(next *RuleSet) *RuleSet {
	return r.current.Swap(next)
}

// Current returns the installed rule set
func (r *Reloadable) Current() *RuleSet {
	return r.current.Load()
}

func (r *Reloadable) EvaluateCardinality(g *aggregates.Graph, candidate *entities.Node, op Operation) Violations {
	if rs := r.current.Load(); rs != nil {
		return rs.EvaluateCardinality(g, candidate, op)
	}
	return nil
}

func (r *Reloadable) EvaluateContainment(g *aggregates.Graph, parent, candidate *entities.Node) Violations {
	if rs := r.current.Load(); rs != nil {
		return rs.EvaluateContainment(g, parent, candidate)
	}
	return nil
}

func (r *Reloadable) EvaluateConnection(g *aggregates.Graph, edge *entities.Edge, source, target *entities.Node) Violations {
	if rs := r.current.Load(); rs != nil {
		return rs.EvaluateConnection(g, edge, source, target)
	}
	return nil
}
