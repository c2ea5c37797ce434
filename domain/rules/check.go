package rules

import "graphcore/domain/core/aggregates"

// Check evaluates a whole graph as it stands: every node against the
// cardinality rules, every child edge against the containment rules and
// every attached connector against the connection rules.
func Check(g *aggregates.Graph, m Manager) Violations {
	if m == nil {
		return nil
	}

	var violations Violations
	for _, n := range g.Nodes() {
		violations = append(violations, m.EvaluateCardinality(g, n, OperationAdd)...)
	}
	for _, e := range g.Edges() {
		switch {
		case e.IsChild():
			violations = append(violations, m.EvaluateContainment(g, e.Source(), e.Target())...)
		case e.IsConnector() && e.Target() != nil:
			violations = append(violations, m.EvaluateConnection(g, e, e.Source(), e.Target())...)
		}
	}
	return violations
}
