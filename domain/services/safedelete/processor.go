// Package safedelete discovers what must go when a node is deleted. It
// observes the graph and never mutates it; turning the discovered events
// into commands is the command factory's job.
package safedelete

import (
	"fmt"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	pkgerrors "graphcore/pkg/errors"
)

// Processor emits the dependency events of a single node
type Processor struct {
	maxDepth int
}

// NewProcessor creates a processor bounding Walk to maxDepth levels of
// containment. A non-positive maxDepth disables the bound.
func NewProcessor(maxDepth int) *Processor {
	return &Processor{maxDepth: maxDepth}
}

// Events returns the candidate's events in emission order: one ChildNode
// per outgoing child edge, an InViewEdge per incoming connector, an
// InChildEdge per incoming child edge, an OutEdge per outgoing connector,
// then the Node event. Children are not expanded.
func (p *Processor) Events(candidate *entities.Node) []Event {
	var events []Event
	_ = p.Run(candidate, func(ev Event) error {
		events = append(events, ev)
		return nil
	})
	return events
}

// Run emits the candidate's events to emit, stopping at the first error.
func (p *Processor) Run(candidate *entities.Node, emit func(Event) error) error {
	outEdges := candidate.OutEdges()
	inEdges := candidate.InEdges()

	for _, e := range outEdges {
		if e.IsChild() && e.Target() != nil {
			if err := emit(ChildNodeEvent{Parent: candidate, Child: e.Target(), Edge: e}); err != nil {
				return err
			}
		}
	}

	for _, e := range inEdges {
		if e.IsConnector() {
			if err := emit(InViewEdgeEvent{Candidate: candidate, Edge: e}); err != nil {
				return err
			}
		}
	}

	for _, e := range inEdges {
		if e.IsChild() && e.Source() != nil {
			if err := emit(InChildEdgeEvent{Parent: e.Source(), Candidate: candidate, Edge: e}); err != nil {
				return err
			}
		}
	}

	for _, e := range outEdges {
		if e.IsConnector() {
			if err := emit(OutEdgeEvent{Candidate: candidate, Edge: e}); err != nil {
				return err
			}
		}
	}

	return emit(NodeEvent{Node: candidate})
}

// Walk expands the cascade depth-first: after each ChildNode event the
// child's whole cascade is visited at depth+1, so transitive children
// always precede the parent's own Node event.
func (p *Processor) Walk(candidate *entities.Node, visit func(depth int, ev Event) error) error {
	return p.walk(candidate, NewPath(p.maxDepth), visit)
}

func (p *Processor) walk(candidate *entities.Node, path *Path, visit func(int, Event) error) error {
	if err := path.Enter(candidate.ID()); err != nil {
		return err
	}
	defer path.Leave()

	depth := path.Depth() - 1
	return p.Run(candidate, func(ev Event) error {
		if err := visit(depth, ev); err != nil {
			return err
		}
		if child, ok := ev.(ChildNodeEvent); ok {
			return p.walk(child.Child, path, visit)
		}
		return nil
	})
}

// Path is the containment chain of a cascading delete, root first. It
// refuses cycles and chains deeper than its bound.
type Path struct {
	maxDepth int
	ids      []valueobjects.NodeID
	members  map[valueobjects.NodeID]struct{}
	removed  map[valueobjects.NodeID]struct{}
}

// NewPath creates an empty chain. A non-positive maxDepth is unbounded.
func NewPath(maxDepth int) *Path {
	return &Path{
		maxDepth: maxDepth,
		members:  make(map[valueobjects.NodeID]struct{}),
		removed:  make(map[valueobjects.NodeID]struct{}),
	}
}

// Enter pushes a node onto the chain
func (p *Path) Enter(id valueobjects.NodeID) error {
	if _, seen := p.members[id]; seen {
		return pkgerrors.NewDomainError(pkgerrors.DomainBusinessRuleError, pkgerrors.ErrContainmentCycle.Code,
			fmt.Sprintf("node %s contains itself through %v", id, p.ids)).
			WithDetail("node_id", id.String())
	}
	if p.maxDepth > 0 && len(p.ids) >= p.maxDepth {
		return pkgerrors.NewDomainError(pkgerrors.DomainBusinessRuleError, pkgerrors.ErrContainmentTooDeep.Code,
			fmt.Sprintf("node %s is nested deeper than %d levels", id, p.maxDepth)).
			WithDetail("node_id", id.String()).
			WithDetail("limit", p.maxDepth)
	}

	p.ids = append(p.ids, id)
	p.members[id] = struct{}{}
	return nil
}

// Leave pops the most recently entered node
func (p *Path) Leave() {
	if len(p.ids) == 0 {
		return
	}
	last := p.ids[len(p.ids)-1]
	p.ids = p.ids[:len(p.ids)-1]
	delete(p.members, last)
}

// MarkRemoved records that the cascade already deleted id. A node with
// several containers is planned once per container; only the first run
// applies.
func (p *Path) MarkRemoved(id valueobjects.NodeID) {
	p.removed[id] = struct{}{}
}

// Unmark forgets a removal after it was undone
func (p *Path) Unmark(id valueobjects.NodeID) {
	delete(p.removed, id)
}

// Removed reports whether the cascade already deleted id
func (p *Path) Removed(id valueobjects.NodeID) bool {
	_, ok := p.removed[id]
	return ok
}

// Depth is the number of nodes on the chain
func (p *Path) Depth() int {
	return len(p.ids)
}
