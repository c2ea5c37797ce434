package safedelete

import (
	"fmt"

	"graphcore/domain/core/entities"
)

// EventKind names an Event variant
type EventKind string

const (
	KindChildNode   EventKind = "ChildNode"
	KindInViewEdge  EventKind = "InViewEdge"
	KindInChildEdge EventKind = "InChildEdge"
	KindOutEdge     EventKind = "OutEdge"
	KindNode        EventKind = "Node"
)

// Event is one structural dependency found while deleting a node. The set
// of variants is closed: ChildNodeEvent, InViewEdgeEvent, InChildEdgeEvent,
// OutEdgeEvent and NodeEvent.
type Event interface {
	Kind() EventKind
	String() string
	sealed()
}

// ChildNodeEvent is emitted once per direct child of the candidate
type ChildNodeEvent struct {
	Parent *entities.Node
	Child  *entities.Node
	Edge   *entities.Edge
}

// InViewEdgeEvent is an incoming connector that must be detached
type InViewEdgeEvent struct {
	Candidate *entities.Node
	Edge      *entities.Edge
}

// InChildEdgeEvent is the containment edge from the candidate's parent
type InChildEdgeEvent struct {
	Parent    *entities.Node
	Candidate *entities.Node
	Edge      *entities.Edge
}

// OutEdgeEvent is an outgoing connector that must be deleted
type OutEdgeEvent struct {
	Candidate *entities.Node
	Edge      *entities.Edge
}

// NodeEvent is always last: the candidate itself
type NodeEvent struct {
	Node *entities.Node
}

func (ChildNodeEvent) Kind() EventKind   { return KindChildNode }
func (InViewEdgeEvent) Kind() EventKind  { return KindInViewEdge }
func (InChildEdgeEvent) Kind() EventKind { return KindInChildEdge }
func (OutEdgeEvent) Kind() EventKind     { return KindOutEdge }
func (NodeEvent) Kind() EventKind        { return KindNode }

func (ChildNodeEvent) sealed()   {}
func (InViewEdgeEvent) sealed()  {}
func (InChildEdgeEvent) sealed() {}
func (OutEdgeEvent) sealed()     {}
func (NodeEvent) sealed()        {}

func (e ChildNodeEvent) String() string {
	return fmt.Sprintf("%s(%s)", e.Kind(), e.Child.ID())
}

func (e InViewEdgeEvent) String() string {
	return fmt.Sprintf("%s(%s)", e.Kind(), e.Edge.ID())
}

func (e InChildEdgeEvent) String() string {
	return fmt.Sprintf("%s(%s,%s)", e.Kind(), e.Parent.ID(), e.Candidate.ID())
}

func (e OutEdgeEvent) String() string {
	return fmt.Sprintf("%s(%s)", e.Kind(), e.Edge.ID())
}

func (e NodeEvent) String() string {
	return fmt.Sprintf("%s(%s)", e.Kind(), e.Node.ID())
}
