package entities

import (
	"fmt"

	"graphcore/domain/core/valueobjects"
)

// Node is a diagram element. It owns the ordering of its incoming and
// outgoing edge lists but not the edges themselves; edge lifetime is
// tracked by the graph.
type Node struct {
	id         valueobjects.NodeID
	definition Definition
	bounds     *valueobjects.Bounds
	inEdges    []*Edge
	outEdges   []*Edge
}

// NewNode creates a detached node
func NewNode(id valueobjects.NodeID, definition Definition) *Node {
	return &Node{
		id:         id,
		definition: definition,
		inEdges:    []*Edge{},
		outEdges:   []*Edge{},
	}
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Definition returns the node's content payload
func (n *Node) Definition() Definition {
	return n.definition
}

// HasLabel reports whether the node plays the given role
func (n *Node) HasLabel(role string) bool {
	return n.definition.HasLabel(role)
}

// Bounds returns the node's view bounds, if any
func (n *Node) Bounds() (valueobjects.Bounds, bool) {
	if n.bounds == nil {
		return valueobjects.Bounds{}, false
	}
	return *n.bounds, true
}

// SetBounds sets the node's view bounds
func (n *Node) SetBounds(b valueobjects.Bounds) {
	n.bounds = &b
}

// Equals compares by identity value, never by pointer
func (n *Node) Equals(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.id.Equals(other.id)
}

// InEdges returns a copy of the incoming edge list
func (n *Node) InEdges() []*Edge {
	return append([]*Edge(nil), n.inEdges...)
}

// OutEdges returns a copy of the outgoing edge list
func (n *Node) OutEdges() []*Edge {
	return append([]*Edge(nil), n.outEdges...)
}

// HasEdges reports whether any edge still references the node
func (n *Node) HasEdges() bool {
	return len(n.inEdges) > 0 || len(n.outEdges) > 0
}

// AddInEdge appends an incoming edge
func (n *Node) AddInEdge(e *Edge) {
	n.inEdges = append(n.inEdges, e)
}

// AddOutEdge appends an outgoing edge
func (n *Node) AddOutEdge(e *Edge) {
	n.outEdges = append(n.outEdges, e)
}

// InsertInEdge puts an incoming edge back at a previous position
func (n *Node) InsertInEdge(at int, e *Edge) {
	n.inEdges = insertAt(n.inEdges, at, e)
}

// InsertOutEdge puts an outgoing edge back at a previous position
func (n *Node) InsertOutEdge(at int, e *Edge) {
	n.outEdges = insertAt(n.outEdges, at, e)
}

// RemoveInEdge drops an incoming edge and returns its former index, or -1
func (n *Node) RemoveInEdge(e *Edge) int {
	var at int
	n.inEdges, at = removeEdge(n.inEdges, e)
	return at
}

// RemoveOutEdge drops an outgoing edge and returns its former index, or -1
func (n *Node) RemoveOutEdge(e *Edge) int {
	var at int
	n.outEdges, at = removeEdge(n.outEdges, e)
	return at
}

// ChildEdgeTo returns the containment edge from n to child, if any
func (n *Node) ChildEdgeTo(child *Node) *Edge {
	for _, e := range n.outEdges {
		if e.IsChild() && child.Equals(e.Target()) {
			return e
		}
	}
	return nil
}

// Children returns the targets of the node's containment edges, in order
func (n *Node) Children() []*Node {
	var children []*Node
	for _, e := range n.outEdges {
		if e.IsChild() && e.Target() != nil {
			children = append(children, e.Target())
		}
	}
	return children
}

// Parent returns the source of the first incoming containment edge
func (n *Node) Parent() *Node {
	for _, e := range n.inEdges {
		if e.IsChild() {
			return e.Source()
		}
	}
	return nil
}

func (n *Node) String() string {
	return fmt.Sprintf("Node[%s %s]", n.id, n.definition.Stencil)
}

func insertAt(edges []*Edge, at int, e *Edge) []*Edge {
	if at < 0 || at > len(edges) {
		at = len(edges)
	}
	edges = append(edges, nil)
	copy(edges[at+1:], edges[at:])
	edges[at] = e
	return edges
}

func removeEdge(edges []*Edge, e *Edge) ([]*Edge, int) {
	for i, candidate := range edges {
		if candidate.Equals(e) {
			return append(edges[:i], edges[i+1:]...), i
		}
	}
	return edges, -1
}
