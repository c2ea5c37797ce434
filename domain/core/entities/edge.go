package entities

import (
	"fmt"

	"graphcore/domain/core/valueobjects"
)

// EdgeKind is the content tag of an edge. It decides how a safe delete
// treats the edge.
type EdgeKind string

const (
	// EdgeKindChild is parent -> child containment
	EdgeKindChild EdgeKind = "child"
	// EdgeKindView is a visual connector carrying a ViewConnector payload
	EdgeKindView EdgeKind = "view"
	// EdgeKindConnector is a connector without view content
	EdgeKindConnector EdgeKind = "connector"
)

// ParseEdgeKind converts a string to an EdgeKind
func ParseEdgeKind(s string) (EdgeKind, error) {
	switch EdgeKind(s) {
	case EdgeKindChild, EdgeKindView, EdgeKindConnector:
		return EdgeKind(s), nil
	}
	return "", fmt.Errorf("unknown edge kind %q", s)
}

// IsConnector reports whether the kind is a connector, with or without view
func (k EdgeKind) IsConnector() bool {
	return k == EdgeKindView || k == EdgeKindConnector
}

// ViewConnector is the view content of a connector edge
type ViewConnector struct {
	SourceMagnet int
	TargetMagnet int
	Dockers      []valueobjects.Point
}

// Edge links exactly one source node to one target node. The target is
// nil while a connector is detached.
type Edge struct {
	id     valueobjects.EdgeID
	kind   EdgeKind
	role   string
	view   *ViewConnector
	source *Node
	target *Node
}

// NewChildEdge creates an unattached containment edge
func NewChildEdge(id valueobjects.EdgeID) *Edge {
	return &Edge{id: id, kind: EdgeKindChild}
}

// NewViewEdge creates an unattached visual connector
func NewViewEdge(id valueobjects.EdgeID, role string, view ViewConnector) *Edge {
	return &Edge{id: id, kind: EdgeKindView, role: role, view: &view}
}

// NewConnectorEdge creates an unattached connector with no view content
func NewConnectorEdge(id valueobjects.EdgeID, role string) *Edge {
	return &Edge{id: id, kind: EdgeKindConnector, role: role}
}

func (e *Edge) ID() valueobjects.EdgeID { return e.id }
func (e *Edge) Kind() EdgeKind          { return e.kind }
func (e *Edge) Role() string            { return e.role }
func (e *Edge) Source() *Node           { return e.source }
func (e *Edge) Target() *Node           { return e.target }

// IsChild reports whether this is a containment edge
func (e *Edge) IsChild() bool {
	return e.kind == EdgeKindChild
}

// IsConnector reports whether this is a connector edge
func (e *Edge) IsConnector() bool {
	return e.kind.IsConnector()
}

// View returns the view payload of a view connector
func (e *Edge) View() (ViewConnector, bool) {
	if e.view == nil {
		return ViewConnector{}, false
	}
	return *e.view, true
}

// SetSource rebinds the source endpoint. Adjacency lists are the caller's job.
func (e *Edge) SetSource(n *Node) {
	e.source = n
}

// SetTarget rebinds the target endpoint; nil detaches it.
func (e *Edge) SetTarget(n *Node) {
	e.target = n
}

// SetTargetMagnet records which magnet of the target the connector uses
func (e *Edge) SetTargetMagnet(magnet int) {
	if e.view != nil {
		e.view.TargetMagnet = magnet
	}
}

// SetSourceMagnet records which magnet of the source the connector uses
func (e *Edge) SetSourceMagnet(magnet int) {
	if e.view != nil {
		e.view.SourceMagnet = magnet
	}
}

// Equals compares by identity value
func (e *Edge) Equals(other *Edge) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.id.Equals(other.id)
}

func (e *Edge) String() string {
	src, tgt := "<nil>", "<nil>"
	if e.source != nil {
		src = e.source.ID().String()
	}
	if e.target != nil {
		tgt = e.target.ID().String()
	}
	return fmt.Sprintf("Edge[%s %s %s->%s]", e.id, e.kind, src, tgt)
}
