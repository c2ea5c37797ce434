package aggregates

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"graphcore/domain/config"
	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	"graphcore/domain/events"
	pkgerrors "graphcore/pkg/errors"
)

// GraphID represents a unique graph identifier
type GraphID string

// NewGraphID creates a new random GraphID
func NewGraphID() GraphID {
	return GraphID(uuid.New().String())
}

// String returns the string representation
func (id GraphID) String() string {
	return string(id)
}

// Graph is the store of nodes and edges. It only answers structural
// queries and applies the mutation it is asked for; consistency across
// several mutations is the job of the commands driving it.
//
// Graph is not safe for concurrent use.
type Graph struct {
	id        GraphID
	name      string
	cfg       *config.DomainConfig
	nodes     map[valueobjects.NodeID]*entities.Node
	nodeOrder []valueobjects.NodeID
	edges     map[valueobjects.EdgeID]*entities.Edge
	edgeOrder []valueobjects.EdgeID
	createdAt time.Time
	updatedAt time.Time
	version   int
	events    []events.DomainEvent
}

// NewGraph creates an empty graph with the default limits
func NewGraph(name string) (*Graph, error) {
	return NewGraphWithConfig(name, config.DefaultDomainConfig())
}

// NewGraphWithConfig creates an empty graph with the given limits
func NewGraphWithConfig(name string, cfg *config.DomainConfig) (*Graph, error) {
	if name == "" {
		return nil, pkgerrors.ErrGraphNameRequired
	}
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	now := time.Now()
	return &Graph{
		id:        NewGraphID(),
		name:      name,
		cfg:       cfg,
		nodes:     make(map[valueobjects.NodeID]*entities.Node),
		edges:     make(map[valueobjects.EdgeID]*entities.Edge),
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the graph's unique identifier
func (g *Graph) ID() GraphID {
	return g.id
}

// Name returns the graph's name
func (g *Graph) Name() string {
	return g.name
}

// Version is incremented on every mutation
func (g *Graph) Version() int {
	return g.version
}

// Config returns the limits the graph was created with
func (g *Graph) Config() *config.DomainConfig {
	return g.cfg
}

// UpdatedAt returns when the graph was last mutated
func (g *Graph) UpdatedAt() time.Time {
	return g.updatedAt
}

// AddNode registers a node in the index
func (g *Graph) AddNode(node *entities.Node) error {
	if node == nil {
		return pkgerrors.NewDomainError(pkgerrors.DomainValidationError, "NIL_NODE", "node cannot be nil")
	}

	nodeID := node.ID()
	if _, exists := g.nodes[nodeID]; exists {
		return pkgerrors.NewDomainError(pkgerrors.DomainConflictError, pkgerrors.ErrDuplicateNode.Code,
			fmt.Sprintf("node %q already exists in graph", nodeID)).
			WithDetail("node_id", nodeID.String())
	}

	if len(g.nodes) >= g.cfg.MaxNodesPerGraph {
		return pkgerrors.NewDomainError(pkgerrors.DomainBusinessRuleError, pkgerrors.ErrGraphLimitExceeded.Code,
			"maximum nodes reached").
			WithDetail("limit", g.cfg.MaxNodesPerGraph)
	}

	g.nodes[nodeID] = node
	g.nodeOrder = append(g.nodeOrder, nodeID)
	g.touch()
	g.addEvent(events.NewNodeRegistered(g.id.String(), g.version, nodeID, g.updatedAt))
	return nil
}

// RemoveNode drops a node from the index. Edges referencing it are left
// alone.
func (g *Graph) RemoveNode(nodeID valueobjects.NodeID) (*entities.Node, error) {
	node, exists := g.nodes[nodeID]
	if !exists {
		return nil, pkgerrors.NewNodeNotFound(nodeID.String())
	}

	delete(g.nodes, nodeID)
	for i, id := range g.nodeOrder {
		if id.Equals(nodeID) {
			g.nodeOrder = append(g.nodeOrder[:i], g.nodeOrder[i+1:]...)
			break
		}
	}
	g.touch()
	g.addEvent(events.NewNodeDeregistered(g.id.String(), g.version, nodeID, g.updatedAt))
	return node, nil
}

// HasNode checks membership by id
func (g *Graph) HasNode(nodeID valueobjects.NodeID) bool {
	_, exists := g.nodes[nodeID]
	return exists
}

// Contains checks membership of a node by identity value, so a distinct
// instance carrying the same id counts as a member.
func (g *Graph) Contains(node *entities.Node) bool {
	if node == nil {
		return false
	}
	return g.HasNode(node.ID())
}

// GetNode retrieves a node by ID
func (g *Graph) GetNode(nodeID valueobjects.NodeID) (*entities.Node, error) {
	node, exists := g.nodes[nodeID]
	if !exists {
		return nil, pkgerrors.NewNodeNotFound(nodeID.String())
	}
	return node, nil
}

// Nodes returns all nodes in insertion order
func (g *Graph) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(g.nodeOrder))
	for _, id := range g.nodeOrder {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// NodeCount returns the number of registered nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// AddEdge adds an edge to the edge universe. Wiring the endpoints'
// adjacency lists is up to the caller.
func (g *Graph) AddEdge(edge *entities.Edge) error {
	if edge == nil {
		return pkgerrors.NewDomainError(pkgerrors.DomainValidationError, "NIL_EDGE", "edge cannot be nil")
	}

	edgeID := edge.ID()
	if _, exists := g.edges[edgeID]; exists {
		return pkgerrors.NewDomainError(pkgerrors.DomainConflictError, pkgerrors.ErrDuplicateEdge.Code,
			fmt.Sprintf("edge %q already exists in graph", edgeID)).
			WithDetail("edge_id", edgeID.String())
	}

	if len(g.edges) >= g.cfg.MaxEdgesPerGraph {
		return pkgerrors.NewDomainError(pkgerrors.DomainBusinessRuleError, pkgerrors.ErrGraphLimitExceeded.Code,
			"maximum edges reached").
			WithDetail("limit", g.cfg.MaxEdgesPerGraph)
	}

	g.edges[edgeID] = edge
	g.edgeOrder = append(g.edgeOrder, edgeID)
	g.touch()
	g.addEvent(events.NewEdgeAdded(g.id.String(), g.version, edgeID, string(edge.Kind()), g.updatedAt))
	return nil
}

// RemoveEdge drops an edge from the edge universe
func (g *Graph) RemoveEdge(edgeID valueobjects.EdgeID) (*entities.Edge, error) {
	edge, exists := g.edges[edgeID]
	if !exists {
		return nil, pkgerrors.NewEdgeNotFound(edgeID.String())
	}

	delete(g.edges, edgeID)
	for i, id := range g.edgeOrder {
		if id.Equals(edgeID) {
			g.edgeOrder = append(g.edgeOrder[:i], g.edgeOrder[i+1:]...)
			break
		}
	}
	g.touch()
	g.addEvent(events.NewEdgeRemoved(g.id.String(), g.version, edgeID, string(edge.Kind()), g.updatedAt))
	return edge, nil
}

// HasEdge checks edge membership by id
func (g *Graph) HasEdge(edgeID valueobjects.EdgeID) bool {
	_, exists := g.edges[edgeID]
	return exists
}

// GetEdge retrieves an edge by ID
func (g *Graph) GetEdge(edgeID valueobjects.EdgeID) (*entities.Edge, error) {
	edge, exists := g.edges[edgeID]
	if !exists {
		return nil, pkgerrors.NewEdgeNotFound(edgeID.String())
	}
	return edge, nil
}

// Edges returns all edges in insertion order
func (g *Graph) Edges() []*entities.Edge {
	edges := make([]*entities.Edge, 0, len(g.edgeOrder))
	for _, id := range g.edgeOrder {
		edges = append(edges, g.edges[id])
	}
	return edges
}

// EdgeCount returns the size of the edge universe
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Clear drops every node and edge and returns them in insertion order.
// Node adjacency lists are not touched, so re-adding the returned
// elements restores the graph.
func (g *Graph) Clear() ([]*entities.Node, []*entities.Edge) {
	nodes, edges := g.Nodes(), g.Edges()

	g.nodes = make(map[valueobjects.NodeID]*entities.Node)
	g.nodeOrder = nil
	g.edges = make(map[valueobjects.EdgeID]*entities.Edge)
	g.edgeOrder = nil
	g.touch()
	g.addEvent(events.NewGraphCleared(g.id.String(), g.version, len(nodes), len(edges), g.updatedAt))
	return nodes, edges
}

// Validate reports the first dangling reference found, if any
func (g *Graph) Validate() error {
	for _, id := range g.edgeOrder {
		edge := g.edges[id]
		source, target := edge.Source(), edge.Target()
		if source == nil || !g.Contains(source) {
			return danglingError(edge, "edge references a source node outside the graph")
		}
		if target != nil && !g.Contains(target) {
			return danglingError(edge, "edge references a target node outside the graph")
		}
	}

	for _, id := range g.nodeOrder {
		node := g.nodes[id]
		for _, e := range node.OutEdges() {
			if !g.HasEdge(e.ID()) {
				return danglingError(e, fmt.Sprintf("node %s lists an outgoing edge outside the graph", id))
			}
		}
		for _, e := range node.InEdges() {
			if !g.HasEdge(e.ID()) {
				return danglingError(e, fmt.Sprintf("node %s lists an incoming edge outside the graph", id))
			}
		}
	}

	return nil
}

// GetUncommittedEvents returns all uncommitted domain events
func (g *Graph) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(g.events))
	copy(out, g.events)
	return out
}

// MarkEventsAsCommitted clears all uncommitted events
func (g *Graph) MarkEventsAsCommitted() {
	g.events = []events.DomainEvent{}
}

func (g *Graph) touch() {
	g.updatedAt = time.Now()
	g.version++
}

func (g *Graph) addEvent(event events.DomainEvent) {
	g.events = append(g.events, event)
}

func danglingError(edge *entities.Edge, message string) error {
	return pkgerrors.NewDomainError(pkgerrors.DomainBusinessRuleError, "DANGLING_REFERENCE", message).
		WithDetail("edge_id", edge.ID().String())
}
