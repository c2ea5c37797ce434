package events

import (
	"time"

	"graphcore/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

const (
	TypeNodeRegistered   = "graph.node_registered"
	TypeNodeDeregistered = "graph.node_deregistered"
	TypeEdgeAdded        = "graph.edge_added"
	TypeEdgeRemoved      = "graph.edge_removed"
	TypeGraphCleared     = "graph.cleared"
)

// NodeRegistered is raised when a node enters the graph index
type NodeRegistered struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NodeDeregistered is raised when a node leaves the graph index
type NodeDeregistered struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// EdgeAdded is raised when an edge enters the edge universe
type EdgeAdded struct {
	BaseEvent
	EdgeID valueobjects.EdgeID `json:"edge_id"`
	Kind   string              `json:"kind"`
}

// EdgeRemoved is raised when an edge leaves the edge universe
type EdgeRemoved struct {
	BaseEvent
	EdgeID valueobjects.EdgeID `json:"edge_id"`
	Kind   string              `json:"kind"`
}

// GraphCleared is raised when every element is dropped at once
type GraphCleared struct {
	BaseEvent
	NodeCount int `json:"node_count"`
	EdgeCount int `json:"edge_count"`
}

func base(graphID, eventType string, version int, at time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: graphID,
		EventType:   eventType,
		Timestamp:   at,
		Version:     version,
	}
}

// NewNodeRegistered creates a NodeRegistered event
func NewNodeRegistered(graphID string, version int, nodeID valueobjects.NodeID, at time.Time) NodeRegistered {
	return NodeRegistered{BaseEvent: base(graphID, TypeNodeRegistered, version, at), NodeID: nodeID}
}

// NewNodeDeregistered creates a NodeDeregistered event
func NewNodeDeregistered(graphID string, version int, nodeID valueobjects.NodeID, at time.Time) NodeDeregistered {
	return NodeDeregistered{BaseEvent: base(graphID, TypeNodeDeregistered, version, at), NodeID: nodeID}
}

// NewEdgeAdded creates an EdgeAdded event
func NewEdgeAdded(graphID string, version int, edgeID valueobjects.EdgeID, kind string, at time.Time) EdgeAdded {
	return EdgeAdded{BaseEvent: base(graphID, TypeEdgeAdded, version, at), EdgeID: edgeID, Kind: kind}
}

// NewEdgeRemoved creates an EdgeRemoved event
func NewEdgeRemoved(graphID string, version int, edgeID valueobjects.EdgeID, kind string, at time.Time) EdgeRemoved {
	return EdgeRemoved{BaseEvent: base(graphID, TypeEdgeRemoved, version, at), EdgeID: edgeID, Kind: kind}
}

// NewGraphCleared creates a GraphCleared event
func NewGraphCleared(graphID string, version int, nodes, edges int, at time.Time) GraphCleared {
	return GraphCleared{BaseEvent: base(graphID, TypeGraphCleared, version, at), NodeCount: nodes, EdgeCount: edges}
}
