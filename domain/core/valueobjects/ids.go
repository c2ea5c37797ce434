package valueobjects

import (
	"strings"

	"github.com/google/uuid"
	pkgerrors "graphcore/pkg/errors"
)

// NodeID is a value object representing a unique node identifier.
// Two nodes are the same graph member exactly when their NodeIDs are equal.
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// NewNodeIDFromString creates a NodeID from an existing string.
// Stencil documents carry their own resource ids, so any non-blank
// string is accepted, not only UUIDs.
func NewNodeIDFromString(id string) (NodeID, error) {
	if strings.TrimSpace(id) == "" {
		return NodeID{}, pkgerrors.ErrInvalidNodeID
	}
	return NodeID{value: id}, nil
}

// MustNodeID is NewNodeIDFromString for literals known to be valid
func MustNodeID(id string) NodeID {
	nodeID, err := NewNodeIDFromString(id)
	if err != nil {
		panic(err)
	}
	return nodeID
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// EdgeID identifies an edge within a graph
type EdgeID struct {
	value string
}

// NewEdgeID creates a new random EdgeID
func NewEdgeID() EdgeID {
	return EdgeID{value: uuid.New().String()}
}

// NewEdgeIDFromString creates an EdgeID from an existing string
func NewEdgeIDFromString(id string) (EdgeID, error) {
	if strings.TrimSpace(id) == "" {
		return EdgeID{}, pkgerrors.ErrInvalidEdgeID
	}
	return EdgeID{value: id}, nil
}

// MustEdgeID is NewEdgeIDFromString for literals known to be valid
func MustEdgeID(id string) EdgeID {
	edgeID, err := NewEdgeIDFromString(id)
	if err != nil {
		panic(err)
	}
	return edgeID
}

func (id EdgeID) String() string {
	return id.value
}

func (id EdgeID) Equals(other EdgeID) bool {
	return id.value == other.value
}

func (id EdgeID) IsZero() bool {
	return id.value == ""
}
