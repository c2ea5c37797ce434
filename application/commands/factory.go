package commands

import (
	"fmt"

	"go.uber.org/zap"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	"graphcore/domain/services/safedelete"
)

// Factory builds commands: safe-delete composites from processor events,
// and any command from a validated Request.
type Factory struct {
	processor *safedelete.Processor
	logger    *zap.Logger
}

// NewFactory creates a factory. A nil processor gets an unbounded one.
func NewFactory(processor *safedelete.Processor, logger *zap.Logger) *Factory {
	if processor == nil {
		processor = safedelete.NewProcessor(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{processor: processor, logger: logger}
}

// Build returns the safe-delete composite for candidate
func (f *Factory) Build(candidate *entities.Node) *SafeDeleteNode {
	return newSafeDeleteNode(f, candidate.ID(), nil)
}

// BuildByID returns the safe-delete composite for a node id, resolved when
// the command first runs.
func (f *Factory) BuildByID(id valueobjects.NodeID) *SafeDeleteNode {
	return newSafeDeleteNode(f, id, nil)
}

// commandFor maps one processor event to the command handling it. Nested
// safe deletes share path so containment cycles are caught.
func (f *Factory) commandFor(ev safedelete.Event, path *safedelete.Path) Command {
	switch e := ev.(type) {
	case safedelete.ChildNodeEvent:
		return newSafeDeleteNode(f, e.Child.ID(), path)
	case safedelete.InViewEdgeEvent:
		return NewSetConnectionTarget(e.Edge, nil, 0)
	case safedelete.InChildEdgeEvent:
		return NewRemoveChild(e.Parent.ID(), e.Candidate.ID())
	case safedelete.OutEdgeEvent:
		return NewDeleteConnector(e.Edge)
	case safedelete.NodeEvent:
		return NewDeregisterNode(e.Node)
	default:
		panic(fmt.Sprintf("commands: unhandled safe delete event %T", ev))
	}
}
