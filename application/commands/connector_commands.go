package commands

import (
	"fmt"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	"graphcore/domain/rules"
	pkgerrors "graphcore/pkg/errors"
)

const (
	NameAddConnector        = "AddConnector"
	NameDeleteConnector     = "DeleteConnector"
	NameSetConnectionTarget = "SetConnectionTarget"
)

// AddConnector registers a connector edge leaving sourceID. Its target is
// set separately with SetConnectionTarget.
type AddConnector struct {
	lifecycle
	sourceID valueobjects.NodeID
	edge     *entities.Edge
	magnet   int
}

func NewAddConnector(sourceID valueobjects.NodeID, edge *entities.Edge, magnet int) *AddConnector {
	return &AddConnector{sourceID: sourceID, edge: edge, magnet: magnet}
}

func (c *AddConnector) Name() string { return NameAddConnector }

// Edge returns the connector being added
func (c *AddConnector) Edge() *entities.Edge { return c.edge }

func (c *AddConnector) Allow(ec *ExecutionContext) (Result, error)   { return allow(ec, &c.lifecycle, c) }
func (c *AddConnector) Execute(ec *ExecutionContext) (Result, error) { return execute(ec, &c.lifecycle, c) }
func (c *AddConnector) Undo(ec *ExecutionContext) (Result, error)    { return undo(ec, &c.lifecycle, c) }

func (c *AddConnector) check(ec *ExecutionContext) (Result, error) {
	if c.edge == nil || !c.edge.IsConnector() {
		return Result{}, pkgerrors.NewBadCommandArguments(c.Name(), c.sourceID.String(), "a connector edge is required")
	}
	if _, err := resolveNode(ec, c.Name(), c.sourceID); err != nil {
		return Result{}, err
	}
	return Success(), nil
}

func (c *AddConnector) apply(ec *ExecutionContext) error {
	source, err := resolveNode(ec, c.Name(), c.sourceID)
	if err != nil {
		return err
	}
	if err := ec.Graph.AddEdge(c.edge); err != nil {
		return err
	}
	c.edge.SetSource(source)
	c.edge.SetSourceMagnet(c.magnet)
	source.AddOutEdge(c.edge)
	return nil
}

func (c *AddConnector) revert(ec *ExecutionContext) error {
	if source := c.edge.Source(); source != nil {
		source.RemoveOutEdge(c.edge)
	}
	c.edge.SetSource(nil)
	_, err := ec.Graph.RemoveEdge(c.edge.ID())
	return err
}

func (c *AddConnector) String() string {
	if c.edge == nil {
		return fmt.Sprintf("%s(%s,<nil>)", c.Name(), c.sourceID)
	}
	return fmt.Sprintf("%s(%s,%s)", c.Name(), c.sourceID, c.edge.ID())
}

// DeleteConnector detaches a connector from both endpoints and removes it
// from the graph.
type DeleteConnector struct {
	lifecycle
	edgeID valueobjects.EdgeID
	edge   *entities.Edge

	source  *entities.Node
	target  *entities.Node
	outAt   int
	inAt    int
	inGraph bool
}

// NewDeleteConnector deletes a known edge. The edge may already have left
// the graph, as when a sibling delete removed it first.
func NewDeleteConnector(edge *entities.Edge) *DeleteConnector {
	return &DeleteConnector{edgeID: edge.ID(), edge: edge}
}

// NewDeleteConnectorByID resolves the edge when the command runs
func NewDeleteConnectorByID(id valueobjects.EdgeID) *DeleteConnector {
	return &DeleteConnector{edgeID: id}
}

func (c *DeleteConnector) Name() string { return NameDeleteConnector }

func (c *DeleteConnector) Allow(ec *ExecutionContext) (Result, error)   { return allow(ec, &c.lifecycle, c) }
func (c *DeleteConnector) Execute(ec *ExecutionContext) (Result, error) { return execute(ec, &c.lifecycle, c) }
func (c *DeleteConnector) Undo(ec *ExecutionContext) (Result, error)    { return undo(ec, &c.lifecycle, c) }

func (c *DeleteConnector) check(ec *ExecutionContext) (Result, error) {
	if _, err := resolveEdge(ec, c.Name(), c.edgeID, c.edge); err != nil {
		return Result{}, err
	}
	return Success(), nil
}

func (c *DeleteConnector) apply(ec *ExecutionContext) error {
	edge, err := resolveEdge(ec, c.Name(), c.edgeID, c.edge)
	if err != nil {
		return err
	}

	c.edge = edge
	c.source, c.target = edge.Source(), edge.Target()
	c.outAt, c.inAt = -1, -1
	if c.source != nil {
		c.outAt = c.source.RemoveOutEdge(edge)
	}
	if c.target != nil {
		c.inAt = c.target.RemoveInEdge(edge)
	}
	c.inGraph = ec.Graph.HasEdge(edge.ID())
	if c.inGraph {
		if _, err := ec.Graph.RemoveEdge(edge.ID()); err != nil {
			return err
		}
	}
	return nil
}

func (c *DeleteConnector) revert(ec *ExecutionContext) error {
	if c.inGraph {
		if err := ec.Graph.AddEdge(c.edge); err != nil {
			return err
		}
	}
	if c.source != nil && c.outAt >= 0 {
		c.source.InsertOutEdge(c.outAt, c.edge)
	}
	if c.target != nil && c.inAt >= 0 {
		c.target.InsertInEdge(c.inAt, c.edge)
	}
	return nil
}

func (c *DeleteConnector) String() string {
	return fmt.Sprintf("%s(%s)", c.Name(), c.edgeID)
}

// SetConnectionTarget rebinds the target of a connector. A zero target id
// detaches it, leaving the edge in the graph with a nil target.
type SetConnectionTarget struct {
	lifecycle
	edgeID   valueobjects.EdgeID
	edge     *entities.Edge
	targetID valueobjects.NodeID
	magnet   int

	previous       *entities.Node
	previousAt     int
	previousMagnet int
	current        *entities.Node
}

// NewSetConnectionTarget rebinds a known edge; a nil target detaches it
func NewSetConnectionTarget(edge *entities.Edge, target *entities.Node, magnet int) *SetConnectionTarget {
	c := &SetConnectionTarget{edgeID: edge.ID(), edge: edge, magnet: magnet}
	if target != nil {
		c.targetID = target.ID()
	}
	return c
}

// NewSetConnectionTargetByID resolves edge and target when the command runs
func NewSetConnectionTargetByID(edgeID valueobjects.EdgeID, targetID valueobjects.NodeID, magnet int) *SetConnectionTarget {
	return &SetConnectionTarget{edgeID: edgeID, targetID: targetID, magnet: magnet}
}

func (c *SetConnectionTarget) Name() string { return NameSetConnectionTarget }

func (c *SetConnectionTarget) Allow(ec *ExecutionContext) (Result, error) {
	return allow(ec, &c.lifecycle, c)
}

func (c *SetConnectionTarget) Execute(ec *ExecutionContext) (Result, error) {
	return execute(ec, &c.lifecycle, c)
}

func (c *SetConnectionTarget) Undo(ec *ExecutionContext) (Result, error) {
	return undo(ec, &c.lifecycle, c)
}

func (c *SetConnectionTarget) resolve(ec *ExecutionContext) (*entities.Edge, *entities.Node, error) {
	edge, err := resolveEdge(ec, c.Name(), c.edgeID, c.edge)
	if err != nil {
		return nil, nil, err
	}
	if c.targetID.IsZero() {
		return edge, nil, nil
	}
	target, err := resolveNode(ec, c.Name(), c.targetID)
	if err != nil {
		return nil, nil, err
	}
	return edge, target, nil
}

func (c *SetConnectionTarget) check(ec *ExecutionContext) (Result, error) {
	edge, target, err := c.resolve(ec)
	if err != nil {
		return Result{}, err
	}
	if target == nil {
		return Success(), nil
	}
	return evaluate(ec, func(rm rules.Manager) rules.Violations {
		return rm.EvaluateConnection(ec.Graph, edge, edge.Source(), target)
	}), nil
}

func (c *SetConnectionTarget) apply(ec *ExecutionContext) error {
	edge, target, err := c.resolve(ec)
	if err != nil {
		return err
	}

	c.edge = edge
	c.previous = edge.Target()
	c.previousAt = -1
	if c.previous != nil {
		c.previousAt = c.previous.RemoveInEdge(edge)
	}
	if view, ok := edge.View(); ok {
		c.previousMagnet = view.TargetMagnet
	}

	edge.SetTarget(target)
	edge.SetTargetMagnet(c.magnet)
	if target != nil {
		target.AddInEdge(edge)
	}
	c.current = target
	return nil
}

func (c *SetConnectionTarget) revert(ec *ExecutionContext) error {
	if c.current != nil {
		c.current.RemoveInEdge(c.edge)
	}
	c.edge.SetTarget(c.previous)
	c.edge.SetTargetMagnet(c.previousMagnet)
	if c.previous != nil && c.previousAt >= 0 {
		c.previous.InsertInEdge(c.previousAt, c.edge)
	}
	return nil
}

func (c *SetConnectionTarget) String() string {
	target := "nil"
	if !c.targetID.IsZero() {
		target = c.targetID.String()
	}
	return fmt.Sprintf("%s(%s,%s)", c.Name(), c.edgeID, target)
}

// resolveEdge returns known when set, otherwise looks id up in the graph
func resolveEdge(ec *ExecutionContext, command string, id valueobjects.EdgeID, known *entities.Edge) (*entities.Edge, error) {
	if known != nil {
		return known, nil
	}
	edge, err := ec.Graph.GetEdge(id)
	if err != nil {
		return nil, pkgerrors.NewBadCommandArguments(command, id.String(),
			fmt.Sprintf("no edge found for id %q", id)).WithCause(err)
	}
	if !edge.IsConnector() {
		return nil, pkgerrors.NewBadCommandArguments(command, id.String(),
			fmt.Sprintf("edge %q is not a connector", id))
	}
	return edge, nil
}
