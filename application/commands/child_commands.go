package commands

import (
	"fmt"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	"graphcore/domain/rules"
	pkgerrors "graphcore/pkg/errors"
)

const (
	NameAddChild    = "AddChild"
	NameRemoveChild = "RemoveChild"
)

// AddChild links two registered nodes with a new containment edge
type AddChild struct {
	lifecycle
	parentID valueobjects.NodeID
	childID  valueobjects.NodeID
	edgeID   valueobjects.EdgeID
	edge     *entities.Edge
}

// NewAddChild creates the command; a zero edgeID gets a generated one
func NewAddChild(parentID, childID valueobjects.NodeID, edgeID valueobjects.EdgeID) *AddChild {
	if edgeID.IsZero() {
		edgeID = valueobjects.NewEdgeID()
	}
	return &AddChild{parentID: parentID, childID: childID, edgeID: edgeID}
}

func (c *AddChild) Name() string { return NameAddChild }

func (c *AddChild) Allow(ec *ExecutionContext) (Result, error)   { return allow(ec, &c.lifecycle, c) }
func (c *AddChild) Execute(ec *ExecutionContext) (Result, error) { return execute(ec, &c.lifecycle, c) }
func (c *AddChild) Undo(ec *ExecutionContext) (Result, error)    { return undo(ec, &c.lifecycle, c) }

func (c *AddChild) check(ec *ExecutionContext) (Result, error) {
	parent, child, err := c.resolve(ec)
	if err != nil {
		return Result{}, err
	}
	return evaluate(ec, func(rm rules.Manager) rules.Violations {
		return rm.EvaluateContainment(ec.Graph, parent, child)
	}), nil
}

func (c *AddChild) resolve(ec *ExecutionContext) (*entities.Node, *entities.Node, error) {
	parent, err := resolveNode(ec, c.Name(), c.parentID)
	if err != nil {
		return nil, nil, err
	}
	child, err := resolveNode(ec, c.Name(), c.childID)
	if err != nil {
		return nil, nil, err
	}
	return parent, child, nil
}

func (c *AddChild) apply(ec *ExecutionContext) error {
	parent, child, err := c.resolve(ec)
	if err != nil {
		return err
	}

	edge := entities.NewChildEdge(c.edgeID)
	if err := ec.Graph.AddEdge(edge); err != nil {
		return err
	}
	edge.SetSource(parent)
	edge.SetTarget(child)
	parent.AddOutEdge(edge)
	child.AddInEdge(edge)
	c.edge = edge
	return nil
}

func (c *AddChild) revert(ec *ExecutionContext) error {
	c.edge.Source().RemoveOutEdge(c.edge)
	c.edge.Target().RemoveInEdge(c.edge)
	_, err := ec.Graph.RemoveEdge(c.edge.ID())
	return err
}

func (c *AddChild) String() string {
	return fmt.Sprintf("%s(%s,%s)", c.Name(), c.parentID, c.childID)
}

// RemoveChild drops the containment edge between parent and child. Undo
// puts the edge back at its former positions in both adjacency lists.
type RemoveChild struct {
	lifecycle
	parentID valueobjects.NodeID
	childID  valueobjects.NodeID

	edge    *entities.Edge
	outAt   int
	inAt    int
	inGraph bool
}

func NewRemoveChild(parentID, childID valueobjects.NodeID) *RemoveChild {
	return &RemoveChild{parentID: parentID, childID: childID}
}

func (c *RemoveChild) Name() string { return NameRemoveChild }

func (c *RemoveChild) Allow(ec *ExecutionContext) (Result, error)   { return allow(ec, &c.lifecycle, c) }
func (c *RemoveChild) Execute(ec *ExecutionContext) (Result, error) { return execute(ec, &c.lifecycle, c) }
func (c *RemoveChild) Undo(ec *ExecutionContext) (Result, error)    { return undo(ec, &c.lifecycle, c) }

func (c *RemoveChild) check(ec *ExecutionContext) (Result, error) {
	if _, _, _, err := c.resolve(ec); err != nil {
		return Result{}, err
	}
	return Success(), nil
}

func (c *RemoveChild) resolve(ec *ExecutionContext) (*entities.Node, *entities.Node, *entities.Edge, error) {
	parent, err := resolveNode(ec, c.Name(), c.parentID)
	if err != nil {
		return nil, nil, nil, err
	}
	child, err := resolveNode(ec, c.Name(), c.childID)
	if err != nil {
		return nil, nil, nil, err
	}
	edge := parent.ChildEdgeTo(child)
	if edge == nil {
		return nil, nil, nil, pkgerrors.NewBadCommandArguments(c.Name(), c.childID.String(),
			fmt.Sprintf("node %s is not a child of %s", c.childID, c.parentID))
	}
	return parent, child, edge, nil
}

func (c *RemoveChild) apply(ec *ExecutionContext) error {
	parent, child, edge, err := c.resolve(ec)
	if err != nil {
		return err
	}

	c.outAt = parent.RemoveOutEdge(edge)
	c.inAt = child.RemoveInEdge(edge)
	c.inGraph = ec.Graph.HasEdge(edge.ID())
	if c.inGraph {
		if _, err := ec.Graph.RemoveEdge(edge.ID()); err != nil {
			return err
		}
	}
	c.edge = edge
	return nil
}

func (c *RemoveChild) revert(ec *ExecutionContext) error {
	if c.inGraph {
		if err := ec.Graph.AddEdge(c.edge); err != nil {
			return err
		}
	}
	if c.outAt >= 0 {
		c.edge.Source().InsertOutEdge(c.outAt, c.edge)
	}
	if c.inAt >= 0 {
		c.edge.Target().InsertInEdge(c.inAt, c.edge)
	}
	return nil
}

func (c *RemoveChild) String() string {
	return fmt.Sprintf("%s(%s,%s)", c.Name(), c.parentID, c.childID)
}
