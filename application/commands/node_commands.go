package commands

import (
	"fmt"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	"graphcore/domain/rules"
	pkgerrors "graphcore/pkg/errors"
)

const (
	NameRegisterNode   = "RegisterNode"
	NameDeregisterNode = "DeregisterNode"
)

// RegisterNode adds a new node to the graph
type RegisterNode struct {
	lifecycle
	node *entities.Node
}

func NewRegisterNode(node *entities.Node) *RegisterNode {
	return &RegisterNode{node: node}
}

func (c *RegisterNode) Name() string { return NameRegisterNode }

// Node returns the node being registered
func (c *RegisterNode) Node() *entities.Node { return c.node }

func (c *RegisterNode) Allow(ec *ExecutionContext) (Result, error)   { return allow(ec, &c.lifecycle, c) }
func (c *RegisterNode) Execute(ec *ExecutionContext) (Result, error) { return execute(ec, &c.lifecycle, c) }
func (c *RegisterNode) Undo(ec *ExecutionContext) (Result, error)    { return undo(ec, &c.lifecycle, c) }

func (c *RegisterNode) check(ec *ExecutionContext) (Result, error) {
	if c.node == nil {
		return Result{}, pkgerrors.NewBadCommandArguments(c.Name(), "", "no node to register")
	}
	return evaluate(ec, func(rm rules.Manager) rules.Violations {
		return rm.EvaluateCardinality(ec.Graph, c.node, rules.OperationAdd)
	}), nil
}

func (c *RegisterNode) apply(ec *ExecutionContext) error {
	return ec.Graph.AddNode(c.node)
}

func (c *RegisterNode) revert(ec *ExecutionContext) error {
	_, err := ec.Graph.RemoveNode(c.node.ID())
	return err
}

func (c *RegisterNode) String() string {
	if c.node == nil {
		return fmt.Sprintf("%s(<nil>)", c.Name())
	}
	return fmt.Sprintf("%s(%s)", c.Name(), c.node.ID())
}

// DeregisterNode removes a node from the graph. The candidate is resolved
// by id when the command runs; edges still referencing it are the caller's
// concern, which is what SafeDeleteNode takes care of.
type DeregisterNode struct {
	lifecycle
	candidateID valueobjects.NodeID
	removed     *entities.Node
}

func NewDeregisterNode(node *entities.Node) *DeregisterNode {
	return &DeregisterNode{candidateID: node.ID()}
}

func NewDeregisterNodeByID(id valueobjects.NodeID) *DeregisterNode {
	return &DeregisterNode{candidateID: id}
}

func (c *DeregisterNode) Name() string { return NameDeregisterNode }

// CandidateID returns the id of the node being removed
func (c *DeregisterNode) CandidateID() valueobjects.NodeID { return c.candidateID }

func (c *DeregisterNode) Allow(ec *ExecutionContext) (Result, error)   { return allow(ec, &c.lifecycle, c) }
func (c *DeregisterNode) Execute(ec *ExecutionContext) (Result, error) { return execute(ec, &c.lifecycle, c) }
func (c *DeregisterNode) Undo(ec *ExecutionContext) (Result, error)    { return undo(ec, &c.lifecycle, c) }

func (c *DeregisterNode) check(ec *ExecutionContext) (Result, error) {
	candidate, err := resolveNode(ec, c.Name(), c.candidateID)
	if err != nil {
		return Result{}, err
	}
	return evaluate(ec, func(rm rules.Manager) rules.Violations {
		return rm.EvaluateCardinality(ec.Graph, candidate, rules.OperationDelete)
	}), nil
}

func (c *DeregisterNode) apply(ec *ExecutionContext) error {
	removed, err := ec.Graph.RemoveNode(c.candidateID)
	if err != nil {
		return err
	}
	c.removed = removed
	return nil
}

func (c *DeregisterNode) revert(ec *ExecutionContext) error {
	return ec.Graph.AddNode(c.removed)
}

func (c *DeregisterNode) String() string {
	return fmt.Sprintf("%s(%s)", c.Name(), c.candidateID)
}

// resolveNode looks a command argument up in the graph
func resolveNode(ec *ExecutionContext, command string, id valueobjects.NodeID) (*entities.Node, error) {
	node, err := ec.Graph.GetNode(id)
	if err != nil {
		return nil, pkgerrors.NewBadCommandArguments(command, id.String(),
			fmt.Sprintf("no node found for id %q", id)).WithCause(err)
	}
	return node, nil
}
