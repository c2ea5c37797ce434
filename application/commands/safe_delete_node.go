package commands

import (
	"fmt"

	"go.uber.org/zap"

	"graphcore/domain/core/valueobjects"
	"graphcore/domain/rules"
	"graphcore/domain/services/safedelete"
	pkgerrors "graphcore/pkg/errors"
)

const NameSafeDeleteNode = "SafeDeleteNode"

// SafeDeleteNode deletes a node together with everything structurally
// dependent on it: children are safe-deleted first, incoming connectors are
// detached, the containment edge from the parent and outgoing connectors are
// removed, then the node is deregistered.
//
// The plan is computed from the graph the first time the command is
// allowed or executed. Rules are delegated to the planned commands. A node
// contained by several deleted parents is planned under each of them; the
// first cascade removes it and the later ones apply nothing.
type SafeDeleteNode struct {
	*Composite
	candidateID valueobjects.NodeID
	factory     *Factory
	path        *safedelete.Path
	initialized bool
	skipped     bool
}

func newSafeDeleteNode(f *Factory, candidateID valueobjects.NodeID, path *safedelete.Path) *SafeDeleteNode {
	return &SafeDeleteNode{
		Composite:   NewComposite(NameSafeDeleteNode, true),
		candidateID: candidateID,
		factory:     f,
		path:        path,
	}
}

// CandidateID returns the id of the node being deleted
func (c *SafeDeleteNode) CandidateID() valueobjects.NodeID {
	return c.candidateID
}

// Initialize plans the sub-commands. It is idempotent; later calls keep the
// first plan.
func (c *SafeDeleteNode) Initialize(ec *ExecutionContext) error {
	if c.initialized {
		return nil
	}

	candidate, err := resolveNode(ec, c.Name(), c.candidateID)
	if err != nil {
		return err
	}
	if c.path == nil {
		c.path = safedelete.NewPath(ec.Graph.Config().MaxContainmentDepth)
	}

	err = c.factory.processor.Run(candidate, func(ev safedelete.Event) error {
		c.Add(c.factory.commandFor(ev, c.path))
		return nil
	})
	if err != nil {
		return err
	}

	c.initialized = true
	ec.log().Debug("Safe delete planned",
		zap.String("node_id", c.candidateID.String()),
		zap.Int("commands", len(c.commands)),
	)
	return nil
}

// Allow implements Command. Beyond what the planned commands report, the
// candidate's own DELETE cardinality is checked when rules are configured.
func (c *SafeDeleteNode) Allow(ec *ExecutionContext) (Result, error) {
	if err := c.Initialize(ec); err != nil {
		return Result{}, err
	}
	if err := c.path.Enter(c.candidateID); err != nil {
		return Result{}, err
	}
	defer c.path.Leave()

	res, err := c.allowChildren(ec)
	if err != nil {
		return Result{}, err
	}
	if !res.IsError() && ec.HasRules() {
		candidate, err := ec.Graph.GetNode(c.candidateID)
		if err != nil {
			return Result{}, pkgerrors.NewBadCommandArguments(c.Name(), c.candidateID.String(),
				"no node found for id").WithCause(err)
		}
		res = res.Merge(NewResult(ec.Rules.EvaluateCardinality(ec.Graph, candidate, rules.OperationDelete)))
	}

	c.recordAllow(res)
	return res, nil
}

// Execute implements Command
func (c *SafeDeleteNode) Execute(ec *ExecutionContext) (Result, error) {
	if err := c.beginExecute(c.Name()); err != nil {
		return Result{}, err
	}
	if err := c.Initialize(ec); err != nil {
		return Result{}, err
	}
	if err := c.path.Enter(c.candidateID); err != nil {
		return Result{}, err
	}
	defer c.path.Leave()

	if c.path.Removed(c.candidateID) && !ec.Graph.HasNode(c.candidateID) {
		c.skipped = true
		c.state = StateExecuted
		ec.log().Debug("Safe delete skipped, node already removed",
			zap.String("node_id", c.candidateID.String()),
		)
		return Success(), nil
	}

	res, err := c.Composite.Execute(ec)
	if err == nil && !ec.Graph.HasNode(c.candidateID) {
		c.path.MarkRemoved(c.candidateID)
	}
	return res, err
}

// Undo implements Command. A skipped cascade has nothing to revert.
func (c *SafeDeleteNode) Undo(ec *ExecutionContext) (Result, error) {
	res, err := c.Composite.Undo(ec)
	if err != nil {
		return res, err
	}
	if !c.skipped && c.path != nil {
		c.path.Unmark(c.candidateID)
	}
	return res, nil
}

func (c *SafeDeleteNode) String() string {
	return fmt.Sprintf("%s(%s)", c.Name(), c.candidateID)
}
