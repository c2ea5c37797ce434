package commands

import (
	"go.uber.org/zap"

	"graphcore/domain/core/entities"
)

const NameClearGraph = "ClearGraph"

// ClearGraph empties the graph. Undo restores every node and edge with the
// adjacency lists they had.
type ClearGraph struct {
	lifecycle
	nodes []*entities.Node
	edges []*entities.Edge
}

func NewClearGraph() *ClearGraph {
	return &ClearGraph{}
}

func (c *ClearGraph) Name() string { return NameClearGraph }

func (c *ClearGraph) Allow(ec *ExecutionContext) (Result, error)   { return allow(ec, &c.lifecycle, c) }
func (c *ClearGraph) Execute(ec *ExecutionContext) (Result, error) { return execute(ec, &c.lifecycle, c) }
func (c *ClearGraph) Undo(ec *ExecutionContext) (Result, error)    { return undo(ec, &c.lifecycle, c) }

func (c *ClearGraph) check(ec *ExecutionContext) (Result, error) {
	return Success(), nil
}

func (c *ClearGraph) apply(ec *ExecutionContext) error {
	c.nodes, c.edges = ec.Graph.Clear()
	ec.log().Debug("Graph cleared",
		zap.String("graph_id", ec.Graph.ID().String()),
		zap.Int("nodes", len(c.nodes)),
		zap.Int("edges", len(c.edges)),
	)
	return nil
}

func (c *ClearGraph) revert(ec *ExecutionContext) error {
	for _, n := range c.nodes {
		if err := ec.Graph.AddNode(n); err != nil {
			return err
		}
	}
	for _, e := range c.edges {
		if err := ec.Graph.AddEdge(e); err != nil {
			return err
		}
	}
	return nil
}

func (c *ClearGraph) String() string {
	return c.Name() + "()"
}
