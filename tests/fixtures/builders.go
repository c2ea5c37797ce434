package fixtures

import (
	"fmt"

	"graphcore/domain/config"
	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
)

// GraphBuilder assembles test graphs directly against the store, wiring
// adjacency lists the same way the elementary commands do.
type GraphBuilder struct {
	name  string
	cfg   *config.DomainConfig
	nodes map[string]*entities.Node
	steps []func(g *aggregates.Graph) error
}

// NewGraphBuilder starts a graph with default limits
func NewGraphBuilder() *GraphBuilder {
	return &GraphBuilder{
		name:  "Test Diagram",
		cfg:   config.DefaultDomainConfig(),
		nodes: make(map[string]*entities.Node),
	}
}

func (b *GraphBuilder) WithName(name string) *GraphBuilder {
	b.name = name
	return b
}

func (b *GraphBuilder) WithConfig(cfg *config.DomainConfig) *GraphBuilder {
	b.cfg = cfg
	return b
}

// Node adds a node with the given stencil and extra role labels
func (b *GraphBuilder) Node(id, stencil string, labels ...string) *GraphBuilder {
	n := entities.NewNode(valueobjects.MustNodeID(id), entities.NewDefinition(stencil, labels...))
	b.nodes[id] = n
	b.steps = append(b.steps, func(g *aggregates.Graph) error {
		return g.AddNode(n)
	})
	return b
}

// Child adds a containment edge parent -> child
func (b *GraphBuilder) Child(edgeID, parent, child string) *GraphBuilder {
	return b.edge(entities.NewChildEdge(valueobjects.MustEdgeID(edgeID)), parent, child)
}

// View adds a view connector source -> target. An empty target leaves it
// detached.
func (b *GraphBuilder) View(edgeID, role, source, target string) *GraphBuilder {
	return b.edge(entities.NewViewEdge(valueobjects.MustEdgeID(edgeID), role, entities.ViewConnector{}), source, target)
}

// Connector adds a connector without view content
func (b *GraphBuilder) Connector(edgeID, role, source, target string) *GraphBuilder {
	return b.edge(entities.NewConnectorEdge(valueobjects.MustEdgeID(edgeID), role), source, target)
}

func (b *GraphBuilder) edge(e *entities.Edge, source, target string) *GraphBuilder {
	b.steps = append(b.steps, func(g *aggregates.Graph) error {
		src, ok := b.nodes[source]
		if !ok {
			return fmt.Errorf("fixture edge %s: unknown source %q", e.ID(), source)
		}
		e.SetSource(src)
		src.AddOutEdge(e)

		if target != "" {
			tgt, ok := b.nodes[target]
			if !ok {
				return fmt.Errorf("fixture edge %s: unknown target %q", e.ID(), target)
			}
			e.SetTarget(tgt)
			tgt.AddInEdge(e)
		}
		return g.AddEdge(e)
	})
	return b
}

// Build creates the graph and commits its events
func (b *GraphBuilder) Build() (*aggregates.Graph, error) {
	g, err := aggregates.NewGraphWithConfig(b.name, b.cfg)
	if err != nil {
		return nil, err
	}
	for _, step := range b.steps {
		if err := step(g); err != nil {
			return nil, err
		}
	}
	g.MarkEventsAsCommitted()
	return g, nil
}

func (b *GraphBuilder) MustBuild() *aggregates.Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}

// Get returns a node declared on the builder
func (b *GraphBuilder) Get(id string) *entities.Node {
	n, ok := b.nodes[id]
	if !ok {
		panic(fmt.Sprintf("fixture node %q not declared", id))
	}
	return n
}

// ContainerScenario is P contains C, and X -V-> C.
func ContainerScenario() *GraphBuilder {
	return NewGraphBuilder().
		Node("P", "Lane").
		Node("C", "Task", "activity").
		Node("X", "Task", "activity").
		Child("P-C", "P", "C").
		View("V", "SequenceFlow", "X", "C")
}

// ProcessScenario is a pool with a lane holding a small flow, plus an
// annotation outside the pool:
//
//	pool ⊃ lane ⊃ {start, task, end}
//	start -f1-> task -f2-> end, note -a1-> task
func ProcessScenario() *GraphBuilder {
	return NewGraphBuilder().
		Node("pool", "Pool").
		Node("lane", "Lane").
		Node("start", "StartEvent", "event").
		Node("task", "Task", "activity").
		Node("end", "EndEvent", "event").
		Node("note", "TextAnnotation").
		Child("pool-lane", "pool", "lane").
		Child("lane-start", "lane", "start").
		Child("lane-task", "lane", "task").
		Child("lane-end", "lane", "end").
		View("f1", "SequenceFlow", "start", "task").
		View("f2", "SequenceFlow", "task", "end").
		View("a1", "Association", "note", "task")
}
