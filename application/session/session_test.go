package session

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"graphcore/application/commands"
	"graphcore/application/commands/bus"
	"graphcore/domain/core/aggregates"
	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	"graphcore/domain/rules"
	"graphcore/domain/services/safedelete"
	pkgerrors "graphcore/pkg/errors"
	"graphcore/tests/fixtures"
	"graphcore/tests/mocks"
)

func newManager() *bus.CommandManager {
	return bus.NewCommandManager(commands.NewFactory(safedelete.NewProcessor(0), nil), nil)
}

// refusingDeleteOf refuses DELETE of the node with the given id and allows
// everything else
func refusingDeleteOf(id string) *mocks.RulesManager {
	m := &mocks.RulesManager{}
	m.On("EvaluateCardinality", mock.Anything, mock.MatchedBy(func(n *entities.Node) bool {
		return n.ID().String() == id
	}), rules.OperationDelete).Return(mocks.CardinalityError(id, rules.OperationDelete))
	m.On("EvaluateCardinality", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.On("EvaluateContainment", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.On("EvaluateConnection", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return m
}

func counts(t *testing.T, s *Session) (int, int) {
	t.Helper()
	var nodes, edges int
	require.NoError(t, s.View(func(g *aggregates.Graph) error {
		nodes, edges = g.NodeCount(), g.EdgeCount()
		return nil
	}))
	return nodes, edges
}

func TestSession_ExecuteAndUndo(t *testing.T) {
	// Arrange
	s := New(fixtures.ContainerScenario().MustBuild(), nil, newManager(), nil)
	ctx := context.Background()

	// Act
	_, res, err := s.Send(ctx, commands.SafeDeleteNodeRequest{CandidateID: "C"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, commands.ResultSuccess, res.Type)
	require.Len(t, s.History(), 1)
	nodes, edges := counts(t, s)
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 1, edges)

	// Act
	undone, err := s.Undo(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "SafeDeleteNode(C)", undone.String())
	assert.Empty(t, s.History())
	nodes, edges = counts(t, s)
	assert.Equal(t, 3, nodes)
	assert.Equal(t, 2, edges)
}

func TestSession_UndoWithoutHistory(t *testing.T) {
	// Arrange
	s := New(fixtures.NewGraphBuilder().MustBuild(), nil, newManager(), nil)

	// Act
	cmd, err := s.Undo(context.Background())

	// Assert
	assert.Nil(t, cmd)
	assert.ErrorIs(t, err, pkgerrors.ErrCommandNotExecuted)
}

func TestSession_RefusedCommandIsNotRecorded(t *testing.T) {
	// Arrange
	s := New(fixtures.ContainerScenario().MustBuild(), refusingDeleteOf("X"), newManager(), nil)

	// Act
	_, res, err := s.Send(context.Background(), commands.DeregisterNodeRequest{NodeID: "X"})

	// Assert
	require.NoError(t, err)
	assert.True(t, res.IsError())
	assert.Empty(t, s.History())
}

func TestSession_ExecuteAtomic(t *testing.T) {
	tests := []struct {
		name      string
		rules     rules.Manager
		candidate string
		wantState AtomicState
		wantNodes int
		wantEdges int
		history   int
	}{
		{
			name:      "completes",
			rules:     mocks.Permissive(),
			candidate: "lane",
			wantState: AtomicStateCompleted,
			wantNodes: 2,
			wantEdges: 1,
			history:   1,
		},
		{
			name:      "compensates a partial cascade",
			rules:     refusingDeleteOf("end"),
			candidate: "lane",
			wantState: AtomicStateCompensated,
			wantNodes: 6,
			wantEdges: 7,
		},
		{
			name:      "restores a removed connector",
			rules:     refusingDeleteOf("note"),
			candidate: "note",
			wantState: AtomicStateCompensated,
			wantNodes: 6,
			wantEdges: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			m := newManager()
			s := New(fixtures.ProcessScenario().MustBuild(), tt.rules, m, nil)
			cmd, err := m.Build(commands.SafeDeleteNodeRequest{CandidateID: tt.candidate})
			require.NoError(t, err)

			// Act
			_, state, err := s.ExecuteAtomic(context.Background(), cmd)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.wantState, state)
			nodes, edges := counts(t, s)
			assert.Equal(t, tt.wantNodes, nodes)
			assert.Equal(t, tt.wantEdges, edges)
			assert.Len(t, s.History(), tt.history)
		})
	}
}

func TestSession_ConcurrentSends(t *testing.T) {
	// Arrange
	s := New(fixtures.NewGraphBuilder().MustBuild(), nil, newManager(), nil)
	var wg sync.WaitGroup

	// Act
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := s.Send(context.Background(), commands.RegisterNodeRequest{
				NodeID:  fmt.Sprintf("n%d", i),
				Stencil: "Task",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Assert
	nodes, _ := counts(t, s)
	assert.Equal(t, 20, nodes)
	assert.Len(t, s.History(), 20)
}

// leakyCommand registers a node, reports an ERROR and forgets the node on
// undo, so compensation cannot restore the graph
type leakyCommand struct {
	state commands.State
}

func (c *leakyCommand) String() string { return "Leaky" }
func (c *leakyCommand) Name() string   { return "Leaky" }
func (c *leakyCommand) State() commands.State {
	return c.state
}

func (c *leakyCommand) Allow(*commands.ExecutionContext) (commands.Result, error) {
	return commands.Success(), nil
}

func (c *leakyCommand) Execute(ec *commands.ExecutionContext) (commands.Result, error) {
	n := entities.NewNode(valueobjects.MustNodeID("leaked"), entities.NewDefinition("Task"))
	if err := ec.Graph.AddNode(n); err != nil {
		return commands.Result{}, err
	}
	c.state = commands.StateExecuted
	return commands.NewResult(mocks.CardinalityError("leaked", rules.OperationAdd)), nil
}

func (c *leakyCommand) Undo(*commands.ExecutionContext) (commands.Result, error) {
	c.state = commands.StateUndone
	return commands.Success(), nil
}

func TestSession_ExecuteAtomic_DetectsIncompleteCompensation(t *testing.T) {
	// Arrange
	s := New(fixtures.ContainerScenario().MustBuild(), nil, newManager(), nil)

	// Act
	res, state, err := s.ExecuteAtomic(context.Background(), &leakyCommand{})

	// Assert
	assert.True(t, res.IsError())
	assert.Equal(t, AtomicStateCompensationFailed, state)
	assert.ErrorContains(t, err, "did not restore the graph")
	nodes, _ := counts(t, s)
	assert.Equal(t, 4, nodes)
	assert.Empty(t, s.History())
}
