package commands

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"graphcore/domain/config"
	"graphcore/domain/core/valueobjects"
	"graphcore/domain/rules"
	"graphcore/domain/services/safedelete"
	pkgerrors "graphcore/pkg/errors"
	"graphcore/tests/fixtures"
	"graphcore/tests/mocks"
)

func newFactory() *Factory {
	return NewFactory(safedelete.NewProcessor(0), nil)
}

func nodeIDs(ec *ExecutionContext) []string {
	var ids []string
	for _, n := range ec.Graph.Nodes() {
		ids = append(ids, n.ID().String())
	}
	return ids
}

func edgeIDs(ec *ExecutionContext) []string {
	var ids []string
	for _, e := range ec.Graph.Edges() {
		ids = append(ids, e.ID().String())
	}
	return ids
}

func TestSafeDeleteNode_IsolatedNode(t *testing.T) {
	// Arrange
	b := fixtures.NewGraphBuilder().Node("A", "Task")
	ec := NewExecutionContext(b.MustBuild(), nil, nil)
	cmd := newFactory().Build(b.Get("A"))

	// Act
	res, err := cmd.Execute(ec)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ResultSuccess, res.Type)
	assert.Equal(t, []string{"DeregisterNode(A)"}, describe(cmd.Commands()))
	assert.Equal(t, 0, ec.Graph.NodeCount())
}

func TestSafeDeleteNode_ContainedNodeWithIncomingView(t *testing.T) {
	// Arrange
	b := fixtures.ContainerScenario()
	ec := NewExecutionContext(b.MustBuild(), nil, nil)
	cmd := newFactory().Build(b.Get("C"))

	// Act
	require.NoError(t, cmd.Initialize(ec))
	plan := describe(cmd.Commands())
	res, err := cmd.Execute(ec)

	// Assert
	want := []string{"SetConnectionTarget(V,nil)", "RemoveChild(P,C)", "DeregisterNode(C)"}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, err)
	assert.Equal(t, ResultSuccess, res.Type)
	assert.Equal(t, []string{"P", "X"}, nodeIDs(ec))
	assert.Equal(t, []string{"V"}, edgeIDs(ec))

	v, err := ec.Graph.GetEdge(valueobjects.MustEdgeID("V"))
	require.NoError(t, err)
	assert.Nil(t, v.Target(), "incoming view survives detached")
	assert.Same(t, b.Get("X"), v.Source())
	assert.Empty(t, b.Get("P").OutEdges())
	assert.NoError(t, ec.Graph.Validate())
}

func TestSafeDeleteNode_OutgoingConnectorsAreRemoved(t *testing.T) {
	b := fixtures.ContainerScenario()
	ec := NewExecutionContext(b.MustBuild(), nil, nil)

	res, err := newFactory().Build(b.Get("X")).Execute(ec)

	require.NoError(t, err)
	assert.Equal(t, ResultSuccess, res.Type)
	assert.False(t, ec.Graph.HasEdge(valueobjects.MustEdgeID("V")))
	assert.Len(t, b.Get("C").InEdges(), 1, "only the containment edge remains")
	assert.Equal(t, []string{"P-C"}, edgeIDs(ec))
	assert.NoError(t, ec.Graph.Validate())
}

func TestSafeDeleteNode_ChildrenBeforeParent(t *testing.T) {
	b := fixtures.ProcessScenario()
	ec := NewExecutionContext(b.MustBuild(), nil, nil)

	res, err := newFactory().Build(b.Get("pool")).Execute(ec)

	require.NoError(t, err)
	assert.Equal(t, ResultSuccess, res.Type)
	if diff := cmp.Diff([]string{"start", "task", "end", "lane", "pool"}, deregistered(ec)); diff != "" {
		t.Errorf("deregistration order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"note"}, nodeIDs(ec))
	assert.Equal(t, []string{"a1"}, edgeIDs(ec))
	assert.NoError(t, ec.Graph.Validate())
}

func TestSafeDeleteNode_UndoRestoresGraph(t *testing.T) {
	b := fixtures.ProcessScenario()
	ec := NewExecutionContext(b.MustBuild(), nil, nil)
	nodesBefore, edgesBefore := nodeIDs(ec), edgeIDs(ec)
	taskIn, laneOut := b.Get("task").InEdges(), b.Get("lane").OutEdges()
	cmd := newFactory().Build(b.Get("pool"))

	_, err := cmd.Execute(ec)
	require.NoError(t, err)
	_, err = cmd.Undo(ec)
	require.NoError(t, err)

	assert.ElementsMatch(t, nodesBefore, nodeIDs(ec))
	assert.ElementsMatch(t, edgesBefore, edgeIDs(ec))
	assert.Equal(t, taskIn, b.Get("task").InEdges())
	assert.Equal(t, laneOut, b.Get("lane").OutEdges())
	a1, _ := ec.Graph.GetEdge(valueobjects.MustEdgeID("a1"))
	assert.Same(t, b.Get("task"), a1.Target())
	assert.NoError(t, ec.Graph.Validate())
}

func TestSafeDeleteNode_AllowIsIdempotentAndPure(t *testing.T) {
	b := fixtures.ContainerScenario()
	g := b.MustBuild()
	rs := &rules.RuleSet{Name: "tasks", Cardinality: []rules.CardinalityRule{{Role: "Task", Min: 1, Max: rules.Unbounded}}}
	ec := NewExecutionContext(g, rs, nil)
	version := g.Version()
	cmd := newFactory().Build(b.Get("C"))

	first, err := cmd.Allow(ec)
	require.NoError(t, err)
	second, err := cmd.Allow(ec)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, ResultSuccess, first.Type)
	assert.Equal(t, version, g.Version())
	assert.Equal(t, StateAllowed, cmd.State())
	assert.Len(t, b.Get("C").InEdges(), 2)
}

func TestSafeDeleteNode_AllowChecksCandidateCardinality(t *testing.T) {
	b := fixtures.ContainerScenario()
	g := b.MustBuild()
	rm := &mocks.RulesManager{}
	rm.On("EvaluateCardinality", g, b.Get("C"), rules.OperationDelete).Return(nil)
	cmd := newFactory().Build(b.Get("C"))

	res, err := cmd.Allow(NewExecutionContext(g, rm, nil))

	require.NoError(t, err)
	assert.Equal(t, ResultSuccess, res.Type)
	// once for the planned DeregisterNode, once for the composite itself
	rm.AssertNumberOfCalls(t, "EvaluateCardinality", 2)
	rm.AssertNotCalled(t, "EvaluateConnection", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSafeDeleteNode_CardinalityErrorHaltsBeforeDeregistration(t *testing.T) {
	b := fixtures.ContainerScenario()
	g := b.MustBuild()
	rs := &rules.RuleSet{Name: "two tasks", Cardinality: []rules.CardinalityRule{{Role: "Task", Min: 2, Max: rules.Unbounded}}}
	ec := NewExecutionContext(g, rs, nil)
	cmd := newFactory().Build(b.Get("C"))

	allowed, err := cmd.Allow(ec)
	require.NoError(t, err)
	assert.True(t, allowed.IsError())

	res, err := cmd.Execute(ec)

	require.NoError(t, err)
	assert.True(t, res.IsError())
	require.NotEmpty(t, res.Violations)
	assert.Equal(t, rules.RuleCardinality, res.Violations[0].Rule)
	assert.True(t, g.HasNode(valueobjects.MustNodeID("C")), "node stays")
	assert.Empty(t, deregistered(ec))

	// no automatic rollback: the detach and unlink before the refusal stay
	assert.Len(t, cmd.Executed(), 2)
	assert.Nil(t, b.Get("C").Parent())

	_, err = cmd.Undo(ec)
	require.NoError(t, err)
	assert.Same(t, b.Get("P"), b.Get("C").Parent())
	v, _ := g.GetEdge(valueobjects.MustEdgeID("V"))
	assert.Same(t, b.Get("C"), v.Target())
}

func TestSafeDeleteNode_MissingCandidate(t *testing.T) {
	g := fixtures.ContainerScenario().MustBuild()
	version := g.Version()
	rm := &mocks.RulesManager{}

	for name, run := range map[string]func(cmd *SafeDeleteNode, ec *ExecutionContext) error{
		"execute": func(cmd *SafeDeleteNode, ec *ExecutionContext) error {
			_, err := cmd.Execute(ec)
			return err
		},
		"allow": func(cmd *SafeDeleteNode, ec *ExecutionContext) error {
			_, err := cmd.Allow(ec)
			return err
		},
	} {
		t.Run(name, func(t *testing.T) {
			cmd := newFactory().BuildByID(valueobjects.MustNodeID("ghost"))

			err := run(cmd, NewExecutionContext(g, rm, nil))

			assert.True(t, pkgerrors.IsBadCommandArguments(err))
			assert.Equal(t, version, g.Version())
			assert.Empty(t, cmd.Commands())
		})
	}
	rm.AssertNotCalled(t, "EvaluateCardinality", mock.Anything, mock.Anything, mock.Anything)
}

func TestSafeDeleteNode_CandidateGoneAfterPlanning(t *testing.T) {
	b := fixtures.NewGraphBuilder().Node("A", "Task")
	g := b.MustBuild()
	ec := NewExecutionContext(g, mocks.Permissive(), nil)
	cmd := newFactory().Build(b.Get("A"))
	require.NoError(t, cmd.Initialize(ec))

	_, err := g.RemoveNode(valueobjects.MustNodeID("A"))
	require.NoError(t, err)
	_, err = cmd.Allow(ec)

	assert.True(t, pkgerrors.IsBadCommandArguments(err))
}

func TestSafeDeleteNode_SiblingsSharingAConnector(t *testing.T) {
	b := fixtures.NewGraphBuilder().
		Node("P", "Lane").Node("A", "Task").Node("B", "Task").
		Child("P-A", "P", "A").
		Child("P-B", "P", "B").
		View("F", "SequenceFlow", "A", "B")
	g := b.MustBuild()
	ec := NewExecutionContext(g, nil, nil)
	cmd := newFactory().Build(b.Get("P"))

	// planning every level first keeps a command for F in both siblings
	_, err := cmd.Allow(ec)
	require.NoError(t, err)
	res, err := cmd.Execute(ec)

	require.NoError(t, err)
	assert.Equal(t, ResultSuccess, res.Type)
	assert.Equal(t, 0, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())

	_, err = cmd.Undo(ec)
	require.NoError(t, err)
	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
	f, _ := g.GetEdge(valueobjects.MustEdgeID("F"))
	assert.Same(t, b.Get("B"), f.Target())
	assert.NoError(t, g.Validate())
}

func TestSafeDeleteNode_ContainmentCycle(t *testing.T) {
	b := fixtures.NewGraphBuilder().
		Node("A", "Group").Node("B", "Group").
		Child("A-B", "A", "B").
		Child("B-A", "B", "A")
	g := b.MustBuild()
	version := g.Version()

	_, err := newFactory().Build(b.Get("A")).Execute(NewExecutionContext(g, nil, nil))

	assert.ErrorIs(t, err, pkgerrors.ErrContainmentCycle)
	assert.Equal(t, version, g.Version())
}

func TestSafeDeleteNode_ContainmentTooDeep(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxContainmentDepth = 2
	b := fixtures.NewGraphBuilder().WithConfig(cfg).
		Node("n0", "Group").Node("n1", "Group").Node("n2", "Group").
		Child("e1", "n0", "n1").
		Child("e2", "n1", "n2")
	g := b.MustBuild()

	_, err := newFactory().Build(b.Get("n0")).Allow(NewExecutionContext(g, nil, nil))

	assert.ErrorIs(t, err, pkgerrors.ErrContainmentTooDeep)
}

func TestSafeDeleteNode_ExecuteTwice(t *testing.T) {
	b := fixtures.NewGraphBuilder().Node("A", "Task")
	ec := NewExecutionContext(b.MustBuild(), nil, nil)
	cmd := newFactory().Build(b.Get("A"))

	_, err := cmd.Execute(ec)
	require.NoError(t, err)
	_, err = cmd.Execute(ec)

	assert.ErrorIs(t, err, pkgerrors.ErrCommandAlreadyExecuted)
}

func TestSafeDeleteNode_SharedChildOfTwoParents(t *testing.T) {
	tests := []struct {
		name       string
		allowFirst bool
	}{
		{name: "planned during allow", allowFirst: true},
		{name: "planned during execute", allowFirst: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			b := fixtures.NewGraphBuilder().
				Node("R", "Pool").Node("P1", "Lane").Node("P2", "Lane").Node("C", "Task").
				Child("R-P1", "R", "P1").
				Child("R-P2", "R", "P2").
				Child("P1-C", "P1", "C").
				Child("P2-C", "P2", "C")
			g := b.MustBuild()
			ec := NewExecutionContext(g, nil, nil)
			nodesBefore, edgesBefore := nodeIDs(ec), edgeIDs(ec)
			cmd := newFactory().Build(b.Get("R"))
			if tt.allowFirst {
				res, err := cmd.Allow(ec)
				require.NoError(t, err)
				require.Equal(t, ResultSuccess, res.Type)
			}

			// Act
			res, err := cmd.Execute(ec)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, ResultSuccess, res.Type)
			assert.Empty(t, nodeIDs(ec))
			assert.Empty(t, edgeIDs(ec))
			assert.NoError(t, g.Validate())

			_, err = cmd.Undo(ec)
			require.NoError(t, err)
			assert.ElementsMatch(t, nodesBefore, nodeIDs(ec))
			assert.ElementsMatch(t, edgesBefore, edgeIDs(ec))
			assert.Len(t, b.Get("C").InEdges(), 2)
			assert.NoError(t, g.Validate())
		})
	}
}

func TestPath_Removed(t *testing.T) {
	// Arrange
	p := safedelete.NewPath(0)
	id := valueobjects.MustNodeID("C")

	// Act
	p.MarkRemoved(id)
	marked := p.Removed(id)
	p.Unmark(id)

	// Assert
	assert.True(t, marked)
	assert.False(t, p.Removed(id))
}

func TestSafeDeleteNode_AllowIsPerCommand(t *testing.T) {
	// Arrange
	b := fixtures.ProcessScenario()
	g := b.MustBuild()
	rs := &rules.RuleSet{Name: "one event", Cardinality: []rules.CardinalityRule{{Role: "event", Min: 1, Max: rules.Unbounded}}}
	ec := NewExecutionContext(g, rs, nil)
	cmd := newFactory().Build(b.Get("lane"))

	// Act
	allowed, err := cmd.Allow(ec)
	require.NoError(t, err)
	res, execErr := cmd.Execute(ec)

	// Assert
	// each deregistration alone keeps one event, so Allow passes
	assert.Equal(t, ResultSuccess, allowed.Type)
	require.NoError(t, execErr)
	assert.True(t, res.IsError())
	assert.False(t, g.HasNode(valueobjects.MustNodeID("start")))
	assert.True(t, g.HasNode(valueobjects.MustNodeID("end")))

	_, err = cmd.Undo(ec)
	require.NoError(t, err)
	assert.True(t, g.HasNode(valueobjects.MustNodeID("start")))
	assert.NoError(t, g.Validate())
}
