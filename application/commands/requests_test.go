package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphcore/domain/core/entities"
	"graphcore/domain/core/valueobjects"
	pkgerrors "graphcore/pkg/errors"
	"graphcore/tests/fixtures"
)

type unknownRequest struct{}

func (unknownRequest) Kind() RequestKind { return "unknown" }

func TestFactory_FromRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    string
		wantErr *pkgerrors.DomainError
	}{
		{name: "safe delete", req: SafeDeleteNodeRequest{CandidateID: "C"}, want: "SafeDeleteNode(C)"},
		{name: "register", req: RegisterNodeRequest{NodeID: "N", Stencil: "Task"}, want: "RegisterNode(N)"},
		{name: "deregister", req: DeregisterNodeRequest{NodeID: "N"}, want: "DeregisterNode(N)"},
		{name: "add child", req: AddChildRequest{ParentID: "P", ChildID: "C"}, want: "AddChild(P,C)"},
		{name: "remove child", req: RemoveChildRequest{ParentID: "P", ChildID: "C"}, want: "RemoveChild(P,C)"},
		{name: "add detached connector", req: AddConnectorRequest{EdgeID: "F", Role: "SequenceFlow", SourceID: "A"}, want: "AddConnector(A,F)"},
		{
			name: "add attached connector",
			req:  AddConnectorRequest{EdgeID: "F", Role: "SequenceFlow", SourceID: "A", TargetID: "B"},
			want: "AddConnector[AddConnector(A,F), SetConnectionTarget(F,B)]",
		},
		{name: "detach", req: SetConnectionTargetRequest{EdgeID: "F"}, want: "SetConnectionTarget(F,nil)"},
		{name: "delete connector", req: DeleteConnectorRequest{EdgeID: "F"}, want: "DeleteConnector(F)"},
		{name: "clear", req: ClearGraphRequest{}, want: "ClearGraph()"},
		{name: "blank id", req: SafeDeleteNodeRequest{CandidateID: "  "}, wantErr: pkgerrors.ErrInvalidRequest},
		{
			name:    "inverted bounds",
			req:     RegisterNodeRequest{Stencil: "Task", Bounds: &BoundsRequest{UpperLeftX: 10, LowerRightX: 0}},
			wantErr: pkgerrors.ErrInvalidRequest,
		},
		{name: "unknown kind", req: unknownRequest{}, wantErr: pkgerrors.ErrUnknownRequest},
		{name: "nil", req: nil, wantErr: pkgerrors.ErrUnknownRequest},
	}

	f := newFactory()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := f.FromRequest(tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cmd)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.String())
		})
	}
}

func TestFactory_FromRequest_CoversEveryKind(t *testing.T) {
	for _, kind := range RequestKinds() {
		_, ok := requestBuilders[kind]
		assert.True(t, ok, kind)
	}
	assert.Len(t, requestBuilders, len(RequestKinds()))
}

func TestFactory_FromRequest_RegisterNode(t *testing.T) {
	g := fixtures.NewGraphBuilder().MustBuild()
	ec := NewExecutionContext(g, nil, nil)

	cmd, err := newFactory().FromRequest(RegisterNodeRequest{
		NodeID:     "task-1",
		Stencil:    "Task",
		Labels:     []string{"activity"},
		Properties: map[string]string{"name": "Review"},
		Bounds:     &BoundsRequest{UpperLeftX: 10, UpperLeftY: 10, LowerRightX: 110, LowerRightY: 60},
	})
	require.NoError(t, err)
	_, err = cmd.Execute(ec)
	require.NoError(t, err)

	node, err := g.GetNode(valueobjects.MustNodeID("task-1"))
	require.NoError(t, err)
	assert.True(t, node.HasLabel("activity"))
	assert.True(t, node.HasLabel("Task"))
	name, _ := node.Definition().Property("name")
	assert.Equal(t, "Review", name)
	bounds, ok := node.Bounds()
	require.True(t, ok)
	assert.Equal(t, 100.0, bounds.Width())
}

func TestFactory_FromRequest_AddConnectorKind(t *testing.T) {
	tests := []struct {
		name     string
		edgeKind string
		want     entities.EdgeKind
	}{
		{name: "default is a view connector", want: entities.EdgeKindView},
		{name: "view", edgeKind: "view", want: entities.EdgeKindView},
		{name: "plain connector", edgeKind: "connector", want: entities.EdgeKindConnector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			b := fixtures.NewGraphBuilder().Node("A", "Task").Node("B", "Task")
			g := b.MustBuild()
			ec := NewExecutionContext(g, nil, nil)

			// Act
			cmd, err := newFactory().FromRequest(AddConnectorRequest{
				EdgeID: "F", Role: "Association", EdgeKind: tt.edgeKind, SourceID: "A", TargetID: "B",
			})
			require.NoError(t, err)
			_, err = cmd.Execute(ec)
			require.NoError(t, err)

			// Assert
			edge, err := g.GetEdge(valueobjects.MustEdgeID("F"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, edge.Kind())
			assert.Same(t, b.Get("B"), edge.Target())
		})
	}
}

func TestRemoveChild_AllowResolvesEndpoints(t *testing.T) {
	b := fixtures.ContainerScenario()
	ec := NewExecutionContext(b.MustBuild(), nil, nil)

	ok, err := NewRemoveChild(valueobjects.MustNodeID("P"), valueobjects.MustNodeID("C")).Allow(ec)
	require.NoError(t, err)
	assert.Equal(t, ResultSuccess, ok.Type)

	_, err = NewRemoveChild(valueobjects.MustNodeID("P"), valueobjects.MustNodeID("ghost")).Allow(ec)
	assert.True(t, pkgerrors.IsBadCommandArguments(err))
}
