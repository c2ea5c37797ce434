package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"graphcore/domain/core/valueobjects"
)

func newNode(id string) *Node {
	return NewNode(valueobjects.MustNodeID(id), NewDefinition("Task", "activity"))
}

func child(id string, parent, c *Node) *Edge {
	e := NewChildEdge(valueobjects.MustEdgeID(id))
	e.SetSource(parent)
	e.SetTarget(c)
	parent.AddOutEdge(e)
	c.AddInEdge(e)
	return e
}

func TestNode_Containment(t *testing.T) {
	// Arrange
	lane, a, b := newNode("lane"), newNode("a"), newNode("b")
	ea := child("lane-a", lane, a)
	child("lane-b", lane, b)

	// Assert
	assert.Equal(t, []*Node{a, b}, lane.Children())
	assert.Same(t, lane, a.Parent())
	assert.Nil(t, lane.Parent())
	assert.Same(t, ea, lane.ChildEdgeTo(a))
	assert.Nil(t, a.ChildEdgeTo(b))
	assert.True(t, lane.HasEdges())
}

func TestNode_RemoveAndInsertKeepPositions(t *testing.T) {
	// Arrange
	lane, a, b, c := newNode("lane"), newNode("a"), newNode("b"), newNode("c")
	child("lane-a", lane, a)
	eb := child("lane-b", lane, b)
	child("lane-c", lane, c)

	// Act
	at := lane.RemoveOutEdge(eb)
	missing := lane.RemoveOutEdge(eb)
	afterRemove := lane.Children()
	lane.InsertOutEdge(at, eb)

	// Assert
	assert.Equal(t, 1, at)
	assert.Equal(t, -1, missing)
	assert.Equal(t, []*Node{a, c}, afterRemove)
	assert.Equal(t, []*Node{a, b, c}, lane.Children())
}

func TestNode_EdgeListsAreCopies(t *testing.T) {
	lane, a := newNode("lane"), newNode("a")
	child("lane-a", lane, a)

	out := lane.OutEdges()
	out[0] = nil

	assert.NotNil(t, lane.OutEdges()[0])
}

func TestNode_Equals(t *testing.T) {
	assert.True(t, newNode("a").Equals(newNode("a")))
	assert.False(t, newNode("a").Equals(newNode("b")))
	assert.False(t, newNode("a").Equals(nil))
}

func TestDefinition(t *testing.T) {
	d := NewDefinition("Task", "activity", "Task", "")

	assert.Equal(t, []string{"Task", "activity"}, d.Labels)
	assert.True(t, d.HasLabel("activity"))
	assert.False(t, d.HasLabel("event"))

	named := d.WithProperty("name", "Review")
	v, ok := named.Property("name")
	assert.True(t, ok)
	assert.Equal(t, "Review", v)
	_, ok = d.Property("name")
	assert.False(t, ok, "WithProperty must not modify the original")
}

func TestEdge(t *testing.T) {
	view := NewViewEdge(valueobjects.MustEdgeID("f1"), "SequenceFlow", ViewConnector{Dockers: []valueobjects.Point{{X: 1, Y: 2}}})
	view.SetSourceMagnet(2)
	view.SetTargetMagnet(3)
	plain := NewConnectorEdge(valueobjects.MustEdgeID("c1"), "Association")
	plain.SetTargetMagnet(3)

	v, ok := view.View()
	assert.True(t, ok)
	assert.Equal(t, ViewConnector{SourceMagnet: 2, TargetMagnet: 3, Dockers: []valueobjects.Point{{X: 1, Y: 2}}}, v)
	_, ok = plain.View()
	assert.False(t, ok)
	assert.True(t, view.IsConnector())
	assert.True(t, plain.IsConnector())
	assert.False(t, NewChildEdge(valueobjects.MustEdgeID("c")).IsConnector())
}

func TestParseEdgeKind(t *testing.T) {
	tests := []struct {
		in      string
		want    EdgeKind
		wantErr bool
	}{
		{"child", EdgeKindChild, false},
		{"view", EdgeKindView, false},
		{"connector", EdgeKindConnector, false},
		{"bridge", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEdgeKind(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
