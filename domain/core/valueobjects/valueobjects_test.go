package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "graphcore/pkg/errors"
)

func TestNodeID(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"uuid", "8f0a4c1e-9b4f-4d7a-bb62-0c3f1a2d9e10", false},
		{"resource id", "sid-4A1B", false},
		{"empty", "", true},
		{"blank", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewNodeIDFromString(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, pkgerrors.ErrInvalidNodeID)
				assert.True(t, id.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, id.String())
		})
	}
}

func TestIDs_AreMapKeys(t *testing.T) {
	seen := map[NodeID]int{}
	seen[MustNodeID("a")]++
	seen[MustNodeID("a")]++

	assert.Equal(t, 2, seen[MustNodeID("a")])
	assert.True(t, MustEdgeID("e").Equals(MustEdgeID("e")))
	assert.NotEqual(t, NewNodeID(), NewNodeID())
	assert.False(t, NewEdgeID().IsZero())
	assert.Panics(t, func() { MustEdgeID("") })
}

func TestBounds(t *testing.T) {
	b, err := NewBounds(Point{X: 10, Y: 20}, Point{X: 110, Y: 80})
	require.NoError(t, err)
	assert.Equal(t, 100.0, b.Width())
	assert.Equal(t, 60.0, b.Height())

	_, err = NewBounds(Point{X: 10, Y: 20}, Point{X: 5, Y: 80})
	assert.Error(t, err)
}
