package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same code and type",
			err:    NewNodeNotFound("n1"),
			target: ErrNodeNotFound,
			want:   true,
		},
		{
			name:   "wrapped",
			err:    fmt.Errorf("loading: %w", NewEdgeNotFound("e1")),
			target: ErrEdgeNotFound,
			want:   true,
		},
		{
			name:   "different code",
			err:    NewNodeNotFound("n1"),
			target: ErrEdgeNotFound,
			want:   false,
		},
		{
			name:   "state error keeps the sentinel identity",
			err:    NewStateError(ErrCommandNotExecuted, "Undo"),
			target: ErrCommandNotExecuted,
			want:   true,
		},
		{
			name:   "plain error",
			err:    io.EOF,
			target: ErrNodeNotFound,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestNewBadCommandArguments(t *testing.T) {
	err := NewBadCommandArguments("SafeDeleteNode", "n1", "node n1 is not in the graph")

	assert.True(t, IsBadCommandArguments(err))
	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
	assert.Equal(t, "SafeDeleteNode", err.Details["command"])
	assert.Equal(t, "n1", err.Details["id"])
	assert.Equal(t, "[VALIDATION_ERROR:BAD_COMMAND_ARGUMENTS] node n1 is not in the graph", err.Error())
}

func TestNewStateError(t *testing.T) {
	err := NewStateError(ErrCommandAlreadyExecuted, "DeregisterNode(n1)")

	assert.Equal(t, DomainStateError, err.Type)
	assert.Equal(t, "DeregisterNode(n1): command has already been executed", err.Message)
	assert.Equal(t, "DeregisterNode(n1)", err.Details["command"])
}

func TestWithCause(t *testing.T) {
	err := NewDomainError(DomainInfrastructureError, ErrInvalidRuleSet.Code, "rule set cannot be decoded").WithCause(io.EOF)

	assert.ErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, err, ErrInvalidRuleSet)
	assert.Contains(t, err.Error(), "EOF")
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, "ignored"))

	err := Wrapf(NewNodeNotFound("n1"), "building %s", "graph")

	assert.EqualError(t, err, `building graph: [NOT_FOUND:NODE_NOT_FOUND] node "n1" does not exist`)
	de := GetDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, "n1", de.Details["node_id"])
	assert.True(t, IsNotFound(err))
	assert.Nil(t, GetDomainError(io.EOF))
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	assert.False(t, v.HasErrors())
	assert.Empty(t, v.Error())

	v.Add("candidateid", "candidateid is required")
	v.Add("kind", "kind must be one of: view connector")
	v.Add("kind", "kind is invalid")

	assert.True(t, v.HasErrors())
	assert.Equal(t, map[string][]string{
		"candidateid": {"candidateid is required"},
		"kind":        {"kind must be one of: view connector", "kind is invalid"},
	}, v.Fields())
	assert.Equal(t, "Validation failed: candidateid is required; kind must be one of: view connector; kind is invalid", v.Error())
}
