package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"graphcore/tests/fixtures"
)

func TestCheck(t *testing.T) {
	// Arrange
	g := fixtures.ProcessScenario().MustBuild()
	rs := &RuleSet{
		Name:        "strict",
		Cardinality: []CardinalityRule{{Role: "StartEvent", Min: 0, Max: 0}},
		Containment: []ContainmentRule{{Parent: "Lane", Allowed: []string{"activity"}}},
		Connection: []ConnectionRule{{
			Connector: "SequenceFlow",
			Permitted: []RolePair{{From: "activity", To: "activity"}},
		}},
	}

	// Act
	violations := Check(g, rs)

	// Assert
	byRule := map[string][]string{}
	for _, v := range violations {
		byRule[v.Rule] = append(byRule[v.Rule], v.NodeID+v.EdgeID)
	}
	assert.Len(t, byRule[RuleCardinality], 1)
	assert.Len(t, byRule[RuleContainment], 2)
	assert.Len(t, byRule[RuleConnection], 2)
	assert.True(t, violations.HasErrors())
}

func TestCheck_NoRules(t *testing.T) {
	g := fixtures.ProcessScenario().MustBuild()

	assert.Empty(t, Check(g, nil))
	assert.Empty(t, Check(g, &RuleSet{Name: "empty"}))
}
