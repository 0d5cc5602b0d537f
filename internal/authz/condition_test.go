package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvalConditionEquals(t *testing.T) {
	cond := &Condition{Op: OpEquals, Attribute: "principal.team", Value: "platform"}
	attrs := map[string]any{"team": "platform"}

	assert.True(t, evalCondition(cond, attrs, nil))
	assert.False(t, evalCondition(cond, map[string]any{"team": "finance"}, nil))
}

func TestEvalConditionContextLookup(t *testing.T) {
	cond := &Condition{Op: OpEquals, Attribute: "request.source", Value: "cli"}
	reqCtx := map[string]any{"request": map[string]any{"source": "cli"}}

	assert.True(t, evalCondition(cond, nil, reqCtx))

	// Explicit context prefix reads the same bag.
	prefixed := &Condition{Op: OpEquals, Attribute: "context.request.source", Value: "cli"}
	assert.True(t, evalCondition(prefixed, nil, reqCtx))
}

func TestEvalConditionMissingAttributeFailsClosed(t *testing.T) {
	cond := &Condition{Op: OpEquals, Attribute: "principal.team", Value: "platform"}
	assert.False(t, evalCondition(cond, nil, nil))
	assert.False(t, evalCondition(cond, map[string]any{}, nil))

	in := &Condition{Op: OpIn, Attribute: "env", Values: []any{"prod"}}
	assert.False(t, evalCondition(in, nil, nil))
}

func TestEvalConditionIn(t *testing.T) {
	cond := &Condition{Op: OpIn, Attribute: "env", Values: []any{"staging", "prod"}}

	assert.True(t, evalCondition(cond, nil, map[string]any{"env": "prod"}))
	assert.False(t, evalCondition(cond, nil, map[string]any{"env": "dev"}))
}

func TestEvalConditionComposite(t *testing.T) {
	cond := &Condition{
		Op: OpAllOf,
		Args: []Condition{
			{Op: OpEquals, Attribute: "principal.team", Value: "platform"},
			{Op: OpNot, Args: []Condition{
				{Op: OpEquals, Attribute: "env", Value: "prod"},
			}},
		},
	}
	attrs := map[string]any{"team": "platform"}

	assert.True(t, evalCondition(cond, attrs, map[string]any{"env": "staging"}))
	assert.False(t, evalCondition(cond, attrs, map[string]any{"env": "prod"}))

	anyOf := &Condition{
		Op: OpAnyOf,
		Args: []Condition{
			{Op: OpEquals, Attribute: "env", Value: "dev"},
			{Op: OpEquals, Attribute: "env", Value: "staging"},
		},
	}
	assert.True(t, evalCondition(anyOf, nil, map[string]any{"env": "staging"}))
	assert.False(t, evalCondition(anyOf, nil, map[string]any{"env": "prod"}))
}

func TestEvalConditionNumericEquality(t *testing.T) {
	// YAML decodes policy values as int, callers often pass float64.
	cond := &Condition{Op: OpEquals, Attribute: "attempts", Value: 3}
	assert.True(t, evalCondition(cond, nil, map[string]any{"attempts": 3.0}))
	assert.True(t, evalCondition(cond, nil, map[string]any{"attempts": int64(3)}))
	assert.False(t, evalCondition(cond, nil, map[string]any{"attempts": "3"}))
}

func TestConditionValidate(t *testing.T) {
	cases := []struct {
		name string
		cond Condition
		want string
	}{
		{"unknown operator", Condition{Op: "matches"}, "undefined condition operator"},
		{"equals without attribute", Condition{Op: OpEquals}, "requires an attribute"},
		{"in without values", Condition{Op: OpIn, Attribute: "env"}, "at least one value"},
		{"not without argument", Condition{Op: OpNot}, "exactly one argument"},
		{"allOf empty", Condition{Op: OpAllOf}, "at least one argument"},
		{"nested invalid", Condition{Op: OpNot, Args: []Condition{{Op: "regex"}}}, "undefined condition operator"},
		{"valid tree", Condition{Op: OpAnyOf, Args: []Condition{{Op: OpEquals, Attribute: "a", Value: 1}}}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reason := tc.cond.validate()
			if tc.want == "" {
				assert.Empty(t, reason)
				return
			}
			assert.Contains(t, reason, tc.want)
		})
	}
}
