package authz

import "github.com/google/uuid"

// PolicySet is the immutable collection of statements consulted per
// evaluation. It is built once, indexed by action id for candidate
// lookup, and never mutated afterwards, so concurrent evaluations share
// it without locking. The index is an optimization only: behavior is
// identical to a linear scan over All.
type PolicySet struct {
	statements []Statement
	byAction   map[string][]int
	anyAction  []int
}

// BuildPolicySet validates every statement and constructs the set.
// A structurally malformed statement fails the whole build with
// InvalidStatementError; the engine never runs on a partial rule set.
// Statements without an id get a generated one.
func BuildPolicySet(statements []Statement) (*PolicySet, error) {
	set := &PolicySet{
		statements: make([]Statement, len(statements)),
		byAction:   make(map[string][]int),
	}
	copy(set.statements, statements)
	for i := range set.statements {
		st := &set.statements[i]
		if st.ID == "" {
			st.ID = uuid.NewString()
		}
		if reason := st.validate(); reason != "" {
			return nil, &InvalidStatementError{ID: st.ID, Reason: reason}
		}
		if st.Action.Any {
			set.anyAction = append(set.anyAction, i)
		} else {
			set.byAction[st.Action.Action] = append(set.byAction[st.Action.Action], i)
		}
	}
	return set, nil
}

// Len returns the number of statements in the set.
func (p *PolicySet) Len() int {
	return len(p.statements)
}

// All returns every statement in insertion order. The returned slice is
// shared and must be treated as read-only.
func (p *PolicySet) All() []Statement {
	return p.statements
}

// CandidatesFor returns, in insertion order, every statement whose action
// and resource scope could match. It is a coarse filter: the caller still
// has to check the principal dimension and the condition.
func (p *PolicySet) CandidatesFor(actionID, resourceKind string) []*Statement {
	exact := p.byAction[actionID]
	merged := make([]*Statement, 0, len(exact)+len(p.anyAction))
	for i, j := 0, 0; i < len(exact) || j < len(p.anyAction); {
		var idx int
		switch {
		case j >= len(p.anyAction) || (i < len(exact) && exact[i] < p.anyAction[j]):
			idx = exact[i]
			i++
		default:
			idx = p.anyAction[j]
			j++
		}
		st := &p.statements[idx]
		if st.Resource.Any || st.Resource.Kind == resourceKind {
			merged = append(merged, st)
		}
	}
	return merged
}
