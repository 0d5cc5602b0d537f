package authz

import "context"

// Evaluator combines an entity model and a policy set into allow/deny
// decisions. It holds read-only views of both, carries no state of its
// own, and every Evaluate call is an independent pure function of its
// inputs, so one Evaluator serves any number of concurrent callers.
type Evaluator struct {
	entities *EntityModel
	policies *PolicySet
}

// NewEvaluator constructs an Evaluator over the given model and set.
func NewEvaluator(entities *EntityModel, policies *PolicySet) *Evaluator {
	return &Evaluator{entities: entities, policies: policies}
}

// Evaluate decides one request using deny-overrides-permit with
// default-deny: any applicable forbid wins, otherwise any applicable
// permit allows, otherwise the request is denied with no determining
// statements. An unknown principal is a caller error distinct from a
// deny; unknown actions or resource kinds simply match nothing.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (Decision, error) {
	attrs, err := e.entities.AttributesOf(req.Principal)
	if err != nil {
		return Decision{}, err
	}

	var permits, forbids []string
	for _, st := range e.policies.CandidatesFor(req.Action, req.Resource.Kind) {
		ok, err := st.matchesScope(req, e.entities)
		if err != nil {
			return Decision{}, err
		}
		if !ok || !st.conditionHolds(req, attrs) {
			continue
		}
		if st.Effect == EffectForbid {
			forbids = append(forbids, st.ID)
		} else {
			permits = append(permits, st.ID)
		}
	}

	switch {
	case len(forbids) > 0:
		return Decision{Verdict: VerdictDeny, Determining: forbids}, nil
	case len(permits) > 0:
		return Decision{Verdict: VerdictAllow, Determining: permits}, nil
	default:
		return Decision{Verdict: VerdictDeny, Reason: ReasonNoMatchingPolicy}, nil
	}
}
