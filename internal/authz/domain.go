package authz

// Effect states whether a statement grants or revokes access.
type Effect string

const (
	// EffectPermit grants the scoped access.
	EffectPermit Effect = "permit"
	// EffectForbid revokes the scoped access and overrides any permit.
	EffectForbid Effect = "forbid"
)

// Verdict is the outcome of one evaluation.
type Verdict string

const (
	// VerdictAllow means at least one permit applied and no forbid did.
	VerdictAllow Verdict = "allow"
	// VerdictDeny means a forbid applied or nothing applied at all.
	VerdictDeny Verdict = "deny"
)

// ReasonNoMatchingPolicy explains a default-deny decision.
const ReasonNoMatchingPolicy = "no matching policy"

// Resource identifies a target object by kind and name.
// Two resources are equal iff both fields match.
type Resource struct {
	Kind string
	Name string
}

// PrincipalScope selects which principals a statement covers: every
// principal, one exact principal, or every holder of a role.
type PrincipalScope struct {
	Any       bool
	Principal string
	Role      string
}

// ActionScope selects which actions a statement covers. Actions form a
// flat namespace; one statement names at most one action.
type ActionScope struct {
	Any    bool
	Action string
}

// ResourceScope selects which resources a statement covers: every
// resource, every resource of a kind, or one kind+name pair.
type ResourceScope struct {
	Any  bool
	Kind string
	Name string
}

// Statement is one permit/forbid rule. All three scope dimensions must
// match independently for the statement to be a candidate; the condition
// is consulted only after the scope already matched.
type Statement struct {
	ID        string
	Effect    Effect
	Principal PrincipalScope
	Action    ActionScope
	Resource  ResourceScope
	Condition *Condition
}

// Request is the ephemeral input to one evaluation. Context carries
// caller-supplied attributes consulted by statement conditions.
type Request struct {
	Principal string
	Action    string
	Resource  Resource
	Context   map[string]any
}

// Decision is the outcome of evaluating one request. Determining lists
// the statements that fixed the verdict in policy-set insertion order;
// it is empty for a default deny.
type Decision struct {
	Verdict     Verdict
	Determining []string
	Reason      string
}

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d.Verdict == VerdictAllow
}
