package authz

import (
	"context"
	"sync/atomic"
)

// Snapshot bundles one immutable generation of entity model and policy
// set together with the evaluator over them. Version increases with every
// swap and distinguishes cache entries across reloads.
type Snapshot struct {
	Entities  *EntityModel
	Policies  *PolicySet
	Version   int64
	evaluator *Evaluator
}

// Evaluate decides a request against this snapshot.
func (s *Snapshot) Evaluate(ctx context.Context, req Request) (Decision, error) {
	return s.evaluator.Evaluate(ctx, req)
}

// Store publishes snapshots to concurrent readers. Hot reload is an
// atomic swap of the whole snapshot: an in-flight evaluation observes
// either the old or the new generation in full, never a mix, and reads
// take no lock.
type Store struct {
	current atomic.Pointer[Snapshot]
	version atomic.Int64
}

// NewStore returns a Store primed with an initial snapshot.
func NewStore(entities *EntityModel, policies *PolicySet) *Store {
	st := &Store{}
	st.Swap(entities, policies)
	return st
}

// Swap installs a new generation and returns it. The previous snapshot
// stays valid for evaluations already holding it.
func (st *Store) Swap(entities *EntityModel, policies *PolicySet) *Snapshot {
	snap := &Snapshot{
		Entities:  entities,
		Policies:  policies,
		Version:   st.version.Add(1),
		evaluator: NewEvaluator(entities, policies),
	}
	st.current.Store(snap)
	return snap
}

// Current returns the latest published snapshot.
func (st *Store) Current() *Snapshot {
	return st.current.Load()
}
