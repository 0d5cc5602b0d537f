package authz

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPrincipal indicates a request for a principal absent from
	// the entity model. This is a caller error, not an access decision.
	ErrUnknownPrincipal = errors.New("authz: unknown principal")
	// ErrDuplicatePrincipal indicates the same principal id was registered
	// twice while building the entity model.
	ErrDuplicatePrincipal = errors.New("authz: duplicate principal")
)

// InvalidStatementError reports a structurally malformed statement at
// policy-set construction time. Construction fails entirely rather than
// admitting a partially trusted set.
type InvalidStatementError struct {
	ID     string
	Reason string
}

func (e *InvalidStatementError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("authz: invalid statement: %s", e.Reason)
	}
	return fmt.Sprintf("authz: invalid statement %s: %s", e.ID, e.Reason)
}
