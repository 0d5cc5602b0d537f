package authz

import "fmt"

// PrincipalRecord describes one principal handed to BuildEntityModel.
type PrincipalRecord struct {
	ID         string
	Roles      []string
	Attributes map[string]any
}

// EntityModel answers the membership and attribute queries the evaluator
// needs. It is populated once at construction and never mutated, so it is
// safe for unsynchronized concurrent reads.
type EntityModel struct {
	roles map[string]map[string]struct{}
	attrs map[string]map[string]any
}

// BuildEntityModel constructs an EntityModel from principal records.
// A repeated principal id fails the whole build with ErrDuplicatePrincipal.
// A principal with no roles is registered with an empty role set; absence
// of roles means zero roles, never "unknown".
func BuildEntityModel(principals []PrincipalRecord) (*EntityModel, error) {
	m := &EntityModel{
		roles: make(map[string]map[string]struct{}, len(principals)),
		attrs: make(map[string]map[string]any, len(principals)),
	}
	for _, p := range principals {
		if p.ID == "" {
			return nil, fmt.Errorf("authz: principal id required")
		}
		if _, ok := m.roles[p.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePrincipal, p.ID)
		}
		roleSet := make(map[string]struct{}, len(p.Roles))
		for _, r := range p.Roles {
			roleSet[r] = struct{}{}
		}
		m.roles[p.ID] = roleSet
		attrs := make(map[string]any, len(p.Attributes))
		for k, v := range p.Attributes {
			attrs[k] = v
		}
		m.attrs[p.ID] = attrs
	}
	return m, nil
}

// HoldsRole reports whether the principal's role set contains roleID.
// An unregistered principal is a caller error, not a silent false.
func (m *EntityModel) HoldsRole(principalID, roleID string) (bool, error) {
	roles, ok := m.roles[principalID]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownPrincipal, principalID)
	}
	_, held := roles[roleID]
	return held, nil
}

// AttributesOf returns the principal's attribute bag, which may be empty.
// The returned map is shared and must be treated as read-only.
func (m *EntityModel) AttributesOf(principalID string) (map[string]any, error) {
	attrs, ok := m.attrs[principalID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPrincipal, principalID)
	}
	return attrs, nil
}

// Knows reports whether the principal id is registered.
func (m *EntityModel) Knows(principalID string) bool {
	_, ok := m.roles[principalID]
	return ok
}
