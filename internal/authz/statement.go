package authz

// validate returns a reason string when the statement is structurally
// malformed, or "" when it is well formed.
func (s *Statement) validate() string {
	switch s.Effect {
	case EffectPermit, EffectForbid:
	default:
		return "effect must be permit or forbid"
	}
	if reason := s.Principal.validate(); reason != "" {
		return reason
	}
	if reason := s.Action.validate(); reason != "" {
		return reason
	}
	if reason := s.Resource.validate(); reason != "" {
		return reason
	}
	if s.Condition != nil {
		if reason := s.Condition.validate(); reason != "" {
			return reason
		}
	}
	return ""
}

func (ps PrincipalScope) validate() string {
	if ps.Any {
		if ps.Principal != "" || ps.Role != "" {
			return "any-principal scope must not name a principal or role"
		}
		return ""
	}
	if ps.Principal != "" && ps.Role != "" {
		return "principal scope cannot name both a principal and a role"
	}
	if ps.Principal == "" && ps.Role == "" {
		return "principal scope requires any, a principal, or a role"
	}
	return ""
}

func (as ActionScope) validate() string {
	if as.Any {
		if as.Action != "" {
			return "any-action scope must not name an action"
		}
		return ""
	}
	if as.Action == "" {
		return "action scope requires any or an action"
	}
	return ""
}

func (rs ResourceScope) validate() string {
	if rs.Any {
		if rs.Kind != "" || rs.Name != "" {
			return "any-resource scope must not name a kind or name"
		}
		return ""
	}
	if rs.Kind == "" {
		return "resource scope requires any or a kind"
	}
	return ""
}

// matchesScope reports whether the statement is a candidate for the
// request. All three dimensions must match independently. The role
// dimension consults the entity model, so an unregistered principal
// surfaces as an error rather than a silent non-match.
func (s *Statement) matchesScope(req Request, entities *EntityModel) (bool, error) {
	ok, err := s.Principal.matches(req.Principal, entities)
	if err != nil || !ok {
		return false, err
	}
	if !s.Action.matches(req.Action) {
		return false, nil
	}
	return s.Resource.matches(req.Resource), nil
}

func (ps PrincipalScope) matches(principalID string, entities *EntityModel) (bool, error) {
	switch {
	case ps.Any:
		return true, nil
	case ps.Principal != "":
		return ps.Principal == principalID, nil
	case ps.Role != "":
		return entities.HoldsRole(principalID, ps.Role)
	}
	return false, nil
}

func (as ActionScope) matches(actionID string) bool {
	return as.Any || as.Action == actionID
}

func (rs ResourceScope) matches(r Resource) bool {
	switch {
	case rs.Any:
		return true
	case rs.Name != "":
		return rs.Kind == r.Kind && rs.Name == r.Name
	default:
		return rs.Kind == r.Kind
	}
}

// conditionHolds reports whether the statement's condition is satisfied.
// A statement without a condition always holds once its scope matched.
func (s *Statement) conditionHolds(req Request, principalAttrs map[string]any) bool {
	if s.Condition == nil {
		return true
	}
	return evalCondition(s.Condition, principalAttrs, req.Context)
}
