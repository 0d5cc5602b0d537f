package authz

import (
	"fmt"
	"reflect"
	"strings"
)

// Condition operators. Conditions are data, not closures: a small tagged
// expression tree evaluated by evalCondition, so a policy set stays
// serializable and auditable.
const (
	OpEquals = "equals"
	OpIn     = "in"
	OpNot    = "not"
	OpAllOf  = "allOf"
	OpAnyOf  = "anyOf"
)

// Condition is one node of a statement's predicate tree. Attribute names
// use dotted paths: a "principal." prefix reads the principal's attribute
// bag, anything else reads the request context.
type Condition struct {
	Op        string
	Attribute string
	Value     any
	Values    []any
	Args      []Condition
}

// validate returns a human-readable reason when the tree is structurally
// malformed. Construction-time only; evaluation assumes a valid tree.
func (c *Condition) validate() string {
	switch c.Op {
	case OpEquals:
		if c.Attribute == "" {
			return "equals condition requires an attribute"
		}
	case OpIn:
		if c.Attribute == "" {
			return "in condition requires an attribute"
		}
		if len(c.Values) == 0 {
			return "in condition requires at least one value"
		}
	case OpNot:
		if len(c.Args) != 1 {
			return "not condition requires exactly one argument"
		}
		return c.Args[0].validate()
	case OpAllOf, OpAnyOf:
		if len(c.Args) == 0 {
			return fmt.Sprintf("%s condition requires at least one argument", c.Op)
		}
		for i := range c.Args {
			if reason := c.Args[i].validate(); reason != "" {
				return reason
			}
		}
	default:
		return fmt.Sprintf("undefined condition operator %q", c.Op)
	}
	return ""
}

// evalCondition interprets the tree against the principal's attributes and
// the request context. Evaluation is pure and total: a reference to a
// missing attribute fails closed as false, never as an error.
func evalCondition(c *Condition, principalAttrs, requestCtx map[string]any) bool {
	switch c.Op {
	case OpEquals:
		value, ok := resolveAttribute(c.Attribute, principalAttrs, requestCtx)
		if !ok {
			return false
		}
		return looseEqual(value, c.Value)
	case OpIn:
		value, ok := resolveAttribute(c.Attribute, principalAttrs, requestCtx)
		if !ok {
			return false
		}
		for _, candidate := range c.Values {
			if looseEqual(value, candidate) {
				return true
			}
		}
		return false
	case OpNot:
		return !evalCondition(&c.Args[0], principalAttrs, requestCtx)
	case OpAllOf:
		for i := range c.Args {
			if !evalCondition(&c.Args[i], principalAttrs, requestCtx) {
				return false
			}
		}
		return true
	case OpAnyOf:
		for i := range c.Args {
			if evalCondition(&c.Args[i], principalAttrs, requestCtx) {
				return true
			}
		}
		return false
	}
	return false
}

// resolveAttribute walks a dotted path over the principal bag or the
// request context. The "principal." prefix selects the principal bag;
// a "context." prefix is stripped; a bare key reads the context.
func resolveAttribute(name string, principalAttrs, requestCtx map[string]any) (any, bool) {
	source := requestCtx
	if rest, ok := strings.CutPrefix(name, "principal."); ok {
		source = principalAttrs
		name = rest
	} else {
		name = strings.TrimPrefix(name, "context.")
	}
	if source == nil {
		return nil, false
	}
	keys := strings.Split(name, ".")
	current := source
	for i, k := range keys {
		if i == len(keys)-1 {
			value, ok := current[k]
			return value, ok
		}
		next, ok := current[k].(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// looseEqual compares attribute values across the numeric types YAML and
// JSON decoding produce, so 3 (int) equals 3.0 (float64).
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == b
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
