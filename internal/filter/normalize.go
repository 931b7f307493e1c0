package filter

import (
	"strings"

	"github.com/rebelice/lazyfilter/internal/models"
)

// ValueShape describes the form a rule's Value and Value2 must take
type ValueShape int

const (
	// ShapeNone means both values are unset
	ShapeNone ValueShape = iota
	// ShapeScalar means Value holds a single value and Value2 is unset
	ShapeScalar
	// ShapePair means Value and Value2 hold the two bounds of a between
	ShapePair
	// ShapeList means Value holds a []interface{} and Value2 is unset
	ShapeList
	// ShapeBool means Value is a bool or unset and Value2 is unset
	ShapeBool
)

func (s ValueShape) String() string {
	switch s {
	case ShapeNone:
		return "none"
	case ShapeScalar:
		return "scalar"
	case ShapePair:
		return "pair"
	case ShapeList:
		return "list"
	case ShapeBool:
		return "bool"
	default:
		return "unknown"
	}
}

// ShapeFor returns the value shape required by op on field.
// Operator classes take precedence over field types.
func ShapeFor(field models.FieldDescriptor, op models.FilterOperator) ValueShape {
	switch op {
	case models.OpIsEmpty, models.OpIsNotEmpty:
		return ShapeNone
	case models.OpBetween:
		return ShapePair
	case models.OpIn, models.OpNotIn:
		return ShapeList
	}

	switch field.Type {
	case models.FieldMultiSelect:
		return ShapeList
	case models.FieldBoolean:
		return ShapeBool
	default:
		return ShapeScalar
	}
}

// EmptyValues returns the empty Value and Value2 for a shape
func EmptyValues(shape ValueShape) (interface{}, interface{}) {
	switch shape {
	case ShapeScalar:
		return "", nil
	case ShapePair:
		return "", ""
	case ShapeList:
		return []interface{}{}, nil
	default:
		return nil, nil
	}
}

// Normalize resets the rule's values after its field or operator changed.
// Held values are discarded, except that a between keeps whichever scalar
// bounds are already present.
func Normalize(field models.FieldDescriptor, rule models.FilterRule) models.FilterRule {
	shape := ShapeFor(field, rule.Operator)
	if shape == ShapePair {
		rule.Value = keepBound(rule.Value)
		rule.Value2 = keepBound(rule.Value2)
		return rule
	}
	rule.Value, rule.Value2 = EmptyValues(shape)
	return rule
}

func keepBound(v interface{}) interface{} {
	if v == nil || isList(v) {
		return ""
	}
	return v
}

// FitValue coerces v into the given shape. The second result is false when
// v cannot take that shape.
func FitValue(shape ValueShape, v interface{}) (interface{}, bool) {
	switch shape {
	case ShapeNone:
		if v == nil {
			return nil, true
		}
		if s, ok := v.(string); ok && s == "" {
			return nil, true
		}
		return nil, false

	case ShapeScalar, ShapePair:
		if v == nil {
			return "", true
		}
		if isList(v) {
			return nil, false
		}
		return v, true

	case ShapeList:
		switch vv := v.(type) {
		case nil:
			return []interface{}{}, true
		case []interface{}:
			out := make([]interface{}, len(vv))
			copy(out, vv)
			return out, true
		case []string:
			out := make([]interface{}, len(vv))
			for i, s := range vv {
				out[i] = s
			}
			return out, true
		case string:
			if vv == "" {
				return []interface{}{}, true
			}
			return []interface{}{vv}, true
		default:
			return []interface{}{vv}, true
		}

	case ShapeBool:
		switch vv := v.(type) {
		case nil:
			return nil, true
		case bool:
			return vv, true
		case string:
			switch strings.ToLower(strings.TrimSpace(vv)) {
			case "":
				return nil, true
			case "true":
				return true, true
			case "false":
				return false, true
			}
		}
		return nil, false
	}

	return nil, false
}

// ShapeMatches reports whether value and value2 already have the given shape
func ShapeMatches(shape ValueShape, value, value2 interface{}) bool {
	switch shape {
	case ShapeNone:
		return value == nil && value2 == nil
	case ShapeScalar:
		return value != nil && !isList(value) && value2 == nil
	case ShapePair:
		return value != nil && !isList(value) && value2 != nil && !isList(value2)
	case ShapeList:
		_, ok := value.([]interface{})
		return ok && value2 == nil
	case ShapeBool:
		if value2 != nil {
			return false
		}
		if value == nil {
			return true
		}
		_, ok := value.(bool)
		return ok
	}
	return false
}

// IsBlank reports whether a value counts as not yet entered
func IsBlank(v interface{}) bool {
	switch vv := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(vv) == ""
	case []interface{}:
		return len(vv) == 0
	case []string:
		return len(vv) == 0
	}
	return false
}

func isList(v interface{}) bool {
	switch v.(type) {
	case []interface{}, []string:
		return true
	}
	return false
}
