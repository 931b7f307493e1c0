package filter

import (
	"github.com/rebelice/lazyfilter/internal/models"
)

var (
	textOperators = []models.FilterOperator{
		models.OpEquals, models.OpNotEquals,
		models.OpContains, models.OpNotContains,
		models.OpStartsWith, models.OpEndsWith,
		models.OpIsEmpty, models.OpIsNotEmpty,
	}
	orderedOperators = []models.FilterOperator{
		models.OpEquals, models.OpNotEquals,
		models.OpGreaterThan, models.OpGreaterThanOrEqual,
		models.OpLessThan, models.OpLessThanOrEqual,
		models.OpBetween,
		models.OpIsEmpty, models.OpIsNotEmpty,
	}
	selectOperators = []models.FilterOperator{
		models.OpEquals, models.OpNotEquals,
		models.OpIn, models.OpNotIn,
		models.OpIsEmpty, models.OpIsNotEmpty,
	}
	multiSelectOperators = []models.FilterOperator{
		models.OpIn, models.OpNotIn,
		models.OpIsEmpty, models.OpIsNotEmpty,
	}
	booleanOperators = []models.FilterOperator{models.OpEquals}
	rangeOperators   = []models.FilterOperator{models.OpBetween}
)

// GetOperatorsForType returns the default operators for a field type.
// Unknown types have no operators.
func GetOperatorsForType(t models.FieldType) []models.FilterOperator {
	switch t {
	case models.FieldText:
		return cloneOperators(textOperators)
	case models.FieldNumber, models.FieldDate, models.FieldDateTime:
		return cloneOperators(orderedOperators)
	case models.FieldSelect:
		return cloneOperators(selectOperators)
	case models.FieldMultiSelect:
		return cloneOperators(multiSelectOperators)
	case models.FieldBoolean:
		return cloneOperators(booleanOperators)
	case models.FieldRange:
		return cloneOperators(rangeOperators)
	default:
		return []models.FilterOperator{}
	}
}

// OperatorsFor returns the operators a field supports: its own override when
// present, otherwise the defaults for its type
func OperatorsFor(field models.FieldDescriptor) []models.FilterOperator {
	if len(field.Operators) > 0 {
		return cloneOperators(field.Operators)
	}
	return GetOperatorsForType(field.Type)
}

// SupportsOperator reports whether op is in ops
func SupportsOperator(ops []models.FilterOperator, op models.FilterOperator) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func cloneOperators(ops []models.FilterOperator) []models.FilterOperator {
	out := make([]models.FilterOperator, len(ops))
	copy(out, ops)
	return out
}
