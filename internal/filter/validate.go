package filter

import (
	"fmt"

	"github.com/rebelice/lazyfilter/internal/models"
)

// Validate checks that a chain is consistent with the registry: connectors
// on every rule but the last, compatible operators and well-shaped values
func Validate(registry *Registry, rules []models.FilterRule) error {
	for i, r := range rules {
		last := i == len(rules)-1
		if last && r.Logic != models.LogicNone {
			return fmt.Errorf("rule %d (%s): last rule has logic %q", i, r.ID, r.Logic)
		}
		if !last && !r.Logic.Valid() {
			return fmt.Errorf("rule %d (%s): missing logic", i, r.ID)
		}

		field, ok := registry.FieldByID(r.Field)
		if !ok {
			return fmt.Errorf("rule %d (%s): %w: unknown field %q", i, r.ID, ErrInvalidField, r.Field)
		}
		if !SupportsOperator(OperatorsFor(field), r.Operator) {
			return fmt.Errorf("rule %d (%s): operator %q not supported by field %q", i, r.ID, r.Operator, r.Field)
		}
		shape := ShapeFor(field, r.Operator)
		if !ShapeMatches(shape, r.Value, r.Value2) {
			return fmt.Errorf("rule %d (%s): value does not have %s shape", i, r.ID, shape)
		}
	}
	return nil
}
