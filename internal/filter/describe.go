package filter

import (
	"fmt"
	"strings"

	"github.com/rebelice/lazyfilter/internal/models"
)

// Describe renders a chain as a single readable line,
// e.g. `age greater than 18 AND status is any of [active, pending]`
func Describe(rules []models.FilterRule) string {
	var b strings.Builder
	for i, r := range rules {
		if i > 0 {
			logic := rules[i-1].Logic
			if !logic.Valid() {
				logic = models.LogicAnd
			}
			b.WriteString(" " + string(logic) + " ")
		}
		b.WriteString(DescribeRule(r))
	}
	return b.String()
}

// DescribeRule renders one rule without its connector
func DescribeRule(r models.FilterRule) string {
	switch r.Operator {
	case models.OpIsEmpty, models.OpIsNotEmpty:
		return fmt.Sprintf("%s %s", r.Field, r.Operator.Label())
	case models.OpBetween:
		return fmt.Sprintf("%s between %s and %s", r.Field, FormatValue(r.Value), FormatValue(r.Value2))
	default:
		return fmt.Sprintf("%s %s %s", r.Field, r.Operator.Label(), FormatValue(r.Value))
	}
}

// FormatValue renders a rule value for display
func FormatValue(v interface{}) string {
	switch vv := v.(type) {
	case nil:
		return "∅"
	case string:
		if vv == "" {
			return `""`
		}
		return vv
	case []interface{}, []string:
		return "[" + strings.Join(stringList(vv), ", ") + "]"
	default:
		return fmt.Sprint(vv)
	}
}
