package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rebelice/lazyfilter/internal/models"
)

// ErrIncompleteRule is returned when a rule is missing a value its operator needs
var ErrIncompleteRule = errors.New("incomplete rule")

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE metacharacters with a backslash, for patterns
// used with ESCAPE '\'
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Builder generates SQL WHERE clauses from rule chains.
// Rules are combined strictly left to right, so A AND B OR C becomes
// ((A AND B) OR C).
type Builder struct{}

// NewBuilder creates a new filter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildWhere generates a WHERE clause and its positional arguments
func (b *Builder) BuildWhere(registry *Registry, rules []models.FilterRule) (string, []interface{}, error) {
	if len(rules) == 0 {
		return "", nil, nil
	}

	var clause string
	var args []interface{}

	for i, rule := range rules {
		field, ok := registry.FieldByID(rule.Field)
		if !ok {
			return "", nil, fmt.Errorf("rule %d: %w: unknown field %q", i+1, ErrInvalidField, rule.Field)
		}

		cond, condArgs, err := b.buildCondition(field, rule, len(args)+1)
		if err != nil {
			return "", nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		args = append(args, condArgs...)

		if i == 0 {
			clause = cond
			continue
		}

		logic := rules[i-1].Logic
		if !logic.Valid() {
			logic = models.LogicAnd
		}
		clause = fmt.Sprintf("(%s %s %s)", clause, logic, cond)
	}

	return "WHERE " + clause, args, nil
}

// buildCondition builds a single rule's condition
func (b *Builder) buildCondition(field models.FieldDescriptor, rule models.FilterRule, paramIndex int) (string, []interface{}, error) {
	column := pgx.Identifier{field.ID}.Sanitize()
	multi := field.Type == models.FieldMultiSelect

	switch rule.Operator {
	case models.OpIsEmpty:
		if multi {
			return fmt.Sprintf("(%s IS NULL OR cardinality(%s) = 0)", column, column), nil, nil
		}
		return fmt.Sprintf("(%s IS NULL OR %s::text = '')", column, column), nil, nil

	case models.OpIsNotEmpty:
		if multi {
			return fmt.Sprintf("(%s IS NOT NULL AND cardinality(%s) > 0)", column, column), nil, nil
		}
		return fmt.Sprintf("(%s IS NOT NULL AND %s::text <> '')", column, column), nil, nil

	case models.OpEquals, models.OpNotEquals, models.OpGreaterThan, models.OpGreaterThanOrEqual,
		models.OpLessThan, models.OpLessThanOrEqual:
		if IsBlank(rule.Value) {
			return "", nil, fmt.Errorf("%w: %s %s needs a value", ErrIncompleteRule, field.ID, rule.Operator.Label())
		}
		return fmt.Sprintf("%s %s $%d", column, comparisonSQL[rule.Operator], paramIndex), []interface{}{rule.Value}, nil

	case models.OpContains, models.OpNotContains, models.OpStartsWith, models.OpEndsWith:
		if IsBlank(rule.Value) {
			return "", nil, fmt.Errorf("%w: %s %s needs a value", ErrIncompleteRule, field.ID, rule.Operator.Label())
		}
		pattern := EscapeLike(fmt.Sprint(rule.Value))
		switch rule.Operator {
		case models.OpStartsWith:
			pattern += "%"
		case models.OpEndsWith:
			pattern = "%" + pattern
		default:
			pattern = "%" + pattern + "%"
		}
		op := "ILIKE"
		if rule.Operator == models.OpNotContains {
			op = "NOT ILIKE"
		}
		return fmt.Sprintf("%s::text %s $%d", column, op, paramIndex), []interface{}{pattern}, nil

	case models.OpBetween:
		if IsBlank(rule.Value) || IsBlank(rule.Value2) {
			return "", nil, fmt.Errorf("%w: %s between needs two bounds", ErrIncompleteRule, field.ID)
		}
		return fmt.Sprintf("%s BETWEEN $%d AND $%d", column, paramIndex, paramIndex+1),
			[]interface{}{rule.Value, rule.Value2}, nil

	case models.OpIn, models.OpNotIn:
		values := stringList(rule.Value)
		if len(values) == 0 {
			return "", nil, fmt.Errorf("%w: %s %s needs at least one value", ErrIncompleteRule, field.ID, rule.Operator.Label())
		}
		cond := fmt.Sprintf("%s = ANY($%d)", column, paramIndex)
		if multi {
			cond = fmt.Sprintf("%s && $%d", column, paramIndex)
		}
		if rule.Operator == models.OpNotIn {
			cond = "NOT (" + cond + ")"
		}
		return cond, []interface{}{values}, nil

	default:
		return "", nil, fmt.Errorf("unsupported operator: %s", rule.Operator)
	}
}

var comparisonSQL = map[models.FilterOperator]string{
	models.OpEquals:             "=",
	models.OpNotEquals:          "<>",
	models.OpGreaterThan:        ">",
	models.OpGreaterThanOrEqual: ">=",
	models.OpLessThan:           "<",
	models.OpLessThanOrEqual:    "<=",
}

func stringList(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case nil:
		return nil
	default:
		s := fmt.Sprint(vv)
		if s == "" {
			return nil
		}
		return []string{s}
	}
}
