package models

// FieldType identifies the kind of value a filterable field holds
type FieldType string

const (
	FieldText        FieldType = "text"
	FieldNumber      FieldType = "number"
	FieldDate        FieldType = "date"
	FieldDateTime    FieldType = "datetime"
	FieldSelect      FieldType = "select"
	FieldMultiSelect FieldType = "multiselect"
	FieldBoolean     FieldType = "boolean"
	FieldRange       FieldType = "range"
)

// Valid reports whether t is one of the known field types
func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldDate, FieldDateTime,
		FieldSelect, FieldMultiSelect, FieldBoolean, FieldRange:
		return true
	}
	return false
}

// FilterOperator represents a filter comparison operator
type FilterOperator string

const (
	OpEquals             FilterOperator = "equals"
	OpNotEquals          FilterOperator = "notEquals"
	OpContains           FilterOperator = "contains"
	OpNotContains        FilterOperator = "notContains"
	OpStartsWith         FilterOperator = "startsWith"
	OpEndsWith           FilterOperator = "endsWith"
	OpGreaterThan        FilterOperator = "greaterThan"
	OpGreaterThanOrEqual FilterOperator = "greaterThanOrEqual"
	OpLessThan           FilterOperator = "lessThan"
	OpLessThanOrEqual    FilterOperator = "lessThanOrEqual"
	OpBetween            FilterOperator = "between"
	OpIn                 FilterOperator = "in"
	OpNotIn              FilterOperator = "notIn"
	OpIsEmpty            FilterOperator = "isEmpty"
	OpIsNotEmpty         FilterOperator = "isNotEmpty"
)

var operatorLabels = map[FilterOperator]string{
	OpEquals:             "equals",
	OpNotEquals:          "does not equal",
	OpContains:           "contains",
	OpNotContains:        "does not contain",
	OpStartsWith:         "starts with",
	OpEndsWith:           "ends with",
	OpGreaterThan:        "greater than",
	OpGreaterThanOrEqual: "greater than or equal",
	OpLessThan:           "less than",
	OpLessThanOrEqual:    "less than or equal",
	OpBetween:            "between",
	OpIn:                 "is any of",
	OpNotIn:              "is none of",
	OpIsEmpty:            "is empty",
	OpIsNotEmpty:         "is not empty",
}

// Label returns the human readable name of the operator
func (op FilterOperator) Label() string {
	if l, ok := operatorLabels[op]; ok {
		return l
	}
	return string(op)
}

// Valid reports whether op is a known operator
func (op FilterOperator) Valid() bool {
	_, ok := operatorLabels[op]
	return ok
}

// Logic connects a rule to the rule that follows it
type Logic string

const (
	LogicNone Logic = ""
	LogicAnd  Logic = "AND"
	LogicOr   Logic = "OR"
)

// Valid reports whether l is AND or OR
func (l Logic) Valid() bool {
	return l == LogicAnd || l == LogicOr
}

// Toggle flips AND and OR
func (l Logic) Toggle() Logic {
	if l == LogicAnd {
		return LogicOr
	}
	return LogicAnd
}

// FieldOption is a selectable value for select and multiselect fields
type FieldOption struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// FieldDescriptor describes a field that rules can filter on
type FieldDescriptor struct {
	ID           string           `yaml:"id" json:"id"`
	Label        string           `yaml:"label" json:"label"`
	Type         FieldType        `yaml:"type" json:"type"`
	Operators    []FilterOperator `yaml:"operators,omitempty" json:"operators,omitempty"`
	Options      []FieldOption    `yaml:"options,omitempty" json:"options,omitempty"`
	Placeholder  string           `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	DefaultValue interface{}      `yaml:"default_value,omitempty" json:"defaultValue,omitempty"`
}

// DisplayLabel returns the label, falling back to the id
func (f FieldDescriptor) DisplayLabel() string {
	if f.Label != "" {
		return f.Label
	}
	return f.ID
}

// FilterRule represents a single condition in a rule chain.
// Logic is the connector to the next rule and is empty on the last rule.
type FilterRule struct {
	ID       string         `yaml:"id" json:"id"`
	Field    string         `yaml:"field" json:"field"`
	Operator FilterOperator `yaml:"operator" json:"operator"`
	Value    interface{}    `yaml:"value" json:"value"`
	Value2   interface{}    `yaml:"value2,omitempty" json:"value2,omitempty"`
	Logic    Logic          `yaml:"logic,omitempty" json:"logic,omitempty"`
}

// Clone returns a copy of the rule that shares no list storage with r
func (r FilterRule) Clone() FilterRule {
	c := r
	c.Value = cloneValue(r.Value)
	c.Value2 = cloneValue(r.Value2)
	return c
}

func cloneValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(vv))
		copy(out, vv)
		return out
	case []string:
		out := make([]string, len(vv))
		copy(out, vv)
		return out
	default:
		return v
	}
}

// CloneRules deep copies a rule chain
func CloneRules(rules []FilterRule) []FilterRule {
	out := make([]FilterRule, len(rules))
	for i, r := range rules {
		out[i] = r.Clone()
	}
	return out
}
