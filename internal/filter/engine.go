package filter

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rebelice/lazyfilter/internal/models"
	"go.uber.org/zap"
)

// ErrInvalidLogic is returned when a default logic other than AND or OR is configured
var ErrInvalidLogic = errors.New("invalid logic")

// Options configures an Engine
type Options struct {
	Fields         []models.FieldDescriptor
	InitialFilters []models.FilterRule
	// MaxFilters caps the chain length. Zero or less means unbounded.
	MaxFilters int
	// DefaultLogic is given to a rule when another rule is appended after it.
	// Empty means AND.
	DefaultLogic models.Logic
	OnApply      func(rules []models.FilterRule)
	OnReset      func()
	Logger       *zap.Logger
	// NewID generates rule ids. Defaults to random UUIDs.
	NewID func() string
}

// Engine owns a chain of filter rules and keeps it consistent: every rule but
// the last carries AND/OR, every operator suits its field, and every value
// has the shape its operator needs.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	registry     *Registry
	rules        []models.FilterRule
	maxFilters   int
	defaultLogic models.Logic
	onApply      func(rules []models.FilterRule)
	onReset      func()
	logger       *zap.Logger
	newID        func() string
}

// RuleUpdate is a partial change to a rule. Nil pointers and unset flags
// leave the corresponding attribute alone.
type RuleUpdate struct {
	Field     *string
	Operator  *models.FilterOperator
	Logic     *models.Logic
	Value     interface{}
	SetValue  bool
	Value2    interface{}
	SetValue2 bool
}

// FieldUpdate changes a rule's field
func FieldUpdate(id string) RuleUpdate {
	return RuleUpdate{Field: &id}
}

// OperatorUpdate changes a rule's operator
func OperatorUpdate(op models.FilterOperator) RuleUpdate {
	return RuleUpdate{Operator: &op}
}

// LogicUpdate changes a rule's connector
func LogicUpdate(l models.Logic) RuleUpdate {
	return RuleUpdate{Logic: &l}
}

// ValueUpdate changes a rule's first value
func ValueUpdate(v interface{}) RuleUpdate {
	return RuleUpdate{Value: v, SetValue: true}
}

// Value2Update changes a rule's second value
func Value2Update(v interface{}) RuleUpdate {
	return RuleUpdate{Value2: v, SetValue2: true}
}

func (u RuleUpdate) structural() bool {
	return u.Field != nil || u.Operator != nil
}

// NewEngine creates an engine over the given fields, seeded with
// opts.InitialFilters
func NewEngine(opts Options) (*Engine, error) {
	registry, err := NewRegistry(opts.Fields)
	if err != nil {
		return nil, err
	}

	logic := opts.DefaultLogic
	if logic == models.LogicNone {
		logic = models.LogicAnd
	}
	if !logic.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLogic, opts.DefaultLogic)
	}

	e := &Engine{
		registry:     registry,
		maxFilters:   opts.MaxFilters,
		defaultLogic: logic,
		onApply:      opts.OnApply,
		onReset:      opts.OnReset,
		logger:       opts.Logger,
		newID:        opts.NewID,
	}
	if e.maxFilters < 0 {
		e.maxFilters = 0
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.newID == nil {
		e.newID = func() string { return uuid.New().String() }
	}

	e.Load(opts.InitialFilters)
	return e, nil
}

// Registry returns the engine's field registry
func (e *Engine) Registry() *Registry {
	return e.registry
}

// DefaultLogic returns the connector given to rules that stop being last
func (e *Engine) DefaultLogic() models.Logic {
	return e.defaultLogic
}

// MaxFilters returns the configured cap, zero when unbounded
func (e *Engine) MaxFilters() int {
	return e.maxFilters
}

// Len returns the number of rules in the chain
func (e *Engine) Len() int {
	return len(e.rules)
}

// Rules returns a copy of the chain
func (e *Engine) Rules() []models.FilterRule {
	return models.CloneRules(e.rules)
}

// Rule returns a copy of the rule with the given id
func (e *Engine) Rule(id string) (models.FilterRule, bool) {
	idx := e.indexOf(id)
	if idx < 0 {
		return models.FilterRule{}, false
	}
	return e.rules[idx].Clone(), true
}

// CanAdd reports whether AddRule would append a rule
func (e *Engine) CanAdd() bool {
	if e.registry.Len() == 0 {
		return false
	}
	return e.maxFilters <= 0 || len(e.rules) < e.maxFilters
}

// AddRule appends a rule on the first registered field with that field's
// first operator and an empty value. The previous last rule gets the default
// logic unless it already has one. It returns the new rule's id, or false
// when the chain is full or there are no fields.
func (e *Engine) AddRule() (string, bool) {
	if !e.CanAdd() {
		e.logger.Debug("add rule ignored",
			zap.Int("rules", len(e.rules)),
			zap.Int("max_filters", e.maxFilters),
			zap.Int("fields", e.registry.Len()),
		)
		return "", false
	}

	field, _ := e.registry.First()
	ops := OperatorsFor(field)
	if len(ops) == 0 {
		e.logger.Debug("add rule ignored: first field has no operators", zap.String("field", field.ID))
		return "", false
	}

	rule := Normalize(field, models.FilterRule{
		ID:       e.nextID(),
		Field:    field.ID,
		Operator: ops[0],
	})

	if n := len(e.rules); n > 0 && !e.rules[n-1].Logic.Valid() {
		e.rules[n-1].Logic = e.defaultLogic
	}
	e.rules = append(e.rules, rule)

	return rule.ID, true
}

// RemoveRule deletes the rule with the given id. The rule that ends up last
// loses its logic; all other connectors are kept as they are.
func (e *Engine) RemoveRule(id string) bool {
	idx := e.indexOf(id)
	if idx < 0 {
		e.logger.Debug("remove rule ignored: unknown id", zap.String("rule", id))
		return false
	}

	e.rules = slices.Delete(e.rules, idx, idx+1)
	if n := len(e.rules); n > 0 {
		e.rules[n-1].Logic = models.LogicNone
	}
	return true
}

// UpdateRule merges u into the rule with the given id.
//
// A change of field or operator re-resolves the operator against the field
// (falling back to its first operator) and then resets the values for the
// final operator. Value changes that do not fit the operator are dropped.
// Logic may only be set to AND/OR, and only on a rule that is not last.
func (e *Engine) UpdateRule(id string, u RuleUpdate) bool {
	idx := e.indexOf(id)
	if idx < 0 {
		e.logger.Debug("update rule ignored: unknown id", zap.String("rule", id))
		return false
	}

	rule := e.rules[idx].Clone()

	if u.Field != nil {
		rule.Field = *u.Field
	}
	if u.Operator != nil {
		rule.Operator = *u.Operator
	}

	field, ok := e.registry.FieldByID(rule.Field)
	if !ok {
		e.logger.Debug("update rule ignored: unknown field",
			zap.String("rule", id),
			zap.String("field", rule.Field),
		)
		return false
	}

	if u.SetValue {
		rule.Value = u.Value
	}
	if u.SetValue2 {
		rule.Value2 = u.Value2
	}

	if u.structural() {
		ops := OperatorsFor(field)
		if len(ops) == 0 {
			e.logger.Debug("update rule ignored: field has no operators", zap.String("field", field.ID))
			return false
		}
		if !SupportsOperator(ops, rule.Operator) {
			rule.Operator = ops[0]
		}
		rule = Normalize(field, rule)
	} else if u.SetValue || u.SetValue2 {
		rule = e.fitValues(field, e.rules[idx], rule, u)
	}

	if u.Logic != nil {
		if idx < len(e.rules)-1 && u.Logic.Valid() {
			rule.Logic = *u.Logic
		} else {
			e.logger.Debug("logic change ignored",
				zap.String("rule", id),
				zap.String("logic", string(*u.Logic)),
			)
		}
	}

	e.rules[idx] = rule
	return true
}

// fitValues applies explicit value changes to a rule whose field and operator
// are unchanged, keeping the previous value wherever the new one does not fit
func (e *Engine) fitValues(field models.FieldDescriptor, prev, rule models.FilterRule, u RuleUpdate) models.FilterRule {
	shape := ShapeFor(field, rule.Operator)

	if u.SetValue {
		if v, ok := FitValue(shape, u.Value); ok {
			rule.Value = v
		} else {
			e.logger.Debug("value does not fit operator",
				zap.String("rule", rule.ID),
				zap.Stringer("shape", shape),
			)
			rule.Value = prev.Value
		}
	}

	if u.SetValue2 {
		if shape != ShapePair {
			rule.Value2 = prev.Value2
		} else if v, ok := FitValue(shape, u.Value2); ok {
			rule.Value2 = v
		} else {
			rule.Value2 = prev.Value2
		}
	}

	return rule
}

// HandleLogicChange sets the connector between a rule and the next one. It is
// ignored for the last rule and for values other than AND and OR.
func (e *Engine) HandleLogicChange(id string, logic models.Logic) bool {
	idx := e.indexOf(id)
	if idx < 0 || idx == len(e.rules)-1 || !logic.Valid() {
		e.logger.Debug("logic change ignored",
			zap.String("rule", id),
			zap.String("logic", string(logic)),
		)
		return false
	}
	e.rules[idx].Logic = logic
	return true
}

// Apply returns a snapshot of the chain and passes another one to OnApply
func (e *Engine) Apply() []models.FilterRule {
	snapshot := models.CloneRules(e.rules)
	if e.onApply != nil {
		e.onApply(models.CloneRules(snapshot))
	}
	return snapshot
}

// Reset empties the chain and notifies OnReset
func (e *Engine) Reset() {
	e.rules = nil
	if e.onReset != nil {
		e.onReset()
	}
}

// Load replaces the chain with rules. Rules on unknown fields are dropped,
// operators and values are repaired, missing or repeated ids are replaced,
// connectors are filled in from the default logic and the chain is cut to
// MaxFilters.
func (e *Engine) Load(rules []models.FilterRule) {
	e.rules = make([]models.FilterRule, 0, len(rules))
	seen := make(map[string]bool, len(rules))

	for _, r := range rules {
		if e.maxFilters > 0 && len(e.rules) >= e.maxFilters {
			e.logger.Warn("initial filters exceed max filters, truncating", zap.Int("max_filters", e.maxFilters))
			break
		}

		field, ok := e.registry.FieldByID(r.Field)
		if !ok {
			e.logger.Warn("dropping rule on unknown field", zap.String("rule", r.ID), zap.String("field", r.Field))
			continue
		}
		ops := OperatorsFor(field)
		if len(ops) == 0 {
			continue
		}

		rule := r.Clone()
		if rule.ID == "" || seen[rule.ID] {
			rule.ID = e.nextID()
		}
		seen[rule.ID] = true

		if !SupportsOperator(ops, rule.Operator) {
			rule.Operator = ops[0]
			rule = Normalize(field, rule)
		} else {
			rule = seedValues(field, rule)
		}

		e.rules = append(e.rules, rule)
	}

	for i := range e.rules {
		if i == len(e.rules)-1 {
			e.rules[i].Logic = models.LogicNone
		} else if !e.rules[i].Logic.Valid() {
			e.rules[i].Logic = e.defaultLogic
		}
	}
}

func seedValues(field models.FieldDescriptor, rule models.FilterRule) models.FilterRule {
	shape := ShapeFor(field, rule.Operator)
	v, ok := FitValue(shape, rule.Value)
	if !ok {
		return Normalize(field, rule)
	}
	rule.Value = v
	if shape == ShapePair {
		v2, ok := FitValue(shape, rule.Value2)
		if !ok {
			v2 = ""
		}
		rule.Value2 = v2
	} else {
		rule.Value2 = nil
	}
	return rule
}

func (e *Engine) indexOf(id string) int {
	for i := range e.rules {
		if e.rules[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) nextID() string {
	for {
		id := e.newID()
		if id != "" && e.indexOf(id) < 0 {
			return id
		}
	}
}
