package components

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebelice/lazyfilter/internal/filter"
	"github.com/rebelice/lazyfilter/internal/models"
	"github.com/rebelice/lazyfilter/internal/ui/theme"
)

func builderFields() []models.FieldDescriptor {
	return []models.FieldDescriptor{
		{ID: "age", Label: "Age", Type: models.FieldNumber},
		{ID: "status", Label: "Status", Type: models.FieldSelect, Options: []models.FieldOption{
			{Value: "active", Label: "Active"},
			{Value: "inactive", Label: "Inactive"},
		}},
		{ID: "verified", Label: "Verified", Type: models.FieldBoolean},
	}
}

func newTestBuilder(t *testing.T, maxFilters int) *FilterBuilder {
	t.Helper()
	n := 0
	engine, err := filter.NewEngine(filter.Options{
		Fields:     builderFields(),
		MaxFilters: maxFilters,
		NewID: func() string {
			n++
			return fmt.Sprintf("rule-%d", n)
		},
	})
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	fb := NewFilterBuilder(theme.DefaultTheme(), engine)
	fb.copy = func(string) error { return nil }
	return fb
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(fb *FilterBuilder, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		fb, cmd = fb.Update(keyPress(k))
	}
	return cmd
}

func typeText(fb *FilterBuilder, text string) {
	fb.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestFilterBuilder_AddAndDelete(t *testing.T) {
	fb := newTestBuilder(t, 0)

	press(fb, "a", "a")
	rules := fb.Engine().Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].Logic != models.LogicAnd || rules[1].Logic != models.LogicNone {
		t.Errorf("unexpected logic: %q, %q", rules[0].Logic, rules[1].Logic)
	}
	if fb.Cursor() != 1 {
		t.Errorf("expected cursor on new rule, got %d", fb.Cursor())
	}

	press(fb, "d")
	if fb.Engine().Len() != 1 {
		t.Fatalf("expected 1 rule after delete, got %d", fb.Engine().Len())
	}
	if fb.Cursor() != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", fb.Cursor())
	}
	if fb.Engine().Rules()[0].Logic != models.LogicNone {
		t.Error("remaining rule should have no logic")
	}
}

func TestFilterBuilder_MaxFilters(t *testing.T) {
	fb := newTestBuilder(t, 1)

	press(fb, "a", "a")
	if fb.Engine().Len() != 1 {
		t.Fatalf("expected 1 rule, got %d", fb.Engine().Len())
	}
	if !strings.Contains(fb.Error(), "At most 1") {
		t.Errorf("expected limit error, got %q", fb.Error())
	}
}

func TestFilterBuilder_CycleFieldAndOperator(t *testing.T) {
	fb := newTestBuilder(t, 0)
	press(fb, "a")

	press(fb, "f")
	rule := fb.Engine().Rules()[0]
	if rule.Field != "status" || rule.Operator != models.OpEquals {
		t.Fatalf("expected status equals, got %s %s", rule.Field, rule.Operator)
	}

	press(fb, "o", "o")
	rule = fb.Engine().Rules()[0]
	if rule.Operator != models.OpIn {
		t.Fatalf("expected in, got %s", rule.Operator)
	}
	if _, ok := rule.Value.([]interface{}); !ok {
		t.Errorf("expected list value for in, got %#v", rule.Value)
	}

	// back to age wraps around the field list
	press(fb, "f", "f")
	rule = fb.Engine().Rules()[0]
	if rule.Field != "age" || rule.Operator != models.OpEquals {
		t.Errorf("expected age equals, got %s %s", rule.Field, rule.Operator)
	}

	press(fb, "F")
	if fb.Engine().Rules()[0].Field != "verified" {
		t.Errorf("expected backwards cycle to verified, got %s", fb.Engine().Rules()[0].Field)
	}
}

func TestFilterBuilder_ToggleLogic(t *testing.T) {
	fb := newTestBuilder(t, 0)
	press(fb, "a", "a", "up", "l")

	if got := fb.Engine().Rules()[0].Logic; got != models.LogicOr {
		t.Fatalf("expected OR, got %q", got)
	}

	press(fb, "down", "l")
	if fb.Error() == "" {
		t.Error("expected error toggling logic on the last rule")
	}
	if got := fb.Engine().Rules()[1].Logic; got != models.LogicNone {
		t.Errorf("last rule logic changed to %q", got)
	}
}

func TestFilterBuilder_EditScalarValue(t *testing.T) {
	fb := newTestBuilder(t, 0)
	press(fb, "a", "e")

	if !fb.Editing() {
		t.Fatal("expected value input to open")
	}
	typeText(fb, "42")
	press(fb, "enter")

	if fb.Editing() {
		t.Error("expected input to close")
	}
	if got := fb.Engine().Rules()[0].Value; got != "42" {
		t.Errorf("expected value 42, got %#v", got)
	}
	if fb.PreviewSQL() != `WHERE "age" = $1` {
		t.Errorf("unexpected preview %q", fb.PreviewSQL())
	}
}

func TestFilterBuilder_EditCancel(t *testing.T) {
	fb := newTestBuilder(t, 0)
	press(fb, "a", "e")
	typeText(fb, "7")
	press(fb, "esc")

	if fb.Editing() {
		t.Error("expected input to close on esc")
	}
	if got := fb.Engine().Rules()[0].Value; got != "" {
		t.Errorf("expected value unchanged, got %#v", got)
	}
}

func TestFilterBuilder_EditListValue(t *testing.T) {
	fb := newTestBuilder(t, 0)
	press(fb, "a", "f", "o", "o", "e")

	typeText(fb, "active, inactive,")
	press(fb, "enter")

	got, ok := fb.Engine().Rules()[0].Value.([]interface{})
	if !ok || len(got) != 2 || got[0] != "active" || got[1] != "inactive" {
		t.Errorf("expected [active inactive], got %#v", fb.Engine().Rules()[0].Value)
	}
}

func TestFilterBuilder_BetweenBounds(t *testing.T) {
	fb := newTestBuilder(t, 0)
	press(fb, "a")
	// equals, notEquals, gt, gte, lt, lte, between
	for i := 0; i < 6; i++ {
		press(fb, "o")
	}
	if op := fb.Engine().Rules()[0].Operator; op != models.OpBetween {
		t.Fatalf("expected between, got %s", op)
	}

	press(fb, "e")
	typeText(fb, "18")
	press(fb, "enter", "E")
	typeText(fb, "65")
	press(fb, "enter")

	rule := fb.Engine().Rules()[0]
	if rule.Value != "18" || rule.Value2 != "65" {
		t.Errorf("expected 18..65, got %#v..%#v", rule.Value, rule.Value2)
	}

	press(fb, "o")
	if fb.Editing() {
		t.Fatal("operator cycling should not open input")
	}
	press(fb, "E")
	if fb.Editing() || fb.Error() == "" {
		t.Error("second value should be rejected outside between")
	}
}

func TestFilterBuilder_BooleanToggle(t *testing.T) {
	fb := newTestBuilder(t, 0)
	press(fb, "a", "F", "e")

	if fb.Editing() {
		t.Fatal("boolean values should toggle without input")
	}
	if got := fb.Engine().Rules()[0].Value; got != true {
		t.Fatalf("expected true, got %#v", got)
	}
	press(fb, "e")
	if got := fb.Engine().Rules()[0].Value; got != false {
		t.Errorf("expected false, got %#v", got)
	}
}

func TestFilterBuilder_NoValueOperator(t *testing.T) {
	fb := newTestBuilder(t, 0)
	press(fb, "a", "O", "e")

	if op := fb.Engine().Rules()[0].Operator; op != models.OpIsNotEmpty {
		t.Fatalf("expected isNotEmpty, got %s", op)
	}
	if fb.Editing() {
		t.Error("isNotEmpty should not open an input")
	}
	if fb.Error() == "" {
		t.Error("expected an error explaining the operator takes no value")
	}
}

func TestFilterBuilder_ApplyIncomplete(t *testing.T) {
	fb := newTestBuilder(t, 0)
	applied := false
	engine, _ := filter.NewEngine(filter.Options{
		Fields:  builderFields(),
		OnApply: func([]models.FilterRule) { applied = true },
	})
	fb = NewFilterBuilder(theme.DefaultTheme(), engine)

	cmd := press(fb, "a", "enter")
	if cmd != nil {
		t.Error("expected no command for an incomplete chain")
	}
	if applied {
		t.Error("OnApply should not run for an incomplete chain")
	}
	if !strings.Contains(fb.Error(), "incomplete") {
		t.Errorf("expected incomplete error, got %q", fb.Error())
	}
}

func TestFilterBuilder_Apply(t *testing.T) {
	fb := newTestBuilder(t, 0)
	fb.SetTable("public", "users")

	press(fb, "a", "e")
	typeText(fb, "30")
	cmd := press(fb, "enter", "enter")
	if cmd == nil {
		t.Fatal("expected apply command")
	}

	msg, ok := cmd().(ApplyFilterMsg)
	if !ok {
		t.Fatalf("expected ApplyFilterMsg, got %T", cmd())
	}
	if msg.Where != `WHERE "age" = $1` {
		t.Errorf("unexpected where %q", msg.Where)
	}
	if len(msg.Args) != 1 || msg.Args[0] != "30" {
		t.Errorf("unexpected args %#v", msg.Args)
	}
	if len(msg.Rules) != 1 {
		t.Errorf("expected 1 rule, got %d", len(msg.Rules))
	}
	if fb.PreviewSQL() != `SELECT * FROM "public"."users" WHERE "age" = $1` {
		t.Errorf("unexpected preview %q", fb.PreviewSQL())
	}
}

func TestFilterBuilder_Reset(t *testing.T) {
	fb := newTestBuilder(t, 0)
	press(fb, "a", "a")

	cmd := press(fb, "R")
	if fb.Engine().Len() != 0 {
		t.Errorf("expected empty chain, got %d", fb.Engine().Len())
	}
	if _, ok := cmd().(ResetFilterMsg); !ok {
		t.Error("expected ResetFilterMsg")
	}
}

func TestFilterBuilder_SavePreset(t *testing.T) {
	fb := newTestBuilder(t, 0)

	press(fb, "s")
	if fb.Editing() {
		t.Fatal("saving an empty chain should be refused")
	}

	press(fb, "a", "s")
	press(fb, "enter")
	if !fb.Editing() || fb.Error() == "" {
		t.Fatal("empty preset name should keep the input open with an error")
	}

	typeText(fb, "Adults")
	cmd := press(fb, "enter")
	msg, ok := cmd().(SavePresetMsg)
	if !ok {
		t.Fatalf("expected SavePresetMsg, got %T", cmd())
	}
	if msg.Name != "Adults" || len(msg.Rules) != 1 {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestFilterBuilder_Copy(t *testing.T) {
	fb := newTestBuilder(t, 0)
	var copied string
	fb.copy = func(s string) error {
		copied = s
		return nil
	}

	press(fb, "y")
	if fb.Error() != "Nothing to copy" {
		t.Errorf("expected nothing to copy, got %q", fb.Error())
	}

	press(fb, "a", "Y")
	if !strings.Contains(copied, `"field": "age"`) {
		t.Errorf("expected rules JSON, got %q", copied)
	}

	fb.copy = func(string) error { return errors.New("no clipboard") }
	press(fb, "Y")
	if !strings.Contains(fb.Error(), "no clipboard") {
		t.Errorf("expected copy error, got %q", fb.Error())
	}
}

func TestFilterBuilder_View(t *testing.T) {
	fb := newTestBuilder(t, 5)
	if !strings.Contains(fb.View(), "No rules") {
		t.Error("expected empty state")
	}

	press(fb, "a", "a")
	view := fb.View()
	for _, want := range []string{"Filter Builder (2/5)", "Age", "equals", "AND"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFilterBuilder_Close(t *testing.T) {
	fb := newTestBuilder(t, 0)
	cmd := press(fb, "esc")
	if _, ok := cmd().(CloseFilterBuilderMsg); !ok {
		t.Error("expected CloseFilterBuilderMsg")
	}
}

func TestParseInput(t *testing.T) {
	if got := parseInput(filter.ShapeScalar, "  x "); got != "  x " {
		t.Errorf("scalar input should pass through, got %#v", got)
	}
	list, ok := parseInput(filter.ShapeList, " a, ,b ").([]interface{})
	if !ok || len(list) != 2 {
		t.Errorf("expected 2 items, got %#v", list)
	}
	empty := parseInput(filter.ShapeList, "").([]interface{})
	if len(empty) != 0 {
		t.Errorf("expected empty list, got %#v", empty)
	}
}
