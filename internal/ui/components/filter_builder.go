package components

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebelice/lazyfilter/internal/db/metadata"
	"github.com/rebelice/lazyfilter/internal/export"
	"github.com/rebelice/lazyfilter/internal/filter"
	"github.com/rebelice/lazyfilter/internal/models"
	"github.com/rebelice/lazyfilter/internal/ui/theme"
)

// ApplyFilterMsg is sent when the chain should be applied
type ApplyFilterMsg struct {
	Rules []models.FilterRule
	Where string
	Args  []interface{}
}

// ResetFilterMsg is sent after the chain was cleared
type ResetFilterMsg struct{}

// SavePresetMsg is sent when the chain should be saved under a name
type SavePresetMsg struct {
	Name  string
	Rules []models.FilterRule
}

// CloseFilterBuilderMsg is sent when the filter builder should close
type CloseFilterBuilderMsg struct{}

const (
	editNone   = ""
	editValue  = "value"
	editValue2 = "value2"
	editPreset = "preset"
)

// FilterBuilder is an interactive editor for a chain of filter rules
type FilterBuilder struct {
	Width   int
	Height  int
	Theme   theme.Theme
	Focused bool

	engine      *filter.Engine
	builder     *filter.Builder
	highlighter *sqlHighlighter
	copy        func(string) error

	schema string
	table  string

	// State
	cursor          int
	editMode        string
	input           textinput.Model
	validationError string
	status          string

	previewSQL  string
	previewArgs []interface{}
}

// NewFilterBuilder creates a filter builder editing the engine's chain
func NewFilterBuilder(th theme.Theme, engine *filter.Engine) *FilterBuilder {
	ti := textinput.New()
	ti.CharLimit = 512
	ti.Width = 40

	fb := &FilterBuilder{
		Width:       80,
		Height:      30,
		Theme:       th,
		Focused:     true,
		engine:      engine,
		builder:     filter.NewBuilder(),
		highlighter: newSQLHighlighter(),
		copy:        clipboard.WriteAll,
		input:       ti,
	}
	fb.updatePreview()
	return fb
}

// SetTable sets the table shown in the SQL preview
func (fb *FilterBuilder) SetTable(schema, table string) {
	fb.schema = schema
	fb.table = table
	fb.updatePreview()
}

// Load replaces the chain, e.g. with a saved preset
func (fb *FilterBuilder) Load(rules []models.FilterRule) {
	fb.engine.Load(rules)
	fb.cursor = 0
	fb.editMode = editNone
	fb.validationError = ""
	fb.updatePreview()
}

// Engine returns the engine behind the builder
func (fb *FilterBuilder) Engine() *filter.Engine {
	return fb.engine
}

// Cursor returns the index of the selected rule
func (fb *FilterBuilder) Cursor() int {
	return fb.cursor
}

// Editing reports whether a text input is active
func (fb *FilterBuilder) Editing() bool {
	return fb.editMode != editNone
}

// PreviewSQL returns the SQL the chain currently translates to
func (fb *FilterBuilder) PreviewSQL() string {
	return fb.previewSQL
}

// Error returns the last validation error shown to the user
func (fb *FilterBuilder) Error() string {
	return fb.validationError
}

// Update handles keyboard input
func (fb *FilterBuilder) Update(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	fb.status = ""
	if fb.editMode == editNone {
		return fb.handleNavigationMode(msg)
	}
	return fb.handleInputMode(msg)
}

func (fb *FilterBuilder) current() (models.FilterRule, bool) {
	rules := fb.engine.Rules()
	if fb.cursor < 0 || fb.cursor >= len(rules) {
		return models.FilterRule{}, false
	}
	return rules[fb.cursor], true
}

func (fb *FilterBuilder) clampCursor() {
	if n := fb.engine.Len(); fb.cursor >= n {
		fb.cursor = n - 1
	}
	if fb.cursor < 0 {
		fb.cursor = 0
	}
}

// handleNavigationMode handles keys while no input is active
func (fb *FilterBuilder) handleNavigationMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	fb.validationError = ""

	switch msg.String() {
	case "up", "k":
		if fb.cursor > 0 {
			fb.cursor--
		}
	case "down", "j":
		if fb.cursor < fb.engine.Len()-1 {
			fb.cursor++
		}
	case "a", "n":
		if _, ok := fb.engine.AddRule(); !ok {
			if fb.engine.Registry().Len() == 0 {
				fb.validationError = "No fields to filter on"
			} else {
				fb.validationError = fmt.Sprintf("At most %d rules allowed", fb.engine.MaxFilters())
			}
			return fb, nil
		}
		fb.cursor = fb.engine.Len() - 1
	case "d", "x":
		if rule, ok := fb.current(); ok {
			fb.engine.RemoveRule(rule.ID)
			fb.clampCursor()
		}
	case "f", "F":
		fb.cycleField(msg.String() == "F")
	case "o", "O":
		fb.cycleOperator(msg.String() == "O")
	case "l":
		rule, ok := fb.current()
		if !ok {
			return fb, nil
		}
		if !fb.engine.HandleLogicChange(rule.ID, rule.Logic.Toggle()) {
			fb.validationError = "The last rule has no connector"
		}
	case "e", "E":
		fb.startValueEdit(msg.String() == "E")
		if fb.Editing() {
			return fb, textinput.Blink
		}
	case "s":
		if fb.engine.Len() == 0 {
			fb.validationError = "Add at least one rule before saving a preset"
			return fb, nil
		}
		fb.startInput(editPreset, "", "Preset name")
		return fb, textinput.Blink
	case "y":
		fb.copyText(fb.previewSQL, "SQL")
	case "Y":
		data, err := export.RulesToJSON(fb.engine.Rules())
		if err != nil {
			fb.validationError = err.Error()
			return fb, nil
		}
		fb.copyText(data, "rules")
	case "R":
		fb.engine.Reset()
		fb.cursor = 0
		fb.updatePreview()
		return fb, func() tea.Msg {
			return ResetFilterMsg{}
		}
	case "enter":
		return fb, fb.apply()
	case "esc":
		return fb, func() tea.Msg {
			return CloseFilterBuilderMsg{}
		}
	}

	fb.updatePreview()
	return fb, nil
}

// apply validates the chain by translating it before handing it to the engine
func (fb *FilterBuilder) apply() tea.Cmd {
	where, args, err := fb.builder.BuildWhere(fb.engine.Registry(), fb.engine.Rules())
	if err != nil {
		fb.validationError = err.Error()
		return nil
	}

	rules := fb.engine.Apply()
	return func() tea.Msg {
		return ApplyFilterMsg{Rules: rules, Where: where, Args: args}
	}
}

func (fb *FilterBuilder) cycleField(backwards bool) {
	rule, ok := fb.current()
	if !ok {
		return
	}
	fields := fb.engine.Registry().Fields()
	idx := fb.engine.Registry().Index(rule.Field)
	next := cycle(idx, len(fields), backwards)
	if next < 0 {
		return
	}
	fb.engine.UpdateRule(rule.ID, filter.FieldUpdate(fields[next].ID))
}

func (fb *FilterBuilder) cycleOperator(backwards bool) {
	rule, ok := fb.current()
	if !ok {
		return
	}
	ops := fb.engine.Registry().OperatorsForID(rule.Field)
	idx := -1
	for i, op := range ops {
		if op == rule.Operator {
			idx = i
			break
		}
	}
	next := cycle(idx, len(ops), backwards)
	if next < 0 {
		return
	}
	fb.engine.UpdateRule(rule.ID, filter.OperatorUpdate(ops[next]))
}

// cycle returns the index after (or before) idx, wrapping around, or -1 for
// an empty list
func cycle(idx, n int, backwards bool) int {
	if n == 0 {
		return -1
	}
	if backwards {
		return (idx - 1 + n) % n
	}
	return (idx + 1) % n
}

// startValueEdit opens the value input for the current rule. Boolean values
// toggle in place.
func (fb *FilterBuilder) startValueEdit(second bool) {
	rule, ok := fb.current()
	if !ok {
		return
	}
	field, _ := fb.engine.Registry().FieldByID(rule.Field)

	switch shape := filter.ShapeFor(field, rule.Operator); {
	case shape == filter.ShapeNone:
		fb.validationError = fmt.Sprintf("%q takes no value", rule.Operator.Label())
	case shape == filter.ShapeBool:
		b, _ := rule.Value.(bool)
		fb.engine.UpdateRule(rule.ID, filter.ValueUpdate(!b))
		fb.updatePreview()
	case second && shape != filter.ShapePair:
		fb.validationError = "Only between takes a second value"
	case second:
		fb.startInput(editValue2, inputText(rule.Value2), placeholderFor(field, shape))
	default:
		fb.startInput(editValue, inputText(rule.Value), placeholderFor(field, shape))
	}
}

func (fb *FilterBuilder) startInput(mode, value, placeholder string) {
	fb.editMode = mode
	fb.input.SetValue(value)
	fb.input.Placeholder = placeholder
	fb.input.CursorEnd()
	fb.input.Focus()
}

func (fb *FilterBuilder) stopInput() {
	fb.editMode = editNone
	fb.input.Blur()
	fb.input.SetValue("")
}

// handleInputMode handles keys while editing a value or preset name
func (fb *FilterBuilder) handleInputMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.stopInput()
		fb.validationError = ""
		return fb, nil
	case "enter":
		return fb, fb.commitInput()
	}

	var cmd tea.Cmd
	fb.input, cmd = fb.input.Update(msg)
	return fb, cmd
}

func (fb *FilterBuilder) commitInput() tea.Cmd {
	text := strings.TrimSpace(fb.input.Value())
	mode := fb.editMode

	if mode == editPreset {
		if text == "" {
			fb.validationError = "Preset name cannot be empty"
			return nil
		}
		fb.stopInput()
		rules := fb.engine.Rules()
		return func() tea.Msg {
			return SavePresetMsg{Name: text, Rules: rules}
		}
	}

	fb.stopInput()
	rule, ok := fb.current()
	if !ok {
		return nil
	}
	field, _ := fb.engine.Registry().FieldByID(rule.Field)
	value := parseInput(filter.ShapeFor(field, rule.Operator), text)

	if mode == editValue2 {
		fb.engine.UpdateRule(rule.ID, filter.Value2Update(value))
	} else {
		fb.engine.UpdateRule(rule.ID, filter.ValueUpdate(value))
	}
	fb.updatePreview()
	return nil
}

// parseInput turns typed text into a value of the given shape. Lists are
// comma separated.
func parseInput(shape filter.ValueShape, text string) interface{} {
	if shape != filter.ShapeList {
		return text
	}
	items := []interface{}{}
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// inputText renders a value for editing
func inputText(v interface{}) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case []interface{}:
		parts := make([]string, len(vv))
		for i, item := range vv {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(vv, ", ")
	default:
		return fmt.Sprint(vv)
	}
}

func placeholderFor(field models.FieldDescriptor, shape filter.ValueShape) string {
	switch {
	case field.Placeholder != "":
		return field.Placeholder
	case field.DefaultValue != nil:
		return inputText(field.DefaultValue)
	case shape == filter.ShapeList:
		return "comma separated values"
	default:
		return "value"
	}
}

func (fb *FilterBuilder) copyText(text, what string) {
	if text == "" {
		fb.validationError = "Nothing to copy"
		return
	}
	if err := fb.copy(text); err != nil {
		fb.validationError = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	fb.status = "Copied " + what + " to clipboard"
}

// updatePreview updates the SQL preview
func (fb *FilterBuilder) updatePreview() {
	where, args, err := fb.builder.BuildWhere(fb.engine.Registry(), fb.engine.Rules())
	if err != nil {
		fb.previewSQL = ""
		fb.previewArgs = nil
		return
	}
	fb.previewArgs = args
	if fb.table == "" {
		fb.previewSQL = where
		return
	}
	fb.previewSQL = metadata.FilteredQuery(fb.schema, fb.table, where, 0)
}

// View renders the filter builder
func (fb *FilterBuilder) View() string {
	var sections []string
	contentWidth := fb.Width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	// Title
	titleStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Foreground).
		Background(fb.Theme.Info).
		Padding(0, 1).
		Bold(true)
	title := "Filter Builder"
	if limit := fb.engine.MaxFilters(); limit > 0 {
		title = fmt.Sprintf("%s (%d/%d)", title, fb.engine.Len(), limit)
	}
	sections = append(sections, titleStyle.Render(title))

	mutedStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Comment).
		Padding(0, 1)

	var instructions string
	switch fb.editMode {
	case editValue, editValue2:
		instructions = "Type value, Enter to confirm, Esc to cancel"
	case editPreset:
		instructions = "Type preset name, Enter to save, Esc to cancel"
	default:
		instructions = "a add  d delete  f field  o operator  e value  l AND/OR  Enter apply  R reset  ? help"
	}
	sections = append(sections, mutedStyle.Render(runewidth.Truncate(instructions, contentWidth, "...")))

	if fb.validationError != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(fb.Theme.Error).
			Padding(0, 1).
			Bold(true)
		sections = append(sections, errorStyle.Render("Error: "+fb.validationError))
	} else if fb.status != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(fb.Theme.Success).Padding(0, 1).Render(fb.status))
	}

	sections = append(sections, "")
	sections = append(sections, fb.renderRules(contentWidth)...)

	if fb.editMode != editNone {
		sections = append(sections, "")
		label := "Value"
		switch fb.editMode {
		case editValue2:
			label = "Upper bound"
		case editPreset:
			label = "Name"
		}
		sections = append(sections, fmt.Sprintf("%s: %s", label, fb.input.View()))
	}

	// SQL Preview
	if fb.previewSQL != "" {
		sections = append(sections, "", "SQL Preview:")
		sections = append(sections, " "+fb.highlighter.Highlight(fb.previewSQL))
		if len(fb.previewArgs) > 0 {
			args := make([]string, len(fb.previewArgs))
			for i, a := range fb.previewArgs {
				args[i] = fmt.Sprintf("$%d = %s", i+1, filter.FormatValue(a))
			}
			sections = append(sections, mutedStyle.Render(runewidth.Truncate(strings.Join(args, "  "), contentWidth, "...")))
		}
	}

	content := strings.Join(sections, "\n")

	border := fb.Theme.Border
	if fb.Focused {
		border = fb.Theme.BorderFocused
	}
	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Foreground(fb.Theme.Foreground).
		Width(fb.Width).
		Padding(0, 1)

	return containerStyle.Render(content)
}

func (fb *FilterBuilder) renderRules(width int) []string {
	rules := fb.engine.Rules()
	if len(rules) == 0 {
		return []string{lipgloss.NewStyle().Foreground(fb.Theme.EmptyValue).Padding(0, 1).Render("No rules. Press a to add one.")}
	}

	logicStyle := lipgloss.NewStyle().Foreground(fb.Theme.Logic).Bold(true).PaddingLeft(4)

	var lines []string
	for i, r := range rules {
		field, _ := fb.engine.Registry().FieldByID(r.Field)

		text := fmt.Sprintf("%d. %s %s", i+1, field.DisplayLabel(), r.Operator.Label())
		if v := ruleValueText(field, r); v != "" {
			text += " " + v
		}
		text = runewidth.Truncate(text, width, "...")

		style := lipgloss.NewStyle().Padding(0, 1)
		if i == fb.cursor && fb.editMode == editNone {
			style = style.Background(fb.Theme.Selection).Foreground(fb.Theme.Foreground)
		}
		lines = append(lines, style.Render(text))

		if i < len(rules)-1 {
			lines = append(lines, logicStyle.Render(string(r.Logic)))
		}
	}
	return lines
}

// ruleValueText renders the value part of a rule line
func ruleValueText(field models.FieldDescriptor, r models.FilterRule) string {
	switch filter.ShapeFor(field, r.Operator) {
	case filter.ShapeNone:
		return ""
	case filter.ShapePair:
		return filter.FormatValue(r.Value) + " and " + filter.FormatValue(r.Value2)
	default:
		return filter.FormatValue(r.Value)
	}
}
