package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebelice/lazyfilter/internal/config"
	"github.com/rebelice/lazyfilter/internal/db/connection"
	"github.com/rebelice/lazyfilter/internal/db/metadata"
	"github.com/rebelice/lazyfilter/internal/filter"
	"github.com/rebelice/lazyfilter/internal/models"
	"github.com/rebelice/lazyfilter/internal/presets"
	"github.com/rebelice/lazyfilter/internal/ui/components"
	"github.com/rebelice/lazyfilter/internal/ui/help"
	"github.com/rebelice/lazyfilter/internal/ui/theme"
	"go.uber.org/zap"
)

const queryTimeout = 30 * time.Second

// Options holds what the App is built from. Pool and Presets are optional.
// Applied chains reach the history through the engine's OnApply callback.
type Options struct {
	Config  *config.Config
	Engine  *filter.Engine
	Pool    *connection.Pool
	Presets *presets.Manager
	Logger  *zap.Logger
	Schema  string
	Table   string
}

// App is the main application model
type App struct {
	state      models.AppState
	config     *config.Config
	theme      theme.Theme
	rightPanel components.Panel

	filterBuilder *components.FilterBuilder
	tableView     *components.TableView

	pool    *connection.Pool
	presets *presets.Manager
	logger  *zap.Logger

	// Last applied filter, re-run with r
	lastWhere string
	lastArgs  []interface{}

	presetIndex int
	status      string

	showError    bool
	errorTitle   string
	errorMessage string

	copy func(string) error
}

// ErrorMsg is sent when an error should be shown in an overlay
type ErrorMsg struct {
	Title   string
	Message string
}

// QueryResultMsg carries the rows of a filtered query
type QueryResultMsg struct {
	Result models.QueryResult
}

// New creates a new App
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	th := theme.GetTheme(cfg.UI.Theme)

	state := models.NewAppState()
	state.Schema = opts.Schema
	state.Table = opts.Table

	fb := components.NewFilterBuilder(th, opts.Engine)
	fb.SetTable(opts.Schema, opts.Table)

	tv := components.NewTableView(th)
	tv.Limit = cfg.Database.QueryLimit

	a := &App{
		state:         state,
		config:        cfg,
		theme:         th,
		filterBuilder: fb,
		tableView:     tv,
		pool:          opts.Pool,
		presets:       opts.Presets,
		logger:        logger,
		presetIndex:   -1,
		copy:          clipboard.WriteAll,
	}
	a.rightPanel = components.Panel{Title: "Results"}
	a.updatePanelStyles()
	a.updatePanelDimensions()
	return a
}

// FilterBuilder returns the filter builder component
func (a *App) FilterBuilder() *components.FilterBuilder {
	return a.filterBuilder
}

// Init implements tea.Model. With a database the unfiltered table is shown
// first.
func (a *App) Init() tea.Cmd {
	if a.pool == nil {
		return nil
	}
	return a.runQuery("", nil)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		return a.handleMouse(msg)

	case components.ApplyFilterMsg:
		return a, a.applyFilter(msg)

	case components.ResetFilterMsg:
		a.status = "Filter cleared"
		a.lastWhere, a.lastArgs = "", nil
		if a.pool != nil {
			return a, a.runQuery("", nil)
		}
		return a, nil

	case components.SavePresetMsg:
		a.savePreset(msg)
		return a, nil

	case components.CloseFilterBuilderMsg:
		a.focus(models.ResultsPanel)
		return a, nil

	case QueryResultMsg:
		if msg.Result.Error != nil {
			a.logger.Warn("filtered query failed", zap.Error(msg.Result.Error))
		}
		a.tableView.SetResult(msg.Result)
		return a, nil

	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.updatePanelDimensions()
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.showError {
		switch key {
		case "esc", "enter":
			a.DismissError()
		case "ctrl+c":
			return a, tea.Quit
		}
		// Consume all other keys when error is showing
		return a, nil
	}

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.state.ViewMode == models.HelpMode {
		if key == "?" || key == "esc" || key == "q" {
			a.state.ViewMode = models.NormalMode
		}
		return a, nil
	}

	// Text input gets every key while it is open
	if a.state.FocusedPanel == models.FilterPanel && a.filterBuilder.Editing() {
		var cmd tea.Cmd
		a.filterBuilder, cmd = a.filterBuilder.Update(msg)
		return a, cmd
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "?":
		a.state.ViewMode = models.HelpMode
		return a, nil
	case "tab":
		if a.state.FocusedPanel == models.FilterPanel {
			a.focus(models.ResultsPanel)
		} else {
			a.focus(models.FilterPanel)
		}
		return a, nil
	case "p":
		a.loadNextPreset()
		return a, nil
	}

	a.status = ""
	if a.state.FocusedPanel == models.FilterPanel {
		var cmd tea.Cmd
		a.filterBuilder, cmd = a.filterBuilder.Update(msg)
		return a, cmd
	}

	switch key {
	case "up", "k":
		a.tableView.MoveSelection(-1)
	case "down", "j":
		a.tableView.MoveSelection(1)
	case "pgup", "ctrl+u":
		a.tableView.PageUp()
	case "pgdown", "ctrl+d":
		a.tableView.PageDown()
	case "c":
		if row := a.tableView.SelectedRowText(); row != "" {
			if err := a.copy(row); err != nil {
				a.ShowError("Clipboard", err.Error())
			} else {
				a.status = "Copied row"
			}
		}
	case "r", "f5":
		if a.pool != nil {
			return a, a.runQuery(a.lastWhere, a.lastArgs)
		}
	case "esc":
		a.focus(models.FilterPanel)
	}
	return a, nil
}

// handleMouse scrolls and focuses the panel under the pointer. Mouse events
// only arrive when ui.mouse_enabled is set.
func (a *App) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.showError || a.state.ViewMode == models.HelpMode || msg.Action != tea.MouseActionPress {
		return a, nil
	}

	// The builder panel plus its border
	panel := models.ResultsPanel
	if msg.X < a.filterBuilder.Width+2 {
		panel = models.FilterPanel
	}

	delta := 0
	switch msg.Button {
	case tea.MouseButtonLeft:
		if !a.filterBuilder.Editing() {
			a.focus(panel)
		}
		return a, nil
	case tea.MouseButtonWheelUp:
		delta = -1
	case tea.MouseButtonWheelDown:
		delta = 1
	default:
		return a, nil
	}

	if panel == models.ResultsPanel {
		a.tableView.MoveSelection(delta)
		return a, nil
	}
	if a.filterBuilder.Editing() {
		return a, nil
	}
	key := tea.KeyMsg{Type: tea.KeyDown}
	if delta < 0 {
		key = tea.KeyMsg{Type: tea.KeyUp}
	}
	var cmd tea.Cmd
	a.filterBuilder, cmd = a.filterBuilder.Update(key)
	return a, cmd
}

// applyFilter runs the applied chain against the table
func (a *App) applyFilter(msg components.ApplyFilterMsg) tea.Cmd {
	a.logger.Info("filter applied",
		zap.Int("rules", len(msg.Rules)),
		zap.String("where", msg.Where),
	)
	a.lastWhere, a.lastArgs = msg.Where, msg.Args

	if a.pool == nil {
		a.status = "Applied: " + orAll(filter.Describe(msg.Rules))
		return nil
	}
	a.status = fmt.Sprintf("Applied %d rules", len(msg.Rules))
	return a.runQuery(msg.Where, msg.Args)
}

func (a *App) runQuery(where string, args []interface{}) tea.Cmd {
	pool := a.pool
	schema, table := a.state.Schema, a.state.Table
	limit := a.config.Database.QueryLimit

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		return QueryResultMsg{Result: metadata.QueryFilteredData(ctx, pool, schema, table, where, args, limit)}
	}
}

func (a *App) savePreset(msg components.SavePresetMsg) {
	if a.presets == nil {
		a.ShowError("Presets", "Presets are not available")
		return
	}
	p, err := a.presets.Add(msg.Name, "", a.state.QualifiedTable(), msg.Rules, nil)
	if err != nil {
		a.ShowError("Save Preset", err.Error())
		return
	}
	a.logger.Info("preset saved", zap.String("id", p.ID), zap.String("name", p.Name))
	a.status = fmt.Sprintf("Saved preset %q", p.Name)
}

// loadNextPreset loads the saved presets one after another, by name
func (a *App) loadNextPreset() {
	if a.presets == nil {
		return
	}
	all := a.presets.GetAll()
	if len(all) == 0 {
		a.status = "No saved presets"
		return
	}
	sort.SliceStable(all, func(i, j int) bool {
		return strings.ToLower(all[i].Name) < strings.ToLower(all[j].Name)
	})

	a.presetIndex = (a.presetIndex + 1) % len(all)
	p := all[a.presetIndex]
	a.filterBuilder.Load(p.Rules)
	a.focus(models.FilterPanel)

	if err := a.presets.RecordUsage(p.ID); err != nil {
		a.logger.Warn("failed to record preset usage", zap.Error(err))
	}
	a.status = fmt.Sprintf("Loaded preset %q", p.Name)
}

// View implements tea.Model
func (a *App) View() string {
	if a.showError {
		return lipgloss.Place(
			a.state.Width, a.state.Height,
			lipgloss.Center, lipgloss.Center,
			a.renderError(),
		)
	}

	if a.state.ViewMode == models.HelpMode {
		return help.Render(a.state.Width, a.state.Height, a.theme)
	}

	return a.renderNormalView()
}

// renderNormalView renders the normal application view
func (a *App) renderNormalView() string {
	title := "lazyfilter"
	if t := a.state.QualifiedTable(); t != "" {
		title += " " + t
	}
	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2).
		Render(a.formatStatusBar(title, fmt.Sprintf("%d rules", a.filterBuilder.Engine().Len())))

	bottomBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar(a.status, "[tab] Switch | [?] Help | [q] Quit"))

	a.tableView.Width = a.rightPanel.Width
	a.tableView.Height = a.rightPanel.Height - 1
	a.rightPanel.Content = a.tableView.View()

	panels := lipgloss.JoinHorizontal(
		lipgloss.Top,
		a.filterBuilder.View(),
		a.rightPanel.View(),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		topBar,
		panels,
		bottomBar,
	)
}

func (a *App) renderError() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(a.theme.Error)
	hint := lipgloss.NewStyle().Faint(true).Render("Press Esc or Enter to dismiss")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(a.theme.Error).
		Padding(1, 2).
		Width(min(60, max(a.state.Width-4, 20))).
		Render(titleStyle.Render(a.errorTitle) + "\n\n" + a.errorMessage + "\n\n" + hint)
}

// updatePanelDimensions calculates panel sizes based on window size
func (a *App) updatePanelDimensions() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}

	// Reserve space for top bar (1 line) and bottom bar (1 line)
	contentHeight := max(a.state.Height-4, 5)

	// Each panel has a border of 2 chars
	leftWidth := min(a.config.UI.Width, a.state.Width*55/100)
	leftWidth = max(leftWidth, 30)
	rightWidth := a.state.Width - leftWidth - 4
	if rightWidth < 20 {
		rightWidth = 20
		leftWidth = max(a.state.Width-rightWidth-4, 20)
	}

	a.filterBuilder.Width = leftWidth
	a.filterBuilder.Height = contentHeight
	a.rightPanel.Width = rightWidth
	a.rightPanel.Height = contentHeight
}

func (a *App) focus(panel models.PanelType) {
	a.state.FocusedPanel = panel
	a.updatePanelStyles()
}

// updatePanelStyles updates panel styling based on focus
func (a *App) updatePanelStyles() {
	a.filterBuilder.Focused = a.state.FocusedPanel == models.FilterPanel
	if a.state.FocusedPanel == models.ResultsPanel {
		a.rightPanel.Style = lipgloss.NewStyle().BorderForeground(a.theme.BorderFocused)
	} else {
		a.rightPanel.Style = lipgloss.NewStyle().BorderForeground(a.theme.Border)
	}
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// Account for padding (2 chars on each side = 4 total)
	availableWidth := max(a.state.Width-4, 0)

	leftLen := lipgloss.Width(left)
	rightLen := lipgloss.Width(right)

	if leftLen+rightLen > availableWidth {
		return lipgloss.NewStyle().MaxWidth(availableWidth).Render(left)
	}

	spacing := availableWidth - leftLen - rightLen
	return left + strings.Repeat(" ", spacing) + right
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.logger.Debug("showing error", zap.String("title", title), zap.String("message", message))
	a.errorTitle = title
	a.errorMessage = message
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
}

func orAll(s string) string {
	if s == "" {
		return "all rows"
	}
	return s
}
