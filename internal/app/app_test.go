package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebelice/lazyfilter/internal/filter"
	"github.com/rebelice/lazyfilter/internal/history"
	"github.com/rebelice/lazyfilter/internal/models"
	"github.com/rebelice/lazyfilter/internal/presets"
	"github.com/rebelice/lazyfilter/internal/ui/components"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *history.Store, *presets.Manager) {
	t.Helper()

	fields := []models.FieldDescriptor{
		{ID: "age", Label: "Age", Type: models.FieldNumber},
		{ID: "name", Label: "Name", Type: models.FieldText},
	}

	store, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	recorder, err := history.NewRecorder(store, "public.users", fields, 0, nil)
	require.NoError(t, err)

	n := 0
	engine, err := filter.NewEngine(filter.Options{
		Fields:  fields,
		OnApply: recorder.Record,
		NewID: func() string {
			n++
			return fmt.Sprintf("rule-%d", n)
		},
	})
	require.NoError(t, err)

	pm, err := presets.NewManager(t.TempDir())
	require.NoError(t, err)

	a := New(Options{
		Engine:  engine,
		Presets: pm,
		Schema:  "public",
		Table:   "users",
	})
	a.copy = func(string) error { return nil }
	a.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	return a, store, pm
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send delivers msg and feeds every resulting message back into the app
func send(a *App, msg tea.Msg) {
	_, cmd := a.Update(msg)
	for cmd != nil {
		next := cmd()
		if next == nil {
			return
		}
		_, cmd = a.Update(next)
	}
}

func TestApp_ApplyRecordsHistory(t *testing.T) {
	a, store, _ := newTestApp(t)

	send(a, runes("a"))
	send(a, runes("O"))
	send(a, tea.KeyMsg{Type: tea.KeyEnter})

	entries, err := store.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "public.users", entries[0].Table)
	assert.Equal(t, `WHERE ("age" IS NOT NULL AND "age"::text <> '')`, entries[0].WhereClause)
	assert.Contains(t, a.status, "Applied")
}

func TestApp_SaveAndLoadPreset(t *testing.T) {
	a, _, pm := newTestApp(t)

	send(a, runes("a"))
	send(a, runes("s"))
	// typing only schedules cursor blinks, so the commands are not run
	a.Update(runes("Adults"))
	send(a, tea.KeyMsg{Type: tea.KeyEnter})

	require.Len(t, pm.GetAll(), 1)
	assert.Equal(t, "public.users", pm.GetAll()[0].Table)

	send(a, runes("R"))
	assert.Equal(t, 0, a.FilterBuilder().Engine().Len())

	send(a, runes("p"))
	assert.Equal(t, 1, a.FilterBuilder().Engine().Len())
	assert.Contains(t, a.status, "Adults")

	p, err := pm.GetByName("adults")
	require.NoError(t, err)
	assert.Equal(t, 1, p.UsageCount)
}

func TestApp_DuplicatePresetShowsError(t *testing.T) {
	a, _, _ := newTestApp(t)

	for i := 0; i < 2; i++ {
		send(a, components.SavePresetMsg{Name: "Same", Rules: []models.FilterRule{
			{ID: "x", Field: "age", Operator: models.OpIsEmpty},
		}})
	}
	assert.True(t, a.showError)
	assert.Contains(t, a.View(), "Save Preset")

	send(a, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, a.showError)
}

func TestApp_KeysGoToInputWhileEditing(t *testing.T) {
	a, _, _ := newTestApp(t)

	send(a, runes("a"))
	send(a, runes("e"))
	a.Update(runes("q"))
	send(a, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "q", a.FilterBuilder().Engine().Rules()[0].Value)
}

func TestApp_FocusAndHelp(t *testing.T) {
	a, _, _ := newTestApp(t)

	send(a, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, models.ResultsPanel, a.state.FocusedPanel)
	assert.False(t, a.FilterBuilder().Focused)

	send(a, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, models.FilterPanel, a.state.FocusedPanel)

	send(a, runes("?"))
	assert.True(t, strings.Contains(a.View(), "Keyboard Shortcuts"))
	send(a, runes("?"))
	assert.Equal(t, models.NormalMode, a.state.ViewMode)
	assert.Contains(t, a.View(), "public.users")
}

func mouse(x int, button tea.MouseButton) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: 5, Button: button, Action: tea.MouseActionPress}
}

func TestApp_MouseWheelAndClick(t *testing.T) {
	a, _, _ := newTestApp(t)

	send(a, runes("a"))
	send(a, runes("a"))
	require.Equal(t, 1, a.FilterBuilder().Cursor())

	send(a, mouse(5, tea.MouseButtonWheelUp))
	assert.Equal(t, 0, a.FilterBuilder().Cursor())
	send(a, mouse(5, tea.MouseButtonWheelDown))
	assert.Equal(t, 1, a.FilterBuilder().Cursor())

	send(a, QueryResultMsg{Result: models.QueryResult{
		Columns: []string{"id"},
		Rows:    [][]string{{"1"}, {"2"}, {"3"}},
	}})
	send(a, mouse(150, tea.MouseButtonWheelDown))
	assert.Equal(t, 1, a.tableView.SelectedRow)
	assert.Equal(t, 1, a.FilterBuilder().Cursor(), "wheel over the results leaves the builder alone")

	send(a, mouse(150, tea.MouseButtonLeft))
	assert.Equal(t, models.ResultsPanel, a.state.FocusedPanel)
	send(a, mouse(5, tea.MouseButtonLeft))
	assert.Equal(t, models.FilterPanel, a.state.FocusedPanel)

	release := mouse(150, tea.MouseButtonLeft)
	release.Action = tea.MouseActionRelease
	send(a, release)
	assert.Equal(t, models.FilterPanel, a.state.FocusedPanel)
}

func TestApp_Quit(t *testing.T) {
	a, _, _ := newTestApp(t)

	_, cmd := a.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
