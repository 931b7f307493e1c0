package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rebelice/lazyfilter/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of key bindings
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit application"},
		{"Tab", "Switch between filter and results"},
		{"p", "Load next saved preset"},
	}
}

// GetFilterKeys returns filter builder key bindings
func GetFilterKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k ↓/j", "Select rule"},
		{"a, n", "Add rule"},
		{"d, x", "Delete rule"},
		{"f / F", "Next / previous field"},
		{"o / O", "Next / previous operator"},
		{"l", "Toggle AND/OR after rule"},
		{"e", "Edit value (toggles booleans)"},
		{"E", "Edit upper bound of between"},
		{"Enter", "Apply filter"},
		{"R", "Reset all rules"},
		{"s", "Save as preset"},
		{"y / Y", "Copy SQL / rules JSON"},
	}
}

// GetInputKeys returns key bindings while editing a value
func GetInputKeys() []KeyBinding {
	return []KeyBinding{
		{"Enter", "Confirm"},
		{"Esc", "Cancel"},
		{"a, b, c", "Separate list values with commas"},
	}
}

// GetResultKeys returns results view key bindings
func GetResultKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k ↓/j", "Move selection"},
		{"PgUp/PgDn", "Scroll a page"},
		{"c", "Copy row"},
		{"r, F5", "Run filter again"},
	}
}

// Sections returns all help sections in display order
func Sections() []Section {
	return []Section{
		{"Global", GetGlobalKeys()},
		{"Filter Builder", GetFilterKeys()},
		{"Editing", GetInputKeys()},
		{"Results", GetResultKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("lazyfilter - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, section := range Sections() {
		b.WriteString(sectionStyle.Render(section.Title))
		b.WriteString("\n")
		for _, kb := range section.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	// Wrap in a box
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 20)).
		Height(max(height-4, 10))

	return boxStyle.Render(b.String())
}
