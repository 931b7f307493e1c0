package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rebelice/lazyfilter/internal/models"
	"github.com/rebelice/lazyfilter/internal/ui/theme"
)

// TableView displays filtered rows with virtual scrolling
type TableView struct {
	Columns []string
	Rows    [][]string
	Width   int
	Height  int
	Theme   theme.Theme

	// Virtual scrolling state
	TopRow      int
	VisibleRows int
	SelectedRow int

	// Column widths (calculated)
	ColumnWidths []int

	// Footer details of the last query
	Limit int
	Err   error
	info  string
}

// NewTableView creates a new table view
func NewTableView(th theme.Theme) *TableView {
	return &TableView{
		Columns:      []string{},
		Rows:         [][]string{},
		ColumnWidths: []int{},
		Theme:        th,
	}
}

// SetResult shows the rows of a query, or its error
func (tv *TableView) SetResult(result models.QueryResult) {
	tv.Err = result.Error
	tv.TopRow = 0
	tv.SelectedRow = 0
	if result.Error != nil {
		tv.Columns = nil
		tv.Rows = nil
		tv.ColumnWidths = nil
		return
	}

	tv.Columns = result.Columns
	tv.Rows = result.Rows
	tv.info = fmt.Sprintf("%d rows in %s", len(result.Rows), result.Duration.Round(time.Microsecond))
	if tv.Limit > 0 && len(result.Rows) >= tv.Limit {
		tv.info += fmt.Sprintf(" (limit %d)", tv.Limit)
	}
	tv.calculateColumnWidths()
}

// calculateColumnWidths calculates optimal column widths
func (tv *TableView) calculateColumnWidths() {
	tv.ColumnWidths = make([]int, len(tv.Columns))

	// Start with column header lengths
	for i, col := range tv.Columns {
		tv.ColumnWidths[i] = runewidth.StringWidth(col)
	}

	for _, row := range tv.Rows {
		for i, cell := range row {
			if i < len(tv.ColumnWidths) {
				if w := runewidth.StringWidth(cell); w > tv.ColumnWidths[i] {
					tv.ColumnWidths[i] = w
				}
			}
		}
	}

	const maxWidth, minWidth = 40, 6
	for i := range tv.ColumnWidths {
		tv.ColumnWidths[i] = min(max(tv.ColumnWidths[i], minWidth), maxWidth)
	}
}

// View renders the table
func (tv *TableView) View() string {
	style := lipgloss.NewStyle().MaxWidth(max(tv.Width, 0))

	if tv.Err != nil {
		return style.Foreground(tv.Theme.Error).Render("Query failed: " + tv.Err.Error())
	}
	if len(tv.Columns) == 0 {
		return style.Faint(true).Render("No results yet. Build a filter and press Enter.")
	}

	var b strings.Builder
	b.WriteString(tv.renderHeader())
	b.WriteString("\n")
	b.WriteString(tv.renderSeparator())
	b.WriteString("\n")

	// Header + separator + status
	tv.VisibleRows = max(tv.Height-3, 1)

	endRow := min(tv.TopRow+tv.VisibleRows, len(tv.Rows))
	for i := tv.TopRow; i < endRow; i++ {
		b.WriteString(tv.renderRow(tv.Rows[i], i == tv.SelectedRow))
		b.WriteString("\n")
	}

	b.WriteString(tv.renderStatus())
	return b.String()
}

func (tv *TableView) renderHeader() string {
	parts := make([]string, len(tv.Columns))
	for i, col := range tv.Columns {
		parts[i] = pad(col, tv.ColumnWidths[i])
	}
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(tv.Theme.TableHeader)
	return tv.clip(headerStyle.Render(" " + strings.Join(parts, " │ ") + " "))
}

func (tv *TableView) renderSeparator() string {
	parts := make([]string, len(tv.ColumnWidths))
	for i, width := range tv.ColumnWidths {
		parts[i] = strings.Repeat("─", width)
	}
	return tv.clip(lipgloss.NewStyle().
		Foreground(tv.Theme.Border).
		Render("─" + strings.Join(parts, "─┼─") + "─"))
}

func (tv *TableView) renderRow(row []string, selected bool) string {
	var parts []string
	for i, cell := range row {
		if i >= len(tv.ColumnWidths) {
			break
		}
		parts = append(parts, pad(cell, tv.ColumnWidths[i]))
	}

	line := tv.clip(" " + strings.Join(parts, " │ ") + " ")
	if selected {
		return lipgloss.NewStyle().
			Background(tv.Theme.TableRowSelected).
			Foreground(tv.Theme.Foreground).
			Bold(true).
			Render(line)
	}
	return line
}

func (tv *TableView) renderStatus() string {
	status := tv.info
	if len(tv.Rows) > 0 {
		status = fmt.Sprintf("row %d of %s", tv.SelectedRow+1, tv.info)
	}
	return lipgloss.NewStyle().
		Foreground(tv.Theme.Comment).
		Italic(true).
		Render(status)
}

// clip cuts a line to the view width
func (tv *TableView) clip(s string) string {
	if tv.Width <= 0 {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(tv.Width).Render(s)
}

// pad fits s into exactly width cells
func pad(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "...")
	}
	return runewidth.FillRight(s, width)
}

// MoveSelection moves the selection up or down
func (tv *TableView) MoveSelection(delta int) {
	if len(tv.Rows) == 0 {
		return
	}
	tv.SelectedRow = min(max(tv.SelectedRow+delta, 0), len(tv.Rows)-1)

	// Adjust visible window if needed
	if tv.SelectedRow < tv.TopRow {
		tv.TopRow = tv.SelectedRow
	}
	if tv.VisibleRows > 0 && tv.SelectedRow >= tv.TopRow+tv.VisibleRows {
		tv.TopRow = tv.SelectedRow - tv.VisibleRows + 1
	}
}

// PageUp moves the selection up by one screen
func (tv *TableView) PageUp() {
	tv.MoveSelection(-max(tv.VisibleRows, 1))
}

// PageDown moves the selection down by one screen
func (tv *TableView) PageDown() {
	tv.MoveSelection(max(tv.VisibleRows, 1))
}

// SelectedRowText returns the selected row as tab separated values
func (tv *TableView) SelectedRowText() string {
	if tv.SelectedRow < 0 || tv.SelectedRow >= len(tv.Rows) {
		return ""
	}
	return strings.Join(tv.Rows[tv.SelectedRow], "\t")
}
