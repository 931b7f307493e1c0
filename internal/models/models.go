package models

import "time"

// AppState holds the application state
type AppState struct {
	Width        int
	Height       int
	FocusedPanel PanelType
	ViewMode     ViewMode

	// Table the filter is being built for, "" when fields come from a file
	Schema string
	Table  string
}

// PanelType identifies which panel is focused
type PanelType int

const (
	FilterPanel PanelType = iota
	ResultsPanel
)

// ViewMode identifies the current view
type ViewMode int

const (
	NormalMode ViewMode = iota
	HelpMode
)

// NewAppState creates a new AppState with defaults
func NewAppState() AppState {
	return AppState{
		Width:        80,
		Height:       24,
		FocusedPanel: FilterPanel,
		ViewMode:     NormalMode,
	}
}

// QualifiedTable returns "schema.table", or "" when no table is set
func (s AppState) QualifiedTable() string {
	if s.Table == "" {
		return ""
	}
	if s.Schema == "" {
		return s.Table
	}
	return s.Schema + "." + s.Table
}

// ColumnInfo describes a table column
type ColumnInfo struct {
	Name       string
	DataType   string
	UDTName    string
	Nullable   bool
	IsArray    bool
	EnumValues []string
}

// QueryResult holds the rows returned by a filtered query
type QueryResult struct {
	Columns  []string
	Rows     [][]string
	Duration time.Duration
	Error    error
}
