package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rebelice/lazyfilter/internal/models"
	"github.com/rebelice/lazyfilter/internal/ui/theme"
)

func TestTableView_SetResult(t *testing.T) {
	tv := NewTableView(theme.DefaultTheme())
	tv.Width = 80
	tv.Height = 10
	tv.Limit = 2

	tv.SetResult(models.QueryResult{
		Columns:  []string{"id", "name"},
		Rows:     [][]string{{"1", "Ada"}, {"2", "Grace"}},
		Duration: 3 * time.Millisecond,
	})

	view := tv.View()
	for _, want := range []string{"id", "Grace", "2 rows", "limit 2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTableView_Error(t *testing.T) {
	tv := NewTableView(theme.DefaultTheme())
	tv.SetResult(models.QueryResult{Error: errors.New("relation does not exist")})

	if !strings.Contains(tv.View(), "relation does not exist") {
		t.Error("expected error in view")
	}
}

func TestTableView_Selection(t *testing.T) {
	tv := NewTableView(theme.DefaultTheme())
	tv.Height = 4
	tv.SetResult(models.QueryResult{
		Columns: []string{"n"},
		Rows:    [][]string{{"a"}, {"b"}, {"c"}, {"d"}},
	})
	_ = tv.View()

	tv.MoveSelection(-1)
	if tv.SelectedRow != 0 {
		t.Errorf("expected row 0, got %d", tv.SelectedRow)
	}

	tv.MoveSelection(2)
	if tv.SelectedRow != 2 || tv.TopRow != 2 {
		t.Errorf("expected row 2 at top, got selected=%d top=%d", tv.SelectedRow, tv.TopRow)
	}

	tv.PageDown()
	if tv.SelectedRow != 3 {
		t.Errorf("expected last row, got %d", tv.SelectedRow)
	}
	if tv.SelectedRowText() != "d" {
		t.Errorf("unexpected row text %q", tv.SelectedRowText())
	}
}

func TestPad(t *testing.T) {
	if got := pad("ab", 5); got != "ab   " {
		t.Errorf("pad = %q", got)
	}
	if got := pad("abcdefgh", 6); got != "abc..." {
		t.Errorf("pad truncate = %q", got)
	}
	if got := pad("日本", 5); got != "日本 " {
		t.Errorf("pad wide = %q", got)
	}
}
