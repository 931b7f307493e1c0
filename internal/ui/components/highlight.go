package components

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// sqlHighlighter renders SQL with ANSI colors for the terminal
type sqlHighlighter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

func newSQLHighlighter() *sqlHighlighter {
	lexer := lexers.Get("postgresql")
	if lexer == nil {
		lexer = lexers.Get("sql")
	}
	if lexer != nil {
		// Coalesce runs of tokens to reduce output
		lexer = chroma.Coalesce(lexer)
	}

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	return &sqlHighlighter{lexer: lexer, style: style, formatter: formatter}
}

// Highlight returns sql with color codes, or sql unchanged if tokenising fails
func (h *sqlHighlighter) Highlight(sql string) string {
	if sql == "" || h.lexer == nil {
		return sql
	}

	iterator, err := h.lexer.Tokenise(nil, sql)
	if err != nil {
		return sql
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return sql
	}

	// Remove trailing newline added by chroma
	return strings.TrimSuffix(buf.String(), "\n")
}
