// Package format renders tabular report output. Tables are built once and
// rendered either as fixed-width terminal tables or as Markdown.
package format

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// ColumnAlign specifies the horizontal alignment for a column.
type ColumnAlign int

const (
	AlignDefault ColumnAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// ColumnConfig controls per-column formatting.
type ColumnConfig struct {
	Number   int         // 1-based column index
	Align    ColumnAlign // horizontal alignment
	MinWidth int         // pad content to at least this width (0 = natural width)
	MaxWidth int         // truncate or wrap content beyond this width (0 = unlimited)
}

// Fixed returns a left-aligned column config whose width never changes with
// content shorter than width.
func Fixed(number, width int) ColumnConfig {
	return ColumnConfig{Number: number, Align: AlignLeft, MinWidth: width}
}

// TableBuilder is the project-owned table abstraction.
type TableBuilder interface {
	// Title sets a caption rendered above the table (ASCII mode only).
	Title(title string)
	// Header sets the column headers.
	Header(cols ...string)
	// Row appends a data row. Values are converted to strings via fmt Sprint.
	Row(vals ...any)
	// Separator draws a horizontal rule before the next row.
	Separator()
	// Columns applies per-column configuration (alignment, widths).
	Columns(cfgs ...ColumnConfig)
	// Len reports the number of data rows appended so far.
	Len() int
	// String renders the table in the configured Mode.
	String() string
}

// NewTable returns a TableBuilder that renders in the given Mode.
func NewTable(m Mode) TableBuilder {
	w := table.NewWriter()

	switch m {
	case ASCII:
		w.SetStyle(table.StyleLight)
	case Markdown:
		// go-pretty's RenderMarkdown uses its own formatting; no style needed.
	}

	return &prettyAdapter{writer: w, mode: m}
}

// prettyAdapter wraps go-pretty/v6/table.Writer behind the TableBuilder interface.
type prettyAdapter struct {
	writer table.Writer
	mode   Mode
	rows   int
}

func (a *prettyAdapter) Title(title string) {
	if a.mode == ASCII {
		a.writer.SetTitle(title)
	}
}

func (a *prettyAdapter) Header(cols ...string) {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	a.writer.AppendHeader(row)
}

func (a *prettyAdapter) Row(vals ...any) {
	row := make(table.Row, len(vals))
	copy(row, vals)
	a.writer.AppendRow(row)
	a.rows++
}

func (a *prettyAdapter) Separator() {
	if a.rows > 0 {
		a.writer.AppendSeparator()
	}
}

func (a *prettyAdapter) Columns(cfgs ...ColumnConfig) {
	goCfgs := make([]table.ColumnConfig, len(cfgs))
	for i, c := range cfgs {
		goCfgs[i] = table.ColumnConfig{
			Number:   c.Number,
			Align:    toTextAlign(c.Align),
			WidthMin: c.MinWidth,
			WidthMax: c.MaxWidth,
		}
	}
	a.writer.SetColumnConfigs(goCfgs)
}

func (a *prettyAdapter) Len() int { return a.rows }

func (a *prettyAdapter) String() string {
	switch a.mode {
	case Markdown:
		return a.writer.RenderMarkdown()
	default:
		return a.writer.Render()
	}
}

func toTextAlign(a ColumnAlign) text.Align {
	switch a {
	case AlignLeft:
		return text.AlignLeft
	case AlignRight:
		return text.AlignRight
	case AlignCenter:
		return text.AlignCenter
	default:
		return text.AlignDefault
	}
}
