package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column alignments.
const (
	AlignLeft  = lipgloss.Left
	AlignRight = lipgloss.Right
)

// Column is one fixed-width table column. Align defaults to left.
type Column struct {
	Title string
	Width int
	Align lipgloss.Position
}

// Row holds one cell per column. Missing trailing cells render empty.
type Row []string

// Table renders rows as fixed-width columns with one optional highlighted row.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // highlighted row, -1 for none
}

// NewTable returns an empty table with no highlighted row.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends r.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// Render lays out the header, a rule and every row. Cell widths are
// measured in display cells, so styled values keep their columns aligned.
func (t *Table) Render() string {
	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)
	ruleStyle := lipgloss.NewStyle().Foreground(ColorMeta)

	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, t.line(headerStyle, func(i int) string { return t.Columns[i].Title }))
	lines = append(lines, t.line(ruleStyle, func(i int) string { return strings.Repeat("-", t.Columns[i].Width) }))
	for r, row := range t.Rows {
		style := cellStyle
		if r == t.SelIdx {
			style = StyleSelected
		}
		lines = append(lines, t.line(style, func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		}))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (t *Table) line(style lipgloss.Style, cell func(i int) string) string {
	cells := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		cells[i] = style.Render(fit(cell(i), col.Width, col.Align))
	}
	return strings.Join(cells, " ")
}

// fit pads s to width display cells, cutting it with an ellipsis when longer.
func fit(s string, width int, align lipgloss.Position) string {
	if lipgloss.Width(s) > width {
		r := []rune(s)
		if width <= 1 || len(r) <= width {
			r = r[:min(len(r), width)]
		} else {
			r = append(r[:width-1], '…')
		}
		s = string(r)
	}
	return lipgloss.PlaceHorizontal(width, align, s)
}

// KeyValueBlock renders labelled values in a rounded box. Labels share the
// width of the longest one.
func KeyValueBlock(title string, pairs [][2]string) string {
	keyWidth := 0
	for _, p := range pairs {
		keyWidth = max(keyWidth, lipgloss.Width(p[0])+1)
	}

	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title) + "\n")
	}
	for _, p := range pairs {
		key := StyleMeta.Render(fit(p[0]+":", keyWidth, lipgloss.Left))
		sb.WriteString("  " + key + "  " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(strings.TrimSuffix(sb.String(), "\n"))
}
