package report

import (
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

var headerStyle = color.New(color.FgCyan, color.OpBold)

type column struct {
	header string
	right  bool
}

// grid lays out rows in the "+---+" boxed style with a "=" rule under the
// header. Widths are measured in terminal cells, so wide runes line up.
type grid struct {
	columns []column
	rows    [][]string
}

func newGrid(cols ...column) *grid {
	return &grid{columns: cols}
}

func (g *grid) add(cells ...string) {
	g.rows = append(g.rows, cells)
}

func (g *grid) widths() []int {
	w := make([]int, len(g.columns))
	for i, c := range g.columns {
		w[i] = runewidth.StringWidth(c.header)
	}
	for _, row := range g.rows {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > w[i] {
				w[i] = cw
			}
		}
	}
	return w
}

func (g *grid) render(sb *strings.Builder, useColor bool) {
	widths := g.widths()

	g.rule(sb, widths, '-')
	headers := make([]string, len(g.columns))
	for i, c := range g.columns {
		headers[i] = c.header
	}
	g.line(sb, widths, headers, true, useColor)
	g.rule(sb, widths, '=')

	for _, row := range g.rows {
		g.line(sb, widths, row, false, false)
		g.rule(sb, widths, '-')
	}
}

func (g *grid) rule(sb *strings.Builder, widths []int, fill rune) {
	sb.WriteByte('+')
	for _, w := range widths {
		sb.WriteString(strings.Repeat(string(fill), w+2))
		sb.WriteByte('+')
	}
	sb.WriteByte('\n')
}

func (g *grid) line(sb *strings.Builder, widths []int, cells []string, header, useColor bool) {
	sb.WriteByte('|')
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		// pad before coloring; escape codes have no width
		if g.columns[i].right && !header {
			cell = runewidth.FillLeft(cell, w)
		} else {
			cell = runewidth.FillRight(cell, w)
		}
		if header && useColor {
			cell = headerStyle.Sprint(cell)
		}
		sb.WriteString(" " + cell + " |")
	}
	sb.WriteByte('\n')
}

func title(s string, useColor bool) string {
	if !useColor {
		return s
	}
	return color.Bold.Sprint(s)
}
