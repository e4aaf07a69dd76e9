package assemble

import (
	"context"

	"github.com/alnah/go-md2docx/internal/docx"
	"github.com/alnah/go-md2docx/internal/inline"
	"github.com/alnah/go-md2docx/internal/token"
)

// Table layout defaults.
const (
	DefaultNarrowColumnUnits = 4
	DefaultNarrowColumnWidth = 1200 // twips
)

// cellUnits is the width of a cell's visible text in units: one per rune
// in the single-byte range, two for any rune above it.
func cellUnits(c token.Cell) int {
	text := c.Text
	if c.Inline != nil {
		text = token.VisibleText(c.Inline)
	}
	n := 0
	for _, r := range text {
		if r <= 0xFF {
			n++
		} else {
			n += 2
		}
	}
	return n
}

// ColumnWidths assigns twip widths summing to total. Columns no wider than
// narrowUnits get narrowWidth; the others share what is left evenly. When
// every column is narrow, or the narrow columns leave no room, all columns
// share total evenly.
func ColumnWidths(rows [][]token.Cell, total, narrowUnits, narrowWidth int) []int {
	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	if cols == 0 {
		return nil
	}

	units := make([]int, cols)
	for _, row := range rows {
		for i, c := range row {
			units[i] = max(units[i], cellUnits(c))
		}
	}

	narrow := 0
	for _, u := range units {
		if u <= narrowUnits {
			narrow++
		}
	}

	widths := make([]int, cols)
	wide := cols - narrow
	remaining := total - narrow*narrowWidth
	if wide == 0 || remaining < wide*narrowWidth {
		spread(widths, nil, total)
		return widths
	}

	isWide := make([]bool, cols)
	for i, u := range units {
		if u <= narrowUnits {
			widths[i] = narrowWidth
			continue
		}
		isWide[i] = true
	}
	spread(widths, isWide, remaining)
	return widths
}

// spread divides total evenly over the selected columns (all when sel is
// nil). The last selected column absorbs the rounding remainder.
func spread(widths []int, sel []bool, total int) {
	var idx []int
	for i := range widths {
		if sel == nil || sel[i] {
			idx = append(idx, i)
		}
	}
	each := total / len(idx)
	for _, i := range idx {
		widths[i] = each
	}
	widths[idx[len(idx)-1]] += total - each*len(idx)
}

func (a *Assembler) table(ctx context.Context, t token.Table) docx.Table {
	all := make([][]token.Cell, 0, len(t.Rows)+1)
	if len(t.Header) > 0 {
		all = append(all, t.Header)
	}
	all = append(all, t.Rows...)

	out := docx.Table{
		Width:        a.page.PrintableWidth(),
		ColumnWidths: ColumnWidths(all, a.page.PrintableWidth(), a.narrowUnits, a.narrowWidth),
	}
	if len(t.Header) > 0 {
		out.Rows = append(out.Rows, a.row(ctx, t.Header, true))
	}
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, a.row(ctx, r, false))
	}
	return out
}

func (a *Assembler) row(ctx context.Context, cells []token.Cell, header bool) docx.Row {
	row := docx.Row{Header: header, Cells: make([]docx.Cell, len(cells))}
	for i, c := range cells {
		row.Cells[i] = docx.Cell{Runs: a.resolver.Resolve(ctx, c.Text, c.Inline, inline.Style{Bold: header})}
	}
	return row
}
