package docx

// Block is a top-level element of the document body.
type Block interface {
	block()
}

// Align is a paragraph justification value.
type Align string

// Justifications.
const (
	AlignDefault Align = ""
	AlignLeft    Align = "left"
	AlignCenter  Align = "center"
	AlignRight   Align = "right"
)

// Paragraph style ids defined by the style sheets.
const (
	StyleNormal     = ""
	StyleHeading1   = "Heading1"
	StyleHeading2   = "Heading2"
	StyleHeading3   = "Heading3"
	StyleHeading4   = "Heading4"
	StyleCode       = "Code"
	StyleListBullet = "ListBullet"
)

// Spacing is paragraph spacing in twips.
type Spacing struct {
	Before int
	After  int
}

// Paragraph is a w:p element.
type Paragraph struct {
	Style        string
	Runs         []Run
	Align        Align
	Spacing      *Spacing // nil keeps the style's spacing
	Shading      string   // fill color as RRGGBB
	BorderBottom bool
	Bullet       bool
}

// Run is a span of uniformly formatted text, a line break, or an inline
// picture when Image is set.
type Run struct {
	Text   string
	Break  bool
	Bold   bool
	Italic bool
	Strike bool
	Mono   bool
	Href   string // external hyperlink target
	Font   string // overrides every font slot when set
	Color  string // RRGGBB
	Image  *Image
}

// Image is a PNG picture. Width and Height are display pixels at 96 DPI.
type Image struct {
	PNG    []byte
	Width  int
	Height int
	Align  Align
}

// Table is a fixed-layout w:tbl. ColumnWidths and Width are in twips.
type Table struct {
	Rows         []Row
	ColumnWidths []int
	Width        int
}

// Row is a table row. Header rows are shaded and repeat on each page.
type Row struct {
	Cells  []Cell
	Header bool
}

// Cell holds the runs of a single-paragraph table cell.
type Cell struct {
	Runs []Run
}

func (Paragraph) block() {}
func (Table) block()     {}
func (Image) block()     {}

// Text returns the text of the runs with breaks as "\n". Pictures
// contribute nothing.
func Text(runs []Run) string {
	n := 0
	for _, r := range runs {
		n += len(r.Text) + 1
	}
	b := make([]byte, 0, n)
	for _, r := range runs {
		if r.Break {
			b = append(b, '\n')
			continue
		}
		b = append(b, r.Text...)
	}
	return string(b)
}
