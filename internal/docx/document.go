package docx

import (
	"crypto/sha256"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// EMUsPerPixel converts 96 DPI pixels to English Metric Units.
const EMUsPerPixel = 9525

const (
	headerFill  = "F2F2F2"
	monoFill    = "F3F3F3"
	borderColor = "A6A6A6"
)

const (
	relTypeStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeNumbering = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relTypeFooter    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	relTypeImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

const documentOpen = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
	` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
	` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"` +
	` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
	` xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"><w:body>`

const documentClose = `</w:body></w:document>`

type relationship struct {
	ID       string
	Type     string
	Target   string
	External bool
}

type mediaFile struct {
	Name string
	Data []byte
}

// part accumulates word/document.xml together with the relationships and
// media it references.
type part struct {
	b     strings.Builder
	fonts Fonts
	rels  []relationship
	media []mediaFile
	// images and links dedupe relationships by content hash and target.
	images map[[sha256.Size]byte]string
	links  map[string]string
	docPr  int
}

func newPart(fonts Fonts) *part {
	return &part{
		fonts:  fonts,
		images: make(map[[sha256.Size]byte]string),
		links:  make(map[string]string),
	}
}

func (p *part) addRel(typ, target string, external bool) string {
	id := "rId" + strconv.Itoa(len(p.rels)+1)
	p.rels = append(p.rels, relationship{ID: id, Type: typ, Target: target, External: external})
	return id
}

func (p *part) imageRel(data []byte) string {
	sum := sha256.Sum256(data)
	if id, ok := p.images[sum]; ok {
		return id
	}
	name := fmt.Sprintf("image%d.png", len(p.media)+1)
	p.media = append(p.media, mediaFile{Name: name, Data: data})
	id := p.addRel(relTypeImage, "media/"+name, false)
	p.images[sum] = id
	return id
}

func (p *part) linkRel(href string) string {
	if id, ok := p.links[href]; ok {
		return id
	}
	id := p.addRel(relTypeHyperlink, href, true)
	p.links[href] = id
	return id
}

// writeBody serializes blocks followed by the section properties.
func (p *part) writeBody(blocks []Block, page Page, footerRel string) {
	p.b.WriteString(documentOpen)
	for _, blk := range blocks {
		switch blk := blk.(type) {
		case Paragraph:
			p.paragraph(blk)
		case Table:
			p.table(blk)
		case Image:
			p.paragraph(Paragraph{Align: blk.Align, Runs: []Run{{Image: &blk}}})
		}
	}
	// A body may not end with a table.
	if n := len(blocks); n > 0 {
		if _, ok := blocks[n-1].(Table); ok {
			p.b.WriteString("<w:p/>")
		}
	}
	p.sectPr(page, footerRel)
	p.b.WriteString(documentClose)
}

func (p *part) sectPr(page Page, footerRel string) {
	p.b.WriteString("<w:sectPr>")
	if footerRel != "" {
		fmt.Fprintf(&p.b, `<w:footerReference w:type="default" r:id="%s"/>`, footerRel)
	}
	fmt.Fprintf(&p.b, `<w:pgSz w:w="%d" w:h="%d"/>`, page.Width, page.Height)
	fmt.Fprintf(&p.b, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="%d" w:footer="%d" w:gutter="0"/>`,
		page.Margin, page.Margin, page.Margin, page.Margin, page.Margin/2, page.Margin/2)
	p.b.WriteString("</w:sectPr>")
}

func (p *part) paragraph(para Paragraph) {
	p.b.WriteString("<w:p>")
	p.pPr(para)
	p.runs(para.Runs)
	p.b.WriteString("</w:p>")
}

// pPr writes paragraph properties in schema order.
func (p *part) pPr(para Paragraph) {
	if para.Style == "" && !para.Bullet && !para.BorderBottom && para.Shading == "" &&
		para.Spacing == nil && para.Align == AlignDefault {
		return
	}
	p.b.WriteString("<w:pPr>")
	if para.Style != "" {
		p.attrElem("w:pStyle", para.Style)
	}
	if para.Bullet {
		p.b.WriteString(`<w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr>`)
	}
	if para.BorderBottom {
		fmt.Fprintf(&p.b, `<w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="%s"/></w:pBdr>`, borderColor)
	}
	if para.Shading != "" {
		p.shd(para.Shading)
	}
	if s := para.Spacing; s != nil {
		fmt.Fprintf(&p.b, `<w:spacing w:before="%d" w:after="%d"/>`, s.Before, s.After)
	}
	if para.Align != AlignDefault {
		p.attrElem("w:jc", string(para.Align))
	}
	p.b.WriteString("</w:pPr>")
}

// runs writes runs, grouping consecutive runs with the same link target
// into one w:hyperlink.
func (p *part) runs(runs []Run) {
	for i := 0; i < len(runs); {
		href := runs[i].Href
		if href == "" {
			p.run(runs[i])
			i++
			continue
		}
		fmt.Fprintf(&p.b, `<w:hyperlink r:id="%s" w:history="1">`, p.linkRel(href))
		for ; i < len(runs) && runs[i].Href == href; i++ {
			p.run(runs[i])
		}
		p.b.WriteString("</w:hyperlink>")
	}
}

func (p *part) run(r Run) {
	p.b.WriteString("<w:r>")
	p.rPr(r)
	switch {
	case r.Image != nil:
		p.drawing(*r.Image)
	case r.Break:
		p.b.WriteString("<w:br/>")
	default:
		p.b.WriteString(`<w:t xml:space="preserve">`)
		escape(&p.b, r.Text)
		p.b.WriteString("</w:t>")
	}
	p.b.WriteString("</w:r>")
}

// rPr writes run properties in schema order.
func (p *part) rPr(r Run) {
	if r.Href == "" && r.Font == "" && !r.Mono && !r.Bold && !r.Italic && !r.Strike && r.Color == "" {
		return
	}
	p.b.WriteString("<w:rPr>")
	if r.Href != "" {
		p.attrElem("w:rStyle", "Hyperlink")
	}
	switch {
	case r.Font != "":
		p.fontsElem(r.Font, r.Font)
	case r.Mono:
		p.fontsElem(p.fonts.Code, p.fonts.EastAsia)
	}
	if r.Bold {
		p.b.WriteString("<w:b/><w:bCs/>")
	}
	if r.Italic {
		p.b.WriteString("<w:i/><w:iCs/>")
	}
	if r.Strike {
		p.b.WriteString("<w:strike/>")
	}
	if r.Color != "" {
		p.attrElem("w:color", r.Color)
	}
	if r.Mono {
		p.shd(monoFill)
	}
	p.b.WriteString("</w:rPr>")
}

func (p *part) fontsElem(latin, eastAsia string) {
	p.b.WriteString(`<w:rFonts w:ascii="`)
	escape(&p.b, latin)
	p.b.WriteString(`" w:hAnsi="`)
	escape(&p.b, latin)
	p.b.WriteString(`" w:eastAsia="`)
	escape(&p.b, eastAsia)
	p.b.WriteString(`" w:cs="`)
	escape(&p.b, latin)
	p.b.WriteString(`"/>`)
}

func (p *part) drawing(img Image) {
	rel := p.imageRel(img.PNG)
	p.docPr++
	id := p.docPr
	cx, cy := img.Width*EMUsPerPixel, img.Height*EMUsPerPixel
	fmt.Fprintf(&p.b, `<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/><wp:docPr id="%d" name="Picture %d"/>`+
		`<wp:cNvGraphicFramePr><a:graphicFrameLocks noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
		`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic><pic:nvPicPr><pic:cNvPr id="%d" name="Picture %d"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr></pic:pic>`+
		`</a:graphicData></a:graphic></wp:inline></w:drawing>`,
		cx, cy, id, id, id, id, rel, cx, cy)
}

func (p *part) table(t Table) {
	p.b.WriteString("<w:tbl><w:tblPr>")
	p.attrElem("w:tblStyle", "TableGrid")
	fmt.Fprintf(&p.b, `<w:tblW w:w="%d" w:type="dxa"/>`, t.Width)
	p.b.WriteString(`<w:tblLayout w:type="fixed"/>`)
	p.b.WriteString(`<w:tblLook w:val="04A0" w:firstRow="1" w:lastRow="0" w:firstColumn="0" w:lastColumn="0" w:noHBand="0" w:noVBand="1"/>`)
	p.b.WriteString("</w:tblPr><w:tblGrid>")
	for _, w := range t.ColumnWidths {
		fmt.Fprintf(&p.b, `<w:gridCol w:w="%d"/>`, w)
	}
	p.b.WriteString("</w:tblGrid>")

	for _, row := range t.Rows {
		p.b.WriteString("<w:tr>")
		if row.Header {
			p.b.WriteString("<w:trPr><w:tblHeader/></w:trPr>")
		}
		for i, w := range t.ColumnWidths {
			var cell Cell
			if i < len(row.Cells) {
				cell = row.Cells[i]
			}
			p.b.WriteString("<w:tc><w:tcPr>")
			fmt.Fprintf(&p.b, `<w:tcW w:w="%d" w:type="dxa"/>`, w)
			if row.Header {
				p.shd(headerFill)
			}
			p.b.WriteString("</w:tcPr>")
			p.paragraph(Paragraph{Runs: cell.Runs, Spacing: &Spacing{}})
			p.b.WriteString("</w:tc>")
		}
		p.b.WriteString("</w:tr>")
	}
	p.b.WriteString("</w:tbl>")
}

func (p *part) shd(fill string) {
	fmt.Fprintf(&p.b, `<w:shd w:val="clear" w:color="auto" w:fill="%s"/>`, fill)
}

func (p *part) attrElem(name, val string) {
	p.b.WriteString("<" + name + ` w:val="`)
	escape(&p.b, val)
	p.b.WriteString(`"/>`)
}

// escape writes s with XML special characters escaped. Characters outside
// the XML character range become U+FFFD.
func escape(b *strings.Builder, s string) {
	_ = xml.EscapeText(b, []byte(s))
}

// escapeString is the "xml" template function.
func escapeString(s string) string {
	var b strings.Builder
	escape(&b, s)
	return b.String()
}
