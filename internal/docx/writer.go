package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/alnah/go-md2docx/internal/assets"
)

// Sentinel errors for packaging.
var (
	ErrPackage  = errors.New("document packaging failed")
	ErrTemplate = errors.New("invalid part template")
	ErrSettings = errors.New("invalid document settings")
)

// Fonts is the font pair of body text plus the monospace font.
type Fonts struct {
	Latin    string
	EastAsia string
	Code     string
}

// DefaultFonts returns the default font selection.
func DefaultFonts() Fonts {
	return Fonts{Latin: "Calibri", EastAsia: "Microsoft YaHei", Code: "Consolas"}
}

// Page is the page geometry in twips. Margin applies to all four sides.
type Page struct {
	Width  int
	Height int
	Margin int
}

// A4 returns an A4 portrait page with 720 twip (half inch) margins.
func A4() Page {
	return Page{Width: 11906, Height: 16838, Margin: 720}
}

// PrintableWidth is the page width minus both side margins.
func (p Page) PrintableWidth() int {
	return p.Width - 2*p.Margin
}

// Settings configures a Writer.
type Settings struct {
	Style     string // style sheet name resolved through the asset loader
	Fonts     Fonts
	Page      Page
	Bullet    string
	Generator string
}

// DefaultSettings returns the built-in style with default fonts on A4.
func DefaultSettings() Settings {
	return Settings{
		Style:     assets.DefaultStyleName,
		Fonts:     DefaultFonts(),
		Page:      A4(),
		Bullet:    "•",
		Generator: "go-md2docx",
	}
}

// Validate checks the settings for values that would produce a broken package.
func (s Settings) Validate() error {
	switch {
	case s.Fonts.Latin == "" || s.Fonts.EastAsia == "" || s.Fonts.Code == "":
		return fmt.Errorf("%w: fonts must all be set", ErrSettings)
	case s.Page.Width <= 0 || s.Page.Height <= 0 || s.Page.Margin < 0:
		return fmt.Errorf("%w: page dimensions must be positive", ErrSettings)
	case s.Page.PrintableWidth() <= 0:
		return fmt.Errorf("%w: margins leave no printable width", ErrSettings)
	case s.Bullet == "":
		return fmt.Errorf("%w: bullet cannot be empty", ErrSettings)
	}
	return nil
}

// Properties are the per-document metadata.
type Properties struct {
	Title   string
	Author  string
	Created time.Time // zero means time.Now
	Footer  string    // footer text; empty omits the footer part
}

// Writer packages document blocks into a .docx archive.
// A Writer is immutable after construction and safe for concurrent use.
type Writer struct {
	settings  Settings
	styles    *template.Template
	numbering *template.Template
	core      *template.Template
	app       *template.Template
	footer    *template.Template
}

// NewWriter loads and parses the part templates from loader.
func NewWriter(loader assets.AssetLoader, settings Settings) (*Writer, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	w := &Writer{settings: settings}

	src, err := loader.LoadStyle(settings.Style)
	if err != nil {
		return nil, err
	}
	if w.styles, err = parseTemplate("styles", src); err != nil {
		return nil, err
	}

	for _, t := range []struct {
		name string
		dst  **template.Template
	}{
		{assets.TemplateNumbering, &w.numbering},
		{assets.TemplateCore, &w.core},
		{assets.TemplateApp, &w.app},
		{assets.TemplateFooter, &w.footer},
	} {
		src, err := loader.LoadTemplate(t.name)
		if err != nil {
			return nil, err
		}
		if *t.dst, err = parseTemplate(t.name, src); err != nil {
			return nil, err
		}
	}

	return w, nil
}

func parseTemplate(name, src string) (*template.Template, error) {
	tmpl, err := template.New(name).
		Funcs(template.FuncMap{"xml": escapeString}).
		Option("missingkey=error").
		Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplate, name, err)
	}
	return tmpl, nil
}

// templateData is the value every part template executes against.
type templateData struct {
	Fonts     Fonts
	Bullet    string
	Title     string
	Author    string
	Created   string
	Generator string
	Footer    string
}

// Write packages blocks with props and writes the archive to out.
func (w *Writer) Write(ctx context.Context, out io.Writer, blocks []Block, props Properties) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	created := props.Created
	if created.IsZero() {
		created = time.Now()
	}
	data := templateData{
		Fonts:     w.settings.Fonts,
		Bullet:    w.settings.Bullet,
		Title:     props.Title,
		Author:    props.Author,
		Created:   created.UTC().Format(time.RFC3339),
		Generator: w.settings.Generator,
		Footer:    props.Footer,
	}

	doc := newPart(w.settings.Fonts)
	doc.addRel(relTypeStyles, "styles.xml", false)
	doc.addRel(relTypeNumbering, "numbering.xml", false)
	var footerRel string
	if props.Footer != "" {
		footerRel = doc.addRel(relTypeFooter, "footer1.xml", false)
	}
	doc.writeBody(blocks, w.settings.Page, footerRel)

	if err := ctx.Err(); err != nil {
		return err
	}

	parts := []zipPart{
		{"[Content_Types].xml", func() ([]byte, error) { return contentTypes(footerRel != ""), nil }},
		{"_rels/.rels", func() ([]byte, error) { return []byte(packageRels), nil }},
		{"docProps/core.xml", func() ([]byte, error) { return execute(w.core, data) }},
		{"docProps/app.xml", func() ([]byte, error) { return execute(w.app, data) }},
		{"word/document.xml", func() ([]byte, error) { return []byte(doc.b.String()), nil }},
		{"word/_rels/document.xml.rels", func() ([]byte, error) { return documentRels(doc.rels), nil }},
		{"word/styles.xml", func() ([]byte, error) { return execute(w.styles, data) }},
		{"word/numbering.xml", func() ([]byte, error) { return execute(w.numbering, data) }},
	}
	if footerRel != "" {
		parts = append(parts, zipPart{"word/footer1.xml", func() ([]byte, error) { return execute(w.footer, data) }})
	}

	zw := zip.NewWriter(out)
	for _, p := range parts {
		body, err := p.body()
		if err != nil {
			return err
		}
		if err := writeEntry(zw, p.name, body, created); err != nil {
			return err
		}
	}
	for _, m := range doc.media {
		if err := writeEntry(zw, "word/media/"+m.Name, m.Data, created); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrPackage, err)
	}
	return nil
}

// zipPart is an archive entry rendered on demand.
type zipPart struct {
	name string
	body func() ([]byte, error)
}

func writeEntry(zw *zip.Writer, name string, body []byte, modified time.Time) error {
	f, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: modified,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPackage, name, err)
	}
	if _, err := f.Write(body); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPackage, name, err)
	}
	return nil
}

func execute(tmpl *template.Template, data templateData) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplate, tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

const packageRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
  <Relationship Id="rId3" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties" Target="docProps/app.xml"/>
</Relationships>`

func contentTypes(footer bool) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
  <Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
  <Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>
  <Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
  <Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>
`)
	if footer {
		b.WriteString(`  <Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>
`)
	}
	b.WriteString(`</Types>`)
	return []byte(b.String())
}

func documentRels(rels []relationship) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		b.WriteString(`<Relationship Id="` + r.ID + `" Type="` + r.Type + `" Target="`)
		escape(&b, r.Target)
		b.WriteString(`"`)
		if r.External {
			b.WriteString(` TargetMode="External"`)
		}
		b.WriteString(`/>`)
	}
	b.WriteString(`</Relationships>`)
	return []byte(b.String())
}
