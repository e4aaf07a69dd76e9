package raster

import (
	"context"
	"fmt"
	"html"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/process"
)

// DefaultMermaidScript is the mermaid.js build loaded into the page.
const DefaultMermaidScript = "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.min.js"

// Page geometry for diagram screenshots. The scale factor doubles the
// pixel density so diagrams stay sharp when printed.
const (
	viewportWidth       = 1200
	viewportHeight      = 800
	viewportScaleFactor = 2
)

// Selectors set by the page script once mermaid finishes.
const (
	doneSelector    = "body[data-done]"
	diagramSelector = "pre.mermaid svg"
)

// mermaidPage runs mermaid once and records the outcome on <body> so the
// renderer can wait on a single selector for success and failure alike.
const mermaidPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<script src="%s"></script>
</head>
<body style="margin:0;background:#ffffff">
<pre class="mermaid">%s</pre>
<script>
mermaid.initialize({ startOnLoad: false, theme: %q, securityLevel: "strict" });
mermaid.run({ querySelector: "pre.mermaid" })
  .then(() => { document.body.dataset.done = "ok"; })
  .catch(() => { document.body.dataset.done = "error"; });
</script>
</body>
</html>`

// MermaidRenderer renders mermaid diagrams in headless Chrome via go-rod.
// Rod downloads Chromium on first use if no browser is found. The browser
// starts lazily and is shared by all renders until Close.
type MermaidRenderer struct {
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	script   string
	theme    string
	timeout  time.Duration
}

// Compile-time interface check.
var _ DiagramRenderer = (*MermaidRenderer)(nil)

// NewMermaidRenderer creates a renderer loading mermaid from script (a URL
// or file:// path) with the given theme. Empty values take defaults.
func NewMermaidRenderer(script, theme string, timeout time.Duration) *MermaidRenderer {
	if script == "" {
		script = DefaultMermaidScript
	}
	if theme == "" {
		theme = "default"
	}
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	return &MermaidRenderer{script: script, theme: theme, timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
// Must be called with lock held.
func (r *MermaidRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" || os.Getenv("ROD_NO_SANDBOX") == "1" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillProcessGroup(l.PID())
		l.Cleanup()
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.launcher = l
	r.browser = browser
	return nil
}

// Close releases browser resources. Any process left behind by the browser
// is killed with its process group.
func (r *MermaidRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	process.KillProcessGroup(r.launcher.PID())
	r.launcher.Cleanup()
	r.browser = nil
	r.launcher = nil
	return err
}

// RenderDiagram renders source and screenshots the resulting SVG as PNG.
func (r *MermaidRenderer) RenderDiagram(ctx context.Context, source string) (*Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	err := r.ensureBrowser()
	browser := r.browser
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(r.pageHTML(source), "html")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiagramRender, err)
	}
	defer cleanup()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("%w: creating page: %v", ErrDiagramRender, err)
	}
	defer page.Close()

	// Wait with timeout from context or default
	timeout := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	p := page.Context(ctx).Timeout(timeout)

	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidth,
		Height:            viewportHeight,
		DeviceScaleFactor: viewportScaleFactor,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiagramRender, err)
	}
	if err := p.Navigate("file://" + tmpPath); err != nil {
		return nil, fmt.Errorf("%w: loading page: %v", ErrDiagramRender, err)
	}

	body, err := p.Element(doneSelector)
	if err != nil {
		return nil, fmt.Errorf("%w: waiting for mermaid: %v", ErrDiagramRender, err)
	}
	status, err := body.Attribute("data-done")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiagramRender, err)
	}
	if status == nil || *status != "ok" {
		return nil, fmt.Errorf("%w: mermaid rejected the diagram source", ErrDiagramRender)
	}

	svg, err := p.Element(diagramSelector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiagramRender, err)
	}
	shot, err := svg.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: screenshot: %v", ErrDiagramRender, err)
	}

	img, err := Decode(shot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiagramRender, err)
	}
	img.Scale = viewportScaleFactor
	return img, nil
}

func (r *MermaidRenderer) pageHTML(source string) string {
	return fmt.Sprintf(mermaidPage, html.EscapeString(r.script), html.EscapeString(source), r.theme)
}
