package raster

// Notes:
// - Browser and typesetter rendering are covered by raster_integration_test.go;
//   these tests use fakes and only exercise the memoization and decoding logic.

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alnah/go-md2docx/internal/cache"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// countingRenderer counts calls and returns a fixed result.
type countingRenderer struct {
	calls atomic.Int32
	img   *Image
	err   error
	delay time.Duration
}

func (r *countingRenderer) render(ctx context.Context) (*Image, error) {
	r.calls.Add(1)
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return r.img, r.err
}

// ---------------------------------------------------------------------------
// TestMemo_Lookup
// ---------------------------------------------------------------------------

func TestMemo_Lookup_CachesSuccess(t *testing.T) {
	t.Parallel()

	want := &Image{PNG: []byte("png"), Width: 10, Height: 5}
	r := &countingRenderer{img: want}
	m := NewMemo(cache.NewLRU[*Image](10), time.Second, nil)

	for i := 0; i < 3; i++ {
		if got := m.Lookup(context.Background(), "graph TD", r.render); got != want {
			t.Fatalf("Lookup() = %v, want %v", got, want)
		}
	}
	if n := r.calls.Load(); n != 1 {
		t.Errorf("renderer called %d times, want 1", n)
	}
}

func TestMemo_Lookup_CachesFailureOncePerKey(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{err: errors.New("boom")}
	m := NewMemo(cache.NewLRU[*Image](10), time.Second, nil)

	for i := 0; i < 5; i++ {
		if got := m.Lookup(context.Background(), "a", r.render); got != nil {
			t.Fatalf("Lookup(a) = %v, want nil", got)
		}
		if got := m.Lookup(context.Background(), "b", r.render); got != nil {
			t.Fatalf("Lookup(b) = %v, want nil", got)
		}
	}
	if n := r.calls.Load(); n != 2 {
		t.Errorf("renderer called %d times, want 2 (once per key)", n)
	}
}

func TestMemo_Lookup_NilImageWithoutErrorIsFailure(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{}
	m := NewMemo(cache.NewLRU[*Image](10), time.Second, nil)

	if got := m.Lookup(context.Background(), "k", r.render); got != nil {
		t.Errorf("Lookup() = %v, want nil", got)
	}
	m.Lookup(context.Background(), "k", r.render)
	if n := r.calls.Load(); n != 1 {
		t.Errorf("renderer called %d times, want 1", n)
	}
}

func TestMemo_Lookup_ConcurrentSameKeyRendersOnce(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{img: &Image{Width: 1, Height: 1}, delay: 50 * time.Millisecond}
	m := NewMemo(cache.NewLRU[*Image](10), time.Second, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Lookup(context.Background(), "same", r.render) == nil {
				t.Error("Lookup() = nil, want image")
			}
		}()
	}
	wg.Wait()

	if n := r.calls.Load(); n != 1 {
		t.Errorf("renderer called %d times, want 1", n)
	}
}

func TestMemo_Lookup_Timeout(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{img: &Image{}, delay: time.Second}
	m := NewMemo(cache.NewLRU[*Image](10), 20*time.Millisecond, nil)

	start := time.Now()
	if got := m.Lookup(context.Background(), "slow", r.render); got != nil {
		t.Errorf("Lookup() = %v, want nil after timeout", got)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Lookup() took %v, want the render timeout to apply", elapsed)
	}
}

func TestMemo_Clear(t *testing.T) {
	t.Parallel()

	r := &countingRenderer{err: errors.New("fail")}
	m := NewMemo(cache.NewLRU[*Image](10), time.Second, nil)

	m.Lookup(context.Background(), "k", r.render)
	m.Clear()
	m.Lookup(context.Background(), "k", r.render)

	if n := r.calls.Load(); n != 2 {
		t.Errorf("renderer called %d times, want 2 (retry after Clear)", n)
	}
	if s := m.Stats(); s.Misses == 0 {
		t.Errorf("Stats() = %+v, want misses recorded", s)
	}
}

// ---------------------------------------------------------------------------
// TestDecode
// ---------------------------------------------------------------------------

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("png passes through", func(t *testing.T) {
		t.Parallel()

		data := encodePNG(t, 40, 20)
		img, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode() unexpected error: %v", err)
		}
		if img.Width != 40 || img.Height != 20 {
			t.Errorf("size = %dx%d, want 40x20", img.Width, img.Height)
		}
		if !bytes.Equal(img.PNG, data) {
			t.Error("PNG input should be kept as is")
		}
	})

	t.Run("jpeg re-encoded as png", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 8)), nil); err != nil {
			t.Fatalf("jpeg.Encode: %v", err)
		}
		img, err := Decode(buf.Bytes())
		if err != nil {
			t.Fatalf("Decode() unexpected error: %v", err)
		}
		if !bytes.HasPrefix(img.PNG, []byte("\x89PNG")) {
			t.Error("output is not PNG")
		}
		if img.Width != 16 || img.Height != 8 {
			t.Errorf("size = %dx%d, want 16x8", img.Width, img.Height)
		}
	})

	t.Run("wide image downscaled", func(t *testing.T) {
		t.Parallel()

		img, err := Decode(encodePNG(t, MaxPixelWidth*2, 100))
		if err != nil {
			t.Fatalf("Decode() unexpected error: %v", err)
		}
		if img.Width != MaxPixelWidth || img.Height != 50 {
			t.Errorf("size = %dx%d, want %dx50", img.Width, img.Height, MaxPixelWidth)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		t.Parallel()

		_, err := Decode([]byte("not an image"))
		if !errors.Is(err, ErrImageDecode) {
			t.Errorf("Decode() error = %v, want ErrImageDecode", err)
		}
	})
}

func TestPrepare(t *testing.T) {
	t.Parallel()

	data := encodePNG(t, 30, 10)
	// Cut after the IHDR chunk: the header still decodes, the pixels do not.
	truncated := encodePNG(t, 50, 50)[:40]

	tests := []struct {
		name      string
		img       *Image
		wantW     int
		wantH     int
		wantScale float64
		wantErr   bool
	}{
		{"dimensions read from data", &Image{PNG: data, Width: 999, Height: 1}, 30, 10, 0, false},
		{"scale kept", &Image{PNG: data, Width: 30, Height: 10, Scale: 2}, 30, 10, 2, false},
		{"nil image", nil, 0, 0, 0, true},
		{"empty data", &Image{}, 0, 0, 0, true},
		{"corrupt data", &Image{PNG: []byte("\x89PNG broken"), Width: 5, Height: 5}, 0, 0, 0, true},
		{"truncated png", &Image{PNG: truncated, Width: 50, Height: 50}, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Prepare(tt.img)
			if tt.wantErr {
				if !errors.Is(err, ErrImageDecode) {
					t.Errorf("Prepare() error = %v, want ErrImageDecode", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Prepare() unexpected error: %v", err)
			}
			if got.Width != tt.wantW || got.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", got.Width, got.Height, tt.wantW, tt.wantH)
			}
			if got.Scale != tt.wantScale {
				t.Errorf("Scale = %v, want %v", got.Scale, tt.wantScale)
			}
		})
	}
}

func TestImage_DisplaySize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		img          Image
		wantW, wantH int
	}{
		{"unscaled", Image{Width: 800, Height: 400}, 800, 400},
		{"scale one", Image{Width: 800, Height: 400, Scale: 1}, 800, 400},
		{"double density", Image{Width: 800, Height: 401, Scale: 2}, 400, 201},
		{"tiny stays visible", Image{Width: 1, Height: 1, Scale: 4}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, h := tt.img.DisplaySize()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("DisplaySize() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestMermaidRenderer - Page construction
// ---------------------------------------------------------------------------

func TestMermaidRenderer_PageHTML(t *testing.T) {
	t.Parallel()

	r := NewMermaidRenderer("", "", 0)
	got := r.pageHTML("graph TD\nA-->B<script>")

	wantContains := []string{
		DefaultMermaidScript,
		"graph TD\nA--&gt;B&lt;script&gt;",
		`theme: "default"`,
	}
	for _, want := range wantContains {
		if !strings.Contains(got, want) {
			t.Errorf("pageHTML() missing %q", want)
		}
	}
}

func TestMermaidRenderer_CloseWithoutBrowser(t *testing.T) {
	t.Parallel()

	if err := NewMermaidRenderer("", "dark", time.Second).Close(); err != nil {
		t.Errorf("Close() unexpected error: %v", err)
	}
}

func TestMermaidRenderer_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMermaidRenderer("", "", time.Second).RenderDiagram(ctx, "graph TD")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RenderDiagram() error = %v, want context.Canceled", err)
	}
}

func TestLaTeXRenderer_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLaTeXRenderer(0).RenderFormula(ctx, "x^2", false)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RenderFormula() error = %v, want context.Canceled", err)
	}
}
