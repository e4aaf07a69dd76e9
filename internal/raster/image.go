package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// MaxPixelWidth caps the width of embedded rasters. Wider images are
// downscaled before embedding; a document page never shows more.
const MaxPixelWidth = 2400

// Decode reads an encoded image (PNG, JPEG, GIF, WebP or BMP) into an
// embeddable Image. Non-PNG input is re-encoded as PNG and images wider
// than MaxPixelWidth are downscaled, keeping the aspect ratio.
func Decode(data []byte) (*Image, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrImageDecode)
	}

	if format == "png" && b.Dx() <= MaxPixelWidth {
		return &Image{PNG: data, Width: b.Dx(), Height: b.Dy()}, nil
	}

	var out image.Image = src
	if b.Dx() > MaxPixelWidth {
		h := max(1, b.Dy()*MaxPixelWidth/b.Dx())
		dst := image.NewRGBA(image.Rect(0, 0, MaxPixelWidth, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	ob := out.Bounds()
	return &Image{PNG: buf.Bytes(), Width: ob.Dx(), Height: ob.Dy()}, nil
}

// DisplaySize returns the size in 96 DPI display pixels: the pixel size
// divided by Scale.
func (i *Image) DisplaySize() (int, int) {
	if i.Scale <= 1 {
		return i.Width, i.Height
	}
	return max(1, int(math.Round(float64(i.Width)/i.Scale))),
		max(1, int(math.Round(float64(i.Height)/i.Scale)))
}

// fromImage encodes an in-memory image as PNG.
func fromImage(img image.Image) (*Image, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return Decode(buf.Bytes())
}

// Prepare fully decodes img and returns it ready for embedding, with
// dimensions read from the data itself. Truncated or corrupt data fails
// with ErrImageDecode even when its header is intact.
func Prepare(img *Image) (*Image, error) {
	if img == nil || len(img.PNG) == 0 {
		return nil, fmt.Errorf("%w: no data", ErrImageDecode)
	}
	out, err := Decode(img.PNG)
	if err != nil {
		return nil, err
	}
	out.Scale = img.Scale
	return out, nil
}
