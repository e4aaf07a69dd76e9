package config

import (
	"math"
	"strings"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

const twipsPerInch = 1440

// pageSizes holds portrait width and height in twips.
var pageSizes = map[string][2]int{
	"a4":     {11906, 16838},
	"letter": {12240, 15840},
	"legal":  {12240, 20160},
}

// Twips returns the page width, height and margin in twips, with defaults
// for empty fields. Call Validate first; unknown sizes fall back to A4.
func (p PageConfig) Twips() (width, height, margin int) {
	size, ok := pageSizes[strings.ToLower(p.Size)]
	if !ok {
		size = pageSizes["a4"]
	}
	width, height = size[0], size[1]
	if strings.EqualFold(p.Orientation, "landscape") {
		width, height = height, width
	}

	m := p.Margin
	if m == 0 {
		m = DefaultMargin
	}
	return width, height, int(math.Round(m * twipsPerInch))
}
