package transform

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/histogram"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/pgm-tools/internal/imaging"
)

// captionHeight is the band under the bars that holds the caption.
const captionHeight = 16

// Histogram counts the 8-bit levels of g into 256 bins. 16-bit grids are
// rescaled to 8-bit first.
func Histogram(g *imaging.Grid) *histogram.Histogram {
	// a gray image lands identically in R, G and B
	h := histogram.NewRGBAHistogram(g.Image())
	return &h.R
}

// HistogramImage draws the level histogram of g as white bars on black,
// 256 pixels square, with a caption band underneath giving the range and
// mean of the 8-bit levels.
func HistogramImage(g *imaging.Grid) *image.Gray {
	h := Histogram(g)
	bars := h.Image()

	bounds := bars.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()+captionHeight))
	draw.Draw(dst, bounds, bars, bounds.Min, draw.Src)

	lo, hi, sum := -1, 0, 0
	for level, n := range h.Bins {
		if n == 0 {
			continue
		}
		if lo < 0 {
			lo = level
		}
		hi = level
		sum += level * n
	}
	mean := 0.0
	if total := len(g.Samples); total > 0 {
		mean = float64(sum) / float64(total)
	}

	// Face7x13 ascends 11 pixels above its baseline
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(2, bounds.Dy()+13),
	}
	d.DrawString(fmt.Sprintf("min %d max %d mean %.1f", max(lo, 0), hi, mean))
	return dst
}
