package imaging

import (
	"fmt"
	"image"
)

// Depth is the number of bits used to store one sample.
type Depth int

const (
	Depth8  Depth = 8
	Depth16 Depth = 16
)

// MaxMaxval is the largest maxval a P5 header may declare.
const MaxMaxval = 65535

// Grid is an in-memory grayscale raster.
//
// Samples are stored row-major with the origin at the top-left corner:
// the sample at (x, y) lives at Samples[y*Width+x]. Every sample is at most
// Maxval. Transforms never modify a Grid in place; they return a new one.
type Grid struct {
	// Width is the number of columns.
	Width int `json:"width"`

	// Height is the number of rows.
	Height int `json:"height"`

	// Maxval is the declared intensity ceiling. It selects the bit depth:
	// values below 256 are 8-bit, everything else is 16-bit.
	Maxval int `json:"maxval"`

	// Samples holds Width*Height intensities.
	Samples []uint16 `json:"-"`
}

// NewGrid allocates a zero-filled grid.
func NewGrid(width, height, maxval int) *Grid {
	return &Grid{
		Width:   width,
		Height:  height,
		Maxval:  maxval,
		Samples: make([]uint16, width*height),
	}
}

// Depth reports whether the grid holds 8-bit or 16-bit samples.
func (g *Grid) Depth() Depth {
	if g.Maxval < 256 {
		return Depth8
	}
	return Depth16
}

// Ceiling is the intensity that maps to full white for point transforms:
// 255 for 8-bit grids, Maxval for 16-bit grids.
func (g *Grid) Ceiling() int {
	if g.Depth() == Depth8 {
		return 255
	}
	return g.Maxval
}

// At returns the sample at (x, y). It panics if the coordinates are out of range.
func (g *Grid) At(x, y int) uint16 {
	return g.Samples[y*g.Width+x]
}

// Set stores v at (x, y).
func (g *Grid) Set(x, y int, v uint16) {
	g.Samples[y*g.Width+x] = v
}

// Level8 returns sample i as an 8-bit intensity. 8-bit samples are returned
// as is (saturated at 255); 16-bit samples are rescaled from 0..Maxval.
func (g *Grid) Level8(i int) uint8 {
	s := g.Samples[i]
	if g.Depth() == Depth8 {
		return saturate8(int(s))
	}
	return uint8(int(s) * 255 / g.Maxval)
}

// Validate checks the structural invariants of the grid.
func (g *Grid) Validate() error {
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("invalid grid dimensions %dx%d", g.Width, g.Height)
	}
	if g.Maxval <= 0 || g.Maxval > MaxMaxval {
		return fmt.Errorf("invalid grid maxval %d", g.Maxval)
	}
	if len(g.Samples) != g.Width*g.Height {
		return fmt.Errorf("grid has %d samples, want %d", len(g.Samples), g.Width*g.Height)
	}
	for i, s := range g.Samples {
		if int(s) > g.Maxval {
			return fmt.Errorf("sample %d (%d) exceeds maxval %d", i, s, g.Maxval)
		}
	}
	return nil
}

// Image returns an 8-bit image.Gray view of the grid, suitable for the
// standard library encoders and third-party image filters.
func (g *Grid) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+g.Width]
		for x := range row {
			row[x] = g.Level8(y*g.Width + x)
		}
	}
	return img
}

func saturate8(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
