package transform

import (
	"github.com/ironsheep/pgm-tools/internal/imaging"
)

// Invert maps every sample s to ceiling - s, where ceiling is 255 for 8-bit
// grids and the declared maxval for 16-bit grids.
//
// The result always declares the ceiling as its maxval, so an 8-bit source
// with maxval 100 becomes a 0..255 grid. Applying Invert twice restores the
// original samples.
func Invert(g *imaging.Grid) *imaging.Grid {
	ceiling := g.Ceiling()
	out := imaging.NewGrid(g.Width, g.Height, ceiling)
	for i, s := range g.Samples {
		out.Samples[i] = uint16(ceiling - int(s))
	}
	return out
}

// Threshold binarizes g: samples at or above cutoff become 255, all others 0.
//
// cutoff is compared as a plain integer and is not range-checked, so a
// negative cutoff yields an all-white grid and one above the grid's ceiling
// an all-black grid.
func Threshold(g *imaging.Grid, cutoff int) *imaging.Grid {
	out := imaging.NewGrid(g.Width, g.Height, 255)
	for i, s := range g.Samples {
		if int(s) >= cutoff {
			out.Samples[i] = 255
		}
	}
	return out
}

// ContrastStretch linearly rescales g so its darkest sample becomes 0 and its
// brightest 255.
//
// Each sample maps to (s-lo)*255/(hi-lo) with the fraction truncated toward
// zero. A flat grid (hi == lo) has no range to stretch and maps to all zeros.
func ContrastStretch(g *imaging.Grid) *imaging.Grid {
	out := imaging.NewGrid(g.Width, g.Height, 255)
	lo, hi := extrema(g.Samples)
	if hi == lo {
		return out
	}

	span := float64(hi - lo)
	for i, s := range g.Samples {
		out.Samples[i] = uint16(float64(s-lo) * 255.0 / span)
	}
	return out
}

func extrema(samples []uint16) (lo, hi uint16) {
	if len(samples) == 0 {
		return 0, 0
	}
	lo, hi = samples[0], samples[0]
	for _, s := range samples[1:] {
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	return lo, hi
}
