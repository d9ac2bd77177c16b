package transform

import (
	"fmt"
	"io"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/pgm-tools/internal/imaging"
)

// Statistics summarizes the intensity distribution of a grid.
type Statistics struct {
	// Width is the grid width in pixels.
	Width int `json:"width"`

	// Height is the grid height in pixels.
	Height int `json:"height"`

	// Mean is the arithmetic mean of all samples.
	Mean float64 `json:"mean"`

	// StdDev is the population standard deviation of all samples.
	StdDev float64 `json:"stddev"`

	// Min is the smallest sample.
	Min int `json:"min"`

	// Max is the largest sample.
	Max int `json:"max"`

	// Median is the lower median of the 8-bit levels.
	Median int `json:"median"`

	// MeanLightness is the CIE L* (0-100) of a gray at the mean intensity.
	MeanLightness float64 `json:"mean_lightness"`
}

// Summarize computes Statistics over every sample of g. The grid is not modified.
func Summarize(g *imaging.Grid) *Statistics {
	xs := make([]float64, len(g.Samples))
	for i, s := range g.Samples {
		xs[i] = float64(s)
	}

	mean, std := stat.PopMeanStdDev(xs, nil)

	return &Statistics{
		Width:         g.Width,
		Height:        g.Height,
		Mean:          mean,
		StdDev:        std,
		Min:           int(floats.Min(xs)),
		Max:           int(floats.Max(xs)),
		Median:        lowerMedian(Histogram(g), len(g.Samples)),
		MeanLightness: lightness(mean / float64(g.Ceiling())),
	}
}

// Write prints the report in the CLI's fixed layout.
func (s *Statistics) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"Image Statistics\n"+
			"Dimensions: %d x %d\n"+
			"Mean brightness: %.2f\n"+
			"Standard deviation: %.2f\n"+
			"Min pixel: %d\n"+
			"Max pixel: %d\n"+
			"Median pixel: %d\n"+
			"Mean lightness (L*): %.2f\n",
		s.Width, s.Height, s.Mean, s.StdDev, s.Min, s.Max, s.Median, s.MeanLightness)
	return err
}

// lowerMedian returns the first level whose cumulative count reaches half
// of n.
func lowerMedian(h *histogram.Histogram, n int) int {
	cum := h.Cumulative()
	for level, c := range cum.Bins {
		if 2*c >= n {
			return level
		}
	}
	return len(cum.Bins) - 1
}

// lightness converts a normalized gray (0..1) to CIE L* on a 0-100 scale.
func lightness(gray float64) float64 {
	gray = min(max(gray, 0), 1)
	l, _, _ := colorful.Color{R: gray, G: gray, B: gray}.Lab()
	return l * 100
}
