// Package ascii renders grayscale grids as low-resolution text previews.
//
// Rendering is strided subsampling: every y-th row and x-th column of the
// source is kept and mapped onto a character ramp. Nothing is averaged, so
// fine detail between sampled pixels is lost.
package ascii

import (
	"strings"

	"github.com/ironsheep/pgm-tools/internal/imaging"
)

const (
	// DefaultWidth is the preview width in characters.
	DefaultWidth = 80

	// DefaultRamp orders characters from densest (black) to sparsest (white).
	DefaultRamp = "@%#*+=-:. "

	// DefaultCellAspect compensates for terminal cells being taller than
	// they are wide.
	DefaultCellAspect = 0.55
)

// Config controls the preview geometry and character set.
type Config struct {
	// Width is the target number of characters per line.
	Width int

	// Ramp maps 8-bit levels to characters, darkest first.
	Ramp string

	// CellAspect scales the row count to correct for cell shape.
	CellAspect float64
}

// DefaultConfig returns the standard 80-column preview settings.
func DefaultConfig() Config {
	return Config{
		Width:      DefaultWidth,
		Ramp:       DefaultRamp,
		CellAspect: DefaultCellAspect,
	}
}

// Art is a rendered preview, one string per sampled row.
type Art []string

// String joins the rows with trailing newlines.
func (a Art) String() string {
	var b strings.Builder
	for _, line := range a {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// Render samples g onto cfg.Ramp.
//
// The number of rows aimed for is floor(height/width * cfg.Width *
// cfg.CellAspect). Columns are taken every max(1, width/cfg.Width) pixels
// and rows every max(1, height/rows) pixels; each sampled 8-bit level v
// becomes ramp[v*len(ramp)/256].
//
// # Errors
//
// Returns *imaging.ConfigError when cfg.Width is not positive, the ramp is
// empty, the cell aspect is not positive, or the image is so wide relative
// to its height that zero rows would be produced.
func Render(g *imaging.Grid, cfg Config) (Art, error) {
	if cfg.Width <= 0 {
		return nil, &imaging.ConfigError{Field: "width", Reason: "must be positive"}
	}
	ramp := []rune(cfg.Ramp)
	if len(ramp) == 0 {
		return nil, &imaging.ConfigError{Field: "ramp", Reason: "must not be empty"}
	}
	if cfg.CellAspect <= 0 {
		return nil, &imaging.ConfigError{Field: "cell aspect", Reason: "must be positive"}
	}
	if g.Width <= 0 || g.Height <= 0 {
		return nil, &imaging.FormatError{Reason: "zero-width image"}
	}

	aspect := float64(g.Height) / float64(g.Width)
	targetHeight := int(aspect * float64(cfg.Width) * cfg.CellAspect)
	if targetHeight <= 0 {
		return nil, &imaging.ConfigError{Field: "width", Reason: "image too wide to render any rows"}
	}

	xStep := max(1, g.Width/cfg.Width)
	yStep := max(1, g.Height/targetHeight)

	art := make(Art, 0, (g.Height+yStep-1)/yStep)
	line := make([]rune, 0, (g.Width+xStep-1)/xStep)
	for y := 0; y < g.Height; y += yStep {
		line = line[:0]
		for x := 0; x < g.Width; x += xStep {
			v := int(g.Level8(y*g.Width + x))
			line = append(line, ramp[v*len(ramp)/256])
		}
		art = append(art, string(line))
	}
	return art, nil
}
