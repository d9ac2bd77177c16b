// Package config binds pgmtool's command-line flags and environment onto
// pipeline options.
package config

import (
	"encoding/binary"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ironsheep/pgm-tools/internal/ascii"
	"github.com/ironsheep/pgm-tools/internal/imaging"
	"github.com/ironsheep/pgm-tools/internal/pipeline"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// LogLevelEnv names the environment variable that selects log verbosity.
const LogLevelEnv = "PGMTOOL_LOG_LEVEL"

// Settings holds every user-adjustable knob of a pgmtool run.
type Settings struct {
	Invert    bool
	Threshold int
	Contrast  bool
	Stats     bool
	ASCII     bool

	ASCIIWidth   int
	Ramp         string
	LittleEndian bool

	ExportPath    string
	ExportScale   float64
	HistogramPath string

	// thresholdSet records whether --threshold appeared; the zero value is
	// a legitimate cutoff.
	thresholdSet func() bool
}

// Bind registers the pgmtool flags on fs and returns the Settings they fill.
func Bind(fs *pflag.FlagSet) *Settings {
	s := &Settings{}
	fs.BoolVar(&s.Invert, "invert", false, "apply inversion")
	fs.IntVar(&s.Threshold, "threshold", 0, "apply thresholding at value (0-255)")
	fs.BoolVar(&s.Contrast, "contrast", false, "apply contrast stretching")
	fs.BoolVar(&s.Stats, "stats", false, "show image statistics")
	fs.BoolVar(&s.ASCII, "ascii", false, "show ASCII preview before and after processing")

	fs.IntVar(&s.ASCIIWidth, "ascii-width", ascii.DefaultWidth, "ASCII preview width in characters")
	fs.StringVar(&s.Ramp, "ramp", ascii.DefaultRamp, "ASCII ramp, darkest character first")
	fs.BoolVar(&s.LittleEndian, "little-endian", false, "read 16-bit samples as little-endian, the host byte order of x86 and arm64 (default is big-endian, as Netpbm writes)")

	fs.StringVar(&s.ExportPath, "export", "", "also write the result as png, jpg, gif, tif or bmp")
	fs.Float64Var(&s.ExportScale, "export-scale", 1.0, "scale factor for --export")
	fs.StringVar(&s.HistogramPath, "histogram", "", "write a histogram image of the result")

	s.thresholdSet = func() bool { return fs.Changed("threshold") }
	return s
}

// ThresholdSet reports whether --threshold was given.
func (s *Settings) ThresholdSet() bool {
	return s.thresholdSet != nil && s.thresholdSet()
}

// Validate checks flag values that the pipeline itself passes through.
func (s *Settings) Validate() error {
	if s.ThresholdSet() && (s.Threshold < 0 || s.Threshold > 255) {
		return &imaging.ConfigError{Field: "threshold", Reason: fmt.Sprintf("%d is outside 0-255", s.Threshold)}
	}
	if s.ASCIIWidth <= 0 {
		return &imaging.ConfigError{Field: "ascii-width", Reason: "must be positive"}
	}
	if s.Ramp == "" {
		return &imaging.ConfigError{Field: "ramp", Reason: "must not be empty"}
	}
	if s.ExportScale <= 0 {
		return &imaging.ConfigError{Field: "export-scale", Reason: "must be positive"}
	}
	return nil
}

// Options converts the settings to pipeline options.
func (s *Settings) Options() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Invert = s.Invert
	opts.Contrast = s.Contrast
	opts.Stats = s.Stats
	opts.ASCII = s.ASCII
	if s.ThresholdSet() {
		cutoff := s.Threshold
		opts.Threshold = &cutoff
	}

	opts.ASCIIConfig.Width = s.ASCIIWidth
	opts.ASCIIConfig.Ramp = s.Ramp
	if s.LittleEndian {
		opts.DecodeOptions = append(opts.DecodeOptions, imaging.WithByteOrder(binary.LittleEndian))
	}

	opts.ExportPath = s.ExportPath
	opts.ExportScale = s.ExportScale
	opts.HistogramPath = s.HistogramPath
	return opts
}

// DebugFromEnv reports whether PGMTOOL_LOG_LEVEL asks for debug output.
func DebugFromEnv() bool {
	return strings.EqualFold(os.Getenv(LogLevelEnv), "debug")
}
