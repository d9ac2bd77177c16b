package config

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pgm-tools/internal/ascii"
	"github.com/ironsheep/pgm-tools/internal/imaging"
)

func parse(t *testing.T, args ...string) (*Settings, []string) {
	t.Helper()
	fs := pflag.NewFlagSet("pgmtool", pflag.ContinueOnError)
	s := Bind(fs)
	require.NoError(t, fs.Parse(args))
	return s, fs.Args()
}

func TestBind_Defaults(t *testing.T) {
	s, args := parse(t, "in.pgm", "out.pgm")

	assert.Equal(t, []string{"in.pgm", "out.pgm"}, args)
	assert.False(t, s.ThresholdSet())
	assert.NoError(t, s.Validate())

	opts := s.Options()
	assert.False(t, opts.Invert)
	assert.Nil(t, opts.Threshold)
	assert.False(t, opts.Contrast)
	assert.False(t, opts.Stats)
	assert.False(t, opts.ASCII)
	assert.Equal(t, ascii.DefaultConfig(), opts.ASCIIConfig)
	assert.Empty(t, opts.DecodeOptions)
	assert.Equal(t, 1.0, opts.ExportScale)
}

func TestBind_FlagsAfterPositionals(t *testing.T) {
	s, args := parse(t, "in.pgm", "out.pgm", "--contrast", "--threshold", "40", "--invert", "--stats", "--ascii")

	assert.Equal(t, []string{"in.pgm", "out.pgm"}, args)
	require.NoError(t, s.Validate())

	opts := s.Options()
	assert.True(t, opts.Invert)
	assert.True(t, opts.Contrast)
	assert.True(t, opts.Stats)
	assert.True(t, opts.ASCII)
	require.NotNil(t, opts.Threshold)
	assert.Equal(t, 40, *opts.Threshold)
}

func TestBind_ThresholdZeroIsPresent(t *testing.T) {
	s, _ := parse(t, "--threshold=0", "a", "b")

	assert.True(t, s.ThresholdSet())
	opts := s.Options()
	require.NotNil(t, opts.Threshold)
	assert.Equal(t, 0, *opts.Threshold)
}

func TestBind_Supplements(t *testing.T) {
	s, _ := parse(t, "a", "b",
		"--ascii-width", "40", "--ramp", "#. ", "--little-endian",
		"--export", "x.png", "--export-scale", "0.5", "--histogram", "h.png")
	require.NoError(t, s.Validate())

	opts := s.Options()
	assert.Equal(t, 40, opts.ASCIIConfig.Width)
	assert.Equal(t, "#. ", opts.ASCIIConfig.Ramp)
	assert.Equal(t, ascii.DefaultCellAspect, opts.ASCIIConfig.CellAspect)
	assert.Len(t, opts.DecodeOptions, 1)
	assert.Equal(t, "x.png", opts.ExportPath)
	assert.Equal(t, 0.5, opts.ExportScale)
	assert.Equal(t, "h.png", opts.HistogramPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		field string
	}{
		{"threshold too high", []string{"--threshold", "256"}, "threshold"},
		{"threshold negative", []string{"--threshold=-1"}, "threshold"},
		{"zero ascii width", []string{"--ascii-width", "0"}, "ascii-width"},
		{"empty ramp", []string{"--ramp", ""}, "ramp"},
		{"negative export scale", []string{"--export-scale=-2"}, "export-scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := parse(t, tt.args...)
			err := s.Validate()

			var ce *imaging.ConfigError
			require.True(t, errors.As(err, &ce), "expected *imaging.ConfigError, got %v", err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestValidate_ThresholdBounds(t *testing.T) {
	for _, v := range []string{"0", "255"} {
		s, _ := parse(t, "--threshold", v)
		assert.NoError(t, s.Validate(), "threshold %s", v)
	}
}

func TestDebugFromEnv(t *testing.T) {
	t.Setenv(LogLevelEnv, "debug")
	assert.True(t, DebugFromEnv())

	t.Setenv(LogLevelEnv, "DEBUG")
	assert.True(t, DebugFromEnv())

	t.Setenv(LogLevelEnv, "info")
	assert.False(t, DebugFromEnv())

	t.Setenv(LogLevelEnv, "")
	assert.False(t, DebugFromEnv())
}

func TestBind_LittleEndianHelp(t *testing.T) {
	fs := pflag.NewFlagSet("pgmtool", pflag.ContinueOnError)
	Bind(fs)

	f := fs.Lookup("little-endian")
	require.NotNil(t, f)
	assert.Contains(t, f.Usage, "host byte order of x86 and arm64")
	assert.Contains(t, f.Usage, "big-endian")
}
