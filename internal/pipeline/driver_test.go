package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pgm-tools/internal/imaging"
)

// writeInput writes an 8-bit P5 file with the given row-major samples.
func writeInput(t *testing.T, width, height int, samples ...uint16) string {
	t.Helper()
	g := &imaging.Grid{Width: width, Height: height, Maxval: 255, Samples: samples}
	path := filepath.Join(t.TempDir(), "in.pgm")
	require.NoError(t, imaging.SaveFile(path, g))
	return path
}

func readOutput(t *testing.T, path string) []uint16 {
	t.Helper()
	g, err := imaging.LoadFile(path)
	require.NoError(t, err)
	return g.Samples
}

func intPtr(v int) *int { return &v }

func newTestDriver() (*Driver, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return New(&out, &errOut), &out, &errOut
}

func TestRun_DecodeEncodeOnly(t *testing.T) {
	in := writeInput(t, 2, 2, 0, 64, 128, 255)
	out := filepath.Join(t.TempDir(), "out.pgm")
	d, stdout, _ := newTestDriver()

	res, err := d.Run(in, out, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageDecode, StageEncode}, res.Stages)
	assert.Equal(t, 2, res.Width)
	assert.Equal(t, 2, res.Height)
	assert.Equal(t, []uint16{0, 64, 128, 255}, readOutput(t, out))
	assert.Contains(t, stdout.String(), "Image loaded successfully.")
	assert.Contains(t, stdout.String(), "Image saved to "+out)
}

func TestRun_StageOrder(t *testing.T) {
	in := writeInput(t, 4, 1, 0, 100, 200, 255)
	out := filepath.Join(t.TempDir(), "out.pgm")
	d, _, _ := newTestDriver()

	opts := DefaultOptions()
	opts.Contrast = true
	opts.Threshold = intPtr(100)
	opts.Invert = true
	opts.Stats = true

	res, err := d.Run(in, out, opts)
	require.NoError(t, err)

	want := []Stage{StageDecode, StageStats, StageInvert, StageThreshold, StageContrast, StageEncode}
	if diff := cmp.Diff(want, res.Stages); diff != "" {
		t.Errorf("stage order mismatch (-want +got):\n%s", diff)
	}

	// invert: 255 155 55 0; threshold 100: 255 255 0 0; stretch keeps 0..255
	assert.Equal(t, []uint16{255, 255, 0, 0}, readOutput(t, out))
}

func TestRun_StatisticsSeeDecodedImage(t *testing.T) {
	in := writeInput(t, 2, 2, 0, 255, 255, 0)
	out := filepath.Join(t.TempDir(), "out.pgm")
	d, stdout, _ := newTestDriver()

	opts := DefaultOptions()
	opts.Stats = true
	opts.Invert = true

	res, err := d.Run(in, out, opts)
	require.NoError(t, err)

	require.NotNil(t, res.Statistics)
	assert.InDelta(t, 127.5, res.Statistics.Mean, 1e-9)
	assert.Equal(t, 0, res.Statistics.Min)
	assert.Equal(t, 255, res.Statistics.Max)
	assert.Contains(t, stdout.String(), "Mean brightness: 127.50")
	assert.Equal(t, []uint16{255, 0, 0, 255}, readOutput(t, out))
}

func TestRun_AsciiPreviews(t *testing.T) {
	samples := make([]uint16, 8*8)
	in := writeInput(t, 8, 8, samples...)
	out := filepath.Join(t.TempDir(), "out.pgm")
	d, stdout, _ := newTestDriver()

	opts := DefaultOptions()
	opts.ASCII = true
	opts.Invert = true
	opts.ASCIIConfig.Width = 8

	res, err := d.Run(in, out, opts)
	require.NoError(t, err)

	assert.Equal(t, []Stage{StageDecode, StagePreview, StageInvert, StagePostview, StageEncode}, res.Stages)
	require.NotEmpty(t, res.Preview)
	require.NotEmpty(t, res.Postview)
	assert.Equal(t, "@@@@@@@@", res.Preview[0])
	assert.Equal(t, "        ", res.Postview[0])
	assert.Contains(t, stdout.String(), "Original Image Preview (ASCII):")
	assert.Contains(t, stdout.String(), "Processed Image Preview (ASCII):")
}

func TestRun_ExportAndHistogram(t *testing.T) {
	in := writeInput(t, 4, 2, 0, 10, 20, 30, 40, 50, 60, 70)
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.ExportPath = filepath.Join(dir, "copy.png")
	opts.ExportScale = 2
	opts.HistogramPath = filepath.Join(dir, "hist.png")
	d, _, _ := newTestDriver()

	res, err := d.Run(in, filepath.Join(dir, "out.pgm"), opts)
	require.NoError(t, err)

	require.NotNil(t, res.Export)
	assert.Equal(t, 8, res.Export.Width)
	assert.Equal(t, 4, res.Export.Height)
	assert.FileExists(t, opts.ExportPath)
	assert.FileExists(t, opts.HistogramPath)
	assert.Equal(t, []Stage{StageDecode, StageEncode, StageExport, StageHistogram}, res.Stages)
}

func TestRun_AbortsAtFailingStage(t *testing.T) {
	in := writeInput(t, 1000, 5, make([]uint16, 5000)...)
	out := filepath.Join(t.TempDir(), "out.pgm")
	d, _, _ := newTestDriver()

	opts := DefaultOptions()
	opts.ASCII = true
	opts.Invert = true

	res, err := d.Run(in, out, opts)
	assert.Nil(t, res)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StagePreview, se.Stage)

	var ce *imaging.ConfigError
	assert.ErrorAs(t, err, &ce)

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "no output may be written after an aborted stage")
}

func TestExecute_ExitCodes(t *testing.T) {
	dir := t.TempDir()
	good := writeInput(t, 2, 1, 1, 2)
	bad := filepath.Join(dir, "bad.pgm")
	require.NoError(t, os.WriteFile(bad, []byte("P6\n1 1\n255\n\x00\x00\x00"), 0o644))
	truncated := filepath.Join(dir, "short.pgm")
	require.NoError(t, os.WriteFile(truncated, []byte("P5\n4 4\n255\n\x01"), 0o644))

	tests := []struct {
		name    string
		input   string
		output  string
		opts    Options
		code    int
		message string
	}{
		{"success", good, filepath.Join(dir, "ok.pgm"), DefaultOptions(), ExitOK, ""},
		{"missing input", filepath.Join(dir, "missing.pgm"), filepath.Join(dir, "o1.pgm"), DefaultOptions(), ExitFailure, "File does not exist."},
		{"wrong magic", bad, filepath.Join(dir, "o2.pgm"), DefaultOptions(), ExitFailure, "Failed to load image: invalid PGM: unsupported magic"},
		{"truncated pixels", truncated, filepath.Join(dir, "o3.pgm"), DefaultOptions(), ExitFailure, "truncated pixel data"},
		{"unwritable output", good, filepath.Join(dir, "no-such-dir", "o4.pgm"), DefaultOptions(), ExitFailure, "Failed to save image:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _, errOut := newTestDriver()

			code := d.Execute(tt.input, tt.output, tt.opts)

			assert.Equal(t, tt.code, code)
			if tt.message == "" {
				assert.Empty(t, errOut.String())
			} else {
				assert.Contains(t, errOut.String(), tt.message)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"plain error", errors.New("boom"), "Error: boom"},
		{"config error", &StageError{Stage: StagePostview, Err: &imaging.ConfigError{Field: "ramp", Reason: "must not be empty"}}, "Failed at postview-ascii: invalid configuration: ramp: must not be empty"},
		{"decode io error", &StageError{Stage: StageDecode, Err: &imaging.IoError{Op: "read", Path: "x.pgm", Err: errors.New("EIO")}}, "Failed to read image: read x.pgm: EIO"},
		{"export failure", &StageError{Stage: StageExport, Err: errors.New("disk full")}, "Failed at export: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}

func TestStageError(t *testing.T) {
	inner := &imaging.FormatError{Reason: "unsupported magic"}
	err := &StageError{Stage: StageDecode, Err: inner}

	assert.True(t, strings.HasPrefix(err.Error(), "decode: "))
	assert.ErrorIs(t, err, inner)
}
