package pipeline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/ironsheep/pgm-tools/internal/ascii"
	"github.com/ironsheep/pgm-tools/internal/imaging"
	"github.com/ironsheep/pgm-tools/internal/monitoring"
	"github.com/ironsheep/pgm-tools/internal/transform"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Stage names one step of the pipeline.
type Stage string

const (
	StageDecode    Stage = "decode"
	StagePreview   Stage = "preview-ascii"
	StageStats     Stage = "statistics"
	StageInvert    Stage = "invert"
	StageThreshold Stage = "threshold"
	StageContrast  Stage = "contrast-stretch"
	StagePostview  Stage = "postview-ascii"
	StageEncode    Stage = "encode"
	StageExport    Stage = "export"
	StageHistogram Stage = "histogram"
)

// Options selects which optional stages run. Decode and encode always run.
type Options struct {
	// Invert enables the invert stage.
	Invert bool

	// Threshold enables the threshold stage when non-nil; the value is the
	// cutoff, passed through uninterpreted.
	Threshold *int

	// Contrast enables the contrast-stretch stage.
	Contrast bool

	// Stats prints a Statistics report of the decoded image.
	Stats bool

	// ASCII renders a preview before and after the transforms.
	ASCII bool

	// ASCIIConfig controls both previews.
	ASCIIConfig ascii.Config

	// DecodeOptions are passed to the codec.
	DecodeOptions []imaging.DecodeOption

	// ExportPath, when set, writes an extra copy of the result in the
	// format named by its extension.
	ExportPath string

	// ExportScale resizes the exported copy. Zero means 1.0.
	ExportScale float64

	// HistogramPath, when set, writes a captioned histogram image of the result.
	HistogramPath string
}

// DefaultOptions returns options with every optional stage off and the
// standard preview settings.
func DefaultOptions() Options {
	return Options{
		ASCIIConfig: ascii.DefaultConfig(),
		ExportScale: 1.0,
	}
}

// StageError reports the stage at which a run aborted.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result describes a completed run.
type Result struct {
	Input  string  `json:"input"`
	Output string  `json:"output"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Stages []Stage `json:"stages"`

	Statistics *transform.Statistics `json:"statistics,omitempty"`
	Preview    ascii.Art             `json:"preview,omitempty"`
	Postview   ascii.Art             `json:"postview,omitempty"`
	Export     *imaging.ExportResult `json:"export,omitempty"`
}

// Driver runs the fixed stage sequence and reports progress.
//
// Progress lines go to out and failure messages to errOut. Use io.Discard
// for either to silence it.
type Driver struct {
	out    io.Writer
	errOut io.Writer
}

// New creates a Driver writing progress to out and failures to errOut.
func New(out, errOut io.Writer) *Driver {
	return &Driver{out: out, errOut: errOut}
}

// run carries the state of one invocation between stages.
type run struct {
	input  string
	output string
	opts   Options
	grid   *imaging.Grid
	result *Result
}

type step struct {
	stage   Stage
	enabled func(*Options) bool
	apply   func(*Driver, *run) error
}

// sequence is the contract order. Flags only switch steps on or off; they
// never reorder them.
var sequence = []step{
	{StageDecode, nil, (*Driver).decode},
	{StagePreview, func(o *Options) bool { return o.ASCII }, (*Driver).preview},
	{StageStats, func(o *Options) bool { return o.Stats }, (*Driver).stats},
	{StageInvert, func(o *Options) bool { return o.Invert }, (*Driver).invert},
	{StageThreshold, func(o *Options) bool { return o.Threshold != nil }, (*Driver).threshold},
	{StageContrast, func(o *Options) bool { return o.Contrast }, (*Driver).contrast},
	{StagePostview, func(o *Options) bool { return o.ASCII }, (*Driver).postview},
	{StageEncode, nil, (*Driver).encode},
	{StageExport, func(o *Options) bool { return o.ExportPath != "" }, (*Driver).export},
	{StageHistogram, func(o *Options) bool { return o.HistogramPath != "" }, (*Driver).histogram},
}

// Run processes input into output. It stops at the first failing stage and
// returns a *StageError naming it; no later stage runs.
func (d *Driver) Run(input, output string, opts Options) (*Result, error) {
	r := &run{
		input:  input,
		output: output,
		opts:   opts,
		result: &Result{Input: input, Output: output},
	}

	for _, s := range sequence {
		if s.enabled != nil && !s.enabled(&r.opts) {
			continue
		}
		monitoring.Debugf("pipeline: running stage %s", s.stage)
		if err := s.apply(d, r); err != nil {
			monitoring.Debugf("pipeline: stage %s failed: %v", s.stage, err)
			return nil, &StageError{Stage: s.stage, Err: err}
		}
		r.result.Stages = append(r.result.Stages, s.stage)
	}

	r.result.Width = r.grid.Width
	r.result.Height = r.grid.Height
	return r.result, nil
}

// Execute runs the pipeline, prints a message for any failure, and returns
// the process exit code.
//
// Every failure, including a failed save, yields ExitFailure.
func (d *Driver) Execute(input, output string, opts Options) int {
	if _, err := d.Run(input, output, opts); err != nil {
		fmt.Fprintln(d.errOut, Describe(err))
		return ExitFailure
	}
	return ExitOK
}

// Describe turns a pipeline error into the message shown to the user.
func Describe(err error) string {
	var se *StageError
	if !errors.As(err, &se) {
		return fmt.Sprintf("Error: %v", err)
	}

	var (
		ioErr     *imaging.IoError
		formatErr *imaging.FormatError
		configErr *imaging.ConfigError
	)
	switch {
	case se.Stage == StageDecode && errors.Is(err, fs.ErrNotExist):
		return "File does not exist."
	case se.Stage == StageDecode && errors.As(err, &formatErr):
		return fmt.Sprintf("Failed to load image: %v", formatErr)
	case se.Stage == StageDecode && errors.As(err, &ioErr):
		return fmt.Sprintf("Failed to read image: %v", ioErr)
	case se.Stage == StageEncode:
		return fmt.Sprintf("Failed to save image: %v", se.Err)
	case errors.As(err, &configErr):
		return fmt.Sprintf("Failed at %s: %v", se.Stage, configErr)
	default:
		return fmt.Sprintf("Failed at %s: %v", se.Stage, se.Err)
	}
}

func (d *Driver) printf(format string, v ...interface{}) {
	fmt.Fprintf(d.out, format, v...)
}

func (d *Driver) decode(r *run) error {
	d.printf("Loading image: %s\n", r.input)
	g, err := imaging.LoadFile(r.input, r.opts.DecodeOptions...)
	if err != nil {
		return err
	}
	r.grid = g
	d.printf("Image loaded successfully.\n")
	return nil
}

func (d *Driver) preview(r *run) error {
	art, err := ascii.Render(r.grid, r.opts.ASCIIConfig)
	if err != nil {
		return err
	}
	r.result.Preview = art
	d.printf("\nOriginal Image Preview (ASCII):\n%s\n", art)
	return nil
}

func (d *Driver) stats(r *run) error {
	s := transform.Summarize(r.grid)
	r.result.Statistics = s
	d.printf("\n")
	return s.Write(d.out)
}

func (d *Driver) invert(r *run) error {
	r.grid = transform.Invert(r.grid)
	d.printf("Inversion applied.\n")
	return nil
}

func (d *Driver) threshold(r *run) error {
	cutoff := *r.opts.Threshold
	r.grid = transform.Threshold(r.grid, cutoff)
	d.printf("Thresholding applied at %d.\n", cutoff)
	return nil
}

func (d *Driver) contrast(r *run) error {
	r.grid = transform.ContrastStretch(r.grid)
	d.printf("Contrast stretching applied.\n")
	return nil
}

func (d *Driver) postview(r *run) error {
	art, err := ascii.Render(r.grid, r.opts.ASCIIConfig)
	if err != nil {
		return err
	}
	r.result.Postview = art
	d.printf("\nProcessed Image Preview (ASCII):\n%s\n", art)
	return nil
}

func (d *Driver) encode(r *run) error {
	if err := imaging.SaveFile(r.output, r.grid); err != nil {
		return err
	}
	d.printf("Image saved to %s\n", r.output)
	return nil
}

func (d *Driver) export(r *run) error {
	scale := r.opts.ExportScale
	if scale == 0 {
		scale = 1.0
	}
	res, err := imaging.Export(r.grid, r.opts.ExportPath, scale)
	if err != nil {
		return err
	}
	r.result.Export = res
	d.printf("Exported %dx%d copy to %s\n", res.Width, res.Height, res.Path)
	return nil
}

func (d *Driver) histogram(r *run) error {
	img := transform.HistogramImage(r.grid)
	if err := imaging.SaveImage(img, r.opts.HistogramPath); err != nil {
		return err
	}
	d.printf("Histogram saved to %s\n", r.opts.HistogramPath)
	return nil
}
