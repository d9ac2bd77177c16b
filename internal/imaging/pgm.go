package imaging

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"strconv"

	pnm "github.com/jbuchbinder/gopnm"
)

// Magic is the two-byte tag that opens every binary PGM stream.
const Magic = "P5"

// Header is the textual preamble of a P5 stream.
type Header struct {
	Magic  string `json:"magic"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Maxval int    `json:"maxval"`
}

// Depth reports the sample size implied by the header's maxval.
func (h *Header) Depth() Depth {
	if h.Maxval < 256 {
		return Depth8
	}
	return Depth16
}

// PixelBytes is the number of raw bytes that must follow the header.
func (h *Header) PixelBytes() int {
	n := h.Width * h.Height
	if h.Depth() == Depth16 {
		n *= 2
	}
	return n
}

type decodeConfig struct {
	byteOrder binary.ByteOrder
}

var defaultDecodeConfig = decodeConfig{
	byteOrder: binary.BigEndian,
}

// DecodeOption sets an optional parameter for Decode and LoadFile.
type DecodeOption func(*decodeConfig)

// WithByteOrder selects how two-byte samples are assembled when maxval is
// 256 or more. The default is big-endian, as written by Netpbm tools.
func WithByteOrder(order binary.ByteOrder) DecodeOption {
	return func(c *decodeConfig) {
		if order != nil {
			c.byteOrder = order
		}
	}
}

// ReadHeader parses the P5 header from r and stops right after the maxval
// line terminator.
//
// The grammar is line oriented:
//  1. a magic line that must read exactly "P5"
//  2. any number of lines starting with '#', skipped without inspection
//  3. a line holding two decimal integers: width and height
//  4. a line holding one decimal integer: maxval (1..65535)
//
// Callers that go on to read pixel data must pass a *bufio.Reader, since
// ReadHeader buffers whatever r yields.
func ReadHeader(r io.Reader) (*Header, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return readHeader(br)
}

func readHeader(br *bufio.Reader) (*Header, error) {
	line, err := readLine(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, formatErr("unsupported magic")
		}
		return nil, err
	}
	if string(bytes.TrimSpace(line)) != Magic {
		return nil, formatErr("unsupported magic")
	}

	for {
		line, err = readLine(br)
		if err != nil {
			return nil, headerErr(err)
		}
		if len(line) == 0 || line[0] != '#' {
			break
		}
	}

	width, height, err := parseDimensions(line)
	if err != nil {
		return nil, err
	}

	line, err = readLine(br)
	if err != nil {
		return nil, headerErr(err)
	}
	maxval, err := parseMaxval(line)
	if err != nil {
		return nil, err
	}

	return &Header{Magic: Magic, Width: width, Height: height, Maxval: maxval}, nil
}

func parseDimensions(line []byte) (int, int, error) {
	fields := bytes.Fields(line)
	if len(fields) != 2 {
		return 0, 0, formatErr("invalid dimensions")
	}
	width, err := strconv.Atoi(string(fields[0]))
	if err != nil || width < 0 {
		return 0, 0, formatErr("invalid dimensions")
	}
	height, err := strconv.Atoi(string(fields[1]))
	if err != nil || height < 0 {
		return 0, 0, formatErr("invalid dimensions")
	}
	if width == 0 {
		return 0, 0, formatErr("zero-width image")
	}
	if height == 0 {
		return 0, 0, formatErr("zero-height image")
	}
	// width*height*2 must fit in an int
	if width > math.MaxInt32 || height > math.MaxInt32/2/width {
		return 0, 0, formatErr("invalid dimensions")
	}
	return width, height, nil
}

func parseMaxval(line []byte) (int, error) {
	fields := bytes.Fields(line)
	if len(fields) != 1 {
		return 0, formatErr("invalid maxval")
	}
	maxval, err := strconv.Atoi(string(fields[0]))
	if err != nil || maxval <= 0 || maxval > MaxMaxval {
		return 0, formatErr("invalid maxval")
	}
	return maxval, nil
}

// readLine returns the next line without its terminator. A final line with
// no terminator is returned with a nil error; io.EOF is only returned when
// nothing is left.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return bytes.TrimRight(line, "\r"), nil
		}
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &IoError{Op: "read", Err: err}
	}
	return bytes.TrimRight(line[:len(line)-1], "\r"), nil
}

func headerErr(err error) error {
	if errors.Is(err, io.EOF) {
		return formatErr("truncated header")
	}
	return err
}

// Decode reads a binary PGM (P5) stream into a Grid.
//
// Exactly Width*Height samples are read right after the maxval line; bytes
// beyond that are left unread. Samples are one byte wide when maxval is
// below 256 and two bytes wide otherwise.
//
// # Errors
//
//   - *FormatError for header grammar violations, a zero width or height,
//     fewer pixel bytes than the header implies, or a sample above maxval
//   - *IoError when the underlying reader fails
func Decode(r io.Reader, opts ...DecodeOption) (*Grid, error) {
	cfg := defaultDecodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	hdr, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	// ReadAll grows as data arrives, so a header that lies about its size
	// does not force a huge up-front allocation.
	need := hdr.PixelBytes()
	data, err := io.ReadAll(io.LimitReader(br, int64(need)))
	if err != nil {
		return nil, &IoError{Op: "read", Err: err}
	}
	if len(data) < need {
		return nil, formatErr("truncated pixel data")
	}

	g := &Grid{Width: hdr.Width, Height: hdr.Height, Maxval: hdr.Maxval}
	g.Samples = make([]uint16, hdr.Width*hdr.Height)
	if hdr.Depth() == Depth8 {
		for i, b := range data {
			g.Samples[i] = uint16(b)
		}
	} else {
		for i := range g.Samples {
			g.Samples[i] = cfg.byteOrder.Uint16(data[2*i:])
		}
	}

	for _, s := range g.Samples {
		if int(s) > g.Maxval {
			return nil, formatErr("sample exceeds maxval")
		}
	}

	return g, nil
}

// Encode writes g to w as an 8-bit P5 stream.
//
// The output always declares maxval 255, whatever the grid's depth. Samples
// of 16-bit grids are saturated to 255; nothing follows the last pixel byte.
// Grids that fail Validate are rejected before anything is written.
func Encode(w io.Writer, g *Grid) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("cannot encode: %w", err)
	}

	if err := pnm.Encode(w, saturatedImage(g), pnm.PGM); err != nil {
		return &IoError{Op: "write", Err: err}
	}
	return nil
}

// saturatedImage clamps every sample to 0..255 without rescaling, unlike
// Grid.Image which maps 16-bit samples onto the full 8-bit range.
func saturatedImage(g *Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+g.Width]
		for x := range row {
			row[x] = saturate8(int(g.Samples[y*g.Width+x]))
		}
	}
	return img
}
