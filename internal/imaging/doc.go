// Package imaging provides the in-memory grayscale raster and the binary PGM
// (P5) codec used by the rest of pgm-tools.
//
// A Grid stores samples row-major with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Grids decoded from a file
// keep the file's maxval, so 16-bit sources stay 16-bit until a transform or
// the encoder narrows them.
//
// # File Format
//
// Decode accepts the P5 variant of Netpbm's PGM:
//
//	P5
//	# optional comment lines
//	<width> <height>
//	<maxval>
//	<raw samples>
//
// Samples are one byte each when maxval < 256 and two bytes otherwise
// (big-endian unless WithByteOrder says otherwise). Encode always writes
// maxval 255 with one byte per sample, saturating anything larger.
//
// # Error Handling
//
// The codec never prints or exits. Failures come back as one of three types:
//   - *IoError: the filesystem or the underlying stream failed
//   - *FormatError: the bytes were read but are not a valid P5 image
//   - *ConfigError: a caller supplied an unusable setting (renderer or export)
//
// # Thread Safety
//
// GridCache is safe for concurrent use. Grids themselves are plain values and
// must not be mutated while shared.
package imaging
