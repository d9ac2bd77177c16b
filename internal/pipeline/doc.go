// Package pipeline drives one pgmtool run: decode, the optional preview,
// statistics and transform stages, encode, and the optional exports.
//
// # Stage Order
//
// The order is fixed and independent of how options were supplied:
//
//	decode -> [preview-ascii] -> [statistics] -> [invert] -> [threshold]
//	       -> [contrast-stretch] -> [postview-ascii] -> encode
//	       -> [export] -> [histogram]
//
// Each stage either succeeds or aborts the run; the error comes back as a
// *StageError naming the stage. The Driver is the only layer that prints
// failures and picks an exit code.
package pipeline
