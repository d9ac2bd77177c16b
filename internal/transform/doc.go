// Package transform implements the point-wise pixel transforms and the
// statistics summary applied by the pgmtool pipeline.
//
// Every function here is pure: it reads an *imaging.Grid and returns a new
// one (or a Statistics value) without touching its input. Width and height
// are always preserved.
package transform
