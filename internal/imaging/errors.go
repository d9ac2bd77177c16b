package imaging

import "fmt"

// IoError reports a filesystem-level failure: a missing file, a permission
// problem, or a read/write that failed below the format layer.
//
// IoError unwraps to the underlying error, so errors.Is(err, fs.ErrNotExist)
// identifies a missing input file.
type IoError struct {
	Op   string // "open", "create", "read", "write", "close"
	Path string // may be empty for stream operations
	Err  error
}

func (e *IoError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// FormatError reports a byte stream that was read successfully but does not
// follow the P5 grammar: bad magic, malformed header fields, or too few
// pixel bytes.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid PGM: " + e.Reason
}

// ConfigError reports an invalid renderer or pipeline configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Reason
	}
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func formatErr(reason string) error {
	return &FormatError{Reason: reason}
}
