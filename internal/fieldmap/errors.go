package fieldmap

import (
	"errors"
	"fmt"
)

// Error categories for table loading. Every typed error below matches one
// of these through errors.Is.
var (
	// ErrResource indicates the table file could not be opened or read.
	ErrResource = errors.New("fieldmap: table file unreadable")

	// ErrHeaderFormat indicates the dimension line or header block is unusable.
	ErrHeaderFormat = errors.New("fieldmap: header information not usable")

	// ErrRowShape indicates a data row does not match the header.
	ErrRowShape = errors.New("fieldmap: data row does not match header")
)

// eolHint is appended to header errors; stray carriage returns from files
// written on Windows are the usual cause.
const eolHint = "this can be triggered by mismatched linux/windows end-of-line characters; try converting the file with dos2unix"

// ResourceError reports a table file that cannot be opened or read.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("field table %s cannot be read: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

func (e *ResourceError) Is(target error) bool { return target == ErrResource }

// HeaderFormatError reports an unusable dimension line or header block.
type HeaderFormatError struct {
	Path   string
	LineNo int    // 0 when the problem is not tied to one line
	Line   string // offending line, if any
	Reason string
}

func (e *HeaderFormatError) Error() string {
	if e.LineNo > 0 {
		return fmt.Sprintf("header information was not usable from field table %s: %s on line %d: %q (%s)",
			e.Path, e.Reason, e.LineNo, e.Line, eolHint)
	}
	return fmt.Sprintf("header information was not usable from field table %s: %s", e.Path, e.Reason)
}

func (e *HeaderFormatError) Is(target error) bool { return target == ErrHeaderFormat }

// RowShapeError reports a data row that does not fit the declared header.
type RowShapeError struct {
	Path   string
	LineNo int
	Got    int // columns found, or rows found when LineNo is 0
	Want   int
	Reason string
	Err    error // underlying parse error, if any
}

func (e *RowShapeError) Error() string {
	msg := fmt.Sprintf("field table %s: %s", e.Path, e.Reason)
	if e.LineNo > 0 {
		msg = fmt.Sprintf("field table %s line %d: %s", e.Path, e.LineNo, e.Reason)
	}
	if e.Want > 0 {
		msg += fmt.Sprintf(" (got %d, want %d)", e.Got, e.Want)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RowShapeError) Unwrap() error { return e.Err }

func (e *RowShapeError) Is(target error) bool { return target == ErrRowShape }
