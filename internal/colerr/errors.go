// Package colerr defines the structured error kinds the indexing engine can
// raise, mirroring the fmt.Errorf("...: %w", err) wrapping idiom used
// throughout csvquery's indexer and sorter packages.
package colerr

import (
	"errors"
	"fmt"
)

// IoError wraps a failure to open, stat, or memory-map a source file.
type IoError struct {
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("colidx: io error on %q: %v", e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// NewIoError builds an IoError, returning nil if err is nil.
func NewIoError(path string, err error) error {
	if err == nil {
		return nil
	}
	return &IoError{Path: path, Err: err}
}

// MalformedInput signals that a source's bytes could not be parsed under the
// active dialect, e.g. a quoted field left open at EOF.
type MalformedInput struct {
	Path   string
	Offset int64
	Reason string
}

func (e *MalformedInput) Error() string {
	return fmt.Sprintf("colidx: malformed input in %q at offset %d: %s", e.Path, e.Offset, e.Reason)
}

// SchemaMismatch signals that two sources (or a row and its header)
// disagree on column count.
type SchemaMismatch struct {
	Path     string
	Expected int
	Got      int
}

func (e *SchemaMismatch) Error() string {
	return fmt.Sprintf("colidx: schema mismatch in %q: expected %d columns, got %d", e.Path, e.Expected, e.Got)
}

// Cancelled wraps context.Canceled (or a DeadlineExceeded) observed by
// builder.Build after its parallel scan.
type Cancelled struct {
	Err error
}

func (e *Cancelled) Error() string { return fmt.Sprintf("colidx: cancelled: %v", e.Err) }
func (e *Cancelled) Unwrap() error { return e.Err }

// Is reports whether err is (or wraps) one of the sentinel kinds above,
// using the standard errors.As machinery.
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
