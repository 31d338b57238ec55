package pdfannot

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorKind classifies a SerializeError the way the driver's callers need
// to distinguish: bad input PDF, bad page targeting, or (reserved) I/O.
type ErrorKind int

const (
	// InvalidPdf covers both "the parser rejects the input" and "byte
	// level splicing could not find an expected marker" — the driver
	// escalates unexpected internal failures to this kind rather than
	// exposing them as distinct error values.
	InvalidPdf ErrorKind = iota
	// InvalidPageIndex means an annotation targets a page index that
	// does not exist in the input document.
	InvalidPageIndex
	// InvalidDestinationPage means a Link's dest_page is out of range.
	InvalidDestinationPage
	// IoError is reserved for optional streaming wrappers; the in-memory
	// driver in this package never produces it.
	IoError
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidPdf:
		return "InvalidPdf"
	case InvalidPageIndex:
		return "InvalidPageIndex"
	case InvalidDestinationPage:
		return "InvalidDestinationPage"
	case IoError:
		return "IoError"
	default:
		return "Unknown"
	}
}

// SerializeError is the error type returned by Serialize. Index is the
// offending page or destination index for the two page-targeting kinds
// and is unused otherwise.
type SerializeError struct {
	Kind  ErrorKind
	Index int
	Err   error
}

func (e *SerializeError) Error() string {
	switch e.Kind {
	case InvalidPageIndex:
		return fmt.Sprintf("invalid page index %d", e.Index)
	case InvalidDestinationPage:
		return fmt.Sprintf("invalid destination page %d", e.Index)
	case IoError:
		return fmt.Sprintf("io error: %v", e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("invalid pdf: %v", e.Err)
		}
		return "invalid pdf"
	}
}

func (e *SerializeError) Unwrap() error { return e.Err }

// errInvalidPdf wraps an error surfaced from the parser or splicer at the
// driver's entry points with errors.WithStack, so a %+v on the returned
// SerializeError's Err prints the call stack that first saw the failure,
// not just the point where it was finally returned to the caller.
func errInvalidPdf(err error) *SerializeError {
	if err != nil {
		err = errors.WithStack(err)
	}
	return &SerializeError{Kind: InvalidPdf, Err: err}
}

func errInvalidPdff(format string, args ...interface{}) *SerializeError {
	return errInvalidPdf(errors.Errorf(format, args...))
}

func errInvalidPageIndex(i int) *SerializeError {
	return &SerializeError{Kind: InvalidPageIndex, Index: i}
}

func errInvalidDestinationPage(i int) *SerializeError {
	return &SerializeError{Kind: InvalidDestinationPage, Index: i}
}
