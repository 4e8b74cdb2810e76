package graph

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for a serialization format the codec
// cannot handle in the requested direction.
var ErrUnsupportedFormat = errors.New("unsupported RDF format")

// IOError is a failure to read, parse, serialize or write a graph file.
// It is the only error class that aborts a run.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("graph %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("graph %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsIOFailure reports whether err is or wraps an IOError.
func IsIOFailure(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}
