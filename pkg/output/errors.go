package output

import (
	"errors"
	"fmt"
)

var (
	// ErrNotStarted is returned when the report does not show that the
	// simulation started.
	ErrNotStarted = errors.New("the simulation did not start")
	// ErrTimeout is returned when the simulation started but the report has
	// no final line, usually because the wall time was exceeded.
	ErrTimeout = errors.New("the simulation did not finish")
	// ErrNoOutputFile is returned when a system has no report in the
	// retrieved folder.
	ErrNoOutputFile = errors.New("no output file")
)

// MalformedOutputError is returned when a zone marker of the report is
// never reached.
type MalformedOutputError struct {
	Marker string
	Detail string
}

func (e *MalformedOutputError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("malformed output: %q: %s", e.Marker, e.Detail)
	}
	return fmt.Sprintf("malformed output: %q not found", e.Marker)
}
