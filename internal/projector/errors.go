package projector

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrResolutionFailed is wrapped by fatal errors raised when the payload
	// of an event could not be located in its extrinsic.
	ErrResolutionFailed = errors.New("resolution failed")

	// ErrConsistencyViolation is wrapped by fatal errors raised when an event
	// contradicts the records already projected.
	ErrConsistencyViolation = errors.New("consistency violation")
)

// FatalError stops the indexer. It names the block, the event and, when
// known, the emitting extrinsic, the hash or id being looked up and the
// shape of the extrinsic call.
type FatalError struct {
	Height    uint64
	Extrinsic *int
	Event     string
	Target    string
	Shape     string
	Err       error
}

func (e *FatalError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "block %d", e.Height)

	if e.Extrinsic != nil {
		fmt.Fprintf(&sb, ", extrinsic %d", *e.Extrinsic)
	}

	fmt.Fprintf(&sb, ", event %s", e.Event)

	if e.Target != "" {
		fmt.Fprintf(&sb, ", target %s", e.Target)
	}

	if e.Shape != "" {
		fmt.Fprintf(&sb, ", call %s", e.Shape)
	}

	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

func violation(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrConsistencyViolation, fmt.Sprintf(format, a...))
}
