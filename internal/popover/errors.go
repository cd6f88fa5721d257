package popover

import (
	"errors"
	"fmt"
)

// ErrNotAcceptingInput is returned when an action is not valid in the
// popover's current state, e.g. submitting twice.
var ErrNotAcceptingInput = errors.New("build options popover is not accepting input")

type FetchOp string

const (
	FetchTemplateParameters FetchOp = "template version parameters"
	FetchBuildParameters    FetchOp = "build parameters"
)

// FetchError indicates one of the loading queries failed.
type FetchError struct {
	Op  FetchOp
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func stateError(action string, k Kind) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrNotAcceptingInput, action, k)
}
