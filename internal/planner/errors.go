package planner

import (
	"errors"
	"fmt"
)

// The planner surfaces three non-fatal error kinds, matching how the UI
// treats them: guard rejections (warnings, state untouched), precondition
// failures (Send aborts with the first specific violation), and
// confirmation prompts (the caller retries the same action confirmed).
// Anything else bubbling out of here is a genuine internal error.

// Rejection is a guard refusal: the attempted mutation was discarded and
// the route is unchanged.
type Rejection struct {
	Reason string
}

func (e *Rejection) Error() string { return e.Reason }

func reject(format string, args ...any) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is a guard rejection.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}

// PreconditionError reports the first Send precondition found violated.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

// ConfirmationRequired asks the user to confirm before the action is
// applied. Re-issuing the same call with the confirmed flag set proceeds.
type ConfirmationRequired struct {
	Reason string
}

func (e *ConfirmationRequired) Error() string { return e.Reason }

// NeedsConfirmation reports whether err is a confirmation prompt.
func NeedsConfirmation(err error) bool {
	var c *ConfirmationRequired
	return errors.As(err, &c)
}
