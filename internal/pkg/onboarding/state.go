package onboarding

import (
	"errors"
	"fmt"
)

// State is a step of the per-event synchronization state machine.
type State string

const (
	StateReceived        State = "received"
	StateNormalized      State = "normalized"
	StateContactResolved State = "contact_resolved"
	StateNotified        State = "notified"
	StatePersisted       State = "persisted"
	StateBilled          State = "billed"
	StateDone            State = "done"

	// StateIgnored is terminal for events that are not signed contracts.
	StateIgnored State = "ignored"
)

// FailedAt is the absorbing state for a step whose external call errored.
func FailedAt(s State) State {
	return State("failed_at_" + string(s))
}

// ErrMissingEmail stops every external step: email is the natural key.
var ErrMissingEmail = errors.New("signer email is missing")

// StepError is an external-call failure of one step. Earlier steps are not
// undone and the step is not retried.
type StepError struct {
	Step State
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// StepResult records how one step ended.
type StepResult struct {
	State   State
	Skipped bool
	Reason  string
	Err     error
}
