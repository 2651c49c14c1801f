package onboarding

import (
	"errors"

	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/billing"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/contractdate"
)

// Outcome reports what one synchronization run did in each external system.
// Suppressed sends and skipped subscriptions are flags here, not errors.
type Outcome struct {
	RunID   string
	Token   string
	Email   string
	Ignored bool

	Issues []error

	ContactResolved bool
	IsNew           bool
	ContactPageID   string
	ContactCreated  bool

	MessageSent       bool
	MessageSuppressed bool

	EndDate *contractdate.Result
	Billing *billing.Result

	Steps    []StepResult
	FailedAt []State
	Terminal State
}

func (o *Outcome) record(r StepResult) {
	o.Steps = append(o.Steps, r)
	if r.Err != nil {
		o.FailedAt = append(o.FailedAt, FailedAt(r.State))
	}
}

// finish sets the terminal state and joins every step error.
func (o *Outcome) finish() error {
	var errs []error
	for _, s := range o.Steps {
		if s.Err != nil {
			errs = append(errs, &StepError{Step: s.State, Err: s.Err})
		}
	}
	if len(o.FailedAt) > 0 {
		o.Terminal = o.FailedAt[0]
	} else {
		o.Terminal = StateDone
	}
	return errors.Join(errs...)
}

// Step returns the result recorded for s.
func (o *Outcome) Step(s State) (StepResult, bool) {
	for _, r := range o.Steps {
		if r.State == s {
			return r, true
		}
	}
	return StepResult{}, false
}

// SubscriptionSkipped reports whether billing found an existing subscription
// instead of creating one.
func (o *Outcome) SubscriptionSkipped() bool {
	if o.Billing == nil {
		return false
	}
	return o.Billing.State == billing.StateAlreadyActive || o.Billing.State == billing.StateAlreadyExists
}
