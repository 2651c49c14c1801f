package onboarding

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/billing"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/contractdate"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/crm"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/dedup"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/messaging"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/normalize"
)

// StatusSigned is the only event status that triggers a synchronization.
const StatusSigned = "signed"

// Event is one inbound signed-contract notification.
type Event struct {
	Token  string
	Status string
	Input  normalize.Input
}

// ContactStore is the CRM.
type ContactStore interface {
	FindByEmail(ctx context.Context, email string) (*crm.Contact, error)
	Create(ctx context.Context, f crm.Fields) (*crm.Contact, error)
	Update(ctx context.Context, pageID string, f crm.Fields) error
}

// Messenger delivers the welcome or renewal text.
type Messenger interface {
	SendText(ctx context.Context, phone, body string) (*messaging.SendResult, error)
}

// Subscriptions guarantees one live subscription per customer.
type Subscriptions interface {
	EnsureSubscription(ctx context.Context, req billing.Request) (*billing.Result, error)
}

type Orchestrator struct {
	contacts  ContactStore
	messenger Messenger
	billing   Subscriptions
	guard     dedup.Guard
	calendar  *contractdate.Calendar
	locks     *keyLocker
}

func NewOrchestrator(contacts ContactStore, messenger Messenger, subs Subscriptions, guard dedup.Guard) *Orchestrator {
	return &Orchestrator{
		contacts:  contacts,
		messenger: messenger,
		billing:   subs,
		guard:     guard,
		calendar:  contractdate.Default(),
		locks:     newKeyLocker(),
	}
}

// WithCalendar replaces the built-in blackout and holiday tables.
func (o *Orchestrator) WithCalendar(c *contractdate.Calendar) *Orchestrator {
	o.calendar = c
	return o
}

// Synchronize drives one event through CRM, messaging and billing. A failing
// step does not stop the following ones; the returned error joins one
// *StepError per failed step and the Outcome is always non-nil.
func (o *Orchestrator) Synchronize(ctx context.Context, ev Event) (*Outcome, error) {
	out := &Outcome{RunID: uuid.NewString(), Token: ev.Token}

	if ev.Status != StatusSigned {
		out.Ignored = true
		out.Terminal = StateIgnored
		log.Infof("[Onboarding] %s: status %q is not %q, ignoring", ev.Token, ev.Status, StatusSigned)
		return out, nil
	}
	out.record(StepResult{State: StateReceived})

	norm := normalize.Normalize(ev.Input)
	out.Email = norm.Contact.Email
	out.Issues = norm.Issues
	for _, issue := range norm.Issues {
		log.Warnf("[Onboarding] %s: %v", ev.Token, issue)
	}
	if out.Email == "" {
		out.record(StepResult{State: StateNormalized, Err: ErrMissingEmail})
		return out, out.finish()
	}
	out.record(StepResult{State: StateNormalized})
	o.logf(out, StateNormalized)

	unlock := o.locks.Lock(out.Email)
	defer unlock()

	if norm.Terms.HasSchedule() {
		res := o.calendar.ComputeEndDate(*norm.Terms.StartDate, norm.Terms.Duration.Months(), *norm.Terms.ClassWeekday)
		out.EndDate = &res
	}

	contact := o.resolveContact(ctx, out)
	o.notify(ctx, out, norm.Contact)
	o.persist(ctx, out, contact, norm)
	o.bill(ctx, out, norm)

	err := out.finish()
	if err != nil {
		log.Errorf("[Onboarding] %s %s: finished in %s: %v", out.Token, out.Email, out.Terminal, err)
	} else {
		o.logf(out, StateDone)
	}
	return out, err
}

func (o *Orchestrator) resolveContact(ctx context.Context, out *Outcome) *crm.Contact {
	contact, err := o.contacts.FindByEmail(ctx, out.Email)
	if err != nil {
		out.record(StepResult{State: StateContactResolved, Err: err})
		log.Errorf("[Onboarding] %s %s: contact lookup failed: %v", out.Token, out.Email, err)
		return nil
	}
	out.ContactResolved = true
	out.IsNew = contact == nil
	if contact != nil {
		out.ContactPageID = contact.PageID
	}
	out.record(StepResult{State: StateContactResolved})
	o.logf(out, StateContactResolved)
	return contact
}

func (o *Orchestrator) notify(ctx context.Context, out *Outcome, c normalize.ContactRecord) {
	skip := func(reason string) {
		out.record(StepResult{State: StateNotified, Skipped: true, Reason: reason})
		log.Infof("[Onboarding] %s %s: message skipped: %s", out.Token, out.Email, reason)
	}

	switch {
	case !out.ContactResolved:
		skip("contact unresolved")
		return
	case c.Phone == "":
		skip("no valid phone")
		return
	}

	// Different contacts can share a phone, so check, send and mark run under
	// a per-phone lock as well.
	unlock := o.locks.Lock("phone:" + c.Phone)
	defer unlock()

	if o.guard != nil {
		seen, err := o.guard.Seen(ctx, c.Phone)
		if err != nil {
			log.Warnf("[Dedup] %s: lookup failed, sending anyway: %v", out.Token, err)
		}
		if seen {
			out.MessageSuppressed = true
			skip("sent recently")
			return
		}
	}

	body := messaging.MessageFor(out.IsNew, c.Name, c.Email)
	if _, err := o.messenger.SendText(ctx, c.Phone, body); err != nil {
		out.record(StepResult{State: StateNotified, Err: err})
		log.Errorf("[Onboarding] %s %s: message failed: %v", out.Token, out.Email, err)
		return
	}
	out.MessageSent = true
	if o.guard != nil {
		if err := o.guard.Mark(ctx, c.Phone); err != nil {
			log.Warnf("[Dedup] %s: mark failed: %v", out.Token, err)
		}
	}
	out.record(StepResult{State: StateNotified})
	o.logf(out, StateNotified)
}

func (o *Orchestrator) persist(ctx context.Context, out *Outcome, existing *crm.Contact, norm normalize.Result) {
	if !out.ContactResolved {
		out.record(StepResult{State: StatePersisted, Skipped: true, Reason: "contact unresolved"})
		return
	}

	fields := contactFields(norm, out.EndDate)
	if existing == nil {
		created, err := o.contacts.Create(ctx, fields)
		if err != nil {
			out.record(StepResult{State: StatePersisted, Err: err})
			log.Errorf("[Onboarding] %s %s: contact create failed: %v", out.Token, out.Email, err)
			return
		}
		out.ContactCreated = true
		out.ContactPageID = created.PageID
	} else if err := o.contacts.Update(ctx, existing.PageID, fields); err != nil {
		out.record(StepResult{State: StatePersisted, Err: err})
		log.Errorf("[Onboarding] %s %s: contact update failed: %v", out.Token, out.Email, err)
		return
	}
	out.record(StepResult{State: StatePersisted})
	o.logf(out, StatePersisted)
}

func (o *Orchestrator) bill(ctx context.Context, out *Outcome, norm normalize.Result) {
	res, err := o.billing.EnsureSubscription(ctx, billingRequest(norm))
	if err != nil {
		out.record(StepResult{State: StateBilled, Err: err})
		log.Errorf("[Onboarding] %s %s: billing failed: %v", out.Token, out.Email, err)
		return
	}
	out.Billing = res
	out.record(StepResult{State: StateBilled, Skipped: out.SubscriptionSkipped(), Reason: res.State})
	o.logf(out, StateBilled)
}

func (o *Orchestrator) logf(out *Outcome, s State) {
	log.Infof("[Onboarding] %s %s: %s (run %s)", out.Token, out.Email, s, out.RunID)
}

// contactFields maps the normalized record to CRM fields. An unknown plan
// and absent dates stay empty so they never overwrite stored values.
func contactFields(norm normalize.Result, end *contractdate.Result) crm.Fields {
	f := crm.Fields{
		Name:      norm.Contact.Name,
		Email:     norm.Contact.Email,
		Phone:     norm.Contact.Phone,
		TaxID:     norm.Contact.TaxID,
		Duration:  norm.Terms.Duration.Label(),
		StartDate: normalize.FormatDate(norm.Terms.StartDate),
		EndDate:   normalize.FormatDate(norm.Terms.EndDate),
		BirthDate: normalize.FormatDate(norm.Contact.BirthDate),
		Address:   norm.Contact.Address,
	}
	if norm.Terms.Plan.Known() {
		f.Plan = string(norm.Terms.Plan)
	}
	if end != nil {
		f.EndDate = end.End.Format(time.DateOnly)
	}
	return f
}

func billingRequest(norm normalize.Result) billing.Request {
	req := billing.Request{
		Name:         norm.Contact.Name,
		Email:        norm.Contact.Email,
		Phone:        norm.Contact.Phone,
		TaxID:        norm.Contact.TaxID,
		Value:        norm.Terms.InstallmentValue,
		DueDate:      norm.Terms.DueDate,
		FinalDueDate: norm.Terms.FinalDueDate,
		Method:       billingType(norm.Terms.BillingMethod),
	}
	if norm.Terms.Plan.Known() {
		req.Plan = string(norm.Terms.Plan)
	}
	return req
}

func billingType(m normalize.BillingMethod) billing.BillingType {
	switch m {
	case normalize.BillingMethodBoleto:
		return billing.BillingTypeBoleto
	case normalize.BillingMethodPix:
		return billing.BillingTypePix
	case normalize.BillingMethodCreditCard:
		return billing.BillingTypeCreditCard
	default:
		return billing.BillingTypeUndefined
	}
}
