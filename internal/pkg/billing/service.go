package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

var (
	ErrMissingEmail   = errors.New("customer email is required")
	ErrMissingDueDate = errors.New("first due date is required")
	ErrInvalidValue   = errors.New("installment value must be greater than zero")
)

// Outcome states of EnsureSubscription.
const (
	StateCreated                 = "created"
	StateCreatedUndefinedBilling = "created_undefined_billing"
	StateAlreadyActive           = "already_active"
	StateAlreadyExists           = "already_exists"
)

const dateLayout = "2006-01-02"

// Gateway is the billing processor as seen by the service.
type Gateway interface {
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error)
	FindActiveSubscription(ctx context.Context, customerID string) (*Subscription, error)
	FindSubscriptionByReference(ctx context.Context, customerID, ref string) (*Subscription, error)
	CreateSubscription(ctx context.Context, in SubscriptionInput) (*Subscription, error)
}

// Request describes the subscription a signed contract asks for.
type Request struct {
	Name         string
	Email        string
	Phone        string
	TaxID        string
	Plan         string
	Value        float64
	DueDate      *time.Time
	FinalDueDate *time.Time
	Method       BillingType
}

// Result is what EnsureSubscription did.
type Result struct {
	State           string
	CustomerID      string
	CustomerCreated bool
	Subscription    *Subscription
}

// Service keeps at most one live subscription per customer.
type Service struct {
	gw Gateway
}

// NewService creates a billing service from an injected gateway.
func NewService(gw Gateway) *Service {
	return &Service{gw: gw}
}

// ExternalReference is the de-duplication reference stored on subscriptions.
func ExternalReference(email string, dueDate *time.Time) string {
	due := ""
	if dueDate != nil {
		due = dueDate.Format(dateLayout)
	}
	return strings.ToLower(strings.TrimSpace(email)) + "|" + due
}

// EnsureSubscription resolves or creates the customer and creates a monthly
// subscription unless the customer already has an active one.
func (s *Service) EnsureSubscription(ctx context.Context, req Request) (*Result, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, ErrMissingEmail
	}

	customer, err := s.gw.FindCustomerByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if customer != nil {
		active, err := s.gw.FindActiveSubscription(ctx, customer.ID)
		if err != nil {
			return nil, err
		}
		if active != nil {
			log.Infof("[Billing] Customer %s already has active subscription %s", customer.ID, active.ID)
			return &Result{State: StateAlreadyActive, CustomerID: customer.ID, Subscription: active}, nil
		}
	}

	if req.DueDate == nil {
		return nil, ErrMissingDueDate
	}
	if req.Value <= 0 {
		return nil, fmt.Errorf("%w: %.2f", ErrInvalidValue, req.Value)
	}

	res := &Result{}
	if customer == nil {
		customer, err = s.gw.CreateCustomer(ctx, CustomerInput{
			Name:        strings.TrimSpace(req.Name),
			Email:       email,
			MobilePhone: req.Phone,
			CpfCnpj:     req.TaxID,
		})
		if err != nil {
			return nil, err
		}
		res.CustomerCreated = true
		log.Infof("[Billing] Created customer %s for %s", customer.ID, email)
	}
	res.CustomerID = customer.ID

	ref := ExternalReference(email, req.DueDate)
	if !res.CustomerCreated {
		existing, err := s.gw.FindSubscriptionByReference(ctx, customer.ID, ref)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			log.Infof("[Billing] Subscription %s already exists for reference %s", existing.ID, ref)
			res.State = StateAlreadyExists
			res.Subscription = existing
			return res, nil
		}
	}

	method := req.Method
	if method == "" {
		method = BillingTypeUndefined
	}

	in := SubscriptionInput{
		Customer:          customer.ID,
		BillingType:       method,
		Cycle:             CycleMonthly,
		Value:             req.Value,
		NextDueDate:       req.DueDate.Format(dateLayout),
		Description:       Description(req.Plan),
		ExternalReference: ref,
		Fine:              Fine{Value: FinePercent, Type: "PERCENTAGE"},
		Interest:          Interest{Value: InterestPercent},
	}
	if req.FinalDueDate != nil {
		in.EndDate = req.FinalDueDate.Format(dateLayout)
	}

	sub, err := s.gw.CreateSubscription(ctx, in)
	if err != nil {
		return nil, err
	}
	res.Subscription = sub
	res.State = StateCreated
	if method == BillingTypeUndefined {
		res.State = StateCreatedUndefinedBilling
	}
	log.Infof("[Billing] Created subscription %s (%s) for customer %s", sub.ID, method, customer.ID)
	return res, nil
}

// Description is the subscription description shown on invoices.
func Description(plan string) string {
	plan = strings.TrimSpace(plan)
	if plan == "" {
		return "Aulas de Inglês"
	}
	return "Aulas de Inglês - " + plan
}
