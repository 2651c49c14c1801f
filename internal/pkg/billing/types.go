package billing

// BillingType is how Asaas charges each installment.
type BillingType string

const (
	BillingTypeUndefined  BillingType = "UNDEFINED"
	BillingTypeBoleto     BillingType = "BOLETO"
	BillingTypePix        BillingType = "PIX"
	BillingTypeCreditCard BillingType = "CREDIT_CARD"
)

const (
	CycleMonthly       = "MONTHLY"
	SubscriptionActive = "ACTIVE"

	// Late payment terms applied to every subscription.
	FinePercent     = 2.0
	InterestPercent = 1.0
)

// Customer is an Asaas customer.
type Customer struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	MobilePhone string `json:"mobilePhone"`
	CpfCnpj     string `json:"cpfCnpj"`
	Deleted     bool   `json:"deleted"`
}

// CustomerInput is the create-customer payload.
type CustomerInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	MobilePhone string `json:"mobilePhone,omitempty"`
	CpfCnpj     string `json:"cpfCnpj,omitempty"`
}

// Subscription is an Asaas recurring charge.
type Subscription struct {
	ID                string      `json:"id"`
	Customer          string      `json:"customer"`
	Status            string      `json:"status"`
	BillingType       BillingType `json:"billingType"`
	Cycle             string      `json:"cycle"`
	Value             float64     `json:"value"`
	NextDueDate       string      `json:"nextDueDate"`
	EndDate           string      `json:"endDate"`
	Description       string      `json:"description"`
	ExternalReference string      `json:"externalReference"`
	Deleted           bool        `json:"deleted"`
}

type Fine struct {
	Value float64 `json:"value"`
	Type  string  `json:"type"`
}

type Interest struct {
	Value float64 `json:"value"`
}

// SubscriptionInput is the create-subscription payload.
type SubscriptionInput struct {
	Customer             string      `json:"customer"`
	BillingType          BillingType `json:"billingType"`
	Cycle                string      `json:"cycle"`
	Value                float64     `json:"value"`
	NextDueDate          string      `json:"nextDueDate"`
	EndDate              string      `json:"endDate,omitempty"`
	Description          string      `json:"description"`
	ExternalReference    string      `json:"externalReference"`
	Fine                 Fine        `json:"fine"`
	Interest             Interest    `json:"interest"`
	NotificationDisabled bool        `json:"notificationDisabled"`
}

type listResponse[T any] struct {
	Data       []T  `json:"data"`
	HasMore    bool `json:"hasMore"`
	TotalCount int  `json:"totalCount"`
}
