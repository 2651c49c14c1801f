package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/config"
)

// APIError is a non-2xx answer from Asaas.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("asaas request failed: status=%d body=%s", e.Status, e.Body)
}

type AsaasClient struct {
	APIKey  string
	BaseURL string

	HTTPClient *http.Client
}

func NewAsaasClient(cfg config.AsaasConfig, timeout time.Duration) *AsaasClient {
	return &AsaasClient{
		APIKey:  cfg.APIKey,
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *AsaasClient) configured() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("ASAAS_API_KEY: %w", config.ErrNotConfigured)
	}
	return nil
}

func (c *AsaasClient) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	q := url.Values{}
	q.Set("email", email)
	q.Set("limit", "10")

	var out listResponse[Customer]
	if err := c.do(ctx, http.MethodGet, "/customers?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	for i := range out.Data {
		if !out.Data[i].Deleted {
			return &out.Data[i], nil
		}
	}
	return nil, nil
}

func (c *AsaasClient) CreateCustomer(ctx context.Context, in CustomerInput) (*Customer, error) {
	var out Customer
	if err := c.do(ctx, http.MethodPost, "/customers", in, &out); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &out, nil
}

// FindActiveSubscription returns the first ACTIVE subscription of the customer.
func (c *AsaasClient) FindActiveSubscription(ctx context.Context, customerID string) (*Subscription, error) {
	q := url.Values{}
	q.Set("customer", customerID)
	q.Set("status", SubscriptionActive)
	return c.firstSubscription(ctx, q)
}

// FindSubscriptionByReference finds a live subscription carrying ref.
func (c *AsaasClient) FindSubscriptionByReference(ctx context.Context, customerID, ref string) (*Subscription, error) {
	q := url.Values{}
	q.Set("customer", customerID)
	q.Set("externalReference", ref)
	return c.firstSubscription(ctx, q)
}

func (c *AsaasClient) firstSubscription(ctx context.Context, q url.Values) (*Subscription, error) {
	q.Set("limit", "10")
	var out listResponse[Subscription]
	if err := c.do(ctx, http.MethodGet, "/subscriptions?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	for i := range out.Data {
		if !out.Data[i].Deleted {
			return &out.Data[i], nil
		}
	}
	return nil, nil
}

func (c *AsaasClient) CreateSubscription(ctx context.Context, in SubscriptionInput) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions", in, &out); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return &out, nil
}

func (c *AsaasClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	if err := c.configured(); err != nil {
		return err
	}

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("access_token", c.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "OnboardingKarol")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s := string(body)
		if len(s) > 512 {
			s = s[:512] + "..."
		}
		return &APIError{Status: resp.StatusCode, Body: s}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
