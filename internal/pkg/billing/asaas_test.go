package billing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/config"
)

func newTestAsaas(t *testing.T, h http.HandlerFunc) *AsaasClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewAsaasClient(config.AsaasConfig{APIKey: "key", BaseURL: srv.URL + "/v3/"}, 5*time.Second)
}

func TestAsaasClient_FindCustomerByEmail(t *testing.T) {
	c := newTestAsaas(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/customers", r.URL.Path)
		assert.Equal(t, "maria@example.com", r.URL.Query().Get("email"))
		assert.Equal(t, "key", r.Header.Get("access_token"))
		_, _ = w.Write([]byte(`{"data":[
			{"id":"cus_old","email":"maria@example.com","deleted":true},
			{"id":"cus_1","email":"maria@example.com"}
		],"totalCount":2}`))
	})

	cus, err := c.FindCustomerByEmail(context.Background(), "maria@example.com")
	require.NoError(t, err)
	require.NotNil(t, cus)
	assert.Equal(t, "cus_1", cus.ID)
}

func TestAsaasClient_FindActiveSubscriptionNone(t *testing.T) {
	c := newTestAsaas(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/subscriptions", r.URL.Path)
		assert.Equal(t, "cus_1", r.URL.Query().Get("customer"))
		assert.Equal(t, SubscriptionActive, r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`{"data":[],"totalCount":0}`))
	})

	sub, err := c.FindActiveSubscription(context.Background(), "cus_1")
	require.NoError(t, err)
	assert.Nil(t, sub)
}

func TestAsaasClient_CreateSubscription(t *testing.T) {
	c := newTestAsaas(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v3/subscriptions", r.URL.Path)

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "BOLETO", body["billingType"])
		assert.Equal(t, "MONTHLY", body["cycle"])
		assert.Equal(t, 2.0, body["fine"].(map[string]interface{})["value"])
		assert.Equal(t, "PERCENTAGE", body["fine"].(map[string]interface{})["type"])
		assert.Equal(t, 1.0, body["interest"].(map[string]interface{})["value"])
		assert.Equal(t, false, body["notificationDisabled"])

		_, _ = w.Write([]byte(`{"id":"sub_1","customer":"cus_1","status":"ACTIVE","value":150}`))
	})

	sub, err := c.CreateSubscription(context.Background(), SubscriptionInput{
		Customer:    "cus_1",
		BillingType: BillingTypeBoleto,
		Cycle:       CycleMonthly,
		Value:       150,
		NextDueDate: "2025-07-10",
		Fine:        Fine{Value: FinePercent, Type: "PERCENTAGE"},
		Interest:    Interest{Value: InterestPercent},
	})
	require.NoError(t, err)
	assert.Equal(t, "sub_1", sub.ID)
	assert.Equal(t, SubscriptionActive, sub.Status)
}

func TestAsaasClient_APIError(t *testing.T) {
	c := newTestAsaas(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"code":"invalid_cpfCnpj"}]}`))
	})

	_, err := c.CreateCustomer(context.Background(), CustomerInput{Name: "x", Email: "x@example.com"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Contains(t, err.Error(), "invalid_cpfCnpj")
}

func TestAsaasClient_NotConfigured(t *testing.T) {
	c := NewAsaasClient(config.AsaasConfig{BaseURL: "http://127.0.0.1:1"}, time.Second)
	_, err := c.FindCustomerByEmail(context.Background(), "x@example.com")
	assert.True(t, errors.Is(err, config.ErrNotConfigured))
}
