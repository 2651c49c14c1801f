package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/config"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/normalize"
)

// ErrInvalidRecipient means the phone is not 11 digits. No call is made.
var ErrInvalidRecipient = errors.New("recipient phone must be exactly 11 digits")

// APIError is a non-2xx answer from Z-API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("z-api send-text failed: status=%d body=%s", e.Status, e.Body)
}

// SendResult identifies the queued WhatsApp message.
type SendResult struct {
	ZaapID    string `json:"zaapId"`
	MessageID string `json:"messageId"`
}

// Client sends WhatsApp text messages through a Z-API instance.
type Client struct {
	InstanceID    string
	Token         string
	SecurityToken string
	BaseURL       string
	CountryCode   string

	HTTPClient *http.Client
}

func NewClient(cfg config.ZAPIConfig, timeout time.Duration) *Client {
	return &Client{
		InstanceID:    cfg.InstanceID,
		Token:         cfg.Token,
		SecurityToken: cfg.SecurityToken,
		BaseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		CountryCode:   cfg.CountryCode,
		HTTPClient:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) configured() error {
	if strings.TrimSpace(c.InstanceID) == "" || strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("ZAPI_INSTANCE_ID/ZAPI_TOKEN: %w", config.ErrNotConfigured)
	}
	return nil
}

// SendText sends body to an 11-digit national phone number.
func (c *Client) SendText(ctx context.Context, phone, body string) (*SendResult, error) {
	if !normalize.IsValidPhone(phone) {
		return nil, ErrInvalidRecipient
	}
	if err := c.configured(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{
		"phone":   c.CountryCode + phone,
		"message": body,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/instances/%s/token/%s/send-text", c.BaseURL, c.InstanceID, c.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.SecurityToken != "" {
		req.Header.Set("Client-Token", c.SecurityToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s := string(raw)
		if len(s) > 512 {
			s = s[:512] + "..."
		}
		return nil, &APIError{Status: resp.StatusCode, Body: s}
	}

	var out SendResult
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			log.Warnf("[Messaging] Unexpected send-text response: %v", err)
		}
	}
	return &out, nil
}
