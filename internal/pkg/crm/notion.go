package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/config"
)

// Property names of the students database.
const (
	PropName      = "Name"
	PropEmail     = "Email"
	PropPhone     = "Telefone"
	PropTaxID     = "CPF"
	PropPlan      = "Pacote"
	PropDuration  = "Tempo de contrato"
	PropStartDate = "Início do contrato"
	PropEndDate   = "Fim do contrato"
	PropBirthDate = "Data de nascimento"
	PropAddress   = "Endereço"
)

// APIError is a non-2xx answer from Notion.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion request failed: status=%d body=%s", e.Status, e.Body)
}

// Client talks to the Notion data source API (version 2025-09-03 and later).
type Client struct {
	Token        string
	DatabaseID   string
	DataSourceID string
	Version      string
	BaseURL      string

	HTTPClient *http.Client

	mu               sync.Mutex
	discoveredSource string
}

func NewClient(cfg config.NotionConfig, timeout time.Duration) *Client {
	return &Client{
		Token:        cfg.Token,
		DatabaseID:   cfg.DatabaseID,
		DataSourceID: cfg.DataSourceID,
		Version:      cfg.Version,
		BaseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		HTTPClient:   &http.Client{Timeout: timeout},
	}
}

func (c *Client) configured() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("NOTION_TOKEN: %w", config.ErrNotConfigured)
	}
	if strings.TrimSpace(c.DataSourceID) == "" && strings.TrimSpace(c.DatabaseID) == "" {
		return fmt.Errorf("NOTION_DB_ID or NOTION_DATA_SOURCE_ID: %w", config.ErrNotConfigured)
	}
	return nil
}

// dataSourceID returns the configured data source, or discovers the first
// data source of the configured database once per process.
func (c *Client) dataSourceID(ctx context.Context) (string, error) {
	if id := strings.TrimSpace(c.DataSourceID); id != "" {
		return id, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.discoveredSource != "" {
		return c.discoveredSource, nil
	}

	var db struct {
		DataSources []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data_sources"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/databases/"+strings.TrimSpace(c.DatabaseID), nil, &db); err != nil {
		return "", fmt.Errorf("discover data source: %w", err)
	}
	if len(db.DataSources) == 0 {
		return "", fmt.Errorf("database %s has no data sources", c.DatabaseID)
	}

	c.discoveredSource = db.DataSources[0].ID
	log.Infof("[CRM] Discovered data source %s (%s)", c.discoveredSource, db.DataSources[0].Name)
	return c.discoveredSource, nil
}

// FindByEmail returns the page whose Email equals email, or nil when none does.
func (c *Client) FindByEmail(ctx context.Context, email string) (*Contact, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}
	sourceID, err := c.dataSourceID(ctx)
	if err != nil {
		return nil, err
	}

	query := map[string]interface{}{
		"filter": map[string]interface{}{
			"property": PropEmail,
			"email":    map[string]string{"equals": email},
		},
		"page_size": 1,
	}
	var out struct {
		Results []page `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/data_sources/"+sourceID+"/query", query, &out); err != nil {
		return nil, fmt.Errorf("query contact: %w", err)
	}
	if len(out.Results) == 0 {
		return nil, nil
	}
	contact := out.Results[0].contact()
	return &contact, nil
}

// Create adds a new page to the data source.
func (c *Client) Create(ctx context.Context, f Fields) (*Contact, error) {
	if err := c.configured(); err != nil {
		return nil, err
	}
	sourceID, err := c.dataSourceID(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]interface{}{
		"parent": map[string]string{
			"type":           "data_source_id",
			"data_source_id": sourceID,
		},
		"properties": f.Properties(),
	}
	var created page
	if err := c.do(ctx, http.MethodPost, "/v1/pages", body, &created); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	contact := created.contact()
	return &contact, nil
}

// Update patches only the non-empty fields of f onto the page.
func (c *Client) Update(ctx context.Context, pageID string, f Fields) error {
	if err := c.configured(); err != nil {
		return err
	}
	props := f.Properties()
	if len(props) == 0 {
		return nil
	}
	body := map[string]interface{}{"properties": props}
	if err := c.do(ctx, http.MethodPatch, "/v1/pages/"+pageID, body, nil); err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
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
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Notion-Version", c.Version)
	req.Header.Set("Accept", "application/json")
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
		return &APIError{Status: resp.StatusCode, Body: truncate(string(body), 512)}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
