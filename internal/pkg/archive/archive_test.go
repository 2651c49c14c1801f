package archive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/config"
)

func TestObjectKey(t *testing.T) {
	at := time.Date(2025, 7, 3, 23, 30, 0, 0, time.FixedZone("BRT", -3*3600))

	assert.Equal(t, "contracts/2025/07/abc-123.json", ObjectKey("abc-123", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "contracts/2025/07/a_b_c.json", ObjectKey("a/b c", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "contracts/2025/07/unknown.json", ObjectKey("", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "contracts/2025/07/x.json", ObjectKey("x", at), "keys use the UTC month")
}

func TestNewClient_Disabled(t *testing.T) {
	_, err := NewClient(context.Background(), config.ArchiveConfig{})
	assert.True(t, errors.Is(err, config.ErrNotConfigured))
}

func TestClient_Store(t *testing.T) {
	var (
		mu       sync.Mutex
		gotPath  string
		gotBody  []byte
		gotCType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		gotCType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), config.ArchiveConfig{
		Enabled:         true,
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Region:          "us-east-1",
		Bucket:          "contracts-bucket",
		EndpointURL:     srv.URL,
	})
	require.NoError(t, err)

	key, err := c.Store(context.Background(), "doc-1", []byte(`{"token":"doc-1"}`), time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "contracts/2025/07/doc-1.json", key)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/contracts-bucket/contracts/2025/07/doc-1.json", gotPath)
	assert.Equal(t, "application/json", gotCType)
	assert.Contains(t, string(gotBody), `{"token":"doc-1"}`)
}
