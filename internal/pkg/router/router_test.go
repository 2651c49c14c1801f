package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mikaelzzzz/OnboardingKarol/app/controllers"
	"github.com/mikaelzzzz/OnboardingKarol/app/models"
	"github.com/mikaelzzzz/OnboardingKarol/app/repository"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/billing"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/config"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/crm"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/dedup"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/messaging"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/onboarding"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/schedule"
)

const testAPIKey = "secret-key"

func newTestApp(t *testing.T, rateLimit int) *fiber.App {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:router_%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.WebhookEvent{}, &models.ContractSchedule{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	repos := repository.NewRepositories(db)

	cfg := &config.Config{App: config.AppConfig{APIKey: testAPIKey, WebhookRateLimit: rateLimit}}
	// Collaborators without credentials fail their own steps only.
	orch := onboarding.NewOrchestrator(
		crm.NewClient(config.NotionConfig{}, time.Second),
		messaging.NewClient(config.ZAPIConfig{}, time.Second),
		billing.NewService(billing.NewAsaasClient(config.AsaasConfig{}, time.Second)),
		dedup.NewMemoryGuard(time.Minute),
	)

	app := fiber.New()
	InstallRouter(app, Deps{
		Config:   cfg,
		Webhook:  controllers.NewWebhookController(repos.WebhookEvent, orch, nil),
		Schedule: controllers.NewScheduleController(schedule.NewService(repos.ContractSchedule)),
	})
	return app
}

func status(t *testing.T, app *fiber.App, req *http.Request) int {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestInstallRouter_Health(t *testing.T) {
	app := newTestApp(t, 0)
	assert.Equal(t, fiber.StatusOK, status(t, app, httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestInstallRouter_APIRequiresKey(t *testing.T) {
	app := newTestApp(t, 0)
	target := "/api/v1/contract-end-date?start=2025-07-01&months=1&weekday=segunda"

	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, httptest.NewRequest(http.MethodGet, target, nil)))

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("X-API-Key", testAPIKey)
	assert.Equal(t, fiber.StatusOK, status(t, app, req))

	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, httptest.NewRequest(http.MethodGet, "/metrics", nil)))
}

func TestInstallRouter_WebhookRateLimit(t *testing.T) {
	app := newTestApp(t, 2)

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/webhook/zapsign", strings.NewReader(`{"status":"pending"}`))
		req.Header.Set("Content-Type", "application/json")
		return status(t, app, req)
	}

	assert.Equal(t, fiber.StatusNoContent, send())
	assert.Equal(t, fiber.StatusNoContent, send())
	assert.Equal(t, fiber.StatusTooManyRequests, send())
}

func TestInstallRouter_WebhookAcknowledgesDownstreamFailures(t *testing.T) {
	app := newTestApp(t, 0)

	body := `{"token":"doc-1","status":"signed","signer_who_signed":{"name":"Ana","email":"ana@example.com","phone_number":"11987654321"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/zapsign", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, fiber.StatusNoContent, status(t, app, req))
}
