package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikaelzzzz/OnboardingKarol/app/models"
	"github.com/mikaelzzzz/OnboardingKarol/app/repository"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/archive"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/onboarding"
)

type fakeSynchronizer struct {
	mu     sync.Mutex
	events []onboarding.Event
	err    error
}

func (f *fakeSynchronizer) Synchronize(_ context.Context, ev onboarding.Event) (*onboarding.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	out := &onboarding.Outcome{Token: ev.Token, Terminal: onboarding.StateDone}
	if f.err != nil {
		out.Terminal = onboarding.FailedAt(onboarding.StateBilled)
	}
	return out, f.err
}

func (f *fakeSynchronizer) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeArchiver struct {
	keys []string
	err  error
}

func (a *fakeArchiver) Store(_ context.Context, token string, _ []byte, _ time.Time) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	key := "contracts/2025/07/" + token + ".json"
	a.keys = append(a.keys, key)
	return key, nil
}

const signedBody = `{
	"token": "doc-123",
	"status": "signed",
	"answers": [
		{"variable": "Tipo do pacote", "value": "VIP"},
		{"variable": "Tempo de contrato", "value": "6 meses"}
	],
	"signer_who_signed": {
		"name": "Maria da Silva",
		"email": "Maria@Example.com",
		"phone_country": "55",
		"phone_number": "11987654321"
	}
}`

func newWebhookApp(t *testing.T, syncer Synchronizer, archiver archive.Archiver) (*fiber.App, repository.WebhookEventRepository) {
	t.Helper()
	repos := newTestRepositories(t)
	wc := NewWebhookController(repos.WebhookEvent, syncer, archiver)
	app := fiber.New()
	app.Post("/webhook/zapsign", wc.HandleZapSign)
	return app, repos.WebhookEvent
}

func post(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook/zapsign", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestHandleZapSign_SignedEventIsSynchronized(t *testing.T) {
	syncer := &fakeSynchronizer{}
	archiver := &fakeArchiver{}
	app, events := newWebhookApp(t, syncer, archiver)

	resp := post(t, app, signedBody)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	require.Equal(t, 1, syncer.calls())
	ev := syncer.events[0]
	assert.Equal(t, "doc-123", ev.Token)
	assert.Equal(t, "Maria da Silva", ev.Input.Name)
	assert.Len(t, ev.Input.Answers, 2)

	stored, err := events.GetByToken(models.ProviderZapSign, "doc-123")
	require.NoError(t, err)
	assert.True(t, stored.Completed())
	assert.Equal(t, string(onboarding.StateDone), stored.Terminal)
	assert.Equal(t, 1, stored.Attempts)
	assert.Equal(t, "maria@example.com", stored.Email)
	assert.Equal(t, "contracts/2025/07/doc-123.json", stored.ArchiveKey)
}

func TestHandleZapSign_DuplicateTokenIsAcknowledged(t *testing.T) {
	syncer := &fakeSynchronizer{}
	app, _ := newWebhookApp(t, syncer, nil)

	assert.Equal(t, fiber.StatusNoContent, post(t, app, signedBody).StatusCode)
	assert.Equal(t, fiber.StatusNoContent, post(t, app, signedBody).StatusCode)
	assert.Equal(t, 1, syncer.calls())
}

func TestHandleZapSign_FailedRunIsRetriedOnRedelivery(t *testing.T) {
	syncer := &fakeSynchronizer{err: errors.New("billed: asaas unavailable")}
	app, events := newWebhookApp(t, syncer, nil)

	assert.Equal(t, fiber.StatusNoContent, post(t, app, signedBody).StatusCode)

	stored, err := events.GetByToken(models.ProviderZapSign, "doc-123")
	require.NoError(t, err)
	assert.False(t, stored.Completed())
	assert.Equal(t, "failed_at_billed", stored.Terminal)
	assert.Contains(t, stored.ProcessingError, "asaas unavailable")

	syncer.mu.Lock()
	syncer.err = nil
	syncer.mu.Unlock()

	assert.Equal(t, fiber.StatusNoContent, post(t, app, signedBody).StatusCode)
	assert.Equal(t, 2, syncer.calls())

	stored, err = events.GetByToken(models.ProviderZapSign, "doc-123")
	require.NoError(t, err)
	assert.True(t, stored.Completed())
	assert.Equal(t, 2, stored.Attempts)
}

func TestHandleZapSign_NotSignedIsIgnored(t *testing.T) {
	syncer := &fakeSynchronizer{}
	app, events := newWebhookApp(t, syncer, nil)

	resp := post(t, app, `{"token":"doc-123","status":"pending","signer_who_signed":{"email":"a@b.com"}}`)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Zero(t, syncer.calls())

	_, err := events.GetByToken(models.ProviderZapSign, "doc-123")
	assert.Error(t, err, "unsigned deliveries are not recorded")

	// The signed delivery for the same document still runs.
	assert.Equal(t, fiber.StatusNoContent, post(t, app, signedBody).StatusCode)
	assert.Equal(t, 1, syncer.calls())
}

func TestHandleZapSign_ArchiveFailureDoesNotBlock(t *testing.T) {
	syncer := &fakeSynchronizer{}
	app, events := newWebhookApp(t, syncer, &fakeArchiver{err: errors.New("bucket missing")})

	assert.Equal(t, fiber.StatusNoContent, post(t, app, signedBody).StatusCode)
	assert.Equal(t, 1, syncer.calls())

	stored, err := events.GetByToken(models.ProviderZapSign, "doc-123")
	require.NoError(t, err)
	assert.Empty(t, stored.ArchiveKey)
}

func TestHandleZapSign_MissingTokenUsesBodyHash(t *testing.T) {
	syncer := &fakeSynchronizer{}
	app, _ := newWebhookApp(t, syncer, nil)

	body := `{"status":"signed","signer_who_signed":{"email":"joao@example.com"}}`
	assert.Equal(t, fiber.StatusNoContent, post(t, app, body).StatusCode)
	assert.Equal(t, fiber.StatusNoContent, post(t, app, body).StatusCode)

	require.Equal(t, 1, syncer.calls())
	assert.True(t, strings.HasPrefix(syncer.events[0].Token, "hash:"))
}

func TestHandleZapSign_RejectsBadPayloads(t *testing.T) {
	syncer := &fakeSynchronizer{}
	app, _ := newWebhookApp(t, syncer, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"status":`, fiber.StatusBadRequest},
		{"missing status", `{"token":"x"}`, fiber.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, post(t, app, tt.body).StatusCode)
		})
	}
	assert.Zero(t, syncer.calls())
}

func TestHandleZapSign_PaddedEmailIsNormalized(t *testing.T) {
	syncer := &fakeSynchronizer{}
	app, events := newWebhookApp(t, syncer, nil)

	body := `{"token":"doc-9","status":"signed","signer_who_signed":{"name":"Ana","email":"  Ana.Souza@Example.COM ","phone_number":"11987654321"}}`
	assert.Equal(t, fiber.StatusNoContent, post(t, app, body).StatusCode)

	require.Equal(t, 1, syncer.calls())
	assert.Equal(t, "ana.souza@example.com", syncer.events[0].Input.Email)

	stored, err := events.GetByToken(models.ProviderZapSign, "doc-9")
	require.NoError(t, err)
	assert.Equal(t, "ana.souza@example.com", stored.Email)
	assert.True(t, stored.Completed())
}

func TestHandleZapSign_SignedFieldProblemsStillSynchronize(t *testing.T) {
	syncer := &fakeSynchronizer{}
	app, _ := newWebhookApp(t, syncer, nil)

	longValue := strings.Repeat("x", 6000)
	bodies := []string{
		`{"token":"a","status":"signed","signer_who_signed":{"name":"A"}}`,
		`{"token":"b","status":"signed","signer_who_signed":{"email":"nope"}}`,
		`{"token":"c","status":"signed","answers":[{"variable":"Endereço","value":"` + longValue + `"}],"signer_who_signed":{"email":"c@example.com"}}`,
	}
	for _, body := range bodies {
		assert.Equal(t, fiber.StatusNoContent, post(t, app, body).StatusCode)
	}
	assert.Equal(t, len(bodies), syncer.calls())
}

func TestHandleZapSign_StatusMustBeExactlySigned(t *testing.T) {
	syncer := &fakeSynchronizer{}
	app, _ := newWebhookApp(t, syncer, nil)

	for _, status := range []string{"Signed", " signed", "SIGNED"} {
		body := `{"token":"doc-1","status":"` + status + `","signer_who_signed":{"email":"a@b.com"}}`
		assert.Equal(t, fiber.StatusNoContent, post(t, app, body).StatusCode)
	}
	assert.Zero(t, syncer.calls())
}
