package controllers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/mikaelzzzz/OnboardingKarol/app/models"
	"github.com/mikaelzzzz/OnboardingKarol/app/repository"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/archive"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/normalize"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/onboarding"
)

// webhookBudget bounds one synchronization. Each outbound call has its own
// shorter timeout.
const webhookBudget = 60 * time.Second

// Synchronizer runs one signed-contract event through the external systems.
type Synchronizer interface {
	Synchronize(ctx context.Context, ev onboarding.Event) (*onboarding.Outcome, error)
}

type WebhookController struct {
	events   repository.WebhookEventRepository
	sync     Synchronizer
	archiver archive.Archiver
	validate *validator.Validate
}

// NewWebhookController wires the handler. archiver may be nil.
func NewWebhookController(events repository.WebhookEventRepository, sync Synchronizer, archiver archive.Archiver) *WebhookController {
	return &WebhookController{
		events:   events,
		sync:     sync,
		archiver: archiver,
		validate: validator.New(),
	}
}

// HandleZapSign acknowledges every delivery that parses and carries a status
// with 204. Downstream failures are only visible in the logs and the
// webhook_events table.
func (wc *WebhookController) HandleZapSign(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)

	var payload models.SignedContractPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "message": err.Error()})
	}
	if err := wc.validate.Var(payload.Status, "required"); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": "status is required"})
	}

	payload.Token = strings.TrimSpace(payload.Token)
	if payload.Token == "" {
		sum := sha256.Sum256(rawBody)
		payload.Token = "hash:" + hex.EncodeToString(sum[:])
	}

	ctx, cancel := context.WithTimeout(context.Background(), webhookBudget)
	defer cancel()

	// The same document token is delivered for every status change, so only
	// signed deliveries enter the event log.
	if payload.Status != onboarding.StatusSigned {
		log.Infof("[Webhook] %s: status %q ignored", payload.Token, payload.Status)
		return c.SendStatus(fiber.StatusNoContent)
	}

	stored := wc.record(payload, rawBody)
	if stored != nil && stored.Completed() {
		log.Infof("[Webhook] %s already processed (%s), acknowledging duplicate", payload.Token, stored.Terminal)
		return c.SendStatus(fiber.StatusNoContent)
	}

	// Field problems in a signed contract degrade the run, they never reject it.
	payload.SignerWhoSigned.Email = normalize.NormalizeEmail(payload.SignerWhoSigned.Email)
	if err := wc.validate.Struct(payload); err != nil {
		log.Warnf("[Webhook] %s: %s", payload.Token, validationMessage(err))
	}

	if stored != nil {
		if err := wc.events.StartAttempt(stored.ID); err != nil {
			log.Warnf("[Webhook] %s: could not record attempt: %v", payload.Token, err)
		}
	}
	wc.archive(ctx, stored, payload.Token, rawBody)

	outcome, syncErr := wc.sync.Synchronize(ctx, payload.Event())
	terminal := ""
	if outcome != nil {
		terminal = string(outcome.Terminal)
	}
	wc.markProcessed(stored, terminal, syncErr)

	return c.SendStatus(fiber.StatusNoContent)
}

// record stores the delivery. A failing event log never blocks processing;
// the delivery is then handled without token deduplication.
func (wc *WebhookController) record(p models.SignedContractPayload, rawBody []byte) *models.WebhookEvent {
	if wc.events == nil {
		return nil
	}
	_, stored, err := wc.events.CreateIfNotExists(&models.WebhookEvent{
		Provider:    models.ProviderZapSign,
		Token:       p.Token,
		Status:      p.Status,
		Email:       normalize.NormalizeEmail(p.SignerWhoSigned.Email),
		PayloadJSON: string(rawBody),
	})
	if err != nil {
		log.Errorf("[Webhook] %s: failed to persist event: %v", p.Token, err)
		return nil
	}
	return stored
}

func (wc *WebhookController) archive(ctx context.Context, stored *models.WebhookEvent, token string, rawBody []byte) {
	if wc.archiver == nil {
		return
	}
	key, err := wc.archiver.Store(ctx, token, rawBody, time.Now())
	if err != nil {
		log.Warnf("[Archive] %s: %v", token, err)
		return
	}
	if stored != nil {
		if err := wc.events.SetArchiveKey(stored.ID, key); err != nil {
			log.Warnf("[Webhook] %s: could not store archive key: %v", token, err)
		}
	}
}

func (wc *WebhookController) markProcessed(stored *models.WebhookEvent, terminal string, processingErr error) {
	if stored == nil {
		return
	}
	msg := ""
	if processingErr != nil {
		msg = processingErr.Error()
	}
	if err := wc.events.MarkProcessed(stored.ID, terminal, msg); err != nil {
		log.Errorf("[Webhook] %s: failed to mark processed: %v", stored.Token, err)
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}
