package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/mikaelzzzz/OnboardingKarol/app/models"
	"github.com/mikaelzzzz/OnboardingKarol/internal/pkg/schedule"
)

type ScheduleController struct {
	svc      *schedule.Service
	validate *validator.Validate
}

func NewScheduleController(svc *schedule.Service) *ScheduleController {
	return &ScheduleController{svc: svc, validate: validator.New()}
}

// HandleCreate queues pending contract records.
func (sc *ScheduleController) HandleCreate(c *fiber.Ctx) error {
	var batch models.ContractScheduleBatch
	if err := c.BodyParser(&batch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload", "message": err.Error()})
	}
	if err := sc.validate.Struct(batch); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": validationMessage(err)})
	}

	records, err := sc.svc.Enqueue(batch.Records)
	if err != nil {
		var inputErr *schedule.InputError
		if errors.As(err, &inputErr) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": "validation_failed", "message": inputErr.Error()})
		}
		log.Errorf("[ContractDate] Failed to queue records: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"records": records})
}

// HandleFinalize computes and stores end dates for a batch of pending records.
func (sc *ScheduleController) HandleFinalize(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", schedule.DefaultBatchSize)
	report, err := sc.svc.FinalizePending(limit)
	if err != nil {
		log.Errorf("[ContractDate] Finalize failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error"})
	}
	return c.JSON(report)
}

// HandlePreview computes an end date without storing it.
func (sc *ScheduleController) HandlePreview(c *fiber.Ctx) error {
	months := c.QueryInt("months", -1)
	if months < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": "months must be a non-negative integer"})
	}
	rec, err := sc.svc.Preview(c.Query("start"), months, c.Query("weekday"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_request", "message": err.Error()})
	}
	return c.JSON(rec)
}
