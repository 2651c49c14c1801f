package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/mikaelzzzz/OnboardingKarol/app/models"
)

// WebhookEventRepository defines the persistence of inbound webhook deliveries
type WebhookEventRepository interface {
	CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	GetByToken(provider, token string) (*models.WebhookEvent, error)
	StartAttempt(id uint) error
	SetArchiveKey(id uint, key string) error
	MarkProcessed(id uint, terminal, processingError string) error
}

// ContractScheduleRepository defines the contract end-date work queue
type ContractScheduleRepository interface {
	Create(schedules []*models.ContractSchedule) error
	GetByUUID(uuid string) (*models.ContractSchedule, error)
	ListPending(limit int) ([]models.ContractSchedule, error)
	Finalize(schedule *models.ContractSchedule, at time.Time) error
	CountByStatus(status string) (int64, error)
}

// Repositories holds all repository instances
type Repositories struct {
	WebhookEvent     WebhookEventRepository
	ContractSchedule ContractScheduleRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		WebhookEvent:     NewWebhookEventRepository(db),
		ContractSchedule: NewContractScheduleRepository(db),
	}
}
