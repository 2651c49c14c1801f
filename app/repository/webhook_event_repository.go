package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mikaelzzzz/OnboardingKarol/app/models"
)

type webhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepository{db: db}
}

// CreateIfNotExists inserts the event unless (provider, token) is already
// stored. It returns whether a row was created and the stored row.
func (r *webhookEventRepository) CreateIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "token"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	stored, err := r.GetByToken(event.Provider, event.Token)
	if err != nil {
		return false, nil, err
	}
	return created, stored, nil
}

func (r *webhookEventRepository) GetByToken(provider, token string) (*models.WebhookEvent, error) {
	var stored models.WebhookEvent
	if err := r.db.Where("provider = ? AND token = ?", provider, token).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *webhookEventRepository) StartAttempt(id uint) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":         gorm.Expr("attempts + ?", 1),
			"processed_at":     nil,
			"processing_error": "",
		}).Error
}

func (r *webhookEventRepository) SetArchiveKey(id uint, key string) error {
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Update("archive_key", key).Error
}

func (r *webhookEventRepository) MarkProcessed(id uint, terminal, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"terminal":         terminal,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
