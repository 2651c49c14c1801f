package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/mikaelzzzz/OnboardingKarol/app/models"
)

type contractScheduleRepository struct {
	db *gorm.DB
}

func NewContractScheduleRepository(db *gorm.DB) ContractScheduleRepository {
	return &contractScheduleRepository{db: db}
}

func (r *contractScheduleRepository) Create(schedules []*models.ContractSchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return r.db.Create(schedules).Error
}

func (r *contractScheduleRepository) GetByUUID(uuid string) (*models.ContractSchedule, error) {
	var s models.ContractSchedule
	if err := r.db.Where("uuid = ?", uuid).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListPending returns the oldest pending records first.
func (r *contractScheduleRepository) ListPending(limit int) ([]models.ContractSchedule, error) {
	var out []models.ContractSchedule
	err := r.db.Where("status = ?", models.ScheduleStatusPending).
		Order("id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Finalize writes the computed fields and flips the status, only if the
// record is still pending.
func (r *contractScheduleRepository) Finalize(s *models.ContractSchedule, at time.Time) error {
	tx := r.db.Model(&models.ContractSchedule{}).
		Where("id = ? AND status = ?", s.ID, models.ScheduleStatusPending).
		Updates(map[string]interface{}{
			"end_date":         s.EndDate,
			"extra_days":       s.ExtraDays,
			"blackouts_json":   s.BlackoutsJSON,
			"holidays_json":    s.HolidaysJSON,
			"calendar_version": s.CalendarVersion,
			"status":           models.ScheduleStatusFinalized,
			"finalized_at":     at,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	s.Status = models.ScheduleStatusFinalized
	s.FinalizedAt = &at
	return nil
}

func (r *contractScheduleRepository) CountByStatus(status string) (int64, error) {
	var n int64
	err := r.db.Model(&models.ContractSchedule{}).Where("status = ?", status).Count(&n).Error
	return n, err
}
