package models

import (
	"encoding/json"
	"time"
)

const (
	ScheduleStatusPending   = "pending"
	ScheduleStatusFinalized = "finalized"
)

// ContractSchedule is a contract waiting for (or holding) its computed end
// date. Label lists are stored as JSON arrays.
type ContractSchedule struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UUID            string     `gorm:"type:char(36);uniqueIndex" json:"uuid"`
	Email           string     `gorm:"type:varchar(191);index" json:"email"`
	StartDate       time.Time  `gorm:"type:date;not null" json:"start_date"`
	DurationMonths  int        `gorm:"not null" json:"duration_months"`
	ClassWeekday    int        `gorm:"not null" json:"class_weekday"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	EndDate         *time.Time `gorm:"type:date" json:"end_date,omitempty"`
	ExtraDays       int        `json:"extra_days"`
	BlackoutsJSON   string     `gorm:"type:text" json:"-"`
	HolidaysJSON    string     `gorm:"type:text" json:"-"`
	CalendarVersion string     `gorm:"type:varchar(20)" json:"calendar_version,omitempty"`
	FinalizedAt     *time.Time `json:"finalized_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// SetLabels stores both label lists. Nil lists are stored as [].
func (s *ContractSchedule) SetLabels(blackouts, holidays []string) {
	s.BlackoutsJSON = encodeLabels(blackouts)
	s.HolidaysJSON = encodeLabels(holidays)
}

func (s *ContractSchedule) Blackouts() []string {
	return decodeLabels(s.BlackoutsJSON)
}

func (s *ContractSchedule) Holidays() []string {
	return decodeLabels(s.HolidaysJSON)
}

func encodeLabels(labels []string) string {
	if labels == nil {
		labels = []string{}
	}
	b, _ := json.Marshal(labels)
	return string(b)
}

func decodeLabels(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	_ = json.Unmarshal([]byte(raw), &out)
	return out
}
