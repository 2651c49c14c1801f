package models

import "time"

const ProviderZapSign = "zapsign"

// WebhookEvent stores inbound signed-contract payloads with deduplication
// metadata so redelivered tokens can be acknowledged without re-running.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;uniqueIndex:ux_webhook_events_provider_token,priority:1" json:"provider"`
	Token           string     `gorm:"type:varchar(191);not null;default:'';uniqueIndex:ux_webhook_events_provider_token,priority:2" json:"token"`
	Status          string     `gorm:"type:varchar(50);not null;index" json:"status"`
	Email           string     `gorm:"type:varchar(191);index" json:"email"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	ArchiveKey      string     `gorm:"type:varchar(255)" json:"archive_key,omitempty"`
	Attempts        int        `gorm:"not null;default:0" json:"attempts"`
	Terminal        string     `gorm:"type:varchar(50)" json:"terminal"`
	ProcessedAt     *time.Time `gorm:"default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Completed reports whether a previous run finished without any step error.
func (e *WebhookEvent) Completed() bool {
	return e.ProcessedAt != nil && e.ProcessingError == ""
}
