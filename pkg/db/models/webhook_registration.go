package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// WebhookRegistration tracks a platform-side webhook subscription created for
// a store. Rows are subordinate to the store and removed best-effort when the
// store is disconnected.
type WebhookRegistration struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID           uuid.UUID      `gorm:"column:store_id;type:uuid;not null;index"`
	PlatformWebhookID int64          `gorm:"column:platform_webhook_id;not null"`
	Topics            pq.StringArray `gorm:"column:topics;type:text[]"`
	Address           string         `gorm:"column:address;not null"`
	CreatedAt         time.Time      `gorm:"column:created_at;autoCreateTime"`
}
