package models

import (
	"time"

	"github.com/google/uuid"
)

// Credential stores the encrypted platform access token for a store. One row
// per (owner, store); reconnecting overwrites in place, never appends.
type Credential struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID        uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index:idx_credentials_owner_store,unique"`
	StoreID        uuid.UUID `gorm:"column:store_id;type:uuid;not null;index:idx_credentials_owner_store,unique"`
	EncryptedToken string    `gorm:"column:encrypted_token;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
