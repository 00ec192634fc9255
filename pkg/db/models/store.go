package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/storelinkhq/storelink-backend/pkg/enums"
	"github.com/storelinkhq/storelink-backend/pkg/types"
)

// Store represents one connected external-platform shop. A single owner may
// connect many stores; at most one active store per owner is primary.
type Store struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID `gorm:"column:owner_id;type:uuid;not null;index:idx_stores_owner_domain,unique"`
	Domain      string    `gorm:"column:domain;not null;index:idx_stores_owner_domain,unique"`
	DisplayName string    `gorm:"column:display_name;not null"`

	IsActive  bool `gorm:"column:is_active;not null;default:true"`
	IsPrimary bool `gorm:"column:is_primary;not null;default:false"`

	SyncStatus enums.SyncStatus    `gorm:"column:sync_status;not null;default:'never'"`
	LastSyncAt *time.Time          `gorm:"column:last_sync_at"`
	SyncError  *string             `gorm:"column:sync_error"`
	Snapshot   *types.SyncSnapshot `gorm:"column:sync_snapshot;type:jsonb"`

	PlatformID int64         `gorm:"column:platform_id"`
	Currency   string        `gorm:"column:currency"`
	Timezone   string        `gorm:"column:timezone"`
	PlanTier   string        `gorm:"column:plan_tier"`
	Country    string        `gorm:"column:country"`
	Address    types.Address `gorm:"column:address;type:jsonb"`

	Permissions types.Permissions `gorm:"column:permissions;type:jsonb;not null"`
	AgentAccess types.AgentAccess `gorm:"column:agent_access;type:jsonb;not null"`

	ConnectedAt time.Time `gorm:"column:connected_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
