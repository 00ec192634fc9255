package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/storelinkhq/storelink-backend/pkg/enums"
)

// PermissionAuditEntry is an append-only record of one permission decision.
// The core only writes these rows; review tooling reads them out of band.
type PermissionAuditEntry struct {
	ID         uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID    uuid.UUID        `gorm:"column:owner_id;type:uuid;not null;index"`
	StoreID    uuid.UUID        `gorm:"column:store_id;type:uuid;not null;index"`
	Permission enums.Permission `gorm:"column:permission;not null"`
	AgentID    *string          `gorm:"column:agent_id"`
	Allowed    bool             `gorm:"column:allowed;not null"`
	Reason     *string          `gorm:"column:reason"`
	CheckedAt  time.Time        `gorm:"column:checked_at;autoCreateTime"`
}

// TableName keeps the audit rows in the log-style table.
func (PermissionAuditEntry) TableName() string {
	return "permission_audit_log"
}
