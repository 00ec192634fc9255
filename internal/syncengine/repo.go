package syncengine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelinkhq/storelink-backend/pkg/db/models"
	"github.com/storelinkhq/storelink-backend/pkg/enums"
	"github.com/storelinkhq/storelink-backend/pkg/types"
)

// Repository mutates the sync columns on the stores table.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to sync state transitions.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// BeginSync flips the store into syncing unless a sync is already in flight.
// The conditional update is the concurrency gate: zero rows affected means
// another worker holds the slot (or the store is gone) and the caller backs off.
func (r *Repository) BeginSync(ctx context.Context, storeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ? AND sync_status <> ?", storeID, enums.SyncStatusSyncing).
		Updates(map[string]any{
			"sync_status": enums.SyncStatusSyncing,
			"sync_error":  nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CompleteSync records a successful run: status, snapshot and last_sync_at.
func (r *Repository) CompleteSync(ctx context.Context, storeID uuid.UUID, snapshot types.SyncSnapshot) error {
	return r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		Updates(map[string]any{
			"sync_status":   enums.SyncStatusSynced,
			"sync_snapshot": snapshot,
			"last_sync_at":  time.Now().UTC(),
		}).Error
}

// FailSync records a failed run. last_sync_at keeps its previous value.
func (r *Repository) FailSync(ctx context.Context, storeID uuid.UUID, message string) error {
	return r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("id = ?", storeID).
		Updates(map[string]any{
			"sync_status": enums.SyncStatusError,
			"sync_error":  message,
		}).Error
}
