package permissions

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelinkhq/storelink-backend/pkg/db/models"
)

// Repository appends permission audit rows. The core never reads them back;
// audit review happens out of band.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to audit writes.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Append inserts one audit row.
func (r *Repository) Append(ctx context.Context, entry *models.PermissionAuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(entry).Error
}
