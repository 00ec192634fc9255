package stores

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelinkhq/storelink-backend/pkg/db/models"
)

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	if store.ID == uuid.Nil {
		store.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(store).Error
}

// FindByOwnerAndID loads a store scoped to its owner.
func (r *Repository) FindByOwnerAndID(ctx context.Context, ownerID, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwnerAndDomain loads a store by its unique (owner, domain) pair,
// regardless of active flag.
func (r *Repository) FindByOwnerAndDomain(ctx context.Context, ownerID uuid.UUID, domain string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND domain = ?", ownerID, domain).
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByOwner returns all stores for the owner ordered by connection time.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("connected_at ASC, id ASC").
		Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// CountByOwner counts all stores for the owner.
func (r *Repository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Store{}).
		Where("owner_id = ?", ownerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Update saves the provided store.
func (r *Repository) Update(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.db.WithContext(ctx).Save(store).Error
}

// ClearPrimaryWithTx unsets is_primary on every store of the owner.
func (r *Repository) ClearPrimaryWithTx(tx *gorm.DB, ownerID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Model(&models.Store{}).
		Where("owner_id = ? AND is_primary", ownerID).
		Update("is_primary", false).Error
}

// SetPrimaryWithTx marks the target store primary. Returns the number of rows
// touched so callers can detect ownership mismatch.
func (r *Repository) SetPrimaryWithTx(tx *gorm.DB, ownerID, storeID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	res := tx.Model(&models.Store{}).
		Where("id = ? AND owner_id = ?", storeID, ownerID).
		Update("is_primary", true)
	return res.RowsAffected, res.Error
}

// MostRecentlyConnectedWithTx returns the newest remaining active store for
// the owner, excluding the given id. Ties break on id for determinism.
func (r *Repository) MostRecentlyConnectedWithTx(tx *gorm.DB, ownerID, excludeID uuid.UUID) (*models.Store, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var store models.Store
	if err := tx.
		Where("owner_id = ? AND id <> ? AND is_active", ownerID, excludeID).
		Order("connected_at DESC, id DESC").
		First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// DeleteWithTx removes a store row using the provided transaction.
func (r *Repository) DeleteWithTx(tx *gorm.DB, storeID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Where("id = ?", storeID).Delete(&models.Store{}).Error
}

// DeleteCredentialsWithTx removes the credential rows for a store.
func (r *Repository) DeleteCredentialsWithTx(tx *gorm.DB, storeID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Where("store_id = ?", storeID).Delete(&models.Credential{}).Error
}

// FindWebhooksByStore lists platform webhook registrations for a store.
func (r *Repository) FindWebhooksByStore(ctx context.Context, storeID uuid.UUID) ([]models.WebhookRegistration, error) {
	var hooks []models.WebhookRegistration
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Find(&hooks).Error; err != nil {
		return nil, err
	}
	return hooks, nil
}

// DeleteWebhooksWithTx removes the subordinate webhook rows for a store.
func (r *Repository) DeleteWebhooksWithTx(tx *gorm.DB, storeID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Where("store_id = ?", storeID).Delete(&models.WebhookRegistration{}).Error
}
