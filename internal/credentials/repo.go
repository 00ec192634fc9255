package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelinkhq/storelink-backend/pkg/db/models"
)

// Repository handles encrypted credential persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to credential operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes the encrypted token for (owner, store), overwriting any
// existing row in place.
func (r *Repository) Upsert(ctx context.Context, ownerID, storeID uuid.UUID, encryptedToken string) error {
	if encryptedToken == "" {
		return fmt.Errorf("encrypted token is required")
	}

	var existing models.Credential
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND store_id = ?", ownerID, storeID).
		First(&existing).Error
	switch {
	case err == nil:
		return r.db.WithContext(ctx).
			Model(&existing).
			Update("encrypted_token", encryptedToken).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		cred := &models.Credential{
			ID:             uuid.New(),
			OwnerID:        ownerID,
			StoreID:        storeID,
			EncryptedToken: encryptedToken,
		}
		return r.db.WithContext(ctx).Create(cred).Error
	default:
		return err
	}
}

// FindByOwnerAndStore loads the credential row for (owner, store).
func (r *Repository) FindByOwnerAndStore(ctx context.Context, ownerID, storeID uuid.UUID) (*models.Credential, error) {
	var cred models.Credential
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND store_id = ?", ownerID, storeID).
		First(&cred).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}
