package credentials

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storelinkhq/storelink-backend/pkg/db/models"
)

func setupCredentialsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	credentials := `
CREATE TABLE IF NOT EXISTS credentials (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  encrypted_token TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (owner_id, store_id)
);`
	require.NoError(t, db.Exec(credentials).Error)
	return db
}

func TestUpsertCreatesThenOverwrites(t *testing.T) {
	db := setupCredentialsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	ownerID := uuid.New()
	storeID := uuid.New()

	seed := &models.Credential{ID: uuid.New(), OwnerID: ownerID, StoreID: storeID, EncryptedToken: "cipher-1"}
	require.NoError(t, db.Create(seed).Error)

	require.NoError(t, repo.Upsert(ctx, ownerID, storeID, "cipher-2"))

	var count int64
	require.NoError(t, db.Model(&models.Credential{}).
		Where("owner_id = ? AND store_id = ?", ownerID, storeID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)

	cred, err := repo.FindByOwnerAndStore(ctx, ownerID, storeID)
	require.NoError(t, err)
	require.Equal(t, "cipher-2", cred.EncryptedToken)
}

func TestUpsertRejectsEmptyToken(t *testing.T) {
	db := setupCredentialsTestDB(t)
	repo := NewRepository(db)

	err := repo.Upsert(context.Background(), uuid.New(), uuid.New(), "")
	require.Error(t, err)
}

func TestFindByOwnerAndStoreMissing(t *testing.T) {
	db := setupCredentialsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByOwnerAndStore(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
