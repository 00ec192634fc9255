package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelinkhq/storelink-backend/pkg/db/models"
	pkgerrors "github.com/storelinkhq/storelink-backend/pkg/errors"
	"github.com/storelinkhq/storelink-backend/pkg/vault"
)

type stubCredentialRepo struct {
	rows      map[string]*models.Credential
	upsertErr error
	findErr   error
}

func newStubCredentialRepo() *stubCredentialRepo {
	return &stubCredentialRepo{rows: map[string]*models.Credential{}}
}

func credKey(ownerID, storeID uuid.UUID) string {
	return ownerID.String() + "/" + storeID.String()
}

func (s *stubCredentialRepo) Upsert(ctx context.Context, ownerID, storeID uuid.UUID, encryptedToken string) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.rows[credKey(ownerID, storeID)] = &models.Credential{
		OwnerID:        ownerID,
		StoreID:        storeID,
		EncryptedToken: encryptedToken,
	}
	return nil
}

func (s *stubCredentialRepo) FindByOwnerAndStore(ctx context.Context, ownerID, storeID uuid.UUID) (*models.Credential, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	cred, ok := s.rows[credKey(ownerID, storeID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cred, nil
}

type stubCipher struct {
	encryptErr error
}

func (s stubCipher) Encrypt(plaintext string) (string, error) {
	if s.encryptErr != nil {
		return "", s.encryptErr
	}
	return "enc:" + plaintext, nil
}

func (s stubCipher) Decrypt(ciphertext string) (string, error) {
	if len(ciphertext) < 4 || ciphertext[:4] != "enc:" {
		return "", vault.ErrCorruptCredential
	}
	return ciphertext[4:], nil
}

func TestStoreAndTokenRoundTrip(t *testing.T) {
	repo := newStubCredentialRepo()
	svc, err := NewService(repo, stubCipher{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	ownerID := uuid.New()
	storeID := uuid.New()
	if err := svc.Store(context.Background(), ownerID, storeID, "shpat_abc"); err != nil {
		t.Fatalf("store credential: %v", err)
	}

	stored := repo.rows[credKey(ownerID, storeID)]
	if stored == nil {
		t.Fatal("expected credential row")
	}
	if stored.EncryptedToken == "shpat_abc" {
		t.Fatal("token must not be stored in plaintext")
	}

	token, err := svc.Token(context.Background(), ownerID, storeID)
	if err != nil {
		t.Fatalf("fetch token: %v", err)
	}
	if token != "shpat_abc" {
		t.Fatalf("expected original token, got %q", token)
	}
}

func TestStoreOverwritesExistingCredential(t *testing.T) {
	repo := newStubCredentialRepo()
	svc, _ := NewService(repo, stubCipher{})

	ownerID := uuid.New()
	storeID := uuid.New()
	ctx := context.Background()
	if err := svc.Store(ctx, ownerID, storeID, "first"); err != nil {
		t.Fatalf("store first: %v", err)
	}
	if err := svc.Store(ctx, ownerID, storeID, "second"); err != nil {
		t.Fatalf("store second: %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected one row, got %d", len(repo.rows))
	}

	token, err := svc.Token(ctx, ownerID, storeID)
	if err != nil {
		t.Fatalf("fetch token: %v", err)
	}
	if token != "second" {
		t.Fatalf("expected overwritten token, got %q", token)
	}
}

func TestStoreRejectsEmptyToken(t *testing.T) {
	svc, _ := NewService(newStubCredentialRepo(), stubCipher{})
	err := svc.Store(context.Background(), uuid.New(), uuid.New(), "")
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTokenMissingCredential(t *testing.T) {
	svc, _ := NewService(newStubCredentialRepo(), stubCipher{})
	_, err := svc.Token(context.Background(), uuid.New(), uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTokenSurfacesCorruptCiphertext(t *testing.T) {
	repo := newStubCredentialRepo()
	ownerID := uuid.New()
	storeID := uuid.New()
	repo.rows[credKey(ownerID, storeID)] = &models.Credential{
		OwnerID:        ownerID,
		StoreID:        storeID,
		EncryptedToken: "garbage",
	}

	svc, _ := NewService(repo, stubCipher{})
	_, err := svc.Token(context.Background(), ownerID, storeID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeCorruptCredential) {
		t.Fatalf("expected corrupt credential, got %v", err)
	}
}

func TestTokenRepoFailure(t *testing.T) {
	repo := newStubCredentialRepo()
	repo.findErr = errors.New("connection refused")
	svc, _ := NewService(repo, stubCipher{})
	_, err := svc.Token(context.Background(), uuid.New(), uuid.New())
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
