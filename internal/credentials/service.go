package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storelinkhq/storelink-backend/pkg/db/models"
	pkgerrors "github.com/storelinkhq/storelink-backend/pkg/errors"
)

type credentialRepository interface {
	Upsert(ctx context.Context, ownerID, storeID uuid.UUID, encryptedToken string) error
	FindByOwnerAndStore(ctx context.Context, ownerID, storeID uuid.UUID) (*models.Credential, error)
}

type tokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Service stores and retrieves platform access tokens, encrypting at rest.
// Plaintext tokens are decrypted per call and never cached.
type Service interface {
	Store(ctx context.Context, ownerID, storeID uuid.UUID, rawToken string) error
	Token(ctx context.Context, ownerID, storeID uuid.UUID) (string, error)
}

type service struct {
	repo   credentialRepository
	cipher tokenCipher
}

// NewService builds a credential service from the repository and cipher.
func NewService(repo credentialRepository, cipher tokenCipher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("credential repository required")
	}
	if cipher == nil {
		return nil, fmt.Errorf("token cipher required")
	}
	return &service{repo: repo, cipher: cipher}, nil
}

func (s *service) Store(ctx context.Context, ownerID, storeID uuid.UUID, rawToken string) error {
	if rawToken == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access token is required")
	}
	encrypted, err := s.cipher.Encrypt(rawToken)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encrypt credential")
	}
	if err := s.repo.Upsert(ctx, ownerID, storeID, encrypted); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist credential")
	}
	return nil
}

func (s *service) Token(ctx context.Context, ownerID, storeID uuid.UUID) (string, error) {
	cred, err := s.repo.FindByOwnerAndStore(ctx, ownerID, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "credential not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load credential")
	}
	plaintext, err := s.cipher.Decrypt(cred.EncryptedToken)
	if err != nil {
		// Decrypt already classifies corrupt ciphertext.
		return "", err
	}
	return plaintext, nil
}
