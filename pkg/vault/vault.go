package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"

	"github.com/storelinkhq/storelink-backend/pkg/config"
	pkgerrors "github.com/storelinkhq/storelink-backend/pkg/errors"
)

const keySize = 32

// ErrCorruptCredential signals ciphertext that was not produced by this vault
// under the current key. Callers must treat it as "reconnect required", never
// as retryable.
var ErrCorruptCredential = pkgerrors.New(pkgerrors.CodeCorruptCredential, "credential ciphertext is corrupt")

// Vault encrypts and decrypts platform access tokens at rest with AES-256-GCM.
// The data key is derived from the configured master secret via HKDF so the
// raw secret never touches the cipher directly.
type Vault struct {
	aead cipher.AEAD
}

// New derives the data key and prepares the AEAD primitive.
func New(cfg config.VaultConfig) (*Vault, error) {
	secret := strings.TrimSpace(cfg.MasterSecret)
	if secret == "" {
		return nil, fmt.Errorf("vault master secret is required")
	}

	key := make([]byte, keySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(cfg.KeyContext))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive vault key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return &Vault{aead: aead}, nil
}

// Encrypt seals the plaintext token and returns a base64 envelope of
// nonce || ciphertext.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, v.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := v.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a ciphertext produced by Encrypt. Any envelope that fails to
// decode or authenticate yields ErrCorruptCredential.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", ErrCorruptCredential
	}
	if len(sealed) < v.aead.NonceSize() {
		return "", ErrCorruptCredential
	}

	nonce, payload := sealed[:v.aead.NonceSize()], sealed[v.aead.NonceSize():]
	plaintext, err := v.aead.Open(nil, nonce, payload, nil)
	if err != nil {
		return "", ErrCorruptCredential
	}
	return string(plaintext), nil
}
