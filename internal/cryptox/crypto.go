// Package cryptox seals small secrets that the client keeps on disk, such
// as persisted session cookies.
//
// A random 32-byte device secret lives in a key file readable only by the
// owner. Purpose-bound AES-256 keys are derived from it with HKDF-SHA256
// and used with AES-GCM. Sealed values are laid out as nonce || ciphertext.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/crypto/hkdf"
)

const SecretSize = 32

var (
	ErrMalformed    = errors.New("sealed value is malformed")
	ErrBadSecretLen = errors.New("device secret has wrong length")
)

// LoadOrCreateSecret returns the device secret stored at path, generating
// and writing a new one (mode 0600) when the file does not exist yet.
func LoadOrCreateSecret(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		if len(b) != SecretSize {
			return nil, fmt.Errorf("%s: %w", path, ErrBadSecretLen)
		}
		return b, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read secret: %w", err)
	}

	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, secret, 0o600); err != nil {
		return nil, fmt.Errorf("write secret: %w", err)
	}
	return secret, nil
}

// DeriveKey expands secret into a 32-byte key bound to purpose.
func DeriveKey(secret []byte, purpose string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(purpose)), key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}

// Sealer encrypts and authenticates values with AES-GCM.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer builds a Sealer from a 16, 24 or 32 byte AES key.
func NewSealer(key []byte) (*Sealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// NewSealerForPurpose derives a purpose-bound key from secret and returns a
// Sealer for it.
func NewSealerForPurpose(secret []byte, purpose string) (*Sealer, error) {
	key, err := DeriveKey(secret, purpose)
	if err != nil {
		return nil, err
	}
	return NewSealer(key)
}

func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n+s.aead.Overhead() {
		return nil, ErrMalformed
	}
	plaintext, err := s.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return plaintext, nil
}
