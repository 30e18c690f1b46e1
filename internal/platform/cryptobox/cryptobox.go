// Package cryptobox seals interface configurations before they reach the
// database. Payloads are small JSON documents; keys are per-user.
package cryptobox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	pkgerrors "github.com/attunelabs/attune-backend/internal/pkg/errors"
)

const (
	// KeySize selects AES-256.
	KeySize = 32
	// NonceSize is deliberately 16 bytes; sealed payloads are not
	// interchangeable with the 12-byte GCM default.
	NonceSize = 16
	// SaltSize sizes the random per-user KDF salt.
	SaltSize = 16

	kdfIterations = 100_000
)

// GenerateKey returns a random 32-byte key for users without a passphrase.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	return key, nil
}

// GenerateSalt returns a random KDF salt. The salt is stored alongside the
// ciphertext so the key can be re-derived on read.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey stretches a user passphrase into an AES-256 key with
// PBKDF2-SHA256.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, kdfIterations, KeySize, sha256.New)
}

// Seal encrypts plaintext with AES-256-GCM under a fresh random nonce and
// returns nonce||ciphertext. The GCM tag rides at the tail of ciphertext.
func Seal(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Open authenticates and decrypts a payload produced by Seal. Any failure
// collapses to ErrDecryptFailed; callers never learn whether the nonce, tag,
// or ciphertext was at fault.
func Open(key, payload []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, pkgerrors.ErrDecryptFailed
	}
	if len(payload) < NonceSize+gcm.Overhead() {
		return nil, pkgerrors.ErrDecryptFailed
	}
	nonce, ciphertext := payload[:NonceSize], payload[NonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, pkgerrors.ErrDecryptFailed
	}
	return plaintext, nil
}

// SealJSON marshals v and seals the result.
func SealJSON(key []byte, v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("seal json: %w", err)
	}
	return Seal(key, raw)
}

// OpenJSON opens a payload and unmarshals it into out.
func OpenJSON(key, payload []byte, out interface{}) error {
	raw, err := Open(key, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.ErrDecryptFailed
	}
	return nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("cryptobox: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cryptobox: %w", err)
	}
	return cipher.NewGCMWithNonceSize(block, NonceSize)
}
