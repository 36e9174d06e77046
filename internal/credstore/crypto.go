package credstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Box encrypts and decrypts credential blobs with AES-256-GCM. The key
// is derived from the configured secret by SHA-256, so operators can use
// any non-empty passphrase. GCM authenticates the ciphertext, making
// tampering and truncation detectable on open.
type Box struct {
	gcm cipher.AEAD
}

// NewBox derives the AES key from secret and prepares the AEAD.
func NewBox(secret string) (*Box, error) {
	if secret == "" {
		return nil, fmt.Errorf("credstore: encryption secret must not be empty")
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("credstore: create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("credstore: create GCM: %w", err)
	}
	return &Box{gcm: gcm}, nil
}

// Seal encrypts plaintext with a fresh random nonce and returns
// hex(nonce || ciphertext).
func (b *Box) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, b.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("credstore: generate nonce: %w", err)
	}
	sealed := b.gcm.Seal(nonce, nonce, plaintext, nil)
	return hex.EncodeToString(sealed), nil
}

// Open decrypts a blob produced by Seal. Any failure, wrong key,
// truncation, or tampering, returns an error the store maps to "absent".
func (b *Box) Open(blob string) ([]byte, error) {
	raw, err := hex.DecodeString(blob)
	if err != nil {
		return nil, fmt.Errorf("credstore: decode blob: %w", err)
	}
	nonceSize := b.gcm.NonceSize()
	if len(raw) < nonceSize {
		return nil, fmt.Errorf("credstore: blob too short")
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := b.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("credstore: decrypt: %w", err)
	}
	return plaintext, nil
}
