package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	encryptedPrefix = "enc:"
	nonceSize       = 16
	tagSize         = 16
	keyHexLength    = 64
)

var (
	// ErrKeyMissing is returned when an encrypted value is read without a configured key
	ErrKeyMissing = errors.New("ENCRYPTION_KEY required to decrypt tokens")
	// ErrInvalidKey is returned for keys that are not 32 bytes of hex
	ErrInvalidKey = errors.New("encryption key must be 64 hex characters")
	// ErrMalformedCiphertext is returned for enc: values that cannot be parsed
	ErrMalformedCiphertext = errors.New("malformed encrypted token")
)

// TokenCipher encrypts OAuth tokens at rest with AES-256-GCM.
// Without a key it passes values through unchanged.
type TokenCipher struct {
	aead cipher.AEAD
}

// NewTokenCipher creates a cipher from a hex key. An empty key disables encryption.
func NewTokenCipher(hexKey string) (*TokenCipher, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return &TokenCipher{}, nil
	}
	if len(hexKey) != keyHexLength {
		return nil, ErrInvalidKey
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, ErrInvalidKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create block cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &TokenCipher{aead: aead}, nil
}

// Enabled reports whether a key is configured
func (c *TokenCipher) Enabled() bool {
	return c.aead != nil
}

// Encrypt returns enc:<iv>:<ciphertext>:<tag> in hex, or the plaintext when disabled
func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	if c.aead == nil || plaintext == "" {
		return plaintext, nil
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]
	return encryptedPrefix + hex.EncodeToString(nonce) + ":" + hex.EncodeToString(ct) + ":" + hex.EncodeToString(tag), nil
}

// Decrypt reverses Encrypt. Values without the enc: prefix are legacy plaintext.
func (c *TokenCipher) Decrypt(value string) (string, error) {
	if !strings.HasPrefix(value, encryptedPrefix) {
		return value, nil
	}
	if c.aead == nil {
		return "", ErrKeyMissing
	}

	parts := strings.Split(strings.TrimPrefix(value, encryptedPrefix), ":")
	if len(parts) != 3 {
		return "", ErrMalformedCiphertext
	}
	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSize {
		return "", ErrMalformedCiphertext
	}
	ct, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", ErrMalformedCiphertext
	}
	tag, err := hex.DecodeString(parts[2])
	if err != nil || len(tag) != tagSize {
		return "", ErrMalformedCiphertext
	}

	plain, err := c.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}
	return string(plain), nil
}
