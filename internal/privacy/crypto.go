// Package privacy keeps personal data out of logs, the model, and plaintext storage.
package privacy

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	KeyIterations = 390_000
	KeySize       = 32
	SaltSize      = 16
	nonceSize     = 12
)

// DeriveKey stretches passphrase with PBKDF2-HMAC-SHA256. A nil salt is
// replaced by a fresh random one; the salt used is returned.
func DeriveKey(passphrase string, salt []byte) (key, usedSalt []byte, err error) {
	if passphrase == "" {
		return nil, nil, errors.New("empty passphrase")
	}
	if salt == nil {
		salt = make([]byte, SaltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, fmt.Errorf("salt: %w", err)
		}
	}
	return pbkdf2.Key([]byte(passphrase), salt, KeyIterations, KeySize, sha256.New), salt, nil
}

// Cipher seals strings with AES-256-GCM. Output is base64(nonce || ciphertext).
type Cipher struct {
	aead cipher.AEAD
}

func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt returns "" for "".
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(blob) < nonceSize {
		return "", errors.New("ciphertext too short")
	}
	pt, err := c.aead.Open(nil, blob[:nonceSize], blob[nonceSize:], nil)
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	return string(pt), nil
}
