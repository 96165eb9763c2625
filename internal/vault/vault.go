// Package vault provides reversible AES-256-GCM encryption for stored
// secrets. Ciphertext carries the 16-byte authentication tag appended,
// and all outputs are base64-encoded for storage.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

// ErrIntegrity is returned when the authentication tag does not verify,
// i.e. the ciphertext was tampered with or the key/nonce is wrong.
var ErrIntegrity = errors.New("vault: ciphertext integrity check failed")

// Secret is the {ciphertext, nonce, key} triple produced by Encrypt.
// Ciphertext includes the trailing authentication tag.
type Secret struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
	Key        string `json:"key"`
}

// Encrypt seals the given secret with AES-256-GCM. A fresh 96-bit nonce
// is generated on every call; when key is nil a fresh 256-bit key is
// generated as well. Encryption is therefore non-deterministic.
func Encrypt(secret string, key []byte) (Secret, error) {
	if key == nil {
		key = make([]byte, KeySize)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return Secret{}, fmt.Errorf("generate key: %w", err)
		}
	} else if len(key) != KeySize {
		return Secret{}, fmt.Errorf("vault: key must be %d bytes, got %d", KeySize, len(key))
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return Secret{}, fmt.Errorf("generate nonce: %w", err)
	}

	aead, err := newAEAD(key)
	if err != nil {
		return Secret{}, err
	}

	// Seal appends the authentication tag to the ciphertext.
	sealed := aead.Seal(nil, nonce, []byte(secret), nil)

	return Secret{
		Ciphertext: base64.StdEncoding.EncodeToString(sealed),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Key:        base64.StdEncoding.EncodeToString(key),
	}, nil
}

// Decrypt opens a sealed secret. The trailing TagSize bytes of the
// ciphertext are the authentication tag; if it does not verify the
// function fails with ErrIntegrity and no plaintext is returned.
func Decrypt(ciphertext, nonce, key string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	nonceRaw, err := base64.StdEncoding.DecodeString(nonce)
	if err != nil {
		return "", fmt.Errorf("decode nonce: %w", err)
	}
	keyRaw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("decode key: %w", err)
	}

	if len(sealed) < TagSize || len(nonceRaw) != NonceSize {
		return "", ErrIntegrity
	}
	if len(keyRaw) != KeySize {
		return "", fmt.Errorf("vault: key must be %d bytes, got %d", KeySize, len(keyRaw))
	}

	aead, err := newAEAD(keyRaw)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, nonceRaw, sealed, nil)
	if err != nil {
		return "", ErrIntegrity
	}
	return string(plaintext), nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create AEAD: %w", err)
	}
	return aead, nil
}
