package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"os"
)

func shareKey() ([]byte, error) {
	key := os.Getenv("SHARE_TOKEN_KEY")
	if len(key) != 32 {
		return nil, errors.New("SHARE_TOKEN_KEY must be exactly 32 characters")
	}
	return []byte(key), nil
}

// EncryptToken seals a payload into an opaque URL-safe share token.
func EncryptToken(plaintext []byte) (string, error) {
	key, err := shareKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// DecryptToken opens a share token produced by EncryptToken.
func DecryptToken(token string) ([]byte, error) {
	key, err := shareKey()
	if err != nil {
		return nil, err
	}

	ciphertext, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.New("malformed share token")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, errors.New("malformed share token")
	}

	nonce, ciphertext := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, errors.New("invalid share token")
	}
	return plaintext, nil
}
