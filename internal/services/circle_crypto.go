package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"

	"github.com/arcwardens/outreach-backend/internal/apperrors"
	"github.com/arcwardens/outreach-backend/internal/config"
)

// EntitySecretCiphertext produces a fresh Circle-compatible entity
// secret ciphertext: the stored entity secret encrypted with Circle's
// RSA public key under OAEP/SHA-256. OAEP is randomized, so every call
// yields a different ciphertext as Circle requires.
func EntitySecretCiphertext(cfg config.CircleConfig) (string, error) {
	if cfg.EntitySecretBase64 == "" {
		return "", apperrors.New(apperrors.NotConfigured, "CIRCLE_ENTITY_SECRET_BASE64 is not configured")
	}
	if cfg.PublicKeyPEM == "" {
		return "", apperrors.New(apperrors.NotConfigured, "CIRCLE_PUBLIC_KEY_PEM is not configured")
	}

	secret, err := base64.StdEncoding.DecodeString(cfg.EntitySecretBase64)
	if err != nil {
		return "", fmt.Errorf("failed to decode entity secret: %w", err)
	}

	block, _ := pem.Decode([]byte(cfg.PublicKeyPEM))
	if block == nil {
		return "", fmt.Errorf("failed to decode circle public key PEM")
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return "", fmt.Errorf("failed to parse circle public key: %w", err)
	}
	publicKey, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return "", fmt.Errorf("circle public key is not RSA")
	}

	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, publicKey, secret, nil)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt entity secret: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
