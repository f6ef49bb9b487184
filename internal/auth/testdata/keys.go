// Package testdata builds throwaway Ed25519 keys for auth tests.
package testdata

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
)

const TestUserID = "test-owner"

// NewKeyPair returns a fresh private key and its public key as PKIX PEM.
func NewKeyPair() (ed25519.PrivateKey, string, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, "", err
	}

	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, "", err
	}

	block := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return priv, string(block), nil
}

// Sign returns the base64 signature of challenge, as sent in the auth header.
func Sign(priv ed25519.PrivateKey, challenge []byte) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(priv, challenge))
}
