package signlink

// keys.go reads and writes the service's Ed25519 signing key in JWK format.
// The key files are produced by cmd/keygen; they are not encrypted.

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// GenerateKeyPair generates a new Ed25519 private key.
func GenerateKeyPair() (ed25519.PrivateKey, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}
	return privateKey, nil
}

// WriteKeyPair writes the private and public JWK files for a generated key
// into dir, returning the two file paths.
func WriteKeyPair(privateKey ed25519.PrivateKey, dir, name string) (privatePath, publicPath string, err error) {
	signer, err := NewSigner(privateKey)
	if err != nil {
		return "", "", err
	}

	privatePath = filepath.Join(dir, name+".private.jwk")
	publicPath = filepath.Join(dir, name+".public.jwk")

	privSet := jwk.NewSet()
	if err := privSet.AddKey(signer.privateKey); err != nil {
		return "", "", fmt.Errorf("failed to build private key set: %w", err)
	}
	if err := writeJWKFile(privatePath, privSet); err != nil {
		return "", "", err
	}

	if err := writeJWKFile(publicPath, signer.JWKS()); err != nil {
		return "", "", err
	}

	return privatePath, publicPath, nil
}

func writeJWKFile(path string, set jwk.Set) error {
	jsonBytes, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JWK set: %w", err)
	}
	if err := os.WriteFile(path, jsonBytes, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// readPrivateKeyJWK loads an Ed25519 private key from a JWK (set) file.
func readPrivateKeyJWK(path string) (ed25519.PrivateKey, error) {
	jsonBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}

	jwkSet, err := jwk.Parse(jsonBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWK set: %w", err)
	}
	if jwkSet.Len() == 0 {
		return nil, fmt.Errorf("JWK set is empty")
	}

	jwkKey, ok := jwkSet.Key(0)
	if !ok {
		return nil, fmt.Errorf("failed to get key from JWK set")
	}

	var raw any
	if err := jwk.Export(jwkKey, &raw); err != nil {
		return nil, fmt.Errorf("failed to export key: %w", err)
	}

	privateKey, ok := raw.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("signing key is not an Ed25519 private key")
	}

	return privateKey, nil
}
