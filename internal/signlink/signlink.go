// Package signlink mints and verifies the signed tokens embedded in
// per-recipient signing links.
//
// Every issued signature request gets an opaque uuid token (the database
// key). The link additionally carries a JWS over {requestId, email, role}
// signed with the service's Ed25519 key, so the signing page can check a
// link's integrity offline against /.well-known/jwks.json before hitting
// the API.
package signlink

import (
	"crypto"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jws"
)

// Role identifies what a link token grants.
type Role string

const (
	// RoleSigner links open the signing experience.
	RoleSigner Role = "signer"

	// RoleCC links open the read-only copy.
	RoleCC Role = "cc"
)

// Claims is the signed payload of a link token.
type Claims struct {
	// RequestID is the opaque uuid token issued for the recipient's
	// signature-request (or CC) record.
	RequestID string `json:"requestId"`

	// Email is the recipient the link was issued to.
	Email string `json:"email"`

	Role Role `json:"role"`

	// IssuedAt is when the token was minted (unix seconds).
	IssuedAt int64 `json:"iat"`
}

// Signer signs and verifies link tokens with the service's Ed25519 key.
type Signer struct {
	privateKey jwk.Key
	publicKey  jwk.Key
	keyID      string
}

// NewSigner wraps an Ed25519 private key. The key id is the RFC 7638
// thumbprint of the public key.
func NewSigner(privateKey ed25519.PrivateKey) (*Signer, error) {
	key, err := jwk.Import(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to import private key: %w", err)
	}

	pub, err := jwk.PublicKeyOf(key)
	if err != nil {
		return nil, fmt.Errorf("failed to derive public key: %w", err)
	}

	thumbprint, err := pub.Thumbprint(crypto.SHA256)
	if err != nil {
		return nil, fmt.Errorf("failed to compute key thumbprint: %w", err)
	}
	keyID := base64.RawURLEncoding.EncodeToString(thumbprint)

	for _, k := range []jwk.Key{key, pub} {
		if err := k.Set(jwk.KeyIDKey, keyID); err != nil {
			return nil, fmt.Errorf("failed to set key ID: %w", err)
		}
		if err := k.Set(jwk.AlgorithmKey, jwa.EdDSA()); err != nil {
			return nil, fmt.Errorf("failed to set algorithm: %w", err)
		}
		if err := k.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
			return nil, fmt.Errorf("failed to set key usage: %w", err)
		}
	}

	return &Signer{privateKey: key, publicKey: pub, keyID: keyID}, nil
}

// NewSignerFromFile loads the Ed25519 private JWK written by cmd/keygen.
func NewSignerFromFile(path string) (*Signer, error) {
	privateKey, err := readPrivateKeyJWK(path)
	if err != nil {
		return nil, err
	}
	return NewSigner(privateKey)
}

// KeyID returns the kid embedded in minted tokens.
func (s *Signer) KeyID() string { return s.keyID }

// JWKS returns the public key set served at /.well-known/jwks.json.
func (s *Signer) JWKS() jwk.Set {
	set := jwk.NewSet()
	_ = set.AddKey(s.publicKey)
	return set
}

// Mint signs the claims into a JWS compact serialization.
func (s *Signer) Mint(requestID, email string, role Role) (string, error) {
	if requestID == "" {
		return "", fmt.Errorf("requestID is required")
	}

	claims := Claims{
		RequestID: requestID,
		Email:     email,
		Role:      role,
		IssuedAt:  time.Now().Unix(),
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}

	signed, err := jws.Sign(payload, jws.WithKey(jwa.EdDSA(), s.privateKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign link token: %w", err)
	}

	return string(signed), nil
}

// Verify checks the JWS signature and returns the claims.
func (s *Signer) Verify(token string) (Claims, error) {
	payload, err := jws.Verify([]byte(token), jws.WithKey(jwa.EdDSA(), s.publicKey))
	if err != nil {
		return Claims{}, fmt.Errorf("link token verification failed: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return Claims{}, fmt.Errorf("failed to unmarshal claims: %w", err)
	}
	if claims.RequestID == "" {
		return Claims{}, fmt.Errorf("link token has no request id")
	}
	return claims, nil
}
