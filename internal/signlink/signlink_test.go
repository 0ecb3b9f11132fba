package signlink

import (
	"path/filepath"
	"strings"
	"testing"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	privateKey, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	signer, err := NewSigner(privateKey)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	return signer
}

func TestMintAndVerify(t *testing.T) {
	signer := newTestSigner(t)

	token, err := signer.Mint("req-123", "ana@x.com", RoleSigner)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("expected a JWS compact serialization, got %q", token)
	}

	claims, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.RequestID != "req-123" {
		t.Errorf("RequestID = %q", claims.RequestID)
	}
	if claims.Email != "ana@x.com" {
		t.Errorf("Email = %q", claims.Email)
	}
	if claims.Role != RoleSigner {
		t.Errorf("Role = %q", claims.Role)
	}
	if claims.IssuedAt == 0 {
		t.Error("IssuedAt not set")
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	signer := newTestSigner(t)

	token, err := signer.Mint("req-123", "ana@x.com", RoleCC)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	// flip a character in the payload segment
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	payload[0] ^= 1
	parts[1] = string(payload)

	if _, err := signer.Verify(strings.Join(parts, ".")); err == nil {
		t.Error("expected verification to fail for a tampered token")
	}
}

func TestVerifyRejectsOtherKey(t *testing.T) {
	a := newTestSigner(t)
	b := newTestSigner(t)

	token, err := a.Mint("req-123", "ana@x.com", RoleSigner)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if _, err := b.Verify(token); err == nil {
		t.Error("expected verification to fail with a different key")
	}
}

func TestMintRequiresRequestID(t *testing.T) {
	signer := newTestSigner(t)
	if _, err := signer.Mint("", "ana@x.com", RoleSigner); err == nil {
		t.Error("expected error for empty request id")
	}
}

func TestJWKSContainsPublicKey(t *testing.T) {
	signer := newTestSigner(t)

	set := signer.JWKS()
	if set.Len() != 1 {
		t.Fatalf("expected 1 key in JWKS, got %d", set.Len())
	}
	key, ok := set.Key(0)
	if !ok {
		t.Fatal("failed to get key from set")
	}
	kid, ok := key.KeyID()
	if !ok || kid != signer.KeyID() {
		t.Errorf("kid = %q, want %q", kid, signer.KeyID())
	}
}

func TestKeyPairRoundTripThroughFiles(t *testing.T) {
	dir := t.TempDir()

	privateKey, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}
	privatePath, publicPath, err := WriteKeyPair(privateKey, dir, "signing")
	if err != nil {
		t.Fatalf("WriteKeyPair failed: %v", err)
	}
	if filepath.Dir(privatePath) != dir || filepath.Dir(publicPath) != dir {
		t.Errorf("key files written outside %s: %s %s", dir, privatePath, publicPath)
	}

	original, err := NewSigner(privateKey)
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	loaded, err := NewSignerFromFile(privatePath)
	if err != nil {
		t.Fatalf("NewSignerFromFile failed: %v", err)
	}

	// a token minted before the round trip verifies after it
	token, err := original.Mint("req-9", "ben@x.com", RoleSigner)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if _, err := loaded.Verify(token); err != nil {
		t.Errorf("loaded signer failed to verify token: %v", err)
	}
	if loaded.KeyID() != original.KeyID() {
		t.Errorf("key id changed across the round trip: %q vs %q", loaded.KeyID(), original.KeyID())
	}
}
