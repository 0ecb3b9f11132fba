package envelope

// checksum.go computes deterministic checksums over envelope state.
// JSON is canonicalized per RFC 8785 before hashing so that key order and
// whitespace never produce spurious differences. The history manager uses
// field-set checksums for snapshot dedup, and finalization uses the envelope
// checksum as its idempotency key.

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
)

// FieldsChecksum returns the lowercase hex SHA-256 of the canonicalized
// field set. Two field slices with identical content always produce the
// same checksum.
func FieldsChecksum(fields []SignatureField) (string, error) {
	if fields == nil {
		fields = []SignatureField{}
	}
	return canonicalChecksum(fields)
}

// Checksum returns the checksum of the envelope's serializable subset.
func (e *Envelope) Checksum() (string, error) {
	return canonicalChecksum(e.ToDraft())
}

func canonicalChecksum(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal for checksum: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize JSON: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
