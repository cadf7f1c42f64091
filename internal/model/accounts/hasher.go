package accounts

import (
	"crypto/sha256"
	"encoding/base64"
)

// SHA256Hasher digests passwords with unsalted SHA-256, base64-encoded.
// Verification is a digest equality check, so the same plaintext always
// yields the same stored value. A salted or adaptive scheme would be
// stronger but is incompatible with digests already stored.
type SHA256Hasher struct{}

func NewSHA256Hasher() SHA256Hasher {
	return SHA256Hasher{}
}

func (SHA256Hasher) Hash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (h SHA256Hasher) Verify(password, digest string) bool {
	return h.Hash(password) == digest
}
