package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashKey returns the SHA256 hex digest of s. Used to turn arbitrary caller
// identifiers and URLs into consistent, safe Redis keys.
func HashKey(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
