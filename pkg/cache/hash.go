package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// heightKey keys a simulated height by the invalid-token policy and the
// trimmed scenario line. The two are joined with a NUL byte, which cannot
// appear in either, so "skip"+"Q0" and "ski"+"pQ0" never collide.
func heightKey(policy, line string) string {
	return "height:" + Hash([]byte(policy+"\x00"+line))
}

// Hash returns the hex-encoded SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
