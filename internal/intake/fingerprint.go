package intake

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// fingerprintChunkSize is the read buffer size used while hashing.
// Files are streamed; they are never loaded into memory whole.
const fingerprintChunkSize = 4096

// Fingerprint computes the SHA-256 digest of everything readable from r
// and returns it as a lowercase hex string.
func Fingerprint(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, fingerprintChunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", fmt.Errorf("hashing content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
