package intake

import "io"

// Archive preserves original document bytes, content-addressed by their
// fingerprint. All operations stream via io.Reader/io.Writer so large
// evidence files never have to fit in memory.
type Archive interface {
	// Put stores content under its checksum. The operation is idempotent:
	// storing the same checksum again is safe and cheap. size is the number
	// of bytes that will be read from r.
	Put(checksum string, r io.Reader, size int64) error

	// Get retrieves content by checksum and writes it to w.
	Get(checksum string, w io.Writer) error

	// Has reports whether content with the given checksum is already stored.
	Has(checksum string) (bool, error)

	// ValidateSetup verifies that the archive is accessible and properly configured.
	ValidateSetup() error
}
