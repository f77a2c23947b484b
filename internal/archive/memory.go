package archive

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"intake-go/internal/intake"
)

// MemoryArchive is an in-memory implementation of the Archive interface,
// useful for testing and throwaway runs. Safe for concurrent use.
type MemoryArchive struct {
	content map[string][]byte // checksum -> content
	mu      sync.RWMutex
}

// NewMemoryArchive creates a new in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		content: make(map[string][]byte),
	}
}

// Put stores content under its checksum.
func (m *MemoryArchive) Put(checksum string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Idempotent: storing the same checksum multiple times is safe
	m.content[checksum] = data
	return nil
}

// Get retrieves content by checksum.
func (m *MemoryArchive) Get(checksum string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.content[checksum]
	if !ok {
		return fmt.Errorf("content not found: %s", checksum)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}

	return nil
}

// Has reports whether content with the given checksum is stored.
func (m *MemoryArchive) Has(checksum string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.content[checksum]
	return ok, nil
}

// ValidateSetup always succeeds for the in-memory archive.
func (m *MemoryArchive) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryArchive implements intake.Archive
var _ intake.Archive = (*MemoryArchive)(nil)
