package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"intake-go/internal/intake"
)

// FileSystemArchive stores evidence content as files named by checksum:
//
//	<root>/
//	  content/
//	    <checksum>
type FileSystemArchive struct {
	root       string
	contentDir string
}

// NewFileSystemArchive creates a filesystem archive rooted at the given path.
func NewFileSystemArchive(root string) (*FileSystemArchive, error) {
	contentDir := filepath.Join(root, "content")
	if err := os.MkdirAll(contentDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create content directory: %w", err)
	}

	return &FileSystemArchive{
		root:       root,
		contentDir: contentDir,
	}, nil
}

// Put stores content under its checksum. Re-storing an existing checksum
// consumes the reader and verifies the size, but writes nothing.
func (a *FileSystemArchive) Put(checksum string, r io.Reader, size int64) error {
	destPath := filepath.Join(a.contentDir, checksum)

	if _, err := os.Stat(destPath); err == nil {
		written, err := io.Copy(io.Discard, r)
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}
		if written != size {
			return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
		}
		return nil
	}

	return a.writeFile(destPath, r, size)
}

// Get retrieves content by checksum and writes it to w.
func (a *FileSystemArchive) Get(checksum string, w io.Writer) error {
	srcPath := filepath.Join(a.contentDir, checksum)

	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("content not found: %s", checksum)
		}
		return fmt.Errorf("failed to open content: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	return nil
}

// Has reports whether content with the given checksum is stored.
func (a *FileSystemArchive) Has(checksum string) (bool, error) {
	_, err := os.Stat(filepath.Join(a.contentDir, checksum))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat content: %w", err)
	}
	return true, nil
}

// ValidateSetup verifies that the archive directories are accessible.
func (a *FileSystemArchive) ValidateSetup() error {
	for _, dir := range []string{a.root, a.contentDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("archive directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("archive path is not a directory: %s", dir)
		}
	}
	return nil
}

// writeFile writes data from r to destPath using an atomic write (temp file + rename).
func (a *FileSystemArchive) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// Temp file in the same directory so the rename stays on one filesystem.
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Compile-time check that FileSystemArchive implements intake.Archive
var _ intake.Archive = (*FileSystemArchive)(nil)
