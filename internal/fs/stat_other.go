//go:build !unix

package fs

import (
	"io/fs"

	"intake-go/internal/intake"
)

// ExtractStatData falls back to the modification time on platforms without
// Unix stat semantics.
func (m *OSFilesystemManager) ExtractStatData(info fs.FileInfo) (*intake.StatData, error) {
	return &intake.StatData{
		ChangedAt: info.ModTime(),
	}, nil
}
