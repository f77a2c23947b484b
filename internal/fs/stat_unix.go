//go:build unix

package fs

import (
	"fmt"
	"io/fs"
	"syscall"
	"time"

	"intake-go/internal/intake"
)

// ExtractStatData extracts Unix-specific stat data from a FileInfo.
// The inode change time is the closest portable stand-in for a creation
// timestamp; birth time is not available on most Unix filesystems.
func (m *OSFilesystemManager) ExtractStatData(info fs.FileInfo) (*intake.StatData, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, fmt.Errorf("cannot extract stat data: expected *syscall.Stat_t, got %T", info.Sys())
	}

	return &intake.StatData{
		ChangedAt: time.Unix(stat.Ctim.Sec, stat.Ctim.Nsec),
	}, nil
}
