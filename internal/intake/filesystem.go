package intake

import (
	"io"
	"io/fs"
	"time"
)

// StatData carries platform-specific stat fields not exposed by fs.FileInfo.
type StatData struct {
	ChangedAt time.Time // inode change time (ctime)
}

// FilesystemManager provides an interface for filesystem operations.
// It abstracts file access to enable testing without touching the real filesystem.
type FilesystemManager interface {
	// Resolve validates a raw path and returns a Path object.
	// It resolves the path to an absolute path, stats it, and validates
	// it's a regular file or directory (not a symlink, device, etc.).
	Resolve(rawPath string) (*Path, error)

	// Open opens a file for reading.
	Open(path *Path) (io.ReadCloser, error)

	// Stat returns fresh file info for a path.
	// Unlike path.Info() which returns cached info from when the path was resolved,
	// this always fetches current info from the filesystem.
	Stat(path *Path) (fs.FileInfo, error)

	// FindFiles discovers regular files under the given directory path.
	// When recursive is true, files in subdirectories are included.
	FindFiles(path *Path, recursive bool) ([]*Path, error)

	// IsIgnored reports whether the file matches the configured ignore rules,
	// evaluated against its path relative to root.
	IsIgnored(path *Path, root string) (bool, error)

	// ReadSample reads at most maxBytes from the start of the file and
	// returns it as text with invalid UTF-8 sequences replaced.
	ReadSample(path *Path, maxBytes int) (string, error)

	// ExtractStatData extracts platform-specific stat fields from a FileInfo.
	ExtractStatData(info fs.FileInfo) (*StatData, error)
}
