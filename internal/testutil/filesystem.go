package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"intake-go/internal/intake"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
	// Stat data - set once when file is created
	Ctime time.Time

	// OpenErr makes Open fail, simulating an unreadable file.
	OpenErr error
}

// MockFilesystemManager is an in-memory filesystem for testing.
type MockFilesystemManager struct {
	files map[string]*MockFile
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files: make(map[string]*MockFile),
	}
}

// AddFile adds a file to the mock filesystem.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	now := time.Now()
	m.files[path] = &MockFile{
		Content:     content,
		Permissions: 0644,
		ModTime:     now,
		IsDirectory: false,
		Ctime:       now,
	}
}

// AddUnreadableFile adds a file whose Open always fails.
func (m *MockFilesystemManager) AddUnreadableFile(path string) {
	m.AddFile(path, nil)
	m.files[path].OpenErr = fmt.Errorf("permission denied: %s", path)
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	now := time.Now()
	m.files[path] = &MockFile{
		Content:     nil,
		Permissions: 0755,
		ModTime:     now,
		IsDirectory: true,
		Ctime:       now,
	}
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*intake.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", absPath)
	}

	info := &mockFileInfo{
		name:     filepath.Base(absPath),
		size:     int64(len(file.Content)),
		mode:     file.Permissions,
		modTime:  file.ModTime,
		isDir:    file.IsDirectory,
		mockFile: file,
	}

	return intake.NewPath(absPath, file.IsDirectory, info), nil
}

func (m *MockFilesystemManager) Open(path *intake.Path) (io.ReadCloser, error) {
	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path.String())
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path.String())
	}
	if file.OpenErr != nil {
		return nil, file.OpenErr
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (m *MockFilesystemManager) Stat(path *intake.Path) (fs.FileInfo, error) {
	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path.String())
	}

	return &mockFileInfo{
		name:     filepath.Base(path.String()),
		size:     int64(len(file.Content)),
		mode:     file.Permissions,
		modTime:  file.ModTime,
		isDir:    file.IsDirectory,
		mockFile: file,
	}, nil
}

func (m *MockFilesystemManager) FindFiles(path *intake.Path, recursive bool) ([]*intake.Path, error) {
	if !path.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", path.String())
	}

	prefix := path.String() + string(filepath.Separator)
	var names []string
	for p, f := range m.files {
		if f.IsDirectory || !strings.HasPrefix(p, prefix) {
			continue
		}
		if !recursive && strings.Contains(p[len(prefix):], string(filepath.Separator)) {
			continue
		}
		names = append(names, p)
	}
	sort.Strings(names)

	var paths []*intake.Path
	for _, name := range names {
		p, err := m.Resolve(name)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (m *MockFilesystemManager) IsIgnored(path *intake.Path, root string) (bool, error) {
	return false, nil
}

func (m *MockFilesystemManager) ReadSample(path *intake.Path, maxBytes int) (string, error) {
	file, ok := m.files[path.String()]
	if !ok {
		return "", fmt.Errorf("file not found: %s", path.String())
	}
	if file.OpenErr != nil {
		return "", file.OpenErr
	}
	content := file.Content
	if len(content) > maxBytes {
		content = content[:maxBytes]
	}
	return strings.ToValidUTF8(string(content), string(utf8.RuneError)), nil
}

func (m *MockFilesystemManager) ExtractStatData(info fs.FileInfo) (*intake.StatData, error) {
	// Get the MockFile from Sys() to return consistent stat data
	mockFile, ok := info.Sys().(*MockFile)
	if !ok {
		return nil, fmt.Errorf("cannot extract stat data: expected *MockFile, got %T", info.Sys())
	}

	return &intake.StatData{
		ChangedAt: mockFile.Ctime,
	}, nil
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name     string
	size     int64
	mode     fs.FileMode
	modTime  time.Time
	isDir    bool
	mockFile *MockFile // reference to get stat data
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return m.mockFile }

// Compile-time check
var _ intake.FilesystemManager = (*MockFilesystemManager)(nil)
