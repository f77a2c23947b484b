package fs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
}

func TestOSFilesystemManager_Resolve(t *testing.T) {
	m := NewOSFilesystemManager(nil)

	t.Run("resolves a regular file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "doc.txt")
		writeFile(t, path, []byte("content"))

		p, err := m.Resolve(path)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.IsDir() {
			t.Error("IsDir() = true for a regular file")
		}
		if p.Info().Size() != int64(len("content")) {
			t.Errorf("Size = %d, want %d", p.Info().Size(), len("content"))
		}
	})

	t.Run("resolves a directory", func(t *testing.T) {
		dir := t.TempDir()

		p, err := m.Resolve(dir)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !p.IsDir() {
			t.Error("IsDir() = false for a directory")
		}
	})

	t.Run("fails on a missing path", func(t *testing.T) {
		if _, err := m.Resolve(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Fatal("Resolve() error = nil, want error for missing path")
		}
	})
}

func TestOSFilesystemManager_FindFiles(t *testing.T) {
	m := NewOSFilesystemManager(nil)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "top.txt"), []byte("a"))
	writeFile(t, filepath.Join(dir, "sub", "nested.txt"), []byte("b"))
	writeFile(t, filepath.Join(dir, "sub", "deeper", "deep.txt"), []byte("c"))

	root, err := m.Resolve(dir)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	t.Run("recursive finds everything", func(t *testing.T) {
		files, err := m.FindFiles(root, true)
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}
		if len(files) != 3 {
			t.Errorf("found %d files, want 3", len(files))
		}
	})

	t.Run("non-recursive stays at the top level", func(t *testing.T) {
		files, err := m.FindFiles(root, false)
		if err != nil {
			t.Fatalf("FindFiles() error = %v", err)
		}
		if len(files) != 1 {
			t.Fatalf("found %d files, want 1", len(files))
		}
		if filepath.Base(files[0].String()) != "top.txt" {
			t.Errorf("found %s, want top.txt", files[0].String())
		}
	})

	t.Run("fails on a file root", func(t *testing.T) {
		p, err := m.Resolve(filepath.Join(dir, "top.txt"))
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if _, err := m.FindFiles(p, true); err == nil {
			t.Fatal("FindFiles() error = nil, want error for non-directory")
		}
	})
}

func TestOSFilesystemManager_IsIgnored(t *testing.T) {
	m := NewOSFilesystemManager([]string{"*.tmp", "drafts/*"})

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "keep.txt"), []byte("a"))
	writeFile(t, filepath.Join(dir, "scratch.tmp"), []byte("b"))
	writeFile(t, filepath.Join(dir, "drafts", "wip.txt"), []byte("c"))

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "keep.txt"), false},
		{filepath.Join(dir, "scratch.tmp"), true},
		{filepath.Join(dir, "drafts", "wip.txt"), true},
	}

	for _, tt := range tests {
		p, err := m.Resolve(tt.path)
		if err != nil {
			t.Fatalf("Resolve(%s) error = %v", tt.path, err)
		}
		got, err := m.IsIgnored(p, dir)
		if err != nil {
			t.Fatalf("IsIgnored(%s) error = %v", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("IsIgnored(%s) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestOSFilesystemManager_ReadSample(t *testing.T) {
	m := NewOSFilesystemManager(nil)

	t.Run("reads at most maxBytes", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "big.txt")
		writeFile(t, path, []byte(strings.Repeat("x", 1000)))

		p, err := m.Resolve(path)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		sample, err := m.ReadSample(p, 100)
		if err != nil {
			t.Fatalf("ReadSample() error = %v", err)
		}
		if len(sample) != 100 {
			t.Errorf("sample length = %d, want 100", len(sample))
		}
	})

	t.Run("short file reads whole content", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "small.txt")
		writeFile(t, path, []byte("tiny"))

		p, err := m.Resolve(path)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		sample, err := m.ReadSample(p, 100)
		if err != nil {
			t.Fatalf("ReadSample() error = %v", err)
		}
		if sample != "tiny" {
			t.Errorf("sample = %q, want %q", sample, "tiny")
		}
	})

	t.Run("invalid utf-8 is replaced", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "binary.txt")
		writeFile(t, path, []byte{'a', 0xff, 0xfe, 'b'})

		p, err := m.Resolve(path)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		sample, err := m.ReadSample(p, 100)
		if err != nil {
			t.Fatalf("ReadSample() error = %v", err)
		}
		if strings.Contains(sample, "\xff") {
			t.Errorf("sample = %q still contains invalid bytes", sample)
		}
		if !strings.Contains(sample, "�") {
			t.Errorf("sample = %q missing replacement character", sample)
		}
	})
}
