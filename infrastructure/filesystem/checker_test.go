package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChecker_Exists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "clip.mp4")
	if err := os.WriteFile(file, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewChecker()
	tests := []struct {
		name string
		path string
		want bool
	}{
		{"existing file", file, true},
		{"missing file", filepath.Join(dir, "missing.mp4"), false},
		{"directory", dir, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Exists(tt.path); got != tt.want {
				t.Errorf("Exists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestChecker_EnsureDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "frames")
	c := NewChecker()

	for i := 0; i < 2; i++ {
		if err := c.EnsureDir(target); err != nil {
			t.Fatalf("EnsureDir() call %d error: %v", i+1, err)
		}
	}

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		t.Errorf("EnsureDir() did not create %s", target)
	}
}

func TestChecker_EnsureDirOverFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "frames")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewChecker().EnsureDir(file); err == nil {
		t.Error("EnsureDir() over a file should fail")
	}
}
