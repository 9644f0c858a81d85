package filesystem

import (
	"fmt"
	"os"

	"frame-extractor/domain/video"
)

// Checker implements video.FileChecker and video.DirectoryCreator using the os package
type Checker struct{}

// NewChecker creates a new filesystem checker
func NewChecker() *Checker {
	return &Checker{}
}

// Exists returns true if path exists and is not a directory
func (c *Checker) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// EnsureDir creates path and any missing parents; an existing directory is not an error
func (c *Checker) EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", path, err)
	}
	return nil
}

var (
	_ video.FileChecker      = (*Checker)(nil)
	_ video.DirectoryCreator = (*Checker)(nil)
)
