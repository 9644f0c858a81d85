package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppDirName is the per-user application directory under the data root
const AppDirName = "FrameExtractor"

// DataRoot returns the per-user data root: %LOCALAPPDATA% on Windows,
// ~/Library/Application Support on macOS and $XDG_DATA_HOME or
// ~/.local/share elsewhere
func DataRoot() (string, error) {
	home, _ := os.UserHomeDir()
	return dataRoot(runtime.GOOS, os.Getenv, home)
}

func dataRoot(goos string, getenv func(string) string, home string) (string, error) {
	switch goos {
	case "windows":
		if local := getenv("LOCALAPPDATA"); local != "" {
			return local, nil
		}
		if home != "" {
			return filepath.Join(home, "AppData", "Local"), nil
		}
	case "darwin":
		if home != "" {
			return filepath.Join(home, "Library", "Application Support"), nil
		}
	default:
		if xdg := getenv("XDG_DATA_HOME"); xdg != "" {
			return xdg, nil
		}
		if home != "" {
			return filepath.Join(home, ".local", "share"), nil
		}
	}
	return "", fmt.Errorf("cannot determine data directory: home directory unknown")
}

// AppDir returns <root>/FrameExtractor
func AppDir(root string) string {
	return filepath.Join(root, AppDirName)
}

// InstallDir returns <root>/FrameExtractor/ffmpeg
func InstallDir(root string) string {
	return filepath.Join(AppDir(root), "ffmpeg")
}
