package toolchain

import "context"

// Locator finds an already installed ffmpeg without side effects
type Locator interface {
	// LocateWithMethod returns the binary path and whether it came from PATH
	// or a well-known location; ok is false when nothing was found
	LocateWithMethod() (path string, method ResolutionMethod, ok bool)
}

// PackageInstaller installs ffmpeg through the platform package manager.
// Implementations never return errors; any failure is reported as false.
type PackageInstaller interface {
	TryInstall(ctx context.Context) bool
}

// ArchiveInstaller downloads and unpacks a portable ffmpeg build
type ArchiveInstaller interface {
	// Install returns the absolute path of the unpacked executable
	Install(ctx context.Context, onProgress DownloadProgressFunc) (string, error)
}

// Confirmer asks the user a yes/no question
type Confirmer interface {
	Confirm(message string, defaultValue bool) (bool, error)
}
