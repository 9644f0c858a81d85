// Package platform detects the operating system, architecture and Linux
// distribution so the installer can pick a download and the CLI can suggest
// a manual install command when automatic installation fails.
package platform

import "context"

// Linux distribution family constants
const (
	FamilyDebian  = "debian"
	FamilyRHEL    = "rhel"
	FamilyFedora  = "fedora"
	FamilySUSE    = "suse"
	FamilyArch    = "arch"
	FamilyAlpine  = "alpine"
	FamilyUnknown = "unknown"
)

// Info contains platform detection information
type Info struct {
	OS       string // "linux", "darwin", "windows"
	Arch     string // "amd64", "arm64", or the raw GOARCH when unrecognized
	Platform string // distro ID (Linux only, e.g., "ubuntu")
	Family   string // canonical family (Linux only)
	Version  string // distro version (Linux only)
}

// Detector detects the running platform
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// IsLinux returns true if the platform is Linux
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// String returns a short description such as "linux/amd64 (ubuntu 22.04)"
func (i *Info) String() string {
	s := i.OS + "/" + i.Arch
	if i.Platform != "" {
		s += " (" + i.Platform
		if i.Version != "" {
			s += " " + i.Version
		}
		s += ")"
	}
	return s
}

// ManualInstallHint returns a shell command the user can run to install
// ffmpeg themselves, or "" when no package manager is known
func ManualInstallHint(info *Info) string {
	switch {
	case info == nil:
		return ""
	case info.IsWindows():
		return "winget install --id Gyan.FFmpeg -e"
	case info.IsMacOS():
		return "brew install ffmpeg"
	case info.IsLinux():
		switch info.Family {
		case FamilyDebian:
			return "sudo apt install ffmpeg"
		case FamilyFedora, FamilyRHEL:
			return "sudo dnf install ffmpeg"
		case FamilySUSE:
			return "sudo zypper install ffmpeg"
		case FamilyArch:
			return "sudo pacman -S ffmpeg"
		case FamilyAlpine:
			return "sudo apk add ffmpeg"
		}
	}
	return ""
}
