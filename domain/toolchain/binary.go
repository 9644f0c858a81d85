package toolchain

// ResolutionMethod records which strategy produced the ffmpeg binary
type ResolutionMethod int

const (
	// FoundInPath means the binary was found on the PATH environment variable
	FoundInPath ResolutionMethod = iota + 1
	// FoundInKnownLocation means the binary was found in a well-known install directory
	FoundInKnownLocation
	// InstalledViaPackageManager means winget installed the binary during this run
	InstalledViaPackageManager
	// InstalledViaArchive means the binary was downloaded and unpacked during this run
	InstalledViaArchive
)

// String returns the string representation of the resolution method
func (m ResolutionMethod) String() string {
	switch m {
	case FoundInPath:
		return "found-in-path"
	case FoundInKnownLocation:
		return "found-in-known-location"
	case InstalledViaPackageManager:
		return "installed-via-package-manager"
	case InstalledViaArchive:
		return "installed-via-archive"
	default:
		return "unknown"
	}
}

// ResolvedBinary is an ffmpeg executable that has been found or installed.
// It is created once per process and never mutated.
type ResolvedBinary struct {
	Path   string
	Method ResolutionMethod
}

// IsZero reports whether no binary has been resolved
func (b ResolvedBinary) IsZero() bool {
	return b.Path == ""
}

// DownloadProgress is a transient archive download status
type DownloadProgress struct {
	// Percent is 0-100; it stays 0 when the server sends no Content-Length
	Percent int
	Status  string
}

// DownloadProgressFunc receives download progress updates
type DownloadProgressFunc func(DownloadProgress)
