package ffmpeg

import (
	"os"
	"runtime"
	"strings"

	"go.uber.org/zap"

	"frame-extractor/domain/toolchain"
)

// ExecutableName returns the ffmpeg file name for goos
func ExecutableName(goos string) string {
	if goos == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

// Locator finds an installed ffmpeg on PATH or in well-known install
// directories. It never modifies the system and is safe for concurrent use.
type Locator struct {
	goos   string
	getenv func(string) string
	isFile func(string) bool
	logger *zap.Logger
}

// LocatorOption is a functional option for configuring Locator
type LocatorOption func(*Locator)

// WithGOOS overrides the operating system used to pick names and locations
func WithGOOS(goos string) LocatorOption {
	return func(l *Locator) {
		l.goos = goos
	}
}

// WithGetenv sets the environment lookup (for testing)
func WithGetenv(getenv func(string) string) LocatorOption {
	return func(l *Locator) {
		l.getenv = getenv
	}
}

// WithFileProbe sets the function deciding whether a candidate path is a
// usable executable (for testing)
func WithFileProbe(isFile func(string) bool) LocatorOption {
	return func(l *Locator) {
		l.isFile = isFile
	}
}

// WithLocatorLogger sets the logger
func WithLocatorLogger(logger *zap.Logger) LocatorOption {
	return func(l *Locator) {
		l.logger = logger
	}
}

// NewLocator creates a Locator for the current platform
func NewLocator(opts ...LocatorOption) *Locator {
	l := &Locator{
		goos:   runtime.GOOS,
		getenv: os.Getenv,
		isFile: isRegularFile,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Locate returns the first ffmpeg found, preferring PATH over well-known locations
func (l *Locator) Locate() (string, bool) {
	path, _, ok := l.LocateWithMethod()
	return path, ok
}

// LocateWithMethod is Locate plus the branch that matched
func (l *Locator) LocateWithMethod() (string, toolchain.ResolutionMethod, bool) {
	name := ExecutableName(l.goos)

	for _, dir := range l.pathEntries() {
		candidate := l.join(dir, name)
		if l.isFile(candidate) {
			l.logger.Debug("ffmpeg found on PATH", zap.String("path", candidate))
			return candidate, toolchain.FoundInPath, true
		}
	}

	for _, candidate := range l.KnownLocations() {
		if l.isFile(candidate) {
			l.logger.Debug("ffmpeg found in known location", zap.String("path", candidate))
			return candidate, toolchain.FoundInKnownLocation, true
		}
	}

	l.logger.Debug("ffmpeg not found", zap.String("os", l.goos))
	return "", 0, false
}

// KnownLocations returns the well-known install paths probed after PATH, in order
func (l *Locator) KnownLocations() []string {
	switch l.goos {
	case "windows":
		locations := []string{
			`C:\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files\ffmpeg\bin\ffmpeg.exe`,
			`C:\Program Files (x86)\ffmpeg\bin\ffmpeg.exe`,
		}
		if local := l.getenv("LOCALAPPDATA"); local != "" {
			locations = append(locations,
				l.join(local, `ffmpeg\ffmpeg.exe`),
				l.join(local, `Microsoft\WinGet\Links\ffmpeg.exe`),
			)
		}
		return locations
	case "darwin":
		return []string{"/usr/local/bin/ffmpeg", "/opt/homebrew/bin/ffmpeg", "/usr/bin/ffmpeg"}
	default:
		return []string{"/usr/bin/ffmpeg", "/usr/local/bin/ffmpeg", "/snap/bin/ffmpeg"}
	}
}

func (l *Locator) pathEntries() []string {
	sep := ":"
	if l.goos == "windows" {
		sep = ";"
	}

	var entries []string
	for _, entry := range strings.Split(l.getenv("PATH"), sep) {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

// join builds a path with the separator of the target OS, which may differ
// from the host OS in tests
func (l *Locator) join(dir, name string) string {
	sep := "/"
	if l.goos == "windows" {
		sep = `\`
	}
	return strings.TrimRight(dir, `/\`) + sep + name
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular() && info.Size() > 0
}

var _ toolchain.Locator = (*Locator)(nil)
