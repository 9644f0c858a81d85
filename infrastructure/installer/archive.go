package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"frame-extractor/domain/toolchain"
	"frame-extractor/infrastructure/platform"
)

const (
	lockRetryDelay = 250 * time.Millisecond

	// completeMarker is written into ExtractDir once an install finished
	completeMarker = ".complete"
)

// ArchiveInstaller downloads a portable ffmpeg build into a per-user
// directory and returns the path of the unpacked executable
type ArchiveInstaller struct {
	installDir string
	detector   platform.Detector
	downloader *Downloader
	unpacker   *Unpacker
	sourceFor  func(*platform.Info) (Source, error)
	logger     *zap.Logger
}

// ArchiveOption is a functional option for configuring ArchiveInstaller
type ArchiveOption func(*ArchiveInstaller)

// WithDetector sets the platform detector
func WithDetector(detector platform.Detector) ArchiveOption {
	return func(a *ArchiveInstaller) {
		a.detector = detector
	}
}

// WithDownloader sets the downloader
func WithDownloader(downloader *Downloader) ArchiveOption {
	return func(a *ArchiveInstaller) {
		a.downloader = downloader
	}
}

// WithUnpacker sets the unpacker
func WithUnpacker(unpacker *Unpacker) ArchiveOption {
	return func(a *ArchiveInstaller) {
		a.unpacker = unpacker
	}
}

// WithSourceSelector replaces the download table lookup (for testing)
func WithSourceSelector(sourceFor func(*platform.Info) (Source, error)) ArchiveOption {
	return func(a *ArchiveInstaller) {
		a.sourceFor = sourceFor
	}
}

// WithArchiveLogger sets the logger
func WithArchiveLogger(logger *zap.Logger) ArchiveOption {
	return func(a *ArchiveInstaller) {
		a.logger = logger
	}
}

// NewArchiveInstaller creates an installer that works inside installDir
func NewArchiveInstaller(installDir string, opts ...ArchiveOption) *ArchiveInstaller {
	a := &ArchiveInstaller{
		installDir: installDir,
		detector:   platform.NewDetector(),
		downloader: NewDownloader(),
		unpacker:   NewUnpacker(),
		sourceFor:  SourceFor,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// InstallDir returns the directory the installer downloads into
func (a *ArchiveInstaller) InstallDir() string {
	return a.installDir
}

// ExtractDir returns the directory archives are unpacked into
func (a *ArchiveInstaller) ExtractDir() string {
	return filepath.Join(a.installDir, "extracted")
}

// Install implements toolchain.ArchiveInstaller. An executable left by an
// earlier completed install is reused without downloading. A partial
// extraction is discarded and the archive fetched again.
func (a *ArchiveInstaller) Install(ctx context.Context, onProgress toolchain.DownloadProgressFunc) (string, error) {
	report := func(percent int, status string) {
		if onProgress != nil {
			onProgress(toolchain.DownloadProgress{Percent: percent, Status: status})
		}
	}

	info, err := a.detector.Detect(ctx)
	if err != nil {
		return "", fmt.Errorf("detect platform: %w", err)
	}

	source, err := a.sourceFor(info)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(a.installDir, 0o755); err != nil {
		return "", fmt.Errorf("create install dir %s: %w", a.installDir, err)
	}

	lock := flock.New(filepath.Join(a.installDir, "install.lock"))
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return "", fmt.Errorf("lock install dir: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("lock install dir: %s is busy", a.installDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			a.logger.Warn("failed to release install lock", zap.Error(err))
		}
	}()

	if path, ok := a.previousInstall(source.Executable, info.OS); ok {
		a.logger.Info("reusing previously installed ffmpeg", zap.String("path", path))
		report(100, "FFmpeg installed successfully")
		return path, nil
	}

	if err := os.RemoveAll(a.ExtractDir()); err != nil {
		return "", fmt.Errorf("clear stale extraction %s: %w", a.ExtractDir(), err)
	}

	archivePath := filepath.Join(a.installDir, source.ArchiveName())
	a.logger.Info("downloading ffmpeg",
		zap.String("url", source.URL),
		zap.String("platform", info.String()),
		zap.String("dest", archivePath))

	report(0, "Downloading FFmpeg...")
	if err := a.downloader.Download(ctx, source.URL, archivePath, onProgress); err != nil {
		a.logger.Error("ffmpeg download failed", zap.Error(err))
		return "", err
	}

	report(100, "Extracting FFmpeg...")
	if err := a.unpacker.Unpack(ctx, archivePath, source.Kind, a.ExtractDir()); err != nil {
		a.logger.Error("ffmpeg extraction failed", zap.Error(err))
		return "", err
	}

	path, err := FindExecutable(a.ExtractDir(), source.Executable)
	if err != nil {
		a.logger.Error("ffmpeg missing from archive", zap.Error(err))
		return "", err
	}

	if err := ensureExecutable(path, info.OS); err != nil {
		return "", fmt.Errorf("make %s executable: %w", path, err)
	}

	if err := os.WriteFile(a.markerPath(), []byte(path), 0o644); err != nil {
		return "", fmt.Errorf("mark install complete: %w", err)
	}

	a.logger.Info("ffmpeg installed", zap.String("path", path))
	report(100, "FFmpeg installed successfully")
	return path, nil
}

func (a *ArchiveInstaller) markerPath() string {
	return filepath.Join(a.ExtractDir(), completeMarker)
}

// previousInstall returns the executable of an earlier install when the
// completion marker is present and the file is non-empty
func (a *ArchiveInstaller) previousInstall(executable, goos string) (string, bool) {
	if _, err := os.Stat(a.markerPath()); err != nil {
		return "", false
	}

	path, err := FindExecutable(a.ExtractDir(), executable)
	if err != nil {
		return "", false
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		a.logger.Warn("discarding broken ffmpeg install", zap.String("path", path))
		return "", false
	}

	if err := ensureExecutable(path, goos); err != nil {
		a.logger.Warn("previous ffmpeg install is not executable", zap.String("path", path), zap.Error(err))
		return "", false
	}

	return path, true
}

var _ toolchain.ArchiveInstaller = (*ArchiveInstaller)(nil)
