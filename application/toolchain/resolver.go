package toolchain

import (
	"context"
	"os"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"frame-extractor/domain/toolchain"
)

// bareCommand is used when a package manager reported success but the
// binary is not yet visible to the locator
const bareCommand = "ffmpeg"

// Resolver makes sure an ffmpeg binary is available, trying the locator,
// the package manager (Windows only) and the archive installer in that
// order. The first success is cached for the lifetime of the Resolver; a
// failure is not, so a later call probes again.
type Resolver struct {
	locator          toolchain.Locator
	packageInstaller toolchain.PackageInstaller
	archiveInstaller toolchain.ArchiveInstaller
	goos             string
	pinnedPath       string
	fileExists       func(string) bool
	onProgress       toolchain.DownloadProgressFunc
	logger           *zap.Logger

	mu     sync.Mutex
	state  toolchain.ResolutionState
	binary toolchain.ResolvedBinary
}

// ResolverOption is a functional option for configuring Resolver
type ResolverOption func(*Resolver)

// WithPackageInstaller sets the package manager strategy
func WithPackageInstaller(installer toolchain.PackageInstaller) ResolverOption {
	return func(r *Resolver) {
		r.packageInstaller = installer
	}
}

// WithGOOS overrides the operating system used to decide whether the
// package manager is tried
func WithGOOS(goos string) ResolverOption {
	return func(r *Resolver) {
		r.goos = goos
	}
}

// WithPinnedPath makes an existing binary at path win over every strategy
func WithPinnedPath(path string) ResolverOption {
	return func(r *Resolver) {
		r.pinnedPath = path
	}
}

// WithFileCheck sets the function used to check the pinned path (for testing)
func WithFileCheck(exists func(string) bool) ResolverOption {
	return func(r *Resolver) {
		r.fileExists = exists
	}
}

// WithDownloadProgress sets the callback receiving archive download progress
func WithDownloadProgress(fn toolchain.DownloadProgressFunc) ResolverOption {
	return func(r *Resolver) {
		r.onProgress = fn
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver. archive may be nil to disable downloads.
func NewResolver(locator toolchain.Locator, archive toolchain.ArchiveInstaller, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		locator:          locator,
		archiveInstaller: archive,
		goos:             runtime.GOOS,
		fileExists:       fileExists,
		logger:           zap.NewNop(),
		state:            toolchain.Unresolved,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// EnsureAvailable resolves ffmpeg if it has not been resolved yet and
// reports whether a binary is available. It never returns an error.
func (r *Resolver) EnsureAvailable(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == toolchain.Resolved {
		return true
	}
	if r.state == toolchain.Unavailable {
		r.advance(false)
	}

	if r.pinnedPath != "" {
		if r.fileExists(r.pinnedPath) {
			r.resolve(r.pinnedPath, toolchain.FoundInKnownLocation)
			return true
		}
		r.logger.Warn("configured ffmpeg path does not exist", zap.String("path", r.pinnedPath))
	}

	r.advance(false)
	if path, method, ok := r.locator.LocateWithMethod(); ok {
		r.resolve(path, method)
		return true
	}

	r.advance(false)
	if r.tryPackageManager(ctx) {
		path := bareCommand
		if located, _, ok := r.locator.LocateWithMethod(); ok {
			path = located
		}
		r.resolve(path, toolchain.InstalledViaPackageManager)
		return true
	}

	r.advance(false)
	if r.archiveInstaller != nil {
		path, err := r.archiveInstaller.Install(ctx, r.onProgress)
		if err == nil {
			r.resolve(path, toolchain.InstalledViaArchive)
			return true
		}
		r.logger.Error("ffmpeg archive installation failed", zap.Error(err))
	}

	r.advance(false)
	r.logger.Warn("ffmpeg is unavailable")
	return false
}

// Binary returns the resolved binary, if any
func (r *Resolver) Binary() (toolchain.ResolvedBinary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != toolchain.Resolved {
		return toolchain.ResolvedBinary{}, false
	}
	return r.binary, true
}

// State returns the current resolution state
func (r *Resolver) State() toolchain.ResolutionState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Resolver) tryPackageManager(ctx context.Context) bool {
	if r.goos != "windows" || r.packageInstaller == nil {
		return false
	}
	return r.packageInstaller.TryInstall(ctx)
}

func (r *Resolver) advance(succeeded bool) {
	next := toolchain.Next(r.state, succeeded)
	r.logger.Debug("resolution state", zap.Stringer("from", r.state), zap.Stringer("to", next))
	r.state = next
}

func (r *Resolver) resolve(path string, method toolchain.ResolutionMethod) {
	r.advance(true)
	r.binary = toolchain.ResolvedBinary{Path: path, Method: method}
	r.logger.Info("ffmpeg resolved", zap.String("path", path), zap.Stringer("method", method))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
