package installer

import (
	"context"

	"go.uber.org/zap"

	"frame-extractor/domain/toolchain"
	"frame-extractor/infrastructure/ffmpeg"
)

// WingetPackageID is the winget package that provides ffmpeg
const WingetPackageID = "Gyan.FFmpeg"

// WingetInstaller installs ffmpeg with the Windows package manager after
// asking the user for consent
type WingetInstaller struct {
	commands  ffmpeg.CommandRunner
	confirmer toolchain.Confirmer
	logger    *zap.Logger
}

// WingetOption is a functional option for configuring WingetInstaller
type WingetOption func(*WingetInstaller)

// WithWingetCommandRunner sets the command runner (for testing)
func WithWingetCommandRunner(runner ffmpeg.CommandRunner) WingetOption {
	return func(w *WingetInstaller) {
		w.commands = runner
	}
}

// WithWingetLogger sets the logger
func WithWingetLogger(logger *zap.Logger) WingetOption {
	return func(w *WingetInstaller) {
		w.logger = logger
	}
}

// NewWingetInstaller creates a winget-backed installer
func NewWingetInstaller(confirmer toolchain.Confirmer, opts ...WingetOption) *WingetInstaller {
	w := &WingetInstaller{
		commands:  &ffmpeg.ExecCommandRunner{},
		confirmer: confirmer,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Available reports whether winget can be started and answers "winget list"
func (w *WingetInstaller) Available(ctx context.Context) bool {
	if _, err := w.commands.Output(ctx, "winget", "list"); err != nil {
		w.logger.Debug("winget unavailable", zap.Error(err))
		return false
	}
	return true
}

// TryInstall implements toolchain.PackageInstaller. Success is decided by
// the exit code of "winget install" alone.
func (w *WingetInstaller) TryInstall(ctx context.Context) bool {
	if !w.Available(ctx) {
		return false
	}

	ok, err := w.confirmer.Confirm("Install FFmpeg using winget?", true)
	if err != nil {
		w.logger.Debug("winget consent prompt failed", zap.Error(err))
		return false
	}
	if !ok {
		w.logger.Info("user declined winget install")
		return false
	}

	w.logger.Info("installing ffmpeg with winget", zap.String("package", WingetPackageID))
	err = w.commands.Run(ctx, "winget", "install",
		"--id", WingetPackageID,
		"-e",
		"--accept-source-agreements",
		"--accept-package-agreements",
	)
	if err != nil {
		w.logger.Warn("winget install failed", zap.Error(err))
		return false
	}

	return true
}

var _ toolchain.PackageInstaller = (*WingetInstaller)(nil)
