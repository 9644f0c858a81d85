package cmd

import (
	"os"

	apptoolchain "frame-extractor/application/toolchain"
	appvideo "frame-extractor/application/video"
	"frame-extractor/infrastructure/config"
	"frame-extractor/infrastructure/ffmpeg"
	"frame-extractor/infrastructure/filesystem"
	"frame-extractor/infrastructure/installer"
	"frame-extractor/infrastructure/platform"
	"frame-extractor/infrastructure/progress"
	"frame-extractor/infrastructure/prompt"

	"go.uber.org/zap"
)

// engine holds the production object graph shared by the commands
type engine struct {
	locator  *ffmpeg.Locator
	prober   *ffmpeg.Prober
	detector platform.Detector
	archive  *installer.ArchiveInstaller
	resolver *apptoolchain.Resolver
	service  *appvideo.ExtractService
	files    *filesystem.Checker
	reporter *progress.Reporter
}

// newEngine wires production implementations from configuration
func newEngine(c *config.Config, logger *zap.Logger, assumeYes bool) (*engine, error) {
	dir, err := installDir(c)
	if err != nil {
		return nil, err
	}

	reporter := progress.NewReporter(os.Stdout, os.Stderr, prompt.IsTerminal(os.Stdout))
	detector := platform.NewDetector()
	commands := &ffmpeg.ExecCommandRunner{Stderr: os.Stderr}

	locator := ffmpeg.NewLocator(ffmpeg.WithLocatorLogger(logger))
	runner := ffmpeg.NewRunner(ffmpeg.WithRunnerLogger(logger))
	extractor := ffmpeg.NewExtractor(ffmpeg.WithProcessRunner(runner))
	prober := ffmpeg.NewProber(ffmpeg.WithProberRunner(runner), ffmpeg.WithProberCommandRunner(commands))

	archive := installer.NewArchiveInstaller(dir,
		installer.WithDetector(detector),
		installer.WithDownloader(installer.NewDownloader()),
		installer.WithUnpacker(installer.NewUnpacker(
			installer.WithCommandRunner(commands),
			installer.WithUnpackerLogger(logger),
		)),
		installer.WithArchiveLogger(logger),
	)

	opts := []apptoolchain.ResolverOption{
		apptoolchain.WithPinnedPath(c.FFmpeg.Path),
		apptoolchain.WithDownloadProgress(reporter.Download),
		apptoolchain.WithLogger(logger),
	}
	if !c.Install.SkipPackageManager {
		confirmer := prompt.NewConfirmer(assumeYes || c.Install.AssumeYes, prompt.IsTerminal(os.Stdin))
		opts = append(opts, apptoolchain.WithPackageInstaller(installer.NewWingetInstaller(confirmer,
			installer.WithWingetCommandRunner(commands),
			installer.WithWingetLogger(logger),
		)))
	}
	resolver := apptoolchain.NewResolver(locator, archive, opts...)

	files := filesystem.NewChecker()
	service := appvideo.NewExtractService(resolver, extractor, prober, files, files,
		appvideo.WithDiagnosticsReporter(reporter),
		appvideo.WithLogger(logger),
	)

	return &engine{
		locator:  locator,
		prober:   prober,
		detector: detector,
		archive:  archive,
		resolver: resolver,
		service:  service,
		files:    files,
		reporter: reporter,
	}, nil
}
