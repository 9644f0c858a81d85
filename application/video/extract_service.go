package video

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"frame-extractor/domain/toolchain"
	"frame-extractor/domain/video"
)

// Status lines reported through the progress callback
const (
	StatusStarting    = "Starting frame extraction..."
	StatusCompleted   = "Frame extraction completed successfully!"
	StatusFailed      = "Frame extraction failed"
	StatusFailedError = "Frame extraction failed due to error"
	StatusNoBinary    = "FFmpeg is not available and could not be installed."
)

// FallbackDuration is returned by ProbeDuration when the duration is unknown
const FallbackDuration = "00:00:05"

// DependencyResolver makes sure ffmpeg is available before it is invoked
type DependencyResolver interface {
	EnsureAvailable(ctx context.Context) bool
	Binary() (toolchain.ResolvedBinary, bool)
}

// ExtractService coordinates frame extraction jobs
type ExtractService struct {
	resolver  DependencyResolver
	extractor video.FrameExtractor
	prober    video.DurationProber
	files     video.FileChecker
	dirs      video.DirectoryCreator
	reporter  video.DiagnosticsReporter
	logger    *zap.Logger
}

// ExtractServiceOption is a functional option for configuring ExtractService
type ExtractServiceOption func(*ExtractService)

// WithDiagnosticsReporter sets where ffmpeg's stderr goes after a failed run
func WithDiagnosticsReporter(reporter video.DiagnosticsReporter) ExtractServiceOption {
	return func(s *ExtractService) {
		s.reporter = reporter
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ExtractServiceOption {
	return func(s *ExtractService) {
		s.logger = logger
	}
}

// NewExtractService creates a new ExtractService
func NewExtractService(
	resolver DependencyResolver,
	extractor video.FrameExtractor,
	prober video.DurationProber,
	files video.FileChecker,
	dirs video.DirectoryCreator,
	opts ...ExtractServiceOption,
) *ExtractService {
	s := &ExtractService{
		resolver:  resolver,
		extractor: extractor,
		prober:    prober,
		files:     files,
		dirs:      dirs,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Extract runs one extraction job. It always returns an Outcome and always
// reports a terminal status through onProgress; it never panics.
func (s *ExtractService) Extract(ctx context.Context, req *video.ExtractionRequest, onProgress video.ProgressFunc) (outcome video.Outcome) {
	report := func(status string) {
		if onProgress != nil {
			onProgress(status)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("frame extraction panicked", zap.Any("panic", r))
			report(StatusFailedError)
			outcome = video.Outcome{
				Kind:    video.FailedException,
				Message: StatusFailedError,
				Err:     fmt.Errorf("%w: %v", video.ErrUnexpected, r),
			}
		}
	}()

	if err := s.validate(req); err != nil {
		s.logger.Warn("extraction request rejected", zap.Error(err))
		report(err.Error())
		return video.Outcome{Kind: video.FailedValidation, Message: err.Error(), Err: err}
	}

	if !s.resolver.EnsureAvailable(ctx) {
		report(StatusNoBinary)
		return video.Outcome{
			Kind:    video.FailedNoBinary,
			Message: StatusNoBinary,
			Err:     fmt.Errorf("%w: could not be found or installed", video.ErrNotFound),
		}
	}
	binary, _ := s.resolver.Binary()

	if err := s.dirs.EnsureDir(req.OutputDir); err != nil {
		s.logger.Error("cannot create output directory", zap.Error(err))
		report(StatusFailedError)
		return video.Outcome{
			Kind:    video.FailedException,
			Message: StatusFailedError,
			Err:     fmt.Errorf("%w: %v", video.ErrUnexpected, err),
		}
	}

	report(StatusStarting)
	s.logger.Info("starting frame extraction",
		zap.String("source", req.SourcePath),
		zap.String("output", req.OutputPattern()),
		zap.Stringer("start", req.Start),
		zap.Stringer("end", req.End),
		zap.Int("fps", req.FPS),
		zap.String("ffmpeg", binary.Path))

	result, err := s.extractor.Extract(ctx, binary.Path, req, onProgress)
	if err != nil {
		s.logger.Error("frame extraction error", zap.Error(err))
		report(StatusFailedError)
		return video.Outcome{
			Kind:        video.FailedException,
			Message:     StatusFailedError,
			Diagnostics: result.Diagnostics,
			ExitCode:    result.ExitCode,
			Err:         fmt.Errorf("%w: %v", video.ErrUnexpected, err),
		}
	}

	if result.ExitCode != 0 {
		s.logger.Error("ffmpeg failed", zap.Int("exit_code", result.ExitCode))
		s.logger.Debug("ffmpeg stderr", zap.String("stderr", result.Diagnostics))
		if s.reporter != nil {
			s.reporter.ReportDiagnostics(result.Diagnostics)
		}
		report(StatusFailed)
		return video.Outcome{
			Kind:        video.FailedProcessError,
			Message:     StatusFailed,
			Diagnostics: result.Diagnostics,
			ExitCode:    result.ExitCode,
			Err:         fmt.Errorf("%w: exit status %d", video.ErrProcess, result.ExitCode),
		}
	}

	s.logger.Info("frame extraction completed", zap.String("output", req.OutputDir))
	report(StatusCompleted)
	return video.Outcome{Kind: video.Succeeded, Message: StatusCompleted}
}

// ProbeDuration returns the HH:MM:SS duration of path, or FallbackDuration
// when ffmpeg is unavailable or reports nothing. It never fails.
func (s *ExtractService) ProbeDuration(ctx context.Context, path string) (duration string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("reading video duration panicked", zap.String("path", path), zap.Any("panic", r))
			duration = FallbackDuration
		}
	}()

	if !s.resolver.EnsureAvailable(ctx) {
		return FallbackDuration
	}
	binary, _ := s.resolver.Binary()

	var err error
	duration, err = s.prober.Probe(ctx, binary.Path, path)
	if err != nil {
		s.logger.Warn("could not read video duration", zap.String("path", path), zap.Error(err))
		return FallbackDuration
	}
	return duration
}

func (s *ExtractService) validate(req *video.ExtractionRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", video.ErrValidation)
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if !s.files.Exists(req.SourcePath) {
		return fmt.Errorf("%w: source file does not exist: %s", video.ErrValidation, req.SourcePath)
	}
	return nil
}
