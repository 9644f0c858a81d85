package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	appvideo "frame-extractor/application/video"
	"frame-extractor/domain/video"
	"frame-extractor/infrastructure/logging"
	"frame-extractor/infrastructure/platform"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	extractSourcePath string
	extractStartTime  string
	extractEndTime    string
	extractFPS        int
	extractPrefix     string
	extractFormat     string
	extractOutputDir  string
	extractAssumeYes  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract frames from a video between two timestamps",
	Long: `Extract still frames from a video into numbered image files.

Timestamps accept HH:MM:SS, MM:SS or plain seconds. When --end is omitted
the whole video from --start is used. Frames are written as
<output>/<prefix>1.<format>, <prefix>2.<format>, ...

If ffmpeg is missing it is installed first; pass --yes to skip the
confirmation prompt.

Example:
  frame-extractor extract --source clip.mp4 --start 00:00:02 --end 00:00:04 --fps 5 --format jpg`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVar(&extractSourcePath, "source", "", "Path to source video file (required)")
	extractCmd.Flags().StringVar(&extractStartTime, "start", "00:00:00", "Start timestamp (inclusive)")
	extractCmd.Flags().StringVar(&extractEndTime, "end", "", "End timestamp (exclusive, default is the video duration)")
	extractCmd.Flags().IntVar(&extractFPS, "fps", 0, "Frames per second to extract (default from config, 10)")
	extractCmd.Flags().StringVar(&extractPrefix, "prefix", "", "Frame file name prefix (default from config, frame)")
	extractCmd.Flags().StringVar(&extractFormat, "format", "", "Image format: png, jpg or jpeg (default from config, png)")
	extractCmd.Flags().StringVar(&extractOutputDir, "output", "", "Output directory (default <video name>_<format>)")
	extractCmd.Flags().BoolVarP(&extractAssumeYes, "yes", "y", false, "Install ffmpeg without asking")
	extractCmd.MarkFlagRequired("source")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	logger, closeLog := newLogger(cfg)
	defer closeLog()
	logger, _ = logging.WithJob(logger)

	eng, err := newEngine(cfg, logger, extractAssumeYes)
	if err != nil {
		return err
	}

	opts := ExtractOptions{
		SourcePath: extractSourcePath,
		StartTime:  extractStartTime,
		EndTime:    extractEndTime,
		FPS:        pickInt(extractFPS, cfg.Extraction.FPS, video.DefaultFPS),
		Prefix:     pickString(extractPrefix, cfg.Extraction.Prefix, video.DefaultPrefix),
		Format:     pickString(extractFormat, cfg.Extraction.Format, video.DefaultFormat.String()),
		OutputDir:  extractOutputDir,
		OutputRoot: cfg.Extraction.OutputDirectory,
	}

	hint := func() string {
		info, err := eng.detector.Detect(cmd.Context())
		if err != nil {
			return ""
		}
		return platform.ManualInstallHint(info)
	}

	return RunExtractWithDependencies(cmd.Context(), eng.service, eng.files, eng.reporter, hint, opts, logger, os.Stdout)
}

// FrameExtractionService is the application service behind the extract command
type FrameExtractionService interface {
	Extract(ctx context.Context, req *video.ExtractionRequest, onProgress video.ProgressFunc) video.Outcome
	ProbeDuration(ctx context.Context, path string) string
}

// StatusReporter renders extraction status lines
type StatusReporter interface {
	Status(status string)
	// Progress receives "Processing: HH:MM:SS" statuses with the share of
	// the requested range already covered
	Progress(percent int, status string)
	Success(msg string)
	Failure(msg string)
	Hint(msg string)
}

// ExtractOptions holds the resolved command-line values of an extract run
type ExtractOptions struct {
	SourcePath string
	StartTime  string
	EndTime    string
	FPS        int
	Prefix     string
	Format     string
	// OutputDir is used as-is when set
	OutputDir string
	// OutputRoot is the parent of the default output directory when OutputDir is empty
	OutputRoot string
}

// RunExtractWithDependencies runs the extract command with injected dependencies (for testing)
func RunExtractWithDependencies(
	ctx context.Context,
	service FrameExtractionService,
	files video.FileChecker,
	reporter StatusReporter,
	hint func() string,
	opts ExtractOptions,
	logger *zap.Logger,
	output OutputWriter,
) error {
	format, err := video.ParseImageFormat(opts.Format)
	if err != nil {
		reporter.Failure(err.Error())
		return err
	}

	// Checked here as well as in the service so a mistyped --source never
	// triggers an ffmpeg install just to read its duration.
	if !files.Exists(opts.SourcePath) {
		err := fmt.Errorf("%w: source file does not exist: %s", video.ErrValidation, opts.SourcePath)
		reporter.Failure(err.Error())
		return err
	}

	endTime := strings.TrimSpace(opts.EndTime)
	if endTime == "" {
		endTime = service.ProbeDuration(ctx, opts.SourcePath)
		fmt.Fprintf(output, "Video duration: %s\n", endTime)
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = video.DefaultOutputDir(opts.SourcePath, format)
		if opts.OutputRoot != "" {
			outputDir = filepath.Join(opts.OutputRoot, outputDir)
		}
	}

	req, err := video.NewExtractionRequest(opts.SourcePath, outputDir, opts.StartTime, endTime, opts.FPS, opts.Prefix, format.String())
	if err != nil {
		reporter.Failure(err.Error())
		return err
	}

	logger.Info("extract requested",
		zap.String("source", req.SourcePath),
		zap.String("output_dir", req.OutputDir))

	outcome := service.Extract(ctx, req, func(status string) {
		switch status {
		case appvideo.StatusCompleted:
			reporter.Success(status)
		case appvideo.StatusFailed, appvideo.StatusFailedError, appvideo.StatusNoBinary:
			reporter.Failure(status)
		default:
			if position, ok := video.ParseProcessingStatus(status); ok {
				reporter.Progress(req.ProgressPercent(position), status)
				return
			}
			reporter.Status(status)
		}
	})

	if !outcome.Succeeded() {
		if outcome.Kind == video.FailedNoBinary && hint != nil {
			if h := hint(); h != "" {
				reporter.Hint("Install it manually with: " + h)
			}
		}
		return outcome.AsError()
	}

	fmt.Fprintf(output, "Frames written to %s\n", req.OutputDir)
	return nil
}

func pickInt(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

func pickString(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
