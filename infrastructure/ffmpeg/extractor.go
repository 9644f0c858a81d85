package ffmpeg

import (
	"context"

	"frame-extractor/domain/video"
)

// ProcessRunner runs an ffmpeg invocation to completion
type ProcessRunner interface {
	Run(ctx context.Context, binary string, args []string, onProgress video.ProgressFunc) (video.RunResult, error)
}

// Extractor implements video.FrameExtractor using ffmpeg
type Extractor struct {
	runner ProcessRunner
}

// ExtractorOption is a functional option for configuring Extractor
type ExtractorOption func(*Extractor)

// WithProcessRunner sets a custom process runner (for testing)
func WithProcessRunner(runner ProcessRunner) ExtractorOption {
	return func(e *Extractor) {
		e.runner = runner
	}
}

// NewExtractor creates a new FFmpeg-based frame extractor
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		runner: NewRunner(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// BuildArgs returns the ffmpeg arguments for req
func BuildArgs(req *video.ExtractionRequest) []string {
	return []string{
		"-ss", req.Start.String(),
		"-to", req.End.String(),
		"-i", req.SourcePath,
		"-vf", req.FPSFilter(),
		"-fps_mode", "vfr",
		"-y", // Overwrite frames left by a previous run
		req.OutputPattern(),
	}
}

// Extract implements video.FrameExtractor
func (e *Extractor) Extract(ctx context.Context, binary string, req *video.ExtractionRequest, onProgress video.ProgressFunc) (video.RunResult, error) {
	return e.runner.Run(ctx, binary, BuildArgs(req), onProgress)
}

// Ensure Extractor implements video.FrameExtractor
var _ video.FrameExtractor = (*Extractor)(nil)
