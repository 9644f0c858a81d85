package video

import "errors"

var (
	// ErrNotFound is returned when no ffmpeg binary could be found or installed
	ErrNotFound = errors.New("ffmpeg not available")

	// ErrNetwork is returned when an archive download fails or returns a non-2xx status
	ErrNetwork = errors.New("download failed")

	// ErrExtraction is returned when an archive cannot be unpacked or holds no ffmpeg binary
	ErrExtraction = errors.New("archive extraction failed")

	// ErrProcess is returned when ffmpeg exits with a non-zero status
	ErrProcess = errors.New("ffmpeg process failed")

	// ErrValidation is returned when an extraction request is malformed
	ErrValidation = errors.New("invalid extraction request")

	// ErrUnexpected wraps any other failure caught at the orchestrator boundary
	ErrUnexpected = errors.New("unexpected error")
)
