package video

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Defaults used when the caller leaves a field empty
const (
	DefaultFPS    = 10
	DefaultPrefix = "frame"
	DefaultFormat = FormatPNG
)

// ImageFormat is the still-image container ffmpeg writes each frame to
type ImageFormat string

const (
	FormatPNG  ImageFormat = "png"
	FormatJPG  ImageFormat = "jpg"
	FormatJPEG ImageFormat = "jpeg"
)

// SupportedFormats lists the accepted output formats in display order
var SupportedFormats = []ImageFormat{FormatPNG, FormatJPG, FormatJPEG}

// ParseImageFormat parses a format name case-insensitively
func ParseImageFormat(s string) (ImageFormat, error) {
	f := ImageFormat(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: unsupported image format %q: expected png, jpg or jpeg", ErrValidation, s)
	}
	return f, nil
}

// Valid reports whether f is one of the supported formats
func (f ImageFormat) Valid() bool {
	for _, supported := range SupportedFormats {
		if f == supported {
			return true
		}
	}
	return false
}

// String returns the format as the file extension without a dot
func (f ImageFormat) String() string {
	return string(f)
}

// ExtractionRequest describes one frame extraction job. It is treated as an
// immutable value once built.
type ExtractionRequest struct {
	SourcePath string
	OutputDir  string
	Start      Timestamp // inclusive
	End        Timestamp // exclusive
	FPS        int
	Prefix     string
	Format     ImageFormat
}

// NewExtractionRequest builds and validates a request from raw user input.
// Timestamps accept ss, mm:ss or HH:MM:SS.
func NewExtractionRequest(sourcePath, outputDir, start, end string, fps int, prefix, format string) (*ExtractionRequest, error) {
	startTS, err := NormalizeTimestamp(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start time: %w", err)
	}

	endTS, err := NormalizeTimestamp(end)
	if err != nil {
		return nil, fmt.Errorf("invalid end time: %w", err)
	}

	imageFormat, err := ParseImageFormat(format)
	if err != nil {
		return nil, err
	}

	req := &ExtractionRequest{
		SourcePath: sourcePath,
		OutputDir:  outputDir,
		Start:      startTS,
		End:        endTS,
		FPS:        fps,
		Prefix:     strings.TrimSpace(prefix),
		Format:     imageFormat,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks the request invariants that do not touch the filesystem
func (r *ExtractionRequest) Validate() error {
	if strings.TrimSpace(r.SourcePath) == "" {
		return fmt.Errorf("%w: source path is required", ErrValidation)
	}

	if strings.TrimSpace(r.OutputDir) == "" {
		return fmt.Errorf("%w: output directory is required", ErrValidation)
	}

	if !r.Start.Before(r.End) {
		return fmt.Errorf("%w: end time %s must be after start time %s", ErrValidation, r.End, r.Start)
	}

	if r.FPS <= 0 {
		return fmt.Errorf("%w: fps must be a positive integer, got %d", ErrValidation, r.FPS)
	}

	if strings.TrimSpace(r.Prefix) == "" {
		return fmt.Errorf("%w: frame name prefix is required", ErrValidation)
	}

	if !r.Format.Valid() {
		return fmt.Errorf("%w: unsupported image format %q", ErrValidation, r.Format)
	}

	return nil
}

// OutputPattern returns the numbered-file pattern ffmpeg writes frames to,
// e.g. /out/frame%d.png
func (r *ExtractionRequest) OutputPattern() string {
	return filepath.Join(r.OutputDir, r.Prefix+"%d."+r.Format.String())
}

// FPSFilter returns the ffmpeg video filter selecting the output frame rate
func (r *ExtractionRequest) FPSFilter() string {
	return "fps=" + strconv.Itoa(r.FPS)
}

// ProgressPercent converts a time= position reported by ffmpeg into a
// percentage of the requested range, clamped to 0-100. ffmpeg counts output
// time from zero after the input seek, so position is elapsed time.
func (r *ExtractionRequest) ProgressPercent(position Timestamp) int {
	span := r.End.TotalSeconds() - r.Start.TotalSeconds()
	if span <= 0 {
		return 100
	}
	percent := position.TotalSeconds() * 100 / span
	switch {
	case percent < 0:
		return 0
	case percent > 100:
		return 100
	}
	return percent
}

// DefaultOutputDir returns "<source name>_<format>", the directory used when
// the caller does not name one
func DefaultOutputDir(sourcePath string, format ImageFormat) string {
	base := filepath.Base(sourcePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return name + "_" + format.String()
}
