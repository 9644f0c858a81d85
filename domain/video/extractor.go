package video

import (
	"context"
	"strings"
)

// ProcessingPrefix starts every progress status derived from ffmpeg's time= marker
const ProcessingPrefix = "Processing: "

// ParseProcessingStatus returns the position carried by a "Processing: HH:MM:SS"
// status. ok is false for any other status.
func ParseProcessingStatus(status string) (position Timestamp, ok bool) {
	if !strings.HasPrefix(status, ProcessingPrefix) {
		return Timestamp{}, false
	}
	ts, err := ParseTimestamp(strings.TrimPrefix(status, ProcessingPrefix))
	if err != nil {
		return Timestamp{}, false
	}
	return ts, true
}

// ProgressFunc receives free-text status updates during an extraction job
type ProgressFunc func(status string)

// RunResult is what a finished ffmpeg invocation reports
type RunResult struct {
	ExitCode    int
	Diagnostics string
}

// FrameExtractor defines the interface for running an extraction against a
// resolved ffmpeg binary. This is a port implemented by infrastructure adapters.
type FrameExtractor interface {
	// Extract runs ffmpeg for req and streams "Processing: HH:MM:SS" updates to onProgress
	Extract(ctx context.Context, binary string, req *ExtractionRequest, onProgress ProgressFunc) (RunResult, error)
}

// DurationProber reads the duration marker ffmpeg prints when opening a file
type DurationProber interface {
	// Probe returns the HH:MM:SS duration of path
	Probe(ctx context.Context, binary, path string) (string, error)
}

// FileChecker defines the interface for checking file existence
// This is used to validate that source files exist before extracting
type FileChecker interface {
	// Exists returns true if the file exists
	Exists(path string) bool
}

// DirectoryCreator creates the output directory before ffmpeg writes to it
type DirectoryCreator interface {
	// EnsureDir is idempotent
	EnsureDir(path string) error
}

// DiagnosticsReporter receives ffmpeg's complete stderr after a failed run
type DiagnosticsReporter interface {
	ReportDiagnostics(diagnostics string)
}
