package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"frame-extractor/domain/video"
)

// commandContext is swapped in tests to spawn a helper process
var commandContext = exec.CommandContext

const (
	// stderrChunkSize is the fixed read size for the stderr drain
	stderrChunkSize = 1024
	// progressTail is one byte shorter than a complete "time=HH:MM:SS" marker
	progressTail = len("time=00:00:00") - 1
)

var progressPattern = regexp.MustCompile(`time=(\d{2}:\d{2}:\d{2})`)

// Runner spawns ffmpeg, drains its stderr concurrently and reports progress
type Runner struct {
	logger *zap.Logger
}

// RunnerOption is a functional option for configuring Runner
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger
func WithRunnerLogger(logger *zap.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new process runner
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{logger: zap.NewNop()}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run starts binary with args and blocks until it exits. Stdout is discarded
// and stdin is empty. Every "time=HH:MM:SS" marker on stderr is reported as
// "Processing: HH:MM:SS"; onProgress may be nil. A non-zero exit is not an
// error: it is reported through RunResult.ExitCode with the full stderr text.
func (r *Runner) Run(ctx context.Context, binary string, args []string, onProgress video.ProgressFunc) (video.RunResult, error) {
	cmd := commandContext(ctx, binary, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return video.RunResult{ExitCode: -1}, fmt.Errorf("stderr pipe: %w", err)
	}

	r.logger.Debug("starting ffmpeg", zap.String("binary", binary), zap.Strings("args", args))
	if err := cmd.Start(); err != nil {
		return video.RunResult{ExitCode: -1}, fmt.Errorf("start %s: %w", binary, err)
	}

	var diagnostics strings.Builder
	drained := make(chan error, 1)
	go func() {
		drained <- drainStderr(stderr, &diagnostics, onProgress)
	}()

	// The pipe must be fully read before Wait closes it.
	drainErr := <-drained
	waitErr := cmd.Wait()

	result := video.RunResult{Diagnostics: diagnostics.String()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("ffmpeg interrupted: %w", ctxErr)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			result.ExitCode = -1
			return result, fmt.Errorf("wait for %s: %w", binary, waitErr)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if drainErr != nil {
		r.logger.Warn("stderr drain ended early", zap.Error(drainErr))
	}

	r.logger.Debug("ffmpeg exited", zap.Int("exit_code", result.ExitCode))
	return result, nil
}

// drainStderr copies r into diagnostics in fixed-size chunks and reports
// progress markers. The last progressTail bytes of each chunk are kept and
// prepended to the next one so a marker split across two reads is still seen.
// Only matches ending inside the new chunk are reported.
func drainStderr(r io.Reader, diagnostics *strings.Builder, onProgress video.ProgressFunc) error {
	buf := make([]byte, stderrChunkSize)
	var tail []byte

	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			diagnostics.Write(chunk)

			if onProgress != nil {
				window := make([]byte, 0, len(tail)+n)
				window = append(window, tail...)
				window = append(window, chunk...)

				for _, m := range progressPattern.FindAllSubmatchIndex(window, -1) {
					if m[1] <= len(tail) {
						continue
					}
					onProgress(video.ProcessingPrefix + string(window[m[2]:m[3]]))
				}

				keep := progressTail
				if len(window) < keep {
					keep = len(window)
				}
				tail = append(tail[:0], window[len(window)-keep:]...)
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
