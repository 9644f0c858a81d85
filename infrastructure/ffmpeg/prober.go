package ffmpeg

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"frame-extractor/domain/video"
)

var durationPattern = regexp.MustCompile(`Duration: (\d{2}:\d{2}:\d{2})`)

// Prober reads stream information from ffmpeg's banner output
type Prober struct {
	runner   ProcessRunner
	commands CommandRunner
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

// WithProberRunner sets the process runner used for duration probes (for testing)
func WithProberRunner(runner ProcessRunner) ProberOption {
	return func(p *Prober) {
		p.runner = runner
	}
}

// WithProberCommandRunner sets the command runner used for version checks (for testing)
func WithProberCommandRunner(runner CommandRunner) ProberOption {
	return func(p *Prober) {
		p.commands = runner
	}
}

// NewProber creates a new Prober
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		runner:   NewRunner(),
		commands: &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Probe implements video.DurationProber. ffmpeg exits non-zero when given no
// output file, so the exit code is ignored and only stderr is inspected.
func (p *Prober) Probe(ctx context.Context, binary, path string) (string, error) {
	result, err := p.runner.Run(ctx, binary, []string{"-i", path}, nil)
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", path, err)
	}

	matches := durationPattern.FindStringSubmatch(result.Diagnostics)
	if matches == nil {
		return "", fmt.Errorf("%w: no duration reported for %s", video.ErrProcess, path)
	}

	return matches[1], nil
}

// Version returns the first line of "ffmpeg -version"
func (p *Prober) Version(ctx context.Context, binary string) (string, error) {
	out, err := p.commands.Output(ctx, binary, "-version")
	if err != nil {
		return "", fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}

	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// Ensure Prober implements video.DurationProber
var _ video.DurationProber = (*Prober)(nil)
