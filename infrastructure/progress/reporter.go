// Package progress renders download and extraction progress on the terminal.
package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"frame-extractor/domain/toolchain"
	"frame-extractor/domain/video"
)

const processingPrefix = "Processing: "

// Reporter writes progress to out and ffmpeg diagnostics to errOut. On a
// terminal downloads get a progress bar and extraction progress rewrites a
// single line; otherwise every update is a plain line.
type Reporter struct {
	mu          sync.Mutex
	out         io.Writer
	errOut      io.Writer
	interactive bool

	bar         *progressbar.ProgressBar
	lastPercent int
	inline      bool

	extractBar  *progressbar.ProgressBar
	lastExtract int

	green  func(a ...interface{}) string
	red    func(a ...interface{}) string
	yellow func(a ...interface{}) string
}

// NewReporter creates a Reporter
func NewReporter(out, errOut io.Writer, interactive bool) *Reporter {
	return &Reporter{
		out:         out,
		errOut:      errOut,
		interactive: interactive,
		lastPercent: -1,
		lastExtract: -1,
		green:       color.New(color.FgGreen).SprintFunc(),
		red:         color.New(color.FgRed).SprintFunc(),
		yellow:      color.New(color.FgYellow).SprintFunc(),
	}
}

// Download renders an archive download update
func (r *Reporter) Download(p toolchain.DownloadProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	downloading := strings.HasPrefix(p.Status, "Downloading")

	if r.interactive {
		if downloading {
			if r.bar == nil {
				r.bar = r.newBar("Downloading FFmpeg")
			}
			if p.Percent > 0 {
				_ = r.bar.Set(p.Percent)
			} else {
				r.bar.Describe(p.Status)
			}
			return
		}

		if r.bar != nil {
			_ = r.bar.Finish()
			fmt.Fprintln(r.out)
			r.bar = nil
		}
		if strings.HasSuffix(p.Status, "successfully") {
			fmt.Fprintln(r.out, r.green(p.Status))
		} else {
			fmt.Fprintln(r.out, p.Status)
		}
		return
	}

	// Plain output: one line per 10% step, plus every non-download status.
	if downloading && p.Percent > 0 {
		step := p.Percent / 10 * 10
		if step == r.lastPercent {
			return
		}
		r.lastPercent = step
		fmt.Fprintf(r.out, "Downloading FFmpeg... %d%%\n", step)
		return
	}
	if downloading {
		if r.lastPercent == 0 {
			return
		}
		r.lastPercent = 0
	}
	if strings.HasSuffix(p.Status, "successfully") {
		fmt.Fprintln(r.out, r.green(p.Status))
		return
	}
	fmt.Fprintln(r.out, p.Status)
}

// Progress renders how far an extraction is through its time range. On a
// terminal it drives a progress bar; otherwise a line is printed whenever
// the percentage crosses a 10% step.
func (r *Reporter) Progress(percent int, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.interactive {
		if r.extractBar == nil {
			r.extractBar = r.newBar("Extracting frames")
		}
		_ = r.extractBar.Set(percent)
		r.inline = true
		return
	}

	step := percent / 10 * 10
	if step == r.lastExtract {
		return
	}
	r.lastExtract = step
	fmt.Fprintf(r.out, "%s (%d%%)\n", status, percent)
}

// Status renders an extraction status line
func (r *Reporter) Status(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.HasPrefix(status, processingPrefix) && r.interactive {
		fmt.Fprintf(r.out, "\r%s", status)
		r.inline = true
		return
	}

	r.endInline()
	fmt.Fprintln(r.out, status)
}

// Success prints a green status line
func (r *Reporter) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endInline()
	fmt.Fprintln(r.out, r.green(msg))
}

// Failure prints a red status line
func (r *Reporter) Failure(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endInline()
	fmt.Fprintln(r.out, r.red(msg))
}

// Hint prints a yellow advisory line
func (r *Reporter) Hint(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endInline()
	fmt.Fprintln(r.out, r.yellow(msg))
}

// ReportDiagnostics implements video.DiagnosticsReporter by writing
// ffmpeg's stderr verbatim
func (r *Reporter) ReportDiagnostics(diagnostics string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.endInline()

	fmt.Fprintln(r.errOut, r.red("FFmpeg error output:"))
	fmt.Fprint(r.errOut, diagnostics)
	if !strings.HasSuffix(diagnostics, "\n") {
		fmt.Fprintln(r.errOut)
	}
}

func (r *Reporter) newBar(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(100,
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer: "█", SaucerHead: "█", SaucerPadding: "░",
			BarStart: "[", BarEnd: "]",
		}),
	)
}

// endInline moves past a rewritten line or an extraction bar. The bar is
// left at its last value so a failed run does not show 100%.
func (r *Reporter) endInline() {
	r.extractBar = nil
	r.lastExtract = -1
	if r.inline {
		fmt.Fprintln(r.out)
		r.inline = false
	}
}

var _ video.DiagnosticsReporter = (*Reporter)(nil)
