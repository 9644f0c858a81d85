//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	appvideo "frame-extractor/application/video"
	"frame-extractor/cmd"
	"frame-extractor/domain/toolchain"
	"frame-extractor/domain/video"
	"frame-extractor/infrastructure/ffmpeg"

	"github.com/cucumber/godog"
	"go.uber.org/zap"
)

// stubResolver reports a fixed resolution result
type stubResolver struct {
	binary    string
	available bool
	calls     int
}

func (r *stubResolver) EnsureAvailable(ctx context.Context) bool {
	r.calls++
	return r.available
}

func (r *stubResolver) Binary() (toolchain.ResolvedBinary, bool) {
	if !r.available {
		return toolchain.ResolvedBinary{}, false
	}
	return toolchain.ResolvedBinary{Path: r.binary, Method: toolchain.FoundInPath}, true
}

// recordingExtractor records ffmpeg invocations instead of running them
type recordingExtractor struct {
	calls       []extractCall
	exitCode    int
	diagnostics string
}

type extractCall struct {
	binary string
	args   []string
}

func (e *recordingExtractor) Extract(ctx context.Context, binary string, req *video.ExtractionRequest, onProgress video.ProgressFunc) (video.RunResult, error) {
	e.calls = append(e.calls, extractCall{binary: binary, args: ffmpeg.BuildArgs(req)})
	if e.exitCode != 0 {
		return video.RunResult{ExitCode: e.exitCode, Diagnostics: e.diagnostics}, nil
	}
	if onProgress != nil {
		onProgress("Processing: 00:00:03")
	}
	return video.RunResult{}, nil
}

// stubProber returns a fixed duration
type stubProber struct {
	duration string
}

func (p *stubProber) Probe(ctx context.Context, binary, path string) (string, error) {
	if p.duration == "" {
		return "", fmt.Errorf("%w: no duration", video.ErrProcess)
	}
	return p.duration, nil
}

// memoryFiles simulates the filesystem
type memoryFiles struct {
	existing map[string]bool
	created  []string
}

func (f *memoryFiles) Exists(path string) bool { return f.existing[path] }

func (f *memoryFiles) EnsureDir(path string) error {
	f.created = append(f.created, path)
	return nil
}

// recordingReporter captures everything the command shows the user
type recordingReporter struct {
	statuses    []string
	successes   []string
	failures    []string
	hints       []string
	diagnostics []string
}

func (r *recordingReporter) Status(s string)            { r.statuses = append(r.statuses, s) }
func (r *recordingReporter) Progress(p int, s string)   { r.statuses = append(r.statuses, s) }
func (r *recordingReporter) Success(s string)           { r.successes = append(r.successes, s) }
func (r *recordingReporter) Failure(s string)           { r.failures = append(r.failures, s) }
func (r *recordingReporter) Hint(s string)              { r.hints = append(r.hints, s) }
func (r *recordingReporter) ReportDiagnostics(d string) { r.diagnostics = append(r.diagnostics, d) }

// extractContext holds test state for extraction scenarios
type extractContext struct {
	resolver  *stubResolver
	extractor *recordingExtractor
	prober    *stubProber
	files     *memoryFiles
	reporter  *recordingReporter
	output    *bytes.Buffer
	duration  string
	err       error
}

// SharedExtractContext is reset before each scenario via Before hook
var SharedExtractContext *extractContext

func InitializeExtractScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedExtractContext = &extractContext{
			resolver:  &stubResolver{},
			extractor: &recordingExtractor{},
			prober:    &stubProber{},
			files:     &memoryFiles{existing: make(map[string]bool)},
			reporter:  &recordingReporter{},
			output:    &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.Step(`^a video "([^"]*)" exists$`, aVideoExists)
	ctx.Step(`^ffmpeg is available at "([^"]*)"$`, ffmpegIsAvailableAt)
	ctx.Step(`^ffmpeg is not available$`, ffmpegIsNotAvailable)
	ctx.Step(`^ffmpeg will fail with exit code (\d+) and output "([^"]*)"$`, ffmpegWillFail)
	ctx.Step(`^the video duration is "([^"]*)"$`, theVideoDurationIs)
	ctx.Step(`^I extract frames from "([^"]*)" between "([^"]*)" and "([^"]*)" at (\d+) fps as "([^"]*)"$`, iExtractFramesBetween)
	ctx.Step(`^I extract frames from "([^"]*)" starting at "([^"]*)" at (\d+) fps as "([^"]*)"$`, iExtractFramesStartingAt)
	ctx.Step(`^I ask for the duration of "([^"]*)"$`, iAskForTheDurationOf)
	ctx.Step(`^the extraction should succeed$`, theExtractionShouldSucceed)
	ctx.Step(`^the extraction should fail with "([^"]*)"$`, theExtractionShouldFailWith)
	ctx.Step(`^ffmpeg "([^"]*)" should be run with "([^"]*)" "([^"]*)"$`, ffmpegShouldBeRunWith)
	ctx.Step(`^ffmpeg should not be run$`, ffmpegShouldNotBeRun)
	ctx.Step(`^frames should be written to "([^"]*)"$`, framesShouldBeWrittenTo)
	ctx.Step(`^the status "([^"]*)" should be reported$`, theStatusShouldBeReported)
	ctx.Step(`^the failure "([^"]*)" should be reported$`, theFailureShouldBeReported)
	ctx.Step(`^the diagnostics "([^"]*)" should be reported$`, theDiagnosticsShouldBeReported)
	ctx.Step(`^a manual install hint should be shown$`, aManualInstallHintShouldBeShown)
	ctx.Step(`^the duration should be "([^"]*)"$`, theDurationShouldBe)
}

func getExtractContext() *extractContext {
	return SharedExtractContext
}

func (e *extractContext) service() *appvideo.ExtractService {
	return appvideo.NewExtractService(e.resolver, e.extractor, e.prober, e.files, e.files,
		appvideo.WithDiagnosticsReporter(e.reporter),
	)
}

func aVideoExists(name string) error {
	getExtractContext().files.existing[name] = true
	return nil
}

func ffmpegIsAvailableAt(path string) error {
	e := getExtractContext()
	e.resolver.available = true
	e.resolver.binary = path
	return nil
}

func ffmpegIsNotAvailable() error {
	getExtractContext().resolver.available = false
	return nil
}

func ffmpegWillFail(code int, output string) error {
	e := getExtractContext()
	e.extractor.exitCode = code
	e.extractor.diagnostics = output
	return nil
}

func theVideoDurationIs(duration string) error {
	getExtractContext().prober.duration = duration
	return nil
}

func iExtractFramesBetween(source, start, end string, fps int, format string) error {
	return runExtract(source, start, end, fps, format)
}

func iExtractFramesStartingAt(source, start string, fps int, format string) error {
	return runExtract(source, start, "", fps, format)
}

func runExtract(source, start, end string, fps int, format string) error {
	e := getExtractContext()
	hint := func() string { return "sudo apt install ffmpeg" }

	e.err = cmd.RunExtractWithDependencies(context.Background(), e.service(), e.files, e.reporter, hint, cmd.ExtractOptions{
		SourcePath: source,
		StartTime:  start,
		EndTime:    end,
		FPS:        fps,
		Prefix:     video.DefaultPrefix,
		Format:     format,
	}, zap.NewNop(), e.output)
	return nil
}

func iAskForTheDurationOf(source string) error {
	e := getExtractContext()
	e.duration = e.service().ProbeDuration(context.Background(), source)
	return nil
}

func theExtractionShouldSucceed() error {
	e := getExtractContext()
	if e.err != nil {
		return fmt.Errorf("expected success, got error: %v", e.err)
	}
	return nil
}

func theExtractionShouldFailWith(expected string) error {
	e := getExtractContext()
	if e.err == nil {
		return fmt.Errorf("expected error containing %q, got success", expected)
	}
	if !strings.Contains(e.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, e.err.Error())
	}
	return nil
}

func ffmpegShouldBeRunWith(binary, flag, value string) error {
	e := getExtractContext()
	if len(e.extractor.calls) != 1 {
		return fmt.Errorf("expected 1 ffmpeg run, got %d", len(e.extractor.calls))
	}
	call := e.extractor.calls[0]
	if call.binary != binary {
		return fmt.Errorf("expected binary %q, got %q", binary, call.binary)
	}
	for i := 0; i < len(call.args)-1; i++ {
		if call.args[i] == flag {
			if call.args[i+1] != value {
				return fmt.Errorf("expected %s %s, got %s %s", flag, value, flag, call.args[i+1])
			}
			return nil
		}
	}
	return fmt.Errorf("flag %s not found in %v", flag, call.args)
}

func ffmpegShouldNotBeRun() error {
	e := getExtractContext()
	if len(e.extractor.calls) != 0 {
		return fmt.Errorf("expected no ffmpeg runs, got %d", len(e.extractor.calls))
	}
	return nil
}

func framesShouldBeWrittenTo(pattern string) error {
	e := getExtractContext()
	if len(e.extractor.calls) != 1 {
		return fmt.Errorf("expected 1 ffmpeg run, got %d", len(e.extractor.calls))
	}
	args := e.extractor.calls[0].args
	want := filepath.FromSlash(pattern)
	if got := args[len(args)-1]; got != want {
		return fmt.Errorf("expected output pattern %q, got %q", want, got)
	}
	return nil
}

func theStatusShouldBeReported(status string) error {
	r := getExtractContext().reporter
	all := append(append([]string{}, r.statuses...), r.successes...)
	for _, s := range all {
		if s == status {
			return nil
		}
	}
	return fmt.Errorf("status %q not reported; got %v", status, all)
}

func theFailureShouldBeReported(status string) error {
	r := getExtractContext().reporter
	for _, s := range r.failures {
		if s == status {
			return nil
		}
	}
	return fmt.Errorf("failure %q not reported; got %v", status, r.failures)
}

func theDiagnosticsShouldBeReported(expected string) error {
	r := getExtractContext().reporter
	if len(r.diagnostics) != 1 || r.diagnostics[0] != expected {
		return fmt.Errorf("expected diagnostics %q, got %v", expected, r.diagnostics)
	}
	return nil
}

func aManualInstallHintShouldBeShown() error {
	r := getExtractContext().reporter
	if len(r.hints) == 0 {
		return fmt.Errorf("no install hint shown")
	}
	return nil
}

func theDurationShouldBe(expected string) error {
	if got := getExtractContext().duration; got != expected {
		return fmt.Errorf("expected duration %q, got %q", expected, got)
	}
	return nil
}
