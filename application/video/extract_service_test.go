package video

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"frame-extractor/domain/toolchain"
	"frame-extractor/domain/video"
)

// --- Mock implementations for testing ---

// mockResolver implements DependencyResolver for testing
type mockResolver struct {
	available bool
	path      string
	calls     int
}

func (m *mockResolver) EnsureAvailable(ctx context.Context) bool {
	m.calls++
	return m.available
}

func (m *mockResolver) Binary() (toolchain.ResolvedBinary, bool) {
	if !m.available {
		return toolchain.ResolvedBinary{}, false
	}
	return toolchain.ResolvedBinary{Path: m.path, Method: toolchain.FoundInPath}, true
}

// mockExtractor implements video.FrameExtractor for testing
type mockExtractor struct {
	result   video.RunResult
	err      error
	progress []string
	panicked bool
	calls    int
	binary   string
	req      *video.ExtractionRequest
}

func (m *mockExtractor) Extract(ctx context.Context, binary string, req *video.ExtractionRequest, onProgress video.ProgressFunc) (video.RunResult, error) {
	m.calls++
	m.binary = binary
	m.req = req
	if m.panicked {
		panic("nil map write")
	}
	for _, p := range m.progress {
		onProgress(p)
	}
	return m.result, m.err
}

// mockProber implements video.DurationProber for testing
type mockProber struct {
	duration string
	err      error
	panicked bool
	calls    int
}

func (m *mockProber) Probe(ctx context.Context, binary, path string) (string, error) {
	m.calls++
	if m.panicked {
		panic("duration parser blew up")
	}
	return m.duration, m.err
}

// mockFileChecker implements video.FileChecker for testing
type mockFileChecker struct {
	existingFiles map[string]bool
}

func (m *mockFileChecker) Exists(path string) bool {
	return m.existingFiles[path]
}

// mockDirs implements video.DirectoryCreator for testing
type mockDirs struct {
	err     error
	created []string
}

func (m *mockDirs) EnsureDir(path string) error {
	m.created = append(m.created, path)
	return m.err
}

// mockReporter implements video.DiagnosticsReporter for testing
type mockReporter struct {
	reports []string
}

func (m *mockReporter) ReportDiagnostics(diagnostics string) {
	m.reports = append(m.reports, diagnostics)
}

type fixture struct {
	resolver  *mockResolver
	extractor *mockExtractor
	prober    *mockProber
	files     *mockFileChecker
	dirs      *mockDirs
	reporter  *mockReporter
	service   *ExtractService
}

func newFixture() *fixture {
	f := &fixture{
		resolver:  &mockResolver{available: true, path: "/usr/bin/ffmpeg"},
		extractor: &mockExtractor{},
		prober:    &mockProber{},
		files:     &mockFileChecker{existingFiles: map[string]bool{"/videos/clip.mp4": true}},
		dirs:      &mockDirs{},
		reporter:  &mockReporter{},
	}
	f.service = NewExtractService(f.resolver, f.extractor, f.prober, f.files, f.dirs,
		WithDiagnosticsReporter(f.reporter))
	return f
}

func validRequest() *video.ExtractionRequest {
	return &video.ExtractionRequest{
		SourcePath: "/videos/clip.mp4",
		OutputDir:  "/videos/clip_png",
		Start:      video.Timestamp{Seconds: 2},
		End:        video.Timestamp{Seconds: 4},
		FPS:        5,
		Prefix:     "frame",
		Format:     video.FormatPNG,
	}
}

func TestExtractService_Extract_Succeeds(t *testing.T) {
	f := newFixture()
	f.extractor.progress = []string{"Processing: 00:00:03"}

	var statuses []string
	outcome := f.service.Extract(context.Background(), validRequest(), func(s string) {
		statuses = append(statuses, s)
	})

	if !outcome.Succeeded() {
		t.Fatalf("Extract() outcome = %+v, want success", outcome)
	}
	want := []string{StatusStarting, "Processing: 00:00:03", StatusCompleted}
	if len(statuses) != len(want) {
		t.Fatalf("statuses = %v, want %v", statuses, want)
	}
	for i := range want {
		if statuses[i] != want[i] {
			t.Errorf("status[%d] = %q, want %q", i, statuses[i], want[i])
		}
	}
	if f.extractor.binary != "/usr/bin/ffmpeg" {
		t.Errorf("binary = %q", f.extractor.binary)
	}
	if len(f.dirs.created) != 1 || f.dirs.created[0] != "/videos/clip_png" {
		t.Errorf("created dirs = %v", f.dirs.created)
	}
}

func TestExtractService_Extract_ValidationFailsFast(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(r *video.ExtractionRequest)
		errContains string
	}{
		{"start equals end", func(r *video.ExtractionRequest) { r.End = r.Start }, "must be after start time"},
		{"start after end", func(r *video.ExtractionRequest) { r.Start = video.Timestamp{Minutes: 1} }, "must be after start time"},
		{"zero fps", func(r *video.ExtractionRequest) { r.FPS = 0 }, "fps must be a positive integer"},
		{"empty prefix", func(r *video.ExtractionRequest) { r.Prefix = "" }, "prefix is required"},
		{"missing source", func(r *video.ExtractionRequest) { r.SourcePath = "/videos/missing.mp4" }, "source file does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := validRequest()
			tt.mutate(req)

			var statuses []string
			outcome := f.service.Extract(context.Background(), req, func(s string) {
				statuses = append(statuses, s)
			})

			if outcome.Kind != video.FailedValidation {
				t.Fatalf("Kind = %s, want %s", outcome.Kind, video.FailedValidation)
			}
			if !errors.Is(outcome.Err, video.ErrValidation) {
				t.Errorf("Err = %v, want ErrValidation", outcome.Err)
			}
			if !contains(outcome.Message, tt.errContains) {
				t.Errorf("Message = %q, want it to contain %q", outcome.Message, tt.errContains)
			}
			if f.resolver.calls != 0 {
				t.Errorf("resolver calls = %d, want 0", f.resolver.calls)
			}
			if f.extractor.calls != 0 {
				t.Errorf("extractor calls = %d, want 0", f.extractor.calls)
			}
			if len(statuses) != 1 {
				t.Errorf("statuses = %v, want one terminal status", statuses)
			}
		})
	}
}

func TestExtractService_Extract_NilRequest(t *testing.T) {
	f := newFixture()

	outcome := f.service.Extract(context.Background(), nil, nil)
	if outcome.Kind != video.FailedValidation {
		t.Errorf("Kind = %s, want %s", outcome.Kind, video.FailedValidation)
	}
}

func TestExtractService_Extract_NoBinary(t *testing.T) {
	f := newFixture()
	f.resolver.available = false

	var statuses []string
	outcome := f.service.Extract(context.Background(), validRequest(), func(s string) {
		statuses = append(statuses, s)
	})

	if outcome.Kind != video.FailedNoBinary {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, video.FailedNoBinary)
	}
	if !errors.Is(outcome.AsError(), video.ErrNotFound) {
		t.Errorf("AsError() = %v, want ErrNotFound", outcome.AsError())
	}
	if f.extractor.calls != 0 {
		t.Errorf("extractor calls = %d, want 0", f.extractor.calls)
	}
	if len(statuses) != 1 || statuses[0] != StatusNoBinary {
		t.Errorf("statuses = %v", statuses)
	}
}

func TestExtractService_Extract_ProcessFailure(t *testing.T) {
	f := newFixture()
	diagnostics := "[image2 @ 0x1] Could not open file : /videos/clip_png/frame1.png\n"
	f.extractor.result = video.RunResult{ExitCode: 1, Diagnostics: diagnostics}

	var statuses []string
	outcome := f.service.Extract(context.Background(), validRequest(), func(s string) {
		statuses = append(statuses, s)
	})

	if outcome.Kind != video.FailedProcessError {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, video.FailedProcessError)
	}
	if outcome.Diagnostics != diagnostics {
		t.Errorf("Diagnostics = %q", outcome.Diagnostics)
	}
	if outcome.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", outcome.ExitCode)
	}
	if !errors.Is(outcome.Err, video.ErrProcess) {
		t.Errorf("Err = %v, want ErrProcess", outcome.Err)
	}
	if len(f.reporter.reports) != 1 || f.reporter.reports[0] != diagnostics {
		t.Errorf("reported diagnostics = %v", f.reporter.reports)
	}
	if statuses[len(statuses)-1] != StatusFailed {
		t.Errorf("final status = %q, want %q", statuses[len(statuses)-1], StatusFailed)
	}
}

func TestExtractService_Extract_ProcessFailureKeepsStderrOutOfErrorLog(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	f := newFixture()
	f.service = NewExtractService(f.resolver, f.extractor, f.prober, f.files, f.dirs,
		WithDiagnosticsReporter(f.reporter),
		WithLogger(zap.New(core)),
	)
	diagnostics := "clip.mp4: Invalid data found when processing input\n"
	f.extractor.result = video.RunResult{ExitCode: 1, Diagnostics: diagnostics}

	f.service.Extract(context.Background(), validRequest(), nil)

	failed := observed.FilterMessage("ffmpeg failed").All()
	if len(failed) != 1 {
		t.Fatalf("ffmpeg failed entries = %d, want 1", len(failed))
	}
	if failed[0].Level != zapcore.ErrorLevel {
		t.Errorf("level = %s, want error", failed[0].Level)
	}
	if _, ok := failed[0].ContextMap()["stderr"]; ok {
		t.Error("stderr logged at error level; it is already shown to the user")
	}

	for _, entry := range observed.FilterField(zap.String("stderr", diagnostics)).All() {
		if entry.Level != zapcore.DebugLevel {
			t.Errorf("stderr logged at %s, want debug", entry.Level)
		}
	}
	if observed.FilterField(zap.String("stderr", diagnostics)).Len() != 1 {
		t.Error("stderr should still reach the debug log")
	}
}

func TestExtractService_Extract_RunnerError(t *testing.T) {
	f := newFixture()
	f.extractor.err = errors.New("start /usr/bin/ffmpeg: permission denied")

	var statuses []string
	outcome := f.service.Extract(context.Background(), validRequest(), func(s string) {
		statuses = append(statuses, s)
	})

	if outcome.Kind != video.FailedException {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, video.FailedException)
	}
	if !errors.Is(outcome.Err, video.ErrUnexpected) {
		t.Errorf("Err = %v, want ErrUnexpected", outcome.Err)
	}
	if statuses[len(statuses)-1] != StatusFailedError {
		t.Errorf("final status = %q", statuses[len(statuses)-1])
	}
	if len(f.reporter.reports) != 0 {
		t.Errorf("diagnostics reported for a start failure: %v", f.reporter.reports)
	}
}

func TestExtractService_Extract_OutputDirFailure(t *testing.T) {
	f := newFixture()
	f.dirs.err = errors.New("read-only file system")

	outcome := f.service.Extract(context.Background(), validRequest(), nil)

	if outcome.Kind != video.FailedException {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, video.FailedException)
	}
	if f.extractor.calls != 0 {
		t.Errorf("extractor calls = %d, want 0", f.extractor.calls)
	}
}

func TestExtractService_Extract_RecoversFromPanic(t *testing.T) {
	f := newFixture()
	f.extractor.panicked = true

	var statuses []string
	outcome := f.service.Extract(context.Background(), validRequest(), func(s string) {
		statuses = append(statuses, s)
	})

	if outcome.Kind != video.FailedException {
		t.Fatalf("Kind = %s, want %s", outcome.Kind, video.FailedException)
	}
	if statuses[len(statuses)-1] != StatusFailedError {
		t.Errorf("final status = %q", statuses[len(statuses)-1])
	}
}

func TestExtractService_ProbeDuration(t *testing.T) {
	tests := []struct {
		name      string
		available bool
		duration  string
		err       error
		panicked  bool
		want      string
	}{
		{"duration found", true, "00:02:10", nil, false, "00:02:10"},
		{"duration lookup error", true, "", errors.New("no duration reported"), false, FallbackDuration},
		{"duration lookup panics", true, "", nil, true, FallbackDuration},
		{"ffmpeg unavailable", false, "", nil, false, FallbackDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.resolver.available = tt.available
			f.prober.duration = tt.duration
			f.prober.err = tt.err
			f.prober.panicked = tt.panicked

			if got := f.service.ProbeDuration(context.Background(), "/videos/clip.mp4"); got != tt.want {
				t.Errorf("ProbeDuration() = %q, want %q", got, tt.want)
			}
			if !tt.available && f.prober.calls != 0 {
				t.Errorf("prober calls = %d, want 0", f.prober.calls)
			}
		})
	}
}

func contains(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
