package installer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"frame-extractor/domain/toolchain"
	"frame-extractor/domain/video"
	"frame-extractor/infrastructure/platform"
)

// mockDetector implements platform.Detector for testing
type mockDetector struct {
	info *platform.Info
	err  error
}

func (m *mockDetector) Detect(ctx context.Context) (*platform.Info, error) {
	return m.info, m.err
}

// zipServer serves a zip archive built from entries and counts requests
func zipServer(t *testing.T, entries ...zipEntry) (*httptest.Server, *int32) {
	t.Helper()
	archive := filepath.Join(t.TempDir(), "served.zip")
	writeZip(t, archive, entries...)

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.ServeFile(w, r, archive)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func newTestArchiveInstaller(installDir, url string) *ArchiveInstaller {
	return NewArchiveInstaller(installDir,
		WithDetector(&mockDetector{info: &platform.Info{OS: "darwin", Arch: "arm64"}}),
		WithSourceSelector(func(*platform.Info) (Source, error) {
			return Source{URL: url, Kind: KindZip, Executable: "ffmpeg"}, nil
		}),
	)
}

func TestArchiveInstaller_Install(t *testing.T) {
	server, hits := zipServer(t, zipEntry{name: "ffmpeg", body: "binary", mode: 0o755})
	installDir := filepath.Join(t.TempDir(), "FrameExtractor", "ffmpeg")
	installer := newTestArchiveInstaller(installDir, server.URL+"/ffmpeg.zip")

	var updates []toolchain.DownloadProgress
	path, err := installer.Install(context.Background(), func(p toolchain.DownloadProgress) {
		updates = append(updates, p)
	})
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}

	want := filepath.Join(installDir, "extracted", "ffmpeg")
	if path != want {
		t.Errorf("Install() = %q, want %q", path, want)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("Install() path %q is not absolute", path)
	}
	if atomic.LoadInt32(hits) != 1 {
		t.Errorf("server hits = %d, want 1", *hits)
	}

	last := updates[len(updates)-1]
	if last.Percent != 100 || last.Status != "FFmpeg installed successfully" {
		t.Errorf("final progress = %+v", last)
	}
	if _, err := os.Stat(filepath.Join(installDir, "install.lock")); err != nil {
		t.Errorf("lock file missing: %v", err)
	}
}

func TestArchiveInstaller_ReusesExistingInstall(t *testing.T) {
	server, hits := zipServer(t, zipEntry{name: "ffmpeg", body: "binary", mode: 0o755})
	installDir := t.TempDir()
	installer := newTestArchiveInstaller(installDir, server.URL)

	existing := filepath.Join(installDir, "extracted", "build", "ffmpeg")
	if err := os.MkdirAll(filepath.Dir(existing), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(existing, []byte("old"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(installDir, "extracted", ".complete"), []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	path, err := installer.Install(context.Background(), nil)
	if err != nil {
		t.Fatalf("Install() error: %v", err)
	}
	if path != existing {
		t.Errorf("Install() = %q, want %q", path, existing)
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Errorf("server hits = %d, want 0", *hits)
	}
}

func TestArchiveInstaller_ReplacesIncompleteInstall(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		withMarker bool
	}{
		{name: "truncated file without marker", body: "", withMarker: false},
		{name: "partial file without marker", body: "par", withMarker: false},
		{name: "empty file with marker", body: "", withMarker: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, hits := zipServer(t, zipEntry{name: "ffmpeg", body: "binary", mode: 0o755})
			installDir := t.TempDir()
			installer := newTestArchiveInstaller(installDir, server.URL)

			stale := filepath.Join(installDir, "extracted", "ffmpeg")
			if err := os.MkdirAll(filepath.Dir(stale), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(stale, []byte(tt.body), 0o600); err != nil {
				t.Fatal(err)
			}
			if tt.withMarker {
				if err := os.WriteFile(filepath.Join(installDir, "extracted", ".complete"), nil, 0o644); err != nil {
					t.Fatal(err)
				}
			}

			path, err := installer.Install(context.Background(), nil)
			if err != nil {
				t.Fatalf("Install() error: %v", err)
			}
			if atomic.LoadInt32(hits) != 1 {
				t.Errorf("server hits = %d, want 1", *hits)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read installed binary: %v", err)
			}
			if string(data) != "binary" {
				t.Errorf("installed binary = %q, want %q", data, "binary")
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
				t.Errorf("installed binary mode = %v, want executable", info.Mode())
			}
			if _, err := os.Stat(filepath.Join(installDir, "extracted", ".complete")); err != nil {
				t.Errorf("completion marker missing: %v", err)
			}
		})
	}
}

func TestArchiveInstaller_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	_, err := newTestArchiveInstaller(t.TempDir(), server.URL).Install(context.Background(), nil)
	if !errors.Is(err, video.ErrNetwork) {
		t.Errorf("Install() error = %v, want ErrNetwork", err)
	}
}

func TestArchiveInstaller_ArchiveWithoutExecutable(t *testing.T) {
	server, _ := zipServer(t, zipEntry{name: "README.txt", body: "nothing here"})

	_, err := newTestArchiveInstaller(t.TempDir(), server.URL).Install(context.Background(), nil)
	if !errors.Is(err, video.ErrExtraction) {
		t.Errorf("Install() error = %v, want ErrExtraction", err)
	}
}

func TestArchiveInstaller_UnsupportedPlatform(t *testing.T) {
	installer := NewArchiveInstaller(t.TempDir(),
		WithDetector(&mockDetector{info: &platform.Info{OS: "plan9", Arch: "386"}}))

	if _, err := installer.Install(context.Background(), nil); err == nil {
		t.Error("Install() expected error for unsupported platform")
	}
}

func TestArchiveInstaller_DetectFailure(t *testing.T) {
	installer := NewArchiveInstaller(t.TempDir(),
		WithDetector(&mockDetector{err: errors.New("cancelled")}))

	if _, err := installer.Install(context.Background(), nil); err == nil {
		t.Error("Install() expected error when detection fails")
	}
}
