package installer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"frame-extractor/domain/toolchain"
	"frame-extractor/domain/video"
)

func TestDownloader_Download(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    bool
	}{
		{"successful_download", http.StatusOK, strings.Repeat("x", 3*DownloadBufferSize), false},
		{"404_not_found", http.StatusNotFound, "not found", true},
		{"500_server_error", http.StatusInternalServerError, "server error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("User-Agent") != DefaultUserAgent {
					t.Errorf("unexpected User-Agent: %s", r.Header.Get("User-Agent"))
				}
				w.Header().Set("Content-Length", strconv.Itoa(len(tt.body)))
				w.WriteHeader(tt.statusCode)
				if _, err := w.Write([]byte(tt.body)); err != nil {
					t.Errorf("failed to write response: %v", err)
				}
			}))
			defer server.Close()

			dest := filepath.Join(t.TempDir(), "ffmpeg.zip")
			var updates []toolchain.DownloadProgress
			err := NewDownloader().Download(context.Background(), server.URL, dest, func(p toolchain.DownloadProgress) {
				updates = append(updates, p)
			})

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				if !errors.Is(err, video.ErrNetwork) {
					t.Errorf("error = %v, want ErrNetwork", err)
				}
				if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
					t.Error("destination should not exist after a failed download")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			content, err := os.ReadFile(dest)
			if err != nil {
				t.Fatalf("failed to read downloaded file: %v", err)
			}
			if string(content) != tt.body {
				t.Errorf("content length = %d, want %d", len(content), len(tt.body))
			}
			if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
				t.Error("temp file should be renamed away")
			}

			if len(updates) == 0 {
				t.Fatal("expected progress updates")
			}
			for i := 1; i < len(updates); i++ {
				if updates[i].Percent < updates[i-1].Percent {
					t.Errorf("progress went backwards: %d then %d", updates[i-1].Percent, updates[i].Percent)
				}
			}
			if last := updates[len(updates)-1]; last.Percent != 100 {
				t.Errorf("final percent = %d, want 100", last.Percent)
			}
		})
	}
}

func TestDownloader_UnknownLengthIsIndeterminate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, _ := w.(http.Flusher)
		for i := 0; i < 4; i++ {
			w.Write([]byte(strings.Repeat("y", 1000)))
			if flusher != nil {
				flusher.Flush()
			}
		}
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "ffmpeg.tar.xz")
	var updates []toolchain.DownloadProgress
	err := NewDownloader().Download(context.Background(), server.URL, dest, func(p toolchain.DownloadProgress) {
		updates = append(updates, p)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(updates) == 0 {
		t.Fatal("expected progress updates")
	}
	for _, u := range updates {
		if u.Percent != 0 {
			t.Errorf("percent = %d, want 0 without Content-Length", u.Percent)
		}
		if !strings.Contains(u.Status, "MB") {
			t.Errorf("status = %q, want a byte count", u.Status)
		}
	}
}

func TestDownloader_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewDownloader().Download(ctx, server.URL, filepath.Join(t.TempDir(), "f"), nil)
	if !errors.Is(err, video.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestDownloadProgress(t *testing.T) {
	tests := []struct {
		written, total int64
		wantPercent    int
	}{
		{0, 100, 0},
		{50, 100, 50},
		{100, 100, 100},
		{150, 100, 100},
		{500, 0, 0},
		{500, -1, 0},
	}

	for _, tt := range tests {
		got := downloadProgress(tt.written, tt.total)
		if got.Percent != tt.wantPercent {
			t.Errorf("downloadProgress(%d, %d).Percent = %d, want %d", tt.written, tt.total, got.Percent, tt.wantPercent)
		}
	}
}
