package ffmpeg

import (
	"os"
	"path/filepath"
	"testing"

	"frame-extractor/domain/toolchain"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(key string) string {
		return vars[key]
	}
}

func fakeFiles(paths ...string) func(string) bool {
	existing := make(map[string]bool, len(paths))
	for _, p := range paths {
		existing[p] = true
	}
	return func(path string) bool {
		return existing[path]
	}
}

func TestLocator_LocateWithMethod(t *testing.T) {
	tests := []struct {
		name       string
		goos       string
		env        map[string]string
		files      []string
		wantPath   string
		wantMethod toolchain.ResolutionMethod
		wantOK     bool
	}{
		{
			name:       "PATH preferred over known location",
			goos:       "linux",
			env:        map[string]string{"PATH": "/opt/tools/bin:/usr/local/sbin"},
			files:      []string{"/opt/tools/bin/ffmpeg", "/usr/bin/ffmpeg"},
			wantPath:   "/opt/tools/bin/ffmpeg",
			wantMethod: toolchain.FoundInPath,
			wantOK:     true,
		},
		{
			name:       "first PATH entry wins",
			goos:       "linux",
			env:        map[string]string{"PATH": "/a:/b/"},
			files:      []string{"/a/ffmpeg", "/b/ffmpeg"},
			wantPath:   "/a/ffmpeg",
			wantMethod: toolchain.FoundInPath,
			wantOK:     true,
		},
		{
			name:       "empty PATH entries skipped",
			goos:       "linux",
			env:        map[string]string{"PATH": "::/b/"},
			files:      []string{"/b/ffmpeg"},
			wantPath:   "/b/ffmpeg",
			wantMethod: toolchain.FoundInPath,
			wantOK:     true,
		},
		{
			name:       "linux known location",
			goos:       "linux",
			env:        map[string]string{"PATH": "/nothing"},
			files:      []string{"/snap/bin/ffmpeg"},
			wantPath:   "/snap/bin/ffmpeg",
			wantMethod: toolchain.FoundInKnownLocation,
			wantOK:     true,
		},
		{
			name:       "darwin homebrew",
			goos:       "darwin",
			env:        map[string]string{},
			files:      []string{"/opt/homebrew/bin/ffmpeg", "/usr/bin/ffmpeg"},
			wantPath:   "/opt/homebrew/bin/ffmpeg",
			wantMethod: toolchain.FoundInKnownLocation,
			wantOK:     true,
		},
		{
			name:       "windows PATH uses exe suffix",
			goos:       "windows",
			env:        map[string]string{"PATH": `C:\Windows;C:\tools\ffmpeg\bin\`},
			files:      []string{`C:\tools\ffmpeg\bin\ffmpeg.exe`},
			wantPath:   `C:\tools\ffmpeg\bin\ffmpeg.exe`,
			wantMethod: toolchain.FoundInPath,
			wantOK:     true,
		},
		{
			name:       "windows winget links",
			goos:       "windows",
			env:        map[string]string{"LOCALAPPDATA": `C:\Users\me\AppData\Local`},
			files:      []string{`C:\Users\me\AppData\Local\Microsoft\WinGet\Links\ffmpeg.exe`},
			wantPath:   `C:\Users\me\AppData\Local\Microsoft\WinGet\Links\ffmpeg.exe`,
			wantMethod: toolchain.FoundInKnownLocation,
			wantOK:     true,
		},
		{
			name:   "nothing installed",
			goos:   "linux",
			env:    map[string]string{"PATH": "/usr/local/bin"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLocator(
				WithGOOS(tt.goos),
				WithGetenv(fakeEnv(tt.env)),
				WithFileProbe(fakeFiles(tt.files...)),
			)

			path, method, ok := l.LocateWithMethod()
			if ok != tt.wantOK {
				t.Fatalf("LocateWithMethod() ok = %v, want %v", ok, tt.wantOK)
			}
			if path != tt.wantPath {
				t.Errorf("path = %q, want %q", path, tt.wantPath)
			}
			if ok && method != tt.wantMethod {
				t.Errorf("method = %s, want %s", method, tt.wantMethod)
			}
		})
	}
}

func TestLocator_KnownLocationsWithoutLocalAppData(t *testing.T) {
	l := NewLocator(WithGOOS("windows"), WithGetenv(fakeEnv(nil)))

	got := l.KnownLocations()
	if len(got) != 3 {
		t.Fatalf("KnownLocations() = %v, want the 3 fixed entries", got)
	}
	if got[0] != `C:\ffmpeg\bin\ffmpeg.exe` {
		t.Errorf("first location = %q", got[0])
	}
}

func TestLocator_RealFilesystem(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(empty, nil, 0o755); err != nil {
		t.Fatal(err)
	}
	binary := filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	l := NewLocator(
		WithGOOS("linux"),
		WithGetenv(fakeEnv(map[string]string{"PATH": filepath.Dir(empty) + ":" + dir})),
	)

	path, ok := l.Locate()
	if !ok {
		t.Fatal("Locate() found nothing")
	}
	if path != binary {
		t.Errorf("Locate() = %q, want %q (empty files are skipped)", path, binary)
	}
}

func TestExecutableName(t *testing.T) {
	if got := ExecutableName("windows"); got != "ffmpeg.exe" {
		t.Errorf("ExecutableName(windows) = %q", got)
	}
	if got := ExecutableName("linux"); got != "ffmpeg" {
		t.Errorf("ExecutableName(linux) = %q", got)
	}
}
