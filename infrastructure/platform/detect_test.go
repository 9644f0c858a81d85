package platform

import (
	"context"
	"errors"
	"runtime"
	"testing"
)

func stubPlatformInformation(t *testing.T, platform, family, version string, err error) {
	t.Helper()
	original := platformInformation
	platformInformation = func(ctx context.Context) (string, string, string, error) {
		return platform, family, version, err
	}
	t.Cleanup(func() {
		platformInformation = original
	})
}

func TestRealDetector_Detect(t *testing.T) {
	info, err := NewDetector().Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}

	if info.OS != runtime.GOOS {
		t.Errorf("OS = %v, want %v", info.OS, runtime.GOOS)
	}
	if info.Arch == "" {
		t.Error("Arch should not be empty")
	}
	if info.Platform != "" && info.Family == "" {
		t.Error("If Platform is set, Family should also be set")
	}
}

func TestRealDetector_DetectDistro(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("distro detection only runs on linux")
	}

	tests := []struct {
		name       string
		platform   string
		family     string
		version    string
		err        error
		wantID     string
		wantFamily string
	}{
		{"ubuntu", "Ubuntu", "debian", "22.04", nil, "ubuntu", FamilyDebian},
		{"family from platform", "manjaro", "", "23", nil, "manjaro", FamilyArch},
		{"unknown family", "nixos", "nixos", "24.05", nil, "nixos", FamilyUnknown},
		{"lookup failure falls back", "", "", "", errors.New("no os-release"), "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubPlatformInformation(t, tt.platform, tt.family, tt.version, tt.err)

			info, err := NewDetector().Detect(context.Background())
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if info.Platform != tt.wantID {
				t.Errorf("Platform = %q, want %q", info.Platform, tt.wantID)
			}
			if info.Family != tt.wantFamily {
				t.Errorf("Family = %q, want %q", info.Family, tt.wantFamily)
			}
		})
	}
}

func TestRealDetector_DetectCancelled(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("distro detection only runs on linux")
	}
	stubPlatformInformation(t, "", "", "", context.Canceled)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewDetector().Detect(ctx); err == nil {
		t.Error("Detect() expected error for cancelled context")
	}
}

func TestNormalizeArch(t *testing.T) {
	tests := map[string]string{
		"amd64":   "amd64",
		"x86_64":  "amd64",
		"aarch64": "arm64",
		"arm64":   "arm64",
		"riscv64": "riscv64",
	}
	for in, want := range tests {
		if got := normalizeArch(in); got != want {
			t.Errorf("normalizeArch(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestManualInstallHint(t *testing.T) {
	tests := []struct {
		name string
		info *Info
		want string
	}{
		{"nil", nil, ""},
		{"windows", &Info{OS: "windows"}, "winget install --id Gyan.FFmpeg -e"},
		{"macos", &Info{OS: "darwin"}, "brew install ffmpeg"},
		{"debian", &Info{OS: "linux", Family: FamilyDebian}, "sudo apt install ffmpeg"},
		{"fedora", &Info{OS: "linux", Family: FamilyFedora}, "sudo dnf install ffmpeg"},
		{"arch", &Info{OS: "linux", Family: FamilyArch}, "sudo pacman -S ffmpeg"},
		{"unknown linux", &Info{OS: "linux", Family: FamilyUnknown}, ""},
		{"freebsd", &Info{OS: "freebsd"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ManualInstallHint(tt.info); got != tt.want {
				t.Errorf("ManualInstallHint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfo_String(t *testing.T) {
	info := &Info{OS: "linux", Arch: "amd64", Platform: "ubuntu", Version: "22.04"}
	if got := info.String(); got != "linux/amd64 (ubuntu 22.04)" {
		t.Errorf("String() = %q", got)
	}
	if got := (&Info{OS: "darwin", Arch: "arm64"}).String(); got != "darwin/arm64" {
		t.Errorf("String() = %q", got)
	}
}
