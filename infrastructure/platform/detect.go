package platform

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
)

// familyMap maps distribution names to their canonical family names
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian,
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
}

// platformInformation is swapped in tests
var platformInformation = host.PlatformInformationWithContext

// RealDetector implements Detector using runtime and gopsutil
type RealDetector struct{}

// NewDetector creates a new platform detector
func NewDetector() Detector {
	return &RealDetector{}
}

// Detect returns the running platform. On Linux a failed distro lookup is
// not an error; the distro fields are left empty.
func (d *RealDetector) Detect(ctx context.Context) (*Info, error) {
	info := &Info{
		OS:   runtime.GOOS,
		Arch: normalizeArch(runtime.GOARCH),
	}

	if info.IsLinux() {
		platform, family, version, err := platformInformation(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("platform detection cancelled: %w", ctx.Err())
			}
			return info, nil
		}

		platform = normalize(platform)
		if platform != "" {
			info.Platform = platform
			info.Family = mapFamily(family, platform)
			info.Version = normalize(version)
		}
	}

	return info, nil
}

func normalizeArch(arch string) string {
	switch arch {
	case "amd64", "x86_64":
		return "amd64"
	case "arm64", "aarch64":
		return "arm64"
	default:
		return arch
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// mapFamily falls back to the distro ID when gopsutil reports no family
func mapFamily(family, platform string) string {
	if canonical, ok := familyMap[normalize(family)]; ok {
		return canonical
	}
	if canonical, ok := familyMap[platform]; ok {
		return canonical
	}
	return FamilyUnknown
}

var _ Detector = (*RealDetector)(nil)
