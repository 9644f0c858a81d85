package installer

import (
	"fmt"

	"frame-extractor/infrastructure/ffmpeg"
	"frame-extractor/infrastructure/platform"
)

// ArchiveKind is the container format of a downloadable ffmpeg build
type ArchiveKind string

const (
	KindZip   ArchiveKind = "zip"
	KindTarXZ ArchiveKind = "tar.xz"
)

// Source describes where to download ffmpeg for one platform
type Source struct {
	URL        string
	Kind       ArchiveKind
	Executable string
}

// ArchiveName is the local file name the download is saved under
func (s Source) ArchiveName() string {
	return "ffmpeg." + string(s.Kind)
}

const (
	windowsURL    = "https://www.gyan.dev/ffmpeg/builds/ffmpeg-release-essentials.zip"
	macOSURL      = "https://evermeet.cx/ffmpeg/ffmpeg.zip"
	linuxAMD64URL = "https://johnvansickle.com/ffmpeg/releases/ffmpeg-release-amd64-static.tar.xz"
	linuxARM64URL = "https://johnvansickle.com/ffmpeg/releases/ffmpeg-release-arm64-static.tar.xz"
)

// SourceFor selects the download for the given platform
func SourceFor(info *platform.Info) (Source, error) {
	if info == nil {
		return Source{}, fmt.Errorf("platform information is required")
	}

	switch {
	case info.IsWindows():
		return Source{URL: windowsURL, Kind: KindZip, Executable: ffmpeg.ExecutableName("windows")}, nil
	case info.IsMacOS():
		return Source{URL: macOSURL, Kind: KindZip, Executable: ffmpeg.ExecutableName("darwin")}, nil
	case info.IsLinux():
		url := linuxAMD64URL
		if info.Arch == "arm64" {
			url = linuxARM64URL
		}
		return Source{URL: url, Kind: KindTarXZ, Executable: ffmpeg.ExecutableName("linux")}, nil
	default:
		return Source{}, fmt.Errorf("unsupported operating system: %s", info.OS)
	}
}
