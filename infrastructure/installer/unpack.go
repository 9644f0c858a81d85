package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"go.uber.org/zap"

	"frame-extractor/domain/video"
	"frame-extractor/infrastructure/ffmpeg"
)

// errFound stops the directory walk once the executable is located
var errFound = errors.New("found")

// Unpacker extracts downloaded archives
type Unpacker struct {
	commands ffmpeg.CommandRunner
	logger   *zap.Logger
}

// UnpackerOption is a functional option for configuring Unpacker
type UnpackerOption func(*Unpacker)

// WithCommandRunner sets the runner used for the tar command (for testing)
func WithCommandRunner(runner ffmpeg.CommandRunner) UnpackerOption {
	return func(u *Unpacker) {
		u.commands = runner
	}
}

// WithUnpackerLogger sets the logger
func WithUnpackerLogger(logger *zap.Logger) UnpackerOption {
	return func(u *Unpacker) {
		u.logger = logger
	}
}

// NewUnpacker creates a new Unpacker
func NewUnpacker(opts ...UnpackerOption) *Unpacker {
	u := &Unpacker{
		commands: &ffmpeg.ExecCommandRunner{},
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

// Unpack extracts archivePath into destDir. Zip archives are read natively;
// tar archives are handed to the system tar command. Failures wrap
// video.ErrExtraction.
func (u *Unpacker) Unpack(ctx context.Context, archivePath string, kind ArchiveKind, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", video.ErrExtraction, destDir, err)
	}

	u.logger.Info("extracting archive", zap.String("archive", archivePath), zap.String("dest", destDir))

	switch kind {
	case KindZip:
		if err := u.unzip(ctx, archivePath, destDir); err != nil {
			return fmt.Errorf("%w: %v", video.ErrExtraction, err)
		}
	default:
		if err := u.commands.Run(ctx, "tar", "-xf", archivePath, "-C", destDir); err != nil {
			return fmt.Errorf("%w: tar: %v", video.ErrExtraction, err)
		}
	}

	return nil
}

func (u *Unpacker) unzip(ctx context.Context, archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer file.Close()

	format, input, err := archives.Identify(ctx, archivePath, file)
	if err != nil {
		return fmt.Errorf("identify archive: %w", err)
	}

	extractor, ok := format.(archives.Extractor)
	if !ok {
		return fmt.Errorf("format %s does not support extraction", format.Extension())
	}

	root := filepath.Clean(destDir) + string(os.PathSeparator)
	handler := func(ctx context.Context, f archives.FileInfo) error {
		target := filepath.Clean(filepath.Join(destDir, f.NameInArchive))
		if !strings.HasPrefix(target+string(os.PathSeparator), root) {
			return fmt.Errorf("illegal file path: %s", f.NameInArchive)
		}

		if f.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if f.Mode()&os.ModeSymlink != 0 {
			u.logger.Debug("skipping symlink", zap.String("name", f.NameInArchive))
			return nil
		}

		return writeEntry(f, target)
	}

	return extractor.Extract(ctx, input, handler)
}

func writeEntry(f archives.FileInfo, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create parent dir for %s: %w", target, err)
	}

	reader, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.NameInArchive, err)
	}
	defer reader.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}

	writer, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer writer.Close()

	if _, err := io.Copy(writer, reader); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	return nil
}

// FindExecutable searches root recursively for a regular file named name and
// returns the first match in lexical walk order
func FindExecutable(root, name string) (string, error) {
	var found string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == name && d.Type().IsRegular() {
			found = path
			return errFound
		}
		return nil
	})

	if errors.Is(err, errFound) {
		return found, nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: search %s: %v", video.ErrExtraction, root, err)
	}
	return "", fmt.Errorf("%w: %s not found under %s", video.ErrExtraction, name, root)
}

// ensureExecutable adds the execute bits when the archive did not carry them
func ensureExecutable(path, goos string) error {
	if goos == "windows" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm()&0o111 != 0 {
		return nil
	}
	return os.Chmod(path, info.Mode().Perm()|0o755)
}
