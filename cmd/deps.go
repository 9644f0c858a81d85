package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"frame-extractor/domain/toolchain"
	"frame-extractor/infrastructure/ffmpeg"
	"frame-extractor/infrastructure/installer"
	"frame-extractor/infrastructure/platform"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Inspect or install ffmpeg",
	Long: `Inspect or install the ffmpeg binary used for extraction.

Examples:
  frame-extractor deps status
  frame-extractor deps install`,
}

var depsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where ffmpeg was found",
	Long: `Show which ffmpeg binary would be used without installing anything.

The configured path is checked first, then the PATH and well-known install
locations, then the directory downloaded builds are unpacked into.`,
	Args: cobra.NoArgs,
	RunE: runDepsStatus,
}

var depsInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Download a static ffmpeg build",
	Long: `Download and unpack a static ffmpeg build for this platform into the
per-user data directory, skipping the PATH lookup and package manager.`,
	Args: cobra.NoArgs,
	RunE: runDepsInstall,
}

func init() {
	rootCmd.AddCommand(depsCmd)
	depsCmd.AddCommand(depsStatusCmd)
	depsCmd.AddCommand(depsInstallCmd)
}

func runDepsStatus(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	logger, closeLog := newLogger(cfg)
	defer closeLog()

	eng, err := newEngine(cfg, logger, false)
	if err != nil {
		return err
	}

	return RunDepsStatusWithDependencies(cmd.Context(), DepsStatusInput{
		Locator:    eng.locator,
		Versioner:  eng.prober,
		Detector:   eng.detector,
		PinnedPath: cfg.FFmpeg.Path,
		ArchiveDir: eng.archive.ExtractDir(),
		GOOS:       runtime.GOOS,
	}, os.Stdout)
}

func runDepsInstall(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	logger, closeLog := newLogger(cfg)
	defer closeLog()

	eng, err := newEngine(cfg, logger, false)
	if err != nil {
		return err
	}

	return RunDepsInstallWithDependencies(cmd.Context(), eng.archive, eng.reporter.Download, os.Stdout)
}

// Versioner reports the version banner of an ffmpeg binary
type Versioner interface {
	Version(ctx context.Context, binary string) (string, error)
}

// DepsStatusInput collects what deps status inspects
type DepsStatusInput struct {
	Locator    toolchain.Locator
	Versioner  Versioner
	Detector   platform.Detector
	PinnedPath string
	// ArchiveDir is where downloaded builds are unpacked
	ArchiveDir string
	GOOS       string
	// FileExists checks the pinned path; defaults to a stat call
	FileExists func(string) bool
}

// RunDepsStatusWithDependencies runs the deps status command with injected dependencies (for testing)
func RunDepsStatusWithDependencies(ctx context.Context, in DepsStatusInput, output OutputWriter) error {
	exists := in.FileExists
	if exists == nil {
		exists = fileExists
	}

	platformName := "unknown"
	var info *platform.Info
	if in.Detector != nil {
		detected, err := in.Detector.Detect(ctx)
		if err == nil {
			info = detected
			platformName = detected.String()
		}
	}

	var (
		path   string
		method string
	)
	switch {
	case in.PinnedPath != "" && exists(in.PinnedPath):
		path, method = in.PinnedPath, "configured path"
	default:
		if located, m, ok := in.Locator.LocateWithMethod(); ok {
			path, method = located, m.String()
		} else if in.ArchiveDir != "" {
			if found, err := installer.FindExecutable(in.ArchiveDir, ffmpeg.ExecutableName(in.GOOS)); err == nil {
				path, method = found, toolchain.InstalledViaArchive.String()
			}
		}
	}

	rows := [][]string{{"Platform", platformName}}
	if path == "" {
		rows = append(rows, []string{"FFmpeg", "not found"})
		if info != nil {
			rows = append(rows, []string{"Manual install", platform.ManualInstallHint(info)})
		}
		rows = append(rows, []string{"Install directory", in.ArchiveDir})
		fmt.Fprintln(output, renderTable([]string{"Item", "Value"}, rows))
		return nil
	}

	version := "unknown"
	if in.Versioner != nil {
		if v, err := in.Versioner.Version(ctx, path); err == nil && v != "" {
			version = v
		}
	}

	rows = append(rows,
		[]string{"FFmpeg", path},
		[]string{"Resolution", method},
		[]string{"Version", version},
		[]string{"Install directory", in.ArchiveDir},
	)
	fmt.Fprintln(output, renderTable([]string{"Item", "Value"}, rows))
	return nil
}

// RunDepsInstallWithDependencies runs the deps install command with injected dependencies (for testing)
func RunDepsInstallWithDependencies(ctx context.Context, archive toolchain.ArchiveInstaller, onProgress toolchain.DownloadProgressFunc, output OutputWriter) error {
	path, err := archive.Install(ctx, onProgress)
	if err != nil {
		return fmt.Errorf("ffmpeg installation failed: %w", err)
	}

	fmt.Fprintf(output, "FFmpeg installed at %s\n", path)
	return nil
}

func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(headers))
	for i := range headers {
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
