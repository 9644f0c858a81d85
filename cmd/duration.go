package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var durationSourcePath string

var durationCmd = &cobra.Command{
	Use:   "duration",
	Short: "Print the duration of a video",
	Long: `Print the HH:MM:SS duration ffmpeg reports for a video.

When the duration cannot be read, 00:00:05 is printed.

Example:
  frame-extractor duration --source clip.mp4`,
	RunE: runDuration,
}

func init() {
	rootCmd.AddCommand(durationCmd)
	durationCmd.Flags().StringVar(&durationSourcePath, "source", "", "Path to video file (required)")
	durationCmd.MarkFlagRequired("source")
}

func runDuration(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	logger, closeLog := newLogger(cfg)
	defer closeLog()

	eng, err := newEngine(cfg, logger, false)
	if err != nil {
		return err
	}

	return RunDurationWithDependencies(cmd.Context(), eng.service, durationSourcePath, os.Stdout)
}

// DurationProbe reads a video duration, falling back to a default
type DurationProbe interface {
	ProbeDuration(ctx context.Context, path string) string
}

// RunDurationWithDependencies runs the duration command with injected dependencies (for testing)
func RunDurationWithDependencies(ctx context.Context, probe DurationProbe, sourcePath string, output OutputWriter) error {
	if sourcePath == "" {
		return fmt.Errorf("--source is required")
	}

	fmt.Fprintln(output, probe.ProbeDuration(ctx, sourcePath))
	return nil
}
