package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"frame-extractor/infrastructure/config"
	"frame-extractor/infrastructure/installer"
	"frame-extractor/infrastructure/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile  string
	cfg      *config.Config
	cfgFound bool
	logLevel string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "frame-extractor",
	Short: "Extract still frames from video with a self-provisioning ffmpeg",
	Long: `frame-extractor turns a time range of a video into numbered still images.

It finds ffmpeg on the PATH or in well-known install locations and, when
none is present, installs it with winget (Windows) or downloads a static
build into the per-user data directory.

Example:
  frame-extractor extract --source clip.mp4 --start 00:00:02 --end 00:00:04 --fps 5`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level debug")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	var err error
	cfg, cfgFound, err = config.LoadWithEnv(cfgFile)
	if err != nil {
		// A broken file should not block commands like setup or help
		fmt.Fprintf(os.Stderr, "warning: %v; using defaults\n", err)
		cfg = config.Default()
		cfgFound = false
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	if cfg == nil {
		return config.Default()
	}
	return cfg
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}

// dataRoot returns the configured data root or the per-user default
func dataRoot(c *config.Config) (string, error) {
	if dir := strings.TrimSpace(c.FFmpeg.DataDir); dir != "" {
		return dir, nil
	}
	return installer.DataRoot()
}

// installDir returns where archive builds are unpacked
func installDir(c *config.Config) (string, error) {
	if dir := strings.TrimSpace(c.FFmpeg.InstallDir); dir != "" {
		return dir, nil
	}
	root, err := dataRoot(c)
	if err != nil {
		return "", err
	}
	return installer.InstallDir(root), nil
}

// logFile returns the configured log file or the default under the data root
func logFile(c *config.Config) string {
	if file := strings.TrimSpace(c.Log.File); file != "" {
		return file
	}
	root, err := dataRoot(c)
	if err != nil {
		return ""
	}
	return filepath.Join(installer.AppDir(root), logging.DefaultFileName)
}

// newLogger builds the process logger from configuration. A log file that
// cannot be opened degrades to console-only logging.
func newLogger(c *config.Config) (*zap.Logger, func() error) {
	logger, closeFn, err := logging.New(logging.Options{
		Level: c.Log.Level,
		File:  logFile(c),
	})
	if err == nil {
		return logger, closeFn
	}

	fmt.Fprintf(os.Stderr, "warning: %v; logging to console only\n", err)
	logger, closeFn, err = logging.New(logging.Options{Level: c.Log.Level})
	if err != nil {
		return zap.NewNop(), func() error { return nil }
	}
	return logger, closeFn
}
