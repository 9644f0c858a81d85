package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"frame-extractor/domain/video"
	"frame-extractor/infrastructure/config"
	"frame-extractor/infrastructure/logging"
	"frame-extractor/infrastructure/prompt"

	"github.com/spf13/cobra"
)

// DefaultPrompter is the prompter used in production
var DefaultPrompter prompt.Prompter = &prompt.SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through the extraction defaults, an optional
pinned ffmpeg path and how missing ffmpeg should be installed.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter prompt.Prompter, configPath string, output OutputWriter) error {
	if configPath == "" {
		configPath = config.DefaultPath
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(output, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(output, "Welcome to frame-extractor setup!")
	fmt.Fprintln(output)

	cfg := config.Default()

	if err := promptFFmpeg(prompter, cfg); err != nil {
		return err
	}

	if err := promptExtraction(prompter, cfg); err != nil {
		return err
	}

	if err := promptInstall(prompter, cfg); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Save configuration
	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(output)
	fmt.Fprintf(output, "Configuration saved to %s\n", configPath)
	return nil
}

func promptFFmpeg(prompter prompt.Prompter, cfg *config.Config) error {
	path, err := prompter.Input("Path to an ffmpeg binary (leave empty to search automatically)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if path != "" && !fileExists(path) {
		return fmt.Errorf("ffmpeg binary not found at %s", path)
	}
	cfg.FFmpeg.Path = path
	return nil
}

func promptExtraction(prompter prompt.Prompter, cfg *config.Config) error {
	fpsText, err := prompter.Input("Frames per second to extract?", strconv.Itoa(video.DefaultFPS))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if fpsText == "" {
		fpsText = strconv.Itoa(video.DefaultFPS)
	}
	fps, err := strconv.Atoi(fpsText)
	if err != nil || fps <= 0 {
		return fmt.Errorf("fps must be a positive integer")
	}
	cfg.Extraction.FPS = fps

	formatText, err := prompter.Input("Image format (png, jpg, jpeg)?", video.DefaultFormat.String())
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if formatText == "" {
		formatText = video.DefaultFormat.String()
	}
	format, err := video.ParseImageFormat(formatText)
	if err != nil {
		return err
	}
	cfg.Extraction.Format = format.String()

	prefix, err := prompter.Input("Frame file name prefix?", video.DefaultPrefix)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if prefix == "" {
		prefix = video.DefaultPrefix
	}
	cfg.Extraction.Prefix = prefix

	outputDir, err := prompter.Input("Parent directory for extracted frames (leave empty for the current directory)?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Extraction.OutputDirectory = outputDir

	level, err := prompter.Input("Log level (debug, info, warn, error)?", "info")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if level == "" {
		level = "info"
	}
	if err := logging.ValidateLevel(level); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	cfg.Log.Level = level

	return nil
}

func promptInstall(prompter prompt.Prompter, cfg *config.Config) error {
	assumeYes, err := prompter.Confirm("Install ffmpeg automatically without asking when it is missing?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Install.AssumeYes = assumeYes

	usePackageManager, err := prompter.Confirm("Use the system package manager (winget) before downloading?", true)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Install.SkipPackageManager = !usePackageManager

	return nil
}
