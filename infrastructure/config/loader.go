package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. FRAMEX_FFMPEG_PATH
const EnvPrefix = "FRAMEX_"

// DefaultPath is where the config file is looked up when --config is not given
const DefaultPath = "config/config.yaml"

// Config represents the complete application configuration
type Config struct {
	FFmpeg     FFmpegConfig     `yaml:"ffmpeg"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Log        LogConfig        `yaml:"log"`
	Install    InstallConfig    `yaml:"install"`
}

// FFmpegConfig contains ffmpeg discovery settings
type FFmpegConfig struct {
	// Path pins a specific binary; it wins over every discovery strategy when it exists
	Path string `yaml:"path,omitempty" env:"FFMPEG_PATH"`
	// DataDir overrides the per-user data root used for downloads and logs
	DataDir string `yaml:"data_dir,omitempty" env:"DATA_DIR"`
	// InstallDir overrides where downloaded archives are unpacked
	InstallDir string `yaml:"install_dir,omitempty" env:"INSTALL_DIR"`
}

// ExtractionConfig contains defaults for extraction jobs
type ExtractionConfig struct {
	FPS             int    `yaml:"fps" env:"FPS"`
	Format          string `yaml:"format" env:"FORMAT"`
	Prefix          string `yaml:"prefix" env:"PREFIX"`
	OutputDirectory string `yaml:"output_directory,omitempty" env:"OUTPUT_DIR"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
	File  string `yaml:"file,omitempty" env:"LOG_FILE"`
}

// InstallConfig contains automatic installation settings
type InstallConfig struct {
	// AssumeYes answers consent prompts without asking
	AssumeYes bool `yaml:"assume_yes" env:"ASSUME_YES"`
	// SkipPackageManager never tries winget
	SkipPackageManager bool `yaml:"skip_package_manager" env:"SKIP_PACKAGE_MANAGER"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			FPS:    10,
			Format: "png",
			Prefix: "frame",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads and parses the configuration from the specified YAML file.
// Values missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadWithEnv loads path, falling back to defaults when the file does not
// exist, and then applies FRAMEX_ environment overrides. The boolean reports
// whether the file was found.
func LoadWithEnv(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	found := true
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, false, err
		}
		cfg = Default()
		found = false
	}

	if err := ApplyEnv(cfg, nil); err != nil {
		return nil, found, err
	}

	return cfg, found, nil
}

// ApplyEnv overrides cfg with FRAMEX_ variables. environ replaces the
// process environment when non-nil (for testing).
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("failed to read environment overrides: %w", err)
	}
	return nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
