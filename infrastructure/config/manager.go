package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"frame-extractor/domain/video"
	"frame-extractor/infrastructure/logging"
)

// Errors for config management
var (
	ErrUnknownKey   = errors.New("unknown config key")
	ErrInvalidValue = errors.New("invalid config value")
)

// field binds a dotted key to accessors on Config
type field struct {
	get func(c *Config) string
	set func(c *Config, value string) error
}

var fields = map[string]field{
	"ffmpeg.path": {
		get: func(c *Config) string { return c.FFmpeg.Path },
		set: func(c *Config, v string) error { c.FFmpeg.Path = v; return nil },
	},
	"ffmpeg.data_dir": {
		get: func(c *Config) string { return c.FFmpeg.DataDir },
		set: func(c *Config, v string) error { c.FFmpeg.DataDir = v; return nil },
	},
	"ffmpeg.install_dir": {
		get: func(c *Config) string { return c.FFmpeg.InstallDir },
		set: func(c *Config, v string) error { c.FFmpeg.InstallDir = v; return nil },
	},
	"extraction.fps": {
		get: func(c *Config) string { return strconv.Itoa(c.Extraction.FPS) },
		set: func(c *Config, v string) error {
			fps, err := strconv.Atoi(v)
			if err != nil || fps <= 0 {
				return fmt.Errorf("%w: fps must be a positive integer, got %q", ErrInvalidValue, v)
			}
			c.Extraction.FPS = fps
			return nil
		},
	},
	"extraction.format": {
		get: func(c *Config) string { return c.Extraction.Format },
		set: func(c *Config, v string) error {
			format, err := video.ParseImageFormat(v)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}
			c.Extraction.Format = format.String()
			return nil
		},
	},
	"extraction.prefix": {
		get: func(c *Config) string { return c.Extraction.Prefix },
		set: func(c *Config, v string) error {
			if strings.TrimSpace(v) == "" {
				return fmt.Errorf("%w: prefix must not be empty", ErrInvalidValue)
			}
			c.Extraction.Prefix = strings.TrimSpace(v)
			return nil
		},
	},
	"extraction.output_directory": {
		get: func(c *Config) string { return c.Extraction.OutputDirectory },
		set: func(c *Config, v string) error { c.Extraction.OutputDirectory = v; return nil },
	},
	"log.level": {
		get: func(c *Config) string { return c.Log.Level },
		set: func(c *Config, v string) error {
			if err := logging.ValidateLevel(v); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidValue, err)
			}
			c.Log.Level = strings.ToLower(v)
			return nil
		},
	},
	"log.file": {
		get: func(c *Config) string { return c.Log.File },
		set: func(c *Config, v string) error { c.Log.File = v; return nil },
	},
	"install.assume_yes": {
		get: func(c *Config) string { return strconv.FormatBool(c.Install.AssumeYes) },
		set: func(c *Config, v string) error { return setBool(&c.Install.AssumeYes, v) },
	},
	"install.skip_package_manager": {
		get: func(c *Config) string { return strconv.FormatBool(c.Install.SkipPackageManager) },
		set: func(c *Config, v string) error { return setBool(&c.Install.SkipPackageManager, v) },
	},
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: expected true or false, got %q", ErrInvalidValue, v)
	}
	*dst = b
	return nil
}

// ConfigManager reads and updates individual config entries by dotted key
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a new config manager
func NewConfigManager(cfg *Config, configPath string) *ConfigManager {
	return &ConfigManager{
		config:     cfg,
		configPath: configPath,
	}
}

// Keys returns every settable key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the current value of key
func (m *ConfigManager) Get(key string) (string, error) {
	f, ok := fields[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return f.get(m.config), nil
}

// Set validates value, stores it under key and saves the file
func (m *ConfigManager) Set(key, value string) error {
	f, ok := fields[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	if err := f.set(m.config, strings.TrimSpace(value)); err != nil {
		return err
	}

	return Save(m.config, m.configPath)
}

// Entries returns all key/value pairs in key order
func (m *ConfigManager) Entries() [][2]string {
	keys := Keys()
	entries := make([][2]string, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, [2]string{k, fields[k].get(m.config)})
	}
	return entries
}
