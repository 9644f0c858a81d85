//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"frame-extractor/cmd"
	"frame-extractor/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	config     *config.Config
	environ    map[string]string
	output     *bytes.Buffer
	err        error
}

var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		// Create temp directory for each scenario
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.config = nil
		testCtx.environ = make(map[string]string)
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^no config file exists$`, testCtx.noConfigFileExists)
	ctx.Step(`^a config file with fps (\d+)$`, testCtx.aConfigFileWithFPS)
	ctx.Step(`^the environment variable "([^"]*)" is "([^"]*)"$`, testCtx.theEnvironmentVariableIs)
	ctx.Step(`^I load the configuration$`, testCtx.iLoadTheConfiguration)
	ctx.Step(`^I run config set "([^"]*)" to "([^"]*)"$`, testCtx.iRunConfigSet)
	ctx.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	ctx.Step(`^the command should fail with "([^"]*)"$`, testCtx.theCommandShouldFailWith)
	ctx.Step(`^the config value "([^"]*)" should be "([^"]*)"$`, testCtx.theConfigValueShouldBe)
	ctx.Step(`^the saved config value "([^"]*)" should be "([^"]*)"$`, testCtx.theSavedConfigValueShouldBe)
}

func (c *configContext) noConfigFileExists() error {
	if _, err := os.Stat(c.configPath); err == nil {
		return os.Remove(c.configPath)
	}
	return nil
}

func (c *configContext) aConfigFileWithFPS(fps int) error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return err
	}
	content := fmt.Sprintf("extraction:\n  fps: %d\n  format: png\n  prefix: frame\n", fps)
	return os.WriteFile(c.configPath, []byte(content), 0644)
}

func (c *configContext) theEnvironmentVariableIs(name, value string) error {
	c.environ[name] = value
	return nil
}

func (c *configContext) iLoadTheConfiguration() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		cfg = config.Default()
	}
	if err := config.ApplyEnv(cfg, c.environ); err != nil {
		return err
	}
	c.config = cfg
	return nil
}

func (c *configContext) iRunConfigSet(key, value string) error {
	if c.config == nil {
		if err := c.iLoadTheConfiguration(); err != nil {
			return err
		}
	}
	c.err = cmd.RunConfigSetWithDependencies(c.config, c.configPath, key, value, c.output)
	return nil
}

func (c *configContext) theCommandShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got error: %v", c.err)
	}
	return nil
}

func (c *configContext) theCommandShouldFailWith(expected string) error {
	if c.err == nil {
		return fmt.Errorf("expected error containing %q, got success", expected)
	}
	if !strings.Contains(c.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %q", expected, c.err.Error())
	}
	return nil
}

func (c *configContext) theConfigValueShouldBe(key, expected string) error {
	return checkValue(c.config, c.configPath, key, expected)
}

func (c *configContext) theSavedConfigValueShouldBe(key, expected string) error {
	saved, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load saved config: %w", err)
	}
	return checkValue(saved, c.configPath, key, expected)
}

func checkValue(cfg *config.Config, path, key, expected string) error {
	var out bytes.Buffer
	if err := cmd.RunConfigGetWithDependencies(cfg, path, key, &out); err != nil {
		return err
	}
	if got := strings.TrimSpace(out.String()); got != expected {
		return fmt.Errorf("expected %s = %q, got %q", key, expected, got)
	}
	return nil
}
