package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	projectConfigDir  = ".twconfig"
	projectConfigFile = "config.yaml"
	defaultConfigPath = "twconfig.yaml"
)

// ProjectConfig holds the contents of .twconfig/config.yaml.
type ProjectConfig struct {
	Version string `yaml:"version"`

	// Config is the configuration document, YAML, JSON or tailwind.config.js.
	Config string `yaml:"config"`

	// Palette is an optional palette JSON merged over the built-in one.
	Palette string `yaml:"palette"`

	Output OutputConfig `yaml:"output"`

	StrictRoles  bool     `yaml:"strict_roles"`
	ExtraPlugins []string `yaml:"extra_plugins"`

	Log LogConfig `yaml:"log"`

	// MCPLog enables the JSONL tool-call log of the serve command.
	MCPLog string `yaml:"mcp_log"`
}

// OutputConfig names the files render and watch write.
type OutputConfig struct {
	JS  string `yaml:"js"`
	CSS string `yaml:"css"`
}

// LogConfig selects the diagnostic log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// loadProjectConfig reads .twconfig/config.yaml under dir. Relative paths in
// the file are resolved against dir. Returns nil (no error) if the file
// does not exist.
func loadProjectConfig(dir string) (*ProjectConfig, error) {
	path := filepath.Join(dir, projectConfigDir, projectConfigFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for _, p := range []*string{&cfg.Config, &cfg.Palette, &cfg.Output.JS, &cfg.Output.CSS, &cfg.MCPLog} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return &cfg, nil
}

// pick returns the first non-empty value: an explicit flag, then the
// project config, then the default.
func pick(flagValue, projectValue, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if projectValue != "" {
		return projectValue
	}
	return fallback
}
