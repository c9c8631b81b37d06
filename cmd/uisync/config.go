package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/uisync/pkg/indexer"
	"github.com/gnana997/uisync/pkg/scanner"
)

// configFile is the project configuration, relative to the project root.
const configFile = ".uisync/config.yaml"

// ProjectConfig holds the contents of .uisync/config.yaml.
type ProjectConfig struct {
	scanner.Layout `yaml:",inline"`

	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	MCPLog     string `yaml:"mcp_log"`
	DebounceMs int    `yaml:"debounce_ms"`
}

// defaultProjectConfig returns the configuration used when no file exists.
func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Layout:     scanner.DefaultLayout(),
		LogLevel:   "info",
		LogFormat:  "text",
		DebounceMs: indexer.DefaultWatchOptions().DebounceMs,
	}
}

// loadProjectConfig reads the configuration file under root.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig(root string) (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, configFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", configFile, err)
	}
	return &cfg, nil
}

// resolveConfig applies the fallback chain for every setting:
//  1. Explicit flag value (non-empty override)
//  2. Value from .uisync/config.yaml
//  3. Built-in default
func resolveConfig(root string, flags globalFlags) (ProjectConfig, error) {
	cfg := defaultProjectConfig()
	file, err := loadProjectConfig(root)
	if err != nil {
		return cfg, err
	}
	if file != nil {
		override(&cfg.SrcDir, file.SrcDir)
		override(&cfg.PagesDir, file.PagesDir)
		override(&cfg.ComponentsDir, file.ComponentsDir)
		override(&cfg.ModulesDir, file.ModulesDir)
		override(&cfg.LogLevel, file.LogLevel)
		override(&cfg.LogFormat, file.LogFormat)
		override(&cfg.MCPLog, file.MCPLog)
		if file.DebounceMs > 0 {
			cfg.DebounceMs = file.DebounceMs
		}
	}
	override(&cfg.LogLevel, flags.logLevel)
	override(&cfg.LogFormat, flags.logFormat)
	override(&cfg.MCPLog, flags.mcpLog)
	return cfg, nil
}

func override(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
