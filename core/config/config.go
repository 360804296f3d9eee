package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tristendillon/routefix/core/logger"
	"gopkg.in/yaml.v3"
)

const FileName = "routefix.yaml"

const DefaultMarker = "export const dynamic = 'force-dynamic';"

const (
	FormatText  = "text"
	FormatTable = "table"
)

type Config struct {
	Scan   Scan   `yaml:"scan"`
	Fix    Fix    `yaml:"fix"`
	Output Output `yaml:"output"`
}

type Scan struct {
	Root       string   `yaml:"root"`
	Extensions []string `yaml:"extensions"`
	Exclude    []string `yaml:"exclude"`
	// Pattern overrides the built-in route import regex when set.
	Pattern string `yaml:"pattern,omitempty"`
}

type Fix struct {
	Dir      string   `yaml:"dir"`
	Marker   string   `yaml:"marker"`
	Suffixes []string `yaml:"suffixes"`
	// ApplyExclude makes fix skip the scan.exclude directories too.
	ApplyExclude bool `yaml:"apply_exclude"`
}

type Output struct {
	Format string `yaml:"format"`
}

func DefaultExclude() []string {
	return []string{"node_modules", ".next", "dist", "out", "build", ".git"}
}

func Default() *Config {
	return &Config{
		Scan: Scan{
			Root:       ".",
			Extensions: []string{".ts", ".tsx", ".js", ".jsx"},
			Exclude:    DefaultExclude(),
		},
		Fix: Fix{
			Dir:      filepath.Join("app", "api"),
			Marker:   DefaultMarker,
			Suffixes: []string{"route.ts", "route.js"},
		},
		Output: Output{
			Format: FormatText,
		},
	}
}

// Load reads routefix.yaml from dir. A missing file yields Default().
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No config file found, using default config")
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}
	return LoadFile(path)
}

// LoadFile decodes path over the defaults, so keys left out of the file keep
// their default values.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	logger.Debug("Config file found: %s", path)
	logger.Debug("Config: %+v", *cfg)

	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Scan.Extensions) == 0 {
		return fmt.Errorf("scan.extensions must not be empty")
	}
	if len(c.Fix.Suffixes) == 0 {
		return fmt.Errorf("fix.suffixes must not be empty")
	}
	if c.Fix.Marker == "" {
		return fmt.Errorf("fix.marker must not be empty")
	}
	switch c.Output.Format {
	case FormatText, FormatTable:
	default:
		return fmt.Errorf("unknown output.format %q (want %q or %q)", c.Output.Format, FormatText, FormatTable)
	}
	return nil
}

// Write stores c as yaml at path.
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
