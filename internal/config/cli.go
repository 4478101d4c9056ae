package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Data sources the CLI can run against
const (
	SourceRemote  = "remote"
	SourceFixture = "fixture"
)

const DefaultBaseURL = "http://localhost:8000"

type ReconnectConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// CLIConfig is read from atsctl.yaml, then overridden by the environment
type CLIConfig struct {
	BaseURL    string          `yaml:"base_url"`
	DataSource string          `yaml:"data_source"`
	Timeout    time.Duration   `yaml:"timeout"`
	PrefsPath  string          `yaml:"prefs_path"`
	Reconnect  ReconnectConfig `yaml:"reconnect"`
}

// DefaultCLIPath is <user config dir>/talentdesk/atsctl.yaml
func DefaultCLIPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "atsctl.yaml"
	}
	return filepath.Join(dir, "talentdesk", "atsctl.yaml")
}

// LoadCLI reads path when it exists. A missing file means defaults.
func LoadCLI(path string) (*CLIConfig, error) {
	cfg := &CLIConfig{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("ATS_API_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("ATSCTL_DATA_SOURCE")); v != "" {
		cfg.DataSource = v
	}

	cfg.applyDefaults(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *CLIConfig) applyDefaults(dir string) {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.DataSource = strings.ToLower(strings.TrimSpace(c.DataSource))
	if c.DataSource == "" {
		c.DataSource = SourceRemote
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.PrefsPath == "" {
		c.PrefsPath = filepath.Join(dir, "prefs.json")
	}
	if c.Reconnect.Interval == 0 {
		c.Reconnect.Interval = 3 * time.Second
	}
	if c.Reconnect.MaxAttempts == 0 {
		c.Reconnect.MaxAttempts = 5
	}
}

func (c *CLIConfig) Validate() error {
	if err := oneOf("data_source", c.DataSource, SourceRemote, SourceFixture); err != nil {
		return err
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must start with http:// or https://, got %q", c.BaseURL)
	}
	if c.Timeout < 0 || c.Reconnect.Interval < 0 || c.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("timeout and reconnect settings cannot be negative")
	}
	return nil
}
