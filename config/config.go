package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

const DefaultHeadBranch = "main"

// DefaultDelta is the clustering window used when the config file and
// --delta flag are both silent.
const DefaultDelta = 120 * time.Second

// Config holds the settings that drive one import run, merged from a YAML
// file (if any) and then overridden by command-line flags.
type Config struct {
	CVSRoot          string        `yaml:"cvsroot"`
	Store            string        `yaml:"store"`
	HeadBranch       string        `yaml:"head_branch"`
	Branches         []string      `yaml:"branches"`
	Delta            time.Duration `yaml:"delta"`
	Jobs             int           `yaml:"jobs"`
	IgnoreFileErrors bool          `yaml:"ignore_file_errors"`
	TagIdentityName  string        `yaml:"tag_identity_name"`
	TagIdentityEmail string        `yaml:"tag_identity_email"`
}

// UnmarshalYAML decodes every Config field and parses delta as a Go
// duration string ("30s") with time.ParseDuration, so a malformed duration
// is reported as such.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type alias Config
	var aux struct {
		Delta string `yaml:"delta"`
	}
	if err := unmarshal(&aux); err != nil {
		return err
	}
	delta := c.Delta
	if aux.Delta != "" {
		d, err := time.ParseDuration(aux.Delta)
		if err != nil {
			return fmt.Errorf("failed to parse 'delta' as a duration: %v", err)
		}
		delta = d
	}
	if err := unmarshal((*alias)(c)); err != nil {
		return err
	}
	c.Delta = delta
	return nil
}

// Unmarshal parses a YAML config, filling in defaults before overlaying
// whatever the document sets.
func Unmarshal(config []byte) (*Config, error) {
	cfg := &Config{
		HeadBranch: DefaultHeadBranch,
		Delta:      DefaultDelta,
	}
	if err := yaml.Unmarshal(config, cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v. make sure to use 'single quotes' around strings with special characters (like match patterns)", err.Error())
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigFile loads and parses a YAML config file.
func LoadConfigFile(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load %v: %v", filename, err.Error())
	}
	cfg, err := LoadConfigString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to load %v: %v", filename, err.Error())
	}
	return cfg, nil
}

// LoadConfigString parses a YAML document already held in memory.
func LoadConfigString(content []byte) (*Config, error) {
	return Unmarshal(content)
}

func (c *Config) validate() error {
	if c.HeadBranch == "" {
		return fmt.Errorf("head_branch must not be empty")
	}
	if c.Delta < 0 {
		return fmt.Errorf("delta must not be negative")
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative")
	}
	if (c.TagIdentityName == "") != (c.TagIdentityEmail == "") {
		return fmt.Errorf("tag_identity_name and tag_identity_email must both be set or both be empty")
	}
	return nil
}

// Merge overlays any non-zero field of override onto c, used to apply
// command-line flags on top of a loaded config file. A flag's zero value
// means "not set on the command line" and never overrides a config value.
func (c *Config) Merge(override Config) {
	if override.CVSRoot != "" {
		c.CVSRoot = override.CVSRoot
	}
	if override.Store != "" {
		c.Store = override.Store
	}
	if override.HeadBranch != "" {
		c.HeadBranch = override.HeadBranch
	}
	if len(override.Branches) > 0 {
		c.Branches = override.Branches
	}
	if override.Delta != 0 {
		c.Delta = override.Delta
	}
	if override.Jobs != 0 {
		c.Jobs = override.Jobs
	}
	if override.IgnoreFileErrors {
		c.IgnoreFileErrors = true
	}
	if override.TagIdentityName != "" {
		c.TagIdentityName = override.TagIdentityName
	}
	if override.TagIdentityEmail != "" {
		c.TagIdentityEmail = override.TagIdentityEmail
	}
}
