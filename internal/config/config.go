package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/jimdowning-cyclops/version-buddy-go/internal/version"
)

// FileName is the configuration file looked up by LoadFromDir.
const FileName = ".version-buddy.yml"

// Config represents the .version-buddy.yml configuration file.
type Config struct {
	// TagPrefix is stripped from tag names before the version is parsed,
	// e.g. "mobile-" for tags like "mobile-v1.2.3".
	TagPrefix string `yaml:"tag_prefix,omitempty"`

	// ChannelSeparator introduces a channel suffix in tag names, e.g. "_"
	// for "v1.2.3_internal". Empty disables channel suffixes.
	ChannelSeparator string `yaml:"channel_separator"`

	// ReleaseBranches are globs for branches that carry a major.minor
	// release line, e.g. "release/*" matching "release/1.2".
	ReleaseBranches []string `yaml:"release_branches"`

	// Channels map branch globs to pre-release labels. The first matching
	// rule wins.
	Channels []ChannelRule `yaml:"channels,omitempty"`

	// BumpRules map conventional commit types to "major", "minor", "patch"
	// or "none".
	BumpRules map[string]string `yaml:"bump_rules"`

	// InitialVersion is used when no release tag exists yet.
	InitialVersion version.Version `yaml:"initial_version"`
}

// ChannelRule maps branches matching Branch to the pre-release label Label.
type ChannelRule struct {
	Branch string `yaml:"branch"`
	Label  string `yaml:"label"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ChannelSeparator: "_",
		ReleaseBranches:  []string{"release/*", "release-*", "releases/*", "*.x"},
		BumpRules: map[string]string{
			"feat": "minor",
			"fix":  "patch",
		},
		InitialVersion: version.Zero(),
	}
}

// Load reads and parses a .version-buddy.yml config file from the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(string(data))
}

// Parse parses inline YAML config content. Keys that are not set keep
// their default values; bump_rules are merged into the defaults.
func Parse(content string) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir looks for .version-buddy.yml in the given directory.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, FileName))
}

// LoadOrDefault is like LoadFromDir but returns Default when the file does
// not exist.
func LoadOrDefault(dir string) (*Config, error) {
	cfg, err := LoadFromDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks that the config is valid.
func (c *Config) Validate() error {
	if strings.ContainsAny(c.ChannelSeparator, "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-.+") {
		return fmt.Errorf("channel_separator %q must not contain version characters", c.ChannelSeparator)
	}

	for _, pattern := range c.ReleaseBranches {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("release branch pattern %q is invalid: %w", pattern, err)
		}
	}

	for i, rule := range c.Channels {
		if rule.Branch == "" {
			return fmt.Errorf("channel %d must have a branch pattern", i)
		}
		if _, err := glob.Compile(rule.Branch, '/'); err != nil {
			return fmt.Errorf("channel branch pattern %q is invalid: %w", rule.Branch, err)
		}
		if _, err := version.ParseIdentifiers(rule.Label); err != nil {
			return fmt.Errorf("channel %q has an invalid label: %w", rule.Branch, err)
		}
	}

	for commitType, kind := range c.BumpRules {
		switch kind {
		case "major", "minor", "patch", "none":
		default:
			return fmt.Errorf("bump rule for %q must be major, minor, patch or none, got %q", commitType, kind)
		}
	}

	return nil
}

// BumpKinds returns the bump rules as bump kinds. Types mapped to "none"
// are left out.
func (c *Config) BumpKinds() map[string]version.BumpKind {
	kinds := make(map[string]version.BumpKind, len(c.BumpRules))
	for commitType, name := range c.BumpRules {
		if name == "none" {
			continue
		}
		kind, err := version.ParseBumpKind(name)
		if err != nil {
			continue
		}
		kinds[commitType] = kind
	}
	return kinds
}

// CommitTypes returns the commit types that have a bump rule, sorted
// alphabetically.
func (c *Config) CommitTypes() []string {
	types := make([]string, 0, len(c.BumpRules))
	for commitType := range c.BumpRules {
		types = append(types, commitType)
	}
	sort.Strings(types)
	return types
}
