package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap/zapcore"

	"mergeview/internal/compare"
)

const (
	configDirName  = "mergeview"
	configFileName = "config.json"
)

type AppConfig struct {
	IgnorePolicy    string `json:"ignore_policy"`
	HighlightPolicy string `json:"highlight_policy"`
	Algorithm       string `json:"algorithm"`
	SyncScroll      bool   `json:"sync_scroll"`
	MaxLines        int    `json:"max_lines"`
	ContextLines    int    `json:"context_lines"`
	AnchorRadius    int    `json:"anchor_radius"`
	LogLevel        string `json:"log_level"`
	LogFile         string `json:"log_file,omitempty"`
}

func Default() AppConfig {
	p := compare.DefaultPolicy()
	return AppConfig{
		IgnorePolicy:    p.Ignore.String(),
		HighlightPolicy: p.Highlight.String(),
		Algorithm:       compare.AlgorithmMyers,
		SyncScroll:      true,
		MaxLines:        compare.DefaultMaxLines,
		ContextLines:    3,
		AnchorRadius:    2,
		LogLevel:        "info",
	}
}

func Load() (AppConfig, string, error) {
	path, err := DefaultPath()
	if err != nil {
		return AppConfig{}, "", err
	}
	cfg, err := LoadFromPath(path)
	return cfg, path, err
}

func LoadFromPath(path string) (AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return AppConfig{}, err
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Normalize trims and lower-cases names, fills zero values with defaults and
// rejects anything the comparison cannot use.
func (c *AppConfig) Normalize() error {
	def := Default()
	c.IgnorePolicy = strings.ToLower(strings.TrimSpace(c.IgnorePolicy))
	c.HighlightPolicy = strings.ToLower(strings.TrimSpace(c.HighlightPolicy))
	c.Algorithm = strings.ToLower(strings.TrimSpace(c.Algorithm))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFile = strings.TrimSpace(c.LogFile)

	if c.Algorithm == "" {
		c.Algorithm = def.Algorithm
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}

	if _, err := c.Policy(); err != nil {
		return err
	}
	if !slices.Contains(compare.Algorithms(), c.Algorithm) {
		return fmt.Errorf("unknown algorithm %q", c.Algorithm)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.MaxLines < 0 {
		return fmt.Errorf("max_lines cannot be negative")
	}
	if c.MaxLines == 0 {
		c.MaxLines = def.MaxLines
	}
	if c.ContextLines < 0 {
		return fmt.Errorf("context_lines cannot be negative")
	}
	if c.AnchorRadius < 0 {
		return fmt.Errorf("anchor_radius cannot be negative")
	}
	return nil
}

func (c AppConfig) Policy() (compare.Policy, error) {
	ignore, err := compare.ParseIgnorePolicy(c.IgnorePolicy)
	if err != nil {
		return compare.Policy{}, err
	}
	highlight, err := compare.ParseHighlightPolicy(c.HighlightPolicy)
	if err != nil {
		return compare.Policy{}, err
	}
	return compare.Policy{Ignore: ignore, Highlight: highlight}, nil
}

func Save(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func DefaultPath() (string, error) {
	home, err := configHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

func configHome() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return xdg, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config"), nil
}
