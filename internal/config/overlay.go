// config/overlay.go
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OverlayFile is the optional YAML file named by OUTREACH_CONFIG.
type OverlayFile struct {
	Keywords      []string `yaml:"keywords"`
	ForumSites    []string `yaml:"forum_sites"`
	Subreddit     string   `yaml:"subreddit"`
	ExcludeSuffix string   `yaml:"exclude_suffix"`
}

// Overlay replaces list settings with the ones found in path. A missing
// file is not an error; an unreadable or malformed one is.
func Overlay(cfg *Outreach, path string) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var of OverlayFile
	if err := yaml.Unmarshal(b, &of); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	if len(of.Keywords) > 0 {
		cfg.Keywords = of.Keywords
	}
	if len(of.ForumSites) > 0 {
		cfg.ForumSites = of.ForumSites
	}
	if of.Subreddit != "" {
		cfg.Subreddit = of.Subreddit
	}
	if of.ExcludeSuffix != "" {
		cfg.ExcludeSuffix = of.ExcludeSuffix
	}
	return nil
}
