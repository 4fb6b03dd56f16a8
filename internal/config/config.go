// Package config loads harness settings from TOML files with a
// home-then-project overlay.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultTarget         = "./img_processor"
	defaultImage          = "./img.jpeg"
	defaultResultsDir     = "results"
	defaultSessionTimeout = 60 * time.Second
	defaultCooldown       = 1 * time.Second
)

// Config stores runtime settings for one harness invocation. It is passed
// explicitly into the coordinator; there is no ambient process-wide state.
type Config struct {
	Target         string
	Image          string
	ResultsDir     string
	SessionTimeout time.Duration
	Cooldown       time.Duration
}

type fileConfig struct {
	Target         *string `toml:"target"`
	Image          *string `toml:"image"`
	ResultsDir     *string `toml:"results_dir"`
	SessionTimeout *string `toml:"session_timeout"`
	Cooldown       *string `toml:"cooldown"`
}

// Load reads config from ~/.pxp/config.toml and overlays a project-local
// .pxp/config.toml. Missing files are fine; the defaults stand.
func Load(ctx context.Context) (*Config, error) {
	cfg := defaults()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	workingDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	paths := []string{
		filepath.Join(homeDir, ".pxp", "config.toml"),
		filepath.Join(workingDir, ".pxp", "config.toml"),
	}
	for _, path := range paths {
		if err := overlayFromFile(&cfg, path); err != nil {
			return nil, err
		}
	}

	_ = ctx
	return &cfg, nil
}

func defaults() Config {
	return Config{
		Target:         defaultTarget,
		Image:          defaultImage,
		ResultsDir:     defaultResultsDir,
		SessionTimeout: defaultSessionTimeout,
		Cooldown:       defaultCooldown,
	}
}

func overlayFromFile(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config must not be nil")
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat config file %q: %w", path, err)
	}

	var decoded fileConfig
	if _, err := toml.DecodeFile(path, &decoded); err != nil {
		return fmt.Errorf("decode config file %q: %w", path, err)
	}

	if decoded.Target != nil {
		cfg.Target = strings.TrimSpace(*decoded.Target)
	}
	if decoded.Image != nil {
		cfg.Image = strings.TrimSpace(*decoded.Image)
	}
	if decoded.ResultsDir != nil {
		cfg.ResultsDir = strings.TrimSpace(*decoded.ResultsDir)
	}
	if decoded.SessionTimeout != nil {
		value, err := parseDuration(*decoded.SessionTimeout, "session_timeout", path)
		if err != nil {
			return err
		}
		cfg.SessionTimeout = value
	}
	if decoded.Cooldown != nil {
		value, err := parseDuration(*decoded.Cooldown, "cooldown", path)
		if err != nil {
			return err
		}
		cfg.Cooldown = value
	}
	return nil
}

func parseDuration(value, key, path string) (time.Duration, error) {
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s in %q: %w", key, path, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("parse %s in %q: must be positive", key, path)
	}
	return parsed, nil
}
