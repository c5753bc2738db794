package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration.
const (
	EnvRemoteURL  = "SPACE_RUNNER_REMOTE_URL"
	EnvPlayerName = "SPACE_RUNNER_PLAYER_NAME"
	EnvTopN       = "SPACE_RUNNER_TOP_N"
)

// LoadRunner loads the runner configuration.
// Search order: customPath -> ~/.spacerunner/configs/runner.yaml -> ./configs/runner.yaml -> embedded default.
// Files are decoded over the defaults, so a partial file only overrides what it names.
func LoadRunner(customPath string) (RunnerConfig, error) {
	cfg := DefaultRunnerConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("runner.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = DefaultRunnerConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/runner.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = DefaultRunnerConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultRunnerYAML, &cfg); err != nil {
		return DefaultRunnerConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".spacerunner", "configs", filename)
}

// ApplyEnv overrides configuration from environment variables.
// Environment variables take precedence over file values.
func ApplyEnv(cfg *RunnerConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvRemoteURL)); v != "" {
		cfg.Leaderboard.RemoteURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPlayerName)); v != "" {
		cfg.Leaderboard.DefaultName = v
	}
	if n := getEnvInt(EnvTopN, 0); n > 0 {
		cfg.Leaderboard.TopN = n
	}
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Validate reports every invalid field at once.
func (c RunnerConfig) Validate() error {
	var errs []error
	p := c.Physics

	if p.BaseSpeed <= 0 {
		errs = append(errs, errors.New("physics.base_speed must be positive"))
	}
	if p.SpeedIncrement < 0 {
		errs = append(errs, errors.New("physics.speed_increment must not be negative"))
	}
	if p.SpawnInterval < 1 {
		errs = append(errs, errors.New("physics.spawn_interval must be at least 1"))
	}
	if p.CleanupDepth <= p.SpawnDepth {
		errs = append(errs, errors.New("physics.cleanup_depth must be past physics.spawn_depth"))
	}
	if p.LaneStep <= 0 || p.LaneBound < p.LaneStep {
		errs = append(errs, errors.New("physics.lane_step must be positive and not exceed physics.lane_bound"))
	}
	if p.Smoothing <= 0 || p.Smoothing > 1 {
		errs = append(errs, errors.New("physics.smoothing must be in (0, 1]"))
	}
	if p.CollisionRadius <= 0 {
		errs = append(errs, errors.New("physics.collision_radius must be positive"))
	}

	lb := c.Leaderboard
	if lb.TopN < 1 {
		errs = append(errs, errors.New("leaderboard.top_n must be at least 1"))
	}
	if lb.Window < lb.TopN {
		errs = append(errs, errors.New("leaderboard.window must be at least leaderboard.top_n"))
	}
	if lb.LocalCap < 1 {
		errs = append(errs, errors.New("leaderboard.local_cap must be at least 1"))
	}
	if lb.RemoteURL != "" {
		u, err := url.Parse(lb.RemoteURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("leaderboard.remote_url %q is not an http(s) URL", lb.RemoteURL))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
