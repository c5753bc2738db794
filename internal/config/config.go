// Package config provides YAML-based configuration loading and difficulty
// presets for the runner and its leaderboard sync.
package config

import "time"

// RunnerConfig contains all configuration for a Space Runner installation.
type RunnerConfig struct {
	Physics     RunnerPhysics     `yaml:"physics"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
}

// RunnerPhysics defines the per-tick simulation parameters.
type RunnerPhysics struct {
	BaseSpeed       float64 `yaml:"base_speed"`       // Obstacle depth advance per tick at session start
	SpeedIncrement  float64 `yaml:"speed_increment"`  // Added to speed on every spawn
	SpawnInterval   int     `yaml:"spawn_interval"`   // Spawn when the timer exceeds this many ticks
	SpawnDepth      float64 `yaml:"spawn_depth"`      // Z where obstacles appear
	CleanupDepth    float64 `yaml:"cleanup_depth"`    // Obstacles with Z beyond this are removed and scored
	LaneBound       float64 `yaml:"lane_bound"`       // Ship target and spawn X stay within [-bound, bound]
	LaneStep        float64 `yaml:"lane_step"`        // Target shift per move input
	Smoothing       float64 `yaml:"smoothing"`        // Fraction of the remaining gap closed per tick
	CollisionRadius float64 `yaml:"collision_radius"` // Distances strictly below this collide
	ShipDepth       float64 `yaml:"ship_depth"`       // Fixed Z of the ship
}

// LeaderboardConfig defines local caching and remote sync parameters.
type LeaderboardConfig struct {
	RemoteURL     string        `yaml:"remote_url"`     // Base URL of the leaderboard service; empty = offline only
	TopN          int           `yaml:"top_n"`          // Size of the published unique-player view
	Window        int           `yaml:"window"`         // Raw remote entries fetched before dedup
	LocalCap      int           `yaml:"local_cap"`      // Local score list cap
	ProbeInterval time.Duration `yaml:"probe_interval"` // Connectivity probe period
	DefaultName   string        `yaml:"default_name"`   // Name used when the player never set one
}
