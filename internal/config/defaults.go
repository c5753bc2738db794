package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/runner.yaml
var defaultRunnerYAML []byte

// DefaultRunnerConfig returns the hard-coded default configuration.
// It mirrors defaults/runner.yaml and is used when the embedded file cannot be parsed.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Physics: RunnerPhysics{
			BaseSpeed:       0.5,
			SpeedIncrement:  0.001,
			SpawnInterval:   60,
			SpawnDepth:      -50,
			CleanupDepth:    5,
			LaneBound:       4,
			LaneStep:        2,
			Smoothing:       0.1,
			CollisionRadius: 1.2,
			ShipDepth:       4,
		},
		Leaderboard: LeaderboardConfig{
			RemoteURL:     "",
			TopN:          10,
			Window:        100,
			LocalCap:      10,
			ProbeInterval: 5 * time.Second,
			DefaultName:   "Anonymous",
		},
	}
}

// DefaultYAML returns the embedded default YAML.
func DefaultYAML() []byte {
	return defaultRunnerYAML
}
