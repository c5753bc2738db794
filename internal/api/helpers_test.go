package api_test

import (
	"github.com/vovakirdan/space-runner/internal/config"
)

// alwaysOnline is a connectivity signal that never changes.
type alwaysOnline struct{}

func (alwaysOnline) Online() bool                { return true }
func (alwaysOnline) Subscribe(func(bool)) func() { return func() {} }

func defaultLeaderboardConfig() config.LeaderboardConfig {
	return config.DefaultRunnerConfig().Leaderboard
}
