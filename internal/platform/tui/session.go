package tui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/space-runner/internal/config"
	"github.com/vovakirdan/space-runner/internal/game"
	"github.com/vovakirdan/space-runner/internal/leaderboard"
	"github.com/vovakirdan/space-runner/internal/runner"
	"github.com/vovakirdan/space-runner/internal/storage"
)

// SessionConfig describes one player's session.
type SessionConfig struct {
	Runner config.RunnerConfig
	KV     storage.KV               // Local persistence; required
	Remote leaderboard.Remote       // nil keeps the session offline
	Conn   leaderboard.Connectivity // nil means never online
	Seed   int64                    // 0 = random based on time
	Logger *log.Logger
}

// Session bundles the state machine, the simulated world and the
// leaderboard engine of one player.
type Session struct {
	Game   *runner.Game
	Engine *leaderboard.Engine
	Local  *leaderboard.LocalStore
	logger *log.Logger
}

// NewSession wires a session. Nothing touches the network until Start.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	local := leaderboard.NewLocalStore(cfg.KV, cfg.Runner.Leaderboard.LocalCap)
	engine := leaderboard.NewEngine(local, cfg.Remote, cfg.Conn, cfg.Runner.Leaderboard, logger.WithPrefix("leaderboard"))
	machine := game.NewMachine(local, engine, logger.WithPrefix("game"))

	return &Session{
		Game:   runner.NewGame(machine, cfg.Runner.Physics, cfg.Seed),
		Engine: engine,
		Local:  local,
		logger: logger,
	}
}

// Machine returns the session's state machine.
func (s *Session) Machine() *game.Machine {
	return s.Game.Machine()
}

// Close stops the leaderboard engine and waits up to timeout for
// submissions still in flight.
func (s *Session) Close(timeout time.Duration) {
	s.Engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Engine.Wait(ctx); err != nil {
		s.logger.Warn("leaderboard submissions still pending at exit", "error", err)
	}
}
