// Package game implements the run state machine: MENU -> PLAYING -> GAME_OVER,
// the score counter and high-score bookkeeping.
package game

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/space-runner/internal/leaderboard"
	"github.com/vovakirdan/space-runner/internal/observe"
)

// State is the process-wide game state.
type State int

const (
	StateMenu State = iota
	StatePlaying
	StateGameOver
)

// String returns the display name of the state.
func (s State) String() string {
	switch s {
	case StateMenu:
		return "MENU"
	case StatePlaying:
		return "PLAYING"
	case StateGameOver:
		return "GAME_OVER"
	default:
		return "UNKNOWN"
	}
}

// ErrNonPositiveAmount is returned by IncrementScore for amounts <= 0.
var ErrNonPositiveAmount = errors.New("game: score increment must be positive")

// HighScoreStore persists the best score across runs.
type HighScoreStore interface {
	HighScore() (int, error)
	SetHighScore(score int) error
}

// ScoreSubmitter receives finished runs. SubmitAsync must not block on the network.
type ScoreSubmitter interface {
	SubmitAsync(score int) <-chan leaderboard.SubmitResult
}

// Machine owns the game state, the current score and the high score.
// All transitions are expected on the simulation goroutine; the observable
// values may be read from anywhere.
type Machine struct {
	state     *observe.Value[State]
	score     *observe.Value[int]
	highScore *observe.Value[int]

	store     HighScoreStore
	submitter ScoreSubmitter
	logger    *log.Logger

	lastSubmit <-chan leaderboard.SubmitResult
}

// NewMachine creates a machine in MENU and loads the persisted high score.
// store and submitter may be nil (no persistence / no leaderboard).
func NewMachine(store HighScoreStore, submitter ScoreSubmitter, logger *log.Logger) *Machine {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := &Machine{
		state:     observe.NewValue(StateMenu),
		score:     observe.NewValue(0),
		highScore: observe.NewValue(0),
		store:     store,
		submitter: submitter,
		logger:    logger,
	}
	m.loadHighScore()
	return m
}

func (m *Machine) loadHighScore() {
	if m.store == nil {
		return
	}
	hs, err := m.store.HighScore()
	if err != nil {
		m.logger.Debug("no stored high score", "error", err)
		return
	}
	if hs > 0 {
		m.highScore.Set(hs)
	}
}

// State returns the observable game state.
func (m *Machine) State() *observe.Value[State] { return m.state }

// Score returns the observable current score.
func (m *Machine) Score() *observe.Value[int] { return m.score }

// HighScore returns the observable high score.
func (m *Machine) HighScore() *observe.Value[int] { return m.highScore }

// Is reports whether the machine is currently in s.
func (m *Machine) Is(s State) bool {
	return m.state.Get() == s
}

// StartGame resets the score and enters PLAYING from any state.
func (m *Machine) StartGame() {
	m.score.Set(0)
	m.state.Set(StatePlaying)
}

// EndGame moves PLAYING -> GAME_OVER and runs the end-of-run side effects once.
// It returns false (and does nothing) when not PLAYING.
func (m *Machine) EndGame() bool {
	if !m.Is(StatePlaying) {
		return false
	}
	m.state.Set(StateGameOver)
	m.finishRun()
	return true
}

// finishRun updates the high score and hands non-zero scores to the leaderboard,
// whether or not they beat the high score.
func (m *Machine) finishRun() {
	score := m.score.Get()

	if score > m.highScore.Get() {
		m.highScore.Set(score)
		if m.store != nil {
			if err := m.store.SetHighScore(score); err != nil {
				m.logger.Warn("could not persist high score", "score", score, "error", err)
			}
		}
	}

	m.lastSubmit = nil
	if score > 0 && m.submitter != nil {
		m.lastSubmit = m.submitter.SubmitAsync(score)
	}
}

// LastSubmission returns the result channel of the most recent leaderboard
// hand-off, or nil if the last run was not submitted.
func (m *Machine) LastSubmission() <-chan leaderboard.SubmitResult {
	return m.lastSubmit
}

// ResetGame moves GAME_OVER -> MENU and clears the score. The high score is kept.
// Calls from other states are ignored.
func (m *Machine) ResetGame() {
	if !m.Is(StateGameOver) {
		return
	}
	m.state.Set(StateMenu)
	m.score.Set(0)
}

// RestartGame is ResetGame followed by StartGame.
func (m *Machine) RestartGame() {
	m.ResetGame()
	m.StartGame()
}

// IncrementScore adds amount to the score while PLAYING.
// Outside PLAYING it is a silent no-op; non-positive amounts are rejected.
func (m *Machine) IncrementScore(amount int) error {
	if amount <= 0 {
		return ErrNonPositiveAmount
	}
	if !m.Is(StatePlaying) {
		return nil
	}
	m.score.Update(func(s int) int { return s + amount })
	return nil
}
