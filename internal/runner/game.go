package runner

import (
	"math/rand"

	"github.com/vovakirdan/space-runner/internal/config"
	"github.com/vovakirdan/space-runner/internal/game"
)

// Game couples the world to the state machine. All methods must be called
// from the goroutine that drives ticks.
type Game struct {
	machine *game.Machine
	physics config.RunnerPhysics
	world   *World
	rng     *rand.Rand
	stars   []star
	ready   bool
}

// NewGame creates a game bound to m. The same seed always yields the same
// meteor field.
func NewGame(m *game.Machine, p config.RunnerPhysics, seed int64) *Game {
	rng := rand.New(rand.NewSource(seed))
	return &Game{
		machine: m,
		physics: p,
		world:   NewWorld(p),
		rng:     rng,
		stars:   newStarfield(rng, starCount),
	}
}

// Machine returns the state machine the game drives.
func (g *Game) Machine() *game.Machine { return g.machine }

// World returns the simulation state. Callers must not mutate it.
func (g *Game) World() *World { return g.world }

// Physics returns the tuning in use.
func (g *Game) Physics() config.RunnerPhysics { return g.physics }

// SetReady marks the scene as ready (or not) for simulation.
func (g *Game) SetReady(ready bool) { g.ready = ready }

// Ready reports whether the scene is ready.
func (g *Game) Ready() bool { return g.ready }

// Tick runs one frame. The starfield always drifts; the simulation only
// advances while PLAYING and ready.
func (g *Game) Tick() StepEvents {
	g.world.Starfield += StarfieldDT
	if !g.ready || !g.machine.Is(game.StatePlaying) {
		return StepEvents{}
	}
	return Step(g.world, g.physics, g.rng, g.machine)
}

// Start begins a session from MENU or GAME_OVER.
func (g *Game) Start() {
	g.world.Reset(g.physics)
	g.machine.StartGame()
}

// Restart goes from GAME_OVER straight into a new session.
func (g *Game) Restart() {
	g.world.Reset(g.physics)
	g.machine.RestartGame()
}

// MoveLeft shifts the ship one lane left while playing.
func (g *Game) MoveLeft() {
	if g.machine.Is(game.StatePlaying) {
		g.world.MoveLeft(g.physics)
	}
}

// MoveRight shifts the ship one lane right while playing.
func (g *Game) MoveRight() {
	if g.machine.Is(game.StatePlaying) {
		g.world.MoveRight(g.physics)
	}
}
