package runner

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/space-runner/internal/config"
	"github.com/vovakirdan/space-runner/internal/core"
)

// Controller is the part of the state machine the simulation drives.
type Controller interface {
	IncrementScore(amount int) error
	EndGame() bool
}

// StepEvents reports what happened during one Step.
type StepEvents struct {
	Spawned  *Obstacle // Meteor spawned this tick, if any
	Collided bool
	HitID    int // Meteor that ended the run
	Cleared  int // Meteors that passed the camera and scored
}

// Collides reports whether a and b are strictly closer than radius.
func Collides(a, b core.Vec3, radius float64) bool {
	return core.Distance(a, b) < radius
}

// Step advances w by one tick:
//  1. glide the ship toward its target lane
//  2. spawn a meteor when the spawn timer runs out, speeding up the field
//  3. advance every meteor by the shared speed
//  4. end the run on the first collision and stop there
//  5. remove meteors that passed the camera, scoring one point each
func Step(w *World, p config.RunnerPhysics, rng *rand.Rand, ctl Controller) StepEvents {
	var ev StepEvents
	w.Ticks++

	// Ship
	gap := w.Ship.TargetX - w.Ship.X
	w.Ship.X += gap * p.Smoothing
	w.Ship.Tilt = -(w.Ship.TargetX - w.Ship.X) * TiltFactor

	// Spawn
	w.SpawnTimer++
	if w.SpawnTimer > p.SpawnInterval {
		x := (rng.Float64() - 0.5) * 2 * p.LaneBound
		o := w.spawn(p, x, rng.Float64()*math.Pi, rng.Float64()*math.Pi)
		ev.Spawned = &o
		w.SpawnTimer = 0
		w.Speed += p.SpeedIncrement
	}

	// Move
	for i := range w.Obstacles {
		o := &w.Obstacles[i]
		o.Pos.Z += w.Speed
		o.RotX += TumbleX
		o.RotY += TumbleY
	}

	// Collide
	ship := w.ShipPos(p)
	for _, o := range w.Obstacles {
		if Collides(ship, o.Pos, p.CollisionRadius) {
			ctl.EndGame()
			ev.Collided = true
			ev.HitID = o.ID
			return ev
		}
	}

	// Cleanup
	live := w.Obstacles[:0]
	for _, o := range w.Obstacles {
		if o.Pos.Z > p.CleanupDepth {
			ev.Cleared++
			_ = ctl.IncrementScore(1)
			continue
		}
		live = append(live, o)
	}
	w.Obstacles = live

	return ev
}
