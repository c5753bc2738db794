// Package runner implements the Space Runner simulation: a ship dodging
// meteors that fly toward the camera, getting faster with every spawn.
package runner

import (
	"github.com/vovakirdan/space-runner/internal/config"
	"github.com/vovakirdan/space-runner/internal/core"
)

// Per-tick animation rates.
const (
	TiltFactor  = 0.5   // Ship roll per unit of remaining lateral gap
	TumbleX     = 0.02  // Meteor rotation about X per tick
	TumbleY     = 0.015 // Meteor rotation about Y per tick
	StarfieldDT = 0.001 // Background rotation per tick
)

// Ship is the player's craft. It only moves laterally.
type Ship struct {
	X       float64 // Current lateral position
	TargetX float64 // Lane the ship is gliding toward
	Tilt    float64 // Roll angle for rendering
}

// Obstacle is a meteor travelling toward the camera.
type Obstacle struct {
	ID        int
	Pos       core.Vec3
	RotX      float64
	RotY      float64
	SpawnTick int
}

// World is the complete simulation state.
type World struct {
	Ship       Ship
	Obstacles  []Obstacle // Spawn order
	Speed      float64    // Shared depth advance per tick
	SpawnTimer int
	Ticks      int     // Simulated ticks since the last reset
	Starfield  float64 // Background rotation angle

	nextID int
}

// NewWorld creates a world ready for a new session.
func NewWorld(p config.RunnerPhysics) *World {
	w := &World{Obstacles: make([]Obstacle, 0, 8)}
	w.Reset(p)
	return w
}

// Reset clears obstacles and returns the ship and speed to their initial values.
// The starfield angle keeps running across sessions.
func (w *World) Reset(p config.RunnerPhysics) {
	w.Obstacles = w.Obstacles[:0]
	w.Ship = Ship{}
	w.Speed = p.BaseSpeed
	w.SpawnTimer = 0
	w.Ticks = 0
}

// ShipPos returns the ship position in world coordinates.
func (w *World) ShipPos(p config.RunnerPhysics) core.Vec3 {
	return core.NewVec3(w.Ship.X, 0, p.ShipDepth)
}

// MoveLeft shifts the target one lane left. At the left bound it does nothing.
func (w *World) MoveLeft(p config.RunnerPhysics) bool {
	if w.Ship.TargetX-p.LaneStep < -p.LaneBound {
		return false
	}
	w.Ship.TargetX -= p.LaneStep
	return true
}

// MoveRight shifts the target one lane right. At the right bound it does nothing.
func (w *World) MoveRight(p config.RunnerPhysics) bool {
	if w.Ship.TargetX+p.LaneStep > p.LaneBound {
		return false
	}
	w.Ship.TargetX += p.LaneStep
	return true
}

// spawn appends a meteor at the spawn depth and lateral position x.
func (w *World) spawn(p config.RunnerPhysics, x, rotX, rotY float64) Obstacle {
	w.nextID++
	o := Obstacle{
		ID:        w.nextID,
		Pos:       core.NewVec3(x, 0, p.SpawnDepth),
		RotX:      rotX,
		RotY:      rotY,
		SpawnTick: w.Ticks,
	}
	w.Obstacles = append(w.Obstacles, o)
	return o
}
