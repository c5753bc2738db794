// Package core provides fundamental types and utilities for the runner.
// It contains no external dependencies (especially no Bubble Tea) to keep game
// logic pure and testable.
package core

import "math"

// Vec3 is a plain 3D coordinate. Gameplay only reads X (lateral) and Z (depth);
// Y is carried so distances match the scene the renderer draws.
type Vec3 struct {
	X, Y, Z float64
}

// NewVec3 creates a vector from its components.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Length returns the Euclidean length of the vector.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Vec3) float64 {
	return a.Sub(b).Length()
}
