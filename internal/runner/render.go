package runner

import (
	"math"
	"math/rand"

	"github.com/vovakirdan/space-runner/internal/core"
)

// Visual characters for rendering
const (
	ShipNose     = 'A'
	ShipWingL    = '/'
	ShipWingR    = '\\'
	ShipBank     = '_'
	ShipExhaust  = '^'
	MeteorFar    = '.'
	MeteorMid    = 'o'
	MeteorNear   = 'O'
	MeteorClose  = '@'
	StarChar     = '.'
	LaneMarkChar = ':'
)

// Camera placement in world units.
const (
	cameraY = 3.0
	cameraZ = 10.0
)

const starCount = 48

// star is a background point in polar screen coordinates.
type star struct {
	r     float64 // 0..1, fraction of the half-diagonal
	theta float64
	shade core.Color
}

func newStarfield(rng *rand.Rand, n int) []star {
	stars := make([]star, n)
	for i := range stars {
		shade := core.ColorGray
		if rng.Intn(5) == 0 {
			shade = core.ColorBrightWhite
		}
		stars[i] = star{
			r:     math.Sqrt(rng.Float64()),
			theta: rng.Float64() * 2 * math.Pi,
			shade: shade,
		}
	}
	return stars
}

// projection maps world coordinates onto a terminal grid. Cells are about
// twice as tall as they are wide, so X gets twice the focal length of Y.
type projection struct {
	cx, horizon float64
	fx, fy      float64
}

func newProjection(w, h int, p shipDepthBound) projection {
	horizon := float64(h) / 4
	// Ship row sits two lines above the bottom edge.
	dShip := cameraZ - p.depth
	fy := (float64(h) - 3 - horizon) * dShip / cameraY
	fx := 2 * fy
	if p.bound > 0 {
		// Keep the outer lanes inside the screen at ship depth.
		maxFx := (float64(w)/2 - 3) * dShip / p.bound
		if fx > maxFx {
			fx = maxFx
		}
	}
	return projection{cx: float64(w) / 2, horizon: horizon, fx: fx, fy: fy}
}

// shipDepthBound carries the two physics values the projection needs.
type shipDepthBound struct {
	depth, bound float64
}

// project returns the screen cell for v and the camera distance.
// ok is false for points at or behind the camera.
func (pr projection) project(v core.Vec3) (x, y int, dist float64, ok bool) {
	dist = cameraZ - v.Z
	if dist <= 0.1 {
		return 0, 0, dist, false
	}
	sx := pr.cx + v.X*pr.fx/dist
	sy := pr.horizon + (cameraY-v.Y)*pr.fy/dist
	return int(math.Round(sx)), int(math.Round(sy)), dist, true
}

// Render draws the starfield, lane markers, meteors and the ship.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()
	w, h := dst.Width(), dst.Height()
	if w <= 0 || h <= 0 {
		return
	}

	g.drawStars(dst)

	pr := newProjection(w, h, shipDepthBound{depth: g.physics.ShipDepth, bound: g.physics.LaneBound})
	g.drawLanes(dst, pr)

	// Newest meteors are the farthest; draw them first so near ones overwrite.
	for i := len(g.world.Obstacles) - 1; i >= 0; i-- {
		g.drawMeteor(dst, pr, g.world.Obstacles[i])
	}

	g.drawShip(dst, pr)
}

func (g *Game) drawStars(dst *core.Screen) {
	for _, s := range g.stars {
		x, y := g.starPos(s, dst.Width(), dst.Height())
		dst.SetColor(x, y, StarChar, s.shade)
	}
}

// starPos places s on a w x h grid, rotated by the starfield angle in radians.
func (g *Game) starPos(s star, w, h int) (int, int) {
	cx, cy := float64(w)/2, float64(h)/2
	a := s.theta + g.world.Starfield
	return int(cx + s.r*math.Cos(a)*cx), int(cy + s.r*math.Sin(a)*cy)
}

func (g *Game) drawLanes(dst *core.Screen, pr projection) {
	p := g.physics
	if p.LaneStep <= 0 {
		return
	}
	for lane := -p.LaneBound; lane <= p.LaneBound+1e-9; lane += p.LaneStep {
		for z := p.SpawnDepth; z <= p.ShipDepth; z += 6 {
			x, y, _, ok := pr.project(core.NewVec3(lane, 0, z))
			if ok && dst.Get(x, y) == ' ' {
				dst.SetColor(x, y, LaneMarkChar, core.ColorGray)
			}
		}
	}
}

func (g *Game) drawMeteor(dst *core.Screen, pr projection, o Obstacle) {
	x, y, dist, ok := pr.project(o.Pos)
	if !ok {
		return
	}

	switch {
	case dist > 40:
		dst.SetColor(x, y, MeteorFar, core.ColorOrange)
	case dist > 22:
		dst.SetColor(x, y, MeteorMid, core.ColorOrange)
	case dist > 12:
		dst.SetColor(x, y, MeteorNear, core.ColorRed)
	default:
		// Tumble shifts the highlight around the rock.
		c := core.ColorRed
		if math.Sin(o.RotX+o.RotY) > 0 {
			c = core.ColorOrange
		}
		dst.SetColor(x-1, y, MeteorClose, c)
		dst.SetColor(x, y, MeteorClose, core.ColorRed)
		dst.SetColor(x+1, y, MeteorClose, c)
		dst.SetColor(x, y-1, MeteorNear, core.ColorRed)
	}
}

func (g *Game) drawShip(dst *core.Screen, pr projection) {
	x, y, _, ok := pr.project(g.world.ShipPos(g.physics))
	if !ok {
		return
	}

	left, right := ShipWingL, ShipWingR
	switch {
	case g.world.Ship.Tilt > 0.2:
		left = ShipBank
	case g.world.Ship.Tilt < -0.2:
		right = ShipBank
	}

	dst.SetColor(x-1, y, left, core.ColorBrightCyan)
	dst.SetColor(x, y, ShipNose, core.ColorBrightWhite)
	dst.SetColor(x+1, y, right, core.ColorBrightCyan)
	dst.SetColor(x, y+1, ShipExhaust, core.ColorYellow)
}
