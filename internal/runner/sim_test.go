package runner

import (
	"math"
	"math/rand"
	"testing"

	"github.com/vovakirdan/space-runner/internal/config"
	"github.com/vovakirdan/space-runner/internal/core"
)

// countingController records calls from the simulation.
type countingController struct {
	increments int
	endGames   int
}

func (c *countingController) IncrementScore(amount int) error {
	c.increments += amount
	return nil
}

func (c *countingController) EndGame() bool {
	c.endGames++
	return true
}

// zeroSource makes every random draw 0, so meteors spawn on the left edge.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}

func defaultPhysics() config.RunnerPhysics {
	return config.DefaultRunnerConfig().Physics
}

func TestCollides(t *testing.T) {
	ship := core.NewVec3(0, 0, 4)
	tests := []struct {
		name string
		at   core.Vec3
		want bool
	}{
		{"same point", core.NewVec3(0, 0, 4), true},
		{"just inside", core.NewVec3(1.19, 0, 4), true},
		{"exactly radius", core.NewVec3(1.2, 0, 4), false},
		{"exactly radius other side", core.NewVec3(-1.2, 0, 4), false},
		{"outside", core.NewVec3(0, 0, 2), false},
		{"diagonal inside", core.NewVec3(0.6, 0, 4.6), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Collides(ship, tt.at, 1.2); got != tt.want {
				t.Errorf("Collides(%v, %v) = %v, want %v", ship, tt.at, got, tt.want)
			}
		})
	}
}

func TestMoveClampsToBound(t *testing.T) {
	p := defaultPhysics()
	w := NewWorld(p)

	for i := 0; i < 2; i++ {
		if !w.MoveLeft(p) {
			t.Fatalf("MoveLeft #%d rejected at target %v", i+1, w.Ship.TargetX)
		}
	}
	if w.Ship.TargetX != -4 {
		t.Fatalf("TargetX = %v, want -4", w.Ship.TargetX)
	}
	for i := 0; i < 3; i++ {
		if w.MoveLeft(p) {
			t.Error("MoveLeft at the bound should be a no-op")
		}
	}
	if w.Ship.TargetX != -4 {
		t.Errorf("TargetX = %v after pushing past bound, want -4", w.Ship.TargetX)
	}

	for i := 0; i < 10; i++ {
		w.MoveRight(p)
	}
	if w.Ship.TargetX != 4 {
		t.Errorf("TargetX = %v, want 4", w.Ship.TargetX)
	}
}

func TestShipGlidesTowardTarget(t *testing.T) {
	p := defaultPhysics()
	w := NewWorld(p)
	w.MoveRight(p)
	ctl := &countingController{}
	rng := rand.New(rand.NewSource(1))

	Step(w, p, rng, ctl)
	if math.Abs(w.Ship.X-0.2) > 1e-9 {
		t.Errorf("after one tick X = %v, want 0.2", w.Ship.X)
	}
	if math.Abs(w.Ship.Tilt-(-0.9)) > 1e-9 {
		t.Errorf("Tilt = %v, want -0.9", w.Ship.Tilt)
	}

	for i := 0; i < 200; i++ {
		Step(w, p, rng, ctl)
		if w.Ship.X >= w.Ship.TargetX {
			t.Fatalf("ship reached or overshot target at tick %d", i)
		}
	}
	if w.Ship.TargetX-w.Ship.X > 0.01 {
		t.Errorf("ship did not converge: X = %v", w.Ship.X)
	}
}

func TestSpawnCadence(t *testing.T) {
	p := defaultPhysics()
	w := NewWorld(p)
	ctl := &countingController{}
	rng := rand.New(rand.NewSource(42))

	for i := 1; i <= p.SpawnInterval; i++ {
		if ev := Step(w, p, rng, ctl); ev.Spawned != nil {
			t.Fatalf("spawned early at tick %d", i)
		}
	}

	ev := Step(w, p, rng, ctl)
	if ev.Spawned == nil {
		t.Fatalf("no spawn at tick %d", p.SpawnInterval+1)
	}
	if len(w.Obstacles) != 1 {
		t.Fatalf("obstacles = %d, want 1", len(w.Obstacles))
	}
	o := w.Obstacles[0]
	if o.Pos.X < -p.LaneBound || o.Pos.X > p.LaneBound {
		t.Errorf("spawn X = %v outside [-%v, %v]", o.Pos.X, p.LaneBound, p.LaneBound)
	}
	wantSpeed := p.BaseSpeed + p.SpeedIncrement
	if w.Speed != wantSpeed {
		t.Errorf("speed = %v, want %v", w.Speed, wantSpeed)
	}
	// The new meteor moves in the tick it spawns.
	if math.Abs(o.Pos.Z-(p.SpawnDepth+wantSpeed)) > 1e-9 {
		t.Errorf("Z = %v, want %v", o.Pos.Z, p.SpawnDepth+wantSpeed)
	}
	if w.SpawnTimer != 0 {
		t.Errorf("spawn timer = %d, want 0", w.SpawnTimer)
	}
}

func TestSameSeedSameField(t *testing.T) {
	p := defaultPhysics()
	run := func() []float64 {
		w := NewWorld(p)
		rng := rand.New(rand.NewSource(7))
		ctl := &countingController{}
		var xs []float64
		for i := 0; i < 400; i++ {
			if ev := Step(w, p, rng, ctl); ev.Spawned != nil {
				xs = append(xs, ev.Spawned.Pos.X)
			}
		}
		return xs
	}

	a, b := run(), run()
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("spawn counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("spawn %d X differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestCleanupTiming(t *testing.T) {
	tests := []struct {
		speed float64
		want  int // ceil(55 / speed)
	}{
		{0.501, 110},
		{0.7, 79},
		{1.3, 43},
		{2.3, 24},
	}

	for _, tt := range tests {
		p := defaultPhysics()
		p.SpawnInterval = 1 << 20
		w := NewWorld(p)
		w.Speed = tt.speed
		// Keep the ship out of the meteor's path.
		w.Ship.X, w.Ship.TargetX = 4, 4
		w.spawn(p, -4, 0, 0)

		ctl := &countingController{}
		rng := rand.New(rand.NewSource(1))

		ticks := 0
		for ctl.increments == 0 && ticks < 1000 {
			ev := Step(w, p, rng, ctl)
			ticks++
			if ev.Cleared > 0 && len(w.Obstacles) != 0 {
				t.Errorf("speed %v: cleared meteor still live", tt.speed)
			}
		}
		if ticks != tt.want {
			t.Errorf("speed %v: cleared after %d ticks, want %d", tt.speed, ticks, tt.want)
		}
		if want := int(math.Ceil(55 / tt.speed)); ticks != want {
			t.Errorf("speed %v: ticks %d != ceil(55/v) = %d", tt.speed, ticks, want)
		}
		if ctl.increments != 1 || ctl.endGames != 0 {
			t.Errorf("speed %v: increments=%d endGames=%d", tt.speed, ctl.increments, ctl.endGames)
		}
	}
}

func TestCollisionBoundaryInStep(t *testing.T) {
	tests := []struct {
		name    string
		x       float64
		collide bool
	}{
		{"exactly at radius", 1.2, false},
		{"inside radius", 1.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultPhysics()
			p.SpawnInterval = 1 << 20
			w := NewWorld(p)
			// Moves by 0.5 onto the ship's depth this tick.
			w.Obstacles = append(w.Obstacles, Obstacle{ID: 1, Pos: core.NewVec3(tt.x, 0, 3.5)})

			ctl := &countingController{}
			ev := Step(w, p, rand.New(rand.NewSource(1)), ctl)

			if ev.Collided != tt.collide {
				t.Errorf("Collided = %v, want %v", ev.Collided, tt.collide)
			}
			wantEnd := 0
			if tt.collide {
				wantEnd = 1
			}
			if ctl.endGames != wantEnd {
				t.Errorf("EndGame calls = %d, want %d", ctl.endGames, wantEnd)
			}
		})
	}
}

func TestCollisionEndsOnceAndSkipsCleanup(t *testing.T) {
	p := defaultPhysics()
	p.SpawnInterval = 1 << 20
	w := NewWorld(p)
	w.Obstacles = append(w.Obstacles,
		Obstacle{ID: 1, Pos: core.NewVec3(0, 0, 3.5)},
		Obstacle{ID: 2, Pos: core.NewVec3(0.3, 0, 3.6)},
		Obstacle{ID: 3, Pos: core.NewVec3(-4, 0, 4.9)}, // would pass the camera
	)

	ctl := &countingController{}
	ev := Step(w, p, rand.New(rand.NewSource(1)), ctl)

	if !ev.Collided || ev.HitID != 1 {
		t.Errorf("events = %+v, want collision with meteor 1", ev)
	}
	if ctl.endGames != 1 {
		t.Errorf("EndGame calls = %d, want 1", ctl.endGames)
	}
	if ctl.increments != 0 || ev.Cleared != 0 {
		t.Errorf("cleanup ran after collision: increments=%d cleared=%d", ctl.increments, ev.Cleared)
	}
	if len(w.Obstacles) != 3 {
		t.Errorf("obstacles = %d, want 3", len(w.Obstacles))
	}
}

func TestObstaclesShareSpeedAndTumble(t *testing.T) {
	p := defaultPhysics()
	p.SpawnInterval = 1 << 20
	w := NewWorld(p)
	w.Speed = 0.75
	w.Obstacles = append(w.Obstacles,
		Obstacle{ID: 1, Pos: core.NewVec3(-4, 0, -40)},
		Obstacle{ID: 2, Pos: core.NewVec3(-4, 0, -10)},
	)

	Step(w, p, rand.New(rand.NewSource(1)), &countingController{})

	for _, o := range w.Obstacles {
		if o.RotX != TumbleX || o.RotY != TumbleY {
			t.Errorf("meteor %d rotation = (%v, %v)", o.ID, o.RotX, o.RotY)
		}
	}
	if w.Obstacles[0].Pos.Z != -39.25 || w.Obstacles[1].Pos.Z != -9.25 {
		t.Errorf("Z = %v, %v; want -39.25, -9.25", w.Obstacles[0].Pos.Z, w.Obstacles[1].Pos.Z)
	}
}

func TestWorldReset(t *testing.T) {
	p := defaultPhysics()
	w := NewWorld(p)
	w.MoveRight(p)
	rng := rand.New(rand.NewSource(3))
	ctl := &countingController{}
	for i := 0; i < 200; i++ {
		Step(w, p, rng, ctl)
	}
	w.Starfield = 0.5

	w.Reset(p)

	if len(w.Obstacles) != 0 {
		t.Errorf("obstacles = %d after reset", len(w.Obstacles))
	}
	if w.Ship != (Ship{}) {
		t.Errorf("ship = %+v after reset", w.Ship)
	}
	if w.Speed != p.BaseSpeed {
		t.Errorf("speed = %v, want %v", w.Speed, p.BaseSpeed)
	}
	if w.SpawnTimer != 0 || w.Ticks != 0 {
		t.Errorf("timer=%d ticks=%d after reset", w.SpawnTimer, w.Ticks)
	}
	if w.Starfield != 0.5 {
		t.Error("reset should not touch the starfield")
	}
}
