package geom

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestSimulateMovement(t *testing.T) {
	tests := map[string]struct {
		current    Point
		target     *Point
		speed      float64
		dt         float64
		expPos     Point
		expReached bool
	}{
		"nil target does not move": {
			current: Pt(5, 5),
			speed:   10,
			dt:      1,
			expPos:  Pt(5, 5),
		},
		"invalid target does not move": {
			current: Pt(5, 5),
			target:  Pt(math.NaN(), 1).Ptr(),
			speed:   10,
			dt:      1,
			expPos:  Pt(5, 5),
		},
		"within reach snaps to target": {
			current:    Pt(0, 0),
			target:     Pt(3, 4).Ptr(),
			speed:      10,
			dt:         1,
			expPos:     Pt(3, 4),
			expReached: true,
		},
		"exactly one step snaps to target": {
			current:    Pt(0, 0),
			target:     Pt(0, 10).Ptr(),
			speed:      10,
			dt:         1,
			expPos:     Pt(0, 10),
			expReached: true,
		},
		"partial step along direction": {
			current: Pt(0, 0),
			target:  Pt(30, 40).Ptr(),
			speed:   10,
			dt:      0.5,
			expPos:  Pt(3, 4),
		},
		"zero speed stays put": {
			current: Pt(0, 0),
			target:  Pt(10, 0).Ptr(),
			speed:   0,
			dt:      1,
			expPos:  Pt(0, 0),
		},
		"already on target": {
			current:    Pt(1, 1),
			target:     Pt(1, 1).Ptr(),
			speed:      0,
			dt:         1,
			expPos:     Pt(1, 1),
			expReached: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			step := SimulateMovement(tt.current, tt.target, tt.speed, tt.dt)
			testutil.AssertEqual(t, "reached", step.Reached, tt.expReached)
			if math.Abs(step.Position.X-tt.expPos.X) > 1e-9 || math.Abs(step.Position.Y-tt.expPos.Y) > 1e-9 {
				t.Errorf("position = %+v, expected %+v", step.Position, tt.expPos)
			}
		})
	}
}

func TestSimulateMovement_NeverOvershoots(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 5000; i++ {
		current := Pt(r.Float64()*1000-500, r.Float64()*1000-500)
		target := Pt(r.Float64()*1000-500, r.Float64()*1000-500)
		speed := r.Float64() * 300
		dt := r.Float64()

		step := SimulateMovement(current, &target, speed, dt)

		before := Dist(current, target)
		after := Dist(step.Position, target)
		if after > before+1e-9 {
			t.Fatalf("moved away from target: before=%f after=%f", before, after)
		}
		if before <= speed*dt {
			if step.Position != target || !step.Reached {
				t.Fatalf("expected snap to %+v, got %+v reached=%v", target, step.Position, step.Reached)
			}
		}
	}
}

func TestSimulateMovementWithCollision(t *testing.T) {
	c := Collider{EntityRadius: 5, ObstacleRadius: 5}

	tests := map[string]struct {
		obstacles  []Point
		expPos     Point
		expReached bool
	}{
		"no obstacles": {
			expPos: Pt(10, 0),
		},
		"obstacle far away": {
			obstacles: []Point{Pt(100, 100)},
			expPos:    Pt(10, 0),
		},
		"obstacle blocks destination": {
			obstacles: []Point{Pt(15, 0)},
			expPos:    Pt(0, 0),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			step := SimulateMovementWithCollision(Pt(0, 0), Pt(50, 0).Ptr(), 10, 1, tt.obstacles, c)
			testutil.AssertEqual(t, "position", step.Position, tt.expPos)
			testutil.AssertEqual(t, "reached", step.Reached, tt.expReached)
		})
	}
}
