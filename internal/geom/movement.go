package geom

import "math"

// Epsilon is the distance under which a mover is considered on its target.
const Epsilon = 0.01

// Step is the outcome of a single movement integration.
type Step struct {
	Position Point
	Reached  bool
}

// SimulateMovement advances current toward target by speed*dt without
// overshooting. A nil or invalid target yields no movement.
func SimulateMovement(current Point, target *Point, speed, dt float64) Step {
	if target == nil || !target.Valid() {
		return Step{Position: current}
	}

	dist := Dist(current, *target)
	travel := speed * dt
	if dist <= Epsilon || dist <= travel {
		return Step{Position: *target, Reached: true}
	}
	if travel <= 0 {
		return Step{Position: current}
	}

	ratio := travel / dist
	return Step{
		Position: Point{
			X: current.X + (target.X-current.X)*ratio,
			Y: current.Y + (target.Y-current.Y)*ratio,
		},
	}
}

// Collider describes the radii used when testing a move against obstacles.
type Collider struct {
	EntityRadius   float64
	ObstacleRadius float64
}

// SimulateMovementWithCollision behaves like SimulateMovement but rejects the
// step when the destination overlaps any obstacle, leaving the mover in place.
func SimulateMovementWithCollision(current Point, target *Point, speed, dt float64, obstacles []Point, c Collider) Step {
	step := SimulateMovement(current, target, speed, dt)
	if step.Position == current {
		return step
	}

	minDist := c.EntityRadius + c.ObstacleRadius
	minDistSq := minDist * minDist
	for _, o := range obstacles {
		if DistSq(step.Position, o) < minDistSq {
			return Step{Position: current}
		}
	}
	return step
}

// Away returns the unit vector pointing from "from" to "to". Coincident points
// yield a zero vector.
func Away(from, to Point) (float64, float64) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return 0, 0
	}
	return dx / l, dy / l
}
