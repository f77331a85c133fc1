package game

import "math"

// ResolvePair resolves an impact between two overlapping balls and reports
// whether one happened. Velocities are exchanged along the line of centres with
// a 1-D elastic formula weighted by Weight and scaled by each ball's own
// Elasticity; the tangential components pass through. The pair is then pushed
// apart by half the overlap each.
func ResolvePair(a, b *Ball) bool {
	delta := a.Position.Minus(b.Position)
	distance := delta.Magnitude()
	minDist := a.Radius + b.Radius
	if distance >= minDist {
		return false
	}

	// Coincident centres have no line between them; separate along +x
	// (a to the left of b) so the angle stays defined.
	theta := math.Pi
	if distance > 0 {
		theta = delta.Angle()
	}

	aPar, aPerp := toCollisionFrame(a.Velocity, theta)
	bPar, bPerp := toCollisionFrame(b.Velocity, theta)

	total := a.Weight + b.Weight
	aOut := ((a.Weight-b.Weight)*aPar + 2*b.Weight*bPar) / total * a.Elasticity
	bOut := ((b.Weight-a.Weight)*bPar + 2*a.Weight*aPar) / total * b.Elasticity

	a.Velocity = fromCollisionFrame(aOut, aPerp, theta)
	b.Velocity = fromCollisionFrame(bOut, bPerp, theta)

	overlap := minDist - distance
	sep := 0.0
	if distance > 0 {
		sep = math.Atan2(b.Position.Y-a.Position.Y, b.Position.X-a.Position.X)
	}
	push := Vec2{X: math.Cos(sep), Y: math.Sin(sep)}.Times(overlap / 2)
	a.Position = a.Position.Minus(push)
	b.Position = b.Position.Plus(push)
	return true
}

// toCollisionFrame splits v into components parallel and perpendicular to theta.
func toCollisionFrame(v Vec2, theta float64) (parallel, perpendicular float64) {
	speed := v.Magnitude()
	dir := v.Angle()
	return speed * math.Cos(dir-theta), speed * math.Sin(dir-theta)
}

func fromCollisionFrame(parallel, perpendicular, theta float64) Vec2 {
	return Vec2{
		X: math.Cos(theta)*parallel + math.Cos(theta+math.Pi/2)*perpendicular,
		Y: math.Sin(theta)*parallel + math.Sin(theta+math.Pi/2)*perpendicular,
	}
}

// ResolveCushion sweeps the ball's next tick of travel against a cushion in
// CushionSubSteps increments and flips velocity at the earliest contact:
// dy for a top/bottom face, dx for a left/right face, both for a corner.
// It reports whether a contact was found.
//
// Unlike ReflectBounds there is no depenetration and no wall elasticity.
func ResolveCushion(b *Ball, c Cushion) bool {
	step := b.Velocity.Times(1.0 / CushionSubSteps)
	center := c.Center()
	halfW, halfH := c.Width/2, c.Height/2

	for k := 1; k <= CushionSubSteps; k++ {
		p := b.Position.Plus(step.Times(float64(k)))
		distX := math.Abs(p.X - center.X)
		distY := math.Abs(p.Y - center.Y)

		if distX > halfW+b.Radius || distY > halfH+b.Radius {
			continue
		}
		if distX <= halfW {
			b.Velocity.Y = -b.Velocity.Y
			return true
		}
		if distY <= halfH {
			b.Velocity.X = -b.Velocity.X
			return true
		}

		corner := NewVec2(distX-halfW, distY-halfH)
		if corner.MagnitudeSquared() <= b.Radius*b.Radius {
			b.Velocity.X = -b.Velocity.X
			b.Velocity.Y = -b.Velocity.Y
			return true
		}
	}
	return false
}
