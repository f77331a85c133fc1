package game

import "math"

// Bounds is the playable rectangle, anchored at the origin.
type Bounds struct {
	Width  float64 `json:"width" msgpack:"width"`
	Height float64 `json:"height" msgpack:"height"`
}

func (b Bounds) valid() bool {
	return isFinite(b.Width) && isFinite(b.Height) && b.Width > 0 && b.Height > 0
}

// Integrate advances a ball by one tick: move by the velocity, decay the velocity
// by friction, then snap components below RestThreshold to exactly zero.
func Integrate(b *Ball) {
	b.Position = b.Position.Plus(b.Velocity)
	b.Velocity = b.Velocity.Times(b.Friction)

	if math.Abs(b.Velocity.X) < RestThreshold {
		b.Velocity.X = 0
	}
	if math.Abs(b.Velocity.Y) < RestThreshold {
		b.Velocity.Y = 0
	}
}

// ReflectBounds turns a ball back inward on every axis where its edge touches or
// crosses the table edge, scaling that component by the ball's wall elasticity.
// Position is not corrected, so a fast ball may sit slightly outside for a tick.
func ReflectBounds(b *Ball, bounds Bounds) {
	if b.Position.X+b.Radius >= bounds.Width {
		b.Velocity.X = -math.Abs(b.Velocity.X) * b.WallElasticity
	}
	if b.Position.X-b.Radius <= 0 {
		b.Velocity.X = math.Abs(b.Velocity.X) * b.WallElasticity
	}
	if b.Position.Y+b.Radius >= bounds.Height {
		b.Velocity.Y = -math.Abs(b.Velocity.Y) * b.WallElasticity
	}
	if b.Position.Y-b.Radius <= 0 {
		b.Velocity.Y = math.Abs(b.Velocity.Y) * b.WallElasticity
	}
}
