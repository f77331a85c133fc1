package game

import (
	"errors"
	"fmt"
)

var ErrInvalidBall = errors.New("invalid ball")

// Category classifies a ball. It is fixed at spawn time.
type Category string

const (
	CategoryCue    Category = "CUE"
	CategorySolid  Category = "SOLID"
	CategoryStripe Category = "STRIPE"
	CategoryBlack  Category = "BLACK"
)

// Ball is a single billiard ball's physical state.
type Ball struct {
	Position       Vec2
	Velocity       Vec2
	Radius         float64
	Elasticity     float64 // restitution against other balls
	Friction       float64 // per-tick velocity multiplier
	WallElasticity float64 // restitution against the table edge
	Weight         float64
	Category       Category
	Number         int
	Color          string
}

// NewBall creates a ball with the default physical constants and validates it.
func NewBall(category Category, number int, position, velocity Vec2, radius float64, color string) (*Ball, error) {
	b := &Ball{
		Position:       position,
		Velocity:       velocity,
		Radius:         radius,
		Elasticity:     DefaultElasticity,
		Friction:       DefaultFriction,
		WallElasticity: DefaultWallElasticity,
		Weight:         DefaultWeight,
		Category:       category,
		Number:         number,
		Color:          color,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate rejects geometry and constants that would put NaN into the simulation.
func (b *Ball) Validate() error {
	switch {
	case !isFinite(b.Radius) || b.Radius <= 0:
		return fmt.Errorf("%w: radius %v", ErrInvalidBall, b.Radius)
	case !b.Position.IsFinite():
		return fmt.Errorf("%w: position %v", ErrInvalidBall, b.Position)
	case !b.Velocity.IsFinite():
		return fmt.Errorf("%w: velocity %v", ErrInvalidBall, b.Velocity)
	case !unitInterval(b.Elasticity):
		return fmt.Errorf("%w: elasticity %v", ErrInvalidBall, b.Elasticity)
	case !unitInterval(b.Friction):
		return fmt.Errorf("%w: friction %v", ErrInvalidBall, b.Friction)
	case !unitInterval(b.WallElasticity):
		return fmt.Errorf("%w: wall elasticity %v", ErrInvalidBall, b.WallElasticity)
	case !isFinite(b.Weight) || b.Weight <= 0:
		return fmt.Errorf("%w: weight %v", ErrInvalidBall, b.Weight)
	}
	if b.Category == CategoryCue && b.Number != 0 {
		return fmt.Errorf("%w: cue ball numbered %d", ErrInvalidBall, b.Number)
	}
	return nil
}

// IsCue reports whether b is the cue ball.
func (b *Ball) IsCue() bool {
	return b.Category == CategoryCue
}

// Contains reports whether p lies within the ball (boundary inclusive).
func (b *Ball) Contains(p Vec2) bool {
	return b.Position.DistanceTo(p) <= b.Radius
}

// unitInterval reports whether f lies in (0, 1].
func unitInterval(f float64) bool {
	return isFinite(f) && f > 0 && f <= 1
}

// categoryForNumber returns the category and colour for a racked ball number.
func categoryForNumber(number int) (Category, string) {
	switch {
	case number == 0:
		return CategoryCue, CueColor
	case number == 8:
		return CategoryBlack, BlackColor
	case number <= 7:
		return CategorySolid, Palette[number-1]
	default:
		return CategoryStripe, Palette[number-9]
	}
}
