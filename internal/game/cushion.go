package game

import (
	"errors"
	"fmt"
)

var ErrInvalidCushion = errors.New("invalid cushion")

// Cushion is a static axis-aligned rectangle collider representing a table rail.
type Cushion struct {
	Position Vec2 // top-left corner
	Width    float64
	Height   float64
	Color    string
}

// NewCushion validates and returns a cushion. Degenerate rectangles are rejected.
func NewCushion(x, y, width, height float64, color string) (Cushion, error) {
	c := Cushion{Position: NewVec2(x, y), Width: width, Height: height, Color: color}
	if !c.Position.IsFinite() {
		return Cushion{}, fmt.Errorf("%w: position %v", ErrInvalidCushion, c.Position)
	}
	if !isFinite(width) || !isFinite(height) || width <= 0 || height <= 0 {
		return Cushion{}, fmt.Errorf("%w: size %vx%v", ErrInvalidCushion, width, height)
	}
	return c, nil
}

// Center returns the centre of the rectangle.
func (c Cushion) Center() Vec2 {
	return Vec2{X: c.Position.X + c.Width/2, Y: c.Position.Y + c.Height/2}
}

// CushionLayout returns the six rails for a table of the given size.
// The first pair runs along the top and bottom left halves, then the left and
// right rails, then the top and bottom right halves; the gaps between them are
// where the corner and side pockets would sit.
func CushionLayout(width, height float64) ([]Cushion, error) {
	rails := []struct{ x, y, w, h float64 }{
		{width / 17, height / 40, width / 2.4, height / 30},
		{width / 17, height - height/17, width / 2.4, height / 30},
		{width / 45, height / 9, height / 30, height - height/4.5},
		{width - width/26, height / 9, height / 30, height - height/4.5},
		{width / 1.91, height / 40, width / 2.4, height / 30},
		{width / 1.91, height - height/17, width / 2.4, height / 30},
	}

	cushions := make([]Cushion, 0, len(rails))
	for i, r := range rails {
		c, err := NewCushion(r.x, r.y, r.w, r.h, CushionColor)
		if err != nil {
			return nil, fmt.Errorf("rail %d: %w", i, err)
		}
		cushions = append(cushions, c)
	}
	return cushions, nil
}
