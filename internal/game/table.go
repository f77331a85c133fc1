package game

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInvalidBounds = errors.New("invalid table bounds")
	ErrUnknownPreset = errors.New("unknown table preset")
)

// TableConfig describes one table variant: its size, ball size, opening cue
// velocity and whether rails are laid out.
type TableConfig struct {
	Bounds      Bounds
	BallRadius  float64
	CueVelocity Vec2
	Cushions    bool
}

// Validate checks the configuration before a World is built from it.
func (c TableConfig) Validate() error {
	if !c.Bounds.valid() {
		return fmt.Errorf("%w: %vx%v", ErrInvalidBounds, c.Bounds.Width, c.Bounds.Height)
	}
	if !isFinite(c.BallRadius) || c.BallRadius <= 0 {
		return fmt.Errorf("%w: radius %v", ErrInvalidBall, c.BallRadius)
	}
	if !c.CueVelocity.IsFinite() {
		return fmt.Errorf("%w: cue velocity %v", ErrInvalidBall, c.CueVelocity)
	}
	return nil
}

type preset struct {
	radius   float64
	cue      Vec2
	cushions bool
}

var presets = map[string]preset{
	// Railed table, cue ball fired into the rack on the first tick.
	"standard": {radius: DefaultBallRadius, cue: NewVec2(130, 10), cushions: true},
	// Same break with no rails; only the table edge stops the balls.
	"open": {radius: DefaultBallRadius, cue: NewVec2(130, 10), cushions: false},
	// Bigger balls and a softer break.
	"large": {radius: 20, cue: NewVec2(60, 4), cushions: true},
	// Nothing moves until the cue ball is dragged.
	"practice": {radius: DefaultBallRadius, cue: Vec2{}, cushions: true},
}

// DefaultPreset is used when no preset name is given.
const DefaultPreset = "standard"

// PresetConfig returns the named table variant sized to width x height.
func PresetConfig(name string, width, height float64) (TableConfig, error) {
	if name == "" {
		name = DefaultPreset
	}
	p, ok := presets[name]
	if !ok {
		return TableConfig{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	cfg := TableConfig{
		Bounds:      Bounds{Width: width, Height: height},
		BallRadius:  p.radius,
		CueVelocity: p.cue,
		Cushions:    p.cushions,
	}
	if err := cfg.Validate(); err != nil {
		return TableConfig{}, err
	}
	return cfg, nil
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rack returns the cue ball followed by the 15 object balls in a five-row
// triangle. The layout is a pure function of the config.
func Rack(cfg TableConfig) ([]*Ball, error) {
	w, h := cfg.Bounds.Width, cfg.Bounds.Height
	r := cfg.BallRadius

	balls := make([]*Ball, 0, NumBalls)
	cue, err := NewBall(CategoryCue, 0, NewVec2(w/6, h/2), cfg.CueVelocity, r, CueColor)
	if err != nil {
		return nil, fmt.Errorf("cue ball: %w", err)
	}
	balls = append(balls, cue)

	rackX, rackY := w/1.5, h/2
	number := 1
	for row := 0; row < RackRows; row++ {
		for col := 0; col <= row; col++ {
			// r/4 per row pulls the rows together slightly.
			x := rackX + float64(row)*(r*2+RackPadding-r/4)
			y := rackY + float64(col)*(r*2+RackPadding) - (float64(row)*r + float64(row)*RackPadding)

			category, color := categoryForNumber(number)
			b, err := NewBall(category, number, NewVec2(x, y), Vec2{}, r, color)
			if err != nil {
				return nil, fmt.Errorf("ball %d: %w", number, err)
			}
			balls = append(balls, b)
			number++
		}
	}
	return balls, nil
}
