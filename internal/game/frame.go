package game

// BallState is a ball as seen by a renderer.
type BallState struct {
	Number   int      `json:"number" msgpack:"n"`
	Category Category `json:"category" msgpack:"c"`
	X        float64  `json:"x" msgpack:"x"`
	Y        float64  `json:"y" msgpack:"y"`
	VX       float64  `json:"vx" msgpack:"vx"`
	VY       float64  `json:"vy" msgpack:"vy"`
	Radius   float64  `json:"radius" msgpack:"r"`
	Color    string   `json:"color" msgpack:"col"`
}

// CushionState is a cushion as seen by a renderer.
type CushionState struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Width  float64 `json:"width" msgpack:"w"`
	Height float64 `json:"height" msgpack:"h"`
	Color  string  `json:"color" msgpack:"col"`
}

// Frame is an immutable snapshot of a World taken after a tick.
type Frame struct {
	Tick     uint64         `json:"tick" msgpack:"tick"`
	Bounds   Bounds         `json:"bounds" msgpack:"bounds"`
	Balls    []BallState    `json:"balls" msgpack:"balls"`
	Cushions []CushionState `json:"cushions" msgpack:"cushions"`
	Dragging bool           `json:"dragging" msgpack:"dragging"`
	AtRest   bool           `json:"at_rest" msgpack:"at_rest"`
}

// Frame snapshots the world for renderers.
func (w *World) Frame() *Frame {
	f := &Frame{
		Tick:     w.tick,
		Bounds:   w.bounds,
		Balls:    make([]BallState, len(w.balls)),
		Cushions: make([]CushionState, len(w.cushions)),
		Dragging: w.dragging,
		AtRest:   w.AtRest(),
	}
	for i, b := range w.balls {
		f.Balls[i] = BallState{
			Number:   b.Number,
			Category: b.Category,
			X:        b.Position.X,
			Y:        b.Position.Y,
			VX:       b.Velocity.X,
			VY:       b.Velocity.Y,
			Radius:   b.Radius,
			Color:    b.Color,
		}
	}
	for i, c := range w.cushions {
		f.Cushions[i] = CushionState{
			X:      c.Position.X,
			Y:      c.Position.Y,
			Width:  c.Width,
			Height: c.Height,
			Color:  c.Color,
		}
	}
	return f
}
