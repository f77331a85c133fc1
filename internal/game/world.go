package game

import "fmt"

// World owns one table's balls, cushions and bounds and advances them one tick
// at a time. It is not safe for concurrent use: ticks and the cue drag, rack
// and resize operations must all run on the same goroutine.
type World struct {
	cfg      TableConfig
	bounds   Bounds
	balls    []*Ball
	cushions []Cushion
	tick     uint64

	dragging bool
	dragFrom Vec2
}

// TickReport summarises the contacts resolved during one tick.
type TickReport struct {
	Tick            uint64
	CushionContacts int
	PairContacts    int
}

// NewWorld lays out the cushions for cfg and spawns the opening rack.
func NewWorld(cfg TableConfig) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{cfg: cfg, bounds: cfg.Bounds}
	if cfg.Cushions {
		cushions, err := CushionLayout(cfg.Bounds.Width, cfg.Bounds.Height)
		if err != nil {
			return nil, fmt.Errorf("cushion layout: %w", err)
		}
		w.cushions = cushions
	}
	if err := w.SpawnRack(); err != nil {
		return nil, err
	}
	return w, nil
}

// Tick runs one simulation step: integrate and reflect every ball off the
// table edge, sweep every ball against every cushion, then resolve every
// unordered ball pair. Pairs involving the cue ball are skipped while it is
// being dragged.
func (w *World) Tick() TickReport {
	var report TickReport

	for _, b := range w.balls {
		Integrate(b)
		ReflectBounds(b, w.bounds)
	}

	for _, b := range w.balls {
		for _, c := range w.cushions {
			if ResolveCushion(b, c) {
				report.CushionContacts++
			}
		}
	}

	for i := 0; i < len(w.balls); i++ {
		for j := i + 1; j < len(w.balls); j++ {
			a, b := w.balls[i], w.balls[j]
			if w.dragging && (a.IsCue() || b.IsCue()) {
				continue
			}
			if ResolvePair(a, b) {
				report.PairContacts++
			}
		}
	}

	w.tick++
	report.Tick = w.tick
	return report
}

// SpawnRack replaces every ball with a fresh rack for the current bounds.
// Any drag in progress ends, since the dragged ball is gone.
func (w *World) SpawnRack() error {
	cfg := w.cfg
	cfg.Bounds = w.bounds
	balls, err := Rack(cfg)
	if err != nil {
		return fmt.Errorf("spawn rack: %w", err)
	}
	w.balls = balls
	w.dragging = false
	return nil
}

// SetBounds resizes the playable area. Cushions keep the layout they were
// given when the table was set up.
func (w *World) SetBounds(width, height float64) error {
	b := Bounds{Width: width, Height: height}
	if !b.valid() {
		return fmt.Errorf("%w: %vx%v", ErrInvalidBounds, width, height)
	}
	w.bounds = b
	return nil
}

func (w *World) Bounds() Bounds {
	return w.bounds
}

func (w *World) TickCount() uint64 {
	return w.tick
}

func (w *World) Dragging() bool {
	return w.dragging
}

// Balls returns copies of the balls in spawn order; index 0 is the cue ball.
func (w *World) Balls() []Ball {
	out := make([]Ball, len(w.balls))
	for i, b := range w.balls {
		out[i] = *b
	}
	return out
}

func (w *World) Cushions() []Cushion {
	out := make([]Cushion, len(w.cushions))
	copy(out, w.cushions)
	return out
}

// AtRest reports whether every ball has zero velocity.
func (w *World) AtRest() bool {
	for _, b := range w.balls {
		if !b.Velocity.IsZero() {
			return false
		}
	}
	return true
}

// cueBall finds the cue ball by category. The spawner keeps it at index 0, so
// the scan normally stops at the first element.
func (w *World) cueBall() *Ball {
	for _, b := range w.balls {
		if b.IsCue() {
			return b
		}
	}
	return nil
}

// BeginCueDrag starts a drag if p lies within the cue ball. While dragging,
// the cue ball is drawn 1.2x larger and takes no part in pair collisions.
func (w *World) BeginCueDrag(p Vec2) bool {
	cue := w.cueBall()
	if cue == nil || w.dragging || !p.IsFinite() || !cue.Contains(p) {
		return false
	}
	w.dragging = true
	w.dragFrom = p
	cue.Radius *= DragScale
	return true
}

// DragCueTo moves the cue ball by the pointer's movement since the last drag point.
func (w *World) DragCueTo(p Vec2) {
	cue := w.cueBall()
	if !w.dragging || cue == nil || !p.IsFinite() {
		return
	}
	cue.Position = cue.Position.Plus(p.Minus(w.dragFrom))
	w.dragFrom = p
}

// EndCueDrag restores the cue ball's radius and resumes its pair collisions.
func (w *World) EndCueDrag() {
	if !w.dragging {
		return
	}
	if cue := w.cueBall(); cue != nil {
		cue.Radius /= DragScale
	}
	w.dragging = false
}
