package game

import (
	"errors"
	"math"
	"testing"
)

func newStandardWorld(t *testing.T, preset string) *World {
	t.Helper()
	cfg, err := PresetConfig(preset, 1200, 700)
	if err != nil {
		t.Fatalf("PresetConfig: %v", err)
	}
	w, err := NewWorld(cfg)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func TestRackLayout(t *testing.T) {
	w := newStandardWorld(t, "standard")
	balls := w.Balls()

	if len(balls) != NumBalls {
		t.Fatalf("rack has %d balls, want %d", len(balls), NumBalls)
	}

	cue := balls[0]
	if cue.Category != CategoryCue || cue.Number != 0 {
		t.Errorf("ball 0 = %s #%d, want the cue ball", cue.Category, cue.Number)
	}
	if cue.Position != NewVec2(200, 350) {
		t.Errorf("cue position = %v, want (200, 350)", cue.Position)
	}
	if cue.Velocity != NewVec2(130, 10) {
		t.Errorf("cue velocity = %v, want (130, 10)", cue.Velocity)
	}

	cues := 0
	for i, b := range balls {
		if b.Category == CategoryCue {
			cues++
		}
		if i == 0 {
			continue
		}
		if b.Number != i {
			t.Errorf("ball at index %d numbered %d", i, b.Number)
		}
		switch {
		case b.Number <= 7:
			if b.Category != CategorySolid || b.Color != Palette[b.Number-1] {
				t.Errorf("ball %d = %s %s, want solid %s", b.Number, b.Category, b.Color, Palette[b.Number-1])
			}
		case b.Number == 8:
			if b.Category != CategoryBlack || b.Color != BlackColor {
				t.Errorf("ball 8 = %s %s, want black", b.Category, b.Color)
			}
		default:
			if b.Category != CategoryStripe || b.Color != Palette[b.Number-9] {
				t.Errorf("ball %d = %s %s, want stripe %s", b.Number, b.Category, b.Color, Palette[b.Number-9])
			}
		}
		if !b.Velocity.IsZero() {
			t.Errorf("object ball %d starts moving: %v", b.Number, b.Velocity)
		}
	}
	if cues != 1 {
		t.Errorf("found %d cue balls, want exactly 1", cues)
	}

	rackX, rackY := 1200/1.5, 350.0
	apex := balls[1].Position
	if !near(apex.X, rackX) || !near(apex.Y, rackY) {
		t.Errorf("apex = %v, want (%v, %v)", apex, rackX, rackY)
	}
	// Row 4, column 4: x = rackX + 4*(32+1-4), y = rackY + 4*33 - (4*16+4*1).
	last := balls[15].Position
	if !near(last.X, rackX+116) || !near(last.Y, rackY+64) {
		t.Errorf("ball 15 = %v, want (%v, %v)", last, rackX+116, rackY+64)
	}
	// Row 2 starts at ball 4: y = rackY - 2*17.
	if p := balls[4].Position; !near(p.X, rackX+58) || !near(p.Y, rackY-34) {
		t.Errorf("ball 4 = %v, want (%v, %v)", p, rackX+58, rackY-34)
	}
}

func TestRackIsDeterministic(t *testing.T) {
	w := newStandardWorld(t, "standard")
	first := w.Balls()

	for i := 0; i < 50; i++ {
		w.Tick()
	}
	if err := w.SpawnRack(); err != nil {
		t.Fatalf("SpawnRack: %v", err)
	}
	second := w.Balls()

	if len(first) != len(second) {
		t.Fatalf("rack sizes differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		a, b := first[i], second[i]
		if a.Position != b.Position || a.Number != b.Number || a.Category != b.Category {
			t.Errorf("ball %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestRackFollowsResizedBounds(t *testing.T) {
	w := newStandardWorld(t, "standard")
	if err := w.SetBounds(600, 400); err != nil {
		t.Fatalf("SetBounds: %v", err)
	}
	if err := w.SpawnRack(); err != nil {
		t.Fatalf("SpawnRack: %v", err)
	}
	if cue := w.Balls()[0]; cue.Position != NewVec2(100, 200) {
		t.Errorf("cue position = %v, want (100, 200)", cue.Position)
	}
	if got := len(w.Cushions()); got != 6 {
		t.Errorf("resize changed the cushion count to %d", got)
	}
}

func TestPresetVariants(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			w := newStandardWorld(t, name)
			p := presets[name]
			wantCushions := 0
			if p.cushions {
				wantCushions = 6
			}
			if got := len(w.Cushions()); got != wantCushions {
				t.Errorf("cushions = %d, want %d", got, wantCushions)
			}
			for _, b := range w.Balls() {
				if b.Radius != p.radius {
					t.Errorf("ball %d radius = %v, want %v", b.Number, b.Radius, p.radius)
				}
			}
		})
	}

	if _, err := PresetConfig("snooker", 800, 600); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("unknown preset error = %v, want ErrUnknownPreset", err)
	}
	if _, err := PresetConfig("", 800, 600); err != nil {
		t.Errorf("empty preset name should use the default: %v", err)
	}
}

func TestCueDragLifecycle(t *testing.T) {
	w := newStandardWorld(t, "practice")
	cue := w.balls[0]
	start := cue.Position

	if w.BeginCueDrag(start.Plus(NewVec2(17, 0))) {
		t.Fatal("drag started outside the cue ball")
	}
	if !w.BeginCueDrag(start.Plus(NewVec2(16, 0))) {
		t.Fatal("drag did not start on the cue ball's edge")
	}
	if !near(cue.Radius, 16*DragScale) {
		t.Errorf("dragged radius = %v, want %v", cue.Radius, 16*DragScale)
	}
	if w.BeginCueDrag(start) {
		t.Error("second BeginCueDrag should not start a nested drag")
	}

	w.DragCueTo(start.Plus(NewVec2(26, 5)))
	w.DragCueTo(start.Plus(NewVec2(36, -5)))
	if want := start.Plus(NewVec2(20, -5)); !near(cue.Position.X, want.X) || !near(cue.Position.Y, want.Y) {
		t.Errorf("cue position = %v, want %v", cue.Position, want)
	}

	w.EndCueDrag()
	if !near(cue.Radius, 16) {
		t.Errorf("radius after drag = %v, want 16", cue.Radius)
	}
	if w.Dragging() {
		t.Error("still dragging after EndCueDrag")
	}

	before := cue.Position
	w.DragCueTo(before.Plus(NewVec2(100, 100)))
	w.EndCueDrag()
	if cue.Position != before || !near(cue.Radius, 16) {
		t.Error("drag operations outside a drag changed the cue ball")
	}
}

func TestDragSuppressesCueCollisions(t *testing.T) {
	w := newStandardWorld(t, "practice")
	cue := w.balls[0]
	target := w.balls[1]

	grab := cue.Position
	if !w.BeginCueDrag(grab) {
		t.Fatal("BeginCueDrag failed at the cue centre")
	}
	// Drop the cue ball just beside ball 1 so the two overlap.
	w.DragCueTo(grab.Plus(target.Position.Minus(cue.Position)).Plus(NewVec2(-5, 0)))
	if d := cue.Position.DistanceTo(target.Position); d >= cue.Radius+target.Radius {
		t.Fatalf("test setup: balls do not overlap (distance %v)", d)
	}

	targetPos := target.Position
	for i := 0; i < 5; i++ {
		report := w.Tick()
		if report.PairContacts != 0 {
			t.Fatalf("tick %d: %d pair contacts while dragging", i, report.PairContacts)
		}
	}
	if !cue.Velocity.IsZero() || !target.Velocity.IsZero() {
		t.Errorf("velocities changed while dragging: cue %v, target %v", cue.Velocity, target.Velocity)
	}
	if target.Position != targetPos {
		t.Errorf("target pushed to %v while dragging", target.Position)
	}

	w.EndCueDrag()
	cuePos := cue.Position
	report := w.Tick()
	if report.PairContacts == 0 {
		t.Error("pair checks did not resume after the drag ended")
	}
	if cue.Position == cuePos {
		t.Error("overlapping cue ball was not pushed clear after the drag ended")
	}
}

func TestSpawnRackEndsDrag(t *testing.T) {
	w := newStandardWorld(t, "practice")
	if !w.BeginCueDrag(w.balls[0].Position) {
		t.Fatal("BeginCueDrag failed")
	}
	if err := w.SpawnRack(); err != nil {
		t.Fatalf("SpawnRack: %v", err)
	}
	if w.Dragging() {
		t.Error("drag survived a re-rack")
	}
	if r := w.balls[0].Radius; r != DefaultBallRadius {
		t.Errorf("new cue radius = %v, want %v", r, DefaultBallRadius)
	}
}

func TestBreakRunsToRest(t *testing.T) {
	run := func() ([]Ball, int) {
		w := newStandardWorld(t, "standard")
		cushionHits := 0
		for i := 0; i < 6000; i++ {
			report := w.Tick()
			cushionHits += report.CushionContacts
		}
		if !w.AtRest() {
			t.Errorf("table not at rest after 6000 ticks")
		}
		return w.Balls(), cushionHits
	}

	first, hits := run()
	if hits == 0 {
		t.Error("break never touched a cushion")
	}
	for _, b := range first {
		if !b.Position.IsFinite() || !b.Velocity.IsFinite() {
			t.Fatalf("ball %d has non-finite state: %+v", b.Number, b)
		}
	}

	second, _ := run()
	for i := range first {
		if first[i].Position != second[i].Position {
			t.Errorf("non-deterministic: ball %d run1=%v run2=%v", i, first[i].Position, second[i].Position)
		}
	}
}

func TestInvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  TableConfig
		want error
	}{
		{"zero width", TableConfig{Bounds: Bounds{0, 600}, BallRadius: 16}, ErrInvalidBounds},
		{"negative height", TableConfig{Bounds: Bounds{800, -1}, BallRadius: 16}, ErrInvalidBounds},
		{"nan bounds", TableConfig{Bounds: Bounds{math.NaN(), 600}, BallRadius: 16}, ErrInvalidBounds},
		{"zero radius", TableConfig{Bounds: Bounds{800, 600}}, ErrInvalidBall},
		{"infinite cue velocity", TableConfig{Bounds: Bounds{800, 600}, BallRadius: 16, CueVelocity: NewVec2(math.Inf(1), 0)}, ErrInvalidBall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWorld(tt.cfg); !errors.Is(err, tt.want) {
				t.Errorf("NewWorld error = %v, want %v", err, tt.want)
			}
		})
	}

	w := newStandardWorld(t, "standard")
	if err := w.SetBounds(-5, 100); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("SetBounds error = %v, want ErrInvalidBounds", err)
	}
	if b := w.Bounds(); b.Width != 1200 || b.Height != 700 {
		t.Errorf("rejected resize changed bounds to %v", b)
	}
}

func TestInvalidEntities(t *testing.T) {
	if _, err := NewBall(CategorySolid, 1, Vec2{}, Vec2{}, -1, "red"); !errors.Is(err, ErrInvalidBall) {
		t.Errorf("negative radius error = %v", err)
	}
	if _, err := NewBall(CategoryCue, 3, Vec2{}, Vec2{}, 16, "white"); !errors.Is(err, ErrInvalidBall) {
		t.Errorf("numbered cue ball error = %v", err)
	}

	b := testBall(t, 0, 0, 0, 0, 16)
	for _, mutate := range []func(*Ball){
		func(b *Ball) { b.Elasticity = 0 },
		func(b *Ball) { b.Friction = 1.5 },
		func(b *Ball) { b.WallElasticity = math.NaN() },
		func(b *Ball) { b.Weight = 0 },
	} {
		c := *b
		mutate(&c)
		if err := c.Validate(); !errors.Is(err, ErrInvalidBall) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidBall", c, err)
		}
	}

	if _, err := NewCushion(0, 0, 0, 10, CushionColor); !errors.Is(err, ErrInvalidCushion) {
		t.Errorf("zero-width cushion error = %v", err)
	}
	if _, err := NewCushion(0, 0, 10, math.Inf(1), CushionColor); !errors.Is(err, ErrInvalidCushion) {
		t.Errorf("infinite cushion error = %v", err)
	}
}

func TestFrameSnapshot(t *testing.T) {
	w := newStandardWorld(t, "standard")
	w.Tick()
	f := w.Frame()

	if f.Tick != 1 {
		t.Errorf("frame tick = %d, want 1", f.Tick)
	}
	if len(f.Balls) != NumBalls || len(f.Cushions) != 6 {
		t.Errorf("frame has %d balls and %d cushions", len(f.Balls), len(f.Cushions))
	}
	if f.AtRest {
		t.Error("frame reports rest during the break")
	}

	f.Balls[0].X = -1000
	if w.balls[0].Position.X == -1000 {
		t.Error("mutating a frame changed the world")
	}
}
