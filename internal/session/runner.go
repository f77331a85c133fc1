package session

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/playmatatu/tablesim/internal/game"
)

// FrameSink receives every frame a table produces. Sinks are called on the
// table's own goroutine and must not block.
type FrameSink interface {
	PublishFrame(token string, frame *game.Frame)
}

type command struct {
	fn   func(*game.World) error
	errc chan error
}

// Runner owns one table's World. All ticks and all mutations run on the
// goroutine executing Run, so the World needs no locking.
type Runner struct {
	Token     string
	Preset    string
	CreatedAt time.Time

	world    *game.World
	interval time.Duration
	commands chan command
	sinks    []FrameSink
	events   EventPublisher

	latest       atomic.Pointer[game.Frame]
	lastActivity atomic.Int64
	done         chan struct{}
}

// NewRunner wraps world in a runner ticking tickRate times per second.
func NewRunner(token, preset string, world *game.World, tickRate int, events EventPublisher, sinks ...FrameSink) *Runner {
	if tickRate <= 0 {
		tickRate = 60
	}
	if events == nil {
		events = nopPublisher{}
	}
	r := &Runner{
		Token:     token,
		Preset:    preset,
		CreatedAt: time.Now(),
		world:     world,
		interval:  time.Second / time.Duration(tickRate),
		commands:  make(chan command),
		sinks:     sinks,
		events:    events,
		done:      make(chan struct{}),
	}
	r.latest.Store(world.Frame())
	r.touch()
	return r
}

// Run ticks the world until ctx is cancelled, applying queued commands
// between ticks.
func (r *Runner) Run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("[TABLE] %s running (preset=%s, tick=%v)", r.Token, r.Preset, r.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[TABLE] %s stopped at tick %d", r.Token, r.world.TickCount())
			return
		case cmd := <-r.commands:
			err := cmd.fn(r.world)
			r.publish()
			cmd.errc <- err
		case <-ticker.C:
			r.world.Tick()
			r.publish()
		}
	}
}

func (r *Runner) publish() {
	f := r.world.Frame()
	r.latest.Store(f)
	for _, s := range r.sinks {
		s.PublishFrame(r.Token, f)
	}
}

// Do runs fn against the world between two ticks and returns its error.
func (r *Runner) Do(ctx context.Context, fn func(*game.World) error) error {
	cmd := command{fn: fn, errc: make(chan error, 1)}
	select {
	case r.commands <- cmd:
	case <-r.done:
		return ErrRunnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Latest returns the most recent frame. It never returns nil.
func (r *Runner) Latest() *game.Frame {
	return r.latest.Load()
}

// Done is closed once Run has returned.
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

func (r *Runner) LastActivity() time.Time {
	return time.Unix(0, r.lastActivity.Load())
}

func (r *Runner) touch() {
	r.lastActivity.Store(time.Now().UnixNano())
}

// BeginCueDrag starts a cue drag at p; it reports false when p misses the cue ball.
func (r *Runner) BeginCueDrag(ctx context.Context, p game.Vec2) (bool, error) {
	r.touch()
	var started bool
	err := r.Do(ctx, func(w *game.World) error {
		started = w.BeginCueDrag(p)
		return nil
	})
	if err != nil {
		return false, err
	}
	if started {
		r.events.PublishEvent(ctx, newEvent(EventCueDragStarted, r.Token, map[string]interface{}{"x": p.X, "y": p.Y}))
	}
	return started, nil
}

// DragCueTo moves a dragged cue ball to follow p.
func (r *Runner) DragCueTo(ctx context.Context, p game.Vec2) error {
	r.touch()
	return r.Do(ctx, func(w *game.World) error {
		w.DragCueTo(p)
		return nil
	})
}

// EndCueDrag releases the cue ball.
func (r *Runner) EndCueDrag(ctx context.Context) error {
	r.touch()
	var ended bool
	err := r.Do(ctx, func(w *game.World) error {
		ended = w.Dragging()
		w.EndCueDrag()
		return nil
	})
	if err != nil {
		return err
	}
	if ended {
		r.events.PublishEvent(ctx, newEvent(EventCueDragEnded, r.Token, nil))
	}
	return nil
}

// Rack replaces the balls with a fresh rack.
func (r *Runner) Rack(ctx context.Context) error {
	r.touch()
	if err := r.Do(ctx, func(w *game.World) error { return w.SpawnRack() }); err != nil {
		return err
	}
	r.events.PublishEvent(ctx, newEvent(EventRacked, r.Token, nil))
	return nil
}

// Resize changes the table bounds.
func (r *Runner) Resize(ctx context.Context, width, height float64) error {
	r.touch()
	if err := r.Do(ctx, func(w *game.World) error { return w.SetBounds(width, height) }); err != nil {
		return err
	}
	r.events.PublishEvent(ctx, newEvent(EventResized, r.Token, map[string]interface{}{"width": width, "height": height}))
	return nil
}

// TableInfo describes a running table for listings.
type TableInfo struct {
	Token        string      `json:"token"`
	Preset       string      `json:"preset"`
	Tick         uint64      `json:"tick"`
	Bounds       game.Bounds `json:"bounds"`
	AtRest       bool        `json:"at_rest"`
	CreatedAt    time.Time   `json:"created_at"`
	LastActivity time.Time   `json:"last_activity"`
}

func (r *Runner) Info() TableInfo {
	f := r.Latest()
	return TableInfo{
		Token:        r.Token,
		Preset:       r.Preset,
		Tick:         f.Tick,
		Bounds:       f.Bounds,
		AtRest:       f.AtRest,
		CreatedAt:    r.CreatedAt,
		LastActivity: r.LastActivity(),
	}
}
