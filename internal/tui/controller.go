package tui

import (
	"log"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/tablesim/internal/game"
)

// Controller turns terminal input into World operations. The right mouse
// button drags the cue ball.
type Controller struct {
	world   *game.World
	view    View
	buttons tcell.ButtonMask
	// grab is the offset from the pressed cell's centre to the point that
	// started the drag. Later pointer positions keep the same offset.
	grab game.Vec2
}

func NewController(world *game.World, view View) *Controller {
	return &Controller{world: world, view: view}
}

func (c *Controller) View() View {
	return c.view
}

// HandleEvent applies ev and reports whether the user asked to quit.
func (c *Controller) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return c.Key(ev.Key(), ev.Rune())
	case *tcell.EventMouse:
		x, y := ev.Position()
		c.Mouse(x, y, ev.Buttons())
	case *tcell.EventResize:
		cols, rows := ev.Size()
		c.Resize(cols, rows)
	}
	return false
}

// Key handles a key press. It returns true for quit keys.
func (c *Controller) Key(key tcell.Key, ch rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		switch ch {
		case 'q', 'Q':
			return true
		case 'r', 'R':
			if err := c.world.SpawnRack(); err != nil {
				log.Printf("[TUI] rack failed: %v", err)
			}
		}
	}
	return false
}

// Mouse tracks the right button: press begins a drag, motion while held
// moves the cue, release ends it. A cell covers more table than the cue ball
// does, so a press grabs at the point of the cell nearest the cue ball.
func (c *Controller) Mouse(x, y int, buttons tcell.ButtonMask) {
	held := buttons&tcell.Button2 != 0
	wasHeld := c.buttons&tcell.Button2 != 0
	c.buttons = buttons

	center := c.view.CellCenter(x, y)
	switch {
	case held && !wasHeld:
		p := center
		if cue, ok := c.cuePosition(); ok {
			p = c.view.ClosestInCell(x, y, cue)
		}
		if c.world.BeginCueDrag(p) {
			c.grab = p.Minus(center)
		}
	case held && wasHeld:
		c.world.DragCueTo(center.Plus(c.grab))
	case !held && wasHeld:
		c.world.EndCueDrag()
		c.grab = game.Vec2{}
	}
}

func (c *Controller) cuePosition() (game.Vec2, bool) {
	for _, b := range c.world.Balls() {
		if b.IsCue() {
			return b.Position, true
		}
	}
	return game.Vec2{}, false
}

// Resize refits the table to a cols x rows terminal. Balls keep their
// positions and are pulled back inside by the following ticks.
func (c *Controller) Resize(cols, rows int) {
	view := ViewForScreen(cols, rows)
	if view == c.view {
		return
	}
	b := view.Bounds()
	if err := c.world.SetBounds(b.Width, b.Height); err != nil {
		log.Printf("[TUI] resize to %dx%d failed: %v", cols, rows, err)
		return
	}
	c.view = view
}
