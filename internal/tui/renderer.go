package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/tablesim/internal/game"
)

const (
	cushionRune = '▒'
	solidRune   = '●'
	stripeRune  = '◍'
	cueRune     = '○'
)

var (
	feltStyle   = tcell.StyleDefault.Background(tcell.NewRGBColor(12, 70, 40))
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorDarkSlateGray)
)

// Renderer draws frames onto a tcell screen.
type Renderer struct {
	screen tcell.Screen
	colors map[string]tcell.Color
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen, colors: make(map[string]tcell.Color)}
}

func (r *Renderer) color(name string) tcell.Color {
	if c, ok := r.colors[name]; ok {
		return c
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		c = tcell.ColorWhite
	}
	r.colors[name] = c
	return c
}

func ballRune(category game.Category) rune {
	switch category {
	case game.CategoryCue:
		return cueRune
	case game.CategoryStripe:
		return stripeRune
	default:
		return solidRune
	}
}

// Draw paints one frame: felt, cushions, balls, then the status line.
func (r *Renderer) Draw(view View, frame *game.Frame, status string) {
	r.screen.Clear()

	for y := 0; y < view.Rows; y++ {
		for x := 0; x < view.Cols; x++ {
			r.screen.SetContent(x, y, ' ', nil, feltStyle)
		}
	}

	for _, c := range frame.Cushions {
		style := feltStyle.Foreground(r.color(c.Color))
		x0, y0 := view.CellAt(game.NewVec2(c.X, c.Y))
		x1, y1 := view.CellAt(game.NewVec2(c.X+c.Width, c.Y+c.Height))
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if !view.InTable(x, y) {
					continue
				}
				p := view.CellCenter(x, y)
				if p.X >= c.X && p.X <= c.X+c.Width && p.Y >= c.Y && p.Y <= c.Y+c.Height {
					r.screen.SetContent(x, y, cushionRune, nil, style)
				}
			}
		}
	}

	for _, b := range frame.Balls {
		r.drawBall(view, b)
	}

	r.drawStatus(view, status)
	r.screen.Show()
}

func (r *Renderer) drawBall(view View, b game.BallState) {
	style := feltStyle.Foreground(r.color(b.Color))
	if b.Category == game.CategoryBlack {
		style = style.Background(tcell.ColorGray)
	}
	ch := ballRune(b.Category)
	center := game.NewVec2(b.X, b.Y)

	x0, y0 := view.CellAt(game.NewVec2(b.X-b.Radius, b.Y-b.Radius))
	x1, y1 := view.CellAt(game.NewVec2(b.X+b.Radius, b.Y+b.Radius))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if view.InTable(x, y) && view.CellCenter(x, y).DistanceTo(center) <= b.Radius {
				r.screen.SetContent(x, y, ch, nil, style)
			}
		}
	}

	// Small balls may not cover any cell center.
	if cx, cy := view.CellAt(center); view.InTable(cx, cy) {
		r.screen.SetContent(cx, cy, ch, nil, style)
	}
}

func (r *Renderer) drawStatus(view View, status string) {
	cols, _ := r.screen.Size()
	y := view.Rows
	for x := 0; x < cols; x++ {
		r.screen.SetContent(x, y, ' ', nil, statusStyle)
	}
	x := 0
	for _, ch := range status {
		if x >= cols {
			break
		}
		r.screen.SetContent(x, y, ch, nil, statusStyle)
		x++
	}
}

// StatusLine summarises a frame for the bottom row.
func StatusLine(frame *game.Frame) string {
	state := "rolling"
	switch {
	case frame.Dragging:
		state = "dragging cue"
	case frame.AtRest:
		state = "at rest"
	}
	return fmt.Sprintf(" tick %d | %d balls | %s | right-drag: cue  r: rack  q: quit", frame.Tick, len(frame.Balls), state)
}
