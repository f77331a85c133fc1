package tui

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/tablesim/internal/game"
)

// App runs a table locally in the terminal.
type App struct {
	screen     tcell.Screen
	world      *game.World
	controller *Controller
	renderer   *Renderer
	interval   time.Duration
}

// NewApp sizes a table of the given preset to an initialised screen.
func NewApp(screen tcell.Screen, preset string, tickRate int) (*App, error) {
	if tickRate <= 0 {
		tickRate = 60
	}
	cols, rows := screen.Size()
	view := ViewForScreen(cols, rows)
	b := view.Bounds()

	cfg, err := game.PresetConfig(preset, b.Width, b.Height)
	if err != nil {
		return nil, err
	}
	world, err := game.NewWorld(cfg)
	if err != nil {
		return nil, fmt.Errorf("new world for %dx%d terminal: %w", cols, rows, err)
	}

	screen.EnableMouse()
	return &App{
		screen:     screen,
		world:      world,
		controller: NewController(world, view),
		renderer:   NewRenderer(screen),
		interval:   time.Second / time.Duration(tickRate),
	}, nil
}

// World exposes the simulated table.
func (a *App) World() *game.World {
	return a.world
}

// Step advances one tick and redraws.
func (a *App) Step() {
	a.world.Tick()
	a.Draw()
}

func (a *App) Draw() {
	f := a.world.Frame()
	a.renderer.Draw(a.controller.View(), f, StatusLine(f))
}

// HandleEvent applies one terminal event and reports whether to quit.
func (a *App) HandleEvent(ev tcell.Event) bool {
	quit := a.controller.HandleEvent(ev)
	if _, ok := ev.(*tcell.EventResize); ok {
		a.screen.Sync()
	}
	return quit
}

// Run ticks and draws until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				// Screen finalized
				close(eventChan)
				return
			}
			eventChan <- ev
		}
	}()

	log.Printf("[TUI] running at %v per tick", a.interval)
	a.Draw()
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-eventChan:
			if !ok || a.HandleEvent(ev) {
				return
			}

		case <-ticker.C:
			a.Step()
		}
	}
}
