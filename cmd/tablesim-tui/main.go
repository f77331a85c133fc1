package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/tablesim/internal/config"
	"github.com/playmatatu/tablesim/internal/game"
	"github.com/playmatatu/tablesim/internal/tui"
)

func main() {
	cfg := config.Load()

	preset := flag.String("preset", cfg.TablePreset, fmt.Sprintf("table preset %v", game.PresetNames()))
	rate := flag.Int("rate", cfg.TickRateHz, "ticks per second")
	logFile := flag.String("log", "", "write logs to this file")
	flag.Parse()

	// The terminal belongs to the screen, so logs go to a file or nowhere.
	log.SetOutput(io.Discard)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	app, err := tui.NewApp(screen, *preset, *rate)
	if err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "Failed to start table: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	app.Run(ctx)
	screen.Fini()
}
