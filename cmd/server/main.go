package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/playmatatu/tablesim/internal/api"
	"github.com/playmatatu/tablesim/internal/api/handlers"
	"github.com/playmatatu/tablesim/internal/config"
	"github.com/playmatatu/tablesim/internal/redis"
	"github.com/playmatatu/tablesim/internal/session"
	"github.com/playmatatu/tablesim/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub()
	go hub.Run(ctx)

	// Without Redis, events go straight to local rooms and there is no frame cache.
	var events session.EventPublisher = hub
	var cache handlers.FrameCache
	sinks := []session.FrameSink{hub}

	if cfg.RedisURL != "" {
		rdb, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()

		redisSink := session.NewRedisSink(rdb, time.Duration(cfg.FrameCacheSeconds)*time.Second)
		events = redisSink
		cache = redisSink
		sinks = append(sinks, redisSink)

		// Events come back through the subscriber so every instance's rooms see them.
		ws.StartEventSubscriber(ctx, rdb, hub)
		log.Printf("[REDIS] event bus and frame cache enabled")
	} else {
		log.Printf("[REDIS] REDIS_URL not set; running without event bus or frame cache")
	}

	tables := session.NewManager(ctx, cfg, events, sinks...)
	tables.StartIdleReaper(ctx, time.Minute)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, tables, ws.NewHandler(hub, tables, cfg.JWTSecret), cache, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		log.Printf("Starting table server on port %s (tick=%dHz, preset=%s)", port, cfg.TickRateHz, cfg.TablePreset)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	tables.CloseAll()
}
