package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saintsjh/PortfolioWebsite/internal/api"
	"github.com/saintsjh/PortfolioWebsite/internal/config"
	"github.com/saintsjh/PortfolioWebsite/internal/layout"
	"github.com/saintsjh/PortfolioWebsite/internal/lifecycle"
	"github.com/saintsjh/PortfolioWebsite/internal/physics"
	"github.com/saintsjh/PortfolioWebsite/internal/worker"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("✨ ================================")
	log.Println("✨  PORTFOLIO PHYSICS SERVER")
	log.Println("✨ ================================")

	appConfig := config.Load()
	serverCfg := appConfig.Server
	frameCfg := appConfig.Frame

	presets, err := appConfig.Physics.LoadPresets()
	if err != nil {
		log.Fatalf("Failed to load presets: %v", err)
	}
	log.Printf("📄 Presets: %v", presets.Names())

	fieldParams, err := presets.Get(physics.PresetField)
	if err != nil {
		log.Fatalf("Failed to load field preset: %v", err)
	}

	// Every view shares one measurer so glyph faces are never used
	// concurrently.
	measurer := layout.NewMeasurer(layout.LoadFonts(frameCfg.FontPath))
	viewport := layout.Viewport{
		Width:  float64(frameCfg.Width),
		Height: float64(frameCfg.Height),
	}
	newView := func() *lifecycle.Controller {
		c := lifecycle.NewController(measurer, lifecycle.Options{
			FPS:          frameCfg.FPS,
			Mode:         lifecycle.ModeCharacters,
			Params:       presets.Characters,
			HintDuration: frameCfg.HintDuration,
			Seed:         time.Now().UnixNano(),
			OnTransition: api.RecordTransition,
			OnTick:       api.RecordTick,
			OnMeasure:    api.RecordMeasure,
		})
		c.SetContent(layout.HomeContent())
		c.SetViewport(viewport)
		return c
	}

	// The REST routes drive this one; each WebSocket viewer gets its own.
	ctrl := newView()
	log.Printf("🎬 Greeting %q, %d FPS, %dx%d", ctrl.Greeting(), frameCfg.FPS, frameCfg.Width, frameCfg.Height)

	if serverCfg.DebugPort > 0 {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = fmt.Sprintf("127.0.0.1:%d", serverCfg.DebugPort)
		debugCfg.BasicAuthUser = os.Getenv("DEBUG_USER")
		debugCfg.BasicAuthPass = os.Getenv("DEBUG_PASS")
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	limits := appConfig.Limits
	server := api.NewServer(ctrl, api.ServerConfig{
		FPS: frameCfg.FPS,
		Field: worker.Options{
			Params:  fieldParams,
			Density: appConfig.Field.Density(),
			Seed:    time.Now().UnixNano(),
			Inbox:   worker.DefaultOptions().Inbox,
		},
		AllowedOrigins: serverCfg.AllowedOrigins,
		RateLimit: api.RateLimitConfig{
			RequestsPerSecond: limits.RequestsPerSecond,
			Burst:             limits.Burst,
			InputPerSecond:    limits.InputPerSecond,
		},
		MaxClients:       limits.MaxClients,
		MaxFieldSessions: limits.MaxFieldSessions,
		NewView:          func() api.View { return newView() },
	})

	ctrl.Start()
	log.Println("✅ Physics controller started")

	go func() {
		addr := fmt.Sprintf(":%d", serverCfg.Port)
		log.Printf("🌐 API server on http://localhost%s", addr)
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Printf("⚠️ Shutdown: %v", err)
	}
	ctrl.Stop()
	log.Println("👋 Goodbye!")
}
