package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skyy-Development/launcher-backdrop/internal/app"
	"github.com/Skyy-Development/launcher-backdrop/internal/audio"
	"github.com/Skyy-Development/launcher-backdrop/internal/web"
)

func main() {
	var (
		effect     = flag.String("effect", "starfield", "Background effect (starfield|fireflies|pulsewave)")
		quality    = flag.String("quality", "medium", "Quality tier (low|medium|high)")
		accent     = flag.String("accent", "#00ddb3", "Accent color as hex")
		width      = flag.Int("width", 320, "Framebuffer width in pixels")
		height     = flag.Int("height", 180, "Framebuffer height in pixels")
		palette    = flag.String("palette", "default", "ASCII palette (default|box|spark)")
		noColor    = flag.Bool("no-color", false, "Disable ANSI color output")
		useSDL     = flag.Bool("sdl", false, "Render to an SDL window (requires the sdl build tag)")
		noAudio    = flag.Bool("no-audio", false, "Run with synthetic audio (for testing)")
		deviceName = flag.String("audio-device", "", "Optional PortAudio device name (substring match)")
		reactive   = flag.Bool("audio-reactive", true, "Modulate effects with audio energy")
		listDevs   = flag.Bool("list-audio-devices", false, "List available audio input devices and exit")
		webAddr    = flag.String("web", "", "Control server address, e.g. 127.0.0.1:8490 (disabled when empty)")
		showStatus = flag.Bool("status", true, "Display status bar")
		force      = flag.Bool("force-animate", false, "Animate even when the background setting is off")
		noAnim     = flag.Bool("no-animations", false, "Start with background animations disabled")
		profile    = flag.String("profile", "", "Write per-frame timing CSV to this path")
		debug      = flag.Bool("debug", false, "Enable verbose logging")
		seed       = flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	)

	flag.Parse()

	if *width <= 0 || *height <= 0 {
		log.Fatalf("invalid dimensions: width=%d height=%d", *width, *height)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := log.New(os.Stderr, "[backdrop] ", log.LstdFlags)
	if !*debug {
		logger.SetFlags(0)
	}

	needAudio := !*noAudio || *listDevs
	if needAudio {
		if err := audio.Init(); err != nil {
			logger.Fatalf("failed to initialize PortAudio: %v", err)
		}
		defer audio.Terminate()
	}

	if *listDevs {
		devices, err := audio.ListDevices()
		if err != nil {
			logger.Fatalf("list devices: %v", err)
		}
		fmt.Printf("\n=== Audio Input Devices ===\n\n")
		for _, dev := range devices {
			if dev.Inputs == 0 {
				continue
			}
			marker := ""
			if dev.IsDefaultInput {
				marker = " (default)"
			}
			fmt.Printf("- %s [%s]%s\n    inputs:%d outputs:%d sample:%.0f Hz\n",
				dev.Name, dev.HostAPI, marker, dev.Inputs, dev.Outputs, dev.SampleRate)
		}
		return
	}

	a, err := app.New(app.Config{
		Effect:        *effect,
		Quality:       *quality,
		Accent:        *accent,
		Width:         *width,
		Height:        *height,
		Palette:       *palette,
		UseANSI:       !*noColor,
		UseSDL:        *useSDL,
		DisableAudio:  *noAudio,
		AudioDevice:   *deviceName,
		AudioReactive: *reactive,
		ShowStatusBar: *showStatus,
		ForceAnimate:  *force,
		AnimationsOff: *noAnim,
		ProfilePath:   *profile,
		Seed:          *seed,
		Log:           logger,
	})
	if err != nil {
		logger.Fatalf("failed to create app: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "cleanup error: %v\n", err)
		}
	}()

	if *webAddr != "" {
		server := web.NewServer(a, logger)
		server.Start(*webAddr)
		defer func() {
			_ = server.Close()
		}()
	}

	if err := a.Run(ctx); err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nExiting...")
			return
		}
		logger.Fatalf("runtime error: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
}
