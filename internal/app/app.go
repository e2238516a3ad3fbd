package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/term"

	"github.com/Skyy-Development/launcher-backdrop/internal/analyzer"
	"github.com/Skyy-Development/launcher-backdrop/internal/audio"
	"github.com/Skyy-Development/launcher-backdrop/internal/effects"
	"github.com/Skyy-Development/launcher-backdrop/internal/engine"
	"github.com/Skyy-Development/launcher-backdrop/internal/render"
	"github.com/Skyy-Development/launcher-backdrop/internal/web"
)

// Config configures the application runtime.
type Config struct {
	Effect  string
	Quality string
	Accent  string

	Width  int // framebuffer pixels
	Height int

	Palette string
	UseANSI bool
	UseSDL  bool

	DisableAudio  bool
	AudioDevice   string
	AudioReactive bool

	ShowStatusBar bool
	ForceAnimate  bool
	AnimationsOff bool

	ProfilePath string
	Seed        int64
	Log         *log.Logger
}

type inputEvent int

const (
	inputEventQuit inputEvent = iota
	inputEventToggleAnimations
	inputEventToggleFocus
	inputEventToggleVisible
	inputEventToggleAudio
	inputEventQualityLow
	inputEventQualityMedium
	inputEventQualityHigh
)

// callbackInterval is how often the host re-invokes the engine's frame
// callback; the engine throttles itself down to the tier target FPS.
const callbackInterval = 4 * time.Millisecond

var errQuit = errors.New("quit requested")

// App ties the engine, effect, analyzer and presentation sinks
// together and owns the external signals the engine reads.
type App struct {
	cfg        Config
	log        *log.Logger
	effectName string

	buf    *render.Buffer
	eng    *engine.Engine
	sink   *render.TermSink
	window *render.Window

	an    *analyzer.Analyzer
	mic   *audio.Mic
	react *reactive
	prof  *profiler

	mu      sync.RWMutex
	signals engine.Signals
	status  web.Status

	control     chan func()
	inputEvents chan inputEvent

	lastDrawn time.Time
	fps       float64
}

// New constructs the application using the provided configuration.
func New(cfg Config) (*App, error) {
	if cfg.Log == nil {
		cfg.Log = log.New(os.Stderr, "", log.LstdFlags)
	}
	if cfg.Width <= 0 {
		cfg.Width = 320
	}
	if cfg.Height <= 0 {
		cfg.Height = 180
	}

	tier, err := engine.ParseTier(cfg.Quality)
	if err != nil {
		return nil, err
	}
	effect, err := effects.New(cfg.Effect)
	if err != nil {
		return nil, err
	}

	buf := render.NewBuffer(cfg.Width, cfg.Height)
	eng, err := engine.New(effect, engine.Config{
		Surface: buf,
		Tier:    tier,
		Accent:  cfg.Accent,
		Seed:    cfg.Seed,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:        cfg,
		log:        cfg.Log,
		effectName: cfg.Effect,
		buf:        buf,
		eng:        eng,
		react:      &reactive{},
		prof:       newProfiler(cfg.ProfilePath, cfg.Log),
		control:    make(chan func(), 16),
		signals: engine.Signals{
			Focused: true,
			Visible: true,
			Enabled: !cfg.AnimationsOff,
			Force:   cfg.ForceAnimate,
		},
	}

	var source analyzer.Source
	if cfg.DisableAudio {
		source = newSynthSource()
		a.log.Println("audio capture disabled, using synthetic source")
	} else {
		a.mic = audio.NewMic(cfg.AudioDevice, 4096)
		source = a.mic
	}
	a.an = analyzer.New(source)
	if err := a.an.SetEnabled(true); err != nil {
		// Missing microphone is not fatal; the analyzer just reports
		// unavailable until re-enabled.
		a.log.Printf("audio analysis unavailable: %v", err)
	} else if a.mic != nil {
		a.log.Printf("audio capture started on %q @ %.0f Hz", a.mic.DeviceName(), a.mic.SampleRate())
	}

	return a, nil
}

// Run drives the frame-callback loop until context cancellation or a
// quit request.
func (a *App) Run(ctx context.Context) error {
	if a.cfg.UseSDL {
		window, err := render.NewWindow("backdrop", a.cfg.Width, a.cfg.Height)
		if err != nil {
			return err
		}
		a.window = window
		defer func() {
			_ = a.window.Close()
		}()
	} else {
		a.sink = render.NewTermSink(80, 24, a.cfg.Palette, a.cfg.UseANSI)
		a.ensureTermSize()
		enterAltScreen()
		hideCursor()
		defer func() {
			showCursor()
			exitAltScreen()
		}()
	}

	inputCtx, cancelInput := context.WithCancel(ctx)
	defer cancelInput()
	a.startInputListener(inputCtx)

	ticker := time.NewTicker(callbackInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-a.control:
			fn()
		case evt, ok := <-a.inputEvents:
			if !ok {
				a.inputEvents = nil
				continue
			}
			if err := a.handleInput(evt); err != nil {
				return nil
			}
		case <-ticker.C:
			if err := a.step(); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		}
	}
}

// Close releases held resources.
func (a *App) Close() error {
	err := a.an.Close()
	if perr := a.prof.Close(); err == nil {
		err = perr
	}
	return err
}

func (a *App) handleInput(evt inputEvent) error {
	switch evt {
	case inputEventQuit:
		return errQuit
	case inputEventToggleAnimations:
		a.mu.Lock()
		a.signals.Enabled = !a.signals.Enabled
		a.mu.Unlock()
	case inputEventToggleFocus:
		a.mu.Lock()
		a.signals.Focused = !a.signals.Focused
		a.mu.Unlock()
	case inputEventToggleVisible:
		a.mu.Lock()
		a.signals.Visible = !a.signals.Visible
		a.mu.Unlock()
	case inputEventToggleAudio:
		if err := a.an.SetEnabled(!a.an.Enabled()); err != nil {
			a.log.Printf("audio toggle: %v", err)
		}
	case inputEventQualityLow:
		a.eng.SetTier(engine.TierLow)
	case inputEventQualityMedium:
		a.eng.SetTier(engine.TierMedium)
	case inputEventQualityHigh:
		a.eng.SetTier(engine.TierHigh)
	}
	return nil
}

func (a *App) step() error {
	a.prof.beginFrame()

	if a.window != nil {
		if err := a.pollWindow(); err != nil {
			return err
		}
	} else {
		a.ensureTermSize()
	}

	a.mu.RLock()
	sig := a.signals
	a.mu.RUnlock()

	drawn := a.eng.Tick(sig)
	a.prof.mark("tick")

	var data *analyzer.Data
	if drawn {
		now := time.Now()
		delta := now.Sub(a.lastDrawn).Seconds()
		if delta > 0 && !a.lastDrawn.IsZero() {
			a.fps = 1 / delta
		}
		a.lastDrawn = now

		data = a.an.Data()
		if a.cfg.AudioReactive {
			a.eng.SetEnergy(a.react.apply(data, delta))
		}
		a.prof.mark("audio")

		if err := a.present(data); err != nil {
			return err
		}
		a.prof.mark("present")
	}

	a.updateStatus()
	a.prof.endFrame()
	return nil
}

func (a *App) pollWindow() error {
	for _, ev := range a.window.Poll() {
		switch ev.Kind {
		case render.EventQuit:
			return errQuit
		case render.EventFocusGained:
			a.setSignal(func(s *engine.Signals) { s.Focused = true })
		case render.EventFocusLost:
			a.setSignal(func(s *engine.Signals) { s.Focused = false })
		case render.EventShown:
			a.setSignal(func(s *engine.Signals) { s.Visible = true })
		case render.EventHidden:
			a.setSignal(func(s *engine.Signals) { s.Visible = false })
		case render.EventResized:
			a.eng.Resize(ev.W, ev.H)
		case render.EventPointerMoved:
			a.eng.PointerMoved(ev.X, ev.Y)
		case render.EventClick:
			a.eng.Click(ev.X, ev.Y)
		}
	}
	return nil
}

func (a *App) setSignal(mutate func(*engine.Signals)) {
	a.mu.Lock()
	mutate(&a.signals)
	a.mu.Unlock()
}

func (a *App) present(data *analyzer.Data) error {
	status := a.statusLine(data)
	if a.window != nil {
		a.window.SetTitle(status)
		return a.window.Present(a.buf)
	}
	frame := a.sink.Frame(a.buf)
	moveCursorHome()
	for _, line := range frame.Lines {
		fmt.Println(line)
	}
	if a.cfg.ShowStatusBar {
		fmt.Println(status)
	}
	return nil
}

func (a *App) statusLine(data *analyzer.Data) string {
	var bass, mid, treble, beat float64
	if data != nil {
		bass, mid, treble, beat = data.Bass, data.Mid, data.Treble, data.BeatStrength
	}
	if a.sink != nil {
		return a.sink.BuildStatus(a.effectName, a.eng.Tier().String(), a.eng.State(), a.fps, bass, mid, treble, beat)
	}
	return fmt.Sprintf("backdrop | %s quality=%s state=%s fps=%.1f", a.effectName, a.eng.Tier(), a.eng.State(), a.fps)
}

func (a *App) updateStatus() {
	a.mu.Lock()
	a.status = web.Status{
		Effect:     a.effectName,
		Quality:    a.eng.Tier().String(),
		State:      a.eng.State(),
		FPS:        a.fps,
		Animations: a.signals.Enabled,
		Audio:      a.an.Enabled(),
		Reactive:   a.cfg.AudioReactive,
	}
	a.mu.Unlock()
}

// ensureTermSize re-derives the terminal grid on resize. The
// framebuffer keeps its dimensions; only the downsampling grid moves,
// so entity state survives.
func (a *App) ensureTermSize() {
	fd := int(os.Stdout.Fd())
	if fd < 0 {
		return
	}
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return
	}
	rows := h
	if a.cfg.ShowStatusBar && rows > 1 {
		rows--
	}
	a.sink.Resize(w, rows)
}

// Status implements web.Controller.
func (a *App) Status() web.Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// SetQuality implements web.Controller; applied on the loop goroutine.
func (a *App) SetQuality(name string) error {
	tier, err := engine.ParseTier(name)
	if err != nil {
		return err
	}
	a.control <- func() { a.eng.SetTier(tier) }
	return nil
}

// SetAccent implements web.Controller.
func (a *App) SetAccent(hex string) error {
	if _, err := colorful.Hex(hex); err != nil {
		return fmt.Errorf("accent color: %w", err)
	}
	a.control <- func() { _ = a.eng.SetAccent(hex) }
	return nil
}

// SetAnimations implements web.Controller.
func (a *App) SetAnimations(enabled bool) {
	a.setSignal(func(s *engine.Signals) { s.Enabled = enabled })
}

// SetForce implements web.Controller.
func (a *App) SetForce(force bool) {
	a.setSignal(func(s *engine.Signals) { s.Force = force })
}

// SetAudioEnabled implements web.Controller. The analyzer serializes
// its own lifecycle, so this is safe from the HTTP goroutines.
func (a *App) SetAudioEnabled(enabled bool) error {
	return a.an.SetEnabled(enabled)
}

// Features implements web.Controller: a fresh snapshot for telemetry.
func (a *App) Features() *analyzer.Data {
	return a.an.Data()
}

func (a *App) startInputListener(ctx context.Context) {
	if err := keyboard.Open(); err != nil {
		a.log.Printf("keyboard input disabled: %v", err)
		a.inputEvents = nil
		return
	}

	events := make(chan inputEvent, 16)
	a.inputEvents = events

	closeOnce := &sync.Once{}
	go func() {
		<-ctx.Done()
		closeOnce.Do(func() {
			_ = keyboard.Close()
		})
	}()

	go func() {
		defer close(events)
		defer closeOnce.Do(func() {
			_ = keyboard.Close()
		})
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			var evt inputEvent
			switch {
			case key == keyboard.KeyEsc || key == keyboard.KeyCtrlC || char == 'q' || char == 'Q':
				events <- inputEventQuit
				return
			case key == keyboard.KeySpace:
				evt = inputEventToggleAnimations
			case char == 'f' || char == 'F':
				evt = inputEventToggleFocus
			case char == 'v' || char == 'V':
				evt = inputEventToggleVisible
			case char == 'a' || char == 'A':
				evt = inputEventToggleAudio
			case char == '1':
				evt = inputEventQualityLow
			case char == '2':
				evt = inputEventQualityMedium
			case char == '3':
				evt = inputEventQualityHigh
			default:
				continue
			}
			select {
			case events <- evt:
			default:
			}
		}
	}()
}

func moveCursorHome() { fmt.Print("\x1b[H") }
func hideCursor()     { fmt.Print("\x1b[?25l") }
func showCursor()     { fmt.Print("\x1b[?25h") }
func enterAltScreen() { fmt.Print("\x1b[?1049h\x1b[2J\x1b[H") }
func exitAltScreen()  { fmt.Print("\x1b[?1049l\x1b[0m") }
