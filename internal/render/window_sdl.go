//go:build sdl

package render

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// Window is an SDL2 presentation sink. The framebuffer is uploaded to a
// streaming texture each frame; window events are translated into
// engine signal events (focus, visibility, pointer).
type Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	w, h     int
}

// NewWindow opens an SDL window sized to the framebuffer.
func NewWindow(title string, w, h int) (*Window, error) {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}
	win, err := sdl.CreateWindow(
		title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		int32(w), int32(h),
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("sdl window: %w", err)
	}
	renderer, err := sdl.CreateRenderer(win, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		_ = win.Destroy()
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("sdl renderer: %w", err)
	}
	return &Window{window: win, renderer: renderer, w: w, h: h}, nil
}

func (wn *Window) ensureTexture(w, h int) error {
	if wn.texture != nil && wn.w == w && wn.h == h {
		return nil
	}
	if wn.texture != nil {
		_ = wn.texture.Destroy()
		wn.texture = nil
	}
	tex, err := wn.renderer.CreateTexture(
		sdl.PIXELFORMAT_ABGR8888,
		sdl.TEXTUREACCESS_STREAMING,
		int32(w), int32(h),
	)
	if err != nil {
		return err
	}
	wn.texture = tex
	wn.w, wn.h = w, h
	return nil
}

// Present uploads the buffer and flips the window.
func (wn *Window) Present(buf *Buffer) error {
	w, h := buf.Size()
	if err := wn.ensureTexture(w, h); err != nil {
		return err
	}
	if err := wn.texture.Update(nil, buf.Pix(), w*4); err != nil {
		return err
	}
	if err := wn.renderer.Clear(); err != nil {
		return err
	}
	if err := wn.renderer.Copy(wn.texture, nil, nil); err != nil {
		return err
	}
	wn.renderer.Present()
	return nil
}

// SetTitle updates the window title (used for the status line).
func (wn *Window) SetTitle(title string) {
	if wn.window != nil {
		_ = wn.window.SetTitle(title)
	}
}

// Poll drains pending SDL events and translates the relevant ones.
func (wn *Window) Poll() []Event {
	var out []Event
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			out = append(out, Event{Kind: EventQuit})
		case *sdl.WindowEvent:
			switch ev.Event {
			case sdl.WINDOWEVENT_FOCUS_GAINED:
				out = append(out, Event{Kind: EventFocusGained})
			case sdl.WINDOWEVENT_FOCUS_LOST:
				out = append(out, Event{Kind: EventFocusLost})
			case sdl.WINDOWEVENT_SHOWN, sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_EXPOSED:
				out = append(out, Event{Kind: EventShown})
			case sdl.WINDOWEVENT_HIDDEN, sdl.WINDOWEVENT_MINIMIZED:
				out = append(out, Event{Kind: EventHidden})
			case sdl.WINDOWEVENT_SIZE_CHANGED:
				out = append(out, Event{Kind: EventResized, W: int(ev.Data1), H: int(ev.Data2)})
			}
		case *sdl.MouseMotionEvent:
			out = append(out, Event{Kind: EventPointerMoved, X: float64(ev.X), Y: float64(ev.Y)})
		case *sdl.MouseButtonEvent:
			if ev.Type == sdl.MOUSEBUTTONDOWN && ev.Button == sdl.BUTTON_LEFT {
				out = append(out, Event{Kind: EventClick, X: float64(ev.X), Y: float64(ev.Y)})
			}
		}
	}
	return out
}

// Close releases window resources. Safe to call repeatedly.
func (wn *Window) Close() error {
	if wn.texture != nil {
		_ = wn.texture.Destroy()
		wn.texture = nil
	}
	if wn.renderer != nil {
		_ = wn.renderer.Destroy()
		wn.renderer = nil
	}
	if wn.window != nil {
		_ = wn.window.Destroy()
		wn.window = nil
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
	}
	return nil
}

// SupportsSDL reports whether the SDL backend was compiled in.
func SupportsSDL() bool { return true }
