//go:build !sdl

package render

import "errors"

// Window is unavailable without the sdl build tag.
type Window struct{}

// NewWindow fails when the SDL backend is not compiled in.
func NewWindow(title string, w, h int) (*Window, error) {
	return nil, errors.New("SDL backend not enabled; rebuild with -tags sdl")
}

func (wn *Window) Present(buf *Buffer) error { return errors.New("SDL backend unavailable") }

func (wn *Window) SetTitle(title string) {}

func (wn *Window) Poll() []Event { return nil }

func (wn *Window) Close() error { return nil }

// SupportsSDL reports whether the SDL backend was compiled in.
func SupportsSDL() bool { return false }
