package render

// EventKind identifies a windowing event relevant to the engine's
// external signals.
type EventKind int

const (
	EventQuit EventKind = iota
	EventFocusGained
	EventFocusLost
	EventShown
	EventHidden
	EventPointerMoved
	EventClick
	EventResized
)

// Event is a windowing event translated into engine terms.
type Event struct {
	Kind EventKind
	X, Y float64 // pointer position for motion/click events
	W, H int     // new size for resize events
}
