package engine

import "time"

// Clock tracks effective animation time: wall time elapsed since the
// first frame, minus every interval spent paused. All oscillation and
// motion math reads this value only, so resuming after a pause is
// visually continuous instead of jumping forward.
type Clock struct {
	now func() time.Time

	start       time.Time     // zero until the first frame
	totalPaused time.Duration // cumulative paused duration
	pauseStart  time.Time     // zero when not paused
	frozen      time.Duration // effective time cached at the pause instant
}

// NewClock returns a stopped clock using the system time source.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Started reports whether Start has been called.
func (c *Clock) Started() bool {
	return !c.start.IsZero()
}

// Start records the first-frame timestamp. Subsequent calls are no-ops.
func (c *Clock) Start() {
	if c.start.IsZero() {
		c.start = c.now()
	}
}

// Paused reports whether the clock is currently paused.
func (c *Clock) Paused() bool {
	return !c.pauseStart.IsZero()
}

// Pause freezes effective time at the current instant. No-op if the
// clock has not started or is already paused.
func (c *Clock) Pause() {
	if c.start.IsZero() || c.Paused() {
		return
	}
	now := c.now()
	c.frozen = now.Sub(c.start) - c.totalPaused
	c.pauseStart = now
}

// Resume folds the elapsed pause interval into the paused total and
// unfreezes effective time. No-op if not paused.
func (c *Clock) Resume() {
	if !c.Paused() {
		return
	}
	c.totalPaused += c.now().Sub(c.pauseStart)
	c.pauseStart = time.Time{}
}

// Effective returns the effective animation time. While paused it
// returns the value cached when the pause began.
func (c *Clock) Effective() time.Duration {
	if c.start.IsZero() {
		return 0
	}
	if c.Paused() {
		return c.frozen
	}
	return c.now().Sub(c.start) - c.totalPaused
}

// TotalPaused returns the cumulative paused duration, excluding any
// pause still in progress.
func (c *Clock) TotalPaused() time.Duration {
	return c.totalPaused
}
