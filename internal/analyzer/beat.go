package analyzer

import "time"

const (
	beatHistorySize = 20
	beatThreshold   = 1.5
	beatHoldTime    = 100 * time.Millisecond
	beatDecay       = 0.97
)

// BeatDetector flags energy onsets against a rolling average. A beat
// fires when the instantaneous energy exceeds the rolling mean by the
// threshold factor and the hold time since the last beat has elapsed.
// The reported strength decays every call whether or not a beat fires.
type BeatDetector struct {
	now func() time.Time

	history  []float64 // fixed-length ring, seeded with zeros
	strength float64
	lastBeat time.Time
}

// NewBeatDetector returns a detector with a zeroed energy history.
func NewBeatDetector() *BeatDetector {
	return &BeatDetector{
		now:     time.Now,
		history: make([]float64, beatHistorySize),
	}
}

// Detect feeds one energy sample and reports whether a beat fired plus
// the current (decayed or freshly set) beat strength.
func (d *BeatDetector) Detect(energy float64) (bool, float64) {
	copy(d.history, d.history[1:])
	d.history[len(d.history)-1] = energy

	var sum float64
	for _, v := range d.history {
		sum += v
	}
	mean := sum / float64(len(d.history))

	d.strength *= beatDecay

	// Silence guard: a zero mean can never produce a beat, and must not
	// reach the division below.
	if mean <= 0 {
		return false, d.strength
	}

	now := d.now()
	if energy > mean*beatThreshold && now.Sub(d.lastBeat) >= beatHoldTime {
		s := (energy - mean) / mean
		if s > 1 {
			s = 1
		}
		d.strength = s
		d.lastBeat = now
		return true, d.strength
	}
	return false, d.strength
}
