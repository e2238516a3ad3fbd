package app

import (
	"math"

	"github.com/Skyy-Development/launcher-backdrop/internal/analyzer"
)

// reactive smooths audio feature snapshots into the single energy
// value the engine feeds to effect draw passes. Silence decays back to
// zero instead of cutting off.
type reactive struct {
	energy float64
	pulse  float64
}

// apply folds one snapshot (nil for no data this frame) into the
// running energy and returns the value to hand to the engine.
func (r *reactive) apply(d *analyzer.Data, delta float64) float64 {
	decay := math.Pow(0.88, delta*60)
	r.pulse *= decay

	if d == nil {
		r.energy *= decay
		return clamp01(r.energy)
	}

	target := clamp01(d.Volume*1.2 + d.Bass*0.5)
	r.energy = lerp(r.energy, target, 0.4)
	if d.Beat {
		r.pulse = d.BeatStrength
	}
	return clamp01(r.energy + r.pulse*0.5)
}

func lerp(current, target, factor float64) float64 {
	return current*(1-factor) + target*factor
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
