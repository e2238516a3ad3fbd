package engine

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Tier is the user-selected performance/fidelity setting.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

// ParseTier maps a user-facing tier name to a Tier. It accepts the same
// loose synonyms the settings UI has shipped with over time.
func ParseTier(name string) (Tier, error) {
	switch strings.ToLower(name) {
	case "low", "eco", "potato":
		return TierLow, nil
	case "medium", "mid", "balanced", "":
		return TierMedium, nil
	case "high", "full", "max":
		return TierHigh, nil
	}
	return TierMedium, fmt.Errorf("unknown quality tier %q", name)
}

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierHigh:
		return "high"
	default:
		return "medium"
	}
}

// Profile holds the simulation parameters a tier implies. Entity counts
// are fixed at mount time; changing tier means remounting the effect.
type Profile struct {
	CountScale     float64 // multiplier on an effect's base entity count
	SpeedScale     float64 // multiplier on per-entity speeds
	TargetFPS      float64
	ExtraParticles int // pulse-wave background particle count
	CurveSegments  int // pulse-wave silhouette resolution
}

// Profile returns the simulation profile for the tier.
func (t Tier) Profile() Profile {
	switch t {
	case TierLow:
		return Profile{CountScale: 0.3, SpeedScale: 0.5, TargetFPS: 30, ExtraParticles: 12, CurveSegments: 10}
	case TierHigh:
		return Profile{CountScale: 1.0, SpeedScale: 1.5, TargetFPS: 60, ExtraParticles: 40, CurveSegments: 24}
	default:
		return Profile{CountScale: 0.6, SpeedScale: 1.0, TargetFPS: 45, ExtraParticles: 24, CurveSegments: 16}
	}
}

// ScaledCount applies the tier count multiplier to a base entity count.
func (p Profile) ScaledCount(base int) int {
	n := int(math.Floor(float64(base) * p.CountScale))
	if n < 1 {
		n = 1
	}
	return n
}

// FrameInterval returns the minimum wall-time between accepted frames.
func (p Profile) FrameInterval() time.Duration {
	if p.TargetFPS <= 0 {
		return time.Second / 60
	}
	return time.Duration(float64(time.Second) / p.TargetFPS)
}
