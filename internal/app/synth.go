package app

import (
	"math"
	"math/rand"
	"time"
)

// synthSource generates synthetic microphone input so the whole
// analysis pipeline runs without audio hardware: a 60 Hz bass line
// thumping at 2 Hz, a mid tone, and a little noise.
type synthSource struct {
	rng        *rand.Rand
	sampleRate float64
	t          float64
	buf        []float32
}

func newSynthSource() *synthSource {
	return &synthSource{
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		sampleRate: 44100,
		buf:        make([]float32, 2048),
	}
}

func (s *synthSource) Start() error { return nil }

func (s *synthSource) Close() error { return nil }

func (s *synthSource) Samples() []float32 {
	dt := 1 / s.sampleRate
	for i := range s.buf {
		t := s.t + float64(i)*dt
		thump := math.Max(0, math.Sin(2*math.Pi*2*t)) // 2 Hz beat envelope
		bass := 0.6 * thump * math.Sin(2*math.Pi*60*t)
		mid := 0.2 * math.Sin(2*math.Pi*440*t)
		noise := 0.05 * (s.rng.Float64()*2 - 1)
		s.buf[i] = float32(bass + mid + noise)
	}
	s.t += float64(len(s.buf)) * dt
	return s.buf
}
