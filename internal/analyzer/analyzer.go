package analyzer

import (
	"fmt"
	"math"
	"sync"

	"github.com/mjibson/go-dsp/fft"
)

const (
	// Fixed transform size; the bin count is half of it.
	fftSize  = 2048
	binCount = fftSize / 2

	// Frequency-domain smoothing applied across polls, and the
	// exponential smoothing factor for the volume estimate.
	spectrumSmoothing = 0.8
	volumeSmoothing   = 0.2

	// Band edges as fractions of the bin array: bass is the first 5%,
	// mid the next 35%, treble the remainder.
	bassFraction = 0.05
	midFraction  = 0.40

	// Weighting of band energies fed to the beat detector.
	beatBassWeight = 0.7
	beatMidWeight  = 0.3
)

// Source supplies recent mono samples for analysis and owns the
// underlying capture resource. Implemented by the PortAudio microphone
// and by the synthetic generator used in tests and --no-audio runs.
type Source interface {
	Start() error
	Samples() []float32
	Close() error
}

// Data is one immutable audio feature snapshot. All values are
// normalized to [0, 1]; Spectrum is ordered low to high frequency.
type Data struct {
	Volume       float64   `json:"volume"`
	Bass         float64   `json:"bass"`
	Mid          float64   `json:"mid"`
	Treble       float64   `json:"treble"`
	Spectrum     []float64 `json:"spectrum"`
	Beat         bool      `json:"beat"`
	BeatStrength float64   `json:"beatStrength"`
}

// Analyzer turns a sample source into audio feature snapshots. It is an
// explicitly constructed and owned instance; its lifecycle (Initialize,
// SetEnabled, Close) is idempotent and guarded against concurrent use.
type Analyzer struct {
	mu sync.Mutex

	source      Source
	initialized bool
	enabled     bool

	window   []float64 // Hann window, fftSize long
	buffer   []complex128
	spectrum []float64 // smoothed normalized bins
	volume   float64
	detector *BeatDetector
}

// New creates an analyzer around the given sample source.
func New(source Source) *Analyzer {
	return &Analyzer{
		source:   source,
		detector: NewBeatDetector(),
	}
}

// Initialize acquires the capture resource and allocates the analysis
// workspace. Idempotent; on failure every partially acquired resource
// is released before returning.
func (a *Analyzer) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initializeLocked()
}

func (a *Analyzer) initializeLocked() error {
	if a.initialized {
		return nil
	}
	if a.source == nil {
		return fmt.Errorf("no audio source")
	}
	if err := a.source.Start(); err != nil {
		_ = a.source.Close()
		return fmt.Errorf("audio source: %w", err)
	}
	a.window = make([]float64, fftSize)
	for i := range a.window {
		a.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize)))
	}
	a.buffer = make([]complex128, fftSize)
	a.spectrum = make([]float64, binCount)
	a.volume = 0
	a.initialized = true
	return nil
}

// SetEnabled turns analysis on or off. Enabling initializes first if
// needed; disabling releases the capture resource. No-op when the state
// already matches, safe to call repeatedly.
func (a *Analyzer) SetEnabled(enabled bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if enabled == a.enabled {
		return nil
	}
	if enabled {
		if err := a.initializeLocked(); err != nil {
			return err
		}
		a.enabled = true
		return nil
	}
	a.enabled = false
	a.releaseLocked()
	return nil
}

// Enabled reports whether the analyzer is initialized and enabled.
func (a *Analyzer) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized && a.enabled
}

// Close releases everything. Safe on a never-initialized analyzer.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = false
	a.releaseLocked()
	return nil
}

func (a *Analyzer) releaseLocked() {
	if !a.initialized {
		return
	}
	_ = a.source.Close()
	a.initialized = false
	a.window = nil
	a.buffer = nil
	a.spectrum = nil
}

// Data computes a fresh feature snapshot, or returns nil when the
// analyzer is not both initialized and enabled.
func (a *Analyzer) Data() *Data {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized || !a.enabled {
		return nil
	}

	samples := a.source.Samples()
	for i := 0; i < fftSize; i++ {
		if i < len(samples) {
			a.buffer[i] = complex(float64(samples[i])*a.window[i], 0)
		} else {
			a.buffer[i] = 0
		}
	}
	bins := fft.FFT(a.buffer)

	// Normalize magnitudes: a full-scale Hann-windowed sine peaks near
	// fftSize/4, so that is the 1.0 reference.
	norm := 4.0 / float64(fftSize)
	var sum float64
	for i := 0; i < binCount; i++ {
		mag := cmag(bins[i]) * norm
		if mag > 1 {
			mag = 1
		}
		a.spectrum[i] = spectrumSmoothing*a.spectrum[i] + (1-spectrumSmoothing)*mag
		sum += a.spectrum[i]
	}

	raw := sum / binCount
	a.volume += volumeSmoothing * (raw - a.volume)

	bassEnd, midEnd := bandEdges(binCount)
	bass := bandMean(a.spectrum, 0, bassEnd)
	mid := bandMean(a.spectrum, bassEnd, midEnd)
	treble := bandMean(a.spectrum, midEnd, binCount)

	beat, strength := a.detector.Detect(beatBassWeight*bass + beatMidWeight*mid)

	out := &Data{
		Volume:       a.volume,
		Bass:         bass,
		Mid:          mid,
		Treble:       treble,
		Spectrum:     append([]float64(nil), a.spectrum...),
		Beat:         beat,
		BeatStrength: strength,
	}
	return out
}

// bandEdges returns the exclusive end bins of the bass and mid bands
// for a given bin count: bass [0, 5%), mid [5%, 40%), treble the rest.
func bandEdges(bins int) (bassEnd, midEnd int) {
	bassEnd = int(bassFraction * float64(bins))
	midEnd = int(midFraction * float64(bins))
	if bassEnd < 1 {
		bassEnd = 1
	}
	if midEnd <= bassEnd {
		midEnd = bassEnd + 1
	}
	if midEnd > bins {
		midEnd = bins
	}
	return bassEnd, midEnd
}

func bandMean(spectrum []float64, lo, hi int) float64 {
	if hi > len(spectrum) {
		hi = len(spectrum)
	}
	if lo >= hi {
		return 0
	}
	var sum float64
	for _, v := range spectrum[lo:hi] {
		sum += v
	}
	return sum / float64(hi-lo)
}

func cmag(c complex128) float64 {
	return math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
}
