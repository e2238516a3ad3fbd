package audio

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const defaultRingSize = 4096

// Mic captures microphone input into a ring buffer of mono samples.
// The stream is not opened until Start, so constructing a Mic never
// touches the hardware; the analyzer owns the acquisition lifecycle.
type Mic struct {
	deviceName string
	ringSize   int

	mu     sync.RWMutex
	ring   []float32
	pos    int
	filled bool

	stream     *portaudio.Stream
	device     *portaudio.DeviceInfo
	channels   int
	sampleRate float64
}

// NewMic prepares a capture source. deviceName is an optional substring
// match against PortAudio device names; empty picks the default input.
func NewMic(deviceName string, ringSize int) *Mic {
	if ringSize <= 0 {
		ringSize = defaultRingSize
	}
	return &Mic{deviceName: deviceName, ringSize: ringSize}
}

// Start opens and starts the capture stream. Idempotent.
func (m *Mic) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stream != nil {
		return nil
	}

	device, err := findInput(m.deviceName)
	if err != nil {
		return err
	}

	channels := device.MaxInputChannels
	if channels > 2 {
		channels = 2
	}
	if channels < 1 {
		return fmt.Errorf("device %q has no input channels", device.Name)
	}

	m.device = device
	m.channels = channels
	m.sampleRate = device.DefaultSampleRate
	m.ring = make([]float32, m.ringSize)
	m.pos = 0
	m.filled = false

	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: channels,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      m.sampleRate,
		FramesPerBuffer: portaudio.FramesPerBufferUnspecified,
	}, m.push)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		return fmt.Errorf("start stream: %w", err)
	}
	m.stream = stream
	return nil
}

// push is the PortAudio callback: downmix to mono into the ring.
func (m *Mic) push(in []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.channels <= 1 {
		for _, s := range in {
			m.write(s)
		}
		return
	}
	for i := 0; i+m.channels <= len(in); i += m.channels {
		var sum float32
		for ch := 0; ch < m.channels; ch++ {
			sum += in[i+ch]
		}
		m.write(sum / float32(m.channels))
	}
}

func (m *Mic) write(s float32) {
	m.ring[m.pos] = s
	m.pos++
	if m.pos == len(m.ring) {
		m.pos = 0
		m.filled = true
	}
}

// Samples returns the most recent mono samples in chronological order.
func (m *Mic) Samples() []float32 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ring == nil {
		return nil
	}
	out := make([]float32, len(m.ring))
	n := copy(out, m.ring[m.pos:])
	copy(out[n:], m.ring[:m.pos])
	if !m.filled {
		// Ring not full yet; only the written prefix is meaningful.
		return out[len(out)-m.pos:]
	}
	return out
}

// SampleRate returns the stream sample rate, 0 before Start.
func (m *Mic) SampleRate() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sampleRate
}

// DeviceName returns the capture device name, empty before Start.
func (m *Mic) DeviceName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.device == nil {
		return ""
	}
	return m.device.Name
}

// Close stops and closes the stream. Idempotent, safe before Start.
func (m *Mic) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream == nil {
		return nil
	}
	stream := m.stream
	m.stream = nil
	if err := stream.Stop(); err != nil && !isStoppedStreamErr(err) {
		_ = stream.Close()
		return err
	}
	return stream.Close()
}

// isStoppedStreamErr matches PortAudio's already-stopped error code.
func isStoppedStreamErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "PaErrorCode -9986")
}

func findInput(name string) (*portaudio.DeviceInfo, error) {
	if name != "" {
		devices, err := portaudio.Devices()
		if err != nil {
			return nil, fmt.Errorf("list audio devices: %w", err)
		}
		needle := strings.ToLower(name)
		for _, d := range devices {
			if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), needle) {
				return d, nil
			}
		}
		return nil, fmt.Errorf("audio device %q not found", name)
	}

	if dev, err := portaudio.DefaultInputDevice(); err == nil && dev != nil && dev.MaxInputChannels > 0 {
		return dev, nil
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list audio devices: %w", err)
	}
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no audio input device available")
}
