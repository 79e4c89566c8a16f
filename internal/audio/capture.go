// SPDX-License-Identifier: MIT
package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	applog "spectrum/internal/log"
)

// captureQueueDepth is how many capture blocks may sit between the PortAudio
// callback and Pull before the callback starts dropping. Freshness beats
// completeness here.
const captureQueueDepth = 8

// pullStallTimeout is how long Pull waits for a block before declaring the
// device gone. The callback normally fires every few milliseconds; seconds
// of silence from the driver means the stream is dead.
const pullStallTimeout = 2 * time.Second

// CaptureSource captures mono PCM from a PortAudio input device. The
// PortAudio callback downmixes interleaved input into pre-allocated block
// buffers and hands them to Pull through a bounded queue, so the callback
// never blocks and never allocates.
type CaptureSource struct {
	deviceID        int
	channels        int
	sampleRate      float64
	framesPerBuffer int
	lowLatency      bool

	mu     sync.Mutex
	stream *portaudio.Stream
	closed bool

	blocks chan []float64
	// Rotation of callback-owned block buffers. A block is safe to reuse by
	// the time the rotation wraps: the consumer copies it out in Pull.
	ring    [][]float64
	ringIdx int
}

// NewCaptureSource opens and starts a capture stream on the given device.
// PortAudio must be initialized.
func NewCaptureSource(deviceID, channels int, sampleRate float64, framesPerBuffer int, lowLatency bool) (*CaptureSource, error) {
	s := &CaptureSource{
		deviceID:        deviceID,
		channels:        channels,
		sampleRate:      sampleRate,
		framesPerBuffer: framesPerBuffer,
		lowLatency:      lowLatency,
		blocks:          make(chan []float64, captureQueueDepth),
		ring:            make([][]float64, captureQueueDepth+2),
	}
	for i := range s.ring {
		s.ring[i] = make([]float64, framesPerBuffer)
	}

	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

// open resolves the device and starts the stream. Callers hold no lock.
func (s *CaptureSource) open() error {
	device, err := inputDevice(s.deviceID)
	if err != nil {
		return err
	}

	latency := device.DefaultHighInputLatency
	if s.lowLatency {
		latency = device.DefaultLowInputLatency
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: s.channels,
			Latency:  latency,
		},
		SampleRate:      s.sampleRate,
		FramesPerBuffer: s.framesPerBuffer,
	}

	stream, err := portaudio.OpenStream(params, s.processInput)
	if err != nil {
		return fmt.Errorf("%w: open stream: %v", ErrDevice, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("%w: start stream: %v", ErrDevice, err)
	}

	s.mu.Lock()
	s.stream = stream
	s.mu.Unlock()

	applog.Infof("audio: capture started on %q (%.0f Hz, %d ch, %d frames/buffer)",
		device.Name, s.sampleRate, s.channels, s.framesPerBuffer)
	return nil
}

// processInput is the PortAudio callback. Hot path: pre-allocated buffers
// only, non-blocking send, drop on overflow.
func (s *CaptureSource) processInput(in []float32) {
	block := s.ring[s.ringIdx]
	s.ringIdx = (s.ringIdx + 1) % len(s.ring)

	frames := len(in) / s.channels
	if frames > len(block) {
		frames = len(block)
	}
	if s.channels == 1 {
		for i := range frames {
			block[i] = float64(in[i])
		}
	} else {
		inv := 1 / float64(s.channels)
		for i := range frames {
			var sum float64
			for c := range s.channels {
				sum += float64(in[i*s.channels+c])
			}
			block[i] = sum * inv
		}
	}

	select {
	case s.blocks <- block[:frames]:
	default:
		// Queue full: the analysis side is behind, drop the block.
	}
}

// Pull blocks until a capture block is available and copies it into dst.
// A stall longer than pullStallTimeout is reported as a device error.
func (s *CaptureSource) Pull(ctx context.Context, dst []float64) (int, error) {
	timer := time.NewTimer(pullStallTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case block := <-s.blocks:
		return copy(dst, block), nil
	case <-timer.C:
		return 0, fmt.Errorf("%w: no samples for %s", ErrDevice, pullStallTimeout)
	}
}

// SampleRate returns the configured capture sample rate.
func (s *CaptureSource) SampleRate() float64 { return s.sampleRate }

// Reconnect tears down the stream and opens it again, picking up whatever
// default device is present now. Used by the pipeline's backoff loop.
func (s *CaptureSource) Reconnect() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("%w: source closed", ErrDevice)
	}
	s.stopLocked()
	s.mu.Unlock()

	// Drain any stale blocks queued before the stream died.
	for {
		select {
		case <-s.blocks:
			continue
		default:
		}
		break
	}

	return s.open()
}

// Close stops and closes the capture stream.
func (s *CaptureSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.stopLocked()
	return nil
}

func (s *CaptureSource) stopLocked() {
	if s.stream == nil {
		return
	}
	if err := s.stream.Stop(); err != nil {
		applog.Debugf("audio: stop stream: %v", err)
	}
	if err := s.stream.Close(); err != nil {
		applog.Debugf("audio: close stream: %v", err)
	}
	s.stream = nil
}

var (
	_ Source      = (*CaptureSource)(nil)
	_ Reconnector = (*CaptureSource)(nil)
)
