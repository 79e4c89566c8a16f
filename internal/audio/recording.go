// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"math"
	"os"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Recorder writes captured mono PCM to a WAV file. The pipeline tees every
// pulled block into it; Write converts float64 samples to integer PCM using
// a reusable buffer.
type Recorder struct {
	mu        sync.Mutex
	file      *os.File
	encoder   *wav.Encoder
	sampleBuf *goaudio.IntBuffer
	scale     float64
	closed    bool
}

// NewRecorder creates a WAV recorder at the given path. bitDepth must be 16
// or 24.
func NewRecorder(path string, sampleRate float64, bitDepth int) (*Recorder, error) {
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording file: %w", err)
	}

	return &Recorder{
		file:    file,
		encoder: wav.NewEncoder(file, int(sampleRate), bitDepth, 1, 1),
		sampleBuf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: 1,
				SampleRate:  int(sampleRate),
			},
			SourceBitDepth: bitDepth,
		},
		scale: math.Pow(2, float64(bitDepth-1)) - 1,
	}, nil
}

// Write appends a block of samples in [-1, 1] to the file. Values outside
// the range are clipped.
func (r *Recorder) Write(block []float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("recorder closed")
	}

	if cap(r.sampleBuf.Data) < len(block) {
		r.sampleBuf.Data = make([]int, len(block))
	}
	r.sampleBuf.Data = r.sampleBuf.Data[:len(block)]

	for i, v := range block {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		r.sampleBuf.Data[i] = int(v * r.scale)
	}

	if err := r.encoder.Write(r.sampleBuf); err != nil {
		return fmt.Errorf("write wav block: %w", err)
	}
	return nil
}

// Close finalizes the WAV header and closes the file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.encoder.Close(); err != nil {
		r.file.Close()
		return fmt.Errorf("finalize wav: %w", err)
	}
	return r.file.Close()
}
