// SPDX-License-Identifier: MIT
/*
Package audio wraps the capture side of the pipeline: PortAudio lifecycle,
device enumeration, the blocking pull Source interface with its capture and
synthetic implementations, and WAV recording of the captured stream.
*/
package audio

import (
	"context"
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// ErrDevice marks capture device failures: the device disconnected, the
// stream format changed, or no device is available at all. Callers treat it
// as recoverable; a missing device is a normal state, not a crash.
var ErrDevice = errors.New("audio device unavailable")

// Source yields blocks of mono PCM samples at a fixed sample rate.
// Implementations block in Pull until samples are available.
type Source interface {
	// Pull fills dst with up to len(dst) samples and returns the number
	// written. It blocks until samples arrive, the context is cancelled,
	// or the device fails (an error wrapping ErrDevice).
	Pull(ctx context.Context, dst []float64) (int, error)

	// SampleRate returns the source's sample rate in Hz.
	SampleRate() float64

	Close() error
}

// Reconnector is implemented by sources that can recover from device loss.
// The pipeline retries Reconnect with bounded backoff after ErrDevice.
type Reconnector interface {
	Reconnect() error
}

// Initialize sets up the PortAudio subsystem. Must be called before any
// capture operation and paired with Terminate.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate shuts down the PortAudio subsystem.
func Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}
