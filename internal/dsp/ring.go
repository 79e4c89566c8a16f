// SPDX-License-Identifier: MIT
/*
Package dsp implements the signal path of the visualizer: a ring buffer
decoupling capture cadence from analysis cadence, analysis window functions,
and the windowed FFT producing the magnitude spectrum.
*/
package dsp

import "sync"

// Ring is a fixed-capacity circular buffer of samples. Writers always
// succeed, overwriting the oldest samples once full; the visualizer favors
// freshness over completeness. Reads copy the most recent samples without
// consuming them, so overlapping analysis windows are fine.
//
// All access goes through a mutex: a reader never observes a write in
// progress.
type Ring struct {
	mu      sync.RWMutex
	buf     []float64
	index   int   // next write position
	written int64 // total samples ever written
}

// NewRing creates a ring buffer holding capacity samples.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		panic("dsp: ring capacity must be positive")
	}
	return &Ring{buf: make([]float64, capacity)}
}

// Cap returns the ring's capacity in samples.
func (r *Ring) Cap() int { return len(r.buf) }

// Write appends a block of samples, overwriting the oldest data when the
// block does not fit. Blocks longer than the capacity keep only their tail.
func (r *Ring) Write(block []float64) {
	if len(block) == 0 {
		return
	}
	if len(block) > len(r.buf) {
		block = block[len(block)-len(r.buf):]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n := copy(r.buf[r.index:], block)
	if n < len(block) {
		copy(r.buf, block[n:])
	}
	r.index = (r.index + len(block)) % len(r.buf)
	r.written += int64(len(block))
}

// ReadLatest fills dst with the most recent len(dst) samples, newest last.
// If fewer samples have ever been written, the leading part of dst is
// zero-filled so analysis can start immediately after startup.
func (r *Ring) ReadLatest(dst []float64) {
	if len(dst) > len(r.buf) {
		panic("dsp: read larger than ring capacity")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	want := len(dst)
	have := want
	if r.written < int64(want) {
		have = int(r.written)
	}

	for i := range want - have {
		dst[i] = 0
	}

	start := r.index - have
	if start < 0 {
		start += len(r.buf)
	}
	n := copy(dst[want-have:], r.buf[start:])
	if n < have {
		copy(dst[want-have+n:], r.buf)
	}
}
