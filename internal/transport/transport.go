// SPDX-License-Identifier: MIT
//
// Package transport publishes smoothed bar frames to external consumers.
// Transports receive frames from a Publisher and must never block the
// publisher goroutine; a slow or dead consumer drops frames, it does not
// stall the visualizer.
package transport

// Transport sends processed frames to one sink. Implementations must be
// safe for concurrent use.
type Transport interface {
	Send(data any) error
	Close() error
}

// BarProvider is the read side of the smoothed bar state. The analysis
// pipeline's smoother satisfies it.
type BarProvider interface {
	Bars() int
	Snapshot(heights, peaks []float64) (idle bool)
}

// Frame is one published snapshot of the bar graph.
type Frame struct {
	Seq       uint64    `json:"seq"`
	Timestamp int64     `json:"timestamp"` // Nanoseconds since epoch.
	Idle      bool      `json:"idle"`
	Heights   []float64 `json:"heights"`
	Peaks     []float64 `json:"peaks"`
}
