// SPDX-License-Identifier: MIT
package transport

import (
	applog "spectrum/internal/log"
)

// DebugTransport logs a one-line summary of each frame at debug level.
// Wired in alongside the real transports when debug mode is on.
type DebugTransport struct{}

// NewDebugTransport creates a DebugTransport.
func NewDebugTransport() *DebugTransport {
	return &DebugTransport{}
}

// Send logs the frame summary. Never fails.
func (dt *DebugTransport) Send(data any) error {
	if f, ok := data.(*Frame); ok {
		peak := 0.0
		for _, h := range f.Heights {
			if h > peak {
				peak = h
			}
		}
		applog.Debugf("DebugTransport: frame %d idle=%t bars=%d peak=%.4f",
			f.Seq, f.Idle, len(f.Heights), peak)
		return nil
	}
	applog.Debugf("DebugTransport: %T %+v", data, data)
	return nil
}

// Close is a no-op.
func (dt *DebugTransport) Close() error { return nil }

var _ Transport = (*DebugTransport)(nil)
