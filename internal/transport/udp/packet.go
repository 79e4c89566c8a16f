// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	applog "spectrum/internal/log"
	"spectrum/internal/transport"
)

/*
Packet layout (BigEndian):

|<-- 4 bytes -->|<--- 8 bytes --->|<- 2 bytes ->|<--- N * 4 bytes --->|
+---------------+-----------------+-------------+---------------------+
|   Sequence    |    Timestamp    |   Height    |       Heights       |
|   (uint32)    | (int64, ns)     |   count     |    (N * float32)    |
|               |                 |  (uint16)   |                     |
+---------------+-----------------+-------------+---------------------+
*/

// PacketTransport packs frames into the binary layout above and sends them
// through a Sender. It implements transport.Transport so the publisher can
// treat it like any other sink.
type PacketTransport struct {
	sender *Sender

	mu        sync.Mutex
	f32Buffer []float32
	packetBuf bytes.Buffer
}

// NewPacketTransport wraps a sender.
func NewPacketTransport(sender *Sender) (*PacketTransport, error) {
	if sender == nil {
		return nil, fmt.Errorf("udp: sender cannot be nil")
	}
	return &PacketTransport{sender: sender}, nil
}

// Send packs a *transport.Frame and transmits it. Idle frames are skipped;
// downstream consumers hold their last state during silence. Non-frame
// payloads are ignored.
func (t *PacketTransport) Send(data any) error {
	frame, ok := data.(*transport.Frame)
	if !ok {
		applog.Debugf("UDP: ignoring payload of type %T", data)
		return nil
	}
	if frame.Idle {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if cap(t.f32Buffer) < len(frame.Heights) {
		t.f32Buffer = make([]float32, len(frame.Heights))
	}
	t.f32Buffer = t.f32Buffer[:len(frame.Heights)]
	for i, v := range frame.Heights {
		t.f32Buffer[i] = float32(v)
	}

	t.packetBuf.Reset()
	err := binary.Write(&t.packetBuf, binary.BigEndian, uint32(frame.Seq))
	if err == nil {
		err = binary.Write(&t.packetBuf, binary.BigEndian, frame.Timestamp)
	}
	if err == nil {
		err = binary.Write(&t.packetBuf, binary.BigEndian, uint16(len(t.f32Buffer)))
	}
	if err == nil {
		err = binary.Write(&t.packetBuf, binary.BigEndian, t.f32Buffer)
	}
	if err != nil {
		return fmt.Errorf("udp: failed to pack frame %d: %w", frame.Seq, err)
	}

	if err := t.sender.Send(t.packetBuf.Bytes()); err != nil {
		return err
	}
	applog.Debugf("UDP: sent frame %d (%d bytes)", frame.Seq, t.packetBuf.Len())
	return nil
}

// Close closes the underlying sender.
func (t *PacketTransport) Close() error {
	return t.sender.Close()
}

var _ transport.Transport = (*PacketTransport)(nil)
