// SPDX-License-Identifier: MIT
package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebSocketBroadcast(t *testing.T) {
	// Port 0 keeps the transport's own listener out of the way; the test
	// drives the handler through httptest instead.
	wst := NewWebSocketTransport("127.0.0.1:0")
	defer wst.Close()

	srv := httptest.NewServer(http.HandlerFunc(wst.handleWebSocket))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	want := &Frame{
		Seq:       7,
		Timestamp: time.Now().UnixNano(),
		Heights:   []float64{0.1, 0.2, 0.3},
		Peaks:     []float64{0.4, 0.5, 0.6},
	}
	// The client registers asynchronously; retry until the broadcast
	// reaches it or the read deadline fires.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	go func() {
		for range 20 {
			wst.Send(want)
			time.Sleep(10 * time.Millisecond)
		}
	}()

	var got Frame
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatal(err)
	}
	if got.Seq != want.Seq {
		t.Errorf("seq %d, expected %d", got.Seq, want.Seq)
	}
	if len(got.Heights) != 3 || got.Heights[2] != 0.3 {
		t.Errorf("heights not delivered: %v", got.Heights)
	}
	if len(got.Peaks) != 3 || got.Peaks[0] != 0.4 {
		t.Errorf("peaks not delivered: %v", got.Peaks)
	}
}

func TestWebSocketSendNeverBlocks(t *testing.T) {
	wst := NewWebSocketTransport("127.0.0.1:0")
	defer wst.Close()

	// Far more frames than the broadcast queue holds; Send must drop, not
	// block.
	done := make(chan struct{})
	go func() {
		for i := range 1000 {
			wst.Send(&Frame{Seq: uint64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked on a full broadcast queue")
	}
}

func TestWebSocketCloseIdempotent(t *testing.T) {
	wst := NewWebSocketTransport("127.0.0.1:0")
	if err := wst.Close(); err != nil {
		t.Fatal(err)
	}
	if err := wst.Close(); err != nil {
		t.Fatal(err)
	}
}
