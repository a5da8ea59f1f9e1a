package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cerotheproto/ledmatrixd/internal/proto"
)

func newTestWSServer(t *testing.T, w *WS) (*httptest.Server, string) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/frames", func(rw http.ResponseWriter, r *http.Request) {
		if err := w.HandleUpgrade(rw, r); err != nil {
			t.Errorf("upgrade failed: %v", err)
		}
	})
	srv := httptest.NewServer(mux)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/frames"
	return srv, wsURL
}

func TestWSSendsBrightnessOnConnect(t *testing.T) {
	w := NewWS()
	w.brightness = 77
	srv, wsURL := newTestWSServer(t, w)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("expected initial brightness message: %v", err)
	}
	p, err := proto.Unpack(data)
	if err != nil {
		t.Fatal(err)
	}
	cmd, err := p.ParseCmd()
	if err != nil {
		t.Fatal(err)
	}
	if cmd.ID == nil || *cmd.ID != CmdBrightness || cmd.Data[0] != 77 {
		t.Fatalf("expected brightness 77 command, got %+v", cmd)
	}
}

func TestWSBroadcastsFrameToConnectedClient(t *testing.T) {
	w := NewWS()
	srv, wsURL := newTestWSServer(t, w)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// drain the initial brightness message
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatal(err)
	}

	// give the server a moment to register the client before broadcasting
	deadline := time.Now().Add(2 * time.Second)
	for w.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	pixels := make([]byte, 64*32*3)
	if err := w.SendFrame(pixels); err != nil {
		t.Fatal(err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("expected broadcast frame: %v", err)
	}
	p, err := proto.Unpack(data)
	if err != nil {
		t.Fatal(err)
	}
	if p.Type != proto.TypeFrame {
		t.Fatalf("expected TypeFrame, got %#x", p.Type)
	}
}
