package transport

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cerotheproto/ledmatrixd/internal/proto"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsClient is one connected WebSocket viewer, with its own outbound queue
// drained by a dedicated write pump (the auxiliary, debug-facing mirror
// of the primary UDP transport — frames are broadcast, nothing is read
// back besides keepalive pongs).
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// WS is the secondary, debug-facing transport: it broadcasts every frame
// and LED-strip frame sent to it out to all currently connected WebSocket
// clients, and sends each new client the current brightness once.
type WS struct {
	mu         sync.Mutex
	clients    map[*wsClient]struct{}
	seq        uint16
	ledSeq     uint16
	brightness byte
}

// NewWS constructs an empty WS transport with the original's default
// brightness.
func NewWS() *WS {
	return &WS{clients: make(map[*wsClient]struct{}), brightness: 150}
}

// HandleUpgrade upgrades r to a WebSocket connection and registers it,
// for mounting at a route like "/ws/frames".
func (w *WS) HandleUpgrade(rw http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return err
	}

	c := &wsClient{conn: conn, send: make(chan []byte, 8)}
	w.sendInitialBrightness(c)

	w.mu.Lock()
	w.clients[c] = struct{}{}
	w.mu.Unlock()

	go w.writePump(c)
	go w.readPump(c)
	return nil
}

func (w *WS) sendInitialBrightness(c *wsClient) {
	packet := proto.MakeCmd(CmdBrightness, []byte{w.brightness}, w.seq)
	select {
	case c.send <- packet.Pack():
	default:
	}
}

func (w *WS) readPump(c *wsClient) {
	defer w.remove(c)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (w *WS) writePump(c *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (w *WS) remove(c *wsClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.clients[c]; ok {
		delete(w.clients, c)
		close(c.send)
	}
}

func (w *WS) broadcast(data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for c := range w.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// SendFrame RLE-compresses and broadcasts a full matrix frame to every
// connected client; a no-op when nobody is connected.
func (w *WS) SendFrame(pixels []byte) error {
	w.mu.Lock()
	empty := len(w.clients) == 0
	w.mu.Unlock()
	if empty {
		return nil
	}
	packet := proto.MakeFrame(w.seq, pixels, w.seq, true)
	w.seq++
	w.broadcast(packet.Pack())
	return nil
}

// SendLEDStripFrame broadcasts a strip-length pixel buffer.
func (w *WS) SendLEDStripFrame(pixels []byte) error {
	w.mu.Lock()
	empty := len(w.clients) == 0
	w.mu.Unlock()
	if empty {
		return nil
	}
	packet := proto.MakeLEDStripFrame(w.ledSeq, pixels, w.ledSeq, true)
	w.ledSeq++
	w.broadcast(packet.Pack())
	return nil
}

// SetBrightness records the new brightness and broadcasts it to every
// connected client immediately.
func (w *WS) SetBrightness(level byte) error {
	w.brightness = level
	packet := proto.MakeCmd(CmdBrightness, []byte{level}, w.seq)
	w.seq++
	w.broadcast(packet.Pack())
	return nil
}

// Brightness returns the last brightness value recorded.
func (w *WS) Brightness() byte { return w.brightness }

// ClientCount returns the number of currently connected clients.
func (w *WS) ClientCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clients)
}
