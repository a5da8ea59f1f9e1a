// Package transport sends rendered frames to the matrix/strip firmware
// over UDP and mirrors them to any connected WebSocket clients, grounded
// on the original system's transport/udp.py, transport/ws.py and
// transport/driver.py.
package transport

import (
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"github.com/cerotheproto/ledmatrixd/internal/proto"
)

// CmdBrightness is the TYPE_CMD cmd_id that sets display brightness.
const CmdBrightness byte = 0x01

// ButtonHandler is invoked with a button ID whenever a TYPE_BUTTON packet
// arrives from the device.
type ButtonHandler func(buttonID byte)

// UDP is the primary transport: a connected UDP socket to the firmware,
// with its own frame/strip sequence counters and the current brightness.
type UDP struct {
	conn       *net.UDPConn
	seq        uint16
	ledSeq     uint16
	brightness byte

	OnButton ButtonHandler
	Log      zerolog.Logger
}

// DialUDP resolves host:port and connects a UDP socket to it.
func DialUDP(host string, port int) (*UDP, error) {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, fmt.Errorf("resolving udp address: %w", err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dialing udp %s: %w", addr, err)
	}
	return &UDP{conn: conn, brightness: 255}, nil
}

// Close closes the underlying socket.
func (u *UDP) Close() error {
	if u.conn == nil {
		return nil
	}
	return u.conn.Close()
}

// SendFrame RLE-compresses and sends a full matrix frame.
func (u *UDP) SendFrame(pixels []byte) error {
	packet := proto.MakeFrame(u.seq, pixels, u.seq, true)
	u.seq++
	_, err := u.conn.Write(packet.Pack())
	return err
}

// SendLEDStripFrame sends a strip-length pixel buffer.
func (u *UDP) SendLEDStripFrame(pixels []byte) error {
	packet := proto.MakeLEDStripFrame(u.ledSeq, pixels, u.ledSeq, true)
	u.ledSeq++
	_, err := u.conn.Write(packet.Pack())
	return err
}

// SetBrightness validates level is in [0,255] — always true for a byte —
// records it and sends the TYPE_CMD brightness command.
func (u *UDP) SetBrightness(level byte) error {
	u.brightness = level
	packet := proto.MakeCmd(CmdBrightness, []byte{level}, u.seq)
	u.seq++
	_, err := u.conn.Write(packet.Pack())
	return err
}

// Brightness returns the last brightness level sent.
func (u *UDP) Brightness() byte { return u.brightness }

// ReadLoop blocks reading incoming packets (button presses) until the
// socket errors or is closed; callers run it in its own goroutine.
func (u *UDP) ReadLoop() error {
	buf := make([]byte, 2048)
	for {
		n, err := u.conn.Read(buf)
		if err != nil {
			return err
		}
		packet, err := proto.Unpack(buf[:n])
		if err != nil {
			u.Log.Warn().Err(err).Msg("dropping malformed UDP packet")
			continue
		}
		if packet.Type == proto.TypeButton && u.OnButton != nil {
			btn, err := packet.ParseButton()
			if err != nil {
				u.Log.Warn().Err(err).Msg("dropping malformed button payload")
				continue
			}
			u.OnButton(btn.ButtonID)
		}
	}
}
