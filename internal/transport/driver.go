package transport

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

// FrameSender is the subset of UDP/WS that Driver fans frames out to.
type FrameSender interface {
	SendFrame(pixels []byte) error
	SendLEDStripFrame(pixels []byte) error
	SetBrightness(level byte) error
}

// Driver fans a rendered frame and LED-strip pixel buffer out to the
// primary transport (parsed from a transport URI) and, optionally, the
// WebSocket mirror — mirroring the original's Driver.init_from_config
// split between a required primary transport and an optional WS one.
type Driver struct {
	primary FrameSender
	udp     *UDP
	ws      *WS
}

// NewDriver parses transportURI (e.g. "udp://host:port") into the primary
// transport and, when wsEnabled, also constructs a WS mirror. At least
// one of the two must end up configured.
func NewDriver(transportURI string, wsEnabled bool) (*Driver, error) {
	d := &Driver{}

	if transportURI != "" {
		u, err := url.Parse(transportURI)
		if err != nil {
			return nil, fmt.Errorf("parsing transport uri %q: %w", transportURI, err)
		}
		if u.Scheme != "udp" {
			return nil, fmt.Errorf("unknown transport scheme: %q", u.Scheme)
		}
		host := u.Hostname()
		if host == "" {
			host = "10.0.0.2"
		}
		port := 5555
		if p := u.Port(); p != "" {
			parsed, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("parsing transport port %q: %w", p, err)
			}
			port = parsed
		}
		udpT, err := DialUDP(host, port)
		if err != nil {
			return nil, err
		}
		d.udp = udpT
		d.primary = udpT
	}

	if wsEnabled {
		d.ws = NewWS()
	}

	if d.primary == nil && d.ws == nil {
		return nil, fmt.Errorf("at least one transport (primary or ws_enabled) must be configured")
	}

	return d, nil
}

// Close releases the primary transport's socket, if any.
func (d *Driver) Close() error {
	if d.udp != nil {
		return d.udp.Close()
	}
	return nil
}

// WS returns the WebSocket mirror transport, for mounting its upgrade
// handler, or nil if ws_enabled was false.
func (d *Driver) WS() *WS { return d.ws }

// UDP returns the primary UDP transport, or nil if no transport URI was
// configured (WS-only operation).
func (d *Driver) UDP() *UDP { return d.udp }

// DisplayFrame sends a fully composed 128x32 frame to every configured
// transport.
func (d *Driver) DisplayFrame(f *frame.Frame) error {
	if d.primary != nil {
		if err := d.primary.SendFrame(f.Pixels); err != nil {
			return err
		}
	}
	if d.ws != nil {
		if err := d.ws.SendFrame(f.Pixels); err != nil {
			return err
		}
	}
	return nil
}

// SendLEDStripFrame sends a strip pixel buffer to every configured
// transport.
func (d *Driver) SendLEDStripFrame(pixels []byte) error {
	if d.primary != nil {
		if err := d.primary.SendLEDStripFrame(pixels); err != nil {
			return err
		}
	}
	if d.ws != nil {
		if err := d.ws.SendLEDStripFrame(pixels); err != nil {
			return err
		}
	}
	return nil
}

// SetBrightness sets brightness on the primary transport and broadcasts the
// same CMD packet to every connected WebSocket mirror client, so existing
// WS clients don't keep displaying a stale brightness after the handshake.
func (d *Driver) SetBrightness(level byte) error {
	if d.primary != nil {
		if err := d.primary.SetBrightness(level); err != nil {
			return err
		}
	}
	if d.ws != nil {
		return d.ws.SetBrightness(level)
	}
	return nil
}

// Brightness returns the primary transport's last-set brightness, or the
// WS mirror's if there is no primary transport configured.
func (d *Driver) Brightness() byte {
	if d.udp != nil {
		return d.udp.Brightness()
	}
	if d.ws != nil {
		return d.ws.Brightness()
	}
	return 0
}
