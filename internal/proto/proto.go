// Package proto implements the UDP wire protocol (v4): a 9-byte
// CRC8-protected header, RLE pixel compression, and the packet types
// exchanged with the matrix/strip firmware.
package proto

import (
	"encoding/binary"
	"fmt"
)

// Sync marks the start of every packet header.
const Sync uint16 = 0xAA55

// ProtocolVersion is the current wire version this package packs/unpacks.
const ProtocolVersion byte = 0x04

// Packet type identifiers.
const (
	TypeCmd           byte = 0x01
	TypeFrame         byte = 0x02
	TypeInfo          byte = 0x03
	TypeLEDStripFrame byte = 0x05
	TypeButton        byte = 0x06
)

// FrameFlagCompressed marks a FRAME/LED_STRIP_FRAME payload's pixel data
// as RLE-encoded.
const FrameFlagCompressed byte = 1 << 0

// HeaderSize is the packed header length: SYNC(2) VER(1) TYPE(1) LEN(2)
// SEQ(2) CRC8(1).
const HeaderSize = 9

// crc8 computes CRC-8/SMBUS (poly 0x07, init 0x00, no reflection, no
// xorout) over data, matching the firmware's header checksum.
func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Packet is one parsed or to-be-sent protocol message.
type Packet struct {
	Sync    uint16
	Version byte
	Type    byte
	Seq     uint16
	Payload []byte
	CRC8    byte
}

// NewPacket constructs a packet with the default sync/version fields.
func NewPacket(ptype byte, seq uint16, payload []byte) *Packet {
	return &Packet{Sync: Sync, Version: ProtocolVersion, Type: ptype, Seq: seq, Payload: payload}
}

// PackHeader packs the header fields, computes and stores CRC8 over the
// CRC-less header, and returns the full 9-byte header.
func (p *Packet) PackHeader() []byte {
	header := make([]byte, HeaderSize-1)
	binary.LittleEndian.PutUint16(header[0:2], p.Sync)
	header[2] = p.Version
	header[3] = p.Type
	binary.LittleEndian.PutUint16(header[4:6], uint16(len(p.Payload)))
	binary.LittleEndian.PutUint16(header[6:8], p.Seq)

	p.CRC8 = crc8(header)
	return append(header, p.CRC8)
}

// Pack serializes the full packet (header + payload).
func (p *Packet) Pack() []byte {
	header := p.PackHeader()
	out := make([]byte, 0, len(header)+len(p.Payload))
	out = append(out, header...)
	out = append(out, p.Payload...)
	return out
}

// Unpack parses data into a Packet, validating the header CRC8 and SYNC
// marker and requiring the full payload to be present.
func Unpack(data []byte) (*Packet, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("data too short for header: %d bytes", len(data))
	}

	headerNoCRC := data[:HeaderSize-1]
	crcInPacket := data[HeaderSize-1]

	calc := crc8(headerNoCRC)
	if calc != crcInPacket {
		return nil, fmt.Errorf("header CRC8 mismatch: got %#02x, calc %#02x", crcInPacket, calc)
	}

	sync := binary.LittleEndian.Uint16(headerNoCRC[0:2])
	ver := headerNoCRC[2]
	ptype := headerNoCRC[3]
	length := binary.LittleEndian.Uint16(headerNoCRC[4:6])
	seq := binary.LittleEndian.Uint16(headerNoCRC[6:8])

	if sync != Sync {
		return nil, fmt.Errorf("bad SYNC: %#04x", sync)
	}

	totalLen := HeaderSize + int(length)
	if len(data) < totalLen {
		return nil, fmt.Errorf("data too short for full packet: need %d, have %d", totalLen, len(data))
	}

	payload := data[HeaderSize:totalLen]

	return &Packet{Sync: sync, Version: ver, Type: ptype, Seq: seq, Payload: payload, CRC8: crcInPacket}, nil
}

// MakeCmd builds a TYPE_CMD packet: payload is cmdID followed by args.
func MakeCmd(cmdID byte, args []byte, seq uint16) *Packet {
	payload := append([]byte{cmdID}, args...)
	return NewPacket(TypeCmd, seq, payload)
}

// MakeFrame builds a TYPE_FRAME packet for a full 128x32 matrix frame,
// RLE-compressing pixels when that's smaller than the raw data.
func MakeFrame(frameID uint16, pixels []byte, seq uint16, compress bool) *Packet {
	return makeFramePacket(TypeFrame, frameID, pixels, seq, compress)
}

// MakeLEDStripFrame builds a TYPE_LED_STRIP_FRAME packet for an
// arbitrary-length strip pixel buffer.
func MakeLEDStripFrame(frameID uint16, pixels []byte, seq uint16, compress bool) *Packet {
	return makeFramePacket(TypeLEDStripFrame, frameID, pixels, seq, compress)
}

func makeFramePacket(ptype byte, frameID uint16, pixels []byte, seq uint16, compress bool) *Packet {
	flags := byte(0)
	pixelData := pixels
	if compress {
		compressed := RLEEncode(pixels)
		if len(compressed) < len(pixels) {
			pixelData = compressed
			flags |= FrameFlagCompressed
		}
	}

	payload := make([]byte, 0, 3+len(pixelData))
	idBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(idBuf, frameID)
	payload = append(payload, idBuf...)
	payload = append(payload, flags)
	payload = append(payload, pixelData...)

	return NewPacket(ptype, seq, payload)
}

// MakeInfo builds a TYPE_INFO packet carrying the current brightness.
func MakeInfo(brightness byte, seq uint16) *Packet {
	return NewPacket(TypeInfo, seq, []byte{brightness})
}

// CmdPayload is TYPE_CMD's decoded payload.
type CmdPayload struct {
	ID   *byte
	Data []byte
}

// FramePayload is TYPE_FRAME/TYPE_LED_STRIP_FRAME's decoded payload.
type FramePayload struct {
	FrameID uint16
	Flags   byte
	Pixels  []byte
}

// InfoPayload is TYPE_INFO's decoded payload, as sent by the device
// (firmware version + brightness). MakeInfo, in contrast, builds the
// client-to-device direction of TYPE_INFO which carries only the
// brightness to set — the two directions of this packet type are
// asymmetric, matching the original protocol.
type InfoPayload struct {
	FWVersion  uint16
	Brightness byte
}

// ButtonPayload is TYPE_BUTTON's decoded payload.
type ButtonPayload struct {
	ButtonID byte
}

// ParseCmd decodes a TYPE_CMD payload.
func (p *Packet) ParseCmd() (*CmdPayload, error) {
	if len(p.Payload) == 0 {
		return &CmdPayload{}, nil
	}
	id := p.Payload[0]
	return &CmdPayload{ID: &id, Data: p.Payload[1:]}, nil
}

// ParseFrame decodes a TYPE_FRAME or TYPE_LED_STRIP_FRAME payload,
// RLE-decoding the pixel data when its compressed flag is set.
// expectedPixels bounds the decode (128*32 for the matrix, arbitrary for
// the strip).
func (p *Packet) ParseFrame(expectedPixels int) (*FramePayload, error) {
	if len(p.Payload) < 3 {
		return nil, fmt.Errorf("frame payload too short")
	}
	frameID := binary.LittleEndian.Uint16(p.Payload[0:2])
	flags := p.Payload[2]
	pixelData := p.Payload[3:]

	pixels := pixelData
	if flags&FrameFlagCompressed != 0 {
		pixels = RLEDecode(pixelData, expectedPixels)
	}

	return &FramePayload{FrameID: frameID, Flags: flags, Pixels: pixels}, nil
}

// ParseInfo decodes a device-originated TYPE_INFO payload (fw_ver uint16
// little-endian, then brightness).
func (p *Packet) ParseInfo() (*InfoPayload, error) {
	if len(p.Payload) < 3 {
		return nil, fmt.Errorf("info payload too short")
	}
	return &InfoPayload{
		FWVersion:  binary.LittleEndian.Uint16(p.Payload[0:2]),
		Brightness: p.Payload[2],
	}, nil
}

// ParseButton decodes a TYPE_BUTTON payload.
func (p *Packet) ParseButton() (*ButtonPayload, error) {
	if len(p.Payload) < 1 {
		return nil, fmt.Errorf("button payload too short")
	}
	return &ButtonPayload{ButtonID: p.Payload[0]}, nil
}
