// Package display expands a single 64x32 matrix render into the physical
//128x32 panel layout and applies an optional left/right mirror.
package display

import "github.com/cerotheproto/ledmatrixd/internal/frame"

// MirrorMode selects which half of the 128x32 output is horizontally
// flipped: for a 64x32 input that half is a mirror of the other, for a
// 128x32 input it is the same half flipped in place.
type MirrorMode int

const (
	MirrorNone MirrorMode = iota
	MirrorLeft
	MirrorRight
)

// Manager holds the active mirror mode and expands/mirrors frames passed
// through Process.
type Manager struct {
	Mode MirrorMode
}

// New constructs a Manager with mirroring disabled.
func New() *Manager {
	return &Manager{Mode: MirrorNone}
}

// SetMirrorMode changes the active mirror mode.
func (m *Manager) SetMirrorMode(mode MirrorMode) {
	m.Mode = mode
}

// Process expands a 64x32 frame to 128x32 (duplicating or mirroring the
// source into each half per Mode), applies Mode to an already-128x32
// frame's two halves, or passes any other size through unchanged.
func (m *Manager) Process(f *frame.Frame) *frame.Frame {
	if f.Width == 64 && f.Height == 32 {
		return m.expandAndMirror(f)
	}

	if f.Width == 128 && f.Height == 32 {
		if m.Mode == MirrorNone {
			return f
		}

		result := frame.New(128, 32)
		copyHalf(result, f, 0, 0)
		copyHalf(result, f, 64, 64)

		switch m.Mode {
		case MirrorLeft:
			mirrorHalfInto(result, f, 0, 0)
		case MirrorRight:
			mirrorHalfInto(result, f, 64, 64)
		}
		return result
	}

	return f
}

func (m *Manager) expandAndMirror(f *frame.Frame) *frame.Frame {
	expanded := frame.New(128, 32)

	switch m.Mode {
	case MirrorNone:
		copyHalf(expanded, f, 0, 0)
		copyHalf(expanded, f, 64, 0)
	case MirrorLeft:
		mirrorHalfInto(expanded, f, 0, 0)
		copyHalf(expanded, f, 64, 0)
	case MirrorRight:
		copyHalf(expanded, f, 0, 0)
		mirrorHalfInto(expanded, f, 64, 0)
	}

	return expanded
}

// copyHalf copies f's 64-wide column range starting at srcX into dst's
// 64-wide column range starting at dstX, for every row of f.
func copyHalf(dst, src *frame.Frame, dstX, srcX int) {
	for y := 0; y < src.Height; y++ {
		for x := 0; x < 64; x++ {
			r, g, b := src.At(srcX+x, y)
			dst.SetPixel(dstX+x, y, r, g, b)
		}
	}
}

// mirrorHalfInto writes a horizontally-flipped copy of src's 64-wide
// column range starting at srcX into dst's 64-wide range at dstX.
func mirrorHalfInto(dst, src *frame.Frame, dstX, srcX int) {
	for y := 0; y < src.Height; y++ {
		for x := 0; x < 64; x++ {
			r, g, b := src.At(srcX+x, y)
			dst.SetPixel(dstX+63-x, y, r, g, b)
		}
	}
}
