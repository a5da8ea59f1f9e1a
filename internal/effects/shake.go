package effects

import (
	"math"
	"math/rand"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

// Shake resamples a random integer pixel offset at most Frequency times
// per second and holds it between resamples, translating the whole frame
// and filling revealed area with black.
type Shake struct {
	baseEffect

	Amplitude float64
	Frequency float64
	Seed      *int64

	rng         *rand.Rand
	shakeTime   float64
	shakeOffset [2]float64
}

// NewShake constructs a Shake effect with the teacher-observed defaults.
func NewShake() *Shake {
	return &Shake{Amplitude: 2.0, Frequency: 10.0}
}

func (s *Shake) Kind() frame.EffectKind      { return frame.EffectShake }
func (s *Shake) Cleanup(layers []*frame.Layer) {}

func (s *Shake) Apply(f *frame.Frame, dt float64) {
	if s.Amplitude <= 0.001 {
		return
	}
	if s.rng == nil {
		s.rng = newRNG(s.Seed)
	}

	changeInterval := 1.0 / math.Max(s.Frequency, 0.1)
	s.shakeTime += dt

	if s.shakeTime >= changeInterval {
		s.shakeTime -= changeInterval
		sigma := s.Amplitude / 3.0
		ox := s.rng.NormFloat64() * sigma
		oy := s.rng.NormFloat64() * sigma
		s.shakeOffset[0] = clampFloat(ox, -s.Amplitude, s.Amplitude)
		s.shakeOffset[1] = clampFloat(oy, -s.Amplitude, s.Amplitude)
	}

	w, h := f.Width, f.Height
	if w == 0 || h == 0 {
		return
	}

	offsetX := int(math.Round(s.shakeOffset[0]))
	offsetY := int(math.Round(s.shakeOffset[1]))
	if offsetX == 0 && offsetY == 0 {
		return
	}

	applyOffset(f, offsetX, offsetY)
}

func applyOffset(f *frame.Frame, offsetX, offsetY int) {
	w, h := f.Width, f.Height
	result := make([]byte, len(f.Pixels))

	srcYStart := maxInt(0, -offsetY)
	srcYEnd := minInt(h, h-offsetY)
	dstYStart := maxInt(0, offsetY)

	srcXStart := maxInt(0, -offsetX)
	srcXEnd := minInt(w, w-offsetX)
	dstXStart := maxInt(0, offsetX)

	srcHeight := srcYEnd - srcYStart
	srcWidth := srcXEnd - srcXStart
	if srcHeight <= 0 || srcWidth <= 0 {
		copy(f.Pixels, result)
		return
	}

	for row := 0; row < srcHeight; row++ {
		srcRow := srcYStart + row
		dstRow := dstYStart + row
		if dstRow < 0 || dstRow >= h {
			continue
		}
		srcOff := (srcRow*w + srcXStart) * 3
		dstOff := (dstRow*w + dstXStart) * 3
		n := srcWidth * 3
		copy(result[dstOff:dstOff+n], f.Pixels[srcOff:srcOff+n])
	}

	copy(f.Pixels, result)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
