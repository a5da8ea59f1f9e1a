package effects

import (
	"math"
	"math/rand"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

type glareBand struct {
	diagonalPos float64
	bandWidth   float64
}

// ColorOverride recolors every non-black pixel to BaseColor scaled by its
// original brightness, optionally overlaying GlareCount fixed diagonal
// Gaussian bands blended toward GlareColor, positioned once from a
// seedable RNG the first time the effect runs.
type ColorOverride struct {
	baseEffect

	BaseColor      frame.RGB
	GlareEnabled   bool
	GlareColor     frame.RGB
	GlareIntensity float64
	GlareCount     int
	Seed           *int64

	rng       *rand.Rand
	positions []glareBand
}

// NewColorOverride constructs a ColorOverride effect with the
// teacher-observed defaults.
func NewColorOverride() *ColorOverride {
	return &ColorOverride{
		BaseColor:      frame.RGB{R: 255, G: 255, B: 255},
		GlareEnabled:   true,
		GlareColor:     frame.RGB{R: 255, G: 255, B: 255},
		GlareIntensity: 0.6,
		GlareCount:     3,
	}
}

func (c *ColorOverride) Kind() frame.EffectKind      { return frame.EffectColorOverride }
func (c *ColorOverride) Cleanup(layers []*frame.Layer) {}

func (c *ColorOverride) Apply(f *frame.Frame, dt float64) {
	w, h := f.Width, f.Height
	if w == 0 || h == 0 {
		return
	}

	baseR, baseG, baseB := float64(c.BaseColor.R), float64(c.BaseColor.G), float64(c.BaseColor.B)

	if c.GlareEnabled {
		if c.rng == nil {
			c.rng = newRNG(c.Seed)
		}
		if c.positions == nil {
			c.positions = make([]glareBand, 0, c.GlareCount)
			for i := 0; i < c.GlareCount; i++ {
				c.positions = append(c.positions, glareBand{
					diagonalPos: c.rng.Float64(),
					bandWidth:   0.05 + c.rng.Float64()*(0.15-0.05),
				})
			}
		}
	}

	glareR, glareG, glareB := float64(c.GlareColor.R), float64(c.GlareColor.G), float64(c.GlareColor.B)

	for y := 0; y < h; y++ {
		yNorm := float64(y) / float64(maxInt(h, 1))
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			rr, gg, bb := f.Pixels[i], f.Pixels[i+1], f.Pixels[i+2]
			brightness := float64(maxByte(rr, gg, bb))
			if brightness == 0 {
				continue
			}

			scale := brightness / 255.0
			pr := baseR * scale
			pg := baseG * scale
			pb := baseB * scale

			if c.GlareEnabled {
				xNorm := float64(x) / float64(maxInt(w, 1))
				diagonal := (yNorm + xNorm) / 2.0
				for _, band := range c.positions {
					dist := diagonal - band.diagonalPos
					gradient := math.Exp(-(dist * dist) / (2.0 * band.bandWidth * band.bandWidth))
					// blended_color mixes the raw base/glare colors (not
					// brightness-scaled), matching the original's exact
					// per-band recombination quirk.
					blendedR := baseR*(1-gradient) + glareR*gradient
					blendedG := baseG*(1-gradient) + glareG*gradient
					blendedB := baseB*(1-gradient) + glareB*gradient
					pr = pr*(1-c.GlareIntensity) + blendedR*c.GlareIntensity
					pg = pg*(1-c.GlareIntensity) + blendedG*c.GlareIntensity
					pb = pb*(1-c.GlareIntensity) + blendedB*c.GlareIntensity
				}
			}

			f.Pixels[i] = clampByte(pr)
			f.Pixels[i+1] = clampByte(pg)
			f.Pixels[i+2] = clampByte(pb)
		}
	}
}
