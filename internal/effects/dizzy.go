package effects

import (
	"math"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

// Dizzy resamples the whole frame with a pair of sinusoidal offset fields,
// one driving horizontal displacement from the row coordinate and one
// driving vertical displacement from the column coordinate, producing a
// fluid "breathing" distortion rather than a rigid shake.
type Dizzy struct {
	baseEffect

	Amplitude     float64
	Speed         float64
	WaveScale     float64
	VerticalRatio float64

	phase float64
}

// NewDizzy constructs a Dizzy effect with the teacher-observed defaults.
func NewDizzy() *Dizzy {
	return &Dizzy{Amplitude: 0.8, Speed: 0.5, WaveScale: 2.0, VerticalRatio: 0.7}
}

func (d *Dizzy) Kind() frame.EffectKind      { return frame.EffectDizzy }
func (d *Dizzy) Cleanup(layers []*frame.Layer) {}

func (d *Dizzy) Apply(f *frame.Frame, dt float64) {
	if d.Amplitude <= 0.001 {
		return
	}
	d.phase += dt * d.Speed * 2.0 * math.Pi

	w, h := f.Width, f.Height
	if w == 0 || h == 0 {
		return
	}

	src := make([]byte, len(f.Pixels))
	copy(src, f.Pixels)

	for y := 0; y < h; y++ {
		yNorm := float64(y) / float64(maxInt(h, 1)) * d.WaveScale
		for x := 0; x < w; x++ {
			xNorm := float64(x) / float64(maxInt(w, 1)) * d.WaveScale

			offsetX := math.Sin(yNorm*math.Pi*2.0+d.phase) * d.Amplitude
			offsetY := math.Sin(xNorm*math.Pi*2.0+d.phase*1.3) * d.Amplitude * d.VerticalRatio

			srcX := float64(x) - offsetX
			srcY := float64(y) - offsetY

			r, g, b := bilinearSample(src, w, h, srcX, srcY)
			f.SetPixel(x, y, r, g, b)
		}
	}
}

func bilinearSample(pixels []byte, w, h int, srcX, srcY float64) (r, g, b byte) {
	if srcX < 0 {
		srcX = 0
	}
	if srcX > float64(w)-1.001 {
		srcX = float64(w) - 1.001
	}
	if srcY < 0 {
		srcY = 0
	}
	if srcY > float64(h)-1.001 {
		srcY = float64(h) - 1.001
	}

	x0 := int(srcX)
	y0 := int(srcY)
	x1 := minInt(x0+1, w-1)
	y1 := minInt(y0+1, h-1)

	fx := srcX - float64(x0)
	fy := srcY - float64(y0)

	at := func(x, y int) (float64, float64, float64) {
		i := (y*w + x) * 3
		return float64(pixels[i]), float64(pixels[i+1]), float64(pixels[i+2])
	}

	r00, g00, b00 := at(x0, y0)
	r01, g01, b01 := at(x1, y0)
	r10, g10, b10 := at(x0, y1)
	r11, g11, b11 := at(x1, y1)

	w00 := (1 - fx) * (1 - fy)
	w01 := fx * (1 - fy)
	w10 := (1 - fx) * fy
	w11 := fx * fy

	rf := r00*w00 + r01*w01 + r10*w10 + r11*w11
	gf := g00*w00 + g01*w01 + g10*w10 + g11*w11
	bf := b00*w00 + b01*w01 + b10*w10 + b11*w11

	return clampByte(rf), clampByte(gf), clampByte(bf)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
