package render

import (
	"math"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

// renderSubpixelSprite distributes an RGBA bitmap into frame f at the
// fractional position (x, y) using bilinear-weighted premultiplied-alpha
// accumulation into an expanded (h+1)x(w+1) buffer, then writes only the
// pixels whose accumulated alpha exceeds 0.5, un-premultiplying those.
// Pixels at or below the threshold are left untouched (no blend with
// background) — hard edges with interpolated interior color.
func renderSubpixelSprite(f *frame.Frame, pixels []byte, spriteW, spriteH int, x, y float64) {
	if spriteW <= 0 || spriteH <= 0 || len(pixels) < spriteW*spriteH*4 {
		return
	}

	xInt := int(math.Floor(x))
	yInt := int(math.Floor(y))
	fx := x - float64(xInt)
	fy := y - float64(yInt)

	w00 := (1 - fx) * (1 - fy)
	w10 := fx * (1 - fy)
	w01 := (1 - fx) * fy
	w11 := fx * fy

	ew := spriteW + 1
	eh := spriteH + 1
	// expanded holds premultiplied RGBA accumulators, 4 floats per cell.
	expanded := make([]float64, ew*eh*4)

	accum := func(dx, dy int, weight float64) {
		if weight == 0 {
			return
		}
		for sy := 0; sy < spriteH; sy++ {
			for sx := 0; sx < spriteW; sx++ {
				si := (sy*spriteW + sx) * 4
				a := float64(pixels[si+3]) / 255.0
				r := float64(pixels[si]) * a
				g := float64(pixels[si+1]) * a
				b := float64(pixels[si+2]) * a

				ex := sx + dx
				ey := sy + dy
				ei := (ey*ew + ex) * 4
				expanded[ei] += r * weight
				expanded[ei+1] += g * weight
				expanded[ei+2] += b * weight
				expanded[ei+3] += a * weight
			}
		}
	}

	accum(0, 0, w00)
	accum(1, 0, w10)
	accum(0, 1, w01)
	accum(1, 1, w11)

	expXStart := maxInt(0, xInt)
	expYStart := maxInt(0, yInt)
	expXEnd := minInt(f.Width, xInt+ew)
	expYEnd := minInt(f.Height, yInt+eh)
	if expXStart >= expXEnd || expYStart >= expYEnd {
		return
	}

	offX := expXStart - xInt
	offY := expYStart - yInt

	for fy := expYStart; fy < expYEnd; fy++ {
		ey := offY + (fy - expYStart)
		for fxp := expXStart; fxp < expXEnd; fxp++ {
			ex := offX + (fxp - expXStart)
			ei := (ey*ew + ex) * 4
			alpha := expanded[ei+3]
			if alpha <= 0.5 {
				continue
			}
			r := expanded[ei] / alpha
			g := expanded[ei+1] / alpha
			b := expanded[ei+2] / alpha
			f.SetPixel(fxp, fy, clampByte(r), clampByte(g), clampByte(b))
		}
	}
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v + 0.5)
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
