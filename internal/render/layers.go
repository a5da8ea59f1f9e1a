package render

import (
	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

func fillLayer(f *frame.Frame, l *frame.Layer) {
	r, g, b := l.FillColor.R, l.FillColor.G, l.FillColor.B
	for i := 0; i < len(f.Pixels); i += 3 {
		f.Pixels[i] = r
		f.Pixels[i+1] = g
		f.Pixels[i+2] = b
	}
}

func rectLayer(f *frame.Frame, l *frame.Layer) {
	xStart := clampInt(int(l.X), 0, f.Width)
	yStart := clampInt(int(l.Y), 0, f.Height)
	xEnd := clampInt(int(l.X+l.W), 0, f.Width)
	yEnd := clampInt(int(l.Y+l.H), 0, f.Height)
	if xStart >= xEnd || yStart >= yEnd {
		return
	}

	r, g, b, a := float64(l.RectColor.R), float64(l.RectColor.G), float64(l.RectColor.B), float64(l.RectColor.A)
	alpha := a / 255.0

	for y := yStart; y < yEnd; y++ {
		for x := xStart; x < xEnd; x++ {
			dr, dg, db := f.At(x, y)
			nr := r*alpha + float64(dr)*(1-alpha)
			ng := g*alpha + float64(dg)*(1-alpha)
			nb := b*alpha + float64(db)*(1-alpha)
			f.SetPixel(x, y, byte(nr), byte(ng), byte(nb))
		}
	}
}

func spriteLayer(f *frame.Frame, l *frame.Layer) {
	renderSubpixelSprite(f, l.Pixels, l.SpriteW, l.SpriteH, l.SpriteX, l.SpriteY)
}

func animatedSpriteLayer(f *frame.Frame, l *frame.Layer, dt float64) {
	l.Advance(dt)
	pixels := l.CurrentPixels()
	renderSubpixelSprite(f, pixels, l.SpriteW, l.SpriteH, l.SpriteX, l.SpriteY)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
