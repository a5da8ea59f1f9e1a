package render

import (
	"image"
	"image/color"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

// loadFontFace resolves a TTF face from FontPath at the requested size, or
// falls back to golang.org/x/image's basicfont bitmap face when no path is
// given or the file cannot be parsed — mirroring the asset-load-failure
// policy of falling back to a default font rather than dropping the layer.
func loadFontFace(path string, size int) font.Face {
	if path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if f, err := truetype.Parse(data); err == nil {
				return truetype.NewFace(f, &truetype.Options{Size: float64(size)})
			}
		}
	}
	return basicfont.Face7x13
}

// textLayer rasterizes l.Text into a tight RGBA bitmap via a TrueType face
// (or the basicfont fallback), then treats the result as a Sprite.
func textLayer(f *frame.Frame, l *frame.Layer) {
	face := loadFontFace(l.FontPath, l.FontSize)

	drawer := &font.Drawer{Face: face}
	textW := drawer.MeasureString(l.Text).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()
	textH := ascent + descent
	if textW <= 0 || textH <= 0 {
		return
	}

	img := image.NewRGBA(image.Rect(0, 0, textW, textH))
	textColor := color.RGBA{l.TextColor.R, l.TextColor.G, l.TextColor.B, l.TextColor.A}
	drawer.Dst = img
	drawer.Src = image.NewUniform(textColor)
	drawer.Dot = fixed.P(0, ascent)
	drawer.DrawString(l.Text)

	rgba := make([]byte, textW*textH*4)
	for y := 0; y < textH; y++ {
		for x := 0; x < textW; x++ {
			c := img.RGBAAt(x, y)
			i := (y*textW + x) * 4
			rgba[i] = c.R
			rgba[i+1] = c.G
			rgba[i+2] = c.B
			rgba[i+3] = c.A
		}
	}

	renderSubpixelSprite(f, rgba, textW, textH, l.X, l.Y)
}
