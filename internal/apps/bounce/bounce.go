// Package bounce is a demo application: a filled circle tweened back and
// forth across the matrix with eased acceleration, procedurally drawn
// each frame rather than rasterized from a stored sprite sheet.
package bounce

import (
	"image/color"

	"github.com/fogleman/gg"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/cerotheproto/ledmatrixd/internal/app"
	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

func init() {
	app.Register("bounce", func() app.App { return New() })
}

const ballRadius = 4.0

// App draws a ball bouncing between the left and right edges, tweening
// both its horizontal position (ease.OutBounce) and its hue (linear) each
// leg of the trip.
type App struct {
	app.Base

	Width, Height int

	tweenX  *gween.Tween
	tweenHue *gween.Tween
	x       float32
	hue     float32
	goingRight bool
}

// New constructs a 64x32 bounce app.
func New() *App {
	return &App{
		Base:   app.Base{AppName: "bounce"},
		Width:  64,
		Height: 32,
	}
}

// Start resets the ball to the left edge and begins its first leg.
func (a *App) Start() {
	a.goingRight = true
	a.x = ballRadius
	a.hue = 0
	a.startLeg()
}

func (a *App) startLeg() {
	from := float32(ballRadius)
	to := float32(a.Width) - ballRadius
	if !a.goingRight {
		from, to = to, from
	}
	a.tweenX = gween.New(from, to, 1.4, ease.OutBounce)
	toHue := float32(1.0)
	if !a.goingRight {
		toHue = 0.0
	}
	a.tweenHue = gween.New(a.hue, toHue, 1.4, ease.Linear)
}

// Update advances the position/hue tweens, flipping direction and
// starting the next leg whenever the current one finishes.
func (a *App) Update(dt float64, events []app.Event) {
	if a.tweenX == nil {
		a.startLeg()
	}
	x, doneX := a.tweenX.Update(float32(dt))
	hue, doneHue := a.tweenHue.Update(float32(dt))
	a.x = x
	a.hue = hue
	if doneX && doneHue {
		a.goingRight = !a.goingRight
		a.startLeg()
	}
}

// Render procedurally draws the ball with gg onto an RGBA canvas the size
// of the matrix, then copies it into a Frame.
func (a *App) Render() (*frame.FrameDescription, *frame.Frame, *frame.Frame) {
	dc := gg.NewContext(a.Width, a.Height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	r, g, b := hueToRGB(float64(a.hue))
	dc.SetColor(color.RGBA{R: r, G: g, B: b, A: 255})
	y := float64(a.Height) / 2.0
	dc.DrawCircle(float64(a.x), y, ballRadius)
	dc.Fill()

	img := dc.Image()
	f := frame.New(a.Width, a.Height)
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			f.SetPixel(x, y, byte(cr>>8), byte(cg>>8), byte(cb>>8))
		}
	}
	return nil, f, nil
}

// HandleQuery reports that bounce has no queryable state.
func (a *App) HandleQuery(q app.Query) (any, error) {
	return nil, nil
}

func hueToRGB(h float64) (r, g, b byte) {
	h = h - float64(int(h))
	i := int(h * 6.0)
	f := h*6.0 - float64(i)
	switch i % 6 {
	case 0:
		return 255, byte(f * 255), 0
	case 1:
		return byte((1 - f) * 255), 255, 0
	case 2:
		return 0, 255, byte(f * 255)
	case 3:
		return 0, byte((1 - f) * 255), 255
	case 4:
		return byte(f * 255), 0, 255
	default:
		return 255, 0, byte((1 - f) * 255)
	}
}
