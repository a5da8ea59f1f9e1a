package effects

import (
	"math"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

// Rainbow overlays an HSV spectrum on every non-black pixel, advancing its
// own fade-in/running/fade-out/finished lifecycle explicitly (state,
// fadeProgress, isStopping are distinct fields rather than implicit
// bookkeeping).
type Rainbow struct {
	baseEffect

	Speed          float64
	UsePosition    bool
	FadeInDuration float64
	FadeOutDuration float64

	phase        float64
	state        frame.EffectState
	fadeProgress float64
	isStopping   bool
}

// NewRainbow constructs a Rainbow effect with the teacher-observed defaults.
func NewRainbow() *Rainbow {
	return &Rainbow{Speed: 1.0, UsePosition: true, FadeInDuration: 1.0, FadeOutDuration: 1.0, state: frame.StateFadeIn}
}

func (r *Rainbow) Kind() frame.EffectKind        { return frame.EffectRainbow }
func (r *Rainbow) Cleanup(layers []*frame.Layer) {}

// Phase exposes the current rotation phase for the LED-strip derivation's
// rainbow-synchronized mode.
func (r *Rainbow) Phase() float64 { return r.phase }

// State reports the explicit lifecycle state.
func (r *Rainbow) State() frame.EffectState { return r.state }

// RequestStop marks the effect for fade-out; it becomes StateFinished once
// its fade-out duration elapses.
func (r *Rainbow) RequestStop() { r.isStopping = true }

// IsStopping reports whether RequestStop has already been called.
func (r *Rainbow) IsStopping() bool { return r.isStopping }

func (r *Rainbow) Apply(f *frame.Frame, dt float64) {
	if r.Speed <= 0.001 {
		return
	}

	if r.isStopping && r.state != frame.StateFadeOut && r.state != frame.StateFinished {
		r.state = frame.StateFadeOut
	}

	switch r.state {
	case frame.StateFadeIn:
		dur := r.FadeInDuration
		if dur < 0.001 {
			dur = 0.001
		}
		r.fadeProgress += dt / dur
		if r.fadeProgress >= 1.0 {
			r.fadeProgress = 1.0
			r.state = frame.StateRunning
		}
	case frame.StateRunning:
		r.fadeProgress = 1.0
	case frame.StateFadeOut:
		dur := r.FadeOutDuration
		if dur < 0.001 {
			dur = 0.001
		}
		r.fadeProgress -= dt / dur
		if r.fadeProgress <= 0.0 {
			r.fadeProgress = 0.0
			r.state = frame.StateFinished
			return
		}
	case frame.StateFinished:
		return
	}

	r.phase += dt * r.Speed * 2.0 * math.Pi
	if r.phase > 2.0*math.Pi {
		r.phase -= 2.0 * math.Pi
	}

	w, h := f.Width, f.Height
	if w == 0 || h == 0 {
		return
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			rr, gg, bb := f.Pixels[i], f.Pixels[i+1], f.Pixels[i+2]
			brightness := maxByte(rr, gg, bb)
			if brightness == 0 {
				continue
			}

			var hue float64
			if r.UsePosition {
				hue = (float64(y)/float64(maxInt(h, 1)) - float64(x)/float64(maxInt(w, 1))) * 0.5
				hue = math.Mod(hue+r.phase/(2.0*math.Pi), 1.0)
			} else {
				hue = math.Mod(r.phase/(2.0*math.Pi), 1.0)
			}
			if hue < 0 {
				hue += 1.0
			}

			rc, gc, bc := hsvToRGB(hue, 1.0, float64(brightness)/255.0)

			finalR := float64(rr)*(1.0-r.fadeProgress) + float64(rc)*r.fadeProgress
			finalG := float64(gg)*(1.0-r.fadeProgress) + float64(gc)*r.fadeProgress
			finalB := float64(bb)*(1.0-r.fadeProgress) + float64(bc)*r.fadeProgress

			f.Pixels[i] = clampByte(finalR)
			f.Pixels[i+1] = clampByte(finalG)
			f.Pixels[i+2] = clampByte(finalB)
		}
	}
}
