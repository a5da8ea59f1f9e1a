package transition

import (
	"github.com/cerotheproto/ledmatrixd/internal/anim"
	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

// SimilarityThreshold is the auto-detect cutoff: similarity at or above
// this value selects MORPH, below it selects JUMP.
const SimilarityThreshold = 0.08

// Type names a frame-level transition variant.
type Type int

const (
	None Type = iota
	Crossfade
	Morph
	Jump
)

// frameTransition holds one active transition's captured endpoints and
// progress.
type frameTransition struct {
	from           *frame.Frame // nil for a pure fade-in
	to             *frame.Frame
	transitionType Type
	progress       anim.AnimatedParameter
	similarity     float64
	forceCrossfade bool
}

func (t *frameTransition) isComplete() bool {
	return t.progress.Value() >= 0.99
}

// Engine holds at most one active frame-level transition at a time.
type Engine struct {
	active         *frameTransition
	DefaultFrames  int
	DefaultMethod  anim.InterpolationMethod
	AutoDetectType bool
}

// NewEngine constructs an Engine with the teacher-observed defaults:
// 15-frame cosine transitions, auto-detection enabled.
func NewEngine() *Engine {
	return &Engine{
		DefaultFrames:  15,
		DefaultMethod:  anim.Cosine,
		AutoDetectType: true,
	}
}

// Start begins a new transition from (possibly nil) to to. If frames or
// method are zero-valued, the engine's defaults are used. When
// AutoDetectType is on and from is non-nil, the requested transitionType
// is overridden by the similarity-based selection (forceCrossfade from
// IsBrightToDark always wins regardless of the selected type).
func (e *Engine) Start(from, to *frame.Frame, transitionType Type, frames int, method anim.InterpolationMethod) {
	if frames <= 0 {
		frames = e.DefaultFrames
	}
	if method == 0 && e.DefaultMethod != 0 {
		method = e.DefaultMethod
	}

	t := &frameTransition{from: from, to: to, transitionType: transitionType}
	t.progress = anim.AnimatedParameter{Frames: frames, Method: method}
	t.progress.SetTarget(1.0)

	if from != nil {
		t.similarity = Similarity(from, to)
		t.forceCrossfade = IsBrightToDark(from, to)
	}

	if e.AutoDetectType && from != nil {
		if t.similarity >= SimilarityThreshold {
			t.transitionType = Morph
		} else {
			t.transitionType = Jump
		}
	}

	e.active = t
}

// StartTransition begins a transition using the engine's own defaults for
// frame count, interpolation method and type selection. It lets Engine
// satisfy app.TransitionStarter for app-switch handoffs, which never need
// to override those defaults.
func (e *Engine) StartTransition(from, to *frame.Frame) {
	e.Start(from, to, Jump, 0, 0)
}

// IsTransitioning reports whether a transition is in flight.
func (e *Engine) IsTransitioning() bool { return e.active != nil }

// Cancel discards the active transition immediately.
func (e *Engine) Cancel() { e.active = nil }

// Process advances the active transition by dt and returns the blended
// frame, or currentFrame unchanged if no transition is active or it has
// just completed.
func (e *Engine) Process(currentFrame *frame.Frame, dt float64) *frame.Frame {
	if e.active == nil {
		return currentFrame
	}

	e.active.progress.Update(dt)

	if e.active.isComplete() {
		e.active = nil
		return currentFrame
	}

	return e.apply(e.active, currentFrame)
}

func (e *Engine) apply(t *frameTransition, current *frame.Frame) *frame.Frame {
	progress := t.progress.Value()

	if t.from == nil {
		return fadeIn(current, progress)
	}

	if t.forceCrossfade {
		return crossfade(t.from, current, progress)
	}

	switch t.transitionType {
	case Crossfade:
		return crossfade(t.from, current, progress)
	case Morph:
		return morph(t.from, current, progress)
	case Jump:
		return jump(t.from, current, progress)
	default:
		return current
	}
}

func fadeIn(f *frame.Frame, t float64) *frame.Frame {
	result := frame.New(f.Width, f.Height)
	for i, v := range f.Pixels {
		result.Pixels[i] = clampByte(float64(v) * t)
	}
	return result
}

// crossfade and morph apply identical math (cosine-eased linear blend);
// MORPH is kept as a distinct Type only so auto-detection can name it.
func crossfade(from, to *frame.Frame, t float64) *frame.Frame {
	smoothT := anim.CosineInterpolation(0.0, 1.0, t)
	result := frame.New(to.Width, to.Height)
	for i := range result.Pixels {
		result.Pixels[i] = clampByte(anim.Lerp(float64(from.Pixels[i]), float64(to.Pixels[i]), smoothT))
	}
	return result
}

func morph(from, to *frame.Frame, t float64) *frame.Frame {
	return crossfade(from, to, t)
}

func jump(from, to *frame.Frame, t float64) *frame.Frame {
	height, width := to.Height, to.Width
	result := frame.New(width, height)

	fadeOut := 1.0 - t*t
	for i, v := range from.Pixels {
		result.Pixels[i] = clampByte(float64(v) * fadeOut)
	}

	currentY := int((1.0 - t) * float64(height))
	if currentY < height {
		for y := currentY; y < height; y++ {
			srcY := y - currentY
			for x := 0; x < width; x++ {
				si := (srcY*width + x) * 3
				r, g, b := to.Pixels[si], to.Pixels[si+1], to.Pixels[si+2]
				if r == 0 && g == 0 && b == 0 {
					continue
				}
				di := (y*width + x) * 3
				result.Pixels[di] = r
				result.Pixels[di+1] = g
				result.Pixels[di+2] = b
			}
		}
	}

	return result
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
