package frame

// RGBA is an 8-bit-per-channel color with alpha.
type RGBA struct {
	R, G, B, A byte
}

// RGB is an 8-bit-per-channel color without alpha.
type RGB struct {
	R, G, B byte
}

// LayerKind tags the active variant of a Layer.
type LayerKind int

const (
	LayerFill LayerKind = iota
	LayerRect
	LayerSprite
	LayerAnimatedSprite
	LayerText
)

// SlotID is a stable per-layer identifier used by effects that keep
// per-layer state (Wiggle) across ticks. Callers assign it when building a
// FrameDescription's layer list; it must stay stable across ticks for the
// same logical layer and need not be stable across FrameDescriptions.
type SlotID uint32

// Layer is a tagged union over the five drawable variants. Only the fields
// relevant to Kind are meaningful; the renderer switches on Kind.
type Layer struct {
	Kind LayerKind
	Slot SlotID

	// Fill
	FillColor RGBA

	// Rect
	X, Y, W, H float64
	RectColor  RGBA

	// Sprite / AnimatedSprite (when Kind == LayerAnimatedSprite, Pixels is
	// ignored in favor of Frames/Durations)
	Pixels        []byte // RGBA, len == SpriteW*SpriteH*4
	SpriteW       int
	SpriteH       int
	SpriteX       float64
	SpriteY       float64

	// AnimatedSprite
	Frames        [][]byte // each RGBA, len == SpriteW*SpriteH*4
	Durations     []float64
	CurrentFrame  int
	Elapsed       float64
	Loop          bool
	OnComplete    func()
	completedOnce bool

	// Text
	Text     string
	FontSize int
	FontPath string
	TextColor RGBA
}

// Advance advances an AnimatedSprite layer's frame index by dt, wrapping or
// clamping per Loop, and firing OnComplete exactly once when the animation
// finishes a non-looping cycle.
func (l *Layer) Advance(dt float64) {
	if l.Kind != LayerAnimatedSprite || len(l.Durations) == 0 {
		return
	}
	l.Elapsed += dt
	for l.Elapsed >= l.Durations[l.CurrentFrame] {
		l.Elapsed -= l.Durations[l.CurrentFrame]
		l.CurrentFrame++
		if l.CurrentFrame >= len(l.Frames) {
			if l.Loop {
				l.CurrentFrame = 0
			} else {
				l.CurrentFrame = len(l.Frames) - 1
				if !l.completedOnce {
					l.completedOnce = true
					if l.OnComplete != nil {
						l.OnComplete()
					}
					l.OnComplete = nil
				}
				break
			}
		}
	}
}

// CurrentPixels returns the RGBA bitmap to rasterize this tick for a
// Sprite or AnimatedSprite layer.
func (l *Layer) CurrentPixels() []byte {
	if l.Kind == LayerAnimatedSprite {
		if l.CurrentFrame < 0 || l.CurrentFrame >= len(l.Frames) {
			return nil
		}
		return l.Frames[l.CurrentFrame]
	}
	return l.Pixels
}

// EffectKind tags the active variant of an Effect.
type EffectKind int

const (
	EffectWiggle EffectKind = iota
	EffectDizzy
	EffectRainbow
	EffectShake
	EffectColorOverride
)

// EffectState is the explicit fade lifecycle shared by effects that support
// fade in/out (currently Rainbow).
type EffectState int

const (
	StateFadeIn EffectState = iota
	StateRunning
	StateFadeOut
	StateFinished
)

// FrameDescription is the declarative tree rendered per tick: an ordered
// layer list (painter's algorithm) plus an ordered effect set.
type FrameDescription struct {
	Width   int
	Height  int
	Layers  []*Layer
	Effects []Effect
}

// Effect is implemented by every effect variant. Cleanup restores any
// per-layer mutation performed by the effect (only Wiggle needs this).
type Effect interface {
	ID() string
	SetID(string)
	Kind() EffectKind
	Cleanup(layers []*Layer)
}
