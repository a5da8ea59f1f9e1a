package effects

import (
	"testing"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

func whiteFrame(w, h int) *frame.Frame {
	f := frame.New(w, h)
	for i := range f.Pixels {
		f.Pixels[i] = 255
	}
	return f
}

func TestRainbowFadesInBeforeTintingFrame(t *testing.T) {
	r := NewRainbow()
	r.FadeInDuration = 1.0
	f := whiteFrame(4, 4)

	r.Apply(f, 0.1)
	if r.State() != frame.StateFadeIn {
		t.Fatalf("expected still fading in after 0.1s of a 1s fade, got state %v", r.State())
	}

	r.Apply(f, 2.0)
	if r.State() != frame.StateRunning {
		t.Fatalf("expected running after fade-in duration elapses, got state %v", r.State())
	}
}

func TestRainbowStopTransitionsToFinished(t *testing.T) {
	r := NewRainbow()
	r.FadeOutDuration = 0.5
	f := whiteFrame(4, 4)

	r.Apply(f, 2.0) // reach Running
	r.RequestStop()
	r.Apply(f, 1.0) // fade-out duration fully elapsed

	if r.State() != frame.StateFinished {
		t.Fatalf("expected finished after fade-out elapses, got state %v", r.State())
	}
}

func TestRainbowLeavesBlackPixelsUntouched(t *testing.T) {
	r := NewRainbow()
	f := frame.New(2, 2) // all black
	r.Apply(f, 2.0)
	for _, v := range f.Pixels {
		if v != 0 {
			t.Fatalf("expected black pixels to remain untouched, got %v", f.Pixels)
		}
	}
}

func TestShakeDoesNothingAtZeroAmplitude(t *testing.T) {
	s := NewShake()
	s.Amplitude = 0
	f := whiteFrame(4, 4)
	before := append([]byte(nil), f.Pixels...)
	s.Apply(f, 1.0)
	for i, v := range f.Pixels {
		if v != before[i] {
			t.Fatalf("expected no change at zero amplitude, pixel %d changed", i)
		}
	}
}

func TestShakeOffsetStaysWithinAmplitudeBound(t *testing.T) {
	s := NewShake()
	s.Amplitude = 2.0
	s.Frequency = 1000.0 // resample every tick
	f := whiteFrame(8, 8)
	for i := 0; i < 50; i++ {
		s.Apply(f, 0.01)
		if s.shakeOffset[0] < -s.Amplitude-1e-9 || s.shakeOffset[0] > s.Amplitude+1e-9 {
			t.Fatalf("shake offset X %v exceeded amplitude %v", s.shakeOffset[0], s.Amplitude)
		}
		if s.shakeOffset[1] < -s.Amplitude-1e-9 || s.shakeOffset[1] > s.Amplitude+1e-9 {
			t.Fatalf("shake offset Y %v exceeded amplitude %v", s.shakeOffset[1], s.Amplitude)
		}
	}
}

func TestDizzyNoopAtZeroAmplitude(t *testing.T) {
	d := NewDizzy()
	d.Amplitude = 0
	f := whiteFrame(4, 4)
	before := append([]byte(nil), f.Pixels...)
	d.Apply(f, 1.0)
	for i, v := range f.Pixels {
		if v != before[i] {
			t.Fatalf("expected no distortion at zero amplitude, pixel %d changed", i)
		}
	}
}

func TestDizzyPreservesSolidColorUnderDistortion(t *testing.T) {
	d := NewDizzy()
	f := whiteFrame(8, 8)
	d.Apply(f, 0.5)
	for i, v := range f.Pixels {
		if v != 255 {
			t.Fatalf("expected a uniform white field to remain white under bilinear resampling, pixel %d = %d", i, v)
		}
	}
}

func TestColorOverrideRecolorsByBrightness(t *testing.T) {
	c := NewColorOverride()
	c.GlareEnabled = false
	c.BaseColor = frame.RGB{R: 0, G: 255, B: 0}

	f := whiteFrame(2, 2)
	c.Apply(f, 0)

	r, g, b := f.At(0, 0)
	if r != 0 || g != 255 || b != 0 {
		t.Fatalf("expected full-brightness white pixel recolored to base color, got (%d,%d,%d)", r, g, b)
	}
}

func TestColorOverrideLeavesBlackPixelsUntouched(t *testing.T) {
	c := NewColorOverride()
	c.GlareEnabled = false
	f := frame.New(2, 2)
	c.Apply(f, 0)
	for _, v := range f.Pixels {
		if v != 0 {
			t.Fatalf("expected black pixels untouched by recoloring, got %v", f.Pixels)
		}
	}
}

func TestWiggleNoopWithoutSpriteLayers(t *testing.T) {
	w := NewWiggle()
	fill := &frame.Layer{Kind: frame.LayerFill}
	layers := []*frame.Layer{fill}
	w.Apply(layers, 0.1)
	// No sprite layers means Apply should return without touching state.
	if len(w.spriteStates) != 0 {
		t.Fatalf("expected no sprite state for a fill-only layer list")
	}
}

func TestWiggleMovesSpriteAwayFromBaseline(t *testing.T) {
	w := NewWiggle()
	w.Amplitude = 4.0
	seed := int64(42)
	w.Seed = &seed

	sprite := &frame.Layer{Kind: frame.LayerSprite, Slot: 1, SpriteX: 10, SpriteY: 10}
	layers := []*frame.Layer{sprite}

	for i := 0; i < 30; i++ {
		w.ApplyTick(layers, 1.0/30.0, int64(i))
	}

	if sprite.SpriteX == 10 && sprite.SpriteY == 10 {
		t.Fatal("expected wiggle to perturb sprite position away from its baseline")
	}
}

func TestWiggleSameTickIsIdempotent(t *testing.T) {
	w := NewWiggle()
	w.Amplitude = 4.0
	sprite := &frame.Layer{Kind: frame.LayerSprite, Slot: 1, SpriteX: 10, SpriteY: 10}
	layers := []*frame.Layer{sprite}

	w.ApplyTick(layers, 1.0/30.0, 5)
	x1, y1 := sprite.SpriteX, sprite.SpriteY
	w.ApplyTick(layers, 1.0/30.0, 5)
	x2, y2 := sprite.SpriteX, sprite.SpriteY

	if x1 != x2 || y1 != y2 {
		t.Fatalf("expected repeat calls at the same tick to be idempotent, got (%v,%v) then (%v,%v)", x1, y1, x2, y2)
	}
}

func TestWiggleCleanupRestoresBaseline(t *testing.T) {
	w := NewWiggle()
	w.Amplitude = 4.0
	sprite := &frame.Layer{Kind: frame.LayerSprite, Slot: 1, SpriteX: 10, SpriteY: 10}
	layers := []*frame.Layer{sprite}

	for i := 0; i < 10; i++ {
		w.ApplyTick(layers, 1.0/30.0, int64(i))
	}
	w.Cleanup(layers)

	if sprite.SpriteX != 10 || sprite.SpriteY != 10 {
		t.Fatalf("expected Cleanup to restore baseline position, got (%v,%v)", sprite.SpriteX, sprite.SpriteY)
	}
}
