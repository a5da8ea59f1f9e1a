package render

import (
	"testing"

	"github.com/cerotheproto/ledmatrixd/internal/effects"
	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

func TestRenderFrameFillLayerCoversWholeFrame(t *testing.T) {
	desc := &frame.FrameDescription{
		Width:  4,
		Height: 4,
		Layers: []*frame.Layer{
			{Kind: frame.LayerFill, FillColor: frame.RGBA{R: 10, G: 20, B: 30, A: 255}},
		},
	}

	out := New().RenderFrame(desc, 0)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			r, g, b := out.At(x, y)
			if r != 10 || g != 20 || b != 30 {
				t.Fatalf("expected fill color at (%d,%d), got (%d,%d,%d)", x, y, r, g, b)
			}
		}
	}
}

func TestRenderFrameLayersPaintInOrder(t *testing.T) {
	desc := &frame.FrameDescription{
		Width:  4,
		Height: 4,
		Layers: []*frame.Layer{
			{Kind: frame.LayerFill, FillColor: frame.RGBA{R: 255, G: 0, B: 0, A: 255}},
			{Kind: frame.LayerRect, X: 0, Y: 0, W: 4, H: 4, RectColor: frame.RGBA{R: 0, G: 255, B: 0, A: 255}},
		},
	}

	out := New().RenderFrame(desc, 0)
	r, g, b := out.At(1, 1)
	if r != 0 || g != 255 || b != 0 {
		t.Fatalf("expected the later rect layer to paint over the fill, got (%d,%d,%d)", r, g, b)
	}
}

func TestRenderFramePartialAlphaRectBlendsWithBelow(t *testing.T) {
	desc := &frame.FrameDescription{
		Width:  2,
		Height: 2,
		Layers: []*frame.Layer{
			{Kind: frame.LayerFill, FillColor: frame.RGBA{R: 0, G: 0, B: 0, A: 255}},
			{Kind: frame.LayerRect, X: 0, Y: 0, W: 2, H: 2, RectColor: frame.RGBA{R: 200, G: 0, B: 0, A: 128}},
		},
	}

	out := New().RenderFrame(desc, 0)
	r, _, _ := out.At(0, 0)
	if r == 0 || r >= 200 {
		t.Fatalf("expected a half-alpha blend between 0 and 200, got %d", r)
	}
}

func TestRenderFrameAppliesPostEffectsInFixedOrder(t *testing.T) {
	desc := &frame.FrameDescription{
		Width:  2,
		Height: 2,
		Layers: []*frame.Layer{
			{Kind: frame.LayerFill, FillColor: frame.RGBA{R: 255, G: 255, B: 255, A: 255}},
		},
		// ColorOverride is listed before Rainbow, but the renderer runs
		// Rainbow first, so ColorOverride's recolor is what remains.
		Effects: []frame.Effect{
			mustColorOverride(),
			effects.NewRainbow(),
		},
	}

	out := New().RenderFrame(desc, 1.0)
	r, g, b := out.At(0, 0)
	if r != 0 || g != 255 || b != 0 {
		t.Fatalf("expected ColorOverride (run after Rainbow) to recolor the fill, got (%d,%d,%d)", r, g, b)
	}
}

func mustColorOverride() *effects.ColorOverride {
	c := effects.NewColorOverride()
	c.GlareEnabled = false
	c.BaseColor = frame.RGB{R: 0, G: 255, B: 0}
	return c
}

func TestRenderFrameSkipsEffectPassesWhenNoneDeclared(t *testing.T) {
	desc := &frame.FrameDescription{
		Width:  2,
		Height: 2,
		Layers: []*frame.Layer{
			{Kind: frame.LayerFill, FillColor: frame.RGBA{R: 1, G: 2, B: 3, A: 255}},
		},
	}
	out := New().RenderFrame(desc, 0)
	r, g, b := out.At(0, 0)
	if r != 1 || g != 2 || b != 3 {
		t.Fatalf("expected plain fill with no effects, got (%d,%d,%d)", r, g, b)
	}
}
