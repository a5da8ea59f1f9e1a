// Package render rasterizes a FrameDescription into a Frame: layer
// painting in list order, pre-effects before rasterization, and the fixed
// Dizzy -> Rainbow -> Shake -> ColorOverride post-effect order after.
package render

import (
	"github.com/cerotheproto/ledmatrixd/internal/effects"
	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

// Renderer is stateless; all mutable state lives on the effects themselves
// and on the layers they touch.
type Renderer struct{}

// New constructs a Renderer.
func New() *Renderer { return &Renderer{} }

// RenderFrame allocates a zeroed Frame sized per desc, runs pre-effects,
// rasterizes every layer in order, runs post-effects in the fixed order,
// and returns the result.
func (r *Renderer) RenderFrame(desc *frame.FrameDescription, dt float64) *frame.Frame {
	f := frame.New(desc.Width, desc.Height)

	if len(desc.Effects) > 0 {
		r.applyPreEffects(desc.Layers, desc.Effects, dt)
	}

	for _, l := range desc.Layers {
		switch l.Kind {
		case frame.LayerFill:
			fillLayer(f, l)
		case frame.LayerAnimatedSprite:
			animatedSpriteLayer(f, l, dt)
		case frame.LayerSprite:
			spriteLayer(f, l)
		case frame.LayerText:
			textLayer(f, l)
		case frame.LayerRect:
			rectLayer(f, l)
		}
	}

	if len(desc.Effects) > 0 {
		r.applyPostEffects(f, desc.Effects, dt)
	}

	return f
}

func (r *Renderer) applyPreEffects(layers []*frame.Layer, fx []frame.Effect, dt float64) {
	for _, e := range fx {
		if w, ok := e.(*effects.Wiggle); ok {
			w.Apply(layers, dt)
		}
	}
}

// applyPostEffects dispatches in the fixed order Dizzy -> Rainbow -> Shake
// -> ColorOverride regardless of the order effects appear in fx.
func (r *Renderer) applyPostEffects(f *frame.Frame, fx []frame.Effect, dt float64) {
	for _, e := range fx {
		if d, ok := e.(*effects.Dizzy); ok {
			d.Apply(f, dt)
		}
	}
	for _, e := range fx {
		if rb, ok := e.(*effects.Rainbow); ok {
			rb.Apply(f, dt)
		}
	}
	for _, e := range fx {
		if s, ok := e.(*effects.Shake); ok {
			s.Apply(f, dt)
		}
	}
	for _, e := range fx {
		if c, ok := e.(*effects.ColorOverride); ok {
			c.Apply(f, dt)
		}
	}
}
