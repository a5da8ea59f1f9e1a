// Package effects implements the five pre/post rendering effects: Wiggle
// (pre-effect, mutates layer positions) and Dizzy, Rainbow, Shake,
// ColorOverride (post-effects, mutate rasterized pixels).
package effects

import (
	"math"
	"math/rand"
)

func smoothstep(t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

type vec2 struct{ x, y float64 }

func (v vec2) norm() float64 { return math.Hypot(v.x, v.y) }

func (v vec2) scaled(s float64) vec2 { return vec2{v.x * s, v.y * s} }

func (v vec2) add(o vec2) vec2 { return vec2{v.x + o.x, v.y + o.y} }

func (v vec2) normalized() vec2 {
	n := v.norm()
	if n < 1e-6 {
		return vec2{1, 0}
	}
	return vec2{v.x / n, v.y / n}
}

func randomUnitVector(rng *rand.Rand) vec2 {
	v := vec2{rng.NormFloat64(), rng.NormFloat64()}
	n := v.norm()
	if n < 1e-6 {
		return vec2{1, 0}
	}
	return vec2{v.x / n, v.y / n}
}

func deviateDirection(cur vec2, rng *rand.Rand, maxAngleDeg float64) vec2 {
	maxRad := maxAngleDeg * math.Pi / 180.0
	angleOffset := (rng.Float64()*2 - 1) * maxRad
	curAngle := math.Atan2(cur.y, cur.x)
	newAngle := curAngle + angleOffset
	return vec2{math.Cos(newAngle), math.Sin(newAngle)}
}

func perpendicular(d vec2) vec2 {
	p := vec2{-d.y, d.x}
	n := p.norm()
	if n < 1e-6 {
		return vec2{0, 1}
	}
	return vec2{p.x / n, p.y / n}
}

// newRNG seeds a *rand.Rand from seed when non-nil, else from the runtime
// clock — mirroring numpy's default_rng(None) falling back to OS entropy.
func newRNG(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(rand.Int63()))
}

func hsvToRGB(h, s, v float64) (r, g, b byte) {
	h = math.Mod(h, 1.0)
	if h < 0 {
		h += 1.0
	}
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var rf, gf, bf float64
	switch int(i) % 6 {
	case 0:
		rf, gf, bf = v, t, p
	case 1:
		rf, gf, bf = q, v, p
	case 2:
		rf, gf, bf = p, v, t
	case 3:
		rf, gf, bf = p, q, v
	case 4:
		rf, gf, bf = t, p, v
	case 5:
		rf, gf, bf = v, p, q
	}
	return clampByte(rf * 255), clampByte(gf * 255), clampByte(bf * 255)
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

func maxByte(r, g, b byte) byte {
	m := r
	if g > m {
		m = g
	}
	if b > m {
		m = b
	}
	return m
}

// baseEffect provides the shared ID plumbing every Effect variant embeds.
type baseEffect struct {
	id string
}

func (b *baseEffect) ID() string     { return b.id }
func (b *baseEffect) SetID(id string) { b.id = id }
