package anim

import (
	"math"
	"testing"
)

func TestRampFilterConvergesToTarget(t *testing.T) {
	r := RampFilter{Frames: 10}
	for i := 0; i < 10; i++ {
		r.Filter(1.0)
	}
	if v := r.Value(); v < 0.99 {
		t.Fatalf("expected ramp to reach ~1.0 after 10 frames, got %v", v)
	}
}

func TestRampFilterResetClamps(t *testing.T) {
	r := RampFilter{Frames: 10}
	r.Reset(5.0)
	if v := r.Value(); v != 1.0 {
		t.Fatalf("expected Reset to clamp to 1.0, got %v", v)
	}
	r.Reset(-5.0)
	if v := r.Value(); v != 0.0 {
		t.Fatalf("expected Reset to clamp to 0.0, got %v", v)
	}
}

func TestDampedSpringSettlesAtTarget(t *testing.T) {
	s := DampedSpring{SpringConstant: 40, Damping: 8}
	for i := 0; i < 500; i++ {
		s.Calculate(10.0, 1.0/60.0)
	}
	if math.Abs(s.Position()-10.0) > 0.1 {
		t.Fatalf("expected spring to settle near 10.0, got %v", s.Position())
	}
}

func TestDampedSpringIgnoresDegenerateDt(t *testing.T) {
	s := DampedSpring{SpringConstant: 40, Damping: 8}
	s.Reset(3.0)
	if got := s.Calculate(10.0, 0); got != 3.0 {
		t.Fatalf("expected no-op for dt<=0, got %v", got)
	}
	if got := s.Calculate(10.0, 3.0); got != 3.0 {
		t.Fatalf("expected no-op for dt>2s, got %v", got)
	}
}

func TestCosineInterpolationEndpoints(t *testing.T) {
	if got := CosineInterpolation(0, 10, 0); got != 0 {
		t.Fatalf("expected 0 at t=0, got %v", got)
	}
	if got := CosineInterpolation(0, 10, 1); math.Abs(got-10) > 1e-9 {
		t.Fatalf("expected 10 at t=1, got %v", got)
	}
}

func TestBounceInterpolationOvershootsPastEnd(t *testing.T) {
	// Midway through the overshoot phase (t=0.85), the value should exceed
	// end (10) before settling back by t=1.
	mid := BounceInterpolation(0, 10, 0.85)
	if mid <= 10 {
		t.Fatalf("expected overshoot past end during bounce phase, got %v", mid)
	}
	end := BounceInterpolation(0, 10, 1.0)
	if math.Abs(end-10) > 1e-9 {
		t.Fatalf("expected settle at end for t=1, got %v", end)
	}
}

func TestLerpMidpoint(t *testing.T) {
	if got := Lerp(0, 10, 0.5); got != 5 {
		t.Fatalf("expected midpoint 5, got %v", got)
	}
}

func TestInterpolateDispatchesByMethod(t *testing.T) {
	if got := Interpolate(0, 10, 0.5, Linear); got != Lerp(0, 10, 0.5) {
		t.Fatalf("Linear dispatch mismatch: %v", got)
	}
	if got := Interpolate(0, 10, 0.5, Cosine); got != CosineInterpolation(0, 10, 0.5) {
		t.Fatalf("Cosine dispatch mismatch: %v", got)
	}
	// OVERSHOOT has no meaning for the free dispatcher and falls through to Lerp.
	if got := Interpolate(0, 10, 0.5, Overshoot); got != Lerp(0, 10, 0.5) {
		t.Fatalf("Overshoot dispatch should fall back to Lerp, got %v", got)
	}
}

func TestAnimatedParameterRampsToTargetOverFrames(t *testing.T) {
	p := AnimatedParameter{Frames: 10, Method: Linear}
	p.SetTarget(1.0)
	var last float64
	for i := 0; i < 10; i++ {
		last = p.Update(1.0)
	}
	if last < 0.99 {
		t.Fatalf("expected parameter to ramp to ~1.0 after 10 updates, got %v", last)
	}
}

func TestAnimatedParameterOvershootUsesSpring(t *testing.T) {
	p := AnimatedParameter{Frames: 10, Method: Overshoot, SpringConstant: 40, Damping: 8}
	p.SetTarget(1.0)
	var last float64
	for i := 0; i < 500; i++ {
		last = p.Update(1.0 / 60.0)
	}
	if math.Abs(last-1.0) > 0.05 {
		t.Fatalf("expected overshoot parameter to settle near 1.0, got %v", last)
	}
}

func TestAnimatedParameterResetSetsValueDirectly(t *testing.T) {
	p := AnimatedParameter{Frames: 10, Method: Linear}
	p.SetTarget(1.0)
	p.Reset(0.5)
	if got := p.Value(); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("expected Reset to set value to 0.5, got %v", got)
	}
}
