package transition

import (
	"testing"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

func solidFrame(w, h int, v byte) *frame.Frame {
	f := frame.New(w, h)
	for i := range f.Pixels {
		f.Pixels[i] = v
	}
	return f
}

func TestProcessReturnsCurrentFrameWithoutActiveTransition(t *testing.T) {
	e := NewEngine()
	cur := solidFrame(2, 2, 100)
	out := e.Process(cur, 0.1)
	if out != cur {
		t.Fatal("expected Process to pass through the current frame unchanged when idle")
	}
}

func TestFadeInRampsFromBlackToFull(t *testing.T) {
	e := NewEngine()
	e.AutoDetectType = false
	to := solidFrame(2, 2, 200)
	e.Start(nil, to, Crossfade, 10, 0)

	out := e.Process(to, 0.1) // 1/10th of the way
	for _, v := range out.Pixels {
		if v == 0 || v >= 200 {
			t.Fatalf("expected a partial fade-in value, got %d", v)
		}
	}
}

func TestTransitionCompletesAndClearsActive(t *testing.T) {
	e := NewEngine()
	e.AutoDetectType = false
	from := solidFrame(2, 2, 0)
	to := solidFrame(2, 2, 255)
	e.Start(from, to, Crossfade, 5, 0)

	for i := 0; i < 5; i++ {
		e.Process(to, 1.0)
	}

	if e.IsTransitioning() {
		t.Fatal("expected transition to complete and clear after enough ticks")
	}
}

func TestAutoDetectSelectsMorphForSimilarFrames(t *testing.T) {
	e := NewEngine()
	from := solidFrame(4, 4, 200)
	to := solidFrame(4, 4, 210) // same lit mask, nearly identical
	e.Start(from, to, None, 10, 0)

	if e.active.transitionType != Morph {
		t.Fatalf("expected similar frames to auto-select Morph, got %v", e.active.transitionType)
	}
}

func TestAutoDetectSelectsJumpForDissimilarFrames(t *testing.T) {
	e := NewEngine()
	from := solidFrame(4, 4, 200)
	to := frame.New(4, 4) // all black: disjoint lit mask
	e.Start(from, to, None, 10, 0)

	if e.active.transitionType != Jump {
		t.Fatalf("expected dissimilar frames to auto-select Jump, got %v", e.active.transitionType)
	}
}

func TestBrightToDarkForcesCrossfadeRegardlessOfType(t *testing.T) {
	e := NewEngine()
	e.AutoDetectType = false
	bright := solidFrame(2, 2, 255)
	dark := frame.New(2, 2)
	e.Start(bright, dark, Jump, 10, 0)

	if !e.active.forceCrossfade {
		t.Fatal("expected bright-to-dark transition to set forceCrossfade")
	}
}

func TestCancelDropsActiveTransition(t *testing.T) {
	e := NewEngine()
	e.Start(nil, solidFrame(2, 2, 100), Crossfade, 10, 0)
	if !e.IsTransitioning() {
		t.Fatal("expected transition to be active after Start")
	}
	e.Cancel()
	if e.IsTransitioning() {
		t.Fatal("expected Cancel to clear the active transition")
	}
}

func TestStartTransitionUsesEngineDefaults(t *testing.T) {
	e := NewEngine()
	from := solidFrame(2, 2, 0)
	to := solidFrame(2, 2, 255)
	e.StartTransition(from, to)

	if !e.IsTransitioning() {
		t.Fatal("expected StartTransition to begin a transition")
	}
	if e.active.progress.Frames != e.DefaultFrames {
		t.Fatalf("expected default frame count %d, got %d", e.DefaultFrames, e.active.progress.Frames)
	}
	if e.active.progress.Method != e.DefaultMethod {
		t.Fatalf("expected default method %v, got %v", e.DefaultMethod, e.active.progress.Method)
	}
}

func TestSimilarityOfIdenticalFramesIsHigh(t *testing.T) {
	a := solidFrame(4, 4, 200)
	b := solidFrame(4, 4, 200)
	if got := Similarity(a, b); got < 0.85 {
		t.Fatalf("expected near-maximal similarity for identical frames, got %v", got)
	}
}

func TestSimilarityOfMismatchedDimensionsIsZero(t *testing.T) {
	a := solidFrame(4, 4, 200)
	b := solidFrame(2, 2, 200)
	if got := Similarity(a, b); got != 0 {
		t.Fatalf("expected 0 similarity for mismatched dimensions, got %v", got)
	}
}

func TestIsBrightToDarkDetectsOnlyThatDirection(t *testing.T) {
	bright := solidFrame(2, 2, 255)
	dark := frame.New(2, 2)
	if !IsBrightToDark(bright, dark) {
		t.Fatal("expected bright-to-dark to be detected")
	}
	if IsBrightToDark(dark, bright) {
		t.Fatal("did not expect dark-to-bright to trigger bright-to-dark")
	}
}
