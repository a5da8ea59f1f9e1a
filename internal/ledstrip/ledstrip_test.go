package ledstrip

import (
	"testing"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

type fixedPhase float64

func (p fixedPhase) Phase() float64 { return float64(p) }

func TestGenerateDominantColorFill(t *testing.T) {
	f := frame.New(4, 4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			f.SetPixel(i, j, 200, 10, 10)
		}
	}
	f.SetPixel(0, 0, 1, 1, 1)

	cache := NewDominantColorCache()
	pixels := Generate(cache, 8, f, nil, 0)

	if len(pixels) != 24 {
		t.Fatalf("expected 24 bytes, got %d", len(pixels))
	}
	if pixels[0] < 190 || pixels[1] > 20 {
		t.Fatalf("expected dominant red fill, got %v", pixels[:3])
	}
}

func TestGenerateAllBlackFrame(t *testing.T) {
	f := frame.New(2, 2)
	cache := NewDominantColorCache()
	pixels := Generate(cache, 4, f, nil, 0)
	for _, v := range pixels {
		if v != 0 {
			t.Fatalf("expected all-black strip, got %v", pixels)
		}
	}
}

func TestGenerateRainbowPhaseLock(t *testing.T) {
	f := frame.New(2, 2)
	cache := NewDominantColorCache()
	pixels := Generate(cache, 360, f, fixedPhase(0), 1.0)

	// at phase 0, led 0 has hue 0 -> pure red
	if pixels[0] < 250 || pixels[1] > 5 || pixels[2] > 5 {
		t.Fatalf("expected red at hue 0, got %v", pixels[:3])
	}
}

func TestDominantColorCacheEviction(t *testing.T) {
	cache := NewDominantColorCache()
	for i := 0; i < cacheSizeLimit+10; i++ {
		f := frame.New(1, 1)
		f.SetPixel(0, 0, byte(i%256), 0, 0)
		cache.GetMostCommonColor(f)
	}
	if len(cache.byKey) != cacheSizeLimit {
		t.Fatalf("expected cache capped at %d, got %d", cacheSizeLimit, len(cache.byKey))
	}
}
