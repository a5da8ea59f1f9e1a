// Package ledstrip derives the single RGB color (or rainbow gradient)
// broadcast to the addressable LED strip from the currently rendered
// matrix frame: either the frame's dominant non-black color, or, when a
// rainbow effect is active on the matrix, a strip-length gradient phase
// locked to that effect's rotation.
package ledstrip

import (
	"hash/fnv"
	"math"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

// rainbowPhaser is the subset of *effects.Rainbow the strip needs; kept as
// an interface so this package never imports effects directly.
type rainbowPhaser interface {
	Phase() float64
}

const cacheSizeLimit = 100

// DominantColorCache memoizes GetMostCommonColor results keyed by a hash
// of the frame's pixel bytes, evicted FIFO once it exceeds cacheSizeLimit,
// mirroring the Python original's dict-as-FIFO cache.
type DominantColorCache struct {
	order []uint64
	byKey map[uint64]frame.RGB
}

// NewDominantColorCache constructs an empty cache.
func NewDominantColorCache() *DominantColorCache {
	return &DominantColorCache{byKey: make(map[uint64]frame.RGB)}
}

func hashPixels(pixels []byte) uint64 {
	h := fnv.New64a()
	h.Write(pixels)
	return h.Sum64()
}

// GetMostCommonColor returns the most frequent non-black color in f,
// quantized to 16-value buckets per channel, caching the result.
func (c *DominantColorCache) GetMostCommonColor(f *frame.Frame) frame.RGB {
	key := hashPixels(f.Pixels)
	if color, ok := c.byKey[key]; ok {
		return color
	}

	counts := make(map[[3]byte]int)
	for i := 0; i+2 < len(f.Pixels); i += 3 {
		r, g, b := f.Pixels[i], f.Pixels[i+1], f.Pixels[i+2]
		if r == 0 && g == 0 && b == 0 {
			continue
		}
		q := [3]byte{quantize(r), quantize(g), quantize(b)}
		counts[q]++
	}

	var best [3]byte
	bestCount := -1
	for q, n := range counts {
		if n > bestCount {
			bestCount = n
			best = q
		}
	}

	color := frame.RGB{R: best[0], G: best[1], B: best[2]}
	if bestCount < 0 {
		color = frame.RGB{}
	}

	c.byKey[key] = color
	c.order = append(c.order, key)
	if len(c.order) > cacheSizeLimit {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.byKey, oldest)
	}

	return color
}

func quantize(v byte) byte {
	return (v / 16) * 16
}

// Generate fills ledCount*3 RGB bytes for the strip: a hue gradient phase
// locked to rainbow's rotation when rainbow is non-nil and actively
// spinning, otherwise a solid fill of f's dominant color.
func Generate(cache *DominantColorCache, ledCount int, f *frame.Frame, rainbow rainbowPhaser, rainbowSpeed float64) []byte {
	out := make([]byte, ledCount*3)

	if rainbow != nil && rainbowSpeed > 0.001 {
		phase := rainbow.Phase()
		for i := 0; i < ledCount; i++ {
			hue := math.Mod(float64(i)/float64(ledCount)+phase/(2.0*math.Pi), 1.0)
			r, g, b := hsvToRGB(hue, 1.0, 1.0)
			out[i*3] = r
			out[i*3+1] = g
			out[i*3+2] = b
		}
		return out
	}

	color := cache.GetMostCommonColor(f)
	for i := 0; i < ledCount; i++ {
		out[i*3] = color.R
		out[i*3+1] = color.G
		out[i*3+2] = color.B
	}
	return out
}

func hsvToRGB(h, s, v float64) (r, g, b byte) {
	h = h * 6.0
	i := int(h) % 6
	f := h - math.Floor(h)

	p := v * (1.0 - s)
	q := v * (1.0 - s*f)
	t := v * (1.0 - s*(1.0-f))

	var rf, gf, bf float64
	switch i {
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
	default:
		rf, gf, bf = v, p, q
	}

	return byte(rf * 255), byte(gf * 255), byte(bf * 255)
}
