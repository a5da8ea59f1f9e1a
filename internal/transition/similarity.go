// Package transition implements the frame-level TransitionEngine: CROSSFADE,
// MORPH, JUMP and fade-in blending between two whole Frames, plus the
// frame similarity metric (internal/facepart keeps its own RGBA variant).
package transition

import (
	"math"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

// BrightToDarkBrightThreshold and BrightToDarkDarkThreshold are the
// heuristic mean-brightness cutoffs IsBrightToDark uses, named per the
// redesign guidance rather than left as inline magic numbers.
const (
	BrightToDarkBrightThreshold = 0.4
	BrightToDarkDarkThreshold   = 0.1
)

// Similarity computes a scalar in [0,1] combining binary IoU of a
// luminance>0.5 mask, a mask-size ratio, and a center-of-mass distance
// penalty. Both frames must share dimensions; mismatched dimensions
// report 0.
func Similarity(a, b *frame.Frame) float64 {
	if a.Width != b.Width || a.Height != b.Height {
		return 0.0
	}
	w, h := a.Width, a.Height

	maskA := make([]bool, w*h)
	maskB := make([]bool, w*h)
	countA, countB := 0, 0

	for i := 0; i < w*h; i++ {
		pi := i * 3
		grayA := 0.299*float64(a.Pixels[pi]) + 0.587*float64(a.Pixels[pi+1]) + 0.114*float64(a.Pixels[pi+2])
		grayB := 0.299*float64(b.Pixels[pi]) + 0.587*float64(b.Pixels[pi+1]) + 0.114*float64(b.Pixels[pi+2])
		maskA[i] = (grayA / 255.0) > 0.5
		maskB[i] = (grayB / 255.0) > 0.5
		if maskA[i] {
			countA++
		}
		if maskB[i] {
			countB++
		}
	}

	intersection, union := 0, 0
	for i := 0; i < w*h; i++ {
		if maskA[i] && maskB[i] {
			intersection++
		}
		if maskA[i] || maskB[i] {
			union++
		}
	}

	var iou float64
	if union == 0 {
		return 1.0
	}
	iou = float64(intersection) / float64(union)

	var sizeSimilarity float64
	maxCount := countA
	if countB > maxCount {
		maxCount = countB
	}
	if maxCount == 0 {
		sizeSimilarity = 1.0
	} else {
		minCount := countA
		if countB < minCount {
			minCount = countB
		}
		sizeSimilarity = float64(minCount) / float64(maxCount)
	}

	var distancePenalty float64
	if countA > 0 && countB > 0 {
		cxA, cyA := centerOfMass(maskA, w, h)
		cxB, cyB := centerOfMass(maskB, w, h)
		dist := math.Hypot(cxA-cxB, cyA-cyB)
		diag := math.Sqrt(float64(h*h + w*w))
		distancePenalty = math.Min(0.3, (dist/diag)*0.5)
	} else if countA != countB {
		distancePenalty = 0.3
	}

	score := iou*0.7 + sizeSimilarity*0.2 - distancePenalty*0.1
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func centerOfMass(mask []bool, w, h int) (cx, cy float64) {
	var sumX, sumY float64
	var n float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask[y*w+x] {
				sumX += float64(x)
				sumY += float64(y)
				n++
			}
		}
	}
	if n == 0 {
		return 0, 0
	}
	return sumX / n, sumY / n
}

// IsBrightToDark reports whether a is mean-bright (>0.4) and b is
// mean-dark (<0.1), signaling a transition that should force a crossfade
// rather than a jump or morph.
func IsBrightToDark(a, b *frame.Frame) bool {
	if a == nil || b == nil {
		return false
	}
	return meanBrightness(a) > BrightToDarkBrightThreshold && meanBrightness(b) < BrightToDarkDarkThreshold
}

func meanBrightness(f *frame.Frame) float64 {
	if len(f.Pixels) == 0 {
		return 0
	}
	var sum float64
	for _, v := range f.Pixels {
		sum += float64(v)
	}
	return sum / float64(len(f.Pixels)) / 255.0
}
