package facepart

import "math"

// blendMorph computes alpha-weighted centers of mass for the source and
// destination alpha masks, derives a clamped per-axis scale, displaces
// each source pixel toward its scaled/translated target position by
// cosT(progress), bilinearly splatting into an accumulator, then combines
// the warped source with the destination via a premultiplied-over
// composite weighted (1-cosT) source / cosT destination.
func blendMorph(t *PartTransition, progress float64) *Sprite {
	from, to := t.From, t.To
	c := cosT(progress)

	w, h := to.W, to.H
	srcAlpha := extractAlpha(from.Pixels, from.W, from.H)
	dstAlpha := extractAlpha(to.Pixels, w, h)

	centerSrc, wSrc, hSrc := centerAndSize(srcAlpha, from.W, from.H, 0.05)
	centerDst, wDst, hDst := centerAndSize(dstAlpha, w, h, 0.05)

	scaleX := clampFloat(wDst/math.Max(1.0, wSrc), 0.4, 2.5)
	scaleY := clampFloat(hDst/math.Max(1.0, hSrc), 0.4, 2.5)

	movedRGB := make([]float64, w*h*3)
	alphaAcc := make([]float64, w*h)

	for sy := 0; sy < from.H; sy++ {
		for sx := 0; sx < from.W; sx++ {
			si := sy*from.W + sx
			a := srcAlpha[si]
			if a <= 0.05 {
				continue
			}
			tx := centerDst.x + (float64(sx)-centerSrc.x)*scaleX
			ty := centerDst.y + (float64(sy)-centerSrc.y)*scaleY

			curX := float64(sx) + (tx-float64(sx))*c
			curY := float64(sy) + (ty-float64(sy))*c

			x0 := int(math.Floor(curX))
			y0 := int(math.Floor(curY))
			x1 := x0 + 1
			y1 := y0 + 1

			wx := curX - float64(x0)
			wy := curY - float64(y0)

			pi := (sy*from.W + sx) * 4
			srcR := float64(from.Pixels[pi])
			srcG := float64(from.Pixels[pi+1])
			srcB := float64(from.Pixels[pi+2])

			splat := func(px, py int, weight float64) {
				if weight <= 0 || px < 0 || px >= w || py < 0 || py >= h {
					return
				}
				di := py*w + px
				contrib := a * weight
				alphaAcc[di] += contrib
				movedRGB[di*3] += srcR * contrib
				movedRGB[di*3+1] += srcG * contrib
				movedRGB[di*3+2] += srcB * contrib
			}

			splat(x0, y0, (1-wx)*(1-wy))
			splat(x0, y1, (1-wx)*wy)
			splat(x1, y0, wx*(1-wy))
			splat(x1, y1, wx*wy)
		}
	}

	blended := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		warpedAlpha := clampFloat(alphaAcc[i], 0, 1)
		srcMixAlpha := warpedAlpha * (1 - c)
		dstMixAlpha := dstAlpha[i] * c
		totalAlpha := srcMixAlpha + dstMixAlpha - srcMixAlpha*dstMixAlpha

		di := i * 4
		dstR := float64(to.Pixels[di])
		dstG := float64(to.Pixels[di+1])
		dstB := float64(to.Pixels[di+2])

		premultR := dstR*dstMixAlpha + movedRGB[i*3]*(1-c)
		premultG := dstG*dstMixAlpha + movedRGB[i*3+1]*(1-c)
		premultB := dstB*dstMixAlpha + movedRGB[i*3+2]*(1-c)

		if totalAlpha < 1e-5 {
			blended[di] = 0
			blended[di+1] = 0
			blended[di+2] = 0
		} else {
			safeAlpha := math.Max(totalAlpha, 1e-5)
			blended[di] = clampByte(premultR / safeAlpha)
			blended[di+1] = clampByte(premultG / safeAlpha)
			blended[di+2] = clampByte(premultB / safeAlpha)
		}
		blended[di+3] = clampByte(totalAlpha * 255.0)
	}

	morphX := from.X + (to.X-from.X)*c
	morphY := from.Y + (to.Y-from.Y)*c

	return &Sprite{W: w, H: h, X: morphX, Y: morphY, Pixels: blended}
}

func extractAlpha(pixels []byte, w, h int) []float64 {
	out := make([]float64, w*h)
	for i := 0; i < w*h; i++ {
		out[i] = float64(pixels[i*4+3]) / 255.0
	}
	return out
}

type point struct{ x, y float64 }

func centerAndSize(alpha []float64, w, h int, maskThreshold float64) (point, float64, float64) {
	var sumW, sumX, sumY float64
	minX, minY := w, h
	maxX, maxY := -1, -1
	count := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := alpha[y*w+x]
			if a <= maskThreshold {
				continue
			}
			count++
			sumW += a
			sumX += float64(x) * a
			sumY += float64(y) * a
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if count < 1 || sumW < 1e-5 {
		return point{float64(w) * 0.5, float64(h) * 0.5}, 1.0, 1.0
	}
	cx := sumX / sumW
	cy := sumY / sumW
	width := float64(maxX-minX) + 1
	height := float64(maxY-minY) + 1
	return point{cx, cy}, width, height
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func similarityRGBA(a, b []byte, w, h int) float64 {
	maskA := make([]bool, w*h)
	maskB := make([]bool, w*h)
	countA, countB := 0, 0
	for i := 0; i < w*h; i++ {
		pi := i * 4
		grayA := (0.299*float64(a[pi]) + 0.587*float64(a[pi+1]) + 0.114*float64(a[pi+2])) * (float64(a[pi+3]) / 255.0)
		grayB := (0.299*float64(b[pi]) + 0.587*float64(b[pi+1]) + 0.114*float64(b[pi+2])) * (float64(b[pi+3]) / 255.0)
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
	if union == 0 {
		return 1.0
	}
	iou := float64(intersection) / float64(union)

	maxCount := countA
	if countB > maxCount {
		maxCount = countB
	}
	var sizeSimilarity float64
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
		cxA, cyA := centroid(maskA, w, h)
		cxB, cyB := centroid(maskB, w, h)
		dist := math.Hypot(cxA-cxB, cyA-cyB)
		diag := math.Sqrt(float64(h*h + w*w))
		distancePenalty = math.Min(0.3, (dist/diag)*0.5)
	} else if countA != countB {
		distancePenalty = 0.3
	}

	score := iou*0.8 + sizeSimilarity*0.2 - distancePenalty*0.1
	return clampFloat(score, 0, 1)
}

func centroid(mask []bool, w, h int) (float64, float64) {
	var sumX, sumY, n float64
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

func isBrightToDarkRGBA(a, b []byte) bool {
	return meanBrightnessRGBA(a) > 0.4 && meanBrightnessRGBA(b) < 0.1
}

func meanBrightnessRGBA(pixels []byte) float64 {
	if len(pixels) == 0 {
		return 0
	}
	var sum float64
	n := 0
	for i := 0; i+2 < len(pixels); i += 4 {
		sum += float64(pixels[i]) + float64(pixels[i+1]) + float64(pixels[i+2])
		n += 3
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) / 255.0
}
