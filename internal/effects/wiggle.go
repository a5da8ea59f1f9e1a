package effects

import (
	"math"
	"math/rand"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

// spriteWiggleState is the per-layer state Wiggle keeps, keyed by the
// layer's stable SlotID rather than pointer identity.
type spriteWiggleState struct {
	base          vec2
	lastApplied   vec2
	localOffset   vec2
	localTarget   vec2
	localDuration float64
	localElapsed  float64
	initialized   bool

	lastSeen       float64 // internal-time bucket, for stale eviction
	hasLastUpdate  bool
	lastUpdate     float64 // internal-time bucket of the last per-tick update
}

// Wiggle applies a coherent global sway plus a per-sprite local offset to
// every Sprite/AnimatedSprite layer. State advances once per logical tick,
// guarded by an explicit tick counter rather than a wall-clock threshold,
// per the redesign guidance.
type Wiggle struct {
	baseEffect

	Amplitude            float64
	MinInterval          float64
	MaxInterval          float64
	LateralRatio         float64
	DirectionIntervalMin float64
	DirectionIntervalMax float64
	Seed                 *int64

	rng *rand.Rand

	direction         *vec2
	directionTarget   *vec2
	directionElapsed  float64
	directionDuration float64

	currentOffset vec2

	phaseMain, phaseLateral float64
	freqMain, freqLateral   float64
	ampMod, ampModTarget    float64
	ampModStart             float64
	ampModTimer, ampModDur  float64
	waveInit                bool
	wanderCenter, wanderVel vec2

	internalTime float64
	lastDt       float64

	lastExecTick  int64
	haveExecTick  bool

	spriteStates map[frame.SlotID]*spriteWiggleState
}

// NewWiggle constructs a Wiggle effect with the teacher-observed defaults.
func NewWiggle() *Wiggle {
	return &Wiggle{
		Amplitude:            2.0,
		MinInterval:          0.35,
		MaxInterval:          0.85,
		LateralRatio:         0.45,
		DirectionIntervalMin: 1.2,
		DirectionIntervalMax: 2.6,
		spriteStates:         make(map[frame.SlotID]*spriteWiggleState),
	}
}

func (w *Wiggle) Kind() frame.EffectKind { return frame.EffectWiggle }

func (w *Wiggle) ensureRNG() *rand.Rand {
	if w.rng == nil {
		w.rng = newRNG(w.Seed)
	}
	return w.rng
}

// Apply treats every call as a new logical tick (one past the last tick
// executed), for call sites that invoke it at most once per logical tick.
func (w *Wiggle) Apply(layers []*frame.Layer, dt float64) {
	tick := int64(0)
	if w.haveExecTick {
		tick = w.lastExecTick + 1
	}
	w.ApplyTick(layers, dt, tick)
}

// ApplyTick is the tick-counter-aware entry point. Callers that render the
// same FrameDescription's effects more than once within a single logical
// tick (e.g. deriving two 64x32 halves from one description) should pass
// the same tick value both times so Wiggle only advances its simulation
// once and simply re-applies the cached offsets on the repeat call.
func (w *Wiggle) ApplyTick(layers []*frame.Layer, dt float64, tick int64) {
	var sprites []*frame.Layer
	for _, l := range layers {
		if l.Kind == frame.LayerSprite || l.Kind == frame.LayerAnimatedSprite {
			sprites = append(sprites, l)
		}
	}
	if len(sprites) == 0 || w.Amplitude <= 0 {
		return
	}

	isSameTick := w.haveExecTick && tick == w.lastExecTick
	if !isSameTick {
		w.lastExecTick = tick
		w.haveExecTick = true
		w.internalTime += dt
		w.lastDt = dt

		rng := w.ensureRNG()
		dir := w.updateDirection(dt, rng)
		w.updateGlobalOffset(dir, dt, rng)
		w.cleanupStale()
	}

	currentTime := w.internalTime
	stepDt := w.lastDt
	for _, l := range sprites {
		w.applyToLayer(l, currentTime, stepDt)
	}
}

func (w *Wiggle) updateDirection(dt float64, rng *rand.Rand) vec2 {
	if w.direction == nil {
		d := randomUnitVector(rng)
		w.direction = &d
	}
	if w.directionTarget == nil {
		t := deviateDirection(*w.direction, rng, 30.0)
		w.directionTarget = &t
		w.directionDuration = w.chooseDirectionInterval(rng)
		w.directionElapsed = 0
	}

	w.directionElapsed += dt
	duration := w.directionDuration
	if duration < 1e-3 {
		duration = 1e-3
	}
	progress := w.directionElapsed / duration
	if progress > 1.0 {
		progress = 1.0
	}

	blended := w.direction.scaled(1 - progress).add(w.directionTarget.scaled(progress))
	norm := blended.norm()
	if norm < 1e-5 {
		blended = *w.directionTarget
		norm = blended.norm()
	}
	if norm < 1e-5 {
		return vec2{1, 0}
	}
	current := vec2{blended.x / norm, blended.y / norm}

	if progress >= 1.0 {
		w.direction = &current
		t := deviateDirection(*w.direction, rng, 30.0)
		w.directionTarget = &t
		w.directionDuration = w.chooseDirectionInterval(rng)
		w.directionElapsed = 0
	}

	return current
}

func (w *Wiggle) chooseDirectionInterval(rng *rand.Rand) float64 {
	lo, hi := w.DirectionIntervalMin, w.DirectionIntervalMax
	baseMin := maxFloat(1.4, minFloat(lo, hi))
	baseMax := maxFloat(baseMin+0.6, maxFloat(lo, hi)*1.2)
	return baseMin + rng.Float64()*(baseMax-baseMin)
}

func (w *Wiggle) ensureWaveState(rng *rand.Rand) {
	if w.waveInit {
		return
	}
	w.waveInit = true
	w.phaseMain = rng.Float64() * 2 * math.Pi
	w.phaseLateral = rng.Float64() * 2 * math.Pi
	w.freqMain = 0.16 + rng.Float64()*(0.24-0.16)
	w.freqLateral = 0.22 + rng.Float64()*(0.32-0.22)
	w.ampMod = 0.75 + rng.Float64()*(1.0-0.75)
	w.ampModTarget = w.ampMod
	w.ampModStart = w.ampMod
	w.ampModTimer = 0
	w.ampModDur = 2.5 + rng.Float64()*(4.5-2.5)
}

func (w *Wiggle) updateAmplitudeModulation(dt float64, rng *rand.Rand) {
	w.ampModTimer += dt
	duration := w.ampModDur
	if duration < 1e-3 {
		duration = 1e-3
	}
	progress := w.ampModTimer / duration
	if progress > 1.0 {
		progress = 1.0
	}
	eased := smoothstep(progress)
	w.ampMod = w.ampModStart*(1-eased) + w.ampModTarget*eased

	if progress >= 1.0 {
		w.ampModStart = w.ampMod
		w.ampModTarget = 0.7 + rng.Float64()*(1.0-0.7)
		w.ampModDur = 2.5 + rng.Float64()*(4.5-2.5)
		w.ampModTimer = 0
	}
}

func (w *Wiggle) updateWander(dt float64, rng *rand.Rand) {
	jitter := vec2{rng.NormFloat64() * 0.45, rng.NormFloat64() * 0.45}
	amp := maxFloat(w.Amplitude, 0)
	accel := jitter.scaled(maxFloat(amp, 0.1) * 0.25)
	damping := 1.6

	w.wanderVel = w.wanderVel.add(accel.add(w.wanderVel.scaled(-damping)).scaled(dt))
	w.wanderCenter = w.wanderCenter.add(w.wanderVel.scaled(dt))

	limit := maxFloat(amp*0.6, 0.1)
	norm := w.wanderCenter.norm()
	if norm > limit {
		w.wanderCenter = vec2{w.wanderCenter.x / norm * limit, w.wanderCenter.y / norm * limit}
	}
}

func (w *Wiggle) updateGlobalOffset(direction vec2, dt float64, rng *rand.Rand) {
	w.ensureWaveState(rng)
	w.updateAmplitudeModulation(dt, rng)
	w.updateWander(dt, rng)

	perp := perpendicular(direction)
	amp := maxFloat(w.Amplitude, 0)
	baseAmp := amp * w.ampMod
	lateralRatio := maxFloat(w.LateralRatio, 0)
	lateralAmp := baseAmp * lateralRatio * 0.7

	w.phaseMain += dt * w.freqMain * 2 * math.Pi
	w.phaseLateral += dt * w.freqLateral * 2 * math.Pi

	mainWave := math.Sin(w.phaseMain) * baseAmp
	lateralWave := math.Sin(w.phaseLateral) * lateralAmp

	offset := w.wanderCenter.add(direction.scaled(mainWave)).add(perp.scaled(lateralWave))

	maxLen := maxFloat(amp*1.1, 1e-3)
	norm := offset.norm()
	if norm > maxLen {
		offset = vec2{offset.x / norm * maxLen, offset.y / norm * maxLen}
	}
	w.currentOffset = offset
}

func (w *Wiggle) cleanupStale() {
	const timeout = 1.0
	current := w.internalTime
	for id, st := range w.spriteStates {
		if current-st.lastSeen > timeout {
			delete(w.spriteStates, id)
		}
	}
}

func (w *Wiggle) applyToLayer(l *frame.Layer, currentTime, dt float64) {
	st, ok := w.spriteStates[l.Slot]
	if !ok {
		rng := w.ensureRNG()
		base := vec2{l.SpriteX, l.SpriteY}
		localScale := maxFloat(w.Amplitude, 1.0)
		st = &spriteWiggleState{
			base:          base,
			lastApplied:   base,
			localTarget:   randomUnitVector(rng).scaled((0.12 + rng.Float64()*(0.35-0.12)) * localScale),
			localDuration: 1.8 + rng.Float64()*(3.2-1.8),
			lastSeen:      currentTime,
		}
		w.spriteStates[l.Slot] = st
	}

	st.lastSeen = currentTime

	currentPos := vec2{l.SpriteX, l.SpriteY}
	if st.initialized && !approxEqual(currentPos, st.lastApplied, 1e-4) {
		st.base = currentPos
	}

	shouldUpdate := !st.hasLastUpdate || st.lastUpdate != currentTime
	if shouldUpdate {
		st.hasLastUpdate = true
		st.lastUpdate = currentTime

		st.localElapsed += dt
		duration := st.localDuration
		if duration < 1e-3 {
			duration = 1e-3
		}
		progress := st.localElapsed / duration

		if progress >= 1.0 {
			rng := w.ensureRNG()
			localScale := maxFloat(w.Amplitude, 1.0)
			st.localTarget = randomUnitVector(rng).scaled((0.12 + rng.Float64()*(0.35-0.12)) * localScale)
			st.localDuration = 1.8 + rng.Float64()*(3.2-1.8)
			st.localElapsed = 0
			progress = 0
		}

		eased := smoothstep(minFloat(progress, 1.0))
		st.localOffset = st.localTarget.scaled(eased)
	}

	newPos := st.base.add(w.currentOffset).add(st.localOffset)
	l.SpriteX = newPos.x
	l.SpriteY = newPos.y
	st.lastApplied = vec2{l.SpriteX, l.SpriteY}
	st.initialized = true
}

// Cleanup restores every touched layer's baseline position and clears
// per-layer state.
func (w *Wiggle) Cleanup(layers []*frame.Layer) {
	for _, l := range layers {
		if l.Kind != frame.LayerSprite && l.Kind != frame.LayerAnimatedSprite {
			continue
		}
		if st, ok := w.spriteStates[l.Slot]; ok {
			l.SpriteX = st.base.x
			l.SpriteY = st.base.y
		}
	}
	w.spriteStates = make(map[frame.SlotID]*spriteWiggleState)
}

func approxEqual(a, b vec2, tol float64) bool {
	return floatsClose(a.x, b.x, tol) && floatsClose(a.y, b.y, tol)
}

func floatsClose(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
