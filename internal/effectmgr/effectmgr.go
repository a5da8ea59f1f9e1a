// Package effectmgr tracks the set of active render effects attached to
// the API layer: adding by name, removing (immediately or via a graceful
// fade-out for effects that support one), and sweeping up effects that
// have finished their own fade-out lifecycle.
package effectmgr

import (
	"encoding/json"
	"fmt"

	"github.com/cerotheproto/ledmatrixd/internal/effects"
	"github.com/cerotheproto/ledmatrixd/internal/frame"
	"github.com/google/uuid"
)

// Stoppable is implemented by effects that support a graceful fade-out
// instead of an immediate removal (currently only Rainbow).
type Stoppable interface {
	RequestStop()
	IsStopping() bool
}

// Stateful is implemented by effects exposing an explicit lifecycle state,
// used to detect an effect that has finished fading out on its own.
type Stateful interface {
	State() frame.EffectState
}

// Manager holds the live effect list and the constructors available to
// AddByName.
type Manager struct {
	effects      []frame.Effect
	constructors map[string]func() frame.Effect
	kindNames    map[frame.EffectKind]string
	layersCache  []*frame.Layer
}

// New constructs a Manager with the standard five effect constructors
// registered under their teacher-observed names.
func New() *Manager {
	m := &Manager{
		constructors: map[string]func() frame.Effect{
			"Wiggle":        func() frame.Effect { return effects.NewWiggle() },
			"Dizzy":         func() frame.Effect { return effects.NewDizzy() },
			"Rainbow":       func() frame.Effect { return effects.NewRainbow() },
			"Shake":         func() frame.Effect { return effects.NewShake() },
			"ColorOverride": func() frame.Effect { return effects.NewColorOverride() },
		},
	}
	m.kindNames = make(map[frame.EffectKind]string, len(m.constructors))
	for name, ctor := range m.constructors {
		m.kindNames[ctor().Kind()] = name
	}
	return m
}

// NameOf returns the registered constructor name for e's kind, as used by
// AddByName, AvailableEffects and SaveParams.
func (m *Manager) NameOf(e frame.Effect) string {
	return m.kindNames[e.Kind()]
}

// AddByName constructs the named effect, assigns it a fresh ID, appends
// it to the live list, and returns it (for the caller to type-assert and
// configure further fields on).
func (m *Manager) AddByName(name string) (frame.Effect, error) {
	ctor, ok := m.constructors[name]
	if !ok {
		return nil, fmt.Errorf("effect %q not found", name)
	}
	e := ctor()
	e.SetID(uuid.NewString())
	m.effects = append(m.effects, e)
	return e, nil
}

// Add appends an already-constructed effect, assigning it an ID if it
// doesn't have one.
func (m *Manager) Add(e frame.Effect) {
	if e.ID() == "" {
		e.SetID(uuid.NewString())
	}
	m.effects = append(m.effects, e)
}

// Remove drops e from the live list, or — if e supports graceful
// stopping and hasn't already been asked to stop — requests its fade-out
// instead and leaves it in the list until Effects next sweeps it.
func (m *Manager) Remove(e frame.Effect) bool {
	idx := m.indexOf(e)
	if idx < 0 {
		return false
	}
	if s, ok := e.(Stoppable); ok && !s.IsStopping() {
		s.RequestStop()
		return true
	}
	e.Cleanup(m.layersCache)
	m.effects = append(m.effects[:idx], m.effects[idx+1:]...)
	return true
}

// RemoveByID looks up the effect with the given ID and applies the same
// stop-or-remove logic as Remove.
func (m *Manager) RemoveByID(id string) bool {
	for _, e := range m.effects {
		if e.ID() == id {
			return m.Remove(e)
		}
	}
	return false
}

func (m *Manager) indexOf(target frame.Effect) int {
	for i, e := range m.effects {
		if e == target {
			return i
		}
	}
	return -1
}

// Clear requests fade-out on every stoppable effect still running, and
// immediately cleans up and drops everything else.
func (m *Manager) Clear() {
	var kept []frame.Effect
	for _, e := range m.effects {
		if s, ok := e.(Stoppable); ok && !s.IsStopping() {
			s.RequestStop()
			kept = append(kept, e)
			continue
		}
		if s, ok := e.(Stoppable); ok && s.IsStopping() {
			kept = append(kept, e)
			continue
		}
		e.Cleanup(m.layersCache)
	}
	m.effects = kept
}

// AvailableEffects lists the registered effect type names.
func (m *Manager) AvailableEffects() []string {
	names := make([]string, 0, len(m.constructors))
	for name := range m.constructors {
		names = append(names, name)
	}
	return names
}

// Effects sweeps any effect that has reached StateFinished on its own
// (cleaning it up and dropping it), then returns the remaining live list.
func (m *Manager) Effects() []frame.Effect {
	var kept []frame.Effect
	for _, e := range m.effects {
		if s, ok := e.(Stateful); ok && s.State() == frame.StateFinished {
			e.Cleanup(m.layersCache)
			continue
		}
		kept = append(kept, e)
	}
	m.effects = kept
	return append([]frame.Effect(nil), m.effects...)
}

// UpdateLayersCache records the current layer list, used as the argument
// to Cleanup for effects removed afterward.
func (m *Manager) UpdateLayersCache(layers []*frame.Layer) {
	m.layersCache = layers
}

// EffectParams is one effect's saved name/parameter pair, as handed back by
// SaveParams and consumed by Restore. Params only carries an effect's
// exported fields — the same JSON round trip addEffect uses to apply a
// client's params onto a freshly constructed effect skips unexported
// lifecycle state (phase, rng, fade progress, and so on) automatically.
type EffectParams struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

// SaveParams snapshots every live effect as a (name, params) pair suitable
// for Restore, marshaling each effect's exported fields to a plain map.
func (m *Manager) SaveParams() []EffectParams {
	out := make([]EffectParams, 0, len(m.effects))
	for _, e := range m.effects {
		name := m.NameOf(e)
		if name == "" {
			continue
		}
		raw, err := json.Marshal(e)
		if err != nil {
			continue
		}
		var params map[string]any
		if err := json.Unmarshal(raw, &params); err != nil {
			continue
		}
		out = append(out, EffectParams{Name: name, Params: params})
	}
	return out
}

// Restore clears the live effect list and recreates it from a snapshot
// previously produced by SaveParams, restoring each effect's exported
// fields via the same JSON round trip addEffect uses for client-supplied
// params. Entries naming an unknown effect type are skipped.
func (m *Manager) Restore(saved []EffectParams) {
	m.effects = nil
	for _, sp := range saved {
		e, err := m.AddByName(sp.Name)
		if err != nil {
			continue
		}
		if len(sp.Params) == 0 {
			continue
		}
		paramsJSON, err := json.Marshal(sp.Params)
		if err != nil {
			continue
		}
		_ = json.Unmarshal(paramsJSON, e)
	}
}
