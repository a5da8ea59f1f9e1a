// Package app defines the pluggable-application contract (App, Event,
// Query) and the Manager that switches between registered apps, saving
// the last rendered frame so a switch can hand off through a transition.
//
// The Python original discovers apps by walking an apps/ directory and
// importing each apps/<name>/app.py module at runtime. Go has no
// equivalent of importlib, so apps register themselves at init time
// (see internal/apps/*) into a static Registry instead.
package app

import (
	"sync"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

// Event is any value an app declares it can receive via Update.
type Event interface{}

// ButtonEvent is the event injected from a physical button press reported
// by the transport's inbound TYPE_BUTTON packet. Any app that wants to
// react to hardware buttons declares it in Events().
type ButtonEvent struct {
	ButtonID byte
}

// Query is any value an app declares it can answer via HandleQuery.
type Query interface{}

// App is one pluggable display application: it advances its own state on
// Update and renders in one of three shapes: a fully composed
// FrameDescription for the renderer to rasterize, a single pre-rendered
// Frame (64x32 or 128x32), or (when the third return is non-nil) a 64x32 left/right
// pair to concatenate horizontally into the full matrix.
type App interface {
	Name() string
	Start()
	Stop()
	Update(dt float64, events []Event)
	Render() (*frame.FrameDescription, *frame.Frame, *frame.Frame)
	Queries() []Query
	Events() []Event
	HandleQuery(q Query) (any, error)
}

// Registry maps app names to constructors; apps populate it from their
// own package init functions, then NewManager instantiates each one.
var Registry = map[string]func() App{}

// Register adds a constructor under name. Call from an app package's
// init() function.
func Register(name string, ctor func() App) {
	Registry[name] = ctor
}

// FrameRenderer renders a FrameDescription into a Frame, matching
// internal/render.Renderer's signature without importing it directly
// (render already imports frame; app must not import render).
type FrameRenderer interface {
	RenderFrame(desc *frame.FrameDescription, dt float64) *frame.Frame
}

// TransitionStarter begins a frame-level transition. It is satisfied by
// internal/transition.Engine's StartTransition method and declared here to
// avoid a direct import cycle.
type TransitionStarter interface {
	StartTransition(from, to *frame.Frame)
}

// Manager owns the active app and drives transitions on app switches. It
// also holds the inbound event FIFO the HTTP layer posts into and the
// main loop drains every tick — the only point of contact the API layer
// has with the running app.
type Manager struct {
	active    App
	available map[string]App
	lastFrame *frame.Frame

	eventsMu sync.Mutex
	events   []Event

	Renderer    FrameRenderer
	Transitions TransitionStarter
}

// NewManager instantiates every app registered in Registry.
func NewManager() *Manager {
	m := &Manager{available: make(map[string]App)}
	for name, ctor := range Registry {
		inst := ctor()
		m.available[name] = inst
		_ = name
	}
	return m
}

// EnqueueEvent appends an event to the FIFO, in posting order.
func (m *Manager) EnqueueEvent(e Event) {
	m.eventsMu.Lock()
	m.events = append(m.events, e)
	m.eventsMu.Unlock()
}

// DrainEvents removes and returns every currently queued event, in FIFO
// order, for the main loop to pass to active.Update.
func (m *Manager) DrainEvents() []Event {
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()
	if len(m.events) == 0 {
		return nil
	}
	drained := m.events
	m.events = nil
	return drained
}

// SetActiveApp stops the current app (if any), starts app, and — when
// withTransition is set and there's a previous frame to transition from —
// kicks off a frame-level transition into app's first rendered frame.
func (m *Manager) SetActiveApp(a App, withTransition bool) {
	old := m.active
	if m.active != nil {
		m.active.Stop()
	}
	m.active = a
	if m.active != nil {
		m.active.Start()
	}

	if withTransition && old != nil && m.lastFrame != nil {
		m.startAppTransition()
	}
}

func (m *Manager) startAppTransition() {
	if m.lastFrame == nil || m.active == nil || m.Transitions == nil {
		return
	}
	desc, f, right := m.active.Render()
	var newFrame *frame.Frame
	switch {
	case desc != nil && m.Renderer != nil:
		newFrame = m.Renderer.RenderFrame(desc, 0.0)
	case f != nil && right != nil:
		newFrame = frame.ConcatHorizontal(f, right)
	case f != nil:
		newFrame = f
	default:
		return
	}
	m.Transitions.StartTransition(m.lastFrame, newFrame)
}

// SaveLastFrame records f as the frame a future app switch should
// transition from.
func (m *Manager) SaveLastFrame(f *frame.Frame) {
	m.lastFrame = f
}

// SetActiveAppByName looks up name in the available set and activates it.
func (m *Manager) SetActiveAppByName(name string, withTransition bool) bool {
	a, ok := m.available[name]
	if !ok {
		return false
	}
	m.SetActiveApp(a, withTransition)
	return true
}

// CurrentApp returns the active app, or nil.
func (m *Manager) CurrentApp() App { return m.active }

// AvailableApps returns every registered app instance.
func (m *Manager) AvailableApps() []App {
	out := make([]App, 0, len(m.available))
	for _, a := range m.available {
		out = append(out, a)
	}
	return out
}

// AvailableAppNames returns every registered app's name.
func (m *Manager) AvailableAppNames() []string {
	out := make([]string, 0, len(m.available))
	for name := range m.available {
		out = append(out, name)
	}
	return out
}
