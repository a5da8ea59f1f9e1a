package app

import (
	"testing"

	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

type stubApp struct {
	Base
	started bool
	stopped bool
}

func (s *stubApp) Start() { s.started = true }
func (s *stubApp) Stop()  { s.stopped = true }
func (s *stubApp) Render() (*frame.FrameDescription, *frame.Frame, *frame.Frame) {
	return nil, frame.New(8, 8), nil
}

type stubRenderer struct{ called int }

func (r *stubRenderer) RenderFrame(desc *frame.FrameDescription, dt float64) *frame.Frame {
	r.called++
	return frame.New(desc.Width, desc.Height)
}

type stubTransitions struct {
	startedFrom, startedTo *frame.Frame
}

func (s *stubTransitions) StartTransition(from, to *frame.Frame) {
	s.startedFrom, s.startedTo = from, to
}

func TestSetActiveAppStopsOldStartsNew(t *testing.T) {
	m := &Manager{available: make(map[string]App)}
	first := &stubApp{Base: Base{AppName: "first"}}
	second := &stubApp{Base: Base{AppName: "second"}}

	m.SetActiveApp(first, false)
	if !first.started {
		t.Fatal("expected first app started")
	}

	m.SetActiveApp(second, false)
	if !first.stopped {
		t.Fatal("expected first app stopped on switch")
	}
	if !second.started {
		t.Fatal("expected second app started")
	}
	if m.CurrentApp() != second {
		t.Fatal("expected second app to be active")
	}
}

func TestSetActiveAppByNameUnknown(t *testing.T) {
	m := &Manager{available: make(map[string]App)}
	if m.SetActiveAppByName("missing", false) {
		t.Fatal("expected false for unknown app name")
	}
}

func TestSetActiveAppTriggersTransitionWhenLastFrameSaved(t *testing.T) {
	m := &Manager{available: make(map[string]App)}
	rend := &stubRenderer{}
	trans := &stubTransitions{}
	m.Renderer = rend
	m.Transitions = trans

	first := &stubApp{Base: Base{AppName: "first"}}
	m.SetActiveApp(first, false)
	m.SaveLastFrame(frame.New(8, 8))

	second := &stubApp{Base: Base{AppName: "second"}}
	m.SetActiveApp(second, true)

	if trans.startedTo == nil {
		t.Fatal("expected a transition to have been started")
	}
}

func TestDrainEventsReturnsFIFOOrderAndClears(t *testing.T) {
	m := &Manager{available: make(map[string]App)}
	m.EnqueueEvent("first")
	m.EnqueueEvent("second")

	drained := m.DrainEvents()
	if len(drained) != 2 || drained[0] != "first" || drained[1] != "second" {
		t.Fatalf("expected FIFO [first second], got %v", drained)
	}
	if more := m.DrainEvents(); more != nil {
		t.Fatalf("expected nil after drain, got %v", more)
	}
}

func TestBaseHandleQueryReturnsUnsupportedError(t *testing.T) {
	b := &Base{AppName: "x"}
	_, err := b.HandleQuery(struct{}{})
	if err == nil {
		t.Fatal("expected unsupported query error")
	}
}
