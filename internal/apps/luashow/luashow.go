// Package luashow is a demo application that composites a stack of
// Lua-scripted layers into the matrix frame, adapted from the teacher
// binary's Lua-driven strip pipeline (PipelineManager + the Lua
// get_pixel/set_pixel bridge) to a 2D surface instead of a single strip.
package luashow

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/cerotheproto/ledmatrixd/internal/app"
	"github.com/cerotheproto/ledmatrixd/internal/frame"
)

func init() {
	app.Register("luashow", func() app.App { return New() })
}

// LayerType mirrors the teacher's BASE/TEMPORARY layer roles.
type LayerType int

const (
	LayerBase LayerType = iota
	LayerTemporary
)

// ScriptLayer is one named Lua layer in the composite stack.
type ScriptLayer struct {
	Name           string
	Code           string
	Type           LayerType
	Priority       int
	TimeoutSeconds float64
	AddedAt        time.Time
}

// AddLayerEvent requests adding or replacing a layer.
type AddLayerEvent struct {
	Layer ScriptLayer
}

// RemoveLayerEvent requests dropping a named layer.
type RemoveLayerEvent struct {
	Name string
}

// App runs the Lua layer stack and renders it to a matrix-sized frame.
type App struct {
	app.Base

	mu        sync.Mutex
	layers    map[string]ScriptLayer
	startTime time.Time
	elapsed   float64

	Width, Height int
}

// New constructs a 64x32 luashow app with no layers beyond the base black
// layer installed on Start.
func New() *App {
	return &App{
		Base:   app.Base{AppName: "luashow"},
		layers: make(map[string]ScriptLayer),
		Width:  64,
		Height: 32,
	}
}

// Start resets the clock and installs the default black base layer.
func (a *App) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.startTime = time.Now()
	a.elapsed = 0
	a.layers = map[string]ScriptLayer{
		"base_black": {
			Name:    "base_black",
			Type:    LayerBase,
			Code:    "for y=0,Height-1 do for x=0,Width-1 do set_pixel(x, y, 0.0, 0.0, 0.0) end end",
			AddedAt: a.startTime,
		},
	}
}

// AddLayer installs or replaces a layer, enforcing a single BASE layer at
// a time and tracking TEMPORARY layers' insertion time for their timeout.
func (a *App) AddLayer(l ScriptLayer) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch l.Type {
	case LayerBase:
		for name, existing := range a.layers {
			if existing.Type == LayerBase && name != l.Name {
				delete(a.layers, name)
			}
		}
	case LayerTemporary:
		l.AddedAt = time.Now()
	}

	if existing, ok := a.layers[l.Name]; ok && l.Type != LayerTemporary {
		l.AddedAt = existing.AddedAt
	} else if l.AddedAt.IsZero() {
		l.AddedAt = time.Now()
	}

	a.layers[l.Name] = l
	return nil
}

// RemoveLayer drops a named layer.
func (a *App) RemoveLayer(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.layers[name]; !ok {
		return fmt.Errorf("layer %q does not exist", name)
	}
	delete(a.layers, name)
	return nil
}

// Update applies AddLayerEvent/RemoveLayerEvent and advances the clock.
func (a *App) Update(dt float64, events []app.Event) {
	for _, e := range events {
		switch ev := e.(type) {
		case AddLayerEvent:
			_ = a.AddLayer(ev.Layer)
		case RemoveLayerEvent:
			_ = a.RemoveLayer(ev.Name)
		}
	}
	a.mu.Lock()
	a.elapsed = time.Since(a.startTime).Seconds()
	a.mu.Unlock()
}

// Events lists the event types this app understands.
func (a *App) Events() []app.Event {
	return []app.Event{AddLayerEvent{}, RemoveLayerEvent{}}
}

// Render sweeps timed-out TEMPORARY layers, executes the remaining stack
// in BASE-first/priority order into a float accumulator, and converts the
// result to a Frame through the hardware gamma/bias correction curve.
func (a *App) Render() (*frame.FrameDescription, *frame.Frame, *frame.Frame) {
	a.mu.Lock()
	defer a.mu.Unlock()

	current := a.elapsed
	active := make([]ScriptLayer, 0, len(a.layers))
	for name, l := range a.layers {
		if l.Type == LayerTemporary && l.TimeoutSeconds > 0 {
			if current-l.AddedAt.Sub(a.startTime).Seconds() > l.TimeoutSeconds {
				delete(a.layers, name)
				continue
			}
		}
		active = append(active, l)
	}

	sort.Slice(active, func(i, j int) bool {
		if active[i].Type == LayerBase {
			return true
		}
		if active[j].Type == LayerBase {
			return false
		}
		return active[i].Priority < active[j].Priority
	})

	buffer := make([]float64, a.Width*a.Height*3)
	for _, l := range active {
		layerElapsed := current - l.AddedAt.Sub(a.startTime).Seconds()
		if err := l.execute(buffer, a.Width, a.Height, current, layerElapsed); err != nil {
			continue
		}
	}

	f := frame.New(a.Width, a.Height)
	for i := 0; i < a.Width*a.Height; i++ {
		r, g, b := fixColor(buffer[i*3], buffer[i*3+1], buffer[i*3+2])
		f.Pixels[i*3] = r
		f.Pixels[i*3+1] = g
		f.Pixels[i*3+2] = b
	}
	return nil, f, nil
}

// HandleQuery reports that luashow has no queryable state.
func (a *App) HandleQuery(q app.Query) (any, error) {
	return nil, fmt.Errorf("luashow does not support queries")
}

// fixColor carries over the WS2812 strip driver's gamma/bias correction
// curve (squared brightness, green/blue channel bias toward the panel's
// observed color temperature).
func fixColor(r, g, b float64) (byte, byte, byte) {
	const maxVal = 255.0
	rOut := math.Pow(r/maxVal, 2.0) * maxVal
	gOut := math.Pow(g/maxVal, 2.0) * (maxVal * (0x88 / maxVal))
	bOut := math.Pow(b/maxVal, 2.0) * (maxVal * (0x66 / maxVal))
	return clampByte(rOut), clampByte(gOut), clampByte(bOut)
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func (l *ScriptLayer) execute(buffer []float64, width, height int, pipelineTime, layerElapsedTime float64) error {
	L := lua.NewState()
	defer L.Close()

	L.SetGlobal("Width", lua.LNumber(width))
	L.SetGlobal("Height", lua.LNumber(height))

	L.SetGlobal("get_time", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(pipelineTime))
		return 1
	}))
	L.SetGlobal("get_layer_elapsed_time", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(layerElapsedTime))
		return 1
	}))

	L.SetGlobal("get_pixel", L.NewFunction(func(L *lua.LState) int {
		x := int(L.CheckNumber(1))
		y := int(L.CheckNumber(2))
		if x >= 0 && x < width && y >= 0 && y < height {
			idx := (y*width + x) * 3
			L.Push(lua.LNumber(buffer[idx] / 255.0))
			L.Push(lua.LNumber(buffer[idx+1] / 255.0))
			L.Push(lua.LNumber(buffer[idx+2] / 255.0))
			return 3
		}
		L.Push(lua.LNumber(0.0))
		L.Push(lua.LNumber(0.0))
		L.Push(lua.LNumber(0.0))
		return 3
	}))

	L.SetGlobal("set_pixel", L.NewFunction(func(L *lua.LState) int {
		x := int(L.CheckNumber(1))
		y := int(L.CheckNumber(2))
		rIn := float64(L.CheckNumber(3))
		gIn := float64(L.CheckNumber(4))
		bIn := float64(L.CheckNumber(5))
		if x >= 0 && x < width && y >= 0 && y < height {
			idx := (y*width + x) * 3
			buffer[idx] = clampFloat(rIn * 255.0)
			buffer[idx+1] = clampFloat(gIn * 255.0)
			buffer[idx+2] = clampFloat(bIn * 255.0)
		}
		return 0
	}))

	if err := L.DoString(l.Code); err != nil {
		return fmt.Errorf("executing lua script %q: %w", l.Name, err)
	}
	return nil
}

func clampFloat(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
