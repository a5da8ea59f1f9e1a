// Command ledmatrixd is the LED matrix + strip composition daemon: it
// loads config.yaml, runs the fixed-tick render/transport loop, and
// serves the HTTP control plane alongside it.
package main

import (
	"flag"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cerotheproto/ledmatrixd/internal/api"
	"github.com/cerotheproto/ledmatrixd/internal/app"
	"github.com/cerotheproto/ledmatrixd/internal/config"
	"github.com/cerotheproto/ledmatrixd/internal/display"
	"github.com/cerotheproto/ledmatrixd/internal/effectmgr"
	"github.com/cerotheproto/ledmatrixd/internal/effects"
	"github.com/cerotheproto/ledmatrixd/internal/frame"
	"github.com/cerotheproto/ledmatrixd/internal/ledstrip"
	"github.com/cerotheproto/ledmatrixd/internal/logging"
	"github.com/cerotheproto/ledmatrixd/internal/render"
	"github.com/cerotheproto/ledmatrixd/internal/transition"
	"github.com/cerotheproto/ledmatrixd/internal/transport"

	_ "github.com/cerotheproto/ledmatrixd/internal/apps/bounce"
	_ "github.com/cerotheproto/ledmatrixd/internal/apps/luashow"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to config.yaml")
	addr := flag.String("addr", ":8080", "HTTP control plane listen address")
	flag.Parse()

	log := logging.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}

	driver, err := transport.NewDriver(cfg.System.Transport, cfg.System.WSEnabled)
	if err != nil {
		log.Fatal().Err(err).Msg("initializing transport")
	}
	defer driver.Close()

	if udp := driver.UDP(); udp != nil {
		udp.Log = logging.Component(log, "transport.udp")
	}

	apps := app.NewManager()
	effectsMgr := effectmgr.New()
	displayMgr := display.New()
	strip := ledstrip.NewDominantColorCache()
	renderer := render.New()
	transitions := transition.NewEngine()

	apps.Renderer = renderer
	apps.Transitions = transitions

	if !apps.SetActiveAppByName(cfg.System.StartupApp, false) {
		log.Fatal().Str("app", cfg.System.StartupApp).Msg("startup_app is not a registered application")
	}

	if udp := driver.UDP(); udp != nil {
		udp.OnButton = func(buttonID byte) {
			apps.EnqueueEvent(app.ButtonEvent{ButtonID: buttonID})
		}
		go func() {
			if err := udp.ReadLoop(); err != nil {
				log.Error().Err(err).Msg("udp read loop exited")
			}
		}()
	}

	srv := &api.Server{Apps: apps, Effects: effectsMgr, Display: displayMgr, Driver: driver}
	router := api.NewRouter(srv)
	if ws := driver.WS(); ws != nil {
		router.GET("/ws/frames", gin.WrapH(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := ws.HandleUpgrade(w, r); err != nil {
				log.Warn().Err(err).Msg("websocket upgrade failed")
			}
		})))
	}

	go func() {
		log.Info().Str("addr", *addr).Msg("starting HTTP control plane")
		if err := router.Run(*addr); err != nil {
			log.Error().Err(err).Msg("HTTP server exited")
		}
	}()

	runLoop(loopDeps{
		apps:        apps,
		effects:     effectsMgr,
		display:     displayMgr,
		strip:       strip,
		renderer:    renderer,
		transitions: transitions,
		driver:      driver,
		ledCount:    cfg.LEDStrip.LEDNumber,
		targetFPS:   cfg.System.TargetFPS,
		log:         logging.Component(log, "loop"),
	})
}

type loopDeps struct {
	apps        *app.Manager
	effects     *effectmgr.Manager
	display     *display.Manager
	strip       *ledstrip.DominantColorCache
	renderer    *render.Renderer
	transitions *transition.Engine
	driver      *transport.Driver
	ledCount    int
	targetFPS   int
	log         zerolog.Logger
}

// runLoop implements the fixed-tick scheduler: drain events, update and
// render the active app, blend transitions, expand for display, and fan
// the result out to transport, at a steady 1/targetFPS cadence. A tick
// error is logged and the loop sleeps 10ms rather than terminating.
func runLoop(d loopDeps) {
	targetFPS := d.targetFPS
	if targetFPS <= 0 {
		targetFPS = 60
	}
	period := time.Second / time.Duration(targetFPS)

	last := time.Now()
	for {
		tickStart := time.Now()
		dt := tickStart.Sub(last).Seconds()
		last = tickStart

		events := d.apps.DrainEvents()

		active := d.apps.CurrentApp()
		if active == nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		active.Update(dt, events)
		desc, raw, right := active.Render()

		outFrame, rainbow, rainbowSpeed := composeFrame(d, desc, raw, right, dt)
		if outFrame == nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		outFrame = d.transitions.Process(outFrame, dt)
		d.apps.SaveLastFrame(outFrame)
		outFrame = d.display.Process(outFrame)

		if err := d.driver.DisplayFrame(outFrame); err != nil {
			d.log.Error().Err(err).Msg("sending frame")
		}

		if d.ledCount > 0 {
			stripPixels := ledstrip.Generate(d.strip, d.ledCount, outFrame, rainbow, rainbowSpeed)
			if err := d.driver.SendLEDStripFrame(stripPixels); err != nil {
				d.log.Error().Err(err).Msg("sending led strip frame")
			}
		}

		if elapsed := time.Since(tickStart); elapsed < period {
			time.Sleep(period - elapsed)
		}
	}
}

// composeFrame turns whatever active.Render() returned into a single
// Frame, folding the EffectManager's live effects into a FrameDescription
// before rasterizing, concatenating a left/right half pair into the full
// matrix when the app rendered one, and surfaces any active Rainbow
// effect so the caller can lock the LED strip's gradient to its rotation.
func composeFrame(d loopDeps, desc *frame.FrameDescription, raw, right *frame.Frame, dt float64) (*frame.Frame, rainbowPhaser, float64) {
	if desc != nil {
		desc.Effects = append(desc.Effects, d.effects.Effects()...)
		d.effects.UpdateLayersCache(desc.Layers)

		var rainbow *effects.Rainbow
		for _, e := range desc.Effects {
			if rb, ok := e.(*effects.Rainbow); ok {
				rainbow = rb
			}
		}

		out := d.renderer.RenderFrame(desc, dt)
		if rainbow != nil {
			return out, rainbow, rainbow.Speed
		}
		return out, nil, 0
	}

	if raw != nil && right != nil {
		return frame.ConcatHorizontal(raw, right), nil, 0
	}

	return raw, nil, 0
}

// rainbowPhaser mirrors internal/ledstrip's unexported interface so this
// package can pass a nil-able *effects.Rainbow without importing ledstrip's
// internals.
type rainbowPhaser interface {
	Phase() float64
}
