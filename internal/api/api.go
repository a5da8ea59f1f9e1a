// Package api wires the gin HTTP control plane described in the original
// system's api/*.py router generators: app switching, event emission,
// effect management, display mirroring and brightness control, plus
// per-app query endpoints generated from each app's declared Queries().
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cerotheproto/ledmatrixd/internal/app"
	"github.com/cerotheproto/ledmatrixd/internal/display"
	"github.com/cerotheproto/ledmatrixd/internal/effectmgr"
	"github.com/cerotheproto/ledmatrixd/internal/frame"
	"github.com/cerotheproto/ledmatrixd/internal/transport"
)

var errOutOfRange = errors.New("brightness level must be between 0 and 255")

// Server holds the handles the router needs to reach into the running
// daemon: the app manager, the effect manager, the display manager and
// the transport driver (for brightness).
type Server struct {
	Apps    *app.Manager
	Effects *effectmgr.Manager
	Display *display.Manager
	Driver  *transport.Driver
}

// NewRouter builds the gin engine and mounts every route group, in the
// teacher's gin.Default()-based style.
func NewRouter(s *Server) *gin.Engine {
	r := gin.Default()

	apps := r.Group("/api/apps")
	{
		apps.GET("/available", s.getAvailableApps)
		apps.GET("/active", s.getActiveApp)
		apps.POST("/activate/:name", s.activateApp)
		apps.POST("/:name/query/:query", s.handleAppQuery)
	}

	events := r.Group("/api/events")
	{
		events.POST("/emit/:event", s.emitEvent)
		events.GET("/types", s.getEventTypes)
	}

	effects := r.Group("/api/effects")
	{
		effects.POST("/add", s.addEffect)
		effects.DELETE("/:id", s.deleteEffect)
		effects.POST("/clear", s.clearEffects)
		effects.GET("/active", s.listActiveEffects)
		effects.GET("/metadata", s.effectMetadata)
	}

	r.GET("/api/display/mirror", s.getMirror)
	r.POST("/api/display/mirror", s.setMirror)

	r.GET("/api/brightness", s.getBrightness)
	r.POST("/api/brightness/:level", s.setBrightness)

	return r
}

func (s *Server) getAvailableApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"apps": s.Apps.AvailableAppNames()})
}

func (s *Server) getActiveApp(c *gin.Context) {
	active := s.Apps.CurrentApp()
	if active == nil {
		c.JSON(http.StatusOK, gin.H{"active": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": active.Name()})
}

func (s *Server) activateApp(c *gin.Context) {
	name := c.Param("name")
	if !s.Apps.SetActiveAppByName(name, true) {
		c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "active_app": name})
}

// typeName returns the bare type name gin route params are matched
// against, stripping any pointer indirection.
func typeName(v any) string {
	t := reflect.TypeOf(v)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

func (s *Server) emitEvent(c *gin.Context) {
	name := c.Param("event")
	active := s.Apps.CurrentApp()
	if active == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active app"})
		return
	}

	var matched app.Event
	for _, ev := range active.Events() {
		if typeName(ev) == name {
			matched = ev
			break
		}
	}
	if matched == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event '" + name + "' is not registered"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instance := reflect.New(reflect.TypeOf(matched)).Interface()
	if len(body) > 0 {
		if err := json.Unmarshal(body, instance); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	s.Apps.EnqueueEvent(reflect.ValueOf(instance).Elem().Interface())
	c.JSON(http.StatusAccepted, gin.H{"status": "ok", "event": name})
}

func (s *Server) getEventTypes(c *gin.Context) {
	events := map[string][]string{}
	queries := map[string][]string{}
	for _, a := range s.Apps.AvailableApps() {
		var names []string
		for _, ev := range a.Events() {
			names = append(names, typeName(ev))
		}
		if names != nil {
			events[a.Name()] = names
		}
		var qnames []string
		for _, q := range a.Queries() {
			qnames = append(qnames, typeName(q))
		}
		if qnames != nil {
			queries[a.Name()] = qnames
		}
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "queries": queries})
}

func (s *Server) handleAppQuery(c *gin.Context) {
	appName := c.Param("name")
	queryName := c.Param("query")

	var target app.App
	for _, a := range s.Apps.AvailableApps() {
		if a.Name() == appName {
			target = a
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "app not found"})
		return
	}

	var matchedQuery app.Query
	for _, q := range target.Queries() {
		if typeName(q) == queryName {
			matchedQuery = q
			break
		}
	}
	if matchedQuery == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "query '" + queryName + "' is not registered"})
		return
	}

	instance := reflect.New(reflect.TypeOf(matchedQuery)).Interface()
	body, _ := c.GetRawData()
	if len(body) > 0 {
		if err := json.Unmarshal(body, instance); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	result, err := target.HandleQuery(reflect.ValueOf(instance).Elem().Interface())
	if err != nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type addEffectRequest struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

func (s *Server) addEffect(c *gin.Context) {
	var req addEffectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := s.Effects.AddByName(req.Name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if len(req.Params) > 0 {
		paramsJSON, _ := json.Marshal(req.Params)
		if err := json.Unmarshal(paramsJSON, e); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": e.ID()})
}

func (s *Server) deleteEffect(c *gin.Context) {
	id := c.Param("id")
	if !s.Effects.RemoveByID(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "effect not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "id": id})
}

func (s *Server) clearEffects(c *gin.Context) {
	s.Effects.Clear()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listActiveEffects(c *gin.Context) {
	type effectInfo struct {
		ID    string            `json:"id"`
		Name  string            `json:"name"`
		Kind  frame.EffectKind  `json:"kind"`
		State frame.EffectState `json:"state"`
	}
	out := make([]effectInfo, 0, len(s.Effects.Effects()))
	for _, e := range s.Effects.Effects() {
		info := effectInfo{ID: e.ID(), Name: s.Effects.NameOf(e), Kind: e.Kind(), State: frame.StateRunning}
		if st, ok := e.(effectmgr.Stateful); ok {
			info.State = st.State()
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, gin.H{"effects": out})
}

func (s *Server) effectMetadata(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"effects": s.Effects.AvailableEffects()})
}

func (s *Server) getMirror(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mode": s.Display.Mode})
}

type mirrorRequest struct {
	Mode display.MirrorMode `json:"mode"`
}

func (s *Server) setMirror(c *gin.Context) {
	var req mirrorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.Display.SetMirrorMode(req.Mode)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": req.Mode})
}

func (s *Server) getBrightness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"brightness": s.Driver.Brightness()})
}

func (s *Server) setBrightness(c *gin.Context) {
	level, err := parseBrightnessLevel(c.Param("level"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Driver.SetBrightness(level); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"brightness": level})
}

func parseBrightnessLevel(raw string) (byte, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 255 {
		return 0, errOutOfRange
	}
	return byte(n), nil
}
