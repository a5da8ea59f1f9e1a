package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cerotheproto/ledmatrixd/internal/app"
	"github.com/cerotheproto/ledmatrixd/internal/display"
	"github.com/cerotheproto/ledmatrixd/internal/effectmgr"
	"github.com/cerotheproto/ledmatrixd/internal/frame"
	"github.com/cerotheproto/ledmatrixd/internal/transport"

	_ "github.com/cerotheproto/ledmatrixd/internal/apps/bounce"
	_ "github.com/cerotheproto/ledmatrixd/internal/apps/luashow"
)

func newTestServer(t *testing.T) (*gin.Engine, *Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	driver, err := transport.NewDriver("udp://127.0.0.1:15555", true)
	if err != nil {
		t.Fatal(err)
	}

	s := &Server{
		Apps:    app.NewManager(),
		Effects: effectmgr.New(),
		Display: display.New(),
		Driver:  driver,
	}
	s.Apps.SetActiveAppByName("luashow", false)
	return NewRouter(s), s
}

func doRequest(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestGetAvailableApps(t *testing.T) {
	r, _ := newTestServer(t)
	rec := doRequest(r, http.MethodGet, "/api/apps/available", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		AvailableApps []string `json:"apps"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, n := range body.AvailableApps {
		if n == "luashow" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected luashow in available apps, got %v", body.AvailableApps)
	}
}

func TestActivateUnknownAppReturns404(t *testing.T) {
	r, _ := newTestServer(t)
	rec := doRequest(r, http.MethodPost, "/api/apps/activate/nonexistent", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestEmitUnknownEventReturns404(t *testing.T) {
	r, _ := newTestServer(t)
	rec := doRequest(r, http.MethodPost, "/api/events/emit/NoSuchEvent", []byte(`{}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestEmitKnownEventIsQueued(t *testing.T) {
	r, s := newTestServer(t)
	body := []byte(`{"Name":"RemoveLayerEvent","Layer":{"Name":"hello"}}`)
	rec := doRequest(r, http.MethodPost, "/api/events/emit/AddLayerEvent", body)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	drained := s.Apps.DrainEvents()
	if len(drained) != 1 {
		t.Fatalf("expected 1 queued event, got %d", len(drained))
	}
}

func TestAddAndListAndClearEffects(t *testing.T) {
	r, _ := newTestServer(t)

	addBody := []byte(`{"name":"Rainbow","params":{"Speed":2.5}}`)
	rec := doRequest(r, http.MethodPost, "/api/effects/add", addBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, http.MethodGet, "/api/effects/active", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var listed struct {
		Effects []struct {
			ID    string            `json:"id"`
			Name  string            `json:"name"`
			Kind  frame.EffectKind  `json:"kind"`
			State frame.EffectState `json:"state"`
		} `json:"effects"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if len(listed.Effects) != 1 || listed.Effects[0].Kind != frame.EffectRainbow {
		t.Fatalf("expected one active Rainbow effect, got %+v", listed.Effects)
	}
	if listed.Effects[0].Name != "Rainbow" {
		t.Fatalf("expected name Rainbow, got %q", listed.Effects[0].Name)
	}
	if listed.Effects[0].State != frame.StateFadeIn {
		t.Fatalf("expected a freshly added rainbow to be fading in, got %v", listed.Effects[0].State)
	}

	rec = doRequest(r, http.MethodPost, "/api/effects/clear", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAddUnknownEffectReturns404(t *testing.T) {
	r, _ := newTestServer(t)
	rec := doRequest(r, http.MethodPost, "/api/effects/add", []byte(`{"name":"Nonexistent"}`))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestBrightnessGetSetRoundTrip(t *testing.T) {
	r, _ := newTestServer(t)
	rec := doRequest(r, http.MethodPost, "/api/brightness/200", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, http.MethodGet, "/api/brightness", nil)
	var body struct {
		Brightness int `json:"brightness"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Brightness != 200 {
		t.Fatalf("expected brightness 200, got %d", body.Brightness)
	}
}

func TestBrightnessOutOfRangeReturns400(t *testing.T) {
	r, _ := newTestServer(t)
	rec := doRequest(r, http.MethodPost, "/api/brightness/999", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMirrorGetSetRoundTrip(t *testing.T) {
	r, _ := newTestServer(t)
	rec := doRequest(r, http.MethodPost, "/api/display/mirror", []byte(`{"mode":1}`))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, http.MethodGet, "/api/display/mirror", nil)
	var body struct {
		Mode display.MirrorMode `json:"mode"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Mode != display.MirrorLeft {
		t.Fatalf("expected mirror mode %d after set, got %d", display.MirrorLeft, body.Mode)
	}
}
