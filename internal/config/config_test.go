package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
system:
  startup_app: luashow
led_strip:
  led_number: 60
`)
	g, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if g.System.TargetFPS != 60 {
		t.Fatalf("expected default target_fps 60, got %d", g.System.TargetFPS)
	}
	if g.VideoPlayer.MaxFPS != 30 {
		t.Fatalf("expected default max_fps 30, got %d", g.VideoPlayer.MaxFPS)
	}
	if g.LEDStrip.LEDNumber != 60 {
		t.Fatalf("expected led_number 60, got %d", g.LEDStrip.LEDNumber)
	}
}

func TestLoadRejectsMissingStartupApp(t *testing.T) {
	path := writeTempConfig(t, `
system:
  target_fps: 30
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for missing startup_app")
	}
}

func TestLoadRejectsOutOfRangeFPS(t *testing.T) {
	path := writeTempConfig(t, `
system:
  startup_app: bounce
  target_fps: 1000
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error for out-of-range target_fps")
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
