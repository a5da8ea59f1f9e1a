// Package config loads and validates the daemon's YAML configuration,
// grounded on the original system's pydantic GlobalConfig model.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// SystemConfig is the `system` section: transport URI, loop rate, the
// app activated at startup.
type SystemConfig struct {
	Transport  string `yaml:"transport"`
	WSEnabled  bool   `yaml:"ws_enabled"`
	StartupApp string `yaml:"startup_app" validate:"required"`
	TargetFPS  int    `yaml:"target_fps" validate:"gte=1,lte=240"`
}

// ReactiveFaceConfig is the `reactive_face` section.
type ReactiveFaceConfig struct {
	DefaultPreset string `yaml:"default_preset"`
}

// LEDStripConfig is the `led_strip` section.
type LEDStripConfig struct {
	LEDNumber int `yaml:"led_number" validate:"gte=0"`
}

// VideoPlayerConfig is the `video_player` section.
type VideoPlayerConfig struct {
	DefaultVideo *string `yaml:"default_video"`
	MaxFPS       int     `yaml:"max_fps" validate:"gte=1,lte=240"`
}

// WebUIConfig is the `webui` section.
type WebUIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Port    int    `yaml:"port" validate:"gte=0,lte=65535"`
	RunCmd  string `yaml:"run_cmd"`
}

// Global is the full decoded config.yaml.
type Global struct {
	System       SystemConfig       `yaml:"system" validate:"required"`
	ReactiveFace ReactiveFaceConfig `yaml:"reactive_face"`
	LEDStrip     LEDStripConfig     `yaml:"led_strip"`
	VideoPlayer  VideoPlayerConfig  `yaml:"video_player"`
	WebUI        WebUIConfig        `yaml:"webui"`
}

// defaults applies the field defaults the original pydantic models carry
// (target_fps=60, max_fps=30) before validation, since go-yaml doesn't
// apply struct-tag defaults on its own.
func (g *Global) defaults() {
	if g.System.TargetFPS == 0 {
		g.System.TargetFPS = 60
	}
	if g.VideoPlayer.MaxFPS == 0 {
		g.VideoPlayer.MaxFPS = 30
	}
	if g.WebUI.Path == "" {
		g.WebUI.Path = "../webui"
	}
	if g.WebUI.RunCmd == "" {
		g.WebUI.RunCmd = "pnpm start"
	}
}

var validate = validator.New()

// Load reads path, decodes it as YAML into a Global, applies defaults,
// and validates struct tags.
func Load(path string) (*Global, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var g Global
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	g.defaults()

	if err := validate.Struct(&g); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return &g, nil
}
