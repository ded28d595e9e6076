// Package config loads the application settings from YAML layered over the
// embedded defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/gekko3d/curlfield/fieldrt/core"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var ErrInvalid = errors.New("invalid configuration")

const (
	BackendGPU    = "gpu"
	BackendCPU    = "cpu"
	BackendStatic = "static"
)

type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Logging    LoggingConfig    `yaml:"logging"`
	Simulation SimulationConfig `yaml:"simulation"`
	Params     ParamsConfig     `yaml:"params"`
	PostFX     PostFXConfig     `yaml:"postfx"`
	Camera     CameraConfig     `yaml:"camera"`
	Pointer    PointerConfig    `yaml:"pointer"`
	Scene      SceneConfig      `yaml:"scene"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Adjusted lists the tunables that were clamped into range while loading.
	Adjusted []string `yaml:"-"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

type LoggingConfig struct {
	Prefix string `yaml:"prefix"`
	Debug  bool   `yaml:"debug"`
}

type SimulationConfig struct {
	TextureWidth     int     `yaml:"texture_width"`
	TextureHeight    int     `yaml:"texture_height"`
	Seed             int64   `yaml:"seed"`
	Backend          string  `yaml:"backend"`
	SpawnRadius      float32 `yaml:"spawn_radius"`
	Bounds           float32 `yaml:"bounds"`
	WatchdogInterval int     `yaml:"watchdog_interval"`
}

type ParamsConfig struct {
	Speed      float32 `yaml:"speed"`
	Attraction float32 `yaml:"attraction"`
	CurlSize   float32 `yaml:"curl_size"`
	TimeScale  float32 `yaml:"time_scale"`
	DieSpeed   float32 `yaml:"die_speed"`
	Radius     float32 `yaml:"radius"`
}

type PostFXConfig struct {
	DoFEnabled       bool    `yaml:"dof_enabled"`
	BokehScale       float32 `yaml:"bokeh_scale"`
	FocalLength      float32 `yaml:"focal_length"`
	Exposure         float32 `yaml:"exposure"`
	VignetteOffset   float32 `yaml:"vignette_offset"`
	VignetteDarkness float32 `yaml:"vignette_darkness"`
}

type CameraConfig struct {
	Fov              float32    `yaml:"fov"`
	Near             float32    `yaml:"near"`
	Far              float32    `yaml:"far"`
	PositionDir      [3]float32 `yaml:"position_dir"`
	PositionDistance float32    `yaml:"position_distance"`
	Target           [3]float32 `yaml:"target"`
	MinDistance      float32    `yaml:"min_distance"`
	MaxDistance      float32    `yaml:"max_distance"`
	MinPolar         float32    `yaml:"min_polar"`
	MaxPolar         float32    `yaml:"max_polar"`
	Damping          float32    `yaml:"damping"`
}

type PointerConfig struct {
	MaxDistance float32 `yaml:"max_distance"`
}

type SceneConfig struct {
	Background     string     `yaml:"background"`
	Palette        []string   `yaml:"palette"`
	FloorY         float32    `yaml:"floor_y"`
	FloorSize      float32    `yaml:"floor_size"`
	FogNear        float32    `yaml:"fog_near"`
	FogFar         float32    `yaml:"fog_far"`
	Ambient        float32    `yaml:"ambient"`
	Metalness      float32    `yaml:"metalness"`
	Roughness      float32    `yaml:"roughness"`
	LightDirection [3]float32 `yaml:"light_direction"`
	LightDistance  float32    `yaml:"light_distance"`
	LightIntensity float32    `yaml:"light_intensity"`
	ShadowMapSize  uint32     `yaml:"shadow_map_size"`
	ShadowExtent   float32    `yaml:"shadow_extent"`
	ShadowNear     float32    `yaml:"shadow_near"`
	ShadowFar      float32    `yaml:"shadow_far"`
	EnvMapDir      string     `yaml:"env_map_dir"`
}

type TelemetryConfig struct {
	Window      int     `yaml:"window"`
	LogInterval float64 `yaml:"log_interval"`
	PerfCSV     string  `yaml:"perf_csv"`
	HUD         bool    `yaml:"hud"`
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load reads path over the embedded defaults; fields absent from the file
// keep their default. An empty path loads the defaults only.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.clampTunables()
	return cfg, nil
}

func invalid(field string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalid, field, fmt.Sprintf(format, args...))
}

// Validate checks the settings that have no sensible clamp.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return invalid("window", "size %dx%d", c.Window.Width, c.Window.Height)
	}
	if _, err := core.NewGrid(c.Simulation.TextureWidth, c.Simulation.TextureHeight); err != nil {
		return invalid("simulation.texture_width/height", "%v", err)
	}
	switch c.Simulation.Backend {
	case BackendGPU, BackendCPU, BackendStatic:
	default:
		return invalid("simulation.backend", "unknown backend %q", c.Simulation.Backend)
	}
	if !(c.Simulation.SpawnRadius > 0) {
		return invalid("simulation.spawn_radius", "must be > 0, got %v", c.Simulation.SpawnRadius)
	}
	if !(c.Simulation.Bounds > 0) {
		return invalid("simulation.bounds", "must be > 0, got %v", c.Simulation.Bounds)
	}
	if c.Simulation.WatchdogInterval < 0 {
		return invalid("simulation.watchdog_interval", "must be >= 0")
	}
	if !(c.Camera.Near > 0) || !(c.Camera.Far > c.Camera.Near) {
		return invalid("camera", "near %v far %v", c.Camera.Near, c.Camera.Far)
	}
	if !(c.Camera.Fov > 0 && c.Camera.Fov < 180) {
		return invalid("camera.fov", "%v", c.Camera.Fov)
	}
	if mgl32.Vec3(c.Camera.PositionDir).Len() == 0 {
		return invalid("camera.position_dir", "zero vector")
	}
	if c.Camera.MinPolar > c.Camera.MaxPolar || c.Camera.MinDistance > c.Camera.MaxDistance {
		return invalid("camera", "min/max constraints are inverted")
	}
	if !(c.Pointer.MaxDistance > 0) {
		return invalid("pointer.max_distance", "must be > 0")
	}
	if _, err := core.ParseHexColor(c.Scene.Background); err != nil {
		return invalid("scene.background", "%v", err)
	}
	if _, err := core.ParsePalette(c.Scene.Palette...); err != nil {
		return invalid("scene.palette", "%v", err)
	}
	if mgl32.Vec3(c.Scene.LightDirection).Len() == 0 {
		return invalid("scene.light_direction", "zero vector")
	}
	if c.Scene.ShadowMapSize == 0 || c.Scene.ShadowMapSize > 8192 {
		return invalid("scene.shadow_map_size", "%d", c.Scene.ShadowMapSize)
	}
	if c.Telemetry.Window < 1 {
		return invalid("telemetry.window", "must be >= 1")
	}
	return nil
}

func (c *Config) clampTunables() {
	clamp := func(spec core.ParamSpec, v *float32) {
		if got := spec.Clamp(*v); got != *v {
			c.Adjusted = append(c.Adjusted, fmt.Sprintf("%s %v -> %v", spec.Key, *v, got))
			*v = got
		}
	}
	clamp(core.SpeedSpec, &c.Params.Speed)
	clamp(core.AttractionSpec, &c.Params.Attraction)
	clamp(core.CurlSizeSpec, &c.Params.CurlSize)
	clamp(core.TimeScaleSpec, &c.Params.TimeScale)
	clamp(core.DieSpeedSpec, &c.Params.DieSpeed)
	clamp(core.RadiusSpec, &c.Params.Radius)
	clamp(core.BokehScaleSpec, &c.PostFX.BokehScale)
	clamp(core.FocalLengthSpec, &c.PostFX.FocalLength)
}

func (c *Config) Grid() core.Grid {
	return core.Grid{Width: c.Simulation.TextureWidth, Height: c.Simulation.TextureHeight}
}

func (c *Config) SimulationParams() core.Params {
	p := c.Params
	return core.Params{
		Speed:      p.Speed,
		Attraction: p.Attraction,
		CurlSize:   p.CurlSize,
		TimeScale:  p.TimeScale,
		DieSpeed:   p.DieSpeed,
		Radius:     p.Radius,
	}
}

func (c *Config) DepthOfField() core.DepthOfField {
	return core.DepthOfField{
		Enabled:     c.PostFX.DoFEnabled,
		BokehScale:  c.PostFX.BokehScale,
		FocalLength: c.PostFX.FocalLength,
	}
}

func (c *Config) Palette() core.Palette {
	return core.MustPalette(c.Scene.Palette...)
}

func (c *Config) Background() mgl32.Vec3 {
	bg, _ := core.ParseHexColor(c.Scene.Background)
	return bg
}

func (c *Config) CameraPosition() mgl32.Vec3 {
	return mgl32.Vec3(c.Camera.PositionDir).Normalize().Mul(c.Camera.PositionDistance)
}

func (c *Config) Light() core.DirectionalLight {
	l := core.DefaultDirectionalLight()
	l.Position = mgl32.Vec3(c.Scene.LightDirection).Normalize().Mul(c.Scene.LightDistance)
	l.Intensity = c.Scene.LightIntensity
	l.HalfExtent = c.Scene.ShadowExtent
	l.Near = c.Scene.ShadowNear
	l.Far = c.Scene.ShadowFar
	l.MapSize = c.Scene.ShadowMapSize
	return l
}

// WriteYAML saves the effective configuration.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
