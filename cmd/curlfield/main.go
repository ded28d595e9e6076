// Command curlfield opens a window with a curl noise particle field that
// follows the cursor.
//
// Usage: go run ./cmd/curlfield [-config file.yaml] [-backend gpu|cpu|static]
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gekko3d/curlfield"
	"github.com/gekko3d/curlfield/config"
	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	configPath := flag.String("config", "", "YAML file layered over the built-in defaults")
	debug := flag.Bool("debug", false, "enable debug logging")
	backend := flag.String("backend", "", "simulation backend: gpu, cpu or static")
	seed := flag.Int64("seed", 0, "random seed, 0 keeps the configured one")
	perfCSV := flag.String("perf-csv", "", "write periodic perf rows to this CSV file")
	writeConfig := flag.String("write-config", "", "write the effective configuration to this file and exit")
	headless := flag.Int("headless", 0, "run this many frames on the CPU without a window and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *debug {
		cfg.Logging.Debug = true
	}
	if *backend != "" {
		cfg.Simulation.Backend = *backend
	}
	if *seed != 0 {
		cfg.Simulation.Seed = *seed
	}
	if *perfCSV != "" {
		cfg.Telemetry.PerfCSV = *perfCSV
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *writeConfig != "" {
		if err := cfg.WriteYAML(*writeConfig); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if *headless > 0 {
		runHeadless(cfg, *headless)
		return
	}

	app := curlfield.NewAppBuilder().
		UseStates(curlfield.StateRunning, curlfield.StateExiting).
		UseModule(modules(cfg)...).
		Build()

	for _, name := range cfg.Adjusted {
		app.Logger().Warnf("config: clamped %s", name)
	}
	app.Run()
}

func modules(cfg *config.Config) []curlfield.Module {
	return []curlfield.Module{
		curlfield.LoggingModule{Prefix: cfg.Logging.Prefix, Debug: cfg.Logging.Debug},
		telemetryModule(cfg),
		curlfield.TimeModule{},
		curlfield.WindowModule{Width: cfg.Window.Width, Height: cfg.Window.Height, Title: cfg.Window.Title},
		curlfield.InputModule{},
		curlfield.ViewportModule{Width: cfg.Window.Width, Height: cfg.Window.Height, PixelRatio: 1},
		cameraModule(cfg),
		curlfield.PointerModule{MaxDistance: cfg.Pointer.MaxDistance},
		particlesModule(cfg),
		curlfield.RendererModule{
			Scene: curlfield.SceneSettings{
				Background:   cfg.Background(),
				Light:        cfg.Light(),
				FloorY:       cfg.Scene.FloorY,
				FloorSize:    cfg.Scene.FloorSize,
				FogNear:      cfg.Scene.FogNear,
				FogFar:       cfg.Scene.FogFar,
				Ambient:      cfg.Scene.Ambient,
				Metalness:    cfg.Scene.Metalness,
				Roughness:    cfg.Scene.Roughness,
				EnvIntensity: 1,
				EnvMapDir:    cfg.Scene.EnvMapDir,
			},
			Post: curlfield.PostSettings{
				Dof:              cfg.DepthOfField(),
				Exposure:         cfg.PostFX.Exposure,
				VignetteOffset:   cfg.PostFX.VignetteOffset,
				VignetteDarkness: cfg.PostFX.VignetteDarkness,
			},
		},
		curlfield.ControlsModule{HUD: cfg.Telemetry.HUD},
	}
}

func telemetryModule(cfg *config.Config) curlfield.TelemetryModule {
	return curlfield.TelemetryModule{
		Window:      cfg.Telemetry.Window,
		LogInterval: time.Duration(cfg.Telemetry.LogInterval * float64(time.Second)),
		CSVPath:     cfg.Telemetry.PerfCSV,
	}
}

func cameraModule(cfg *config.Config) curlfield.CameraModule {
	c := cfg.Camera
	return curlfield.CameraModule{
		Position:    cfg.CameraPosition(),
		Target:      mgl32.Vec3(c.Target),
		FovY:        c.Fov,
		Near:        c.Near,
		Far:         c.Far,
		MinDistance: c.MinDistance,
		MaxDistance: c.MaxDistance,
		MinPolar:    c.MinPolar,
		MaxPolar:    c.MaxPolar,
		Damping:     c.Damping,
	}
}

func particlesModule(cfg *config.Config) curlfield.ParticlesModule {
	s := cfg.Simulation
	return curlfield.ParticlesModule{
		Grid:             cfg.Grid(),
		Seed:             s.Seed,
		SpawnRadius:      s.SpawnRadius,
		Bounds:           s.Bounds,
		Backend:          s.Backend,
		Params:           cfg.SimulationParams(),
		Palette:          cfg.Palette(),
		WatchdogInterval: s.WatchdogInterval,
	}
}

// runHeadless steps the field on the CPU at a fixed 60 Hz and reports the
// frame timings.
func runHeadless(cfg *config.Config, frames int) {
	particles := particlesModule(cfg)
	if particles.Backend == config.BackendGPU {
		particles.Backend = config.BackendCPU
	}
	app := curlfield.NewAppBuilder().
		UseStates(curlfield.StateRunning, curlfield.StateExiting).
		UseModule(
			curlfield.LoggingModule{Prefix: cfg.Logging.Prefix, Debug: cfg.Logging.Debug},
			telemetryModule(cfg),
			curlfield.TimeModule{Fixed: time.Second / 60},
			curlfield.ViewportModule{Width: cfg.Window.Width, Height: cfg.Window.Height, PixelRatio: 1},
			cameraModule(cfg),
			curlfield.PointerModule{MaxDistance: cfg.Pointer.MaxDistance},
			particles,
		).
		Build()

	for i := 0; i < frames && app.Tick(); i++ {
	}
	field, _ := curlfield.Resource[curlfield.ParticleField](app)
	app.Logger().Infof("%d steps, simulation time %.2fs, finite state: %v", field.Steps, field.Time, field.State.Finite())
	app.Commands().ChangeState(curlfield.StateExiting)
	app.Tick()
}
