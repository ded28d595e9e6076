package curlfield

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/gekko3d/curlfield/config"
	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// manualInput provides an Input resource that tests drive directly.
type manualInput struct{}

func (manualInput) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
}

// headlessModules is the windowless stack: CPU simulation, fixed 60 Hz clock.
func headlessModules(t *testing.T, logs *bytes.Buffer) []Module {
	t.Helper()
	grid, err := core.NewGrid(16, 8)
	require.NoError(t, err)
	return []Module{
		LoggingModule{Prefix: "test", Out: logs, Err: logs},
		manualInput{},
		TimeModule{Fixed: time.Second / 60},
		ViewportModule{Width: 800, Height: 600, PixelRatio: 1},
		CameraModule{
			Position:    mgl32.Vec3{-300, 60, -300}.Normalize().Mul(320),
			Target:      mgl32.Vec3{0, 60, 0},
			FovY:        45,
			Near:        10,
			Far:         3000,
			MinDistance: 20,
			MaxDistance: 500,
			MinPolar:    0.3,
			MaxPolar:    math.Pi/2 - 0.1,
			Damping:     0.05,
		},
		PointerModule{MaxDistance: 2000},
		ParticlesModule{
			Grid:             grid,
			Seed:             7,
			SpawnRadius:      50,
			Bounds:           500,
			Backend:          config.BackendCPU,
			Params:           core.DefaultParams(),
			WatchdogInterval: 10,
		},
	}
}

func newHeadlessApp(t *testing.T, extra ...Module) (*App, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	app := NewAppBuilder().
		UseStates(StateRunning, StateExiting).
		UseModule(headlessModules(t, logs)...).
		UseModule(extra...).
		Build()
	return app, logs
}

func mustResource[T any](t *testing.T, app *App) *T {
	t.Helper()
	r, ok := Resource[T](app)
	require.True(t, ok, "missing resource %T", r)
	return r
}

func testLogs() *bytes.Buffer {
	return &bytes.Buffer{}
}
