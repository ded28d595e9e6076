package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gekko3d/curlfield/fieldrt/core"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 256, cfg.Simulation.TextureWidth)
	assert.Equal(t, 128, cfg.Simulation.TextureHeight)
	assert.Equal(t, BackendGPU, cfg.Simulation.Backend)
	assert.Empty(t, cfg.Adjusted)

	assert.Equal(t, core.DefaultParams(), cfg.SimulationParams())
	assert.Equal(t, core.DefaultDepthOfField(), cfg.DepthOfField())
	assert.Equal(t, 32768, cfg.Grid().Len())
	assert.Len(t, cfg.Palette(), 3)

	pos := cfg.CameraPosition()
	assert.InDelta(t, 320, pos.Len(), 1e-3)
	assert.InDelta(t, 200, cfg.Light().Position.Len(), 1e-3)
}

func TestLoad_OverridesAndClamps(t *testing.T) {
	path := writeConfig(t, `
simulation:
  backend: cpu
  seed: 99
params:
  speed: 10
  radius: 0.5
postfx:
  dof_enabled: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendCPU, cfg.Simulation.Backend)
	assert.Equal(t, int64(99), cfg.Simulation.Seed)
	assert.Equal(t, float32(4), cfg.Params.Speed)
	assert.Equal(t, float32(0.5), cfg.Params.Radius)
	assert.True(t, cfg.PostFX.DoFEnabled)
	assert.Equal(t, 256, cfg.Simulation.TextureWidth, "unset fields keep defaults")

	require.Len(t, cfg.Adjusted, 1)
	assert.Contains(t, cfg.Adjusted[0], "speed")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"backend", "simulation:\n  backend: opencl\n"},
		{"grid", "simulation:\n  texture_width: 1\n"},
		{"camera planes", "camera:\n  near: 100\n  far: 10\n"},
		{"palette", "scene:\n  palette: [\"#12\"]\n"},
		{"pointer", "pointer:\n  max_distance: 0\n"},
		{"watchdog", "simulation:\n  watchdog_interval: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "params: [1, 2"))
	assert.Error(t, err)
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Params.Attraction = 2
	cfg.Simulation.Backend = BackendStatic

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(2), back.Params.Attraction)
	assert.Equal(t, BackendStatic, back.Simulation.Backend)
}
