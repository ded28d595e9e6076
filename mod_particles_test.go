package curlfield

import (
	"math"
	"testing"

	"github.com/gekko3d/curlfield/config"
	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticlesModule_HeadlessFallsBackToCPU(t *testing.T) {
	logs := testLogs()
	grid, err := core.NewGrid(4, 4)
	require.NoError(t, err)
	app := NewAppBuilder().
		UseStates(StateRunning, StateExiting).
		UseModule(
			LoggingModule{Out: logs, Err: logs},
			ParticlesModule{Grid: grid, Seed: 1, SpawnRadius: 50, Bounds: 500, Backend: config.BackendGPU, Params: core.DefaultParams()},
		).
		Build()

	field := mustResource[ParticleField](t, app)
	assert.Equal(t, config.BackendCPU, field.Backend())
	assert.Nil(t, field.Textures)
	assert.Contains(t, logs.String(), "no GPU device")
	assert.Len(t, field.Instances, grid.Len())
}

func TestParticlesModule_StepsWhileRunning(t *testing.T) {
	app, _ := newHeadlessApp(t)
	field := mustResource[ParticleField](t, app)
	initial := field.State.Clone()

	for i := 0; i < 5; i++ {
		require.True(t, app.Tick())
	}

	assert.Equal(t, uint64(5), field.Steps)
	assert.InDelta(t, 5.0/60, field.Time, 1e-5)
	assert.InDelta(t, 1, field.Last.Delta, 1e-4)
	assert.NotEqual(t, initial.Position, field.State.Position)
	assert.Equal(t, initial.Default, field.State.Default, "the default snapshot is never written")
	assert.True(t, field.State.Finite())
}

func TestParticlesModule_PauseFreezesState(t *testing.T) {
	app, _ := newHeadlessApp(t)
	field := mustResource[ParticleField](t, app)
	clock := mustResource[Time](t, app)
	ptr := mustResource[Pointer](t, app)

	for i := 0; i < 3; i++ {
		app.Tick()
	}
	app.Commands().ChangeState(StatePaused)
	app.Tick()
	require.Equal(t, StatePaused, app.State())

	frozen := field.State.Clone()
	steps, simTime := field.Steps, field.Time
	frame := clock.Frame
	ptr.NDC[0] = 0.25

	for i := 0; i < 10; i++ {
		require.True(t, app.Tick())
	}

	assert.Equal(t, frozen.Position, field.State.Position)
	assert.Equal(t, frozen.Velocity, field.State.Velocity)
	assert.Equal(t, steps, field.Steps)
	assert.Equal(t, simTime, field.Time, "simulation time stops while paused")
	assert.Equal(t, frame+10, clock.Frame, "the frame clock keeps running")

	app.Commands().ChangeState(StateRunning)
	app.Tick()
	app.Tick()
	assert.Equal(t, steps+1, field.Steps)
	assert.NotEqual(t, frozen.Position, field.State.Position)
}

func TestParticlesModule_Reset(t *testing.T) {
	app, logs := newHeadlessApp(t)
	field := mustResource[ParticleField](t, app)

	for i := 0; i < 4; i++ {
		app.Tick()
	}
	app.Commands().ChangeState(StatePaused)
	app.Tick()

	field.RequestReset()
	app.Tick()

	assert.Equal(t, field.State.Default, field.State.Position)
	for _, v := range field.State.Velocity {
		assert.Equal(t, float32(0), v.Len())
	}
	assert.NotZero(t, field.Time, "reset keeps the simulation clock")
	assert.Contains(t, logs.String(), "particles reset")
}

func TestParticleWatchdog_ResetsNonFiniteState(t *testing.T) {
	grid, err := core.NewGrid(2, 2)
	require.NoError(t, err)
	st := core.NewState(grid)
	field := &ParticleField{
		Grid:             grid,
		State:            st,
		sim:              &cpuSimulator{state: st},
		Steps:            10,
		watchdogInterval: 10,
	}
	st.Velocity[1][3] = float32(math.NaN())

	particleWatchdogSystem(field, NewNopLogger())
	require.True(t, field.resetRequested)

	particleResetSystem(field, NewNopLogger())
	assert.False(t, field.resetRequested)
	assert.True(t, st.Finite())

	// the same step is not sampled twice
	st.Velocity[1][3] = float32(math.Inf(1))
	particleWatchdogSystem(field, NewNopLogger())
	assert.False(t, field.resetRequested)
}

func TestStaticSimulator(t *testing.T) {
	s := &staticSimulator{}
	assert.Equal(t, config.BackendStatic, s.Backend())
	assert.NoError(t, s.Step(core.Frame{}))
	assert.NoError(t, s.Reset())
	checked, _ := s.Check(true)
	assert.False(t, checked)
}
