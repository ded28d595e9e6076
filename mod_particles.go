package curlfield

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/curlfield/config"
	"github.com/gekko3d/curlfield/fieldrt/core"
	"github.com/gekko3d/curlfield/fieldrt/gpu"
)

// Simulator advances the particle state one step at a time.
type Simulator interface {
	Backend() string
	Step(f core.Frame) error
	// Reset restores positions from the default snapshot and zeroes velocities.
	Reset() error
	// Check reports on the finiteness of the state. sample starts a new
	// check; results may arrive on a later call.
	Check(sample bool) (checked, finite bool)
	Release()
}

// ParticleField is the simulated particle set. Time is the simulation clock
// in seconds and only advances while the field is stepped.
type ParticleField struct {
	Grid      core.Grid
	State     *core.State
	Instances []core.Instance
	Params    core.Params
	Bounds    float32
	Time      float32
	Steps     uint64
	Last      core.Frame
	// Textures is nil without a GPU.
	Textures *gpu.ParticleTextures

	sim              Simulator
	resetRequested   bool
	watchdogInterval uint64
	lastCheck        uint64
}

func (f *ParticleField) Backend() string {
	return f.sim.Backend()
}

// RequestReset schedules a reset before the next step.
func (f *ParticleField) RequestReset() {
	f.resetRequested = true
}

// Current is the ping-pong index holding the latest state.
func (f *ParticleField) Current() int {
	if f.Textures == nil {
		return 0
	}
	return f.Textures.Current()
}

type ParticlesModule struct {
	Grid        core.Grid
	Seed        int64
	SpawnRadius float32
	Bounds      float32
	Backend     string
	Params      core.Params
	Palette     core.Palette
	// WatchdogInterval is the number of steps between finiteness checks,
	// zero disables them.
	WatchdogInterval int
}

func (m ParticlesModule) Install(app *App, cmd *Commands) {
	logger := app.Logger()

	seed := m.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))

	state := core.NewState(m.Grid)
	state.Seed(rng, m.SpawnRadius)
	palette := m.Palette
	if len(palette) == 0 {
		palette = core.DefaultPalette
	}
	field := &ParticleField{
		Grid:             m.Grid,
		State:            state,
		Instances:        core.BuildInstances(m.Grid, palette, rng.Float64),
		Params:           m.Params.Clamped(),
		Bounds:           m.Bounds,
		watchdogInterval: uint64(max(m.WatchdogInterval, 0)),
	}

	var ctx *gpu.Context
	if gs, ok := Resource[GpuState](app); ok {
		ctx = gs.Context
		textures, err := gpu.NewParticleTextures(ctx, m.Grid)
		if err != nil {
			panic(fmt.Errorf("creating particle textures: %w", err))
		}
		if err := textures.Upload(ctx.Queue, state); err != nil {
			panic(fmt.Errorf("uploading particle state: %w", err))
		}
		field.Textures = textures
	}

	backend := m.Backend
	if backend == "" {
		backend = config.BackendGPU
	}
	if backend == config.BackendGPU && ctx == nil {
		logger.Warnf("no GPU device, simulating on the CPU")
		backend = config.BackendCPU
	}

	switch backend {
	case config.BackendGPU:
		sim, err := newGPUSimulator(ctx, field.Textures, state)
		if err != nil {
			logger.Errorf("GPU simulation unavailable, rendering the field frozen: %v", err)
			field.sim = &staticSimulator{ctx: ctx, textures: field.Textures, state: state}
		} else {
			if sim.watchdog == nil && field.watchdogInterval > 0 {
				logger.Warnf("NaN watchdog disabled: %v", sim.watchdogErr)
			}
			field.sim = sim
		}
	case config.BackendCPU:
		sim, err := newCPUSimulator(ctx, field.Textures, state, seed)
		if err != nil {
			logger.Errorf("CPU simulation unavailable, rendering the field frozen: %v", err)
			field.sim = &staticSimulator{ctx: ctx, textures: field.Textures, state: state}
		} else {
			field.sim = sim
		}
	default:
		field.sim = &staticSimulator{ctx: ctx, textures: field.Textures, state: state}
	}
	logger.Infof("particle field %dx%d (%d particles), %s backend", m.Grid.Width, m.Grid.Height, m.Grid.Len(), field.sim.Backend())

	cmd.AddResources(field)

	app.UseSystem(
		System(particleResetSystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(particleStepSystem).
			InStage(PreRender).
			InState(OnExecute(StateRunning)),
	)
	if field.watchdogInterval > 0 {
		app.UseSystem(
			System(particleWatchdogSystem).
				InStage(PostRender).
				RunAlways(),
		)
	}
	app.UseSystem(
		System(particleReleaseSystem).
			InStage(PostRender).
			InState(OnExit(StateExiting)),
	)
}

func particleResetSystem(field *ParticleField, logger Logger) {
	if !field.resetRequested {
		return
	}
	field.resetRequested = false
	if err := field.sim.Reset(); err != nil {
		logger.Errorf("resetting particles: %v", err)
		return
	}
	logger.Infof("particles reset to their initial positions")
}

func particleStepSystem(field *ParticleField, t *Time, ptr *Pointer, logger Logger) {
	field.Time += float32(t.Dt.Seconds())
	f := core.Frame{
		Time:   field.Time,
		Delta:  core.DeltaRatio(t.Dt),
		Target: ptr.Target,
		Params: field.Params,
		Bounds: field.Bounds,
	}
	if err := field.sim.Step(f); err != nil {
		logger.Errorf("simulation step %d: %v", field.Steps, err)
		return
	}
	field.Last = f
	field.Steps++
}

func particleWatchdogSystem(field *ParticleField, logger Logger) {
	sample := field.Steps > 0 && field.Steps%field.watchdogInterval == 0 && field.Steps != field.lastCheck
	if sample {
		field.lastCheck = field.Steps
	}
	checked, finite := field.sim.Check(sample)
	if checked && !finite {
		logger.Warnf("non-finite particle state after step %d, resetting", field.Steps)
		field.RequestReset()
	}
}

func particleReleaseSystem(field *ParticleField) {
	field.sim.Release()
	if field.Textures != nil {
		field.Textures.Release()
		field.Textures = nil
	}
}

type gpuSimulator struct {
	ctx         *gpu.Context
	textures    *gpu.ParticleTextures
	state       *core.State
	sim         *gpu.Simulation
	watchdog    *gpu.Watchdog
	watchdogErr error
}

func newGPUSimulator(ctx *gpu.Context, textures *gpu.ParticleTextures, state *core.State) (*gpuSimulator, error) {
	sim, err := gpu.NewSimulation(ctx, textures)
	if err != nil {
		return nil, err
	}
	s := &gpuSimulator{ctx: ctx, textures: textures, state: state, sim: sim}
	s.watchdog, s.watchdogErr = gpu.NewWatchdog(ctx, textures.Grid())
	return s, nil
}

func (s *gpuSimulator) Backend() string { return config.BackendGPU }

func (s *gpuSimulator) Step(f core.Frame) error {
	return s.sim.Step(f)
}

func (s *gpuSimulator) Reset() error {
	return s.textures.Reset(s.ctx.Queue, s.state.Default)
}

func (s *gpuSimulator) Check(sample bool) (bool, bool) {
	if s.watchdog == nil {
		return false, false
	}
	if sample {
		encoder, err := s.ctx.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "Watchdog"})
		if err != nil {
			return false, false
		}
		defer encoder.Release()
		if s.watchdog.Encode(encoder, s.textures.CurrentPosition()) {
			cmd, err := encoder.Finish(nil)
			if err != nil {
				return false, false
			}
			defer cmd.Release()
			s.ctx.Queue.Submit(cmd)
		}
	}
	return s.watchdog.Poll()
}

func (s *gpuSimulator) Release() {
	if s.watchdog != nil {
		s.watchdog.Release()
	}
	s.sim.Release()
}

// cpuSimulator steps the CPU state and mirrors it into the current
// textures when a GPU is present.
type cpuSimulator struct {
	ctx      *gpu.Context
	textures *gpu.ParticleTextures
	state    *core.State
	stepper  *core.Stepper
}

func newCPUSimulator(ctx *gpu.Context, textures *gpu.ParticleTextures, state *core.State, seed int64) (*cpuSimulator, error) {
	stepper, err := core.NewStepper(core.NewCurlNoise(seed))
	if err != nil {
		return nil, err
	}
	return &cpuSimulator{ctx: ctx, textures: textures, state: state, stepper: stepper}, nil
}

func (s *cpuSimulator) Backend() string { return config.BackendCPU }

func (s *cpuSimulator) Step(f core.Frame) error {
	s.stepper.Step(s.state, f)
	return s.upload()
}

func (s *cpuSimulator) Reset() error {
	s.state.Reset()
	return s.upload()
}

func (s *cpuSimulator) upload() error {
	if s.textures == nil {
		return nil
	}
	return s.textures.UploadCurrent(s.ctx.Queue, s.state)
}

func (s *cpuSimulator) Check(sample bool) (bool, bool) {
	if !sample {
		return false, false
	}
	return true, s.state.Finite()
}

func (s *cpuSimulator) Release() {}

// staticSimulator keeps the field at its initial positions.
type staticSimulator struct {
	ctx      *gpu.Context
	textures *gpu.ParticleTextures
	state    *core.State
}

func (s *staticSimulator) Backend() string { return config.BackendStatic }

func (s *staticSimulator) Step(core.Frame) error { return nil }

func (s *staticSimulator) Reset() error {
	if s.textures == nil {
		return nil
	}
	return s.textures.Reset(s.ctx.Queue, s.state.Default)
}

func (s *staticSimulator) Check(bool) (bool, bool) { return false, false }

func (s *staticSimulator) Release() {}
